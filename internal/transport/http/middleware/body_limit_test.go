package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestBodyLimitCapsMutatingMethods(t *testing.T) {
	var readErr error
	limited := BodyLimit(16)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, readErr = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/requests", strings.NewReader(strings.Repeat("x", 64)))
	limited.ServeHTTP(httptest.NewRecorder(), req)
	if readErr == nil {
		t.Fatal("expected oversized body read to fail")
	}

	readErr = nil
	req = httptest.NewRequest(http.MethodPost, "/api/v1/requests", bytes.NewReader([]byte(`{"a":1}`)))
	limited.ServeHTTP(httptest.NewRecorder(), req)
	if readErr != nil {
		t.Fatalf("small body must pass: %v", readErr)
	}
}

func TestBodyLimitIgnoresReads(t *testing.T) {
	var readErr error
	limited := BodyLimit(16)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, readErr = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/requests", strings.NewReader(strings.Repeat("x", 64)))
	limited.ServeHTTP(httptest.NewRecorder(), req)
	if readErr != nil {
		t.Fatalf("GET bodies are not capped: %v", readErr)
	}
}

func TestLoggerPreservesStatus(t *testing.T) {
	logged := Logger(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	logged.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusTeapot {
		t.Fatalf("logger must pass the status through, got %d", rec.Code)
	}
}
