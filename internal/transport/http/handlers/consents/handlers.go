package consenthandler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"privacydesk/internal/domain/request"
	"privacydesk/internal/transport/http/api"
	"privacydesk/internal/transport/http/middleware"
	"privacydesk/internal/transport/http/shared"
)

type Handler struct {
	Store *request.Store
}

func NewHandler(store *request.Store) *Handler {
	return &Handler{Store: store}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/consents", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleGrant)
		r.Post("/{consentID}/withdraw", h.handleWithdraw)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	if subject := r.URL.Query().Get("subject"); subject != "" {
		api.Success(w, h.Store.ConsentsFor(subject), middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, h.Store.Consents(), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGrant(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SubjectEmail string `json:"subjectEmail"`
		Purpose      string `json:"purpose"`
		Channel      string `json:"channel"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid consent payload", middleware.GetRequestID(r.Context()))
		return
	}
	rec, err := h.Store.GrantConsent(r.Context(), payload.SubjectEmail, payload.Purpose, payload.Channel)
	if err != nil {
		shared.FailFromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, rec, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Store.WithdrawConsent(r.Context(), chi.URLParam(r, "consentID"))
	if err != nil {
		shared.FailFromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, rec, middleware.GetRequestID(r.Context()))
}
