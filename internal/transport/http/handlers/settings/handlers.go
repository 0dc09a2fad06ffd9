package settingshandler

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
	r.Get("/settings", h.handleGet)
	r.Put("/settings", h.handleSave)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	api.Success(w, h.Store.Settings(), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSave(w http.ResponseWriter, r *http.Request) {
	var patch request.SettingsPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid settings payload", middleware.GetRequestID(r.Context()))
		return
	}
	saved, err := h.Store.SaveSettings(r.Context(), patch)
	if err != nil {
		shared.FailFromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, saved, middleware.GetRequestID(r.Context()))
}
