package dashboardhandler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"privacydesk/internal/domain/request"
	"privacydesk/internal/domain/view"
	"privacydesk/internal/platform/metrics"
	"privacydesk/internal/transport/http/api"
	"privacydesk/internal/transport/http/middleware"
)

const defaultActivityLimit = 5

type Handler struct {
	Store   *request.Store
	Metrics *metrics.Collector
}

func NewHandler(store *request.Store, collector *metrics.Collector) *Handler {
	return &Handler{Store: store, Metrics: collector}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/dashboard/stats", h.handleStats)
	r.Get("/dashboard/activity", h.handleActivity)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := view.DashboardStats(time.Now().UTC(), h.Store.Requests())
	if h.Metrics != nil {
		h.Metrics.SetCaseGauges(stats.Open, stats.Overdue)
	}
	api.Success(w, stats, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleActivity(w http.ResponseWriter, r *http.Request) {
	limit := defaultActivityLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	api.Success(w, view.RecentActivity(h.Store.Requests(), limit), middleware.GetRequestID(r.Context()))
}
