package requesthandler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"privacydesk/internal/domain/export"
	"privacydesk/internal/domain/request"
	"privacydesk/internal/domain/sla"
	"privacydesk/internal/domain/view"
	"privacydesk/internal/platform/metrics"
	"privacydesk/internal/transport/http/api"
	"privacydesk/internal/transport/http/middleware"
	"privacydesk/internal/transport/http/shared"
)

type Handler struct {
	Store   *request.Store
	Metrics *metrics.Collector
	Exports ExportService
}

// ExportService decouples the handler from artifact/token mechanics.
type ExportService interface {
	CreateArtifact(rec request.PrivacyRequest) (token string, expiresAt time.Time, err error)
	OpenArtifact(token, requestID string) (path string, err error)
}

func NewHandler(store *request.Store, collector *metrics.Collector, exports ExportService) *Handler {
	return &Handler{Store: store, Metrics: collector, Exports: exports}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/requests", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/{requestID}", h.handleGet)
		r.Put("/{requestID}", h.handleUpdate)
		r.Post("/{requestID}/owner", h.handleSetOwner)
		r.Post("/{requestID}/notes", h.handleAddNote)
		r.Post("/{requestID}/close", h.handleClose)
		r.Get("/{requestID}/sla", h.handleSLA)
		r.Post("/{requestID}/export", h.handleExport)
		r.Get("/{requestID}/export/download", h.handleDownload)
		r.Get("/{requestID}/export.pdf", h.handleExportPDF)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := view.Filter{
		Type:   query.Get("type"),
		Status: query.Get("status"),
		Search: query.Get("q"),
	}
	if owners := query.Get("owner"); owners != "" {
		filter.Owners = strings.Split(owners, ",")
	}
	if raw := query.Get("from"); raw != "" {
		from, err := shared.ParseDate(raw)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_filter", "from must be a date", middleware.GetRequestID(r.Context()))
			return
		}
		filter.From = from
	}
	if raw := query.Get("to"); raw != "" {
		to, err := shared.ParseDate(raw)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_filter", "to must be a date", middleware.GetRequestID(r.Context()))
			return
		}
		filter.To = shared.EndOfDay(to)
	}

	keys, err := parseSortKeys(query.Get("sort"))
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_sort", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}

	page := shared.ParsePagination(r, 10, 100)
	filtered := view.Apply(h.Store.Requests(), filter)
	sorted := view.SortBy(filtered, keys)
	api.Success(w, view.Paginate(sorted, page.Skip, page.Take), middleware.GetRequestID(r.Context()))
}

// parseSortKeys reads "col:dir,col:dir" pairs; direction defaults to asc.
// The grid's default order is newest submission first.
func parseSortKeys(raw string) ([]view.SortKey, error) {
	if raw == "" {
		return []view.SortKey{{Column: view.ColSubmittedAt, Desc: true}}, nil
	}
	var keys []view.SortKey
	for _, part := range strings.Split(raw, ",") {
		col, dir, _ := strings.Cut(strings.TrimSpace(part), ":")
		if !view.ValidColumn(col) {
			return nil, &sortError{col}
		}
		keys = append(keys, view.SortKey{Column: view.Column(col), Desc: dir == "desc"})
	}
	return keys, nil
}

type sortError struct{ column string }

func (e *sortError) Error() string { return "unknown sort column " + e.column }

type createPayload struct {
	Type      string            `json:"type"`
	Requester request.Requester `json:"requester"`
	Owner     string            `json:"owner"`
	Status    string            `json:"status"`
	DueAt     time.Time         `json:"dueAt"`
	Note      string            `json:"note"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload createPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	actor := actorFrom(r)
	created, err := h.Store.AddRequest(r.Context(), request.AddRequestInput{
		Type:      payload.Type,
		Requester: payload.Requester,
		Owner:     payload.Owner,
		Status:    payload.Status,
		DueAt:     payload.DueAt,
		Actor:     actor,
	})
	if err != nil {
		shared.FailFromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}

	// The intake wizard submits an optional first note with the case.
	if strings.TrimSpace(payload.Note) != "" {
		if _, err := h.Store.AddNote(r.Context(), created.ID, payload.Note, actor); err == nil {
			created, _ = h.Store.Request(created.ID)
		}
	}

	h.refreshGauges()
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Store.Request(chi.URLParam(r, "requestID"))
	if err != nil {
		shared.FailFromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, rec, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var rec request.PrivacyRequest
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if id := chi.URLParam(r, "requestID"); rec.ID != id {
		api.Fail(w, http.StatusBadRequest, "id_mismatch", "body id must match path id", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Store.UpdateRequest(r.Context(), rec); err != nil {
		shared.FailFromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	updated, _ := h.Store.Request(rec.ID)
	h.refreshGauges()
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSetOwner(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Owner string `json:"owner"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	updated, err := h.Store.SetOwner(r.Context(), chi.URLParam(r, "requestID"), payload.Owner, actorFrom(r))
	if err != nil {
		shared.FailFromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleAddNote(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text string `json:"text"`
		Who  string `json:"who"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	who := payload.Who
	if who == "" {
		who = actorFrom(r)
	}
	note, err := h.Store.AddNote(r.Context(), chi.URLParam(r, "requestID"), payload.Text, who)
	if err != nil {
		shared.FailFromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, note, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleClose(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Decision  string `json:"decision"`
		Rationale string `json:"rationale"`
		Citation  string `json:"citation"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	updated, err := h.Store.CloseRequest(r.Context(), chi.URLParam(r, "requestID"),
		payload.Decision, payload.Rationale, payload.Citation, actorFrom(r))
	if err != nil {
		shared.FailFromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	h.refreshGauges()
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSLA(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Store.Request(chi.URLParam(r, "requestID"))
	if err != nil {
		shared.FailFromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	now := time.Now().UTC()
	daysLeft := sla.DaysLeft(now, rec.DueAt)
	api.Success(w, map[string]any{
		"progressPct": sla.Progress(now, rec.SubmittedAt, rec.DueAt),
		"daysLeft":    daysLeft,
		"label":       sla.Label(daysLeft),
		"atRisk":      sla.AtRisk(daysLeft),
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Store.Request(chi.URLParam(r, "requestID"))
	if err != nil {
		shared.FailFromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	token, expiresAt, err := h.Exports.CreateArtifact(rec)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "export_failed", "failed to create export", middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, map[string]any{
		"requestId": rec.ID,
		"token":     token,
		"expiresAt": expiresAt,
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "requestID")
	token := r.URL.Query().Get("token")
	path, err := h.Exports.OpenArtifact(token, id)
	if err != nil {
		api.Fail(w, http.StatusForbidden, "invalid_token", "download token is invalid or expired", middleware.GetRequestID(r.Context()))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+id+`.json"`)
	http.ServeFile(w, r, path)
}

func (h *Handler) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Store.Request(chi.URLParam(r, "requestID"))
	if err != nil {
		shared.FailFromError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="`+rec.ID+`.pdf"`)
	if err := export.WriteCasePDF(w, rec); err != nil {
		slog.Error("pdf render failed", "requestId", rec.ID, "error", err)
	}
}

func (h *Handler) refreshGauges() {
	if h.Metrics == nil {
		return
	}
	stats := view.DashboardStats(time.Now().UTC(), h.Store.Requests())
	h.Metrics.SetCaseGauges(stats.Open, stats.Overdue)
}

func actorFrom(r *http.Request) string {
	return r.Header.Get("X-Actor")
}
