package analytics

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/frahmantamala/lead-management/internal/auth"
	"github.com/frahmantamala/lead-management/internal/hierarchy"
	"github.com/frahmantamala/lead-management/internal/transport"
	"github.com/frahmantamala/lead-management/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Dashboard(actor hierarchy.Member, dto ReportFiltersDTO) (*DashboardReport, error)
	DailyReport(actor hierarchy.Member, dto DailyReportDTO) (*DailyReport, error)
	Team(actor hierarchy.Member, dto ReportFiltersDTO) (*TeamReport, error)
	Performers(actor hierarchy.Member, dto ReportFiltersDTO, limit int) ([]PerformerRank, error)
	UserConversionRate(actor hierarchy.Member, userID int64) (float64, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	report, err := h.Service.Dashboard(user.Member(), filtersFromQuery(r))
	if err != nil {
		h.Logger.Error("Dashboard: service error", "error", err, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, report)
}

func (h *Handler) DailyReport(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	q := r.URL.Query()
	dto := DailyReportDTO{
		ReportFiltersDTO: filtersFromQuery(r),
		DateFrom:         q.Get("date_from"),
		DateTo:           q.Get("date_to"),
	}

	report, err := h.Service.DailyReport(user.Member(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, report)
}

func (h *Handler) TeamReport(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	report, err := h.Service.Team(user.Member(), filtersFromQuery(r))
	if err != nil {
		h.Logger.Error("TeamReport: service error", "error", err, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, report)
}

func (h *Handler) TopPerformers(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}

	performers, err := h.Service.Performers(user.Member(), filtersFromQuery(r), limit)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"performers": performers})
}

func (h *Handler) UserConversionRate(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	userID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	rate, err := h.Service.UserConversionRate(user.Member(), userID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"user_id":         userID,
		"conversion_rate": rate,
	})
}

func filtersFromQuery(r *http.Request) ReportFiltersDTO {
	q := r.URL.Query()

	dto := ReportFiltersDTO{
		Priority: q.Get("priority"),
		Status:   q.Get("status"),
		Project:  q.Get("project"),
		DateFrom: q.Get("date_from"),
		DateTo:   q.Get("date_to"),
	}

	if raw := q.Get("assigned_to"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			dto.AssignedTo = &id
		}
	}

	return dto
}
