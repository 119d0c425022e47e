package lead

import (
	"context"
	"encoding/json"
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
	CreateLead(ctx context.Context, actor hierarchy.Member, dto CreateLeadDTO) (*Lead, error)
	GetLead(actor hierarchy.Member, id int64) (*Lead, error)
	ListLeads(actor hierarchy.Member, dto ListLeadsDTO) (*ListLeadsResponse, error)
	UpdatePriority(ctx context.Context, actor hierarchy.Member, id int64, dto UpdatePriorityDTO) (*Lead, error)
	AssignLead(ctx context.Context, actor hierarchy.Member, id int64, dto AssignLeadDTO) (*Lead, error)
	DeleteLead(ctx context.Context, actor hierarchy.Member, id int64) error
	GetHistory(actor hierarchy.Member, id int64) ([]*History, error)
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

func (h *Handler) CreateLead(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateLeadDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreateLead: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.Service.CreateLead(r.Context(), user.Member(), dto)
	if err != nil {
		h.Logger.Error("CreateLead: service error", "error", err, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("CreateLead: lead created",
		"lead_id", created.ID,
		"user_id", user.ID,
		"priority", created.Priority)

	h.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) GetLead(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := h.leadIDParam(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid lead id")
		return
	}

	found, err := h.Service.GetLead(user.Member(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, found)
}

func (h *Handler) ListLeads(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	dto := listDTOFromQuery(r)

	resp, err := h.Service.ListLeads(user.Member(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) UpdatePriority(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := h.leadIDParam(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid lead id")
		return
	}

	var dto UpdatePriorityDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("UpdatePriority: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.Service.UpdatePriority(r.Context(), user.Member(), id, dto)
	if err != nil {
		h.Logger.Error("UpdatePriority: service error", "error", err, "lead_id", id, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) AssignLead(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := h.leadIDParam(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid lead id")
		return
	}

	var dto AssignLeadDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("AssignLead: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	assigned, err := h.Service.AssignLead(r.Context(), user.Member(), id, dto)
	if err != nil {
		h.Logger.Error("AssignLead: service error", "error", err, "lead_id", id, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("AssignLead: assignment updated",
		"lead_id", assigned.ID,
		"assigned_to", assigned.AssignedTo,
		"actor_id", user.ID)

	h.WriteJSON(w, http.StatusOK, assigned)
}

func (h *Handler) DeleteLead(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := h.leadIDParam(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid lead id")
		return
	}

	if err := h.Service.DeleteLead(r.Context(), user.Member(), id); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := h.leadIDParam(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid lead id")
		return
	}

	history, err := h.Service.GetHistory(user.Member(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"history": history})
}

func (h *Handler) leadIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// listDTOFromQuery maps URL query parameters onto the listing DTO. Unknown or
// malformed numeric parameters fall back to zero values and get normalized
// downstream.
func listDTOFromQuery(r *http.Request) ListLeadsDTO {
	q := r.URL.Query()

	dto := ListLeadsDTO{
		Priority: q.Get("priority"),
		Status:   q.Get("status"),
		Project:  q.Get("project"),
		Search:   q.Get("search"),
		DateFrom: q.Get("date_from"),
		DateTo:   q.Get("date_to"),
	}

	if raw := q.Get("assigned_to"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			dto.AssignedTo = &id
		}
	}
	if raw := q.Get("page"); raw != "" {
		dto.Page, _ = strconv.Atoi(raw)
	}
	if raw := q.Get("per_page"); raw != "" {
		dto.PerPage, _ = strconv.Atoi(raw)
	}

	return dto
}
