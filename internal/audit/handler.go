package audit

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/frahmantamala/lead-management/internal/auth"
	"github.com/frahmantamala/lead-management/internal/hierarchy"
	"github.com/frahmantamala/lead-management/internal/lead"
	"github.com/frahmantamala/lead-management/internal/transport"
	"github.com/frahmantamala/lead-management/pkg/logger"
	"github.com/go-chi/chi"
)

type TrailAPI interface {
	Trail(leadID int64) ([]*Entry, error)
}

// LeadViewerAPI gates the trail behind the same visibility rules as the lead
// itself: whoever can read the lead can read its audit trail.
type LeadViewerAPI interface {
	GetLead(actor hierarchy.Member, id int64) (*lead.Lead, error)
}

type Handler struct {
	*transport.BaseHandler
	Trails TrailAPI
	Leads  LeadViewerAPI
}

func NewHandler(trails TrailAPI, leads LeadViewerAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Trails:      trails,
		Leads:       leads,
	}
}

func (h *Handler) GetLeadActivities(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid lead id")
		return
	}

	if _, err := h.Leads.GetLead(user.Member(), id); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	entries, err := h.Trails.Trail(id)
	if err != nil {
		h.Logger.Error("GetLeadActivities: trail lookup failed", "error", err, "lead_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"activities": entries})
}
