package lead

import (
	"context"
	"log/slog"
	"time"

	internal "github.com/frahmantamala/lead-management/internal"
	leadDatamodel "github.com/frahmantamala/lead-management/internal/core/datamodel/lead"
	"github.com/frahmantamala/lead-management/internal/core/events"
	"github.com/frahmantamala/lead-management/internal/hierarchy"
)

// RepositoryAPI defines the data access methods for leads.
type RepositoryAPI interface {
	Create(l *leadDatamodel.Lead) error
	GetByID(id int64) (*leadDatamodel.Lead, error)
	List(scope Scope, filters Filters, page Pagination) ([]*leadDatamodel.Lead, int64, error)
	Snapshot(scope Scope, filters Filters) ([]*leadDatamodel.Lead, error)
	Update(l *leadDatamodel.Lead) error
	// UpdateAssignment writes the assignee and the hierarchy snapshot in one
	// statement so the snapshot can never lag the assignment.
	UpdateAssignment(id int64, assignedTo, managerID, supervisorID *int64) error
	UpdatePriorityStatus(id int64, priority, status, description string) error
	Delete(id int64) error
	AppendHistory(h *leadDatamodel.History) error
	HistoryForLead(leadID int64) ([]*leadDatamodel.History, error)
}

// UserDirectory is the identity collaborator: it resolves user IDs to their
// current hierarchy position.
type UserDirectory interface {
	Member(id int64) (hierarchy.Member, error)
}

// Service handles the lead lifecycle. Every operation takes the acting user
// explicitly; nothing is read from ambient state.
type Service struct {
	repo      RepositoryAPI
	directory UserDirectory
	bus       *events.EventBus
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, directory UserDirectory, bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		directory: directory,
		bus:       bus,
		logger:    logger,
	}
}

// lookup adapts the directory for CanAccess / Scope.Matches.
func (s *Service) lookup(userID int64) (hierarchy.Member, bool) {
	member, err := s.directory.Member(userID)
	if err != nil {
		return hierarchy.Member{}, false
	}
	return member, true
}

// CreateLead creates a lead. When an assignee is given, the actor must be
// allowed to assign to them and the hierarchy snapshot is taken from the
// assignee's current links.
func (s *Service) CreateLead(ctx context.Context, actor hierarchy.Member, dto CreateLeadDTO) (*Lead, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("lead validation failed", "error", err, "actor_id", actor.ID)
		return nil, err
	}

	l := &Lead{
		Name:        dto.Name,
		Email:       dto.Email,
		Phone:       dto.Phone,
		Project:     dto.Project,
		Unit:        dto.Unit,
		Priority:    Priority(dto.Priority),
		Status:      dto.Status,
		Description: dto.Description,
		CreatedBy:   actor.ID,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if dto.AssignedTo != nil {
		assignee, err := s.directory.Member(*dto.AssignedTo)
		if err != nil {
			return nil, internal.ErrUserNotFound
		}
		if !hierarchy.CanAssign(actor, assignee) {
			s.logger.Warn("assignment denied on create",
				"actor_id", actor.ID,
				"assignee_id", assignee.ID)
			return nil, internal.ErrAssignmentDenied
		}
		l.AssignedTo = dto.AssignedTo
		l.ManagerID = assignee.ManagerID
		l.SupervisorID = assignee.SupervisorID
	}

	model := ToDataModel(l)
	if err := s.repo.Create(model); err != nil {
		s.logger.Error("failed to create lead", "error", err, "actor_id", actor.ID)
		return nil, err
	}
	l.ID = model.ID

	s.appendHistory(l.ID, "", l.Priority, "lead created with status "+l.Status, actor.ID)
	s.bus.Publish(ctx, events.NewLeadEvent(events.EventLeadCreated, actor.ID, l.ID, map[string]interface{}{
		"priority": string(l.Priority),
		"status":   l.Status,
	}))

	s.logger.Info("lead created",
		"lead_id", l.ID,
		"actor_id", actor.ID,
		"priority", l.Priority,
		"status", l.Status)

	return l, nil
}

// GetLead retrieves a single lead. A visibility failure is a hard rejection,
// never a partial view.
func (s *Service) GetLead(actor hierarchy.Member, id int64) (*Lead, error) {
	model, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrLeadNotFound
	}

	l := FromDataModel(model)
	if !CanAccess(actor, l, s.lookup) {
		s.logger.Warn("unauthorized access to lead", "lead_id", id, "actor_id", actor.ID)
		return nil, internal.ErrUnauthorizedAccess
	}

	return l, nil
}

// ListLeads returns the actor's visible leads narrowed by filters.
func (s *Service) ListLeads(actor hierarchy.Member, dto ListLeadsDTO) (*ListLeadsResponse, error) {
	filters, err := dto.ToFilters()
	if err != nil {
		return nil, err
	}
	page := dto.ToPagination()

	models, total, err := s.repo.List(ScopeFor(actor), filters, page)
	if err != nil {
		s.logger.Error("failed to list leads", "error", err, "actor_id", actor.ID)
		return nil, err
	}

	return &ListLeadsResponse{
		Leads:   FromDataModelSlice(models),
		Total:   total,
		Page:    page.Page,
		PerPage: page.PerPage,
	}, nil
}

// UpdatePriority moves a lead to a new priority/status pair and appends a
// history entry.
func (s *Service) UpdatePriority(ctx context.Context, actor hierarchy.Member, id int64, dto UpdatePriorityDTO) (*Lead, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	l, err := s.GetLead(actor, id)
	if err != nil {
		return nil, err
	}

	oldPriority := l.Priority
	newPriority := Priority(dto.Priority)

	if err := s.repo.UpdatePriorityStatus(id, dto.Priority, dto.Status, dto.Description); err != nil {
		s.logger.Error("failed to update lead priority", "error", err, "lead_id", id)
		return nil, err
	}

	s.appendHistory(id, oldPriority, newPriority, dto.Description, actor.ID)
	s.bus.Publish(ctx, events.NewLeadEvent(events.EventLeadPriorityChanged, actor.ID, id, map[string]interface{}{
		"old_priority": string(oldPriority),
		"new_priority": string(newPriority),
		"status":       dto.Status,
	}))

	s.logger.Info("lead priority updated",
		"lead_id", id,
		"actor_id", actor.ID,
		"old_priority", oldPriority,
		"new_priority", newPriority)

	l.Priority = newPriority
	l.Status = dto.Status
	if dto.Description != "" {
		l.Description = dto.Description
	}
	l.UpdatedAt = time.Now()
	return l, nil
}

// AssignLead sets or changes the assignee. The hierarchy snapshot is re-synced
// from the new assignee's current links in the same repository write as the
// assignment, so scoping can never observe a half-updated lead.
func (s *Service) AssignLead(ctx context.Context, actor hierarchy.Member, id int64, dto AssignLeadDTO) (*Lead, error) {
	l, err := s.GetLead(actor, id)
	if err != nil {
		return nil, err
	}

	var managerID, supervisorID *int64
	if dto.AssignedTo != nil {
		assignee, err := s.directory.Member(*dto.AssignedTo)
		if err != nil {
			return nil, internal.ErrUserNotFound
		}
		if !hierarchy.CanAssign(actor, assignee) {
			s.logger.Warn("assignment denied",
				"lead_id", id,
				"actor_id", actor.ID,
				"assignee_id", assignee.ID)
			return nil, internal.ErrAssignmentDenied
		}
		managerID = assignee.ManagerID
		supervisorID = assignee.SupervisorID
	}

	if err := s.repo.UpdateAssignment(id, dto.AssignedTo, managerID, supervisorID); err != nil {
		s.logger.Error("failed to assign lead", "error", err, "lead_id", id)
		return nil, err
	}

	payload := map[string]interface{}{}
	if l.AssignedTo != nil {
		payload["previous_assignee"] = *l.AssignedTo
	}
	if dto.AssignedTo != nil {
		payload["new_assignee"] = *dto.AssignedTo
	}
	s.bus.Publish(ctx, events.NewLeadEvent(events.EventLeadAssigned, actor.ID, id, payload))

	s.logger.Info("lead assigned",
		"lead_id", id,
		"actor_id", actor.ID,
		"assignee", dto.AssignedTo)

	l.AssignedTo = dto.AssignedTo
	l.ManagerID = managerID
	l.SupervisorID = supervisorID
	l.UpdatedAt = time.Now()
	return l, nil
}

// DeleteLead removes a lead; the repository cascades its history rows.
func (s *Service) DeleteLead(ctx context.Context, actor hierarchy.Member, id int64) error {
	if _, err := s.GetLead(actor, id); err != nil {
		return err
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete lead", "error", err, "lead_id", id)
		return err
	}

	s.bus.Publish(ctx, events.NewLeadEvent(events.EventLeadDeleted, actor.ID, id, nil))
	s.logger.Info("lead deleted", "lead_id", id, "actor_id", actor.ID)
	return nil
}

// GetHistory returns the append-only priority transition log of a lead.
func (s *Service) GetHistory(actor hierarchy.Member, id int64) ([]*History, error) {
	if _, err := s.GetLead(actor, id); err != nil {
		return nil, err
	}

	models, err := s.repo.HistoryForLead(id)
	if err != nil {
		s.logger.Error("failed to load lead history", "error", err, "lead_id", id)
		return nil, err
	}

	entries := make([]*History, len(models))
	for i, m := range models {
		entries[i] = HistoryFromDataModel(m)
	}
	return entries, nil
}

func (s *Service) appendHistory(leadID int64, oldPriority, newPriority Priority, description string, actorID int64) {
	entry := &leadDatamodel.History{
		LeadID:      leadID,
		OldPriority: string(oldPriority),
		NewPriority: string(newPriority),
		Description: description,
		ActorID:     actorID,
		CreatedAt:   time.Now(),
	}
	if err := s.repo.AppendHistory(entry); err != nil {
		// the lead change already committed; history failure is logged, not rolled back
		s.logger.Error("failed to append lead history", "error", err, "lead_id", leadID)
	}
}
