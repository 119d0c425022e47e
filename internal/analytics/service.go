package analytics

import (
	"log/slog"
	"time"

	internal "github.com/frahmantamala/lead-management/internal"
	leadDatamodel "github.com/frahmantamala/lead-management/internal/core/datamodel/lead"
	"github.com/frahmantamala/lead-management/internal/hierarchy"
	"github.com/frahmantamala/lead-management/internal/lead"
)

// LeadSource provides the one scoped snapshot a report pass computes over.
// The lead repository satisfies it.
type LeadSource interface {
	Snapshot(scope lead.Scope, filters lead.Filters) ([]*leadDatamodel.Lead, error)
}

// Directory is the identity collaborator for report-level user resolution.
type Directory interface {
	Member(id int64) (hierarchy.Member, error)
	Members() ([]hierarchy.Member, error)
}

const (
	defaultTrendMonths  = 6
	defaultTopPerformer = 5
)

// Service computes dashboard and report metrics. Each operation fetches a
// single snapshot through the actor's scope and hands it to the pure engine;
// no metric ever runs its own query.
type Service struct {
	leads  LeadSource
	users  Directory
	logger *slog.Logger
	now    func() time.Time
}

func NewService(leads LeadSource, users Directory, logger *slog.Logger) *Service {
	return &Service{
		leads:  leads,
		users:  users,
		logger: logger,
		now:    time.Now,
	}
}

func (s *Service) snapshot(actor hierarchy.Member, filters lead.Filters) ([]*lead.Lead, error) {
	models, err := s.leads.Snapshot(lead.ScopeFor(actor), filters)
	if err != nil {
		s.logger.Error("failed to load lead snapshot", "error", err, "actor_id", actor.ID)
		return nil, err
	}
	return lead.FromDataModelSlice(models), nil
}

func (s *Service) memberNames() map[int64]string {
	names := make(map[int64]string)
	members, err := s.users.Members()
	if err != nil {
		// performer rows fall back to empty names; the report itself still stands
		s.logger.Warn("failed to resolve member names", "error", err)
		return names
	}
	for _, m := range members {
		names[m.ID] = m.Name
	}
	return names
}

// Dashboard computes the full dashboard from one snapshot.
func (s *Service) Dashboard(actor hierarchy.Member, dto ReportFiltersDTO) (*DashboardReport, error) {
	filters, err := dto.ToFilters()
	if err != nil {
		return nil, err
	}

	snapshot, err := s.snapshot(actor, filters)
	if err != nil {
		return nil, err
	}

	return &DashboardReport{
		Total:              len(snapshot),
		ByPriority:         CountByPriority(snapshot),
		Rates:              Conversion(snapshot),
		MonthlyTrend:       MonthlyTrend(snapshot, defaultTrendMonths, s.now()),
		StatusDistribution: StatusDistribution(snapshot),
		TopPerformers:      TopPerformers(snapshot, s.memberNames(), defaultTopPerformer),
	}, nil
}

// DailyReport computes the zero-filled per-day trend over a validated range.
func (s *Service) DailyReport(actor hierarchy.Member, dto DailyReportDTO) (*DailyReport, error) {
	from, to, err := dto.Range()
	if err != nil {
		return nil, err
	}

	filters, err := dto.ReportFiltersDTO.ToFilters()
	if err != nil {
		return nil, err
	}
	filters.DateFrom = &from
	filters.DateTo = &to

	snapshot, err := s.snapshot(actor, filters)
	if err != nil {
		return nil, err
	}

	return &DailyReport{
		DateFrom: dto.DateFrom,
		DateTo:   dto.DateTo,
		Days:     DailyTrend(snapshot, from, to),
	}, nil
}

// Team rolls up per-member performance for a manager or supervisor. Agents
// have no reports and are rejected.
func (s *Service) Team(actor hierarchy.Member, dto ReportFiltersDTO) (*TeamReport, error) {
	switch actor.EffectiveRole() {
	case hierarchy.RoleSuperadmin, hierarchy.RoleManager, hierarchy.RoleSupervisor:
	default:
		return nil, internal.ErrUnauthorizedAccess
	}

	filters, err := dto.ToFilters()
	if err != nil {
		return nil, err
	}

	all, err := s.users.Members()
	if err != nil {
		s.logger.Error("failed to list members", "error", err, "actor_id", actor.ID)
		return nil, err
	}
	members := hierarchy.DirectReports(actor, all)

	snapshot, err := s.snapshot(actor, filters)
	if err != nil {
		return nil, err
	}

	return &TeamReport{
		LeaderID: actor.ID,
		Members:  TeamPerformance(snapshot, members),
	}, nil
}

// Performers ranks assignees visible to the actor.
func (s *Service) Performers(actor hierarchy.Member, dto ReportFiltersDTO, limit int) ([]PerformerRank, error) {
	filters, err := dto.ToFilters()
	if err != nil {
		return nil, err
	}

	snapshot, err := s.snapshot(actor, filters)
	if err != nil {
		return nil, err
	}

	return TopPerformers(snapshot, s.memberNames(), limit), nil
}

// UserConversionRate computes one user's closing rate over the actor's
// visible leads.
func (s *Service) UserConversionRate(actor hierarchy.Member, userID int64) (float64, error) {
	snapshot, err := s.snapshot(actor, lead.Filters{})
	if err != nil {
		return 0, err
	}
	return ConversionRateFor(snapshot, userID), nil
}
