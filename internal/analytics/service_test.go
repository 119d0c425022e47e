package analytics_test

import (
	"log/slog"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	internal "github.com/frahmantamala/lead-management/internal"
	leadDatamodel "github.com/frahmantamala/lead-management/internal/core/datamodel/lead"
	"github.com/frahmantamala/lead-management/internal/analytics"
	"github.com/frahmantamala/lead-management/internal/hierarchy"
	"github.com/frahmantamala/lead-management/internal/lead"
)

// Mock lead source that applies the scope and filters in memory, so reports
// see exactly what a scoped query would return.
type mockLeadSource struct {
	leads     []*leadDatamodel.Lead
	lookup    lead.AssigneeLookup
	snapshots int
}

func (m *mockLeadSource) Snapshot(scope lead.Scope, filters lead.Filters) ([]*leadDatamodel.Lead, error) {
	m.snapshots++
	var result []*leadDatamodel.Lead
	for _, model := range m.leads {
		domain := lead.FromDataModel(model)
		if !scope.Matches(domain, m.lookup) {
			continue
		}
		if !matchesFilters(domain, filters) {
			continue
		}
		result = append(result, model)
	}
	return result, nil
}

func matchesFilters(l *lead.Lead, f lead.Filters) bool {
	if f.Priority != nil && l.Priority != *f.Priority {
		return false
	}
	if f.Status != "" && l.Status != f.Status {
		return false
	}
	if f.AssignedTo != nil && (l.AssignedTo == nil || *l.AssignedTo != *f.AssignedTo) {
		return false
	}
	if f.DateFrom != nil && l.CreatedAt.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && !l.CreatedAt.Before(f.DateTo.AddDate(0, 0, 1)) {
		return false
	}
	return true
}

type mockMemberDirectory struct {
	members map[int64]hierarchy.Member
}

func (m *mockMemberDirectory) Member(id int64) (hierarchy.Member, error) {
	member, ok := m.members[id]
	if !ok {
		return hierarchy.Member{}, internal.ErrUserNotFound
	}
	return member, nil
}

func (m *mockMemberDirectory) Members() ([]hierarchy.Member, error) {
	all := make([]hierarchy.Member, 0, len(m.members))
	for _, member := range m.members {
		all = append(all, member)
	}
	return all, nil
}

var _ = Describe("AnalyticsService", func() {
	var (
		service   *analytics.Service
		source    *mockLeadSource
		directory *mockMemberDirectory

		admin      hierarchy.Member
		manager    hierarchy.Member
		supervisor hierarchy.Member
		agentOne   hierarchy.Member
		agentTwo   hierarchy.Member
	)

	model := func(id int64, priority lead.Priority, status string, assignedTo *int64, createdBy int64, managerID, supervisorID *int64, createdAt time.Time) *leadDatamodel.Lead {
		return &leadDatamodel.Lead{
			ID:           id,
			Name:         status,
			Priority:     string(priority),
			Status:       status,
			AssignedTo:   assignedTo,
			CreatedBy:    createdBy,
			ManagerID:    managerID,
			SupervisorID: supervisorID,
			CreatedAt:    createdAt,
			UpdatedAt:    createdAt,
		}
	}

	BeforeEach(func() {
		admin = hierarchy.Member{ID: 1, Name: "Admin", Roles: []string{"superadmin"}}
		manager = hierarchy.Member{ID: 2, Name: "Manager", Roles: []string{"manager"}}
		supervisor = hierarchy.Member{ID: 3, Name: "Supervisor", Roles: []string{"supervisor"}, ManagerID: ptr(2)}
		agentOne = hierarchy.Member{ID: 4, Name: "Agent One", Roles: []string{"agent"}, ManagerID: ptr(2), SupervisorID: ptr(3)}
		agentTwo = hierarchy.Member{ID: 5, Name: "Agent Two", Roles: []string{"agent"}, ManagerID: ptr(2), SupervisorID: ptr(3)}

		directory = &mockMemberDirectory{members: map[int64]hierarchy.Member{
			1: admin, 2: manager, 3: supervisor, 4: agentOne, 5: agentTwo,
		}}

		source = &mockLeadSource{
			lookup: func(id int64) (hierarchy.Member, bool) {
				m, err := directory.Member(id)
				return m, err == nil
			},
		}

		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = analytics.NewService(source, directory, logger)
	})

	Describe("Dashboard", func() {
		BeforeEach(func() {
			now := time.Now()
			source.leads = []*leadDatamodel.Lead{
				model(1, lead.PriorityClosing, "Fully Paid", ptr(4), 3, ptr(2), ptr(3), now.AddDate(0, 0, -10)),
				model(2, lead.PriorityWarm, "Interested", ptr(4), 3, ptr(2), ptr(3), now.AddDate(0, 0, -5)),
				model(3, lead.PriorityLost, "Unreachable", ptr(5), 3, ptr(2), ptr(3), now.AddDate(0, 0, -3)),
				model(4, lead.PriorityHot, "Negotiation", nil, 3, nil, nil, now),
			}
		})

		It("derives every metric from one snapshot", func() {
			report, err := service.Dashboard(supervisor, analytics.ReportFiltersDTO{})

			Expect(err).ToNot(HaveOccurred())
			Expect(source.snapshots).To(Equal(1), "a report pass queries exactly once")

			Expect(report.Total).To(Equal(4))

			sum := 0
			for _, count := range report.ByPriority {
				sum += count
			}
			Expect(sum).To(Equal(report.Total), "priority counts foot to the total")

			distributed := 0
			for _, sc := range report.StatusDistribution {
				distributed += sc.Count
			}
			Expect(distributed).To(Equal(report.Total), "status counts foot to the total")

			Expect(report.Rates.ClosingRate).To(Equal(25.0))
			Expect(report.Rates.LossRate).To(Equal(25.0))
			Expect(report.Rates.ActiveRate).To(Equal(50.0))

			Expect(report.MonthlyTrend).To(HaveLen(6))
		})

		It("scopes the snapshot to the actor", func() {
			agentReport, err := service.Dashboard(agentOne, analytics.ReportFiltersDTO{})

			Expect(err).ToNot(HaveOccurred())
			Expect(agentReport.Total).To(Equal(2), "agent one only sees their assigned leads")
		})

		It("narrows by report filters", func() {
			report, err := service.Dashboard(supervisor, analytics.ReportFiltersDTO{Priority: "Warm"})

			Expect(err).ToNot(HaveOccurred())
			Expect(report.Total).To(Equal(1))
			Expect(report.ByPriority[lead.PriorityWarm]).To(Equal(1))
			Expect(report.ByPriority[lead.PriorityClosing]).To(Equal(0))
		})

		It("rejects an invalid priority filter", func() {
			_, err := service.Dashboard(supervisor, analytics.ReportFiltersDTO{Priority: "Scorching"})
			Expect(err).To(MatchError(internal.ErrInvalidPriority))
		})
	})

	Describe("DailyReport", func() {
		It("zero-fills the inclusive range", func() {
			source.leads = []*leadDatamodel.Lead{
				model(1, lead.PriorityCold, "New Inquiry", ptr(4), 3, ptr(2), ptr(3),
					time.Date(2025, time.May, 2, 9, 0, 0, 0, time.UTC)),
			}

			report, err := service.DailyReport(supervisor, analytics.DailyReportDTO{
				DateFrom: "2025-05-01",
				DateTo:   "2025-05-04",
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(report.Days).To(HaveLen(4))
			Expect(report.Days[1].Total).To(Equal(1))
			Expect(report.Days[0].Total).To(BeZero())
			Expect(report.Days[3].Total).To(BeZero())
		})

		It("rejects reversed ranges before querying", func() {
			_, err := service.DailyReport(supervisor, analytics.DailyReportDTO{
				DateFrom: "2025-05-04",
				DateTo:   "2025-05-01",
			})

			Expect(err).To(MatchError(internal.ErrInvalidDateRange))
			Expect(source.snapshots).To(BeZero())
		})

		It("requires both dates", func() {
			_, err := service.DailyReport(supervisor, analytics.DailyReportDTO{DateFrom: "2025-05-01"})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Team", func() {
		BeforeEach(func() {
			now := time.Now()
			source.leads = []*leadDatamodel.Lead{
				model(1, lead.PriorityClosing, "Fully Paid", ptr(4), 3, ptr(2), ptr(3), now),
				model(2, lead.PriorityWarm, "Interested", ptr(4), 3, ptr(2), ptr(3), now),
				model(3, lead.PriorityCold, "New Inquiry", ptr(5), 3, ptr(2), ptr(3), now),
			}
		})

		It("rejects agents", func() {
			_, err := service.Team(agentOne, analytics.ReportFiltersDTO{})
			Expect(err).To(MatchError(internal.ErrUnauthorizedAccess))
		})

		It("rolls up one row per direct report, zero-filled", func() {
			report, err := service.Team(supervisor, analytics.ReportFiltersDTO{})

			Expect(err).ToNot(HaveOccurred())
			Expect(report.LeaderID).To(Equal(supervisor.ID))
			Expect(report.Members).To(HaveLen(2))

			byID := map[int64]analytics.MemberPerformance{}
			for _, row := range report.Members {
				byID[row.UserID] = row
			}
			Expect(byID[4].Total).To(Equal(2))
			Expect(byID[4].ConversionRate).To(Equal(50.0))
			Expect(byID[5].Total).To(Equal(1))
			Expect(byID[5].ConversionRate).To(BeZero())
		})

		It("gives a superadmin every agent", func() {
			report, err := service.Team(admin, analytics.ReportFiltersDTO{})

			Expect(err).ToNot(HaveOccurred())
			Expect(report.Members).To(HaveLen(2))
		})
	})

	Describe("Performers", func() {
		It("resolves names through the directory", func() {
			now := time.Now()
			source.leads = []*leadDatamodel.Lead{
				model(1, lead.PriorityClosing, "Fully Paid", ptr(4), 3, ptr(2), ptr(3), now),
			}

			ranks, err := service.Performers(supervisor, analytics.ReportFiltersDTO{}, 5)

			Expect(err).ToNot(HaveOccurred())
			Expect(ranks).To(HaveLen(1))
			Expect(ranks[0].Name).To(Equal("Agent One"))
		})
	})

	Describe("UserConversionRate", func() {
		It("computes the rate over the actor's visible leads", func() {
			now := time.Now()
			source.leads = []*leadDatamodel.Lead{
				model(1, lead.PriorityClosing, "Fully Paid", ptr(4), 3, ptr(2), ptr(3), now),
				model(2, lead.PriorityWarm, "Interested", ptr(4), 3, ptr(2), ptr(3), now),
			}

			rate, err := service.UserConversionRate(supervisor, 4)

			Expect(err).ToNot(HaveOccurred())
			Expect(rate).To(Equal(50.0))
		})
	})

	Describe("end-to-end visibility scenario", func() {
		It("keeps an agent-created lead visible to the right chain only", func() {
			otherSupervisor := hierarchy.Member{ID: 30, Name: "Other Supervisor", Roles: []string{"supervisor"}, ManagerID: ptr(20)}
			directory.members[30] = otherSupervisor

			source.leads = []*leadDatamodel.Lead{
				model(1, lead.PriorityCold, "New Inquiry", ptr(4), 4, ptr(2), ptr(3), time.Now()),
			}

			managerView, err := service.Dashboard(manager, analytics.ReportFiltersDTO{})
			Expect(err).ToNot(HaveOccurred())
			Expect(managerView.Total).To(Equal(1), "the lead's manager sees it")

			otherView, err := service.Dashboard(otherSupervisor, analytics.ReportFiltersDTO{})
			Expect(err).ToNot(HaveOccurred())
			Expect(otherView.Total).To(BeZero(), "a sibling supervisor does not")

			adminView, err := service.Dashboard(admin, analytics.ReportFiltersDTO{})
			Expect(err).ToNot(HaveOccurred())
			Expect(adminView.Total).To(Equal(1), "a superadmin always sees it")
		})
	})
})
