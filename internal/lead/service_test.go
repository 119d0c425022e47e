package lead_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	internal "github.com/frahmantamala/lead-management/internal"
	leadDatamodel "github.com/frahmantamala/lead-management/internal/core/datamodel/lead"
	"github.com/frahmantamala/lead-management/internal/core/events"
	"github.com/frahmantamala/lead-management/internal/hierarchy"
	"github.com/frahmantamala/lead-management/internal/lead"
)

// Mock repository for testing
type mockLeadRepository struct {
	leads       map[int64]*leadDatamodel.Lead
	histories   map[int64][]*leadDatamodel.History
	createError error
	updateError error
	nextID      int64

	lastScope   lead.Scope
	lastFilters lead.Filters
	lastPage    lead.Pagination
}

func newMockLeadRepository() *mockLeadRepository {
	return &mockLeadRepository{
		leads:     make(map[int64]*leadDatamodel.Lead),
		histories: make(map[int64][]*leadDatamodel.History),
		nextID:    1,
	}
}

func (m *mockLeadRepository) Create(l *leadDatamodel.Lead) error {
	if m.createError != nil {
		return m.createError
	}
	l.ID = m.nextID
	m.nextID++
	m.leads[l.ID] = l
	return nil
}

func (m *mockLeadRepository) GetByID(id int64) (*leadDatamodel.Lead, error) {
	l, exists := m.leads[id]
	if !exists {
		return nil, errors.New("lead not found")
	}
	copied := *l
	return &copied, nil
}

func (m *mockLeadRepository) List(scope lead.Scope, filters lead.Filters, page lead.Pagination) ([]*leadDatamodel.Lead, int64, error) {
	m.lastScope = scope
	m.lastFilters = filters
	m.lastPage = page

	var result []*leadDatamodel.Lead
	for _, l := range m.leads {
		result = append(result, l)
	}
	return result, int64(len(result)), nil
}

func (m *mockLeadRepository) Snapshot(scope lead.Scope, filters lead.Filters) ([]*leadDatamodel.Lead, error) {
	var result []*leadDatamodel.Lead
	for _, l := range m.leads {
		result = append(result, l)
	}
	return result, nil
}

func (m *mockLeadRepository) Update(l *leadDatamodel.Lead) error {
	if m.updateError != nil {
		return m.updateError
	}
	m.leads[l.ID] = l
	return nil
}

func (m *mockLeadRepository) UpdateAssignment(id int64, assignedTo, managerID, supervisorID *int64) error {
	if m.updateError != nil {
		return m.updateError
	}
	l, exists := m.leads[id]
	if !exists {
		return errors.New("lead not found")
	}
	// single write: assignee and snapshot change together
	l.AssignedTo = assignedTo
	l.ManagerID = managerID
	l.SupervisorID = supervisorID
	l.UpdatedAt = time.Now()
	return nil
}

func (m *mockLeadRepository) UpdatePriorityStatus(id int64, priority, status, description string) error {
	if m.updateError != nil {
		return m.updateError
	}
	l, exists := m.leads[id]
	if !exists {
		return errors.New("lead not found")
	}
	l.Priority = priority
	l.Status = status
	if description != "" {
		l.Description = description
	}
	l.UpdatedAt = time.Now()
	return nil
}

func (m *mockLeadRepository) Delete(id int64) error {
	delete(m.leads, id)
	delete(m.histories, id)
	return nil
}

func (m *mockLeadRepository) AppendHistory(h *leadDatamodel.History) error {
	m.histories[h.LeadID] = append(m.histories[h.LeadID], h)
	return nil
}

func (m *mockLeadRepository) HistoryForLead(leadID int64) ([]*leadDatamodel.History, error) {
	return m.histories[leadID], nil
}

// Mock directory backed by the shared org chart
type mockDirectory struct{}

func (mockDirectory) Member(id int64) (hierarchy.Member, error) {
	if m, ok := orgChart[id]; ok {
		return m, nil
	}
	return hierarchy.Member{}, internal.ErrUserNotFound
}

var _ = Describe("LeadService", func() {
	var (
		service  *lead.Service
		mockRepo *mockLeadRepository
		bus      *events.EventBus
		logger   *slog.Logger

		manager    hierarchy.Member
		supervisor hierarchy.Member
		agent      hierarchy.Member
		ctx        context.Context
	)

	BeforeEach(func() {
		mockRepo = newMockLeadRepository()
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		bus = events.NewEventBus(logger)
		service = lead.NewService(mockRepo, mockDirectory{}, bus, logger)

		manager = orgChart[2]
		supervisor = orgChart[3]
		agent = orgChart[4]
		ctx = context.Background()
	})

	Describe("CreateLead", func() {
		It("creates an unassigned lead with an empty hierarchy snapshot", func() {
			dto := lead.CreateLeadDTO{
				Name:     "Prospect",
				Priority: "Cold",
				Status:   "New Inquiry",
			}

			result, err := service.CreateLead(ctx, supervisor, dto)

			Expect(err).ToNot(HaveOccurred())
			Expect(result.ID).To(BeNumerically(">", 0))
			Expect(result.CreatedBy).To(Equal(supervisor.ID))
			Expect(result.AssignedTo).To(BeNil())
			Expect(result.ManagerID).To(BeNil())
			Expect(result.SupervisorID).To(BeNil())
		})

		It("snapshots the assignee's hierarchy links on assigned create", func() {
			assignee := int64(4)
			dto := lead.CreateLeadDTO{
				Name:       "Prospect",
				Priority:   "Warm",
				Status:     "Interested",
				AssignedTo: &assignee,
			}

			result, err := service.CreateLead(ctx, supervisor, dto)

			Expect(err).ToNot(HaveOccurred())
			Expect(result.AssignedTo).To(Equal(&assignee))
			Expect(*result.ManagerID).To(Equal(int64(2)))
			Expect(*result.SupervisorID).To(Equal(int64(3)))
		})

		It("appends an initial history entry", func() {
			dto := lead.CreateLeadDTO{Name: "Prospect", Priority: "Cold", Status: "New Inquiry"}

			result, err := service.CreateLead(ctx, agent, dto)

			Expect(err).ToNot(HaveOccurred())
			entries := mockRepo.histories[result.ID]
			Expect(entries).To(HaveLen(1))
			Expect(entries[0].NewPriority).To(Equal("Cold"))
			Expect(entries[0].OldPriority).To(BeEmpty())
			Expect(entries[0].ActorID).To(Equal(agent.ID))
		})

		It("rejects an unknown priority", func() {
			dto := lead.CreateLeadDTO{Name: "Prospect", Priority: "Scorching", Status: "New Inquiry"}

			_, err := service.CreateLead(ctx, agent, dto)

			Expect(err).To(MatchError(internal.ErrInvalidPriority))
		})

		It("rejects a status outside the priority band", func() {
			dto := lead.CreateLeadDTO{Name: "Prospect", Priority: "Cold", Status: "Negotiation"}

			_, err := service.CreateLead(ctx, agent, dto)

			Expect(err).To(MatchError(internal.ErrInvalidStatus))
		})

		It("denies assignment to an agent outside the actor's team", func() {
			outsideAgent := int64(40)
			dto := lead.CreateLeadDTO{
				Name:       "Prospect",
				Priority:   "Cold",
				Status:     "New Inquiry",
				AssignedTo: &outsideAgent,
			}

			_, err := service.CreateLead(ctx, supervisor, dto)

			Expect(err).To(MatchError(internal.ErrAssignmentDenied))
		})
	})

	Describe("GetLead", func() {
		It("rejects access to a lead outside the actor's scope", func() {
			other := int64(40)
			mockRepo.leads[7] = &leadDatamodel.Lead{
				ID: 7, Name: "Other team", Priority: "Cold", Status: "New Inquiry",
				AssignedTo: &other, CreatedBy: 30, ManagerID: ptr(20), SupervisorID: ptr(30),
			}

			_, err := service.GetLead(agent, 7)

			Expect(err).To(MatchError(internal.ErrUnauthorizedAccess))
		})

		It("returns not found for missing leads", func() {
			_, err := service.GetLead(agent, 404)
			Expect(err).To(MatchError(internal.ErrLeadNotFound))
		})
	})

	Describe("ListLeads", func() {
		It("coerces disallowed per-page values to the default", func() {
			resp, err := service.ListLeads(manager, lead.ListLeadsDTO{Page: 2, PerPage: 33})

			Expect(err).ToNot(HaveOccurred())
			Expect(resp.PerPage).To(Equal(25))
			Expect(mockRepo.lastPage.PerPage).To(Equal(25))
			Expect(mockRepo.lastPage.Offset()).To(Equal(25))
		})

		It("derives the scope from the actor's effective role", func() {
			_, err := service.ListLeads(manager, lead.ListLeadsDTO{})

			Expect(err).ToNot(HaveOccurred())
			Expect(mockRepo.lastScope.Role()).To(Equal(hierarchy.RoleManager))
		})

		It("rejects malformed dates before touching the repository", func() {
			_, err := service.ListLeads(manager, lead.ListLeadsDTO{DateFrom: "31-12-2025"})

			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidDate))
		})

		It("rejects reversed date ranges", func() {
			_, err := service.ListLeads(manager, lead.ListLeadsDTO{
				DateFrom: "2025-06-10",
				DateTo:   "2025-06-01",
			})

			Expect(err).To(MatchError(internal.ErrInvalidDateRange))
		})
	})

	Describe("AssignLead", func() {
		var leadID int64

		BeforeEach(func() {
			assignee := int64(4)
			created, err := service.CreateLead(ctx, supervisor, lead.CreateLeadDTO{
				Name:       "Prospect",
				Priority:   "Hot",
				Status:     "Negotiation",
				AssignedTo: &assignee,
			})
			Expect(err).ToNot(HaveOccurred())
			leadID = created.ID
		})

		It("re-syncs the hierarchy snapshot in the same write as the assignment", func() {
			newAssignee := int64(5)
			result, err := service.AssignLead(ctx, supervisor, leadID, lead.AssignLeadDTO{AssignedTo: &newAssignee})

			Expect(err).ToNot(HaveOccurred())
			Expect(*result.AssignedTo).To(Equal(newAssignee))
			Expect(*result.ManagerID).To(Equal(int64(2)))
			Expect(*result.SupervisorID).To(Equal(int64(3)))

			stored := mockRepo.leads[leadID]
			Expect(*stored.AssignedTo).To(Equal(newAssignee))
			Expect(*stored.ManagerID).To(Equal(int64(2)))
			Expect(*stored.SupervisorID).To(Equal(int64(3)))
		})

		It("clears the snapshot when unassigning", func() {
			result, err := service.AssignLead(ctx, supervisor, leadID, lead.AssignLeadDTO{AssignedTo: nil})

			Expect(err).ToNot(HaveOccurred())
			Expect(result.AssignedTo).To(BeNil())
			Expect(result.ManagerID).To(BeNil())
			Expect(result.SupervisorID).To(BeNil())
		})

		It("denies assignees outside the actor's team", func() {
			outside := int64(40)
			_, err := service.AssignLead(ctx, supervisor, leadID, lead.AssignLeadDTO{AssignedTo: &outside})

			Expect(err).To(MatchError(internal.ErrAssignmentDenied))

			stored := mockRepo.leads[leadID]
			Expect(*stored.AssignedTo).To(Equal(int64(4)), "a denied assignment must not touch the lead")
		})

		It("returns user not found for unknown assignees", func() {
			ghost := int64(12345)
			_, err := service.AssignLead(ctx, supervisor, leadID, lead.AssignLeadDTO{AssignedTo: &ghost})

			Expect(err).To(MatchError(internal.ErrUserNotFound))
		})
	})

	Describe("UpdatePriority", func() {
		var leadID int64

		BeforeEach(func() {
			created, err := service.CreateLead(ctx, agent, lead.CreateLeadDTO{
				Name:     "Prospect",
				Priority: "Hot",
				Status:   "Negotiation",
			})
			Expect(err).ToNot(HaveOccurred())
			leadID = created.ID
		})

		It("moves the lead and appends a history entry", func() {
			result, err := service.UpdatePriority(ctx, agent, leadID, lead.UpdatePriorityDTO{
				Priority:    "Closing",
				Status:      "Contract Signed",
				Description: "deal closed",
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Priority).To(Equal(lead.PriorityClosing))

			entries := mockRepo.histories[leadID]
			Expect(entries).To(HaveLen(2))
			last := entries[len(entries)-1]
			Expect(last.OldPriority).To(Equal("Hot"))
			Expect(last.NewPriority).To(Equal("Closing"))
		})

		It("rejects a status that belongs to a different priority", func() {
			_, err := service.UpdatePriority(ctx, agent, leadID, lead.UpdatePriorityDTO{
				Priority: "Closing",
				Status:   "New Inquiry",
			})

			Expect(err).To(MatchError(internal.ErrInvalidStatus))
		})
	})

	Describe("GetHistory", func() {
		It("requires visibility on the lead", func() {
			other := int64(40)
			mockRepo.leads[9] = &leadDatamodel.Lead{
				ID: 9, Priority: "Cold", Status: "New Inquiry",
				AssignedTo: &other, CreatedBy: 30,
			}

			_, err := service.GetHistory(agent, 9)

			Expect(err).To(MatchError(internal.ErrUnauthorizedAccess))
		})
	})
})
