package postgres

import (
	"time"

	internal "github.com/frahmantamala/lead-management/internal"
	leadDatamodel "github.com/frahmantamala/lead-management/internal/core/datamodel/lead"
	"github.com/frahmantamala/lead-management/internal/lead"
	"gorm.io/gorm"
)

// LeadRepository implements lead.RepositoryAPI using GORM.
type LeadRepository struct {
	db *gorm.DB
}

func NewLeadRepository(db *gorm.DB) lead.RepositoryAPI {
	return &LeadRepository{db: db}
}

func (r *LeadRepository) Create(l *leadDatamodel.Lead) error {
	return r.db.Create(l).Error
}

func (r *LeadRepository) GetByID(id int64) (*leadDatamodel.Lead, error) {
	var l leadDatamodel.Lead
	err := r.db.Where("id = ?", id).First(&l).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrLeadNotFound
		}
		return nil, err
	}
	return &l, nil
}

// List returns one page of the scoped, filtered lead set plus the unpaginated
// total. Scope and filters share the same base query as Count so the listing
// always foots against its own total.
func (r *LeadRepository) List(scope lead.Scope, filters lead.Filters, page lead.Pagination) ([]*leadDatamodel.Lead, int64, error) {
	base := filters.Apply(scope.Apply(r.db.Model(&leadDatamodel.Lead{})))

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var leads []*leadDatamodel.Lead
	err := base.Session(&gorm.Session{}).
		Order("created_at DESC").
		Limit(page.PerPage).
		Offset(page.Offset()).
		Find(&leads).Error
	return leads, total, err
}

// Snapshot fetches the full scoped, filtered set in one query. The
// aggregation engine derives every metric of a report pass from this single
// result so all numbers reflect the same filter state.
func (r *LeadRepository) Snapshot(scope lead.Scope, filters lead.Filters) ([]*leadDatamodel.Lead, error) {
	var leads []*leadDatamodel.Lead
	err := filters.Apply(scope.Apply(r.db.Model(&leadDatamodel.Lead{}))).
		Order("created_at ASC").
		Find(&leads).Error
	return leads, err
}

func (r *LeadRepository) Update(l *leadDatamodel.Lead) error {
	l.UpdatedAt = time.Now()
	return r.db.Save(l).Error
}

// UpdateAssignment writes the assignee and the hierarchy snapshot in a single
// UPDATE; the two can never be observed out of sync.
func (r *LeadRepository) UpdateAssignment(id int64, assignedTo, managerID, supervisorID *int64) error {
	return r.db.Model(&leadDatamodel.Lead{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"assigned_to":   assignedTo,
			"manager_id":    managerID,
			"supervisor_id": supervisorID,
			"updated_at":    time.Now(),
		}).Error
}

func (r *LeadRepository) UpdatePriorityStatus(id int64, priority, status, description string) error {
	updates := map[string]interface{}{
		"priority":   priority,
		"status":     status,
		"updated_at": time.Now(),
	}
	if description != "" {
		updates["description"] = description
	}
	return r.db.Model(&leadDatamodel.Lead{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// Delete removes the lead and cascades its history rows.
func (r *LeadRepository) Delete(id int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("lead_id = ?", id).Delete(&leadDatamodel.History{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&leadDatamodel.Lead{}).Error
	})
}

func (r *LeadRepository) AppendHistory(h *leadDatamodel.History) error {
	return r.db.Create(h).Error
}

func (r *LeadRepository) HistoryForLead(leadID int64) ([]*leadDatamodel.History, error) {
	var entries []*leadDatamodel.History
	err := r.db.Where("lead_id = ?", leadID).
		Order("created_at ASC").
		Find(&entries).Error
	return entries, err
}
