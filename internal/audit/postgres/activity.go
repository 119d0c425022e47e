package postgres

import (
	"gorm.io/gorm"

	auditDatamodel "github.com/frahmantamala/lead-management/internal/core/datamodel/audit"
)

type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) Append(entry *auditDatamodel.Activity) error {
	return r.db.Create(entry).Error
}

func (r *ActivityRepository) ForSubject(subjectType string, subjectID int64) ([]*auditDatamodel.Activity, error) {
	var entries []*auditDatamodel.Activity
	err := r.db.
		Where("subject_type = ? AND subject_id = ?", subjectType, subjectID).
		Order("created_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
