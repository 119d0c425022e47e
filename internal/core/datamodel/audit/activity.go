package audit

import "time"

// Activity is the append-only audit trail row. Before/After hold optional JSON
// snapshots of the subject around the change.
type Activity struct {
	ID          int64     `gorm:"primaryKey"`
	ActorID     int64     `gorm:"column:actor_id;not null;index"`
	Action      string    `gorm:"column:action;not null"`
	Description string    `gorm:"column:description"`
	SubjectType string    `gorm:"column:subject_type;not null"`
	SubjectID   int64     `gorm:"column:subject_id;not null;index"`
	Before      string    `gorm:"column:before_snapshot"`
	After       string    `gorm:"column:after_snapshot"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (Activity) TableName() string {
	return "activities"
}
