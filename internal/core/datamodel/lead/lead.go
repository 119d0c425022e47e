package lead

import "time"

type Lead struct {
	ID           int64     `gorm:"primaryKey"`
	Name         string    `gorm:"column:name;not null"`
	Email        string    `gorm:"column:email"`
	Phone        string    `gorm:"column:phone"`
	Project      string    `gorm:"column:project"`
	Unit         string    `gorm:"column:unit"`
	Priority     string    `gorm:"column:priority;not null"`
	Status       string    `gorm:"column:status;not null"`
	Description  string    `gorm:"column:description"`
	AssignedTo   *int64    `gorm:"column:assigned_to"`
	CreatedBy    int64     `gorm:"column:created_by;not null"`
	ManagerID    *int64    `gorm:"column:manager_id"`
	SupervisorID *int64    `gorm:"column:supervisor_id"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (Lead) TableName() string {
	return "leads"
}

// History rows are append-only; there is no update or delete path for them.
type History struct {
	ID          int64     `gorm:"primaryKey"`
	LeadID      int64     `gorm:"column:lead_id;not null;index"`
	OldPriority string    `gorm:"column:old_priority"`
	NewPriority string    `gorm:"column:new_priority;not null"`
	Description string    `gorm:"column:description"`
	ActorID     int64     `gorm:"column:actor_id;not null"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (History) TableName() string {
	return "lead_histories"
}
