package lead

import (
	"errors"
	"time"

	internal "github.com/frahmantamala/lead-management/internal"
)

const dateLayout = "2006-01-02"

// CreateLeadDTO is the request payload for creating a lead.
type CreateLeadDTO struct {
	Name        string `json:"name" validate:"required,max=200"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Project     string `json:"project,omitempty"`
	Unit        string `json:"unit,omitempty"`
	Priority    string `json:"priority" validate:"required"`
	Status      string `json:"status" validate:"required"`
	Description string `json:"description,omitempty"`
	AssignedTo  *int64 `json:"assigned_to,omitempty"`
}

func (dto CreateLeadDTO) Validate() error {
	if dto.Name == "" {
		return errors.New("name is required")
	}
	if len(dto.Name) > 200 {
		return errors.New("name must be less than 200 characters")
	}
	p := Priority(dto.Priority)
	if !p.IsValid() {
		return internal.ErrInvalidPriority
	}
	if dto.Status == "" {
		return errors.New("status is required")
	}
	if !StatusBelongsTo(dto.Status, p) {
		return internal.ErrInvalidStatus
	}
	return nil
}

// UpdatePriorityDTO changes a lead's priority/status pair. The status must
// belong to the new priority band.
type UpdatePriorityDTO struct {
	Priority    string `json:"priority" validate:"required"`
	Status      string `json:"status" validate:"required"`
	Description string `json:"description,omitempty"`
}

func (dto UpdatePriorityDTO) Validate() error {
	p := Priority(dto.Priority)
	if !p.IsValid() {
		return internal.ErrInvalidPriority
	}
	if dto.Status == "" {
		return errors.New("status is required")
	}
	if !StatusBelongsTo(dto.Status, p) {
		return internal.ErrInvalidStatus
	}
	return nil
}

// AssignLeadDTO sets or changes a lead's assignee. A nil AssignedTo clears
// the assignment.
type AssignLeadDTO struct {
	AssignedTo *int64 `json:"assigned_to"`
}

// ListLeadsDTO carries the raw query filters from the web layer. Dates are
// validated and parsed here, before anything reaches the scoped query or the
// aggregation engine.
type ListLeadsDTO struct {
	Priority   string `json:"priority,omitempty"`
	Status     string `json:"status,omitempty"`
	AssignedTo *int64 `json:"assigned_to,omitempty"`
	Project    string `json:"project,omitempty"`
	Search     string `json:"search,omitempty"`
	DateFrom   string `json:"date_from,omitempty"`
	DateTo     string `json:"date_to,omitempty"`
	Page       int    `json:"page,omitempty"`
	PerPage    int    `json:"per_page,omitempty"`
}

// ToFilters validates and converts the DTO. Malformed dates and reversed
// ranges are rejected at this boundary.
func (dto ListLeadsDTO) ToFilters() (Filters, error) {
	f := Filters{
		Status:     dto.Status,
		AssignedTo: dto.AssignedTo,
		Project:    dto.Project,
		Search:     dto.Search,
	}

	if dto.Priority != "" {
		p := Priority(dto.Priority)
		if !p.IsValid() {
			return Filters{}, internal.ErrInvalidPriority
		}
		f.Priority = &p
	}

	if dto.DateFrom != "" {
		from, err := time.Parse(dateLayout, dto.DateFrom)
		if err != nil {
			return Filters{}, internal.NewValidationFieldError("date_from", "date_from must be YYYY-MM-DD", internal.ErrCodeInvalidDate)
		}
		f.DateFrom = &from
	}
	if dto.DateTo != "" {
		to, err := time.Parse(dateLayout, dto.DateTo)
		if err != nil {
			return Filters{}, internal.NewValidationFieldError("date_to", "date_to must be YYYY-MM-DD", internal.ErrCodeInvalidDate)
		}
		f.DateTo = &to
	}
	if f.DateFrom != nil && f.DateTo != nil && f.DateFrom.After(*f.DateTo) {
		return Filters{}, internal.ErrInvalidDateRange
	}

	return f, nil
}

func (dto ListLeadsDTO) ToPagination() Pagination {
	return NewPagination(dto.Page, dto.PerPage)
}

// ListLeadsResponse is the paginated listing envelope.
type ListLeadsResponse struct {
	Leads   []*Lead `json:"leads"`
	Total   int64   `json:"total"`
	Page    int     `json:"page"`
	PerPage int     `json:"per_page"`
}
