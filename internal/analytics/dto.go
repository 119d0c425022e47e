package analytics

import (
	"time"

	internal "github.com/frahmantamala/lead-management/internal"
	"github.com/frahmantamala/lead-management/internal/lead"
)

// ReportFiltersDTO carries the optional narrowing filters of a report pass.
// It reuses the listing filter validation so scope + filters mean the same
// thing in listings and reports.
type ReportFiltersDTO struct {
	Priority   string `json:"priority,omitempty"`
	Status     string `json:"status,omitempty"`
	AssignedTo *int64 `json:"assigned_to,omitempty"`
	Project    string `json:"project,omitempty"`
	DateFrom   string `json:"date_from,omitempty"`
	DateTo     string `json:"date_to,omitempty"`
}

func (dto ReportFiltersDTO) ToFilters() (lead.Filters, error) {
	return lead.ListLeadsDTO{
		Priority:   dto.Priority,
		Status:     dto.Status,
		AssignedTo: dto.AssignedTo,
		Project:    dto.Project,
		DateFrom:   dto.DateFrom,
		DateTo:     dto.DateTo,
	}.ToFilters()
}

// DailyReportDTO bounds a daily trend. Both dates are required; malformed or
// reversed ranges never reach the engine.
type DailyReportDTO struct {
	ReportFiltersDTO
	DateFrom string `json:"date_from" validate:"required"`
	DateTo   string `json:"date_to" validate:"required"`
}

func (dto DailyReportDTO) Range() (time.Time, time.Time, error) {
	from, err := time.Parse("2006-01-02", dto.DateFrom)
	if err != nil {
		return time.Time{}, time.Time{}, internal.NewValidationFieldError("date_from", "date_from must be YYYY-MM-DD", internal.ErrCodeInvalidDate)
	}
	to, err := time.Parse("2006-01-02", dto.DateTo)
	if err != nil {
		return time.Time{}, time.Time{}, internal.NewValidationFieldError("date_to", "date_to must be YYYY-MM-DD", internal.ErrCodeInvalidDate)
	}
	if from.After(to) {
		return time.Time{}, time.Time{}, internal.ErrInvalidDateRange
	}
	return from, to, nil
}

// DashboardReport is the single-pass dashboard payload: every field derives
// from one snapshot.
type DashboardReport struct {
	Total              int                   `json:"total"`
	ByPriority         map[lead.Priority]int `json:"by_priority"`
	Rates              ConversionRates       `json:"rates"`
	MonthlyTrend       []TrendPoint          `json:"monthly_trend"`
	StatusDistribution []StatusCount         `json:"status_distribution"`
	TopPerformers      []PerformerRank       `json:"top_performers"`
}

type DailyReport struct {
	DateFrom string       `json:"date_from"`
	DateTo   string       `json:"date_to"`
	Days     []DailyPoint `json:"days"`
}

type TeamReport struct {
	LeaderID int64               `json:"leader_id"`
	Members  []MemberPerformance `json:"members"`
}
