package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/frahmantamala/lead-management/internal/hierarchy"
	"github.com/frahmantamala/lead-management/internal/lead"
)

// The engine is pure: every function below computes over one immutable lead
// snapshot and never touches storage. A report pass fetches its snapshot once
// and derives all metrics from it, so every number in a response reflects the
// same filter state.
//
// "Converted" means priority Closing throughout this package. Booking is
// reported as its own count where a metric carries it.

type ConversionRates struct {
	ClosingRate float64 `json:"closing_rate"`
	LossRate    float64 `json:"loss_rate"`
	ActiveRate  float64 `json:"active_rate"`
}

type TrendPoint struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

type DailyPoint struct {
	Date    string `json:"date"`
	Total   int    `json:"total"`
	Closing int    `json:"closing_count"`
	Booking int    `json:"booking_count"`
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

type PerformerRank struct {
	UserID         int64   `json:"user_id"`
	Name           string  `json:"name"`
	Total          int     `json:"total"`
	Converted      int     `json:"converted"`
	ConversionRate float64 `json:"conversion_rate"`
}

type MemberPerformance struct {
	UserID         int64                 `json:"user_id"`
	Name           string                `json:"name"`
	Total          int                   `json:"total"`
	ByPriority     map[lead.Priority]int `json:"by_priority"`
	ConversionRate float64               `json:"conversion_rate"`
}

const (
	monthLabelLayout = "Jan 2006"
	dayLayout        = "2006-01-02"
)

// CountByPriority always yields one entry per priority value; an absent
// priority is 0, not omitted.
func CountByPriority(leads []*lead.Lead) map[lead.Priority]int {
	counts := make(map[lead.Priority]int, len(lead.AllPriorities()))
	for _, p := range lead.AllPriorities() {
		counts[p] = 0
	}
	for _, l := range leads {
		if _, ok := counts[l.Priority]; ok {
			counts[l.Priority]++
		}
	}
	return counts
}

// Conversion computes closing/loss/active rates. The active rate comes from
// the raw remaining count rather than subtracting rounded rates, so the three
// cannot drift from compounded rounding. An empty set is all zeros.
func Conversion(leads []*lead.Lead) ConversionRates {
	total := len(leads)
	if total == 0 {
		return ConversionRates{}
	}

	var closing, lost int
	for _, l := range leads {
		switch l.Priority {
		case lead.PriorityClosing:
			closing++
		case lead.PriorityLost:
			lost++
		}
	}

	return ConversionRates{
		ClosingRate: round2(float64(closing) / float64(total) * 100),
		LossRate:    round2(float64(lost) / float64(total) * 100),
		ActiveRate:  round2(float64(total-closing-lost) / float64(total) * 100),
	}
}

// MonthlyTrend buckets leads into the most recent monthsBack calendar months
// ending at now's month, oldest first. Months without leads still appear with
// count 0.
func MonthlyTrend(leads []*lead.Lead, monthsBack int, now time.Time) []TrendPoint {
	if monthsBack <= 0 {
		monthsBack = 6
	}

	type monthKey struct {
		year  int
		month time.Month
	}

	counts := make(map[monthKey]int)
	for _, l := range leads {
		counts[monthKey{l.CreatedAt.Year(), l.CreatedAt.Month()}]++
	}

	points := make([]TrendPoint, 0, monthsBack)
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -(monthsBack - 1), 0)
	for i := 0; i < monthsBack; i++ {
		m := first.AddDate(0, i, 0)
		points = append(points, TrendPoint{
			Month: m.Format(monthLabelLayout),
			Count: counts[monthKey{m.Year(), m.Month()}],
		})
	}
	return points
}

// DailyTrend yields one entry per calendar day in [from, to] inclusive; days
// without leads are zero-filled, never skipped.
func DailyTrend(leads []*lead.Lead, from, to time.Time) []DailyPoint {
	from = truncateDay(from)
	to = truncateDay(to)
	if to.Before(from) {
		return []DailyPoint{}
	}

	totals := make(map[string]*DailyPoint)
	for _, l := range leads {
		day := truncateDay(l.CreatedAt)
		if day.Before(from) || day.After(to) {
			continue
		}
		key := day.Format(dayLayout)
		point, ok := totals[key]
		if !ok {
			point = &DailyPoint{Date: key}
			totals[key] = point
		}
		point.Total++
		switch l.Priority {
		case lead.PriorityClosing:
			point.Closing++
		case lead.PriorityBooking:
			point.Booking++
		}
	}

	var points []DailyPoint
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		key := day.Format(dayLayout)
		if point, ok := totals[key]; ok {
			points = append(points, *point)
		} else {
			points = append(points, DailyPoint{Date: key})
		}
	}
	return points
}

// StatusDistribution counts leads per status, most frequent first. Equal
// counts order by status name so the result is deterministic.
func StatusDistribution(leads []*lead.Lead) []StatusCount {
	counts := make(map[string]int)
	for _, l := range leads {
		counts[l.Status]++
	}

	distribution := make([]StatusCount, 0, len(counts))
	for status, count := range counts {
		distribution = append(distribution, StatusCount{Status: status, Count: count})
	}
	sort.Slice(distribution, func(i, j int) bool {
		if distribution[i].Count != distribution[j].Count {
			return distribution[i].Count > distribution[j].Count
		}
		return distribution[i].Status < distribution[j].Status
	})
	return distribution
}

// TeamPerformance rolls up one row per member: total, per-priority counts and
// conversion rate. Members without leads still appear zero-filled.
func TeamPerformance(leads []*lead.Lead, members []hierarchy.Member) []MemberPerformance {
	rows := make([]MemberPerformance, 0, len(members))
	for _, member := range members {
		byPriority := make(map[lead.Priority]int, len(lead.AllPriorities()))
		for _, p := range lead.AllPriorities() {
			byPriority[p] = 0
		}

		total := 0
		for _, l := range leads {
			if l.AssignedTo == nil || *l.AssignedTo != member.ID {
				continue
			}
			total++
			if _, ok := byPriority[l.Priority]; ok {
				byPriority[l.Priority]++
			}
		}

		rows = append(rows, MemberPerformance{
			UserID:         member.ID,
			Name:           member.Name,
			Total:          total,
			ByPriority:     byPriority,
			ConversionRate: round2(rate(byPriority[lead.PriorityClosing], total)),
		})
	}
	return rows
}

// TopPerformers ranks assignees by converted count descending, ties broken by
// total descending, remaining ties by first appearance in the snapshot.
// Unassigned leads aggregate into a pseudo-entry with user ID 0 when present.
func TopPerformers(leads []*lead.Lead, names map[int64]string, limit int) []PerformerRank {
	if limit <= 0 {
		limit = 5
	}

	index := make(map[int64]int)
	var ranks []PerformerRank
	for _, l := range leads {
		var userID int64
		if l.AssignedTo != nil {
			userID = *l.AssignedTo
		}

		pos, ok := index[userID]
		if !ok {
			name := names[userID]
			if userID == 0 {
				name = "Unassigned"
			}
			pos = len(ranks)
			index[userID] = pos
			ranks = append(ranks, PerformerRank{UserID: userID, Name: name})
		}

		ranks[pos].Total++
		if l.Priority == lead.PriorityClosing {
			ranks[pos].Converted++
		}
	}

	for i := range ranks {
		ranks[i].ConversionRate = round2(rate(ranks[i].Converted, ranks[i].Total))
	}

	sort.SliceStable(ranks, func(i, j int) bool {
		if ranks[i].Converted != ranks[j].Converted {
			return ranks[i].Converted > ranks[j].Converted
		}
		return ranks[i].Total > ranks[j].Total
	})

	if len(ranks) > limit {
		ranks = ranks[:limit]
	}
	return ranks
}

// ConversionRateFor computes the closing rate of one assignee's leads within
// the snapshot, 0 when they have none.
func ConversionRateFor(leads []*lead.Lead, userID int64) float64 {
	var total, closing int
	for _, l := range leads {
		if l.AssignedTo == nil || *l.AssignedTo != userID {
			continue
		}
		total++
		if l.Priority == lead.PriorityClosing {
			closing++
		}
	}
	return round2(rate(closing, total))
}

func rate(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
