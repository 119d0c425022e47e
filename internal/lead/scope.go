package lead

import (
	"time"

	"github.com/frahmantamala/lead-management/internal/hierarchy"
	"gorm.io/gorm"
)

// Scope is the access-control predicate restricting which leads a user may
// see in bulk operations. It is the base of every listing, report, and
// dashboard query. For a bulk query excluded leads are silently filtered,
// unlike the hard rejection CanAccess demands for single-lead access.
//
// Invariant: Scope.Matches(lead) agrees with CanAccess(user, lead) for every
// user/lead pair.
type Scope struct {
	role   hierarchy.Role
	userID int64
}

// ScopeFor derives the base lead filter for the given user.
func ScopeFor(user hierarchy.Member) Scope {
	return Scope{role: user.EffectiveRole(), userID: user.ID}
}

func (s Scope) Role() hierarchy.Role { return s.role }

// Matches is the in-memory form of the predicate, driven by the same rules as
// CanAccess.
func (s Scope) Matches(l *Lead, lookup AssigneeLookup) bool {
	user := hierarchy.Member{ID: s.userID, Roles: []string{string(s.role)}}
	return CanAccess(user, l, lookup)
}

// Apply composes the scope onto a GORM lead query. The assignee-link clause
// is expressed as a subquery against users so listing never joins per row.
// The subquery only matches active assignees, mirroring the Member lookup
// behind CanAccess, which does not resolve deactivated users; the snapshot
// manager_id/supervisor_id columns on the lead are unaffected.
func (s Scope) Apply(db *gorm.DB) *gorm.DB {
	switch s.role {
	case hierarchy.RoleSuperadmin:
		return db
	case hierarchy.RoleManager:
		return db.Where(
			"created_by = ? OR assigned_to = ? OR manager_id = ? OR assigned_to IN (SELECT id FROM users WHERE manager_id = ? AND is_active = true)",
			s.userID, s.userID, s.userID, s.userID,
		)
	case hierarchy.RoleSupervisor:
		return db.Where(
			"created_by = ? OR assigned_to = ? OR supervisor_id = ? OR assigned_to IN (SELECT id FROM users WHERE supervisor_id = ? AND is_active = true)",
			s.userID, s.userID, s.userID, s.userID,
		)
	case hierarchy.RoleAgent:
		return db.Where("assigned_to = ? OR created_by = ?", s.userID, s.userID)
	}
	// no recognized role sees nothing
	return db.Where("1 = 0")
}

// Filters are the orthogonal narrowing criteria ANDed onto a scope. They can
// only shrink the visible set, never widen it.
type Filters struct {
	Priority   *Priority
	Status     string
	AssignedTo *int64
	Project    string
	Search     string
	DateFrom   *time.Time
	DateTo     *time.Time
}

// Apply narrows a scoped query. DateTo is inclusive of the whole day.
func (f Filters) Apply(db *gorm.DB) *gorm.DB {
	if f.Priority != nil {
		db = db.Where("priority = ?", string(*f.Priority))
	}
	if f.Status != "" {
		db = db.Where("status = ?", f.Status)
	}
	if f.AssignedTo != nil {
		db = db.Where("assigned_to = ?", *f.AssignedTo)
	}
	if f.Project != "" {
		db = db.Where("project = ?", f.Project)
	}
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		db = db.Where("name LIKE ? OR email LIKE ? OR project LIKE ?", pattern, pattern, pattern)
	}
	if f.DateFrom != nil {
		db = db.Where("created_at >= ?", *f.DateFrom)
	}
	if f.DateTo != nil {
		db = db.Where("created_at < ?", f.DateTo.AddDate(0, 0, 1))
	}
	return db
}

// PerPage values a caller may request. Anything else coerces to the default
// instead of erroring.
var allowedPerPage = map[int]bool{10: true, 25: true, 50: true, 100: true}

const DefaultPerPage = 25

func NormalizePerPage(perPage int) int {
	if allowedPerPage[perPage] {
		return perPage
	}
	return DefaultPerPage
}

type Pagination struct {
	Page    int
	PerPage int
}

func NewPagination(page, perPage int) Pagination {
	if page < 1 {
		page = 1
	}
	return Pagination{Page: page, PerPage: NormalizePerPage(perPage)}
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PerPage
}
