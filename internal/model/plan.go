package model

import "time"

// RangeKind selects the statistics window.
type RangeKind string

const (
	RangeWeek  RangeKind = "week"
	RangeMonth RangeKind = "month"
	RangeYear  RangeKind = "year"
)

// Days returns the window length in days.
// Unrecognized kinds report 0 and false.
func (r RangeKind) Days() (int, bool) {
	switch r {
	case RangeWeek:
		return 7, true
	case RangeMonth:
		return 30, true
	case RangeYear:
		return 365, true
	}
	return 0, false
}

// PlanTargets are the per-user reading goals. One row per user.
type PlanTargets struct {
	UserID    string    `json:"user_id"`
	Week      int       `json:"week"`
	Month     int       `json:"month"`
	Year      int       `json:"year"`
	UpdatedAt time.Time `json:"updated_at"`
}

// For returns the target matching the range kind, or 0 for unknown kinds.
func (p PlanTargets) For(kind RangeKind) int {
	switch kind {
	case RangeWeek:
		return p.Week
	case RangeMonth:
		return p.Month
	case RangeYear:
		return p.Year
	}
	return 0
}

// PlanUpdate is a partial update of plan targets. Nil fields are left unchanged.
type PlanUpdate struct {
	Week  *int
	Month *int
	Year  *int
}

// IsEmpty reports whether the update changes nothing.
func (u PlanUpdate) IsEmpty() bool {
	return u.Week == nil && u.Month == nil && u.Year == nil
}

// Apply returns p with the non-nil fields of u written over it.
func (u PlanUpdate) Apply(p PlanTargets) PlanTargets {
	if u.Week != nil {
		p.Week = *u.Week
	}
	if u.Month != nil {
		p.Month = *u.Month
	}
	if u.Year != nil {
		p.Year = *u.Year
	}
	return p
}
