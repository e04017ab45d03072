package model

import "testing"

func intPtr(v int) *int { return &v }

func TestRangeKind_Days(t *testing.T) {
	testCases := []struct {
		kind   RangeKind
		days   int
		wantOK bool
	}{
		{RangeWeek, 7, true},
		{RangeMonth, 30, true},
		{RangeYear, 365, true},
		{RangeKind(""), 0, false},
		{RangeKind("decade"), 0, false},
		{RangeKind("Week"), 0, false},
	}

	for _, tc := range testCases {
		t.Run(string(tc.kind), func(t *testing.T) {
			days, ok := tc.kind.Days()
			if days != tc.days || ok != tc.wantOK {
				t.Errorf("Days() = (%d, %v), want (%d, %v)", days, ok, tc.days, tc.wantOK)
			}
		})
	}
}

func TestPlanTargets_For(t *testing.T) {
	p := PlanTargets{Week: 4, Month: 12, Year: 50}

	if got := p.For(RangeWeek); got != 4 {
		t.Errorf("For(week) = %d, want 4", got)
	}
	if got := p.For(RangeMonth); got != 12 {
		t.Errorf("For(month) = %d, want 12", got)
	}
	if got := p.For(RangeYear); got != 50 {
		t.Errorf("For(year) = %d, want 50", got)
	}
	if got := p.For(RangeKind("all")); got != 0 {
		t.Errorf("For(all) = %d, want 0", got)
	}
}

func TestPlanUpdate_Apply(t *testing.T) {
	base := PlanTargets{UserID: "u1", Week: 1, Month: 2, Year: 3}

	testCases := []struct {
		name   string
		update PlanUpdate
		want   PlanTargets
	}{
		{
			name:   "empty update keeps everything",
			update: PlanUpdate{},
			want:   base,
		},
		{
			name:   "week only",
			update: PlanUpdate{Week: intPtr(12)},
			want:   PlanTargets{UserID: "u1", Week: 12, Month: 2, Year: 3},
		},
		{
			name:   "all fields, zero allowed",
			update: PlanUpdate{Week: intPtr(0), Month: intPtr(20), Year: intPtr(100)},
			want:   PlanTargets{UserID: "u1", Week: 0, Month: 20, Year: 100},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.update.Apply(base)
			if got != tc.want {
				t.Errorf("Apply() = %+v, want %+v", got, tc.want)
			}
		})
	}

	if !(PlanUpdate{}).IsEmpty() {
		t.Error("expected empty update to report IsEmpty")
	}
	if (PlanUpdate{Year: intPtr(1)}).IsEmpty() {
		t.Error("expected update with year to be non-empty")
	}
}
