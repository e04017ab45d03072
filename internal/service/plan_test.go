package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gurova-J/bookspace-backend/internal/metrics"
	"github.com/Gurova-J/bookspace-backend/internal/model"
)

func strPtr(s string) *string { return &s }

func intPtr(v int) *int { return &v }

func TestParsePlanUpdate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		week  *string
		month *string
		year  *string
		want  model.PlanUpdate
	}{
		{name: "all absent", want: model.PlanUpdate{}},
		{name: "numeric week", week: strPtr("12"), want: model.PlanUpdate{Week: intPtr(12)}},
		{name: "letters ignored", week: strPtr("abc"), want: model.PlanUpdate{}},
		{name: "zero accepted", month: strPtr("0"), want: model.PlanUpdate{Month: intPtr(0)}},
		{name: "leading zeros", year: strPtr("007"), want: model.PlanUpdate{Year: intPtr(7)}},
		{name: "negative ignored", week: strPtr("-3"), want: model.PlanUpdate{}},
		{name: "sign ignored", week: strPtr("+3"), want: model.PlanUpdate{}},
		{name: "decimal ignored", week: strPtr("1.5"), want: model.PlanUpdate{}},
		{name: "space ignored", week: strPtr(" 4"), want: model.PlanUpdate{}},
		{name: "empty ignored", week: strPtr(""), want: model.PlanUpdate{}},
		{name: "overflow ignored", week: strPtr("99999999999999999999999"), want: model.PlanUpdate{}},
		{name: "above int32 ignored", week: strPtr("3000000000"), want: model.PlanUpdate{}},
		{name: "int32 max accepted", year: strPtr("2147483647"), want: model.PlanUpdate{Year: intPtr(2147483647)}},
		{
			name:  "mixed",
			week:  strPtr("3"),
			month: strPtr("x"),
			year:  strPtr("40"),
			want:  model.PlanUpdate{Week: intPtr(3), Year: intPtr(40)},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, ParsePlanUpdate(tc.week, tc.month, tc.year))
		})
	}
}

func TestUpdatePlanTargets_AppliesNumericOnly(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	store.setPlan("u", 5, 10, 50)
	views := newFakeViews()
	recorder := metrics.NewInMemory()
	svc := NewPlanService(store, views, false, nil, recorder)
	ctx := context.Background()

	res, err := svc.UpdatePlanTargets(ctx, "u", ParsePlanUpdate(strPtr("abc"), nil, nil))
	require.NoError(t, err)
	assert.Equal(t, 5, res.Targets.Week)

	res, err = svc.UpdatePlanTargets(ctx, "u", ParsePlanUpdate(strPtr("12"), nil, strPtr("nope")))
	require.NoError(t, err)
	assert.False(t, res.Swallowed)
	assert.Equal(t, 12, res.Targets.Week)
	assert.Equal(t, 10, res.Targets.Month)
	assert.Equal(t, 50, res.Targets.Year)

	plan, err := svc.GetPlan(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, 12, plan.Week)

	snap := recorder.Snapshot()
	assert.Equal(t, uint64(1), snap.PlanUpdates[metrics.PlanUpdateNoop])
	assert.Equal(t, uint64(1), snap.PlanUpdates[metrics.PlanUpdateApplied])
	assert.Contains(t, views.invalidated, "stats:u")
}

func TestUpdatePlanTargets_StrictSurfacesPersistenceError(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	store.setPlan("u", 5, 10, 50)
	store.planUpdateErr = errors.New("connection reset")
	svc := NewPlanService(store, nil, false, nil, nil)

	res, err := svc.UpdatePlanTargets(context.Background(), "u", model.PlanUpdate{Week: intPtr(9)})
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrPersistence)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestUpdatePlanTargets_CompatSwallowsPersistenceError(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	store.setPlan("u", 5, 10, 50)
	store.planUpdateErr = errors.New("serialization failure")
	recorder := metrics.NewInMemory()
	svc := NewPlanService(store, nil, true, nil, recorder)

	res, err := svc.UpdatePlanTargets(context.Background(), "u", model.PlanUpdate{Week: intPtr(9)})
	require.NoError(t, err)
	assert.True(t, res.Swallowed)
	assert.Nil(t, res.Targets)

	// Rolled back: nothing changed.
	plan, err := svc.GetPlan(context.Background(), "u")
	require.NoError(t, err)
	assert.Equal(t, 5, plan.Week)
	assert.Equal(t, uint64(1), recorder.Snapshot().PlanUpdates[metrics.PlanUpdateSwallowed])
}

func TestUpdatePlanTargets_UnknownUser(t *testing.T) {
	t.Parallel()
	store := newFakeStore()

	for _, compat := range []bool{false, true} {
		svc := NewPlanService(store, nil, compat, nil, nil)
		_, err := svc.UpdatePlanTargets(context.Background(), "ghost", model.PlanUpdate{Week: intPtr(1)})
		assert.ErrorIs(t, err, ErrUserNotFound, "compat=%v", compat)
	}
}
