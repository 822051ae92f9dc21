package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitionTableCoversEveryStatus(t *testing.T) {
	for _, status := range AllStatuses() {
		require.True(t, status.Valid(), status)
		_, ok := transitions[status]
		assert.True(t, ok, "status %s missing from transition table", status)
	}
	assert.Len(t, transitions, len(AllStatuses()))

	for from, targets := range transitions {
		for _, to := range targets {
			assert.True(t, to.Valid(), "%s -> %s", from, to)
		}
	}
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusSubmitted, StatusAccepted, true},
		{StatusSubmitted, StatusRejected, true},
		{StatusRejected, StatusSubmitted, true},
		{StatusAwaitingUserApproval, StatusAccepted, true},
		{StatusAwaitingUserApproval, StatusUserRejected, true},
		{StatusDelivered, StatusCompleted, true},
		{StatusCompleted, StatusSubmitted, false},
		{StatusDelivered, StatusSubmitted, false},
		{StatusApproved, StatusDelivered, false},
		{StatusUserRejected, StatusAccepted, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestTerminalStatuses(t *testing.T) {
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusUserRejected.Terminal())
	assert.False(t, StatusDelivered.Terminal())
	assert.False(t, Status("bogus").Terminal())
}

func TestNextManufacturingStatus(t *testing.T) {
	next, ok := NextManufacturingStatus(StatusApproved)
	require.True(t, ok)
	assert.Equal(t, StatusInProduction, next)

	next, ok = NextManufacturingStatus(StatusReadyForDelivery)
	require.True(t, ok)
	assert.Equal(t, StatusDelivered, next)

	_, ok = NextManufacturingStatus(StatusDelivered)
	assert.False(t, ok)
	_, ok = NextManufacturingStatus(StatusSubmitted)
	assert.False(t, ok)
}

func TestIsPlanEditAllowed(t *testing.T) {
	for _, status := range AllStatuses() {
		locked := status == StatusReadyForDelivery || status == StatusDelivered || status == StatusCompleted
		assert.Equal(t, !locked, IsPlanEditAllowed(status), status)
	}
}

func TestParseStatus(t *testing.T) {
	status, err := ParseStatus("in_production")
	require.NoError(t, err)
	assert.Equal(t, StatusInProduction, status)

	_, err = ParseStatus("shipped")
	require.ErrorIs(t, err, ErrInvalidStatus)
}
