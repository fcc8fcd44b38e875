package shows

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestShowStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    ShowStatus
		to      ShowStatus
		allowed bool
	}{
		{"draft can publish", StatusDraft, StatusPublished, true},
		{"draft can cancel", StatusDraft, StatusCancelled, true},
		{"draft cannot complete", StatusDraft, StatusCompleted, false},
		{"published can sell out", StatusPublished, StatusSoldOut, true},
		{"published can cancel", StatusPublished, StatusCancelled, true},
		{"sold out can reopen", StatusSoldOut, StatusPublished, true},
		{"cancelled is terminal", StatusCancelled, StatusPublished, false},
		{"completed is terminal", StatusCompleted, StatusPublished, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestShowStatusIsSellable(t *testing.T) {
	assert.True(t, StatusPublished.IsSellable())
	assert.False(t, StatusDraft.IsSellable())
	assert.False(t, StatusSoldOut.IsSellable())
	assert.False(t, StatusCancelled.IsSellable())
}

func TestTierTypeHasSeats(t *testing.T) {
	assert.False(t, TierStanding.HasSeats())
	assert.True(t, TierStandard.HasSeats())
	assert.True(t, TierTable.HasSeats())
	assert.True(t, TierVIP.HasSeats())
}

func TestTierTypeRowCount(t *testing.T) {
	assert.Equal(t, 1, TierVIP.RowCount())
	assert.Equal(t, 3, TierPremium.RowCount())
	assert.Equal(t, 10, TierStandard.RowCount())
	assert.Equal(t, 10, TierTable.RowCount())
}

func TestPhaseContains(t *testing.T) {
	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(48 * time.Hour)
	phase := PricingPhase{StartsAt: start, EndsAt: end}

	assert.True(t, phase.Contains(start), "window start is inclusive")
	assert.True(t, phase.Contains(start.Add(time.Hour)))
	assert.False(t, phase.Contains(end), "window end is exclusive")
	assert.False(t, phase.Contains(start.Add(-time.Second)))
}
