package inventory

import (
	"testing"

	"stagepass/internal/shows"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tierOf(tierType shows.TierType, maxQty int) *shows.TicketTier {
	return &shows.TicketTier{
		ID:          uuid.New(),
		ShowID:      uuid.New(),
		Name:        "Test Tier",
		Type:        tierType,
		MaxQuantity: maxQty,
	}
}

func TestBuildSeatsStandingProducesNone(t *testing.T) {
	seats := BuildSeats(tierOf(shows.TierStanding, 500))
	assert.Empty(t, seats)
}

func TestBuildSeatsTable(t *testing.T) {
	seats := BuildSeats(tierOf(shows.TierTable, 3))
	require.Len(t, seats, 12, "3 tables of 4 seats")

	assert.Equal(t, "T1", seats[0].RowLabel)
	assert.Equal(t, 1, seats[0].SeatNumber)
	assert.Equal(t, "T1", seats[3].RowLabel)
	assert.Equal(t, 4, seats[3].SeatNumber)
	assert.Equal(t, "T3", seats[11].RowLabel)
	assert.Equal(t, 4, seats[11].SeatNumber)

	for _, seat := range seats {
		assert.False(t, seat.Accessible, "table seats carry no accessible flag")
	}
}

func TestBuildSeatsVIPSingleRow(t *testing.T) {
	seats := BuildSeats(tierOf(shows.TierVIP, 20))
	require.Len(t, seats, 20)

	for _, seat := range seats {
		assert.Equal(t, "A", seat.RowLabel, "vip fits in one row")
	}
	assert.Equal(t, 20, seats[19].SeatNumber)
}

func TestBuildSeatsPremiumThreeRows(t *testing.T) {
	seats := BuildSeats(tierOf(shows.TierPremium, 30))
	require.Len(t, seats, 30)

	rows := map[string]int{}
	for _, seat := range seats {
		rows[seat.RowLabel]++
	}
	assert.Len(t, rows, 3)
	assert.Equal(t, 10, rows["A"])
	assert.Equal(t, 10, rows["B"])
	assert.Equal(t, 10, rows["C"])
}

func TestBuildSeatsStandardTenRows(t *testing.T) {
	seats := BuildSeats(tierOf(shows.TierStandard, 95))
	require.Len(t, seats, 95, "total never exceeds max quantity")

	rows := map[string]int{}
	for _, seat := range seats {
		rows[seat.RowLabel]++
	}
	assert.Len(t, rows, 10)
	// 95 seats over 10 rows at 10 per row leaves the last row short
	assert.Equal(t, 10, rows["A"])
	assert.Equal(t, 5, rows["J"])
}

func TestBuildSeatsAccessiblePlacement(t *testing.T) {
	seats := BuildSeats(tierOf(shows.TierStandard, 50))

	var accessible []Seat
	for _, seat := range seats {
		if seat.Accessible {
			accessible = append(accessible, seat)
		}
	}

	require.Len(t, accessible, 2, "first two seats of the first row")
	for _, seat := range accessible {
		assert.Equal(t, "A", seat.RowLabel)
		assert.LessOrEqual(t, seat.SeatNumber, 2)
	}
}

func TestBuildSeatsDeterministic(t *testing.T) {
	tier := tierOf(shows.TierPremium, 25)
	first := BuildSeats(tier)
	second := BuildSeats(tier)
	assert.Equal(t, first, second)
}

func TestRowLabelSequence(t *testing.T) {
	assert.Equal(t, "A", rowLabel(0))
	assert.Equal(t, "Z", rowLabel(25))
	assert.Equal(t, "AA", rowLabel(26))
	assert.Equal(t, "AB", rowLabel(27))
}
