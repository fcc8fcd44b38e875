package inventory

import (
	"fmt"

	"stagepass/internal/shows"
)

// BuildSeats deterministically materializes seat rows for one tier.
// Standing tiers produce none; their capacity is an aggregate count.
// Table tiers produce maxQuantity tables of four seats each.
// Other tiers fill rows sized to the tier type's row count, with the first
// two seats of the first row reserved as accessible.
func BuildSeats(tier *shows.TicketTier) []Seat {
	if !tier.Type.HasSeats() || tier.MaxQuantity <= 0 {
		return nil
	}

	if tier.Type == shows.TierTable {
		return buildTableSeats(tier)
	}
	return buildRowSeats(tier)
}

func buildTableSeats(tier *shows.TicketTier) []Seat {
	const seatsPerTable = 4

	seats := make([]Seat, 0, tier.MaxQuantity*seatsPerTable)
	for table := 1; table <= tier.MaxQuantity; table++ {
		for num := 1; num <= seatsPerTable; num++ {
			seats = append(seats, Seat{
				ShowID:     tier.ShowID,
				TierID:     tier.ID,
				Section:    tier.Name,
				RowLabel:   fmt.Sprintf("T%d", table),
				SeatNumber: num,
				Status:     SeatAvailable,
			})
		}
	}
	return seats
}

func buildRowSeats(tier *shows.TicketTier) []Seat {
	rowCount := tier.Type.RowCount()
	seatsPerRow := (tier.MaxQuantity + rowCount - 1) / rowCount

	seats := make([]Seat, 0, tier.MaxQuantity)
	created := 0
	for row := 0; row < rowCount && created < tier.MaxQuantity; row++ {
		label := rowLabel(row)
		for num := 1; num <= seatsPerRow && created < tier.MaxQuantity; num++ {
			seats = append(seats, Seat{
				ShowID:     tier.ShowID,
				TierID:     tier.ID,
				Section:    tier.Name,
				RowLabel:   label,
				SeatNumber: num,
				Accessible: row == 0 && num <= 2,
				Status:     SeatAvailable,
			})
			created++
		}
	}
	return seats
}

// rowLabel converts a zero-based row index to A, B, ... Z, AA, AB, ...
func rowLabel(index int) string {
	label := ""
	for {
		label = string(rune('A'+index%26)) + label
		index = index/26 - 1
		if index < 0 {
			break
		}
	}
	return label
}
