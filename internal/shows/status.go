package shows

// ShowStatus represents the lifecycle state of a show
type ShowStatus string

const (
	StatusDraft     ShowStatus = "draft"
	StatusPublished ShowStatus = "published"
	StatusSoldOut   ShowStatus = "sold_out"
	StatusCancelled ShowStatus = "cancelled"
	StatusCompleted ShowStatus = "completed"
)

// IsValid checks if the show status is valid
func (s ShowStatus) IsValid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusSoldOut, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// String returns the string representation of ShowStatus
func (s ShowStatus) String() string {
	return string(s)
}

// CanTransitionTo checks whether the status may move to target.
// Transitions are one-directional except cancellation; completed is terminal.
func (s ShowStatus) CanTransitionTo(target ShowStatus) bool {
	validTransitions := map[ShowStatus][]ShowStatus{
		StatusDraft:     {StatusPublished, StatusCancelled},
		StatusPublished: {StatusSoldOut, StatusCancelled, StatusCompleted},
		StatusSoldOut:   {StatusPublished, StatusCancelled, StatusCompleted},
		StatusCancelled: {},
		StatusCompleted: {},
	}

	for _, allowed := range validTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// IsSellable reports whether tickets can be sold in this status
func (s ShowStatus) IsSellable() bool {
	return s == StatusPublished
}

// TierType is the closed set of ticket tier categories
type TierType string

const (
	TierStanding TierType = "standing"
	TierStandard TierType = "standard"
	TierPremium  TierType = "premium"
	TierVIP      TierType = "vip"
	TierTable    TierType = "table"
)

// IsValid checks if the tier type is valid
func (t TierType) IsValid() bool {
	switch t {
	case TierStanding, TierStandard, TierPremium, TierVIP, TierTable:
		return true
	}
	return false
}

// String returns the string representation of TierType
func (t TierType) String() string {
	return string(t)
}

// HasSeats reports whether this tier type materializes individual seat rows.
// Standing capacity is tracked as an aggregate count only.
func (t TierType) HasSeats() bool {
	return t != TierStanding
}

// RowCount returns how many display rows a seated (non-table) tier uses
func (t TierType) RowCount() int {
	switch t {
	case TierVIP:
		return 1
	case TierPremium:
		return 3
	default:
		return 10
	}
}
