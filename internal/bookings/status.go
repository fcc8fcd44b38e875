package bookings

// BookingStatus represents the lifecycle state of a booking
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingExpired   BookingStatus = "expired"
)

// IsValid checks if the booking status is valid
func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCancelled, BookingExpired:
		return true
	}
	return false
}

// String returns the string representation of BookingStatus
func (s BookingStatus) String() string {
	return string(s)
}

// CanTransitionTo checks whether the status may move to target
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	switch s {
	case BookingPending:
		return target == BookingConfirmed || target == BookingCancelled || target == BookingExpired
	case BookingConfirmed:
		return target == BookingCancelled
	}
	return false
}

// HoldsInventory reports whether a booking in this status still occupies
// capacity and seats
func (s BookingStatus) HoldsInventory() bool {
	return s == BookingPending || s == BookingConfirmed
}

// TicketStatus represents the lifecycle state of a ticket
type TicketStatus string

const (
	TicketPending   TicketStatus = "pending"
	TicketActive    TicketStatus = "active"
	TicketUsed      TicketStatus = "used"
	TicketCancelled TicketStatus = "cancelled"
	TicketRefunded  TicketStatus = "refunded"
)

// IsValid checks if the ticket status is valid
func (s TicketStatus) IsValid() bool {
	switch s {
	case TicketPending, TicketActive, TicketUsed, TicketCancelled, TicketRefunded:
		return true
	}
	return false
}

// String returns the string representation of TicketStatus
func (s TicketStatus) String() string {
	return string(s)
}

// HoldsInventory reports whether a ticket in this status occupies its seat
// and counts against tier capacity
func (s TicketStatus) HoldsInventory() bool {
	return s == TicketPending || s == TicketActive
}
