package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// MessageType identifies the notification template to render downstream
type MessageType string

const (
	TypeBookingConfirmed      MessageType = "booking_confirmed"
	TypeBookingCancelled      MessageType = "booking_cancelled"
	TypeWaitlistSpotAvailable MessageType = "waitlist_spot_available"
)

// Message is the JSON payload published to the notification topic.
// Delivery is owned by a downstream consumer; this core only enqueues.
type Message struct {
	ID             uuid.UUID              `json:"id"`
	Type           MessageType            `json:"type"`
	RecipientEmail string                 `json:"recipient_email"`
	RecipientName  string                 `json:"recipient_name,omitempty"`
	ShowID         *uuid.UUID             `json:"show_id,omitempty"`
	BookingID      *uuid.UUID             `json:"booking_id,omitempty"`
	Data           map[string]interface{} `json:"data,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
}

// NewMessage builds a message with identity and timestamp filled in
func NewMessage(msgType MessageType, recipientEmail string) *Message {
	return &Message{
		ID:             uuid.New(),
		Type:           msgType,
		RecipientEmail: recipientEmail,
		Data:           make(map[string]interface{}),
		CreatedAt:      time.Now(),
	}
}

// ToJSON serializes the message for the wire
func (m *Message) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// PartitionKey routes all messages for one recipient to the same partition
func (m *Message) PartitionKey() string {
	return m.RecipientEmail
}
