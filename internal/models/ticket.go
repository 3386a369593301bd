package models

import (
	"time"

	"github.com/Ilyes4CODE/Market-place-live/internal/utils"
)

// TicketStatus is the lifecycle state of a support ticket.
type TicketStatus string

const (
	TicketStatusOpen   TicketStatus = "open"
	TicketStatusClosed TicketStatus = "closed"
)

// Ticket is a support conversation container. Its message stream is stored
// in the same collection as chat messages, keyed by TicketID.
type Ticket struct {
	Base      `bson:",inline"`
	UserID    utils.SixID  `bson:"user_id" json:"user_id"`
	Subject   string       `bson:"subject" json:"subject"`
	Status    TicketStatus `bson:"status" json:"status"`
	CreatedAt time.Time    `bson:"created_at" json:"created_at"`
}
