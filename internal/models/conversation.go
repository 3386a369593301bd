package models

import (
	"time"

	"github.com/Ilyes4CODE/Market-place-live/internal/utils"
)

// Conversation is a buyer-seller chat about one product. A unique index on
// the (seller, buyer, product) triple guarantees at most one exists per
// triple; creation races resolve by re-reading the stored row.
type Conversation struct {
	Base      `bson:",inline"`
	SellerID  utils.SixID `bson:"seller_id" json:"seller_id"`
	BuyerID   utils.SixID `bson:"buyer_id" json:"buyer_id"`
	ProductID utils.SixID `bson:"product_id" json:"product_id"`
	CreatedAt time.Time   `bson:"created_at" json:"created_at"`
}

// HasParticipant reports whether the user is a side of this conversation.
func (c *Conversation) HasParticipant(userID utils.SixID) bool {
	return c.SellerID == userID || c.BuyerID == userID
}

// OtherParticipant returns the counterpart of userID in the conversation.
func (c *Conversation) OtherParticipant(userID utils.SixID) utils.SixID {
	if c.SellerID == userID {
		return c.BuyerID
	}
	return c.SellerID
}

// Message belongs to exactly one conversation or one support ticket, never
// both. It carries non-empty text and/or a stored attachment URL.
type Message struct {
	Base           `bson:",inline"`
	ConversationID *utils.SixID `bson:"conversation_id,omitempty" json:"conversation_id,omitempty"`
	TicketID       *utils.SixID `bson:"ticket_id,omitempty" json:"ticket_id,omitempty"`
	SenderID       utils.SixID  `bson:"sender_id" json:"sender_id"`
	RecipientID    *utils.SixID `bson:"recipient_id,omitempty" json:"recipient_id,omitempty"`
	Content        string       `bson:"content,omitempty" json:"content,omitempty"`
	Picture        string       `bson:"picture,omitempty" json:"picture,omitempty"` // stored attachment URL
	Seen           bool         `bson:"seen" json:"seen"`
	CreatedAt      time.Time    `bson:"created_at" json:"created_at"`
}
