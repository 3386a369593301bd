package models

import (
	"time"

	"github.com/Ilyes4CODE/Market-place-live/internal/utils"
)

// Notification is addressed to one recipient. It is persisted before any
// live delivery attempt so it survives the recipient being offline; only
// the recipient marking it read mutates it.
type Notification struct {
	Base        `bson:",inline"`
	RecipientID utils.SixID  `bson:"recipient_id" json:"recipient_id"`
	Text        string       `bson:"message" json:"message"`
	BidID       *utils.SixID `bson:"bid_id,omitempty" json:"bid_id,omitempty"`
	MessageID   *utils.SixID `bson:"message_id,omitempty" json:"message_id,omitempty"`
	Read        bool         `bson:"is_read" json:"is_read"`
	CreatedAt   time.Time    `bson:"created_at" json:"created_at"`
}
