package models

import (
	"time"

	"github.com/Ilyes4CODE/Market-place-live/internal/utils"
)

// SaleType distinguishes fixed-price listings from timed auctions.
type SaleType string

const (
	SaleTypeFixed   SaleType = "fixed"
	SaleTypeAuction SaleType = "auction"
)

// BidStatus is the admin-review state of a bid.
type BidStatus string

const (
	BidStatusPending  BidStatus = "pending"
	BidStatusAccepted BidStatus = "accepted"
	BidStatusRejected BidStatus = "rejected"
)

// CloseTrigger names the code path that closed an auction. Every path funnels
// through the same guarded transition; the trigger is kept for logging.
type CloseTrigger string

const (
	CloseTriggerExpirySweep CloseTrigger = "expiry-sweep"
	CloseTriggerManual      CloseTrigger = "manual"
	CloseTriggerBuyNow      CloseTrigger = "buy-now"
)

// Product is a listing, either fixed-price or auction. Auction listings carry
// a fixed end time computed once at creation; Closed is monotone false→true.
type Product struct {
	Base          `bson:",inline"`
	SellerID      utils.SixID `bson:"seller_id" json:"seller_id"`
	Title         string      `bson:"title" json:"title"`
	Description   string      `bson:"description,omitempty" json:"description,omitempty"`
	SaleType      SaleType    `bson:"sale_type" json:"sale_type"`
	Price         float64     `bson:"price,omitempty" json:"price,omitempty"` // fixed-price listings
	StartingPrice float64     `bson:"starting_price,omitempty" json:"starting_price,omitempty"`
	BuyNowPrice   float64     `bson:"buy_now_price,omitempty" json:"buy_now_price,omitempty"` // 0 = no buy-now
	DurationHours int         `bson:"duration_hours,omitempty" json:"duration_hours,omitempty"`
	EndTime       time.Time   `bson:"end_time,omitempty" json:"end_time,omitempty"`
	Approved      bool        `bson:"approved" json:"approved"`
	Closed        bool        `bson:"closed" json:"closed"`
	ClosedAt      *time.Time  `bson:"closed_at,omitempty" json:"closed_at,omitempty"`
	Sold          bool        `bson:"sold" json:"sold"`
	Archived      bool        `bson:"archived" json:"archived"`
	CreatedAt     time.Time   `bson:"created_at" json:"created_at"`
}

// IsExpired reports whether the auction's fixed end time has passed.
func (p *Product) IsExpired(now time.Time) bool {
	return p.SaleType == SaleTypeAuction && !p.EndTime.IsZero() && !now.Before(p.EndTime)
}

// Bid is a single offer on an auction product. Amount becomes the new price
// floor only once an admin accepts it.
type Bid struct {
	Base      `bson:",inline"`
	ProductID utils.SixID `bson:"product_id" json:"product_id"`
	BidderID  utils.SixID `bson:"bidder_id" json:"bidder_id"`
	Amount    float64     `bson:"amount" json:"amount"`
	Status    BidStatus   `bson:"status" json:"status"`
	Winner    bool        `bson:"winner" json:"winner"`
	CreatedAt time.Time   `bson:"created_at" json:"created_at"`
}

// Purchase records a fixed-price buy. Payment processing is out of scope, so
// only the paid flag is tracked.
type Purchase struct {
	Base      `bson:",inline"`
	ProductID utils.SixID `bson:"product_id" json:"product_id"`
	BuyerID   utils.SixID `bson:"buyer_id" json:"buyer_id"`
	Paid      bool        `bson:"paid" json:"paid"`
	CreatedAt time.Time   `bson:"created_at" json:"created_at"`
}
