package models

// MarketplaceStats is the counter snapshot pushed to the admin stats feed.
// It is always produced by a full recount, never by incremental deltas.
type MarketplaceStats struct {
	ActiveUsers     int64 `json:"active_users"`
	AcceptedBids    int64 `json:"accepted_bids"`
	ActiveProducts  int64 `json:"active_products"`
	PendingProducts int64 `json:"pending_products"`
	PendingBids     int64 `json:"pending_bids"`
	BannedUsers     int64 `json:"banned_users"`
	UsersToday      int64 `json:"users_today"`
	RejectedBids    int64 `json:"rejected_bids"`
}
