package models

import (
	"time"
)

// User represents a marketplace account. Identity issuing (registration,
// login, password reset) lives in a separate system; this side only reads
// the flags that gate marketplace actions.
type User struct {
	Base     `bson:",inline"`
	Name     string    `bson:"name" json:"name"`
	Email    string    `bson:"email" json:"email"`
	IsAdmin  bool      `bson:"is_admin" json:"is_admin"`
	Verified bool      `bson:"verified" json:"verified"`
	Banned   bool      `bson:"banned" json:"banned"`
	JoinedAt time.Time `bson:"joined_at" json:"joined_at"`
}

// CanParticipate reports whether the user may perform marketplace actions
// (bid, message, open tickets).
func (u *User) CanParticipate() bool {
	return u.Verified && !u.Banned
}
