package entities

import "time"

// Account is an identity referenced by posts. It is owned by the account
// directory; this service never mutates anything besides profile fields.
type Account struct {
	ID       int64
	UUID     string
	Username string

	// IsInternal is true for accounts hosted by this instance. Remote
	// (federated) accounts can not author notes or replies here.
	IsInternal bool

	ApID         string
	InboxURL     string
	FollowersURL string

	DisplayName string
	AvatarURL   string

	CreatedAt time.Time
}
