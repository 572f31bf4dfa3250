// Package event contains the domain events emitted by the service. Events
// carry only primitive identifiers so they can cross process boundaries
// unchanged; the serialized name + JSON body is the external contract.
package event

import "time"

// Event names. The decoder registry rejects anything else.
const (
	NamePostCreated    = "post.created"
	NamePostUpdated    = "post.updated"
	NamePostDeleted    = "post.deleted"
	NamePostLiked      = "post.liked"
	NamePostUnliked    = "post.unliked"
	NamePostReposted   = "post.reposted"
	NamePostDereposted = "post.dereposted"
)

// Event is one immutable record of a state transition.
type Event interface {
	Name() string
}

// PostCreated ...
type PostCreated struct {
	PostID      int64     `json:"post_id"`
	PostUUID    string    `json:"post_uuid"`
	ApID        string    `json:"ap_id"`
	AuthorID    int64     `json:"author_id"`
	Audience    string    `json:"audience"`
	InReplyToID int64     `json:"in_reply_to_id,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

// Name ...
func (PostCreated) Name() string { return NamePostCreated }

func (e PostCreated) validate() error {
	return requireFields(field{"post_id", e.PostID != 0}, field{"ap_id", e.ApID != ""}, field{"author_id", e.AuthorID != 0})
}

// PostUpdated ...
type PostUpdated struct {
	PostID int64  `json:"post_id"`
	ApID   string `json:"ap_id"`
}

// Name ...
func (PostUpdated) Name() string { return NamePostUpdated }

func (e PostUpdated) validate() error {
	return requireFields(field{"post_id", e.PostID != 0}, field{"ap_id", e.ApID != ""})
}

// PostDeleted ...
type PostDeleted struct {
	PostID   int64  `json:"post_id"`
	ApID     string `json:"ap_id"`
	AuthorID int64  `json:"author_id"`
}

// Name ...
func (PostDeleted) Name() string { return NamePostDeleted }

func (e PostDeleted) validate() error {
	return requireFields(field{"post_id", e.PostID != 0}, field{"ap_id", e.ApID != ""})
}

// PostLiked ...
type PostLiked struct {
	PostID    int64 `json:"post_id"`
	AccountID int64 `json:"account_id"`
}

// Name ...
func (PostLiked) Name() string { return NamePostLiked }

func (e PostLiked) validate() error {
	return requireFields(field{"post_id", e.PostID != 0}, field{"account_id", e.AccountID != 0})
}

// PostUnliked ...
type PostUnliked struct {
	PostID    int64 `json:"post_id"`
	AccountID int64 `json:"account_id"`
}

// Name ...
func (PostUnliked) Name() string { return NamePostUnliked }

func (e PostUnliked) validate() error {
	return requireFields(field{"post_id", e.PostID != 0}, field{"account_id", e.AccountID != 0})
}

// PostReposted ...
type PostReposted struct {
	PostID    int64 `json:"post_id"`
	AccountID int64 `json:"account_id"`
}

// Name ...
func (PostReposted) Name() string { return NamePostReposted }

func (e PostReposted) validate() error {
	return requireFields(field{"post_id", e.PostID != 0}, field{"account_id", e.AccountID != 0})
}

// PostDereposted ...
type PostDereposted struct {
	PostID    int64 `json:"post_id"`
	AccountID int64 `json:"account_id"`
}

// Name ...
func (PostDereposted) Name() string { return NamePostDereposted }

func (e PostDereposted) validate() error {
	return requireFields(field{"post_id", e.PostID != 0}, field{"account_id", e.AccountID != 0})
}
