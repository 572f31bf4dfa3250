// Package storage contains a storage interface.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

//go:generate mockgen -destination=./mock/storage.go -package=mock -source=storage.go

// ErrNotFound ...
var ErrNotFound = errors.New("not found")

// ErrAlreadyExists returned when a unique constraint rejects an insert.
var ErrAlreadyExists = errors.New("already exists")

// Storage provides methods for interacting with database. Counter mutations
// are expressed as conditional atomic statements, never as read-modify-write
// of absolute values; that is the sole cross-process correctness mechanism.
type Storage interface {
	InTx(ctx context.Context, f func(s Storage) error) error

	CreatePost(ctx context.Context, p *CreatePostParams) (*Post, bool, error)
	GetPost(ctx context.Context, id int64) (*Post, error)
	GetPostByApID(ctx context.Context, apID string) (*Post, error)
	GetPostByUUID(ctx context.Context, uuid string) (*Post, error)
	UpdatePost(ctx context.Context, p *UpdatePostParams) error
	TombstonePost(ctx context.Context, id int64) (bool, error)
	GetChildren(ctx context.Context, postID int64, limit int) ([]*Post, error)

	AddLike(ctx context.Context, postID, accountID int64) (bool, error)
	RemoveLike(ctx context.Context, postID, accountID int64) (bool, error)
	AddRepost(ctx context.Context, postID, accountID int64) (bool, error)
	RemoveRepost(ctx context.Context, postID, accountID int64) (bool, error)
	SetLikeCount(ctx context.Context, postID int64, count int32) error
	SetRepostCount(ctx context.Context, postID int64, count int32) error
	GetLikers(ctx context.Context, postID int64) ([]int64, error)
	GetReposters(ctx context.Context, postID int64) ([]int64, error)

	SaveAccount(ctx context.Context, a *Account) error
	GetAccount(ctx context.Context, id int64) (*Account, error)
	GetAccountByApID(ctx context.Context, apID string) (*Account, error)
	Follow(ctx context.Context, follower, followee int64) error
	Unfollow(ctx context.Context, follower, followee int64) error
	GetFollowers(ctx context.Context, accountID int64) ([]int64, error)
	IsFollowing(ctx context.Context, follower, followee int64) (bool, error)

	AddFeedEntries(ctx context.Context, entries []*FeedEntry) error
	RemoveFeedEntries(ctx context.Context, postID int64, repostedBy *int64) error
	RemoveAllFeedEntries(ctx context.Context, postID int64) error
	ListFeed(ctx context.Context, p *ListFeedParams) ([]*FeedEntry, error)
}

// CreatePostParams ...
type CreatePostParams struct {
	UUID         string
	AuthorID     int64
	Type         string
	Audience     string
	Title        string
	Excerpt      string
	Summary      string
	Content      string
	URL          string
	ImageURL     string
	PublishedAt  time.Time
	Attachments  json.RawMessage
	Metadata     json.RawMessage
	InReplyToID  *int64
	ThreadRootID *int64
	ApID         string
	MentionIDs   []int64
}

// UpdatePostParams ...
type UpdatePostParams struct {
	ID       int64
	Title    string
	Excerpt  string
	Summary  string
	Content  string
	URL      string
	ImageURL string
}

// Post is a persisted post row.
type Post struct {
	ID           int64
	UUID         string
	AuthorID     int64
	Type         string
	Audience     string
	Title        string
	Excerpt      string
	Summary      string
	Content      string
	URL          string
	ImageURL     string
	PublishedAt  time.Time
	Attachments  json.RawMessage
	Metadata     json.RawMessage
	InReplyToID  *int64
	ThreadRootID *int64
	LikeCount    int32
	RepostCount  int32
	ReplyCount   int32
	ApID         string
}

// Account is a persisted account row.
type Account struct {
	ID           int64
	UUID         string
	Username     string
	IsInternal   bool
	ApID         string
	InboxURL     string
	FollowersURL string
	DisplayName  string
	AvatarURL    string
	CreatedAt    time.Time
}

// FeedEntry is one materialized feed row. Uniquely keyed by
// (owner_account_id, post_id, reposted_by_id) so an original post and its
// reposts coexist in the same viewer's feed.
type FeedEntry struct {
	ID             int64
	OwnerAccountID int64
	PostID         int64
	AuthorID       int64
	RepostedByID   *int64
	Audience       string
	PublishedDate  time.Time
}

// ListFeedParams ...
type ListFeedParams struct {
	OwnerAccountID int64
	Limit          uint16
	After          *int64
}
