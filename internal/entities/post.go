// Package entities contains main entities of service.
package entities

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// ErrNotInternalAuthor returned when a note or reply is authored by a remote account.
var ErrNotInternalAuthor = errors.New("author is not hosted by this instance")

// ErrMissingID returned when a reply targets a post which is not persisted yet.
var ErrMissingID = errors.New("post has no id")

// ErrNotAuthor returned when an account tries to delete somebody else's post.
var ErrNotAuthor = errors.New("account is not the author")

// PostType ...
type PostType string

const (
	// NoteType is a short self-authored post.
	NoteType PostType = "note"
	// ArticleType is a long-form post imported from the publishing CMS.
	ArticleType PostType = "article"
	// TombstoneType is the terminal state of a deleted post.
	TombstoneType PostType = "tombstone"
)

// Audience ...
type Audience string

const (
	// PublicAudience ...
	PublicAudience Audience = "public"
	// FollowersAudience ...
	FollowersAudience Audience = "followers"
	// DirectAudience ...
	DirectAudience Audience = "direct"
)

// Attachment is a media reference carried by a post.
type Attachment struct {
	URL       string `json:"url"`
	MediaType string `json:"media_type"`
	Name      string `json:"name,omitempty"`
}

// ChangedSet is a membership diff against the originally loaded state.
type ChangedSet struct {
	ToAdd    []int64
	ToRemove []int64
}

// PendingChanges is the not-yet-persisted state of an aggregate. It is
// consumed by a single save call and cleared afterwards; it never leaks
// across save cycles.
type PendingChanges struct {
	UpdateDirty      bool
	Deleted          bool
	LikeCountDirty   bool
	RepostCountDirty bool
	Likes            ChangedSet
	Reposts          ChangedSet
}

// IsEmpty reports whether a save would be a no-op for an already persisted post.
func (c PendingChanges) IsEmpty() bool {
	return !c.UpdateDirty && !c.Deleted && !c.LikeCountDirty && !c.RepostCountDirty &&
		len(c.Likes.ToAdd) == 0 && len(c.Likes.ToRemove) == 0 &&
		len(c.Reposts.ToAdd) == 0 && len(c.Reposts.ToRemove) == 0
}

// membership tracks a relation set as loaded plus the current in-memory view,
// so add/remove/add against the same account nets to a single addition.
type membership struct {
	loaded  map[int64]struct{}
	current map[int64]struct{}
}

func newMembership(ids []int64) membership {
	m := membership{
		loaded:  make(map[int64]struct{}, len(ids)),
		current: make(map[int64]struct{}, len(ids)),
	}
	for _, id := range ids {
		m.loaded[id] = struct{}{}
		m.current[id] = struct{}{}
	}
	return m
}

func (m *membership) add(id int64)    { m.current[id] = struct{}{} }
func (m *membership) remove(id int64) { delete(m.current, id) }

func (m *membership) diff() ChangedSet {
	var out ChangedSet
	for id := range m.current {
		if _, ok := m.loaded[id]; !ok {
			out.ToAdd = append(out.ToAdd, id)
		}
	}
	for id := range m.loaded {
		if _, ok := m.current[id]; !ok {
			out.ToRemove = append(out.ToRemove, id)
		}
	}
	sort.Slice(out.ToAdd, func(i, j int) bool { return out.ToAdd[i] < out.ToAdd[j] })
	sort.Slice(out.ToRemove, func(i, j int) bool { return out.ToRemove[i] < out.ToRemove[j] })
	return out
}

func (m *membership) reset() {
	m.loaded = make(map[int64]struct{}, len(m.current))
	for id := range m.current {
		m.loaded[id] = struct{}{}
	}
}

// Post is the aggregate root. Author, ID, UUID and ApID are immutable after
// creation; everything else is mutated only through methods which record
// diffs, never absolute states.
type Post struct {
	ID     int64 // zero until persisted
	UUID   string
	Author *Account

	Type     PostType
	Audience Audience

	Title   string
	Excerpt string
	Summary string
	Content string

	URL         string
	ImageURL    string
	PublishedAt time.Time

	Attachments []Attachment
	Mentions    []*Account
	Metadata    map[string]interface{}

	InReplyToID  int64 // zero when the post is not a reply
	ThreadRootID int64

	LikeCount   int32
	RepostCount int32
	ReplyCount  int32

	ApID string

	pending PendingChanges
	likes   membership
	reposts membership
}

// NewNote creates a plain note authored by an internal account.
func NewNote(author *Account, content string, audience Audience) (*Post, error) {
	if author == nil || !author.IsInternal {
		return nil, ErrNotInternalAuthor
	}

	p := &Post{
		UUID:        uuid.NewString(),
		Author:      author,
		Type:        NoteType,
		Audience:    audience,
		Content:     content,
		PublishedAt: time.Now().UTC(),
		likes:       newMembership(nil),
		reposts:     newMembership(nil),
	}
	p.ApID = deriveApID(author, NoteType, p.UUID)

	return p, nil
}

// NewReply creates a reply to an already persisted post.
func NewReply(author *Account, parent *Post, content string) (*Post, error) {
	if author == nil || !author.IsInternal {
		return nil, ErrNotInternalAuthor
	}
	if parent == nil || parent.ID == 0 {
		return nil, ErrMissingID
	}

	root := parent.ThreadRootID
	if root == 0 {
		root = parent.ID
	}

	p := &Post{
		UUID:         uuid.NewString(),
		Author:       author,
		Type:         NoteType,
		Audience:     parent.Audience,
		Content:      content,
		PublishedAt:  time.Now().UTC(),
		InReplyToID:  parent.ID,
		ThreadRootID: root,
		likes:        newMembership(nil),
		reposts:      newMembership(nil),
	}
	p.ApID = deriveApID(author, NoteType, p.UUID)

	return p, nil
}

// ImportedArticleParams ...
type ImportedArticleParams struct {
	Author      *Account
	Title       string
	Excerpt     string
	Summary     string
	Content     string
	URL         string
	ImageURL    string
	PublishedAt time.Time
	Attachments []Attachment
	Mentions    []*Account
	Metadata    map[string]interface{}
	ApID        string // derived when empty
}

// NewImportedArticle creates an article from a CMS webhook payload. Imported
// articles may carry a CMS-supplied ap id; remote authors are allowed here
// since the CMS is the source of truth for authorship.
func NewImportedArticle(params ImportedArticleParams) (*Post, error) {
	if params.Author == nil {
		return nil, ErrNotInternalAuthor
	}

	p := &Post{
		UUID:        uuid.NewString(),
		Author:      params.Author,
		Type:        ArticleType,
		Audience:    PublicAudience,
		Title:       params.Title,
		Excerpt:     params.Excerpt,
		Summary:     params.Summary,
		Content:     params.Content,
		URL:         params.URL,
		ImageURL:    params.ImageURL,
		PublishedAt: params.PublishedAt,
		Attachments: params.Attachments,
		Mentions:    params.Mentions,
		Metadata:    params.Metadata,
		ApID:        params.ApID,
		likes:       newMembership(nil),
		reposts:     newMembership(nil),
	}
	if p.PublishedAt.IsZero() {
		p.PublishedAt = time.Now().UTC()
	}
	if p.ApID == "" {
		p.ApID = deriveApID(params.Author, ArticleType, p.UUID)
	}

	return p, nil
}

// Loaded restores an aggregate from persisted state. likedBy and repostedBy
// become the baseline memberships the diffs are computed against.
func Loaded(p Post, likedBy, repostedBy []int64) *Post {
	p.pending = PendingChanges{}
	p.likes = newMembership(likedBy)
	p.reposts = newMembership(repostedBy)
	return &p
}

// UpdateFields carries the mutable textual fields of a post.
type UpdateFields struct {
	Title    string
	Excerpt  string
	Summary  string
	Content  string
	URL      string
	ImageURL string
}

// Update applies the given fields. It is a no-op when nothing actually
// differs; otherwise the update dirty flag is set for the next save.
func (p *Post) Update(fields UpdateFields) {
	if p.Type == TombstoneType {
		return
	}

	if fields.Title == p.Title && fields.Excerpt == p.Excerpt && fields.Summary == p.Summary &&
		fields.Content == p.Content && fields.URL == p.URL && fields.ImageURL == p.ImageURL {
		return
	}

	p.Title = fields.Title
	p.Excerpt = fields.Excerpt
	p.Summary = fields.Summary
	p.Content = fields.Content
	p.URL = fields.URL
	p.ImageURL = fields.ImageURL
	p.pending.UpdateDirty = true
}

// Delete turns the post into a tombstone. Only the author may delete;
// repeating the call leaves the aggregate in the same terminal state.
func (p *Post) Delete(account *Account) error {
	if account == nil || p.Author == nil || account.ID != p.Author.ID {
		return fmt.Errorf("%w: account %d", ErrNotAuthor, accountID(account))
	}

	if p.Type == TombstoneType {
		return nil
	}

	p.Type = TombstoneType
	p.Title, p.Excerpt, p.Summary, p.Content = "", "", "", ""
	p.URL, p.ImageURL = "", ""
	p.Attachments = nil
	p.Metadata = nil
	p.pending.Deleted = true

	return nil
}

// AddLike ...
func (p *Post) AddLike(accountID int64) { p.likes.add(accountID) }

// RemoveLike ...
func (p *Post) RemoveLike(accountID int64) { p.likes.remove(accountID) }

// AddRepost ...
func (p *Post) AddRepost(accountID int64) { p.reposts.add(accountID) }

// RemoveRepost ...
func (p *Post) RemoveRepost(accountID int64) { p.reposts.remove(accountID) }

// GetChangedLikes returns the like membership diff to be persisted.
func (p *Post) GetChangedLikes() ChangedSet { return p.likes.diff() }

// GetChangedReposts returns the repost membership diff to be persisted.
func (p *Post) GetChangedReposts() ChangedSet { return p.reposts.diff() }

// SetLikeCount overrides the counter for posts whose likes are owned by a
// remote system.
func (p *Post) SetLikeCount(count int32) {
	if p.LikeCount == count {
		return
	}
	p.LikeCount = count
	p.pending.LikeCountDirty = true
}

// SetRepostCount overrides the counter for posts whose reposts are owned by
// a remote system.
func (p *Post) SetRepostCount(count int32) {
	if p.RepostCount == count {
		return
	}
	p.RepostCount = count
	p.pending.RepostCountDirty = true
}

// Pending returns the full diff to be consumed by a save call.
func (p *Post) Pending() PendingChanges {
	out := p.pending
	out.Likes = p.likes.diff()
	out.Reposts = p.reposts.diff()
	return out
}

// ClearPending resets the diff state after a successful save. The current
// memberships become the new baseline.
func (p *Post) ClearPending() {
	p.pending = PendingChanges{}
	p.likes.reset()
	p.reposts.reset()
}

// IsReply ...
func (p *Post) IsReply() bool { return p.InReplyToID != 0 }

func deriveApID(author *Account, t PostType, postUUID string) string {
	kind := "notes"
	if t == ArticleType {
		kind = "articles"
	}
	return fmt.Sprintf("%s/%s/%s", author.ApID, kind, postUUID)
}

func accountID(a *Account) int64 {
	if a == nil {
		return 0
	}
	return a.ID
}
