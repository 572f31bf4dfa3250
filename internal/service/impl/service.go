// Package impl is implementation of service interface.
package impl

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/fedipress/hermes/internal/bus"
	"github.com/fedipress/hermes/internal/entities"
	"github.com/fedipress/hermes/internal/event"
	"github.com/fedipress/hermes/internal/service"
	"github.com/fedipress/hermes/internal/storage"
)

var log = logrus.WithField("package", "service")

type srv struct {
	s      storage.Storage
	b      *bus.Bus
	remote *bus.Remote
}

// New creates new instance of service. remote may be nil when the service
// runs without a cross-process channel.
func New(s storage.Storage, b *bus.Bus, remote *bus.Remote) service.Service {
	return srv{
		s:      s,
		b:      b,
		remote: remote,
	}
}

func (s srv) Save(ctx context.Context, p *entities.Post) error {
	if p.ID == 0 {
		return s.create(ctx, p)
	}

	pending := p.Pending()
	if pending.IsEmpty() {
		return nil
	}

	var events []event.Event

	if err := s.s.InTx(ctx, func(st storage.Storage) error {
		events = events[:0]

		if pending.Deleted {
			changed, err := st.TombstonePost(ctx, p.ID)
			if err != nil {
				return fmt.Errorf("failed to tombstone post: %w", err)
			}
			if changed {
				events = append(events, event.PostDeleted{
					PostID:   p.ID,
					ApID:     p.ApID,
					AuthorID: p.Author.ID,
				})
			}
		} else if pending.UpdateDirty {
			if err := st.UpdatePost(ctx, &storage.UpdatePostParams{
				ID:       p.ID,
				Title:    p.Title,
				Excerpt:  p.Excerpt,
				Summary:  p.Summary,
				Content:  p.Content,
				URL:      p.URL,
				ImageURL: p.ImageURL,
			}); err != nil {
				return fmt.Errorf("failed to update post: %w", err)
			}
			events = append(events, event.PostUpdated{PostID: p.ID, ApID: p.ApID})
		}

		for _, accountID := range pending.Likes.ToAdd {
			added, err := st.AddLike(ctx, p.ID, accountID)
			if err != nil {
				return fmt.Errorf("failed to add like: %w", err)
			}
			if added {
				events = append(events, event.PostLiked{PostID: p.ID, AccountID: accountID})
			}
		}
		for _, accountID := range pending.Likes.ToRemove {
			removed, err := st.RemoveLike(ctx, p.ID, accountID)
			if err != nil {
				return fmt.Errorf("failed to remove like: %w", err)
			}
			if removed {
				events = append(events, event.PostUnliked{PostID: p.ID, AccountID: accountID})
			}
		}

		for _, accountID := range pending.Reposts.ToAdd {
			added, err := st.AddRepost(ctx, p.ID, accountID)
			if err != nil {
				return fmt.Errorf("failed to add repost: %w", err)
			}
			if added {
				events = append(events, event.PostReposted{PostID: p.ID, AccountID: accountID})
			}
		}
		for _, accountID := range pending.Reposts.ToRemove {
			removed, err := st.RemoveRepost(ctx, p.ID, accountID)
			if err != nil {
				return fmt.Errorf("failed to remove repost: %w", err)
			}
			if removed {
				events = append(events, event.PostDereposted{PostID: p.ID, AccountID: accountID})
			}
		}

		if pending.LikeCountDirty {
			if err := st.SetLikeCount(ctx, p.ID, p.LikeCount); err != nil {
				return fmt.Errorf("failed to set like count: %w", err)
			}
		}
		if pending.RepostCountDirty {
			if err := st.SetRepostCount(ctx, p.ID, p.RepostCount); err != nil {
				return fmt.Errorf("failed to set repost count: %w", err)
			}
		}

		return nil
	}); err != nil {
		return err
	}

	p.ClearPending()

	return s.emit(ctx, events)
}

func (s srv) create(ctx context.Context, p *entities.Post) error {
	attachments, err := json.Marshal(p.Attachments)
	if err != nil {
		return fmt.Errorf("failed to marshal attachments: %w", err)
	}
	metadata, err := json.Marshal(p.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	mentionIDs := make([]int64, 0, len(p.Mentions))
	for _, m := range p.Mentions {
		mentionIDs = append(mentionIDs, m.ID)
	}

	params := storage.CreatePostParams{
		UUID:        p.UUID,
		AuthorID:    p.Author.ID,
		Type:        string(p.Type),
		Audience:    string(p.Audience),
		Title:       p.Title,
		Excerpt:     p.Excerpt,
		Summary:     p.Summary,
		Content:     p.Content,
		URL:         p.URL,
		ImageURL:    p.ImageURL,
		PublishedAt: p.PublishedAt,
		Attachments: attachments,
		Metadata:    metadata,
		ApID:        p.ApID,
		MentionIDs:  mentionIDs,
	}
	if p.InReplyToID != 0 {
		id := p.InReplyToID
		params.InReplyToID = &id
	}
	if p.ThreadRootID != 0 {
		id := p.ThreadRootID
		params.ThreadRootID = &id
	}

	var (
		row     *storage.Post
		created bool
	)

	if err := s.s.InTx(ctx, func(st storage.Storage) error {
		var err error
		row, created, err = st.CreatePost(ctx, &params)
		if err != nil {
			return fmt.Errorf("failed to create post: %w", err)
		}
		return nil
	}); err != nil {
		return err
	}

	// a concurrent insert with the same ap_id may have won; either way the
	// caller ends up holding the persisted row
	p.ID = row.ID
	p.LikeCount = row.LikeCount
	p.RepostCount = row.RepostCount
	p.ReplyCount = row.ReplyCount
	p.ClearPending()

	if !created {
		return nil
	}

	e := event.PostCreated{
		PostID:      row.ID,
		PostUUID:    row.UUID,
		ApID:        row.ApID,
		AuthorID:    row.AuthorID,
		Audience:    row.Audience,
		PublishedAt: row.PublishedAt,
	}
	if row.InReplyToID != nil {
		e.InReplyToID = *row.InReplyToID
	}

	return s.emit(ctx, []event.Event{e})
}

// emit dispatches synchronously to the local bus and forwards each event to
// the remote channel. A failing local handler fails the save; a failing
// remote publish is logged only, delivery happens after persistence.
func (s srv) emit(ctx context.Context, events []event.Event) error {
	var emitErr error

	for _, e := range events {
		if err := s.b.Emit(ctx, e); err != nil && emitErr == nil {
			emitErr = err
		}

		if s.remote != nil {
			if err := s.remote.Publish(ctx, e); err != nil {
				log.WithError(err).WithField("event", e.Name()).Error("failed to publish event")
			}
		}
	}

	return emitErr
}

func (s srv) GetPost(ctx context.Context, id int64) (*entities.Post, error) {
	row, err := s.s.GetPost(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	return s.load(ctx, row)
}

func (s srv) GetPostByApID(ctx context.Context, apID string) (*entities.Post, error) {
	row, err := s.s.GetPostByApID(ctx, apID)
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	return s.load(ctx, row)
}

// load rebuilds the aggregate with its relation sets as the diff baseline.
func (s srv) load(ctx context.Context, row *storage.Post) (*entities.Post, error) {
	author, err := s.s.GetAccount(ctx, row.AuthorID)
	if err != nil {
		return nil, fmt.Errorf("failed to get author: %w", err)
	}

	likers, err := s.s.GetLikers(ctx, row.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get likers: %w", err)
	}
	reposters, err := s.s.GetReposters(ctx, row.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get reposters: %w", err)
	}

	var attachments []entities.Attachment
	if len(row.Attachments) != 0 {
		if err := json.Unmarshal(row.Attachments, &attachments); err != nil {
			return nil, fmt.Errorf("failed to unmarshal attachments: %w", err)
		}
	}
	var metadata map[string]interface{}
	if len(row.Metadata) != 0 {
		if err := json.Unmarshal(row.Metadata, &metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}

	p := entities.Post{
		ID:   row.ID,
		UUID: row.UUID,
		Author: &entities.Account{
			ID:           author.ID,
			UUID:         author.UUID,
			Username:     author.Username,
			IsInternal:   author.IsInternal,
			ApID:         author.ApID,
			InboxURL:     author.InboxURL,
			FollowersURL: author.FollowersURL,
			DisplayName:  author.DisplayName,
			AvatarURL:    author.AvatarURL,
			CreatedAt:    author.CreatedAt,
		},
		Type:        entities.PostType(row.Type),
		Audience:    entities.Audience(row.Audience),
		Title:       row.Title,
		Excerpt:     row.Excerpt,
		Summary:     row.Summary,
		Content:     row.Content,
		URL:         row.URL,
		ImageURL:    row.ImageURL,
		PublishedAt: row.PublishedAt,
		Attachments: attachments,
		Metadata:    metadata,
		LikeCount:   row.LikeCount,
		RepostCount: row.RepostCount,
		ReplyCount:  row.ReplyCount,
		ApID:        row.ApID,
	}
	if row.InReplyToID != nil {
		p.InReplyToID = *row.InReplyToID
	}
	if row.ThreadRootID != nil {
		p.ThreadRootID = *row.ThreadRootID
	}

	return entities.Loaded(p, likers, reposters), nil
}
