// Package feed maintains the per-viewer materialized feed projection. The
// engine is driven exclusively by post lifecycle events; request handlers
// never call it directly.
package feed

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/fedipress/hermes/internal/bus"
	"github.com/fedipress/hermes/internal/entities"
	"github.com/fedipress/hermes/internal/event"
	"github.com/fedipress/hermes/internal/storage"
)

var log = logrus.WithField("package", "feed")

// Engine subscribes to the bus and keeps the feed table in step with post
// lifecycle events. Because the bus is synchronous, a feed row is visible
// the moment the triggering save returns.
type Engine struct {
	s storage.Storage
}

// New creates the engine and registers its handlers.
func New(s storage.Storage, b *bus.Bus) (*Engine, error) {
	e := &Engine{s: s}

	subscriptions := map[string]bus.Handler{
		event.NamePostCreated:    e.onPostCreated,
		event.NamePostReposted:   e.onPostReposted,
		event.NamePostDereposted: e.onPostDereposted,
		event.NamePostDeleted:    e.onPostDeleted,
	}
	for name, h := range subscriptions {
		if err := b.Subscribe(name, h); err != nil {
			return nil, fmt.Errorf("failed to subscribe to %s: %w", name, err)
		}
	}

	return e, nil
}

func (e *Engine) onPostCreated(ctx context.Context, evt event.Event) error {
	created, ok := evt.(event.PostCreated)
	if !ok {
		return fmt.Errorf("unexpected event %s", evt.Name())
	}

	post, err := e.s.GetPost(ctx, created.PostID)
	if err != nil {
		return fmt.Errorf("failed to get post: %w", err)
	}

	return e.addPostToFeeds(ctx, post, nil)
}

func (e *Engine) onPostReposted(ctx context.Context, evt event.Event) error {
	reposted, ok := evt.(event.PostReposted)
	if !ok {
		return fmt.Errorf("unexpected event %s", evt.Name())
	}

	post, err := e.s.GetPost(ctx, reposted.PostID)
	if err != nil {
		return fmt.Errorf("failed to get post: %w", err)
	}

	return e.addPostToFeeds(ctx, post, &reposted.AccountID)
}

func (e *Engine) onPostDereposted(ctx context.Context, evt event.Event) error {
	dereposted, ok := evt.(event.PostDereposted)
	if !ok {
		return fmt.Errorf("unexpected event %s", evt.Name())
	}

	// only this reposter's rows go away; the original post's row and other
	// reposters' rows stay
	if err := e.s.RemoveFeedEntries(ctx, dereposted.PostID, &dereposted.AccountID); err != nil {
		return fmt.Errorf("failed to remove feed entries: %w", err)
	}

	return nil
}

func (e *Engine) onPostDeleted(ctx context.Context, evt event.Event) error {
	deleted, ok := evt.(event.PostDeleted)
	if !ok {
		return fmt.Errorf("unexpected event %s", evt.Name())
	}

	if err := e.s.RemoveAllFeedEntries(ctx, deleted.PostID); err != nil {
		return fmt.Errorf("failed to remove feed entries: %w", err)
	}

	return nil
}

// addPostToFeeds materializes rows for one (post, reposter) key. Without a
// reposter the viewers are the author plus the author's followers; with one
// they are the reposter's followers. Followers only receive posts which are
// not replies and not direct.
func (e *Engine) addPostToFeeds(ctx context.Context, post *storage.Post, repostedBy *int64) error {
	var entries []*storage.FeedEntry

	add := func(viewer int64) {
		entries = append(entries, &storage.FeedEntry{
			OwnerAccountID: viewer,
			PostID:         post.ID,
			AuthorID:       post.AuthorID,
			RepostedByID:   repostedBy,
			Audience:       post.Audience,
			PublishedDate:  post.PublishedAt,
		})
	}

	fanOutAccount := post.AuthorID
	if repostedBy != nil {
		fanOutAccount = *repostedBy
	} else {
		// the author always sees their own post
		add(post.AuthorID)
	}

	if e.qualifiesForFollowers(post) {
		followers, err := e.s.GetFollowers(ctx, fanOutAccount)
		if err != nil {
			return fmt.Errorf("failed to get followers: %w", err)
		}

		for _, follower := range followers {
			if follower == post.AuthorID && repostedBy == nil {
				continue
			}
			add(follower)
		}
	}

	if len(entries) == 0 {
		return nil
	}

	if err := e.s.AddFeedEntries(ctx, entries); err != nil {
		return fmt.Errorf("failed to add feed entries: %w", err)
	}

	log.WithFields(logrus.Fields{"post": post.ID, "entries": len(entries)}).Debug("feed populated")

	return nil
}

func (e *Engine) qualifiesForFollowers(post *storage.Post) bool {
	if post.InReplyToID != nil {
		return false
	}
	return post.Audience != string(entities.DirectAudience)
}
