// Package thread reconstructs a bounded reply tree around a focal post.
// Everything here is computed on demand from storage; there is no event
// subscription and no materialized state.
package thread

import (
	"context"
	"errors"
	"fmt"

	"github.com/fedipress/hermes/internal/entities"
	"github.com/fedipress/hermes/internal/storage"
)

// Walk caps per call. Longer chains are paginated with the returned cursor;
// deeper branches require a follow-up call anchored at the branching child.
const (
	MaxAncestorDepth = 10
	MaxChildrenCount = 20
	MaxChildrenDepth = 5
)

// ErrNotFound returned when the focal post does not exist in the viewer's
// context.
var ErrNotFound = errors.New("post not found")

// ChildThread is one immediate reply plus the straight-line sequence of its
// single-threaded descendants. A child with branching replies is not
// expanded past the branch point.
type ChildThread struct {
	Post  *storage.Post
	Chain []*storage.Post
}

// ReplyChain is the materialized view of one getReplyChain call.
type ReplyChain struct {
	// Ancestors are ordered nearest first.
	Ancestors []*storage.Post
	// AncestorCursor re-anchors the ancestor walk when the chain is longer
	// than one page; empty when all ancestors were returned.
	AncestorCursor string
	Focal          *storage.Post
	Children       []ChildThread
}

// View ...
type View struct {
	s storage.Storage
}

// New ...
func New(s storage.Storage) *View {
	return &View{s: s}
}

// GetReplyChain returns the bounded thread around the post with the given
// ap id. cursor, when not empty, is an AncestorCursor from a previous call
// and shifts the ancestor walk one page up the chain.
func (v *View) GetReplyChain(ctx context.Context, viewerAccountID int64, focalApID, cursor string) (*ReplyChain, error) {
	focal, err := v.getVisible(ctx, viewerAccountID, focalApID)
	if err != nil {
		return nil, err
	}

	anchor := focal
	if cursor != "" {
		anchor, err = v.getVisible(ctx, viewerAccountID, cursor)
		if err != nil {
			return nil, err
		}
	}

	ancestors, ancestorCursor, err := v.walkAncestors(ctx, anchor)
	if err != nil {
		return nil, err
	}

	children, err := v.collectChildren(ctx, focal)
	if err != nil {
		return nil, err
	}

	return &ReplyChain{
		Ancestors:      ancestors,
		AncestorCursor: ancestorCursor,
		Focal:          focal,
		Children:       children,
	}, nil
}

func (v *View) getVisible(ctx context.Context, viewerAccountID int64, apID string) (*storage.Post, error) {
	p, err := v.s.GetPostByApID(ctx, apID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	// a direct post exists only for its author's context
	if p.Audience == string(entities.DirectAudience) && p.AuthorID != viewerAccountID {
		return nil, ErrNotFound
	}

	return p, nil
}

// walkAncestors climbs in_reply_to from the anchor, at most
// MaxAncestorDepth posts per call. When the chain continues past the page,
// the oldest returned ancestor's ap id becomes the cursor.
func (v *View) walkAncestors(ctx context.Context, anchor *storage.Post) ([]*storage.Post, string, error) {
	var ancestors []*storage.Post

	current := anchor
	for len(ancestors) < MaxAncestorDepth && current.InReplyToID != nil {
		parent, err := v.s.GetPost(ctx, *current.InReplyToID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				break
			}
			return nil, "", fmt.Errorf("failed to get ancestor: %w", err)
		}

		ancestors = append(ancestors, parent)
		current = parent
	}

	if current.InReplyToID == nil || len(ancestors) == 0 {
		return ancestors, "", nil
	}

	return ancestors, ancestors[len(ancestors)-1].ApID, nil
}

func (v *View) collectChildren(ctx context.Context, focal *storage.Post) ([]ChildThread, error) {
	children, err := v.s.GetChildren(ctx, focal.ID, MaxChildrenCount)
	if err != nil {
		return nil, fmt.Errorf("failed to get children: %w", err)
	}

	out := make([]ChildThread, 0, len(children))
	for _, child := range children {
		chain, err := v.walkChain(ctx, child)
		if err != nil {
			return nil, err
		}
		out = append(out, ChildThread{Post: child, Chain: chain})
	}

	return out, nil
}

// walkChain follows a child's descendants while the thread stays single.
// At a branch (two or more direct replies) the walk stops; discovering the
// branches is a follow-up call with the branching post as the focal.
func (v *View) walkChain(ctx context.Context, child *storage.Post) ([]*storage.Post, error) {
	var chain []*storage.Post

	current := child
	for len(chain) < MaxChildrenDepth {
		replies, err := v.s.GetChildren(ctx, current.ID, 2)
		if err != nil {
			return nil, fmt.Errorf("failed to get replies: %w", err)
		}

		if len(replies) != 1 {
			break
		}

		chain = append(chain, replies[0])
		current = replies[0]
	}

	return chain, nil
}
