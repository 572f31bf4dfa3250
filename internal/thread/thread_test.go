package thread

import (
	"context"
	"fmt"
	"sort"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fedipress/hermes/internal/storage"
	"github.com/fedipress/hermes/internal/storage/mock"
)

// chainOfPosts builds posts 1..n where each post replies to the previous one.
func chainOfPosts(n int) map[int64]*storage.Post {
	posts := make(map[int64]*storage.Post, n)
	for i := 1; i <= n; i++ {
		p := &storage.Post{
			ID:       int64(i),
			AuthorID: 1,
			Type:     "note",
			Audience: "public",
			ApID:     fmt.Sprintf("https://fedipress.test/accounts/ada/notes/%d", i),
		}
		if i > 1 {
			parent := int64(i - 1)
			p.InReplyToID = &parent
		}
		posts[p.ID] = p
	}
	return posts
}

func stubChain(st *mock.MockStorage, posts map[int64]*storage.Post) {
	st.EXPECT().GetPostByApID(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, apID string) (*storage.Post, error) {
			for _, p := range posts {
				if p.ApID == apID {
					return p, nil
				}
			}
			return nil, storage.ErrNotFound
		}).AnyTimes()
	st.EXPECT().GetPost(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, id int64) (*storage.Post, error) {
			p, ok := posts[id]
			if !ok {
				return nil, storage.ErrNotFound
			}
			return p, nil
		}).AnyTimes()
	st.EXPECT().GetChildren(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, postID int64, limit int) ([]*storage.Post, error) {
			ids := make([]int64, 0, len(posts))
			for id := range posts {
				ids = append(ids, id)
			}
			sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

			var out []*storage.Post
			for _, id := range ids {
				p := posts[id]
				if p.InReplyToID != nil && *p.InReplyToID == postID {
					out = append(out, p)
				}
				if len(out) == limit {
					break
				}
			}
			return out, nil
		}).AnyTimes()
}

func newTestView(t *testing.T) (*mock.MockStorage, *View) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	st := mock.NewMockStorage(ctrl)
	return st, New(st)
}

func TestView_GetReplyChain_ShortThread(t *testing.T) {
	st, v := newTestView(t)

	posts := chainOfPosts(5)
	stubChain(st, posts)

	// focal in the middle: two ancestors, a straight descendant chain
	chain, err := v.GetReplyChain(context.Background(), 1, posts[3].ApID, "")
	require.NoError(t, err)

	assert.Equal(t, posts[3], chain.Focal)

	// nearest first
	require.Len(t, chain.Ancestors, 2)
	assert.EqualValues(t, 2, chain.Ancestors[0].ID)
	assert.EqualValues(t, 1, chain.Ancestors[1].ID)
	assert.Empty(t, chain.AncestorCursor, "the chain ended at the root")

	require.Len(t, chain.Children, 1)
	assert.EqualValues(t, 4, chain.Children[0].Post.ID)
	require.Len(t, chain.Children[0].Chain, 1)
	assert.EqualValues(t, 5, chain.Children[0].Chain[0].ID)
}

func TestView_GetReplyChain_AncestorPagination(t *testing.T) {
	st, v := newTestView(t)

	// MaxAncestorDepth+6 posts above the focal
	n := MaxAncestorDepth + 7
	posts := chainOfPosts(n)
	stubChain(st, posts)

	chain, err := v.GetReplyChain(context.Background(), 1, posts[int64(n)].ApID, "")
	require.NoError(t, err)

	require.Len(t, chain.Ancestors, MaxAncestorDepth)
	assert.EqualValues(t, n-1, chain.Ancestors[0].ID)
	oldest := chain.Ancestors[MaxAncestorDepth-1]
	assert.EqualValues(t, n-MaxAncestorDepth, oldest.ID)
	require.Equal(t, oldest.ApID, chain.AncestorCursor)

	// the second page re-anchors at the cursor and reaches the root
	chain, err = v.GetReplyChain(context.Background(), 1, posts[int64(n)].ApID, chain.AncestorCursor)
	require.NoError(t, err)

	assert.Equal(t, posts[int64(n)], chain.Focal, "the focal does not move across pages")
	require.Len(t, chain.Ancestors, n-MaxAncestorDepth-1)
	assert.EqualValues(t, 1, chain.Ancestors[len(chain.Ancestors)-1].ID)
	assert.Empty(t, chain.AncestorCursor)
}

func TestView_GetReplyChain_ChainStopsAtBranch(t *testing.T) {
	st, v := newTestView(t)

	posts := chainOfPosts(3)
	// a second reply to post 2 makes it a branch point
	branch := int64(2)
	posts[99] = &storage.Post{
		ID:          99,
		AuthorID:    2,
		Type:        "note",
		Audience:    "public",
		InReplyToID: &branch,
		ApID:        "https://fedipress.test/accounts/bob/notes/99",
	}
	stubChain(st, posts)

	chain, err := v.GetReplyChain(context.Background(), 1, posts[1].ApID, "")
	require.NoError(t, err)

	// post 2 is the immediate child; its chain is empty because it branches
	require.Len(t, chain.Children, 1)
	assert.EqualValues(t, 2, chain.Children[0].Post.ID)
	assert.Empty(t, chain.Children[0].Chain)
}

func TestView_GetReplyChain_ChainDepthBounded(t *testing.T) {
	st, v := newTestView(t)

	posts := chainOfPosts(MaxChildrenDepth + 5)
	stubChain(st, posts)

	chain, err := v.GetReplyChain(context.Background(), 1, posts[1].ApID, "")
	require.NoError(t, err)

	require.Len(t, chain.Children, 1)
	assert.Len(t, chain.Children[0].Chain, MaxChildrenDepth)
}

func TestView_GetReplyChain_NotFound(t *testing.T) {
	st, v := newTestView(t)

	st.EXPECT().GetPostByApID(gomock.Any(), "missing").Return(nil, storage.ErrNotFound)

	_, err := v.GetReplyChain(context.Background(), 1, "missing", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestView_GetReplyChain_DirectVisibleOnlyToAuthor(t *testing.T) {
	st, v := newTestView(t)

	direct := &storage.Post{
		ID:       42,
		AuthorID: 1,
		Type:     "note",
		Audience: "direct",
		ApID:     "https://fedipress.test/accounts/ada/notes/direct",
	}
	st.EXPECT().GetPostByApID(gomock.Any(), direct.ApID).Return(direct, nil).Times(2)
	st.EXPECT().GetChildren(gomock.Any(), int64(42), MaxChildrenCount).Return(nil, nil)

	_, err := v.GetReplyChain(context.Background(), 7, direct.ApID, "")
	assert.ErrorIs(t, err, ErrNotFound)

	chain, err := v.GetReplyChain(context.Background(), 1, direct.ApID, "")
	require.NoError(t, err)
	assert.Equal(t, direct, chain.Focal)
}

func TestView_GetReplyChain_MissingAncestorEndsWalk(t *testing.T) {
	st, v := newTestView(t)

	parent := int64(40)
	focal := &storage.Post{
		ID:          42,
		AuthorID:    1,
		Type:        "note",
		Audience:    "public",
		InReplyToID: &parent,
		ApID:        "https://fedipress.test/accounts/ada/notes/42",
	}

	st.EXPECT().GetPostByApID(gomock.Any(), focal.ApID).Return(focal, nil)
	// the parent was hard-deleted by another instance; the walk just stops
	st.EXPECT().GetPost(gomock.Any(), parent).Return(nil, storage.ErrNotFound)
	st.EXPECT().GetChildren(gomock.Any(), int64(42), MaxChildrenCount).Return(nil, nil)

	chain, err := v.GetReplyChain(context.Background(), 1, focal.ApID, "")
	require.NoError(t, err)
	assert.Empty(t, chain.Ancestors)
	assert.Empty(t, chain.AncestorCursor)
}
