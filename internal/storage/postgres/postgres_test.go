//+build integration

package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	m "github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/fedipress/hermes/internal/storage"
)

var (
	db  *sql.DB
	ctx = context.Background()
	s   storage.Storage
)

func TestMain(m *testing.M) {
	shutdown := setup()

	s = New(db)

	code := m.Run()
	shutdown()
	os.Exit(code)
}

func setup() func() {
	req := testcontainers.ContainerRequest{
		Image:        "postgres:15",
		Env:          map[string]string{"POSTGRES_PASSWORD": "root"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp"),
	}
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
	})
	if err != nil {
		logrus.WithError(err).Fatalf("failed to create container")
	}

	if err := c.Start(ctx); err != nil {
		logrus.WithError(err).Fatal("failed to start container")
	}

	host, err := c.Host(ctx)
	if err != nil {
		logrus.WithError(err).Fatal("failed to get host")
	}

	port, err := c.MappedPort(ctx, "5432")
	if err != nil {
		logrus.WithError(err).Fatal("failed to map port")
	}

	dsn := fmt.Sprintf("host=%s port=%d user=postgres password=root sslmode=disable", host, port.Int())

	db, err = sql.Open("postgres", dsn)
	if err != nil {
		logrus.WithError(err).Fatal("failed to open connection")
	}

	if err := db.Ping(); err != nil {
		logrus.WithError(err).Fatal("failed to ping postgres")
	}

	shutdownFn := func() {
		if c != nil {
			c.Terminate(ctx)
		}
	}

	migrate("postgres", "root", host, "postgres", port.Int())

	return shutdownFn
}

func migrate(username, password, hostname, dbname string, port int) {
	_, currFile, _, ok := runtime.Caller(0)
	if !ok {
		logrus.Fatal("failed to get current file location")
	}

	migrations := filepath.Join(currFile, "../../../../scripts/migrations/postgres/")

	migrator, err := m.New(
		fmt.Sprintf("file://%s", migrations),
		fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
			username, password, hostname, port, dbname),
	)
	if err != nil {
		logrus.WithError(err).Fatal("failed to create migrator")
	}
	defer migrator.Close()

	if err := migrator.Up(); err != nil {
		logrus.WithError(err).Fatal("failed to migrate")
	}
}

func cleanup(t *testing.T) {
	_, err := db.ExecContext(ctx, `DELETE FROM feed`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `DELETE FROM mention`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `DELETE FROM "like"`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `DELETE FROM repost`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `DELETE FROM post`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `DELETE FROM follow`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `DELETE FROM account`)
	require.NoError(t, err)
}

func createAccount(t *testing.T, username string) *storage.Account {
	apID := fmt.Sprintf("https://fedipress.test/accounts/%s", username)
	require.NoError(t, s.SaveAccount(ctx, &storage.Account{
		UUID:       fmt.Sprintf("uuid-%s", username),
		Username:   username,
		IsInternal: true,
		ApID:       apID,
		InboxURL:   apID + "/inbox",
	}))

	a, err := s.GetAccountByApID(ctx, apID)
	require.NoError(t, err)

	return a
}

func createPost(t *testing.T, author *storage.Account, apSuffix string) *storage.Post {
	p, created, err := s.CreatePost(ctx, &storage.CreatePostParams{
		UUID:        apSuffix,
		AuthorID:    author.ID,
		Type:        "note",
		Audience:    "public",
		Content:     "content",
		PublishedAt: time.Now().UTC(),
		ApID:        author.ApID + "/notes/" + apSuffix,
	})
	require.NoError(t, err)
	require.True(t, created)

	return p
}

func TestPg_CreatePost(t *testing.T) {
	defer cleanup(t)

	author := createAccount(t, "ada")

	published := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	p, created, err := s.CreatePost(ctx, &storage.CreatePostParams{
		UUID:        "u1",
		AuthorID:    author.ID,
		Type:        "article",
		Audience:    "public",
		Title:       "title",
		Content:     "content",
		PublishedAt: published,
		Attachments: []byte(`[{"url":"https://fedipress.test/a.png","media_type":"image/png"}]`),
		ApID:        author.ApID + "/articles/u1",
	})
	require.NoError(t, err)
	require.True(t, created)
	require.NotZero(t, p.ID)
	assert.Equal(t, "title", p.Title)
	assert.True(t, published.Equal(p.PublishedAt))

	got, err := s.GetPost(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ApID, got.ApID)
	assert.JSONEq(t, string(p.Attachments), string(got.Attachments))
}

func TestPg_CreatePost_DuplicateApID(t *testing.T) {
	defer cleanup(t)

	author := createAccount(t, "ada")
	first := createPost(t, author, "u1")

	// the same ap id inserted again yields the original row, untouched
	p, created, err := s.CreatePost(ctx, &storage.CreatePostParams{
		UUID:        "different-uuid",
		AuthorID:    author.ID,
		Type:        "note",
		Audience:    "public",
		Content:     "other content",
		PublishedAt: time.Now().UTC(),
		ApID:        first.ApID,
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, p.ID)
	assert.Equal(t, first.UUID, p.UUID)
	assert.Equal(t, "content", p.Content)
}

func TestPg_CreatePost_UnknownAuthor(t *testing.T) {
	defer cleanup(t)

	_, _, err := s.CreatePost(ctx, &storage.CreatePostParams{
		UUID:        "u1",
		AuthorID:    12345,
		Type:        "note",
		Audience:    "public",
		PublishedAt: time.Now().UTC(),
		ApID:        "https://fedipress.test/accounts/ghost/notes/u1",
	})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestPg_CreatePost_Reply(t *testing.T) {
	defer cleanup(t)

	author := createAccount(t, "ada")
	parent := createPost(t, author, "u1")

	reply, created, err := s.CreatePost(ctx, &storage.CreatePostParams{
		UUID:         "u2",
		AuthorID:     author.ID,
		Type:         "note",
		Audience:     "public",
		Content:      "reply",
		PublishedAt:  time.Now().UTC(),
		InReplyToID:  &parent.ID,
		ThreadRootID: &parent.ID,
		ApID:         author.ApID + "/notes/u2",
	})
	require.NoError(t, err)
	require.True(t, created)
	require.NotNil(t, reply.InReplyToID)
	assert.Equal(t, parent.ID, *reply.InReplyToID)

	got, err := s.GetPost(ctx, parent.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, got.ReplyCount)

	// a duplicate insert of the reply must not move the counter again
	_, created, err = s.CreatePost(ctx, &storage.CreatePostParams{
		UUID:        "u3",
		AuthorID:    author.ID,
		Type:        "note",
		Audience:    "public",
		PublishedAt: time.Now().UTC(),
		InReplyToID: &parent.ID,
		ApID:        reply.ApID,
	})
	require.NoError(t, err)
	require.False(t, created)

	got, err = s.GetPost(ctx, parent.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, got.ReplyCount)
}

func TestPg_UpdatePost(t *testing.T) {
	defer cleanup(t)

	author := createAccount(t, "ada")
	p := createPost(t, author, "u1")

	require.NoError(t, s.UpdatePost(ctx, &storage.UpdatePostParams{
		ID:      p.ID,
		Title:   "new title",
		Content: "new content",
	}))

	got, err := s.GetPost(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "new title", got.Title)
	assert.Equal(t, "new content", got.Content)

	changed, err := s.TombstonePost(ctx, p.ID)
	require.NoError(t, err)
	require.True(t, changed)

	// tombstones are immutable
	err = s.UpdatePost(ctx, &storage.UpdatePostParams{ID: p.ID, Title: "x"})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestPg_TombstonePost(t *testing.T) {
	defer cleanup(t)

	author := createAccount(t, "ada")
	parent := createPost(t, author, "u1")

	reply, _, err := s.CreatePost(ctx, &storage.CreatePostParams{
		UUID:        "u2",
		AuthorID:    author.ID,
		Type:        "note",
		Audience:    "public",
		Content:     "reply",
		PublishedAt: time.Now().UTC(),
		InReplyToID: &parent.ID,
		ApID:        author.ApID + "/notes/u2",
	})
	require.NoError(t, err)

	changed, err := s.TombstonePost(ctx, reply.ID)
	require.NoError(t, err)
	assert.True(t, changed)

	got, err := s.GetPost(ctx, reply.ID)
	require.NoError(t, err)
	assert.Equal(t, "tombstone", got.Type)
	assert.Empty(t, got.Content)
	assert.Empty(t, got.Attachments)

	parentRow, err := s.GetPost(ctx, parent.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, parentRow.ReplyCount)

	// repeating the delete changes nothing and must not move the counter
	changed, err = s.TombstonePost(ctx, reply.ID)
	require.NoError(t, err)
	assert.False(t, changed)

	parentRow, err = s.GetPost(ctx, parent.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, parentRow.ReplyCount)
}

func TestPg_TombstonePost_Concurrent(t *testing.T) {
	defer cleanup(t)

	author := createAccount(t, "ada")
	parent := createPost(t, author, "u1")

	reply, _, err := s.CreatePost(ctx, &storage.CreatePostParams{
		UUID:        "u2",
		AuthorID:    author.ID,
		Type:        "note",
		Audience:    "public",
		PublishedAt: time.Now().UTC(),
		InReplyToID: &parent.ID,
		ApID:        author.ApID + "/notes/u2",
	})
	require.NoError(t, err)

	var (
		wg          sync.WaitGroup
		mu          sync.Mutex
		changedRuns int
	)

	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			changed, err := s.TombstonePost(ctx, reply.ID)
			require.NoError(t, err)

			if changed {
				mu.Lock()
				changedRuns++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// exactly one delete won, so the parent counter moved exactly once
	assert.Equal(t, 1, changedRuns)

	parentRow, err := s.GetPost(ctx, parent.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, parentRow.ReplyCount)
}

func TestPg_Likes(t *testing.T) {
	defer cleanup(t)

	author := createAccount(t, "ada")
	liker := createAccount(t, "bob")
	p := createPost(t, author, "u1")

	added, err := s.AddLike(ctx, p.ID, liker.ID)
	require.NoError(t, err)
	assert.True(t, added)

	// duplicate like is a no-op for the row and the counter
	added, err = s.AddLike(ctx, p.ID, liker.ID)
	require.NoError(t, err)
	assert.False(t, added)

	got, err := s.GetPost(ctx, p.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, got.LikeCount)

	likers, err := s.GetLikers(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{liker.ID}, likers)

	removed, err := s.RemoveLike(ctx, p.ID, liker.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = s.RemoveLike(ctx, p.ID, liker.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	got, err = s.GetPost(ctx, p.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, got.LikeCount)
}

func TestPg_Likes_Concurrent(t *testing.T) {
	defer cleanup(t)

	author := createAccount(t, "ada")
	liker := createAccount(t, "bob")
	p := createPost(t, author, "u1")

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := s.AddLike(ctx, p.ID, liker.ID)
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := s.GetPost(ctx, p.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, got.LikeCount)
}

func TestPg_AddLike_UnknownPost(t *testing.T) {
	defer cleanup(t)

	liker := createAccount(t, "bob")

	_, err := s.AddLike(ctx, 12345, liker.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestPg_Reposts(t *testing.T) {
	defer cleanup(t)

	author := createAccount(t, "ada")
	reposter := createAccount(t, "bob")
	p := createPost(t, author, "u1")

	added, err := s.AddRepost(ctx, p.ID, reposter.ID)
	require.NoError(t, err)
	assert.True(t, added)

	got, err := s.GetPost(ctx, p.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, got.RepostCount)

	reposters, err := s.GetReposters(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{reposter.ID}, reposters)

	removed, err := s.RemoveRepost(ctx, p.ID, reposter.ID)
	require.NoError(t, err)
	assert.True(t, removed)
}

func TestPg_SetCounters(t *testing.T) {
	defer cleanup(t)

	author := createAccount(t, "ada")
	p := createPost(t, author, "u1")

	require.NoError(t, s.SetLikeCount(ctx, p.ID, 42))
	require.NoError(t, s.SetRepostCount(ctx, p.ID, 7))

	got, err := s.GetPost(ctx, p.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 42, got.LikeCount)
	assert.EqualValues(t, 7, got.RepostCount)

	assert.ErrorIs(t, s.SetLikeCount(ctx, 12345, 1), storage.ErrNotFound)
}

func TestPg_SaveAccount(t *testing.T) {
	defer cleanup(t)

	a := createAccount(t, "ada")
	assert.True(t, a.IsInternal)
	assert.NotZero(t, a.CreatedAt)

	// saving again with the same ap id refreshes the profile in place
	require.NoError(t, s.SaveAccount(ctx, &storage.Account{
		UUID:        a.UUID,
		Username:    "ada",
		IsInternal:  true,
		ApID:        a.ApID,
		DisplayName: "Ada L.",
	}))

	got, err := s.GetAccount(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
	assert.Equal(t, "Ada L.", got.DisplayName)
}

func TestPg_GetAccount_RepairsUUID(t *testing.T) {
	defer cleanup(t)

	a := createAccount(t, "ada")

	_, err := db.ExecContext(ctx, `UPDATE account SET uuid = '' WHERE id = $1`, a.ID)
	require.NoError(t, err)

	got, err := s.GetAccount(ctx, a.ID)
	require.NoError(t, err)
	require.NotEmpty(t, got.UUID)

	// the assigned uuid is persisted, later reads agree
	again, err := s.GetAccount(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, got.UUID, again.UUID)
}

func TestPg_Follow(t *testing.T) {
	defer cleanup(t)

	ada := createAccount(t, "ada")
	bob := createAccount(t, "bob")

	require.NoError(t, s.Follow(ctx, bob.ID, ada.ID))
	require.NoError(t, s.Follow(ctx, bob.ID, ada.ID))

	following, err := s.IsFollowing(ctx, bob.ID, ada.ID)
	require.NoError(t, err)
	assert.True(t, following)

	followers, err := s.GetFollowers(ctx, ada.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{bob.ID}, followers)

	require.NoError(t, s.Unfollow(ctx, bob.ID, ada.ID))

	following, err = s.IsFollowing(ctx, bob.ID, ada.ID)
	require.NoError(t, err)
	assert.False(t, following)
}

func TestPg_Feed(t *testing.T) {
	defer cleanup(t)

	ada := createAccount(t, "ada")
	bob := createAccount(t, "bob")
	p := createPost(t, ada, "u1")

	original := &storage.FeedEntry{
		OwnerAccountID: bob.ID,
		PostID:         p.ID,
		AuthorID:       ada.ID,
		Audience:       "public",
		PublishedDate:  p.PublishedAt,
	}
	repost := &storage.FeedEntry{
		OwnerAccountID: bob.ID,
		PostID:         p.ID,
		AuthorID:       ada.ID,
		RepostedByID:   &ada.ID,
		Audience:       "public",
		PublishedDate:  time.Now().UTC(),
	}

	// the original and a repost of it coexist in the same viewer's feed
	require.NoError(t, s.AddFeedEntries(ctx, []*storage.FeedEntry{original, repost}))
	// redelivery of the same rows is absorbed by the key
	require.NoError(t, s.AddFeedEntries(ctx, []*storage.FeedEntry{original, repost}))

	ee, err := s.ListFeed(ctx, &storage.ListFeedParams{OwnerAccountID: bob.ID, Limit: 10})
	require.NoError(t, err)
	require.Len(t, ee, 2)

	// newest first: the repost row carries a later published date
	require.NotNil(t, ee[0].RepostedByID)
	assert.Nil(t, ee[1].RepostedByID)

	// removing the repost leaves the original untouched
	require.NoError(t, s.RemoveFeedEntries(ctx, p.ID, &ada.ID))

	ee, err = s.ListFeed(ctx, &storage.ListFeedParams{OwnerAccountID: bob.ID, Limit: 10})
	require.NoError(t, err)
	require.Len(t, ee, 1)
	assert.Nil(t, ee[0].RepostedByID)

	require.NoError(t, s.RemoveAllFeedEntries(ctx, p.ID))

	ee, err = s.ListFeed(ctx, &storage.ListFeedParams{OwnerAccountID: bob.ID, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, ee)
}

func TestPg_ListFeed_Pagination(t *testing.T) {
	defer cleanup(t)

	ada := createAccount(t, "ada")

	for i := 0; i < 5; i++ {
		p := createPost(t, ada, fmt.Sprintf("u%d", i))
		require.NoError(t, s.AddFeedEntries(ctx, []*storage.FeedEntry{{
			OwnerAccountID: ada.ID,
			PostID:         p.ID,
			AuthorID:       ada.ID,
			Audience:       "public",
			PublishedDate:  time.Date(2024, 5, 1, 12, i, 0, 0, time.UTC),
		}}))
	}

	first, err := s.ListFeed(ctx, &storage.ListFeedParams{OwnerAccountID: ada.ID, Limit: 3})
	require.NoError(t, err)
	require.Len(t, first, 3)

	cursor := first[len(first)-1].ID
	rest, err := s.ListFeed(ctx, &storage.ListFeedParams{OwnerAccountID: ada.ID, Limit: 3, After: &cursor})
	require.NoError(t, err)
	require.Len(t, rest, 2)

	for i := 1; i < len(rest); i++ {
		assert.True(t, rest[i].PublishedDate.Before(rest[i-1].PublishedDate))
	}
	assert.True(t, rest[0].PublishedDate.Before(first[len(first)-1].PublishedDate))
}

func TestPg_InTx(t *testing.T) {
	defer cleanup(t)

	ada := createAccount(t, "ada")

	require.NoError(t, s.InTx(ctx, func(tx storage.Storage) error {
		_, created, err := tx.CreatePost(ctx, &storage.CreatePostParams{
			UUID:        "u1",
			AuthorID:    ada.ID,
			Type:        "note",
			Audience:    "public",
			PublishedAt: time.Now().UTC(),
			ApID:        ada.ApID + "/notes/u1",
		})
		require.NoError(t, err)
		require.True(t, created)
		return nil
	}))

	// a failing closure rolls everything back
	errBoom := fmt.Errorf("boom")
	err := s.InTx(ctx, func(tx storage.Storage) error {
		_, _, err := tx.CreatePost(ctx, &storage.CreatePostParams{
			UUID:        "u2",
			AuthorID:    ada.ID,
			Type:        "note",
			Audience:    "public",
			PublishedAt: time.Now().UTC(),
			ApID:        ada.ApID + "/notes/u2",
		})
		require.NoError(t, err)
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	_, err = s.GetPostByApID(ctx, ada.ApID+"/notes/u2")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
