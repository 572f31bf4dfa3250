// Package postgres is implementation of storage interface.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/fedipress/hermes/internal/storage"
)

var log = logrus.WithField("layer", "storage").WithField("package", "postgres")
var errBeginCalledWithinTx = errors.New("can not run InTx within tx")

const (
	foreignKeyViolation = "23503"
	uniqueViolation     = "23505"
)

type pg struct {
	ext sqlx.ExtContext
}

// New creates new instance of pg.
func New(db *sql.DB) storage.Storage {
	return pg{
		ext: sqlx.NewDb(db, "postgres"),
	}
}

type postDTO struct {
	ID          int64           `db:"id"`
	UUID        string          `db:"uuid"`
	AuthorID    int64           `db:"author_id"`
	Type        string          `db:"type"`
	Audience    string          `db:"audience"`
	Title       string          `db:"title"`
	Excerpt     string          `db:"excerpt"`
	Summary     string          `db:"summary"`
	Content     string          `db:"content"`
	URL         string          `db:"url"`
	ImageURL    string          `db:"image_url"`
	PublishedAt time.Time       `db:"published_at"`
	Attachments json.RawMessage `db:"attachments"`
	Metadata    json.RawMessage `db:"metadata"`
	InReplyTo   *int64          `db:"in_reply_to"`
	ThreadRoot  *int64          `db:"thread_root"`
	LikeCount   int32           `db:"like_count"`
	RepostCount int32           `db:"repost_count"`
	ReplyCount  int32           `db:"reply_count"`
	ApID        string          `db:"ap_id"`
}

const postColumns = `id, uuid, author_id, type, audience, title, excerpt, summary, content, url, image_url,
	published_at, attachments, metadata, in_reply_to, thread_root, like_count, repost_count, reply_count, ap_id`

type accountDTO struct {
	ID           int64     `db:"id"`
	UUID         string    `db:"uuid"`
	Username     string    `db:"username"`
	IsInternal   bool      `db:"is_internal"`
	ApID         string    `db:"ap_id"`
	InboxURL     string    `db:"inbox_url"`
	FollowersURL string    `db:"followers_url"`
	DisplayName  string    `db:"display_name"`
	AvatarURL    string    `db:"avatar_url"`
	CreatedAt    time.Time `db:"created_at"`
}

type feedEntryDTO struct {
	ID             int64     `db:"id"`
	OwnerAccountID int64     `db:"owner_account_id"`
	PostID         int64     `db:"post_id"`
	AuthorID       int64     `db:"author_id"`
	RepostedByID   *int64    `db:"reposted_by_id"`
	Audience       string    `db:"audience"`
	PublishedDate  time.Time `db:"published_date"`
}

func (s pg) InTx(ctx context.Context, f func(s storage.Storage) error) error {
	db, ok := s.ext.(*sqlx.DB)
	if !ok {
		return errBeginCalledWithinTx
	}

	tx, err := db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("failed to create tx: %w", err)
	}

	if err := f(pg{ext: tx}); err != nil {
		if err := tx.Rollback(); err != nil {
			log.WithError(err).Error("failed to rollback tx")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tx: %w", err)
	}

	return nil
}

func (s pg) CreatePost(ctx context.Context, p *storage.CreatePostParams) (*storage.Post, bool, error) {
	post := postDTO{
		UUID:        p.UUID,
		AuthorID:    p.AuthorID,
		Type:        p.Type,
		Audience:    p.Audience,
		Title:       p.Title,
		Excerpt:     p.Excerpt,
		Summary:     p.Summary,
		Content:     p.Content,
		URL:         p.URL,
		ImageURL:    p.ImageURL,
		PublishedAt: p.PublishedAt.UTC(),
		Attachments: p.Attachments,
		Metadata:    p.Metadata,
		InReplyTo:   p.InReplyToID,
		ThreadRoot:  p.ThreadRootID,
		ApID:        p.ApID,
	}

	query, args, err := sqlx.Named(`
			INSERT INTO post(uuid, author_id, type, audience, title, excerpt, summary, content, url, image_url,
				published_at, attachments, metadata, in_reply_to, thread_root, ap_id)
			VALUES(:uuid, :author_id, :type, :audience, :title, :excerpt, :summary, :content, :url, :image_url,
				:published_at, :attachments, :metadata, :in_reply_to, :thread_root, :ap_id)
			ON CONFLICT(ap_id) DO NOTHING
			RETURNING `+postColumns,
		post,
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to construct query: %w", err)
	}

	var created postDTO
	if err := sqlx.GetContext(ctx, s.ext, &created, s.ext.Rebind(query), args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// a concurrent insert with the same ap_id won, return the existing row
			existing, err := s.GetPostByApID(ctx, p.ApID)
			if err != nil {
				return nil, false, fmt.Errorf("failed to get existing post: %w", err)
			}
			return existing, false, nil
		}

		if err, ok := err.(*pq.Error); ok && err.Code == foreignKeyViolation {
			return nil, false, storage.ErrNotFound
		}

		return nil, false, fmt.Errorf("failed to exec: %w", err)
	}

	// the insert happened exactly once, so the parent counter moves exactly once
	if created.InReplyTo != nil {
		if _, err := s.ext.ExecContext(ctx,
			`UPDATE post SET reply_count = reply_count + 1 WHERE id = $1`, *created.InReplyTo,
		); err != nil {
			return nil, false, fmt.Errorf("failed to bump reply count: %w", err)
		}
	}

	for _, accountID := range p.MentionIDs {
		if _, err := s.ext.ExecContext(ctx,
			`INSERT INTO mention(post_id, account_id) VALUES($1, $2) ON CONFLICT DO NOTHING`,
			created.ID, accountID,
		); err != nil {
			return nil, false, fmt.Errorf("failed to record mention: %w", err)
		}
	}

	return toPost(&created), true, nil
}

func (s pg) GetPost(ctx context.Context, id int64) (*storage.Post, error) {
	var p postDTO

	if err := sqlx.GetContext(ctx, s.ext, &p,
		`SELECT `+postColumns+` FROM post WHERE id = $1`, id,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query: %w", err)
	}

	return toPost(&p), nil
}

func (s pg) GetPostByApID(ctx context.Context, apID string) (*storage.Post, error) {
	var p postDTO

	if err := sqlx.GetContext(ctx, s.ext, &p,
		`SELECT `+postColumns+` FROM post WHERE ap_id = $1`, apID,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query: %w", err)
	}

	return toPost(&p), nil
}

func (s pg) GetPostByUUID(ctx context.Context, postUUID string) (*storage.Post, error) {
	var p postDTO

	if err := sqlx.GetContext(ctx, s.ext, &p,
		`SELECT `+postColumns+` FROM post WHERE uuid = $1`, postUUID,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query: %w", err)
	}

	return toPost(&p), nil
}

func (s pg) UpdatePost(ctx context.Context, p *storage.UpdatePostParams) error {
	res, err := s.ext.ExecContext(ctx, `
			UPDATE post SET title=$2, excerpt=$3, summary=$4, content=$5, url=$6, image_url=$7
			WHERE id=$1 AND type <> 'tombstone'`,
		p.ID, p.Title, p.Excerpt, p.Summary, p.Content, p.URL, p.ImageURL,
	)
	if err != nil {
		return fmt.Errorf("failed to exec: %w", err)
	}

	if c, _ := res.RowsAffected(); c == 0 {
		return storage.ErrNotFound
	}

	return nil
}

// TombstonePost strips the post and, when it is a reply which was not
// already tombstoned, decrements the parent's reply counter. The WHERE
// clause gates both effects, so concurrent deletes of the same reply move
// the counter exactly once.
func (s pg) TombstonePost(ctx context.Context, id int64) (bool, error) {
	var inReplyTo *int64

	err := s.ext.QueryRowxContext(ctx, `
			UPDATE post
			SET type='tombstone', title='', excerpt='', summary='', content='', url='', image_url='',
				attachments=NULL, metadata=NULL
			WHERE id=$1 AND type <> 'tombstone'
			RETURNING in_reply_to`,
		id,
	).Scan(&inReplyTo)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// already a tombstone, nothing changed
			return false, nil
		}
		return false, fmt.Errorf("failed to exec: %w", err)
	}

	if inReplyTo != nil {
		if _, err := s.ext.ExecContext(ctx,
			`UPDATE post SET reply_count = greatest(reply_count - 1, 0) WHERE id = $1`, *inReplyTo,
		); err != nil {
			return false, fmt.Errorf("failed to drop reply count: %w", err)
		}
	}

	return true, nil
}

func (s pg) GetChildren(ctx context.Context, postID int64, limit int) ([]*storage.Post, error) {
	var pp []*postDTO

	if err := sqlx.SelectContext(ctx, s.ext, &pp,
		`SELECT `+postColumns+` FROM post
			WHERE in_reply_to = $1 AND type <> 'tombstone'
			ORDER BY published_at ASC, id ASC
			LIMIT $2`,
		postID, limit,
	); err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}

	out := make([]*storage.Post, len(pp))
	for i, p := range pp {
		out[i] = toPost(p)
	}

	return out, nil
}

func (s pg) AddLike(ctx context.Context, postID, accountID int64) (bool, error) {
	return s.addRelation(ctx, "like", "like_count", postID, accountID)
}

func (s pg) RemoveLike(ctx context.Context, postID, accountID int64) (bool, error) {
	return s.removeRelation(ctx, "like", "like_count", postID, accountID)
}

func (s pg) AddRepost(ctx context.Context, postID, accountID int64) (bool, error) {
	return s.addRelation(ctx, "repost", "repost_count", postID, accountID)
}

func (s pg) RemoveRepost(ctx context.Context, postID, accountID int64) (bool, error) {
	return s.removeRelation(ctx, "repost", "repost_count", postID, accountID)
}

// addRelation inserts the membership row and bumps the counter in one
// statement; ON CONFLICT makes a duplicate insert a no-op for both.
func (s pg) addRelation(ctx context.Context, table, counter string, postID, accountID int64) (bool, error) {
	res, err := s.ext.ExecContext(ctx, fmt.Sprintf(`
			WITH ins AS (
				INSERT INTO "%s"(post_id, account_id) VALUES($1, $2)
				ON CONFLICT DO NOTHING
				RETURNING post_id
			)
			UPDATE post SET %s = %s + 1 WHERE id IN (SELECT post_id FROM ins)`,
		table, counter, counter),
		postID, accountID,
	)
	if err != nil {
		if err, ok := err.(*pq.Error); ok && err.Code == foreignKeyViolation {
			return false, storage.ErrNotFound
		}
		return false, fmt.Errorf("failed to exec: %w", err)
	}

	c, _ := res.RowsAffected()
	return c == 1, nil
}

func (s pg) removeRelation(ctx context.Context, table, counter string, postID, accountID int64) (bool, error) {
	res, err := s.ext.ExecContext(ctx, fmt.Sprintf(`
			WITH del AS (
				DELETE FROM "%s" WHERE post_id=$1 AND account_id=$2
				RETURNING post_id
			)
			UPDATE post SET %s = greatest(%s - 1, 0) WHERE id IN (SELECT post_id FROM del)`,
		table, counter, counter),
		postID, accountID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to exec: %w", err)
	}

	c, _ := res.RowsAffected()
	return c == 1, nil
}

func (s pg) SetLikeCount(ctx context.Context, postID int64, count int32) error {
	return s.setCounter(ctx, "like_count", postID, count)
}

func (s pg) SetRepostCount(ctx context.Context, postID int64, count int32) error {
	return s.setCounter(ctx, "repost_count", postID, count)
}

func (s pg) setCounter(ctx context.Context, counter string, postID int64, count int32) error {
	res, err := s.ext.ExecContext(ctx,
		fmt.Sprintf(`UPDATE post SET %s = $2 WHERE id = $1`, counter),
		postID, count,
	)
	if err != nil {
		return fmt.Errorf("failed to exec: %w", err)
	}

	if c, _ := res.RowsAffected(); c == 0 {
		return storage.ErrNotFound
	}

	return nil
}

func (s pg) GetLikers(ctx context.Context, postID int64) ([]int64, error) {
	return s.relationMembers(ctx, "like", postID)
}

func (s pg) GetReposters(ctx context.Context, postID int64) ([]int64, error) {
	return s.relationMembers(ctx, "repost", postID)
}

func (s pg) relationMembers(ctx context.Context, table string, postID int64) ([]int64, error) {
	var ids []int64
	if err := sqlx.SelectContext(ctx, s.ext, &ids,
		fmt.Sprintf(`SELECT account_id FROM "%s" WHERE post_id = $1 ORDER BY account_id`, table),
		postID,
	); err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}

	return ids, nil
}

func (s pg) SaveAccount(ctx context.Context, a *storage.Account) error {
	account := accountDTO{
		UUID:         a.UUID,
		Username:     a.Username,
		IsInternal:   a.IsInternal,
		ApID:         a.ApID,
		InboxURL:     a.InboxURL,
		FollowersURL: a.FollowersURL,
		DisplayName:  a.DisplayName,
		AvatarURL:    a.AvatarURL,
		CreatedAt:    a.CreatedAt.UTC(),
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}

	if _, err := sqlx.NamedExecContext(ctx, s.ext, `
			INSERT INTO account(uuid, username, is_internal, ap_id, inbox_url, followers_url, display_name, avatar_url, created_at)
			VALUES(:uuid, :username, :is_internal, :ap_id, :inbox_url, :followers_url, :display_name, :avatar_url, :created_at)
			ON CONFLICT(ap_id) DO UPDATE SET
				username=excluded.username, inbox_url=excluded.inbox_url, followers_url=excluded.followers_url,
				display_name=excluded.display_name, avatar_url=excluded.avatar_url`,
		account,
	); err != nil {
		return fmt.Errorf("failed to exec: %w", err)
	}

	return nil
}

func (s pg) GetAccount(ctx context.Context, id int64) (*storage.Account, error) {
	return s.getAccount(ctx, `id = $1`, id)
}

func (s pg) GetAccountByApID(ctx context.Context, apID string) (*storage.Account, error) {
	return s.getAccount(ctx, `ap_id = $1`, apID)
}

func (s pg) getAccount(ctx context.Context, where string, arg interface{}) (*storage.Account, error) {
	var a accountDTO

	if err := sqlx.GetContext(ctx, s.ext, &a,
		`SELECT id, uuid, username, is_internal, ap_id, inbox_url, followers_url, display_name, avatar_url, created_at
			FROM account WHERE `+where, arg,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query: %w", err)
	}

	// rows which predate the uuid column get one assigned on first read
	if a.UUID == "" {
		a.UUID = uuid.NewString()
		if _, err := s.ext.ExecContext(ctx,
			`UPDATE account SET uuid = $2 WHERE id = $1 AND uuid = ''`, a.ID, a.UUID,
		); err != nil {
			log.WithError(err).WithField("account", a.ID).Error("failed to repair account uuid")
		}
	}

	return toAccount(&a), nil
}

func (s pg) Follow(ctx context.Context, follower, followee int64) error {
	if _, err := s.ext.ExecContext(ctx,
		`INSERT INTO follow(follower, followee) VALUES($1, $2) ON CONFLICT DO NOTHING`,
		follower, followee,
	); err != nil {
		if err, ok := err.(*pq.Error); ok && err.Code == foreignKeyViolation {
			return storage.ErrNotFound
		}
		return fmt.Errorf("failed to exec: %w", err)
	}

	return nil
}

func (s pg) Unfollow(ctx context.Context, follower, followee int64) error {
	if _, err := s.ext.ExecContext(ctx,
		`DELETE FROM follow WHERE follower=$1 AND followee=$2`,
		follower, followee,
	); err != nil {
		return fmt.Errorf("failed to exec: %w", err)
	}

	return nil
}

func (s pg) GetFollowers(ctx context.Context, accountID int64) ([]int64, error) {
	var ids []int64
	if err := sqlx.SelectContext(ctx, s.ext, &ids,
		`SELECT follower FROM follow WHERE followee = $1 ORDER BY follower`, accountID,
	); err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}

	return ids, nil
}

func (s pg) IsFollowing(ctx context.Context, follower, followee int64) (bool, error) {
	var ok bool
	if err := sqlx.GetContext(ctx, s.ext, &ok,
		`SELECT exists(SELECT 1 FROM follow WHERE follower=$1 AND followee=$2)`, follower, followee,
	); err != nil {
		return false, fmt.Errorf("failed to query: %w", err)
	}

	return ok, nil
}

func (s pg) AddFeedEntries(ctx context.Context, entries []*storage.FeedEntry) error {
	for _, e := range entries {
		entry := feedEntryDTO{
			OwnerAccountID: e.OwnerAccountID,
			PostID:         e.PostID,
			AuthorID:       e.AuthorID,
			RepostedByID:   e.RepostedByID,
			Audience:       e.Audience,
			PublishedDate:  e.PublishedDate.UTC(),
		}

		// redelivered events insert the same key again, which is a no-op
		if _, err := sqlx.NamedExecContext(ctx, s.ext, `
				INSERT INTO feed(owner_account_id, post_id, author_id, reposted_by_id, audience, published_date)
				VALUES(:owner_account_id, :post_id, :author_id, :reposted_by_id, :audience, :published_date)
				ON CONFLICT DO NOTHING`,
			entry,
		); err != nil {
			return fmt.Errorf("failed to exec: %w", err)
		}
	}

	return nil
}

func (s pg) RemoveFeedEntries(ctx context.Context, postID int64, repostedBy *int64) error {
	if _, err := s.ext.ExecContext(ctx,
		`DELETE FROM feed WHERE post_id = $1 AND reposted_by_id IS NOT DISTINCT FROM $2`,
		postID, repostedBy,
	); err != nil {
		return fmt.Errorf("failed to exec: %w", err)
	}

	return nil
}

func (s pg) RemoveAllFeedEntries(ctx context.Context, postID int64) error {
	if _, err := s.ext.ExecContext(ctx,
		`DELETE FROM feed WHERE post_id = $1`, postID,
	); err != nil {
		return fmt.Errorf("failed to exec: %w", err)
	}

	return nil
}

func (s pg) ListFeed(ctx context.Context, p *storage.ListFeedParams) ([]*storage.FeedEntry, error) {
	query := `SELECT id, owner_account_id, post_id, author_id, reposted_by_id, audience, published_date
		FROM feed WHERE owner_account_id = $1`
	args := []interface{}{p.OwnerAccountID}

	if p.After != nil {
		query += ` AND id < $2`
		args = append(args, *p.After)
	}

	query += fmt.Sprintf(` ORDER BY published_date DESC, id DESC LIMIT %d`, p.Limit)

	var ee []*feedEntryDTO
	if err := sqlx.SelectContext(ctx, s.ext, &ee, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}

	out := make([]*storage.FeedEntry, len(ee))
	for i, e := range ee {
		out[i] = &storage.FeedEntry{
			ID:             e.ID,
			OwnerAccountID: e.OwnerAccountID,
			PostID:         e.PostID,
			AuthorID:       e.AuthorID,
			RepostedByID:   e.RepostedByID,
			Audience:       e.Audience,
			PublishedDate:  e.PublishedDate,
		}
	}

	return out, nil
}

func toPost(p *postDTO) *storage.Post {
	return &storage.Post{
		ID:           p.ID,
		UUID:         p.UUID,
		AuthorID:     p.AuthorID,
		Type:         p.Type,
		Audience:     p.Audience,
		Title:        p.Title,
		Excerpt:      p.Excerpt,
		Summary:      p.Summary,
		Content:      p.Content,
		URL:          p.URL,
		ImageURL:     p.ImageURL,
		PublishedAt:  p.PublishedAt,
		Attachments:  p.Attachments,
		Metadata:     p.Metadata,
		InReplyToID:  p.InReplyTo,
		ThreadRootID: p.ThreadRoot,
		LikeCount:    p.LikeCount,
		RepostCount:  p.RepostCount,
		ReplyCount:   p.ReplyCount,
		ApID:         p.ApID,
	}
}

func toAccount(a *accountDTO) *storage.Account {
	return &storage.Account{
		ID:           a.ID,
		UUID:         a.UUID,
		Username:     a.Username,
		IsInternal:   a.IsInternal,
		ApID:         a.ApID,
		InboxURL:     a.InboxURL,
		FollowersURL: a.FollowersURL,
		DisplayName:  a.DisplayName,
		AvatarURL:    a.AvatarURL,
		CreatedAt:    a.CreatedAt,
	}
}
