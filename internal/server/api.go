package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"

	"github.com/fedipress/hermes/internal/entities"
	"github.com/fedipress/hermes/internal/storage"
	"github.com/fedipress/hermes/internal/thread"
)

const maxLimit = 100
const defaultLimit = 20

// Error ...
// swagger:model
type Error struct {
	Error string `json:"error"`
}

// Post ...
type Post struct {
	ID           int64     `json:"id"`
	UUID         string    `json:"uuid"`
	ApID         string    `json:"ap_id"`
	AuthorID     int64     `json:"author_id"`
	Type         string    `json:"type"`
	Audience     string    `json:"audience"`
	Title        string    `json:"title,omitempty"`
	Excerpt      string    `json:"excerpt,omitempty"`
	Summary      string    `json:"summary,omitempty"`
	Content      string    `json:"content,omitempty"`
	URL          string    `json:"url,omitempty"`
	ImageURL     string    `json:"image_url,omitempty"`
	PublishedAt  time.Time `json:"published_at"`
	InReplyToID  *int64    `json:"in_reply_to_id,omitempty"`
	ThreadRootID *int64    `json:"thread_root_id,omitempty"`
	LikeCount    int32     `json:"like_count"`
	RepostCount  int32     `json:"repost_count"`
	ReplyCount   int32     `json:"reply_count"`
}

// Account ...
type Account struct {
	ID          int64  `json:"id"`
	UUID        string `json:"uuid"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name,omitempty"`
	ApID        string `json:"ap_id"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

// GetPostResponse ...
// swagger:model
type GetPostResponse struct {
	Post   Post    `json:"post"`
	Author Account `json:"author"`
}

// FeedItem is one row of a viewer's feed.
type FeedItem struct {
	ID            int64     `json:"id"`
	PostID        int64     `json:"post_id"`
	AuthorID      int64     `json:"author_id"`
	RepostedByID  *int64    `json:"reposted_by_id,omitempty"`
	PublishedDate time.Time `json:"published_date"`
}

// ListFeedResponse ...
// swagger:model
type ListFeedResponse struct {
	Items []FeedItem `json:"items"`
	// Next is the id to pass as `after` for the following page; absent on the
	// last page.
	Next *int64 `json:"next,omitempty"`
}

// ChildThread ...
type ChildThread struct {
	Post  Post   `json:"post"`
	Chain []Post `json:"chain,omitempty"`
}

// GetThreadResponse ...
// swagger:model
type GetThreadResponse struct {
	Ancestors      []Post        `json:"ancestors"`
	AncestorCursor string        `json:"ancestor_cursor,omitempty"`
	Focal          Post          `json:"focal"`
	Children       []ChildThread `json:"children"`
}

// ImportArticleRequest is the CMS webhook payload.
// swagger:model
type ImportArticleRequest struct {
	AuthorApID  string                `json:"author_ap_id"`
	Title       string                `json:"title"`
	Excerpt     string                `json:"excerpt"`
	Summary     string                `json:"summary"`
	Content     string                `json:"content"`
	URL         string                `json:"url"`
	ImageURL    string                `json:"image_url"`
	PublishedAt time.Time             `json:"published_at"`
	Attachments []entities.Attachment `json:"attachments"`
	ApID        string                `json:"ap_id"`
}

func toAPIPost(p *storage.Post) Post {
	return Post{
		ID:           p.ID,
		UUID:         p.UUID,
		ApID:         p.ApID,
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
		InReplyToID:  p.InReplyToID,
		ThreadRootID: p.ThreadRootID,
		LikeCount:    p.LikeCount,
		RepostCount:  p.RepostCount,
		ReplyCount:   p.ReplyCount,
	}
}

func toAPIPostFromEntity(p *entities.Post) Post {
	out := Post{
		ID:          p.ID,
		UUID:        p.UUID,
		ApID:        p.ApID,
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
		LikeCount:   p.LikeCount,
		RepostCount: p.RepostCount,
		ReplyCount:  p.ReplyCount,
	}
	if p.InReplyToID != 0 {
		id := p.InReplyToID
		out.InReplyToID = &id
	}
	if p.ThreadRootID != 0 {
		id := p.ThreadRootID
		out.ThreadRootID = &id
	}

	return out
}

func toAPIAccount(a *storage.Account) Account {
	return Account{
		ID:          a.ID,
		UUID:        a.UUID,
		Username:    a.Username,
		DisplayName: a.DisplayName,
		ApID:        a.ApID,
		AvatarURL:   a.AvatarURL,
	}
}

func toAPIThread(c *thread.ReplyChain) GetThreadResponse {
	out := GetThreadResponse{
		Ancestors:      make([]Post, len(c.Ancestors)),
		AncestorCursor: c.AncestorCursor,
		Focal:          toAPIPost(c.Focal),
		Children:       make([]ChildThread, len(c.Children)),
	}

	for i, a := range c.Ancestors {
		out.Ancestors[i] = toAPIPost(a)
	}
	for i, child := range c.Children {
		ct := ChildThread{
			Post:  toAPIPost(child.Post),
			Chain: make([]Post, len(child.Chain)),
		}
		for j, p := range child.Chain {
			ct.Chain[j] = toAPIPost(p)
		}
		out.Children[i] = ct
	}

	return out
}

func writeOK(w http.ResponseWriter, status int, v interface{}) {
	body, _ := json.Marshal(v)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeOK(w, status, Error{Error: message})
}

func writeInternalError(ctx context.Context, w http.ResponseWriter, message string) {
	log.WithField("request_id", middleware.GetReqID(ctx)).Error(message)
	writeError(w, http.StatusInternalServerError, "internal error")
}
