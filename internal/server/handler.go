package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/fedipress/hermes/internal/entities"
	"github.com/fedipress/hermes/internal/storage"
	"github.com/fedipress/hermes/internal/thread"
)

var errInvalidRequest = errors.New("invalid request")

func (s server) getFeed(w http.ResponseWriter, r *http.Request) {
	// swagger:operation GET /feed/{account} Feed ListFeed
	//
	// Return the viewer's materialized feed, newest first.
	//
	// ---
	// produces:
	// - application/json
	// parameters:
	// - name: account
	//   in: path
	//   required: true
	//   type: integer
	// - name: limit
	//   description: limits count of returned items
	//   in: query
	//   required: false
	//   default: 20
	//   maximum: 100
	// - name: after
	//   description: sets not-including bound for list by feed row id
	//   in: query
	//   required: false
	// responses:
	//   '200':
	//     description: Feed
	//     schema:
	//       "$ref": "#/definitions/ListFeedResponse"
	//   '400':
	//     description: bad request
	//     schema:
	//       "$ref": "#/definitions/Error"
	//   '500':
	//     description: internal server error
	//     schema:
	//       "$ref": "#/definitions/Error"

	account, err := strconv.ParseInt(chi.URLParam(r, "account"), 10, 64)
	if err != nil || account <= 0 {
		writeError(w, http.StatusBadRequest, "invalid account")
		return
	}

	params, err := extractListFeedParamsFromQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	params.OwnerAccountID = account

	entries, err := s.s.ListFeed(r.Context(), params)
	if err != nil {
		writeInternalError(r.Context(), w, fmt.Sprintf("failed to list feed: %s", err.Error()))
		return
	}

	writeOK(w, http.StatusOK, newListFeedResponse(entries, params.Limit))
}

func (s server) getThread(w http.ResponseWriter, r *http.Request) {
	// swagger:operation GET /thread Thread GetThread
	//
	// Return the bounded reply chain around the post with the given ap id.
	//
	// ---
	// produces:
	// - application/json
	// parameters:
	// - name: apId
	//   in: query
	//   required: true
	//   type: string
	// - name: viewer
	//   description: viewer account id, gates direct posts
	//   in: query
	//   required: false
	//   type: integer
	// - name: cursor
	//   description: ancestor cursor from a previous page
	//   in: query
	//   required: false
	//   type: string
	// responses:
	//   '200':
	//     description: Thread
	//     schema:
	//       "$ref": "#/definitions/GetThreadResponse"
	//   '404':
	//     description: post not found
	//     schema:
	//       "$ref": "#/definitions/Error"
	//   '400':
	//     description: bad request
	//     schema:
	//       "$ref": "#/definitions/Error"
	//   '500':
	//     description: internal server error
	//     schema:
	//       "$ref": "#/definitions/Error"

	apID := r.URL.Query().Get("apId")
	if apID == "" {
		writeError(w, http.StatusBadRequest, "apId is required")
		return
	}

	var viewer int64
	if v := r.URL.Query().Get("viewer"); v != "" {
		var err error
		if viewer, err = strconv.ParseInt(v, 10, 64); err != nil {
			writeError(w, http.StatusBadRequest, "invalid viewer")
			return
		}
	}

	chain, err := s.t.GetReplyChain(r.Context(), viewer, apID, r.URL.Query().Get("cursor"))
	if err != nil {
		if errors.Is(err, thread.ErrNotFound) {
			writeError(w, http.StatusNotFound, "post not found")
			return
		}
		writeInternalError(r.Context(), w, fmt.Sprintf("failed to get thread: %s", err.Error()))
		return
	}

	writeOK(w, http.StatusOK, toAPIThread(chain))
}

func (s server) getPost(w http.ResponseWriter, r *http.Request) {
	// swagger:operation GET /posts/{author}/{uuid} Posts GetPost
	//
	// Get post by author username and uuid.
	//
	// ---
	// produces:
	// - application/json
	// parameters:
	// - name: author
	//   in: path
	//   required: true
	//   type: string
	// - name: uuid
	//   in: path
	//   required: true
	//   type: string
	// responses:
	//   '200':
	//     description: Post
	//     schema:
	//       "$ref": "#/definitions/GetPostResponse"
	//   '404':
	//     description: post not found
	//     schema:
	//       "$ref": "#/definitions/Error"
	//   '400':
	//     description: bad request
	//     schema:
	//       "$ref": "#/definitions/Error"
	//   '500':
	//     description: internal server error
	//     schema:
	//       "$ref": "#/definitions/Error"

	author, postUUID := chi.URLParam(r, "author"), chi.URLParam(r, "uuid")

	if author == "" || postUUID == "" {
		writeError(w, http.StatusBadRequest, "invalid author or uuid")
		return
	}

	post, err := s.s.GetPostByUUID(r.Context(), postUUID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "post not found")
			return
		}
		writeInternalError(r.Context(), w, fmt.Sprintf("failed to get post: %s", err.Error()))
		return
	}

	account, err := s.s.GetAccount(r.Context(), post.AuthorID)
	if err != nil {
		writeInternalError(r.Context(), w, fmt.Sprintf("failed to get author: %s", err.Error()))
		return
	}

	// the path names the author; a uuid under somebody else's name is a miss
	if account.Username != author {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}

	writeOK(w, http.StatusOK, GetPostResponse{
		Post:   toAPIPost(post),
		Author: toAPIAccount(account),
	})
}

func (s server) importArticle(w http.ResponseWriter, r *http.Request) {
	// swagger:operation POST /import Import ImportArticle
	//
	// CMS webhook: create or refresh an article from the publishing system.
	//
	// ---
	// consumes:
	// - application/json
	// produces:
	// - application/json
	// parameters:
	// - name: request
	//   in: body
	//   required: true
	//   schema:
	//     "$ref": "#/definitions/ImportArticleRequest"
	// responses:
	//   '200':
	//     description: Post
	//     schema:
	//       "$ref": "#/definitions/Post"
	//   '404':
	//     description: author not found
	//     schema:
	//       "$ref": "#/definitions/Error"
	//   '400':
	//     description: bad request
	//     schema:
	//       "$ref": "#/definitions/Error"
	//   '500':
	//     description: internal server error
	//     schema:
	//       "$ref": "#/definitions/Error"

	var req ImportArticleRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("%s: failed to decode body", errInvalidRequest))
		return
	}

	if req.AuthorApID == "" {
		writeError(w, http.StatusBadRequest, "author_ap_id is required")
		return
	}
	if req.ApID != "" {
		if _, err := url.ParseRequestURI(req.ApID); err != nil {
			writeError(w, http.StatusBadRequest, "invalid ap_id")
			return
		}
	}

	account, err := s.s.GetAccountByApID(r.Context(), req.AuthorApID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "author not found")
			return
		}
		writeInternalError(r.Context(), w, fmt.Sprintf("failed to get author: %s", err.Error()))
		return
	}

	post, err := s.importedPost(r, &req, account)
	if err != nil {
		writeInternalError(r.Context(), w, fmt.Sprintf("failed to import article: %s", err.Error()))
		return
	}

	if err := s.svc.Save(r.Context(), post); err != nil {
		writeInternalError(r.Context(), w, fmt.Sprintf("failed to save article: %s", err.Error()))
		return
	}

	writeOK(w, http.StatusOK, toAPIPostFromEntity(post))
}

// importedPost resolves a webhook payload to an aggregate: a redelivery of a
// known ap id refreshes the existing article, anything else becomes a new one.
func (s server) importedPost(r *http.Request, req *ImportArticleRequest, account *storage.Account) (*entities.Post, error) {
	if req.ApID != "" {
		existing, err := s.svc.GetPostByApID(r.Context(), req.ApID)
		switch {
		case err == nil:
			existing.Update(entities.UpdateFields{
				Title:    req.Title,
				Excerpt:  req.Excerpt,
				Summary:  req.Summary,
				Content:  req.Content,
				URL:      req.URL,
				ImageURL: req.ImageURL,
			})
			return existing, nil
		case !errors.Is(err, storage.ErrNotFound):
			return nil, err
		}
	}

	return entities.NewImportedArticle(entities.ImportedArticleParams{
		Author: &entities.Account{
			ID:         account.ID,
			UUID:       account.UUID,
			Username:   account.Username,
			IsInternal: account.IsInternal,
			ApID:       account.ApID,
		},
		Title:       req.Title,
		Excerpt:     req.Excerpt,
		Summary:     req.Summary,
		Content:     req.Content,
		URL:         req.URL,
		ImageURL:    req.ImageURL,
		PublishedAt: req.PublishedAt,
		Attachments: req.Attachments,
		ApID:        req.ApID,
	})
}

func extractListFeedParamsFromQuery(q url.Values) (*storage.ListFeedParams, error) {
	out := storage.ListFeedParams{
		Limit: defaultLimit,
	}

	if s := q.Get("limit"); s != "" {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to parse limit", errInvalidRequest)
		}

		if v > maxLimit {
			return nil, fmt.Errorf("%w: limit is too big", errInvalidRequest)
		}

		out.Limit = uint16(v)
	}

	if s := q.Get("after"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to parse after", errInvalidRequest)
		}

		out.After = &v
	}

	return &out, nil
}

func newListFeedResponse(entries []*storage.FeedEntry, limit uint16) ListFeedResponse {
	out := ListFeedResponse{
		Items: make([]FeedItem, len(entries)),
	}

	for i, e := range entries {
		out.Items[i] = FeedItem{
			ID:            e.ID,
			PostID:        e.PostID,
			AuthorID:      e.AuthorID,
			RepostedByID:  e.RepostedByID,
			PublishedDate: e.PublishedDate,
		}
	}

	if len(entries) == int(limit) && limit > 0 {
		next := entries[len(entries)-1].ID
		out.Next = &next
	}

	return out
}
