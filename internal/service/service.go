// Package service contains interface for service business-logic.
package service

import (
	"context"

	"github.com/fedipress/hermes/internal/entities"
)

//go:generate mockgen -destination=./mock/service.go -package=mock -source=service.go

// Service is the write-side API. Save is the sole transactional boundary:
// one call persists exactly the aggregate's pending diff and emits exactly
// the events implied by what actually changed. The call does not return
// until every synchronous subscriber has finished, so a successful Save
// gives the caller read-your-writes consistency against the feed projection.
type Service interface {
	Save(ctx context.Context, p *entities.Post) error

	GetPost(ctx context.Context, id int64) (*entities.Post, error)
	GetPostByApID(ctx context.Context, apID string) (*entities.Post, error)
}
