package service

import (
	"context"

	"litreview/internal/models"
	"litreview/internal/observability"
	"litreview/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// FeedPageSize is the number of posts on one feed page.
const FeedPageSize = 6

// FeedService assembles merged ticket and review timelines.
type FeedService struct {
	feeds    repository.FeedRepository
	pageSize int
}

// NewFeedService returns a FeedService paging by FeedPageSize.
func NewFeedService(feeds repository.FeedRepository) *FeedService {
	return &FeedService{feeds: feeds, pageSize: FeedPageSize}
}

// GetHomeFeed returns page of the viewer's home feed: own posts, posts by
// followed users and reviews of the viewer's tickets, minus blocked authors.
func (s *FeedService) GetHomeFeed(ctx context.Context, viewerID uint, page int) (*models.PageOfPosts, error) {
	return s.assemble(ctx, repository.FeedScopeHome, viewerID, page)
}

// GetUserFeed returns page of the posts written by the viewer.
func (s *FeedService) GetUserFeed(ctx context.Context, viewerID uint, page int) (*models.PageOfPosts, error) {
	return s.assemble(ctx, repository.FeedScopeAuthor, viewerID, page)
}

func (s *FeedService) assemble(ctx context.Context, scope repository.FeedScope, viewerID uint, requested int) (*models.PageOfPosts, error) {
	defer observability.TrackFeed(scope.String())()
	span, ctx := observability.NewSpan(ctx, "feed."+scope.String(),
		attribute.Int("feed.viewer_id", int(viewerID)),
		attribute.Int("feed.requested_page", requested),
	)
	defer span.End()

	total, err := s.feeds.Count(ctx, scope, viewerID)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	p := Paginate(total, s.pageSize, requested)
	items, err := s.feeds.Page(ctx, scope, viewerID, s.pageSize, p.Offset)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	for _, it := range items {
		observability.FeedItemsServed.WithLabelValues(scope.String(), string(it.Kind)).Inc()
	}
	span.AddAttributes(
		attribute.Int("feed.page", p.Page),
		attribute.Int64("feed.total_items", total),
		attribute.Int("feed.items", len(items)),
	)

	return &models.PageOfPosts{
		Items:       items,
		Page:        p.Page,
		PageSize:    s.pageSize,
		TotalPages:  p.TotalPages,
		TotalItems:  total,
		HasNext:     p.Page < p.TotalPages,
		HasPrevious: p.Page > 1,
	}, nil
}

// Pagination is a resolved page window.
type Pagination struct {
	Page       int
	TotalPages int
	Offset     int
}

// Paginate resolves a 1-based requested page against total items. Pages below 1
// become 1, pages past the end become the last page, and an empty feed has one
// empty page.
func Paginate(total int64, pageSize, requested int) Pagination {
	if pageSize < 1 {
		pageSize = FeedPageSize
	}
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	if totalPages < 1 {
		totalPages = 1
	}

	page := requested
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}
	return Pagination{Page: page, TotalPages: totalPages, Offset: (page - 1) * pageSize}
}
