package repository

import (
	"context"
	"fmt"

	"litreview/internal/models"
	"litreview/internal/observability"

	"gorm.io/gorm"
)

// FeedScope selects which visibility predicate a feed query applies.
type FeedScope int

const (
	// FeedScopeHome shows the viewer's own posts, posts by users they follow,
	// and reviews on the viewer's tickets, minus anything by a blocked user.
	FeedScopeHome FeedScope = iota
	// FeedScopeAuthor shows only posts written by the viewer.
	FeedScopeAuthor
)

func (s FeedScope) String() string {
	if s == FeedScopeAuthor {
		return "author"
	}
	return "home"
}

// Users the viewer blocked (edges into the viewer) and users who blocked the viewer
// (edges out of the viewer).
const blockedCombinedSQL = `SELECT follower_id FROM follow_edges WHERE followed_id = @viewer AND blocked = @blocked
UNION
SELECT followed_id FROM follow_edges WHERE follower_id = @viewer AND blocked = @blocked`

const homeTicketsSQL = `SELECT 'ticket' AS kind, t.id AS id, t.created_at AS created_at
FROM tickets t
WHERE (t.user_id = @viewer
	OR t.user_id IN (SELECT followed_id FROM follow_edges WHERE follower_id = @viewer))
	AND t.user_id NOT IN (` + blockedCombinedSQL + `)`

const homeReviewsSQL = `SELECT 'review' AS kind, r.id AS id, r.created_at AS created_at
FROM reviews r
WHERE (r.user_id = @viewer
	OR r.user_id IN (SELECT followed_id FROM follow_edges WHERE follower_id = @viewer)
	OR r.ticket_id IN (SELECT id FROM tickets WHERE user_id = @viewer))
	AND r.user_id NOT IN (` + blockedCombinedSQL + `)`

const authorTicketsSQL = `SELECT 'ticket' AS kind, t.id AS id, t.created_at AS created_at
FROM tickets t
WHERE t.user_id = @viewer`

const authorReviewsSQL = `SELECT 'review' AS kind, r.id AS id, r.created_at AS created_at
FROM reviews r
WHERE r.user_id = @viewer`

func feedUnion(scope FeedScope) string {
	if scope == FeedScopeAuthor {
		return authorTicketsSQL + "\nUNION ALL\n" + authorReviewsSQL
	}
	return homeTicketsSQL + "\nUNION ALL\n" + homeReviewsSQL
}

// FeedRepository runs the merged ticket/review timeline queries.
type FeedRepository interface {
	Count(ctx context.Context, scope FeedScope, viewerID uint) (int64, error)
	// Page returns items ordered newest first. Ties on created_at put reviews
	// before tickets, then higher ids first.
	Page(ctx context.Context, scope FeedScope, viewerID uint, limit, offset int) ([]models.FeedItem, error)
}

type feedRepository struct {
	db      *gorm.DB
	tickets TicketRepository
}

// NewFeedRepository returns a new FeedRepository implementation.
func NewFeedRepository(db *gorm.DB) FeedRepository {
	return &feedRepository{db: db, tickets: NewTicketRepository(db)}
}

func feedArgs(viewerID uint) map[string]interface{} {
	return map[string]interface{}{"viewer": viewerID, "blocked": true}
}

func (r *feedRepository) Count(ctx context.Context, scope FeedScope, viewerID uint) (int64, error) {
	defer observability.TrackQuery("count", "feed_"+scope.String())()

	var total int64
	query := "SELECT COUNT(*) FROM (" + feedUnion(scope) + ") AS feed"
	if err := readDB(r.db).WithContext(ctx).Raw(query, feedArgs(viewerID)).Scan(&total).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return total, nil
}

type feedRow struct {
	Kind string
	ID   uint
}

func (r *feedRepository) Page(ctx context.Context, scope FeedScope, viewerID uint, limit, offset int) ([]models.FeedItem, error) {
	defer observability.TrackQuery("page", "feed_"+scope.String())()

	args := feedArgs(viewerID)
	args["limit"] = limit
	args["offset"] = offset

	query := "SELECT kind, id FROM (" + feedUnion(scope) + ") AS feed\n" +
		"ORDER BY created_at DESC, kind ASC, id DESC\nLIMIT @limit OFFSET @offset"

	db := readDB(r.db).WithContext(ctx)

	var rows []feedRow
	if err := db.Raw(query, args).Scan(&rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if len(rows) == 0 {
		return []models.FeedItem{}, nil
	}

	var ticketIDs, reviewIDs []uint
	for _, row := range rows {
		switch models.PostKind(row.Kind) {
		case models.PostKindTicket:
			ticketIDs = append(ticketIDs, row.ID)
		case models.PostKindReview:
			reviewIDs = append(reviewIDs, row.ID)
		}
	}

	tickets := make(map[uint]*models.Ticket, len(ticketIDs))
	if len(ticketIDs) > 0 {
		var found []*models.Ticket
		if err := db.Preload("User").Preload("Photo").Where("id IN ?", ticketIDs).Find(&found).Error; err != nil {
			return nil, models.NewInternalError(err)
		}
		for _, t := range found {
			tickets[t.ID] = t
		}
	}

	reviews := make(map[uint]*models.Review, len(reviewIDs))
	if len(reviewIDs) > 0 {
		var found []*models.Review
		if err := db.Preload("User").Preload("Ticket.User").Preload("Ticket.Photo").
			Where("id IN ?", reviewIDs).Find(&found).Error; err != nil {
			return nil, models.NewInternalError(err)
		}
		for _, rv := range found {
			reviews[rv.ID] = rv
		}
	}

	items := make([]models.FeedItem, 0, len(rows))
	annotate := make([]*models.Ticket, 0, len(rows))
	for _, row := range rows {
		switch models.PostKind(row.Kind) {
		case models.PostKindTicket:
			t, ok := tickets[row.ID]
			if !ok {
				// deleted between the page query and hydration
				continue
			}
			items = append(items, models.TicketItem(t))
			annotate = append(annotate, t)
		case models.PostKindReview:
			rv, ok := reviews[row.ID]
			if !ok {
				continue
			}
			items = append(items, models.ReviewItem(rv))
			if rv.Ticket != nil {
				annotate = append(annotate, rv.Ticket)
			}
		default:
			return nil, models.NewInternalError(fmt.Errorf("unknown feed kind %q", row.Kind))
		}
	}

	if err := r.tickets.Annotate(ctx, viewerID, annotate...); err != nil {
		return nil, err
	}
	return items, nil
}
