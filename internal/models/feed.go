package models

import "time"

// PostKind tags the variant held by a FeedItem.
type PostKind string

const (
	// PostKindTicket marks a feed item holding a Ticket.
	PostKindTicket PostKind = "ticket"
	// PostKindReview marks a feed item holding a Review.
	PostKindReview PostKind = "review"
)

// FeedItem is one entry of a merged feed. Exactly one of Ticket or Review is set,
// matching Kind.
type FeedItem struct {
	Kind   PostKind `json:"kind"`
	Ticket *Ticket  `json:"ticket,omitempty"`
	Review *Review  `json:"review,omitempty"`
}

// TicketItem wraps a ticket as a feed item.
func TicketItem(t *Ticket) FeedItem {
	return FeedItem{Kind: PostKindTicket, Ticket: t}
}

// ReviewItem wraps a review as a feed item.
func ReviewItem(r *Review) FeedItem {
	return FeedItem{Kind: PostKindReview, Review: r}
}

// ID returns the identifier of the wrapped entity.
func (i FeedItem) ID() uint {
	switch i.Kind {
	case PostKindTicket:
		return i.Ticket.ID
	case PostKindReview:
		return i.Review.ID
	}
	return 0
}

// CreatedAt returns the creation time of the wrapped entity.
func (i FeedItem) CreatedAt() time.Time {
	switch i.Kind {
	case PostKindTicket:
		return i.Ticket.CreatedAt
	case PostKindReview:
		return i.Review.CreatedAt
	}
	return time.Time{}
}

// AuthorID returns the id of the user who wrote the wrapped entity.
func (i FeedItem) AuthorID() uint {
	switch i.Kind {
	case PostKindTicket:
		return i.Ticket.UserID
	case PostKindReview:
		return i.Review.UserID
	}
	return 0
}

// Author returns the preloaded author of the wrapped entity.
func (i FeedItem) Author() User {
	switch i.Kind {
	case PostKindTicket:
		return i.Ticket.User
	case PostKindReview:
		return i.Review.User
	}
	return User{}
}

// PageOfPosts is one page of a merged feed with its paging metadata.
type PageOfPosts struct {
	Items       []FeedItem `json:"items"`
	Page        int        `json:"page"`
	PageSize    int        `json:"page_size"`
	TotalPages  int        `json:"total_pages"`
	TotalItems  int64      `json:"total_items"`
	HasNext     bool       `json:"has_next"`
	HasPrevious bool       `json:"has_previous"`
}
