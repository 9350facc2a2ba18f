package feed

import (
	"context"

	"dice/internal/domain"
)

// NewsRepository loads and stores news items.
type NewsRepository interface {
	// List returns stored items in storage order
	List(ctx context.Context, filter domain.ListFilter) ([]NewsItem, error)

	// Upsert inserts items or replaces existing ones with the same ID
	Upsert(ctx context.Context, items []NewsItem) error
}

// AlertRepository loads alerts.
type AlertRepository interface {
	List(ctx context.Context, filter domain.ListFilter) ([]Alert, error)
}

// SignalRepository loads market signals.
type SignalRepository interface {
	List(ctx context.Context, filter domain.ListFilter) ([]Signal, error)
}

// DismissalStore remembers which high-priority news items a user has
// dismissed from their briefing.
type DismissalStore interface {
	// Dismissed returns the dismissed news IDs of userID
	Dismissed(ctx context.Context, userID string) ([]string, error)

	// Dismiss records newsID as dismissed; repeating it is a no-op
	Dismiss(ctx context.Context, userID, newsID string) error

	// Clear forgets every dismissal of userID
	Clear(ctx context.Context, userID string) error
}
