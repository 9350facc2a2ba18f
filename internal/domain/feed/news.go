// Package feed provides the filterable record kinds of the dashboard (news,
// alerts, market signals) and the service that searches them.
package feed

import (
	"context"
	"time"

	"dice/internal/core/apperror"
	"dice/internal/domain/filter"
)

// News dimension and search field names.
const (
	DimPriority  = "priority"
	DimSentiment = "sentiment"
	DimJournal   = "journal"
	DimImpact    = "impact"

	FieldTitle       = "title"
	FieldSource      = "source"
	FieldDescription = "description"
)

// News priorities.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// News sentiments.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// NewsPriorityRank ranks news priorities for SortRank.
var NewsPriorityRank = filter.RankMap{
	PriorityHigh:   3,
	PriorityMedium: 2,
	PriorityLow:    1,
}

// NewsItem is an article surfaced in the news feed.
type NewsItem struct {
	ID      string `db:"id" json:"id"`
	Title   string `db:"title" json:"title"`
	Source  string `db:"source" json:"source"`
	Journal string `db:"journal" json:"journal"`

	// Date is kept as delivered by the source; it is parsed on use so that a
	// malformed value is reported instead of rejected at ingestion.
	Date string `db:"published_on" json:"date"`

	Sentiment      string `db:"sentiment" json:"sentiment"`
	Description    string `db:"description" json:"description"`
	URL            string `db:"url" json:"url"`
	Priority       string `db:"priority" json:"priority"`
	BusinessImpact string `db:"business_impact" json:"businessImpact"`

	// Impact is the expected business impact level, one of the priority levels.
	Impact string `db:"impact" json:"impact"`
}

// Validate checks the fields required to store and display an item.
func (n *NewsItem) Validate(ctx context.Context) error {
	if n.ID == "" {
		return apperror.NewValidation("id is required").
			WithDetail("field", "id")
	}
	if n.Title == "" {
		return apperror.NewValidation("title is required").
			WithDetail("field", "title").
			WithDetail("id", n.ID)
	}
	return nil
}

// PublishedAt parses Date.
func (n NewsItem) PublishedAt() (time.Time, error) {
	return filter.ParseDate(n.Date)
}

// NewsSchema describes NewsItem to the filter engine.
func NewsSchema() filter.Schema[NewsItem] {
	return filter.Schema[NewsItem]{
		ID:        func(n NewsItem) string { return n.ID },
		Timestamp: NewsItem.PublishedAt,
		Dimensions: []filter.Dimension[NewsItem]{
			{Name: DimPriority, Value: func(n NewsItem) string { return n.Priority }},
			{Name: DimSentiment, Value: func(n NewsItem) string { return n.Sentiment }},
			{Name: DimJournal, Value: func(n NewsItem) string { return n.Journal }},
			{Name: DimImpact, Value: func(n NewsItem) string { return n.Impact }},
		},
		SearchFields: []filter.Dimension[NewsItem]{
			{Name: FieldTitle, Value: func(n NewsItem) string { return n.Title }},
			{Name: FieldSource, Value: func(n NewsItem) string { return n.Source }},
			{Name: DimJournal, Value: func(n NewsItem) string { return n.Journal }},
			{Name: FieldDescription, Value: func(n NewsItem) string { return n.Description }},
		},
		RankBy: DimPriority,
		Rank:   NewsPriorityRank,
	}
}
