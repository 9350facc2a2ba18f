package feed

import (
	"time"

	"dice/internal/domain/filter"
)

// Signal dimensions and search fields.
const (
	DimRelevance  = "relevance"
	DimSource     = "source"
	FieldHeadline = "headline"
)

// Signal relevance levels.
const (
	RelevanceHigh   = "High"
	RelevanceMedium = "Medium"
	RelevanceLow    = "Low"
)

// SignalRelevanceRank ranks signal relevance for SortRank.
var SignalRelevanceRank = filter.RankMap{
	RelevanceHigh:   3,
	RelevanceMedium: 2,
	RelevanceLow:    1,
}

// Signal is an external market event picked up by a watchlist.
type Signal struct {
	ID        string    `db:"id" json:"id"`
	Headline  string    `db:"headline" json:"headline"`
	Relevance string    `db:"relevance" json:"relevance"`
	Source    string    `db:"source" json:"source"`
	Timestamp time.Time `db:"observed_at" json:"timestamp"`
}

// SignalSchema describes Signal to the filter engine.
func SignalSchema() filter.Schema[Signal] {
	return filter.Schema[Signal]{
		ID: func(s Signal) string { return s.ID },
		Timestamp: func(s Signal) (time.Time, error) {
			if s.Timestamp.IsZero() {
				return time.Time{}, errNoTimestamp
			}
			return s.Timestamp, nil
		},
		Dimensions: []filter.Dimension[Signal]{
			{Name: DimRelevance, Value: func(s Signal) string { return s.Relevance }},
			{Name: DimSource, Value: func(s Signal) string { return s.Source }},
		},
		SearchFields: []filter.Dimension[Signal]{
			{Name: FieldHeadline, Value: func(s Signal) string { return s.Headline }},
			{Name: FieldSource, Value: func(s Signal) string { return s.Source }},
		},
		RankBy: DimRelevance,
		Rank:   SignalRelevanceRank,
	}
}
