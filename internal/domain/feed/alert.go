package feed

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"dice/internal/domain/filter"
)

// Alert dimensions.
const (
	DimSeverity = "severity"
	DimStatus   = "status"
)

// Alert severities.
const (
	SeverityCritical = "Critical"
	SeverityHigh     = "High"
	SeverityMedium   = "Medium"
	SeverityLow      = "Low"
)

// Alert statuses.
const (
	StatusNew           = "New"
	StatusInvestigating = "Investigating"
	StatusResolved      = "Resolved"
)

// AlertSeverityRank ranks alert severities for SortRank.
var AlertSeverityRank = filter.RankMap{
	SeverityCritical: 4,
	SeverityHigh:     3,
	SeverityMedium:   2,
	SeverityLow:      1,
}

var errNoTimestamp = errors.New("timestamp is not set")

// Alert is a monitored KPI deviation raised for review.
type Alert struct {
	ID          string    `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Status      string    `db:"status" json:"status"`
	Severity    string    `db:"severity" json:"severity"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`

	// Impact and Confidence are in [0, 1].
	Impact     decimal.Decimal `db:"impact" json:"impact"`
	Confidence decimal.Decimal `db:"confidence" json:"confidence"`
}

// Score is impact × confidence, used to order the alert inbox.
func (a Alert) Score() decimal.Decimal {
	return a.Impact.Mul(a.Confidence)
}

// AlertSchema describes Alert to the filter engine.
func AlertSchema() filter.Schema[Alert] {
	return filter.Schema[Alert]{
		ID: func(a Alert) string { return a.ID },
		Timestamp: func(a Alert) (time.Time, error) {
			if a.CreatedAt.IsZero() {
				return time.Time{}, errNoTimestamp
			}
			return a.CreatedAt, nil
		},
		Dimensions: []filter.Dimension[Alert]{
			{Name: DimSeverity, Value: func(a Alert) string { return a.Severity }},
			{Name: DimStatus, Value: func(a Alert) string { return a.Status }},
		},
		SearchFields: []filter.Dimension[Alert]{
			{Name: FieldTitle, Value: func(a Alert) string { return a.Title }},
			{Name: FieldDescription, Value: func(a Alert) string { return a.Description }},
		},
		RankBy: DimSeverity,
		Rank:   AlertSeverityRank,
		Score:  Alert.Score,
	}
}
