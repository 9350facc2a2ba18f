package feed

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dice/internal/core/apperror"
	"dice/internal/domain/filter"
)

func TestSchemasAreValid(t *testing.T) {
	_, err := filter.NewEngine(NewsSchema())
	require.NoError(t, err)
	_, err = filter.NewEngine(AlertSchema())
	require.NoError(t, err)
	_, err = filter.NewEngine(SignalSchema())
	require.NoError(t, err)
}

func TestNewsItem_PublishedAt(t *testing.T) {
	n := NewsItem{Date: "2024-01-15"}
	ts, err := n.PublishedAt()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), ts)

	n.Date = "yesterday"
	_, err = n.PublishedAt()
	assert.Error(t, err)
}

func TestNewsItem_Validate(t *testing.T) {
	ctx := context.Background()

	assert.NoError(t, (&NewsItem{ID: "1", Title: "t"}).Validate(ctx))

	err := (&NewsItem{Title: "t"}).Validate(ctx)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	err = (&NewsItem{ID: "1"}).Validate(ctx)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestNewsSchema_JournalFilter(t *testing.T) {
	engine := filter.MustEngine(NewsSchema())

	res, err := engine.Apply(sampleNews(), filter.Config{}.Equal(DimJournal, "Financial Times"))
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "5"}, newsIDs(res.Items))

	res, err = engine.Apply(sampleNews(), filter.Config{}.Equal(DimJournal, "financial times"))
	require.NoError(t, err)
	assert.Empty(t, res.Items)
}

func TestNewsSchema_ImpactFilter(t *testing.T) {
	engine := filter.MustEngine(NewsSchema())

	res, err := engine.Apply(sampleNews(), filter.Config{}.Select(DimImpact, PriorityHigh))
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, newsIDs(res.Items))

	res, err = engine.Apply(sampleNews(), filter.Config{}.Select(DimImpact, PriorityHigh, PriorityLow).Select(DimSentiment, SentimentNegative))
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "4"}, newsIDs(res.Items))
}

func TestNewsSchema_Expression(t *testing.T) {
	engine := filter.MustEngine(NewsSchema())

	res, err := engine.Apply(sampleNews(), filter.Config{
		Expression: `record.priority == "high" && record.source == "Reuters"`,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, newsIDs(res.Items))
}

func TestAlert_Score(t *testing.T) {
	a := Alert{Impact: decimal.RequireFromString("0.8"), Confidence: decimal.RequireFromString("0.5")}
	assert.True(t, a.Score().Equal(decimal.RequireFromString("0.4")))
}

func TestAlertSchema_MissingTimestamp(t *testing.T) {
	engine := filter.MustEngine(AlertSchema())

	res, err := engine.Apply([]Alert{
		{ID: "a1", Severity: SeverityLow, CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "a2", Severity: SeverityHigh},
	}, filter.Config{})
	require.NoError(t, err)

	assert.Equal(t, "a2", res.Items[1].ID)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, "a2", res.Diagnostics[0].RecordID)
}
