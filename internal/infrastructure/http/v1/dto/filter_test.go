package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dice/internal/core/apperror"
	"dice/internal/domain/feed"
	"dice/internal/domain/filter"
)

func TestNewsQuery_ToConfig(t *testing.T) {
	q := NewsQuery{
		FilterQuery: FilterQuery{
			From:     "2024-01-01",
			To:       "2024-01-31T12:00:00Z",
			Q:        "  rates ",
			SearchIn: []string{"title,source"},
			Sort:     "priority",
		},
		Priority:  []string{"high", "medium"},
		Sentiment: []string{"negative, positive"},
		Journal:   "Reuters",
		Impact:    []string{"high"},
	}

	cfg, err := q.ToConfig()
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), *cfg.DateRange.Start)
	assert.Equal(t, time.Date(2024, 1, 31, 12, 0, 0, 0, time.UTC), *cfg.DateRange.End)
	assert.Equal(t, "rates", cfg.SearchText)
	assert.Equal(t, []string{"title", "source"}, cfg.SearchIn)
	assert.Equal(t, filter.SortRank, cfg.SortKey)
	assert.Equal(t, []string{"high", "medium"}, cfg.Selected[feed.DimPriority])
	assert.Equal(t, []string{"negative", "positive"}, cfg.Selected[feed.DimSentiment])
	assert.Equal(t, "Reuters", cfg.Equals[feed.DimJournal])
	assert.Equal(t, []string{"high"}, cfg.Selected[feed.DimImpact])
}

func TestNewsQuery_Empty(t *testing.T) {
	cfg, err := NewsQuery{}.ToConfig()
	require.NoError(t, err)

	assert.True(t, cfg.DateRange.IsZero())
	assert.Equal(t, filter.DefaultSortKey, cfg.SortKey)
	assert.Empty(t, cfg.Selected[feed.DimPriority])
}

func TestFilterQuery_Errors(t *testing.T) {
	_, err := NewsQuery{FilterQuery: FilterQuery{From: "01/02/2024"}}.ToConfig()
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	_, err = AlertQuery{FilterQuery: FilterQuery{Sort: "size"}}.ToConfig()
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidFilter))
}

func TestPagination(t *testing.T) {
	p := PaginationRequest{}
	p.Defaults(20)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 0, p.Offset())

	p = PaginationRequest{Page: 3, PageSize: 10}
	assert.Equal(t, 20, p.Offset())

	p = PaginationRequest{Page: MaxPage, PageSize: MaxPageSize}
	assert.Equal(t, (MaxPage-1)*MaxPageSize, p.Offset())
	assert.Positive(t, p.Offset())

	assert.Equal(t, 3, NewPaginationResponse(1, 2, 5).TotalPages)
	assert.Equal(t, 0, NewPaginationResponse(1, 2, 0).TotalPages)
}
