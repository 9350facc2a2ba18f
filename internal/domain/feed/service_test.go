package feed

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dice/internal/core/apperror"
	"dice/internal/domain"
	"dice/internal/domain/filter"
	"dice/pkg/logger"
)

type fakeNewsRepo struct {
	mu       sync.Mutex
	items    []NewsItem
	lists    int
	listErr  error
	upserted []NewsItem
}

func (r *fakeNewsRepo) List(ctx context.Context, f domain.ListFilter) ([]NewsItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lists++
	if r.listErr != nil {
		return nil, r.listErr
	}
	return slices.Clone(r.items), nil
}

func (r *fakeNewsRepo) Upsert(ctx context.Context, items []NewsItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserted = append(r.upserted, items...)
	for _, it := range items {
		i := slices.IndexFunc(r.items, func(n NewsItem) bool { return n.ID == it.ID })
		if i >= 0 {
			r.items[i] = it
			continue
		}
		r.items = append(r.items, it)
	}
	return nil
}

type fakeAlertRepo struct{ items []Alert }

func (r *fakeAlertRepo) List(ctx context.Context, f domain.ListFilter) ([]Alert, error) {
	return slices.Clone(r.items), nil
}

type fakeSignalRepo struct{ items []Signal }

func (r *fakeSignalRepo) List(ctx context.Context, f domain.ListFilter) ([]Signal, error) {
	return slices.Clone(r.items), nil
}

type memoryDismissals struct {
	mu    sync.Mutex
	byUID map[string][]string
}

func newMemoryDismissals() *memoryDismissals {
	return &memoryDismissals{byUID: map[string][]string{}}
}

func (m *memoryDismissals) Dismissed(ctx context.Context, userID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.byUID[userID]), nil
}

func (m *memoryDismissals) Dismiss(ctx context.Context, userID, newsID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !slices.Contains(m.byUID[userID], newsID) {
		m.byUID[userID] = append(m.byUID[userID], newsID)
	}
	return nil
}

func (m *memoryDismissals) Clear(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byUID, userID)
	return nil
}

func sampleNews() []NewsItem {
	return []NewsItem{
		{ID: "1", Title: "Rates hold steady", Source: "Reuters", Journal: "Financial Times", Date: "2024-01-15", Sentiment: SentimentNeutral, Priority: PriorityHigh, Impact: PriorityHigh},
		{ID: "2", Title: "Supplier recall", Source: "Bloomberg", Journal: "Bloomberg", Date: "2024-01-14", Sentiment: SentimentNegative, Priority: PriorityMedium, Impact: PriorityHigh},
		{ID: "3", Title: "Climate policy update", Source: "AP", Journal: "Reuters", Date: "2024-01-13", Sentiment: SentimentPositive, Priority: PriorityHigh},
		{ID: "4", Title: "Quarterly outlook", Source: "WSJ", Journal: "Wall Street Journal", Date: "2024-01-12", Sentiment: SentimentNegative, Priority: PriorityLow, Impact: PriorityLow},
		{ID: "5", Title: "New market entrant", Source: "Reuters", Journal: "Financial Times", Date: "2024-01-11", Sentiment: SentimentPositive, Priority: PriorityMedium},
	}
}

func newsIDs(items []NewsItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func newTestService(t *testing.T, news *fakeNewsRepo, dismissals DismissalStore) *Service {
	t.Helper()
	return NewService(ServiceConfig{
		News: news,
		Alerts: &fakeAlertRepo{items: []Alert{
			{ID: "a1", Title: "Churn spike", Severity: SeverityMedium, Status: StatusNew,
				CreatedAt: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
				Impact:    decimal.RequireFromString("0.9"), Confidence: decimal.RequireFromString("0.9")},
			{ID: "a2", Title: "Revenue dip", Severity: SeverityCritical, Status: StatusInvestigating,
				CreatedAt: time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC),
				Impact:    decimal.RequireFromString("0.5"), Confidence: decimal.RequireFromString("0.5")},
		}},
		Signals: &fakeSignalRepo{items: []Signal{
			{ID: "s1", Headline: "Competitor price cut", Relevance: RelevanceLow, Source: "Web", Timestamp: time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC)},
			{ID: "s2", Headline: "Port strike", Relevance: RelevanceHigh, Source: "Wire", Timestamp: time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)},
		}},
		Dismissals:      dismissals,
		DefaultPageSize: 10,
		Logger:          logger.NewNop(),
	})
}

func TestSearchNews_FiltersAndSorts(t *testing.T) {
	svc := newTestService(t, &fakeNewsRepo{items: sampleNews()}, nil)

	res, err := svc.SearchNews(context.Background(), SearchRequest{
		Filter: filter.Config{SortKey: filter.SortRank}.Select(DimSentiment, SentimentNegative, SentimentPositive),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"3", "2", "5", "4"}, newsIDs(res.Items))
	assert.Equal(t, int64(4), res.TotalCount)
	assert.Empty(t, res.Diagnostics)
}

func TestSearchNews_Pagination(t *testing.T) {
	svc := newTestService(t, &fakeNewsRepo{items: sampleNews()}, nil)

	res, err := svc.SearchNews(context.Background(), SearchRequest{Limit: 2, Offset: 2})
	require.NoError(t, err)

	assert.Equal(t, []string{"3", "4"}, newsIDs(res.Items))
	assert.Equal(t, int64(5), res.TotalCount)
	assert.Equal(t, 2, res.Limit)
	assert.Equal(t, 2, res.Offset)
}

func TestSearchNews_DefaultAndMaxPageSize(t *testing.T) {
	svc := newTestService(t, &fakeNewsRepo{items: sampleNews()}, nil)

	res, err := svc.SearchNews(context.Background(), SearchRequest{})
	require.NoError(t, err)
	assert.Equal(t, 10, res.Limit)

	res, err = svc.SearchNews(context.Background(), SearchRequest{Limit: 100000, Offset: -3})
	require.NoError(t, err)
	assert.Equal(t, maxPageSize, res.Limit)
	assert.Zero(t, res.Offset)
}

func TestSearchNews_InvalidFilter(t *testing.T) {
	repo := &fakeNewsRepo{items: sampleNews()}
	svc := newTestService(t, repo, nil)

	_, err := svc.SearchNews(context.Background(), SearchRequest{
		Filter: filter.Config{SortKey: "alphabetical"},
	})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidFilter))
	assert.ErrorIs(t, err, filter.ErrInvalidConfig)
	assert.Zero(t, repo.lists, "invalid filters are rejected before loading")
}

func TestSearchNews_ReportsMalformedDates(t *testing.T) {
	items := append(sampleNews(), NewsItem{ID: "bad", Title: "Broken date", Date: "15/01/2024", Priority: PriorityHigh})
	svc := newTestService(t, &fakeNewsRepo{items: items}, nil)

	res, err := svc.SearchNews(context.Background(), SearchRequest{})
	require.NoError(t, err)

	assert.Equal(t, "bad", res.Items[len(res.Items)-1].ID)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, "bad", res.Diagnostics[0].RecordID)
	assert.ErrorIs(t, res.Diagnostics[0], filter.ErrMalformedTimestamp)
}

func TestSearchNews_LoadError(t *testing.T) {
	boom := errors.New("connection refused")
	svc := newTestService(t, &fakeNewsRepo{listErr: boom}, nil)

	_, err := svc.SearchNews(context.Background(), SearchRequest{})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestSearchNews_ReusesSnapshotAndMemo(t *testing.T) {
	repo := &fakeNewsRepo{items: sampleNews()}
	svc := newTestService(t, repo, nil)
	req := SearchRequest{Filter: filter.Config{SearchText: "reuters"}}

	first, err := svc.SearchNews(context.Background(), req)
	require.NoError(t, err)
	second, err := svc.SearchNews(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.lists)
	hits, misses := svc.newsMemo.Stats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(1), misses)
}

func TestSearchNews_SnapshotExpires(t *testing.T) {
	repo := &fakeNewsRepo{items: sampleNews()}
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	svc := NewService(ServiceConfig{
		News:        repo,
		SnapshotTTL: time.Minute,
		Logger:      logger.NewNop(),
		Now:         func() time.Time { return now },
	})

	_, err := svc.SearchNews(context.Background(), SearchRequest{})
	require.NoError(t, err)
	now = now.Add(30 * time.Second)
	_, err = svc.SearchNews(context.Background(), SearchRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.lists)

	now = now.Add(time.Minute)
	_, err = svc.SearchNews(context.Background(), SearchRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, repo.lists)
}

func TestSearchAlerts_ScoreAndSeverity(t *testing.T) {
	svc := newTestService(t, &fakeNewsRepo{}, nil)

	res, err := svc.SearchAlerts(context.Background(), SearchRequest{Filter: filter.Config{SortKey: filter.SortScore}})
	require.NoError(t, err)
	assert.Equal(t, "a1", res.Items[0].ID)

	res, err = svc.SearchAlerts(context.Background(), SearchRequest{Filter: filter.Config{SortKey: filter.SortRank}})
	require.NoError(t, err)
	assert.Equal(t, "a2", res.Items[0].ID)

	res, err = svc.SearchAlerts(context.Background(), SearchRequest{
		Filter: filter.Config{}.Select(DimStatus, StatusNew),
	})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "a1", res.Items[0].ID)
}

func TestSearchSignals(t *testing.T) {
	svc := newTestService(t, &fakeNewsRepo{}, nil)

	res, err := svc.SearchSignals(context.Background(), SearchRequest{Filter: filter.Config{SortKey: filter.SortRank}})
	require.NoError(t, err)
	assert.Equal(t, "s2", res.Items[0].ID)

	res, err = svc.SearchSignals(context.Background(), SearchRequest{Filter: filter.Config{SearchText: "strike"}})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "s2", res.Items[0].ID)

	_, err = svc.SearchSignals(context.Background(), SearchRequest{Filter: filter.Config{SortKey: filter.SortScore}})
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidFilter))
}

func TestJournals(t *testing.T) {
	svc := newTestService(t, &fakeNewsRepo{items: sampleNews()}, nil)

	journals, err := svc.Journals(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Bloomberg", "Financial Times", "Reuters", "Wall Street Journal"}, journals)
}

func TestHighPriorityNews_Dismissal(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, &fakeNewsRepo{items: sampleNews()}, newMemoryDismissals())

	high, err := svc.HighPriorityNews(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "3"}, newsIDs(high))

	require.NoError(t, svc.DismissNews(ctx, "u1", "1"))
	require.NoError(t, svc.DismissNews(ctx, "u1", "1"))

	high, err = svc.HighPriorityNews(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"3"}, newsIDs(high))

	count, err := svc.DismissedCount(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// Other users are unaffected.
	high, err = svc.HighPriorityNews(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "3"}, newsIDs(high))

	require.NoError(t, svc.ClearDismissed(ctx, "u1"))
	high, err = svc.HighPriorityNews(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "3"}, newsIDs(high))
}

func TestDismissNews_Errors(t *testing.T) {
	ctx := context.Background()

	svc := newTestService(t, &fakeNewsRepo{items: sampleNews()}, newMemoryDismissals())
	err := svc.DismissNews(ctx, "u1", "missing")
	assert.True(t, apperror.IsNotFound(err))

	svc = newTestService(t, &fakeNewsRepo{items: sampleNews()}, nil)
	err = svc.DismissNews(ctx, "u1", "1")
	assert.True(t, apperror.HasCode(err, apperror.CodeUnavailable))
	assert.NoError(t, svc.ClearDismissed(ctx, "u1"))
}

func TestImportNews(t *testing.T) {
	ctx := context.Background()
	repo := &fakeNewsRepo{items: sampleNews()}
	svc := newTestService(t, repo, nil)

	res, err := svc.SearchNews(ctx, SearchRequest{})
	require.NoError(t, err)
	require.Equal(t, int64(5), res.TotalCount)

	n, err := svc.ImportNews(ctx, []NewsItem{
		{ID: "6", Title: "Fresh headline", Date: "2024-01-16", Priority: PriorityHigh},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	res, err = svc.SearchNews(ctx, SearchRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(6), res.TotalCount)
	assert.Equal(t, "6", res.Items[0].ID)
}

func TestImportNews_RejectsInvalidItems(t *testing.T) {
	repo := &fakeNewsRepo{}
	svc := newTestService(t, repo, nil)

	_, err := svc.ImportNews(context.Background(), []NewsItem{
		{ID: "1", Title: "ok"},
		{ID: "2"},
	})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
	assert.Empty(t, repo.upserted)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 1, appErr.Details["index"])
}

func TestImportNews_RejectsDuplicateIDs(t *testing.T) {
	repo := &fakeNewsRepo{}
	svc := newTestService(t, repo, nil)

	_, err := svc.ImportNews(context.Background(), []NewsItem{
		{ID: "n1", Title: "first"},
		{ID: "n2", Title: "other"},
		{ID: "n1", Title: "again"},
	})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
	assert.Empty(t, repo.upserted)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 2, appErr.Details["index"])
	assert.Equal(t, 0, appErr.Details["first_index"])
	assert.Equal(t, "n1", appErr.Details["id"])
}

func TestNewService_NilRepositoriesAreEmpty(t *testing.T) {
	svc := NewService(ServiceConfig{Logger: logger.NewNop()})

	res, err := svc.SearchAlerts(context.Background(), SearchRequest{})
	require.NoError(t, err)
	assert.Empty(t, res.Items)

	_, err = svc.ImportNews(context.Background(), []NewsItem{{ID: "1", Title: "t"}})
	assert.True(t, apperror.HasCode(err, apperror.CodeUnavailable))
}

func TestInvalidate(t *testing.T) {
	repo := &fakeNewsRepo{items: sampleNews()}
	svc := newTestService(t, repo, nil)
	ctx := context.Background()

	_, err := svc.SearchNews(ctx, SearchRequest{})
	require.NoError(t, err)

	svc.Invalidate(KindAlert)
	_, err = svc.SearchNews(ctx, SearchRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.lists)

	svc.Invalidate(KindNews)
	_, err = svc.SearchNews(ctx, SearchRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, repo.lists)

	svc.Invalidate("")
	_, err = svc.SearchNews(ctx, SearchRequest{})
	require.NoError(t, err)
	assert.Equal(t, 3, repo.lists)
}
