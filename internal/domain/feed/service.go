package feed

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"dice/internal/core/apperror"
	"dice/internal/domain"
	"dice/internal/domain/filter"
	"dice/pkg/logger"
)

var tracer = otel.Tracer("dice/feed")

// Record kind names used in logs, spans and errors.
const (
	KindNews    = "news"
	KindAlert   = "alert"
	KindSignal  = "signal"
	maxPageSize = 500
)

// SearchRequest is a filter configuration plus the page to return.
type SearchRequest struct {
	Filter filter.Config
	Limit  int
	Offset int
}

// SearchResult is one page of filtered, ordered records.
type SearchResult[T any] struct {
	domain.ListResult[T]
	Diagnostics []filter.Diagnostic `json:"diagnostics,omitempty"`
}

// ServiceConfig wires the service's collaborators.
type ServiceConfig struct {
	News       NewsRepository
	Alerts     AlertRepository
	Signals    SignalRepository
	Dismissals DismissalStore

	// SnapshotTTL is how long loaded records are reused before reloading.
	SnapshotTTL time.Duration

	// DefaultPageSize applies when a request has no limit.
	DefaultPageSize int

	Logger *logger.Logger
	Now    func() time.Time
}

// Service searches the dashboard feeds.
type Service struct {
	news       NewsRepository
	dismissals DismissalStore

	newsSnap   *snapshot[NewsItem]
	alertSnap  *snapshot[Alert]
	signalSnap *snapshot[Signal]

	newsMemo   *filter.Memo[NewsItem]
	alertMemo  *filter.Memo[Alert]
	signalMemo *filter.Memo[Signal]

	pageSize int
	log      *logger.Logger
}

// NewService creates a feed service. Nil repositories behave as empty.
func NewService(cfg ServiceConfig) *Service {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Default()
	}
	pageSize := cfg.DefaultPageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	s := &Service{
		news:       cfg.News,
		dismissals: cfg.Dismissals,
		newsMemo:   filter.NewMemo(filter.MustEngine(NewsSchema())),
		alertMemo:  filter.NewMemo(filter.MustEngine(AlertSchema())),
		signalMemo: filter.NewMemo(filter.MustEngine(SignalSchema())),
		pageSize:   pageSize,
		log:        log.WithComponent("feed"),
	}

	s.newsSnap = newSnapshot(listAll[NewsItem](cfg.News), cfg.SnapshotTTL, now)
	s.alertSnap = newSnapshot(listAll[Alert](cfg.Alerts), cfg.SnapshotTTL, now)
	s.signalSnap = newSnapshot(listAll[Signal](cfg.Signals), cfg.SnapshotTTL, now)

	return s
}

type lister[T any] interface {
	List(ctx context.Context, filter domain.ListFilter) ([]T, error)
}

func listAll[T any](repo lister[T]) func(ctx context.Context) ([]T, error) {
	return func(ctx context.Context) ([]T, error) {
		if repo == nil {
			return []T{}, nil
		}
		return repo.List(ctx, domain.ListFilter{})
	}
}

// SearchNews filters and orders the news feed.
func (s *Service) SearchNews(ctx context.Context, req SearchRequest) (SearchResult[NewsItem], error) {
	return search(ctx, s, KindNews, s.newsSnap, s.newsMemo, req)
}

// SearchAlerts filters and orders the alert inbox.
func (s *Service) SearchAlerts(ctx context.Context, req SearchRequest) (SearchResult[Alert], error) {
	return search(ctx, s, KindAlert, s.alertSnap, s.alertMemo, req)
}

// SearchSignals filters and orders market signals.
func (s *Service) SearchSignals(ctx context.Context, req SearchRequest) (SearchResult[Signal], error) {
	return search(ctx, s, KindSignal, s.signalSnap, s.signalMemo, req)
}

func search[T any](
	ctx context.Context,
	s *Service,
	kind string,
	snap *snapshot[T],
	memo *filter.Memo[T],
	req SearchRequest,
) (SearchResult[T], error) {
	ctx, span := tracer.Start(ctx, "feed.search",
		trace.WithAttributes(attribute.String("feed.kind", kind)))
	defer span.End()

	if err := memo.Engine().Validate(req.Filter); err != nil {
		return SearchResult[T]{}, apperror.NewInvalidFilter(err)
	}

	records, err := snap.Get(ctx)
	if err != nil {
		span.RecordError(err)
		return SearchResult[T]{}, fmt.Errorf("load %s: %w", kind, err)
	}

	res, err := memo.Apply(records, req.Filter)
	if err != nil {
		if errors.Is(err, filter.ErrInvalidConfig) {
			return SearchResult[T]{}, apperror.NewInvalidFilter(err)
		}
		return SearchResult[T]{}, fmt.Errorf("filter %s: %w", kind, err)
	}

	s.reportDiagnostics(ctx, kind, res.Diagnostics)

	limit, offset := s.page(req.Limit, req.Offset)
	span.SetAttributes(
		attribute.Int("feed.records", len(records)),
		attribute.Int("feed.matched", len(res.Items)),
	)

	return SearchResult[T]{
		ListResult:  domain.Paginate(res.Items, limit, offset),
		Diagnostics: res.Diagnostics,
	}, nil
}

func (s *Service) page(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = s.pageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func (s *Service) reportDiagnostics(ctx context.Context, kind string, diags []filter.Diagnostic) {
	if len(diags) == 0 {
		return
	}
	ids := make([]string, 0, len(diags))
	for _, d := range diags {
		ids = append(ids, d.RecordID)
	}
	s.log.WithContext(ctx).Warnw("records excluded by data-quality problems",
		"kind", kind,
		"count", len(diags),
		"record_ids", ids,
		"first_error", diags[0].Message(),
	)
}

// Journals returns the distinct journal names of the news feed, sorted.
func (s *Service) Journals(ctx context.Context) ([]string, error) {
	items, err := s.newsSnap.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load news: %w", err)
	}
	return filter.Distinct(items, func(n NewsItem) string { return n.Journal }), nil
}

// HighPriorityNews returns the high-priority items userID has not dismissed,
// newest first.
func (s *Service) HighPriorityNews(ctx context.Context, userID string) ([]NewsItem, error) {
	items, err := s.newsSnap.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load news: %w", err)
	}

	dismissed, err := s.dismissed(ctx, userID)
	if err != nil {
		return nil, err
	}

	notDismissed := func(n NewsItem) bool {
		return !slices.Contains(dismissed, n.ID)
	}
	high := filter.Filter(items,
		filter.SetCriterion([]string{PriorityHigh}, func(n NewsItem) string { return n.Priority }),
		notDismissed,
	)
	return filter.Sort(high, filter.SortRecency, NewsSchema()), nil
}

// DismissNews hides newsID from userID's high-priority list.
func (s *Service) DismissNews(ctx context.Context, userID, newsID string) error {
	items, err := s.newsSnap.Get(ctx)
	if err != nil {
		return fmt.Errorf("load news: %w", err)
	}
	if !slices.ContainsFunc(items, func(n NewsItem) bool { return n.ID == newsID }) {
		return apperror.NewNotFound(KindNews, newsID)
	}
	if s.dismissals == nil {
		return apperror.NewUnavailable("dismissal store", errors.New("not configured"))
	}
	if err := s.dismissals.Dismiss(ctx, userID, newsID); err != nil {
		return fmt.Errorf("dismiss news: %w", err)
	}
	return nil
}

// ClearDismissed restores every dismissed item for userID.
func (s *Service) ClearDismissed(ctx context.Context, userID string) error {
	if s.dismissals == nil {
		return nil
	}
	if err := s.dismissals.Clear(ctx, userID); err != nil {
		return fmt.Errorf("clear dismissed news: %w", err)
	}
	return nil
}

// DismissedCount returns how many items userID has dismissed.
func (s *Service) DismissedCount(ctx context.Context, userID string) (int, error) {
	dismissed, err := s.dismissed(ctx, userID)
	if err != nil {
		return 0, err
	}
	return len(dismissed), nil
}

func (s *Service) dismissed(ctx context.Context, userID string) ([]string, error) {
	if s.dismissals == nil {
		return nil, nil
	}
	ids, err := s.dismissals.Dismissed(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load dismissed news: %w", err)
	}
	return ids, nil
}

// ImportNews validates and stores items, then drops the cached snapshot.
// A batch repeating an ID is rejected.
func (s *Service) ImportNews(ctx context.Context, items []NewsItem) (int, error) {
	if s.news == nil {
		return 0, apperror.NewUnavailable("news store", errors.New("not configured"))
	}
	seen := make(map[string]int, len(items))
	for i := range items {
		if err := items[i].Validate(ctx); err != nil {
			if appErr, ok := apperror.AsAppError(err); ok {
				appErr.WithDetail("index", i)
			}
			return 0, err
		}
		if first, ok := seen[items[i].ID]; ok {
			return 0, apperror.NewValidation("duplicate id in batch").
				WithDetail("field", "id").
				WithDetail("id", items[i].ID).
				WithDetail("index", i).
				WithDetail("first_index", first)
		}
		seen[items[i].ID] = i
	}
	if len(items) == 0 {
		return 0, nil
	}

	if err := s.news.Upsert(ctx, items); err != nil {
		return 0, fmt.Errorf("import news: %w", err)
	}

	s.newsSnap.invalidate()
	s.newsMemo.Reset()
	s.log.WithContext(ctx).Infow("news imported", "count", len(items))
	return len(items), nil
}

// Invalidate drops the cached snapshot of kind so the next search reloads
// it. An empty or unknown kind drops every snapshot.
func (s *Service) Invalidate(kind string) {
	switch kind {
	case KindNews:
		s.newsSnap.invalidate()
	case KindAlert:
		s.alertSnap.invalidate()
	case KindSignal:
		s.signalSnap.invalidate()
	default:
		s.newsSnap.invalidate()
		s.alertSnap.invalidate()
		s.signalSnap.invalidate()
	}
}
