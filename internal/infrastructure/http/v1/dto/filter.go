package dto

import (
	"strings"

	"dice/internal/core/apperror"
	"dice/internal/domain/feed"
	"dice/internal/domain/filter"
)

// FilterQuery holds the query parameters shared by every feed.
type FilterQuery struct {
	PaginationRequest

	From     string   `form:"from"`
	To       string   `form:"to"`
	Q        string   `form:"q"`
	SearchIn []string `form:"searchIn"`
	Sort     string   `form:"sort"`
	Expr     string   `form:"expr"`
}

// config builds the parts of a filter.Config shared by every feed.
func (q FilterQuery) config() (filter.Config, error) {
	var cfg filter.Config

	if q.From != "" {
		t, err := filter.ParseDate(q.From)
		if err != nil {
			return cfg, invalidParam("from", q.From, err)
		}
		cfg.DateRange.Start = &t
	}
	if q.To != "" {
		t, err := filter.ParseDate(q.To)
		if err != nil {
			return cfg, invalidParam("to", q.To, err)
		}
		cfg.DateRange.End = &t
	}

	key, err := filter.ParseSortKey(q.Sort)
	if err != nil {
		return cfg, apperror.NewInvalidFilter(err).WithDetail("param", "sort")
	}
	cfg.SortKey = key

	cfg.SearchText = strings.TrimSpace(q.Q)
	cfg.SearchIn = splitValues(q.SearchIn)
	cfg.Expression = strings.TrimSpace(q.Expr)
	return cfg, nil
}

func invalidParam(name, value string, err error) error {
	return apperror.NewValidation("invalid "+name+" date").
		WithDetail("param", name).
		WithDetail("value", value).
		WithCause(err)
}

// splitValues accepts both repeated and comma-separated parameters.
func splitValues(raw []string) []string {
	var out []string
	for _, r := range raw {
		for _, v := range strings.Split(r, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

// NewsQuery holds news feed query parameters.
type NewsQuery struct {
	FilterQuery

	Priority  []string `form:"priority"`
	Sentiment []string `form:"sentiment"`
	Journal   string   `form:"journal"`
	Impact    []string `form:"impact"`
}

// ToConfig converts the query to a filter configuration.
func (q NewsQuery) ToConfig() (filter.Config, error) {
	cfg, err := q.config()
	if err != nil {
		return cfg, err
	}
	return cfg.
		Select(feed.DimPriority, splitValues(q.Priority)...).
		Select(feed.DimSentiment, splitValues(q.Sentiment)...).
		Select(feed.DimImpact, splitValues(q.Impact)...).
		Equal(feed.DimJournal, q.Journal), nil
}

// AlertQuery holds alert inbox query parameters.
type AlertQuery struct {
	FilterQuery

	Severity []string `form:"severity"`
	Status   []string `form:"status"`
}

// ToConfig converts the query to a filter configuration.
func (q AlertQuery) ToConfig() (filter.Config, error) {
	cfg, err := q.config()
	if err != nil {
		return cfg, err
	}
	return cfg.
		Select(feed.DimSeverity, splitValues(q.Severity)...).
		Select(feed.DimStatus, splitValues(q.Status)...), nil
}

// SignalQuery holds market signal query parameters.
type SignalQuery struct {
	FilterQuery

	Relevance []string `form:"relevance"`
	Source    []string `form:"source"`
}

// ToConfig converts the query to a filter configuration.
func (q SignalQuery) ToConfig() (filter.Config, error) {
	cfg, err := q.config()
	if err != nil {
		return cfg, err
	}
	return cfg.
		Select(feed.DimRelevance, splitValues(q.Relevance)...).
		Select(feed.DimSource, splitValues(q.Source)...), nil
}

// ImportNewsRequest is the body of POST /news/import.
type ImportNewsRequest struct {
	Items []feed.NewsItem `json:"items" binding:"required"`
}

// ImportNewsResponse reports how many items were stored.
type ImportNewsResponse struct {
	Imported int `json:"imported"`
}

// DismissedResponse reports the size of the caller's dismissed list.
type DismissedResponse struct {
	Dismissed int `json:"dismissed"`
}
