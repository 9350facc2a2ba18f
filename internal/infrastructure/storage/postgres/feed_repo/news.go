package feed_repo

import (
	"dice/internal/domain/feed"
	"dice/internal/infrastructure/storage/postgres"
)

// NewsRepo stores news items in news_items.
type NewsRepo struct {
	*tableRepo[feed.NewsItem]
}

var _ feed.NewsRepository = (*NewsRepo)(nil)

// NewNewsRepo creates a news repository. Rows are returned by id so the
// in-memory sort sees a stable input order.
func NewNewsRepo(txm *postgres.TxManager) *NewsRepo {
	return &NewsRepo{newTableRepo[feed.NewsItem](txm, "news_items", "id")}
}
