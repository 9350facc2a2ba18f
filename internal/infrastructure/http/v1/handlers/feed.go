package handlers

import (
	"github.com/gin-gonic/gin"

	appctx "dice/internal/core/context"
	"dice/internal/domain/feed"
	"dice/internal/domain/filter"
	"dice/internal/infrastructure/http/v1/dto"
	"dice/internal/infrastructure/http/v1/middleware"
)

// FeedHandler serves the news, alert and signal feeds.
type FeedHandler struct {
	*BaseHandler
	service  *feed.Service
	pageSize int
}

// NewFeedHandler creates a feed handler. pageSize is used when a request
// names none.
func NewFeedHandler(base *BaseHandler, service *feed.Service, pageSize int) *FeedHandler {
	if pageSize <= 0 || pageSize > dto.MaxPageSize {
		pageSize = 50
	}
	return &FeedHandler{
		BaseHandler: base,
		service:     service,
		pageSize:    pageSize,
	}
}

// RegisterRoutes mounts the feed endpoints on rg. Import needs an admin
// token even when authentication is optional.
func (h *FeedHandler) RegisterRoutes(rg *gin.RouterGroup) {
	news := rg.Group("/news")
	{
		news.GET("", h.ListNews)
		news.GET("/journals", h.Journals)
		news.GET("/high-priority", h.HighPriority)
		news.POST("/high-priority/:id/dismiss", h.Dismiss)
		news.DELETE("/high-priority/dismissed", h.ClearDismissed)
		news.POST("/import", middleware.RequireRole(appctx.RoleAdmin), h.Import)
	}
	rg.GET("/alerts", h.ListAlerts)
	rg.GET("/signals", h.ListSignals)
}

type configurer interface {
	ToConfig() (filter.Config, error)
}

// searchRequest binds the shared pagination and builds the service request.
func (h *FeedHandler) searchRequest(page *dto.PaginationRequest, q configurer) (feed.SearchRequest, error) {
	page.Defaults(h.pageSize)
	cfg, err := q.ToConfig()
	if err != nil {
		return feed.SearchRequest{}, err
	}
	return feed.SearchRequest{
		Filter: cfg,
		Limit:  page.PageSize,
		Offset: page.Offset(),
	}, nil
}

func listResponse[T any](page dto.PaginationRequest, res feed.SearchResult[T]) dto.ListResponse[T] {
	return dto.ListResponse[T]{
		Data:        res.Items,
		Pagination:  dto.NewPaginationResponse(page.Page, page.PageSize, res.TotalCount),
		Diagnostics: dto.FromDiagnostics(res.Diagnostics),
	}
}

// ListNews handles GET /news
func (h *FeedHandler) ListNews(c *gin.Context) {
	var q dto.NewsQuery
	if !h.BindQuery(c, &q) {
		return
	}
	req, err := h.searchRequest(&q.PaginationRequest, q)
	if err != nil {
		h.Error(c, err)
		return
	}

	res, err := h.service.SearchNews(c.Request.Context(), req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, listResponse(q.PaginationRequest, res))
}

// ListAlerts handles GET /alerts
func (h *FeedHandler) ListAlerts(c *gin.Context) {
	var q dto.AlertQuery
	if !h.BindQuery(c, &q) {
		return
	}
	req, err := h.searchRequest(&q.PaginationRequest, q)
	if err != nil {
		h.Error(c, err)
		return
	}

	res, err := h.service.SearchAlerts(c.Request.Context(), req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, listResponse(q.PaginationRequest, res))
}

// ListSignals handles GET /signals
func (h *FeedHandler) ListSignals(c *gin.Context) {
	var q dto.SignalQuery
	if !h.BindQuery(c, &q) {
		return
	}
	req, err := h.searchRequest(&q.PaginationRequest, q)
	if err != nil {
		h.Error(c, err)
		return
	}

	res, err := h.service.SearchSignals(c.Request.Context(), req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, listResponse(q.PaginationRequest, res))
}

// Journals handles GET /news/journals
func (h *FeedHandler) Journals(c *gin.Context) {
	journals, err := h.service.Journals(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.DataResponse[[]string]{Data: journals})
}

// HighPriority handles GET /news/high-priority
func (h *FeedHandler) HighPriority(c *gin.Context) {
	items, err := h.service.HighPriorityNews(c.Request.Context(), h.GetUserID(c))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.DataResponse[[]feed.NewsItem]{Data: items})
}

// Dismiss handles POST /news/high-priority/:id/dismiss
func (h *FeedHandler) Dismiss(c *gin.Context) {
	if err := h.service.DismissNews(c.Request.Context(), h.GetUserID(c), c.Param("id")); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// ClearDismissed handles DELETE /news/high-priority/dismissed
func (h *FeedHandler) ClearDismissed(c *gin.Context) {
	if err := h.service.ClearDismissed(c.Request.Context(), h.GetUserID(c)); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// Import handles POST /news/import
func (h *FeedHandler) Import(c *gin.Context) {
	var req dto.ImportNewsRequest
	if !h.BindJSON(c, &req) {
		return
	}

	n, err := h.service.ImportNews(c.Request.Context(), req.Items)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ImportNewsResponse{Imported: n})
}
