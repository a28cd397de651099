package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/Khadka1996/everestnews-server/internal/domain"
	"github.com/Khadka1996/everestnews-server/internal/service"
	"github.com/Khadka1996/everestnews-server/pkg/logger"
	"github.com/Khadka1996/everestnews-server/pkg/response"
)

// ArticleHandler handles primary article requests
type ArticleHandler struct {
	articles *service.ArticleService
	logger   *logger.Logger
}

// NewArticleHandler creates a new article handler
func NewArticleHandler(articles *service.ArticleService, logger *logger.Logger) *ArticleHandler {
	return &ArticleHandler{
		articles: articles,
		logger:   logger.WithComponent("article-handler"),
	}
}

// Create handles article creation
func (h *ArticleHandler) Create(c *gin.Context) {
	var req domain.ArticleCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	article, err := h.articles.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to create article")
		return
	}

	response.Created(c, article)
}

// Update handles partial article updates
func (h *ArticleHandler) Update(c *gin.Context) {
	var req domain.ArticleUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	article, err := h.articles.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to update article")
		return
	}

	response.Success(c, article)
}

// Delete handles article deletion
func (h *ArticleHandler) Delete(c *gin.Context) {
	article, err := h.articles.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err, "Failed to delete article")
		return
	}

	response.SuccessWithMessage(c, "Article deleted", article)
}

// List retrieves the default article listing
func (h *ArticleHandler) List(c *gin.Context) {
	parser := NewQueryParamParser(c)
	pagination := parser.Pagination(20)
	sort := parser.Sort("sortBy", "sortOrder", "createdAt")
	search := parser.String("search", "")

	if err := parser.Error(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	query := &domain.ArticleListQuery{
		Page:      pagination.Page,
		Limit:     pagination.Limit,
		SortBy:    sort.Field,
		SortOrder: sort.Order,
		Search:    search,
	}

	payload, cached, err := h.articles.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, h.logger, err, "Failed to list articles")
		return
	}

	response.List(c, payload.Data, payload.Pagination, cached)
}

// GetByID retrieves an article without counting a view
func (h *ArticleHandler) GetByID(c *gin.Context) {
	payload, cached, err := h.articles.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve article")
		return
	}

	response.List(c, payload.Data, nil, cached)
}

// GetByIDWithViews retrieves an article and counts the view
func (h *ArticleHandler) GetByIDWithViews(c *gin.Context) {
	payload, cached, err := h.articles.GetByIDWithViews(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve article")
		return
	}

	response.List(c, payload.Data, nil, cached)
}

// IncrementViews adds one view to an article
func (h *ArticleHandler) IncrementViews(c *gin.Context) {
	article, err := h.articles.IncrementViews(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err, "Failed to increment views")
		return
	}

	response.Success(c, gin.H{"views": article.Views})
}

// IncrementShares adds one share to an article
func (h *ArticleHandler) IncrementShares(c *gin.Context) {
	article, err := h.articles.IncrementShareCount(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err, "Failed to increment shares")
		return
	}

	response.Success(c, gin.H{"shareCount": article.ShareCount})
}

// TotalViews retrieves an article's view counter
func (h *ArticleHandler) TotalViews(c *gin.Context) {
	payload, cached, err := h.articles.TotalViews(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve views")
		return
	}

	response.List(c, payload.Data, nil, cached)
}

// ShareCount retrieves an article's share counter
func (h *ArticleHandler) ShareCount(c *gin.Context) {
	payload, cached, err := h.articles.ShareCount(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve share count")
		return
	}

	response.List(c, payload.Data, nil, cached)
}

// Authors retrieves the resolved authors of an article
func (h *ArticleHandler) Authors(c *gin.Context) {
	payload, cached, err := h.articles.AuthorsByArticle(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve authors")
		return
	}

	response.List(c, payload.Data, nil, cached)
}

// Tags retrieves the resolved tags of an article
func (h *ArticleHandler) Tags(c *gin.Context) {
	payload, cached, err := h.articles.TagsByArticle(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve tags")
		return
	}

	response.List(c, payload.Data, nil, cached)
}

// Locations retrieves the distinct article locations
func (h *ArticleHandler) Locations(c *gin.Context) {
	payload, cached, err := h.articles.UniqueLocations(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve locations")
		return
	}

	response.List(c, payload.Data, nil, cached)
}

// LocationByID retrieves one article's location and counters
func (h *ArticleHandler) LocationByID(c *gin.Context) {
	info, err := h.articles.LocationByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve location")
		return
	}

	response.Success(c, info)
}

// ByStatus retrieves a status-scoped listing with optional author,
// category and tag filters
func (h *ArticleHandler) ByStatus(c *gin.Context) {
	parser := NewQueryParamParser(c)
	pagination := parser.Pagination(21)
	author := parser.String("authorId", "")
	category := parser.String("categoryId", "")
	tags := parser.Tags("tags")

	if err := parser.Error(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	filter := &domain.StatusFilter{
		Status:     c.Param("status"),
		AuthorID:   author,
		CategoryID: category,
		TagIDs:     tags,
		Page:       pagination.Page,
		Limit:      pagination.Limit,
	}

	payload, cached, err := h.articles.ListByStatus(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err, "Failed to list articles by status")
		return
	}

	response.List(c, payload.Data, payload.Pagination, cached)
}

// ByCategory retrieves every article in a category with dynamic sorting
func (h *ArticleHandler) ByCategory(c *gin.Context) {
	parser := NewQueryParamParser(c)
	sort := parser.Sort("sortField", "sortOrder", "createdAt")

	if err := parser.Error(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	payload, cached, err := h.articles.ListByCategory(c.Request.Context(), c.Param("category"), sort.Field, sort.Order)
	if err != nil {
		respondError(c, h.logger, err, "Failed to list articles by category")
		return
	}

	response.List(c, payload.Data, nil, cached)
}

// ByCategoryWithStatus retrieves a paginated category listing scoped by status
func (h *ArticleHandler) ByCategoryWithStatus(c *gin.Context) {
	parser := NewQueryParamParser(c)
	pagination := parser.Pagination(12)

	if err := parser.Error(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	payload, cached, err := h.articles.ListByCategoryWithStatus(
		c.Request.Context(), c.Param("category"), c.Param("status"), pagination.Page, pagination.Limit)
	if err != nil {
		respondError(c, h.logger, err, "Failed to list articles by category")
		return
	}

	response.List(c, payload.Data, payload.Pagination, cached)
}

// ByTagWithStatus retrieves a paginated tag listing scoped by status
func (h *ArticleHandler) ByTagWithStatus(c *gin.Context) {
	parser := NewQueryParamParser(c)
	pagination := parser.Pagination(9)

	if err := parser.Error(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	payload, cached, err := h.articles.ListByTagWithStatus(
		c.Request.Context(), c.Param("tag"), c.Param("status"), pagination.Page, pagination.Limit)
	if err != nil {
		respondError(c, h.logger, err, "Failed to list articles by tag")
		return
	}

	response.List(c, payload.Data, payload.Pagination, cached)
}

// ByAuthorsWithStatus retrieves a paginated listing of articles by any
// author matching the name, scoped by status
func (h *ArticleHandler) ByAuthorsWithStatus(c *gin.Context) {
	parser := NewQueryParamParser(c)
	pagination := parser.Pagination(1)

	if err := parser.Error(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	payload, cached, err := h.articles.ListByAuthorsWithStatus(
		c.Request.Context(), c.Param("authorName"), c.Param("status"), pagination.Page, pagination.Limit)
	if err != nil {
		respondError(c, h.logger, err, "Failed to list articles by author")
		return
	}

	response.List(c, payload.Data, payload.Pagination, cached)
}

// Trending retrieves the trending list
func (h *ArticleHandler) Trending(c *gin.Context) {
	payload, cached, err := h.articles.Trending(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve trending articles")
		return
	}

	response.List(c, payload.Data, nil, cached)
}
