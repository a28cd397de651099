package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/Khadka1996/everestnews-server/internal/domain"
	"github.com/Khadka1996/everestnews-server/internal/service"
	"github.com/Khadka1996/everestnews-server/pkg/logger"
	"github.com/Khadka1996/everestnews-server/pkg/response"
)

// EnglishHandler handles English article requests
type EnglishHandler struct {
	english *service.EnglishService
	logger  *logger.Logger
}

// NewEnglishHandler creates a new English article handler
func NewEnglishHandler(english *service.EnglishService, logger *logger.Logger) *EnglishHandler {
	return &EnglishHandler{
		english: english,
		logger:  logger.WithComponent("english-handler"),
	}
}

// Create handles English article creation
func (h *EnglishHandler) Create(c *gin.Context) {
	var req domain.EnglishCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	article, err := h.english.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to create article")
		return
	}

	response.Created(c, article)
}

// Update handles partial English article updates
func (h *EnglishHandler) Update(c *gin.Context) {
	var req domain.EnglishUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	article, err := h.english.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to update article")
		return
	}

	response.Success(c, article)
}

// Delete handles English article deletion
func (h *EnglishHandler) Delete(c *gin.Context) {
	article, err := h.english.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err, "Failed to delete article")
		return
	}

	response.SuccessWithMessage(c, "Article deleted", article)
}

// List retrieves the English listing, newest first
func (h *EnglishHandler) List(c *gin.Context) {
	parser := NewQueryParamParser(c)
	pagination := parser.Pagination(12)

	if err := parser.Error(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	payload, cached, err := h.english.List(c.Request.Context(), pagination.Page, pagination.Limit)
	if err != nil {
		respondError(c, h.logger, err, "Failed to list articles")
		return
	}

	response.List(c, payload.Data, payload.Pagination, cached)
}

// GetByID retrieves an English article without counting a view
func (h *EnglishHandler) GetByID(c *gin.Context) {
	payload, cached, err := h.english.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve article")
		return
	}

	response.List(c, payload.Data, nil, cached)
}

// GetByIDWithViews retrieves an English article and counts the view
func (h *EnglishHandler) GetByIDWithViews(c *gin.Context) {
	payload, cached, err := h.english.GetByIDWithViews(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve article")
		return
	}

	response.List(c, payload.Data, nil, cached)
}

// ByCategory retrieves a paginated English category listing
func (h *EnglishHandler) ByCategory(c *gin.Context) {
	parser := NewQueryParamParser(c)
	pagination := parser.Pagination(12)

	if err := parser.Error(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	payload, cached, err := h.english.ListByCategory(
		c.Request.Context(), c.Param("category"), pagination.Page, pagination.Limit)
	if err != nil {
		respondError(c, h.logger, err, "Failed to list articles by category")
		return
	}

	response.List(c, payload.Data, payload.Pagination, cached)
}

// Suggestions retrieves headline completions for a search prefix
func (h *EnglishHandler) Suggestions(c *gin.Context) {
	headlines, err := h.english.SuggestHeadlines(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve suggestions")
		return
	}

	response.Success(c, headlines)
}

// IncrementViews adds one view to an English article
func (h *EnglishHandler) IncrementViews(c *gin.Context) {
	article, err := h.english.IncrementViews(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err, "Failed to increment views")
		return
	}

	response.Success(c, gin.H{"views": article.Views})
}

// IncrementShares adds one share to an English article
func (h *EnglishHandler) IncrementShares(c *gin.Context) {
	article, err := h.english.IncrementShareCount(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err, "Failed to increment shares")
		return
	}

	response.Success(c, gin.H{"shareCount": article.ShareCount})
}

// TotalViews retrieves an English article's view counter
func (h *EnglishHandler) TotalViews(c *gin.Context) {
	payload, cached, err := h.english.TotalViews(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve views")
		return
	}

	response.List(c, payload.Data, nil, cached)
}

// ShareCount retrieves an English article's share counter
func (h *EnglishHandler) ShareCount(c *gin.Context) {
	payload, cached, err := h.english.ShareCount(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve share count")
		return
	}

	response.List(c, payload.Data, nil, cached)
}

// Locations retrieves the distinct English article locations
func (h *EnglishHandler) Locations(c *gin.Context) {
	payload, cached, err := h.english.UniqueLocations(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve locations")
		return
	}

	response.List(c, payload.Data, nil, cached)
}

// LocationByID retrieves one English article's location and counters
func (h *EnglishHandler) LocationByID(c *gin.Context) {
	info, err := h.english.LocationByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve location")
		return
	}

	response.Success(c, info)
}

// Trending retrieves the English trending list
func (h *EnglishHandler) Trending(c *gin.Context) {
	payload, cached, err := h.english.Trending(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve trending articles")
		return
	}

	response.List(c, payload.Data, nil, cached)
}
