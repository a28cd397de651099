package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Khadka1996/everestnews-server/internal/domain"
	"github.com/Khadka1996/everestnews-server/pkg/logger"
	"github.com/Khadka1996/everestnews-server/pkg/response"
)

// respondError maps service errors onto HTTP responses. Unknown errors
// are logged and reported as the fallback message so internals never
// leak to clients.
func respondError(c *gin.Context, log *logger.Logger, err error, fallback string) {
	var validationErr *domain.ValidationError
	switch {
	case errors.As(err, &validationErr):
		response.BadRequest(c, validationErr.Error())
	case errors.Is(err, domain.ErrArticleNotFound),
		errors.Is(err, domain.ErrCategoryNotFound),
		errors.Is(err, domain.ErrTagNotFound),
		errors.Is(err, domain.ErrAuthorNotFound),
		errors.Is(err, domain.ErrNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrPhotoRequired),
		errors.Is(err, domain.ErrScheduleInPast),
		errors.Is(err, domain.ErrInvalidInput):
		response.BadRequest(c, err.Error())
	default:
		log.Error(fallback, "path", c.Request.URL.Path, "error", err)
		response.InternalServerError(c, fallback)
	}
}
