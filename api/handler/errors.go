package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/bookmarksort/classify"
	"github.com/use-agent/bookmarksort/models"
	"github.com/use-agent/bookmarksort/storage"
)

// respondError writes err as a structured JSON error with the matching
// HTTP status.
func respondError(c *gin.Context, err error) {
	svcErr := toServiceError(err)
	c.JSON(mapErrorToStatus(svcErr), models.ErrorResponse{Error: svcErr.ToDetail()})
}

// abortInvalid rejects malformed input with 400.
func abortInvalid(c *gin.Context, message string) {
	respondError(c, models.NewServiceError(models.ErrCodeInvalidInput, message, nil))
}

// toServiceError classifies err for the API. Package sentinels map to
// their codes; anything unknown is an internal error.
func toServiceError(err error) *models.ServiceError {
	var svcErr *models.ServiceError
	switch {
	case errors.As(err, &svcErr):
		return svcErr
	case errors.Is(err, classify.ErrUnknownMethod):
		return models.NewServiceError(models.ErrCodeInvalidInput, err.Error(), err)
	case errors.Is(err, classify.ErrNoCrawler):
		return models.NewServiceError(models.ErrCodeUnavailable, "live fetching is not configured on this server", err)
	case errors.Is(err, storage.ErrNotFound):
		return models.NewServiceError(models.ErrCodeNotFound, "file does not exist", err)
	case errors.Is(err, storage.ErrInvalidHandle):
		return models.NewServiceError(models.ErrCodeInvalidInput, "invalid filename", err)
	case errors.Is(err, storage.ErrTooLarge):
		return models.NewServiceError(models.ErrCodeInvalidInput, "file too large", err)
	default:
		return models.NewServiceError(models.ErrCodeInternal, err.Error(), err)
	}
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.ServiceError) int {
	switch e.Code {
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	case models.ErrCodeNotFound:
		return http.StatusNotFound // 404
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeParse:
		return http.StatusUnprocessableEntity // 422
	case models.ErrCodeUnavailable:
		return http.StatusServiceUnavailable // 503
	default:
		return http.StatusInternalServerError // 500
	}
}
