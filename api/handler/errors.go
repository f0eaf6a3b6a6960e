package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/koans/decorate"
	"github.com/use-agent/koans/engine"
	"github.com/use-agent/koans/greed"
	"github.com/use-agent/koans/models"
	"github.com/use-agent/koans/script"
	"github.com/use-agent/koans/triangle"
)

// badRequest writes a 400 for a malformed payload.
func badRequest(c *gin.Context, err error) {
	respondError(c, models.NewAPIError(models.ErrCodeInvalidInput, err.Error(), err))
}

// respondError maps err to an API error code and writes a structured JSON
// error response with the matching HTTP status.
func respondError(c *gin.Context, err error) {
	apiErr := classify(err)
	status := mapErrorToStatus(apiErr)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		slog.Error("request failed",
			"path", c.Request.URL.Path,
			"code", apiErr.Code,
			"error", err,
		)
	}
	c.JSON(status, models.ErrorResponse{Error: apiErr.ToDetail()})
}

// classify turns a domain error into an *models.APIError.
func classify(err error) *models.APIError {
	var apiErr *models.APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var fetchErr *engine.FetchError
	switch {
	case errors.Is(err, triangle.ErrInvalidTriangle):
		return models.NewAPIError(models.ErrCodeInvalidTriangle, err.Error(), err)
	case errors.Is(err, greed.ErrInvalidDiceCount), errors.Is(err, script.ErrInvalidPattern):
		return models.NewAPIError(models.ErrCodeInvalidInput, err.Error(), err)
	case errors.Is(err, script.ErrNoScript):
		return models.NewAPIError(models.ErrCodeNoScript, err.Error(), err)
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewAPIError(models.ErrCodeTimeout, "screenplay fetch timed out", err)
	case errors.Is(err, decorate.ErrRetriesExhausted):
		return models.NewAPIError(models.ErrCodeFetchFailed, "screenplay fetch kept failing", err)
	case errors.As(err, &fetchErr):
		return models.NewAPIError(models.ErrCodeFetchFailed, fetchErr.Error(), err)
	default:
		return models.NewAPIError(models.ErrCodeInternal, "internal error", err)
	}
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.APIError) int {
	switch e.Code {
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeInvalidTriangle, models.ErrCodeNoScript:
		return http.StatusUnprocessableEntity // 422
	case models.ErrCodeFetchFailed:
		return http.StatusBadGateway // 502
	case models.ErrCodeTimeout:
		return http.StatusGatewayTimeout // 504
	default:
		return http.StatusInternalServerError // 500
	}
}
