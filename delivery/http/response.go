// Package http contains the HTTP delivery layer for the application
package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"pharmachain-service/domain"
	"pharmachain-service/pkg/api"
	"pharmachain-service/pkg/logger"
)

// respondError maps a usecase error onto the response envelope. Business
// errors carry their own HTTP status; anything else is a 500.
func respondError(ctx context.Context, w http.ResponseWriter, apiClient api.Api, appLogger logger.LoggerInterface, err error) {
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		apiClient.Error(ctx, w, appErr.Status, &api.Error{
			Code:    appErr.Code,
			Message: appErr.Message,
		})
		return
	}

	appLogger.ErrorContext(ctx, "Unexpected error", "error", err)
	apiClient.InternalServerError(ctx, w, "An unexpected error occurred")
}

// parsePagination reads offset/limit query parameters with defaults
func parsePagination(r *http.Request) (offset, limit int) {
	offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}

	limit, err = strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return offset, limit
}

// paginationMeta builds the response meta from offset/limit/total
func paginationMeta(offset, limit, total int) *api.Meta {
	page := 0
	if limit > 0 {
		page = offset / limit
	}
	return api.NewPagination(page, limit, total)
}

// convertValidationErrors turns validator output into response details
func convertValidationErrors(validationErrors map[string]string) []api.ErrorDetail {
	details := make([]api.ErrorDetail, 0, len(validationErrors))
	for field, message := range validationErrors {
		details = append(details, api.ErrorDetail{
			Field:   field,
			Message: message,
		})
	}
	return details
}
