package http

import (
	"net/http"

	"pharmachain-service/pkg/api"
	"pharmachain-service/pkg/logger"
)

// HealthHandler handles HTTP requests for health check operations
type HealthHandler struct {
	Logger logger.LoggerInterface
	API    api.Api
}

// NewHealthHandler creates a new instance of HealthHandler
func NewHealthHandler(appLogger logger.LoggerInterface) *HealthHandler {
	return &HealthHandler{
		Logger: appLogger,
		API:    api.New(),
	}
}

// HealthCheckHandler reports service liveness
func (h *HealthHandler) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	h.API.Success(ctx, w, map[string]interface{}{
		"status":  "healthy",
		"message": "Service is running",
	})
}
