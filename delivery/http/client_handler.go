package http

import (
	"encoding/json"
	"net/http"

	"pharmachain-service/domain/model"
	"pharmachain-service/pkg/api"
	"pharmachain-service/pkg/logger"
	"pharmachain-service/pkg/validator"
	"pharmachain-service/usecase"

	"github.com/go-chi/chi/v5"
)

// ClientHandler handles HTTP requests for pharmacy client operations
type ClientHandler struct {
	ClientUseCase usecase.ClientUseCase
	Logger        logger.LoggerInterface
	API           api.Api
}

// NewClientHandler creates a new instance of ClientHandler
func NewClientHandler(clientUseCase usecase.ClientUseCase, appLogger logger.LoggerInterface) *ClientHandler {
	return &ClientHandler{
		ClientUseCase: clientUseCase,
		Logger:        appLogger,
		API:           api.New(),
	}
}

// CreateHandler creates a pharmacy client
func (h *ClientHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.Logger.InfoContext(ctx, "Create client handler called")

	var req CreateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.ErrorContext(ctx, "Invalid request body for client creation", "error", err)
		h.API.BadRequest(ctx, w, "Invalid request body")
		return
	}

	if validationErrors := validator.ValidateStruct(&req); validationErrors != nil {
		h.Logger.WarnContext(ctx, "Validation failed for client creation", "errors", validationErrors)
		h.API.ValidationError(ctx, w, convertValidationErrors(validationErrors))
		return
	}

	client := &model.Client{
		ClientCode:  req.ClientCode,
		Name:        req.Name,
		Address:     req.Address,
		Phone:       req.Phone,
		Coordinates: req.Coordinates,
		SecteurCode: req.SecteurCode,
	}
	if err := h.ClientUseCase.CreateClient(ctx, client); err != nil {
		respondError(ctx, w, h.API, h.Logger, err)
		return
	}

	h.API.Created(ctx, w, client)
}

// ListHandler lists clients with pagination
func (h *ClientHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	offset, limit := parsePagination(r)

	clients, total, err := h.ClientUseCase.ListClients(ctx, offset, limit)
	if err != nil {
		respondError(ctx, w, h.API, h.Logger, err)
		return
	}

	h.API.SuccessWithMeta(ctx, w, clients, paginationMeta(offset, limit, total))
}

// GetByCodeHandler retrieves one client
func (h *ClientHandler) GetByCodeHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	client, err := h.ClientUseCase.GetClient(ctx, chi.URLParam(r, "clientCode"))
	if err != nil {
		respondError(ctx, w, h.API, h.Logger, err)
		return
	}

	h.API.Success(ctx, w, client)
}

// UpdateHandler applies a partial update to a client
func (h *ClientHandler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	clientCode := chi.URLParam(r, "clientCode")

	var req UpdateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.ErrorContext(ctx, "Invalid request body for client update", "error", err)
		h.API.BadRequest(ctx, w, "Invalid request body")
		return
	}

	client, err := h.ClientUseCase.UpdateClient(ctx, clientCode, &usecase.UpdateClientInput{
		Name:        req.Name,
		Address:     req.Address,
		Phone:       req.Phone,
		Coordinates: req.Coordinates,
		SecteurCode: req.SecteurCode,
	})
	if err != nil {
		respondError(ctx, w, h.API, h.Logger, err)
		return
	}

	h.API.Success(ctx, w, client)
}

// DeleteHandler removes a client
func (h *ClientHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	clientCode := chi.URLParam(r, "clientCode")

	if err := h.ClientUseCase.DeleteClient(ctx, clientCode); err != nil {
		respondError(ctx, w, h.API, h.Logger, err)
		return
	}

	h.API.Success(ctx, w, map[string]string{"message": "Client deleted successfully"})
}

// GetBySecteurHandler lists the clients of one secteur
func (h *ClientHandler) GetBySecteurHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	clients, err := h.ClientUseCase.GetBySecteur(ctx, chi.URLParam(r, "secteurCode"))
	if err != nil {
		respondError(ctx, w, h.API, h.Logger, err)
		return
	}

	h.API.Success(ctx, w, clients)
}
