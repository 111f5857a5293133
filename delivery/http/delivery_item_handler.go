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

// DeliveryItemHandler handles HTTP requests for delivery item operations
type DeliveryItemHandler struct {
	ItemUseCase usecase.DeliveryItemUseCase
	Logger      logger.LoggerInterface
	API         api.Api
}

// NewDeliveryItemHandler creates a new instance of DeliveryItemHandler
func NewDeliveryItemHandler(itemUseCase usecase.DeliveryItemUseCase, appLogger logger.LoggerInterface) *DeliveryItemHandler {
	return &DeliveryItemHandler{
		ItemUseCase: itemUseCase,
		Logger:      appLogger,
		API:         api.New(),
	}
}

// ListHandler lists delivery items with pagination
func (h *DeliveryItemHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	offset, limit := parsePagination(r)

	items, total, err := h.ItemUseCase.ListDeliveryItems(ctx, offset, limit)
	if err != nil {
		respondError(ctx, w, h.API, h.Logger, err)
		return
	}

	h.API.SuccessWithMeta(ctx, w, items, paginationMeta(offset, limit, total))
}

// GetByBLNumberHandler retrieves one delivery item
func (h *DeliveryItemHandler) GetByBLNumberHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	item, err := h.ItemUseCase.GetDeliveryItem(ctx, chi.URLParam(r, "blNumber"))
	if err != nil {
		respondError(ctx, w, h.API, h.Logger, err)
		return
	}

	h.API.Success(ctx, w, item)
}

// UpdateHandler applies a partial update to a delivery item
func (h *DeliveryItemHandler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	blNumber := chi.URLParam(r, "blNumber")

	var req UpdateDeliveryItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.ErrorContext(ctx, "Invalid request body for delivery item update", "error", err)
		h.API.BadRequest(ctx, w, "Invalid request body")
		return
	}

	if validationErrors := validator.ValidateStruct(&req); validationErrors != nil {
		h.API.ValidationError(ctx, w, convertValidationErrors(validationErrors))
		return
	}

	input := &usecase.UpdateDeliveryItemInput{
		NombreColis:        req.NombreColis,
		NombreSachets:      req.NombreSachets,
		DeliveryNotes:      req.DeliveryNotes,
		RecipientSignature: req.RecipientSignature,
	}
	if req.Status != nil {
		status := model.DeliveryItemStatus(*req.Status)
		input.Status = &status
	}

	item, err := h.ItemUseCase.UpdateDeliveryItem(ctx, blNumber, input)
	if err != nil {
		respondError(ctx, w, h.API, h.Logger, err)
		return
	}

	h.API.Success(ctx, w, item)
}

// UpdateProofHandler records proof of delivery for an item
func (h *DeliveryItemHandler) UpdateProofHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	blNumber := chi.URLParam(r, "blNumber")

	var req ProofRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.ErrorContext(ctx, "Invalid request body for proof capture", "error", err)
		h.API.BadRequest(ctx, w, "Invalid request body")
		return
	}

	item, err := h.ItemUseCase.UpdateProof(ctx, blNumber, &usecase.ProofInput{
		DeliveryNotes:      req.DeliveryNotes,
		RecipientSignature: req.RecipientSignature,
	})
	if err != nil {
		respondError(ctx, w, h.API, h.Logger, err)
		return
	}

	h.API.Success(ctx, w, item)
}

// DeleteHandler removes a delivery item
func (h *DeliveryItemHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	blNumber := chi.URLParam(r, "blNumber")

	if err := h.ItemUseCase.DeleteDeliveryItem(ctx, blNumber); err != nil {
		respondError(ctx, w, h.API, h.Logger, err)
		return
	}

	h.API.Success(ctx, w, map[string]string{"message": "Delivery item deleted successfully"})
}
