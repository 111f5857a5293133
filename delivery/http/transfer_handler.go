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

// TransferHandler handles HTTP requests for custody transfer operations
type TransferHandler struct {
	TransferUseCase usecase.TransferUseCase
	Logger          logger.LoggerInterface
	API             api.Api
}

// NewTransferHandler creates a new instance of TransferHandler
func NewTransferHandler(transferUseCase usecase.TransferUseCase, appLogger logger.LoggerInterface) *TransferHandler {
	return &TransferHandler{
		TransferUseCase: transferUseCase,
		Logger:          appLogger,
		API:             api.New(),
	}
}

// CreateHandler starts a custody transfer for one bordereau
func (h *TransferHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	number := chi.URLParam(r, "number")

	var req CreateTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.ErrorContext(ctx, "Invalid request body for transfer creation", "error", err)
		h.API.BadRequest(ctx, w, "Invalid request body")
		return
	}

	if validationErrors := validator.ValidateStruct(&req); validationErrors != nil {
		h.API.ValidationError(ctx, w, convertValidationErrors(validationErrors))
		return
	}

	transfer, err := h.TransferUseCase.CreateTransfer(ctx, &usecase.CreateTransferInput{
		BordereauNumber: number,
		FromDriverCode:  req.FromDriverCode,
		ToDriverCode:    req.ToDriverCode,
		TransferBarcode: req.TransferBarcode,
		Reason:          req.Reason,
	})
	if err != nil {
		respondError(ctx, w, h.API, h.Logger, err)
		return
	}

	h.API.Created(ctx, w, transfer)
}

// ListHandler lists transfers with pagination
func (h *TransferHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	offset, limit := parsePagination(r)

	transfers, total, err := h.TransferUseCase.ListTransfers(ctx, offset, limit)
	if err != nil {
		respondError(ctx, w, h.API, h.Logger, err)
		return
	}

	h.API.SuccessWithMeta(ctx, w, transfers, paginationMeta(offset, limit, total))
}

// GetByIDHandler retrieves one transfer
func (h *TransferHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	transfer, err := h.TransferUseCase.GetTransfer(ctx, chi.URLParam(r, "id"))
	if err != nil {
		respondError(ctx, w, h.API, h.Logger, err)
		return
	}

	h.API.Success(ctx, w, transfer)
}

// GetByBarcodeHandler retrieves a transfer by its barcode
func (h *TransferHandler) GetByBarcodeHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	transfer, err := h.TransferUseCase.GetTransferByBarcode(ctx, chi.URLParam(r, "barcode"))
	if err != nil {
		respondError(ctx, w, h.API, h.Logger, err)
		return
	}

	h.API.Success(ctx, w, transfer)
}

// UpdateStatusHandler moves a transfer through its lifecycle
func (h *TransferHandler) UpdateStatusHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	var req UpdateTransferStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.ErrorContext(ctx, "Invalid request body for transfer status update", "error", err)
		h.API.BadRequest(ctx, w, "Invalid request body")
		return
	}

	if validationErrors := validator.ValidateStruct(&req); validationErrors != nil {
		h.API.ValidationError(ctx, w, convertValidationErrors(validationErrors))
		return
	}

	transfer, err := h.TransferUseCase.UpdateTransferStatus(ctx, id, model.TransferStatus(req.Status))
	if err != nil {
		respondError(ctx, w, h.API, h.Logger, err)
		return
	}

	h.API.Success(ctx, w, transfer)
}

// DeleteHandler removes a transfer
func (h *TransferHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	if err := h.TransferUseCase.DeleteTransfer(ctx, id); err != nil {
		respondError(ctx, w, h.API, h.Logger, err)
		return
	}

	h.API.Success(ctx, w, map[string]string{"message": "Transfer deleted successfully"})
}

// GetByBordereauHandler lists the transfers of one bordereau
func (h *TransferHandler) GetByBordereauHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	transfers, err := h.TransferUseCase.GetByBordereau(ctx, chi.URLParam(r, "number"))
	if err != nil {
		respondError(ctx, w, h.API, h.Logger, err)
		return
	}

	h.API.Success(ctx, w, transfers)
}
