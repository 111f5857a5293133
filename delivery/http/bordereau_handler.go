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

// BordereauHandler handles HTTP requests for bordereau operations
type BordereauHandler struct {
	ScanUseCase      usecase.ScanUseCase
	BordereauUseCase usecase.BordereauUseCase
	Logger           logger.LoggerInterface
	API              api.Api
}

// NewBordereauHandler creates a new instance of BordereauHandler
func NewBordereauHandler(scanUseCase usecase.ScanUseCase, bordereauUseCase usecase.BordereauUseCase, appLogger logger.LoggerInterface) *BordereauHandler {
	return &BordereauHandler{
		ScanUseCase:      scanUseCase,
		BordereauUseCase: bordereauUseCase,
		Logger:           appLogger,
		API:              api.New(),
	}
}

// ScanHandler ingests one scanned bordereau with its delivery items
func (h *BordereauHandler) ScanHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.Logger.InfoContext(ctx, "Scan bordereau handler called")

	var req ScanBordereauRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.ErrorContext(ctx, "Invalid request body for scan", "error", err)
		h.API.BadRequest(ctx, w, "Invalid request body")
		return
	}

	if validationErrors := validator.ValidateStruct(&req); validationErrors != nil {
		h.Logger.WarnContext(ctx, "Validation failed for scan", "errors", validationErrors)
		h.API.ValidationError(ctx, w, convertValidationErrors(validationErrors))
		return
	}

	input := &usecase.ScanBordereauInput{
		BordereauNumber: req.BordereauNumber,
		DeliveryDate:    req.DeliveryDate,
		DriverCode:      req.DriverCode,
		ManagerCode:     req.ManagerCode,
		Items:           make([]usecase.ScanItemInput, 0, len(req.Items)),
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, usecase.ScanItemInput{
			BLNumber:      item.BLNumber,
			ClientCode:    item.ClientCode,
			ClientName:    item.ClientName,
			ClientAddress: item.ClientAddress,
			NombreColis:   item.NombreColis,
			NombreSachets: item.NombreSachets,
		})
	}

	bordereau, err := h.ScanUseCase.ScanBordereau(ctx, input)
	if err != nil {
		respondError(ctx, w, h.API, h.Logger, err)
		return
	}

	h.API.Success(ctx, w, bordereau)
}

// ListHandler lists bordereaux with pagination
func (h *BordereauHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	offset, limit := parsePagination(r)

	bordereaux, total, err := h.BordereauUseCase.ListBordereaux(ctx, offset, limit)
	if err != nil {
		respondError(ctx, w, h.API, h.Logger, err)
		return
	}

	h.API.SuccessWithMeta(ctx, w, bordereaux, paginationMeta(offset, limit, total))
}

// GetByNumberHandler retrieves one bordereau with its delivery items
func (h *BordereauHandler) GetByNumberHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	bordereau, err := h.BordereauUseCase.GetBordereau(ctx, chi.URLParam(r, "number"))
	if err != nil {
		respondError(ctx, w, h.API, h.Logger, err)
		return
	}

	h.API.Success(ctx, w, bordereau)
}

// UpdateHandler applies a partial update to a bordereau
func (h *BordereauHandler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	number := chi.URLParam(r, "number")

	var req UpdateBordereauRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.ErrorContext(ctx, "Invalid request body for bordereau update", "error", err)
		h.API.BadRequest(ctx, w, "Invalid request body")
		return
	}

	input := &usecase.UpdateBordereauInput{
		DeliveryDate: req.DeliveryDate,
	}
	if req.Status != nil {
		status := model.BordereauStatus(*req.Status)
		input.Status = &status
	}

	bordereau, err := h.BordereauUseCase.UpdateBordereau(ctx, number, input)
	if err != nil {
		respondError(ctx, w, h.API, h.Logger, err)
		return
	}

	h.API.Success(ctx, w, bordereau)
}

// DeleteHandler removes a bordereau and its delivery items
func (h *BordereauHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	number := chi.URLParam(r, "number")

	if err := h.BordereauUseCase.DeleteBordereau(ctx, number); err != nil {
		respondError(ctx, w, h.API, h.Logger, err)
		return
	}

	h.API.Success(ctx, w, map[string]string{"message": "Bordereau deleted successfully"})
}

// ReassignHandler changes the current driver and/or secteur
func (h *BordereauHandler) ReassignHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	number := chi.URLParam(r, "number")

	var req ReassignBordereauRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.ErrorContext(ctx, "Invalid request body for reassignment", "error", err)
		h.API.BadRequest(ctx, w, "Invalid request body")
		return
	}

	bordereau, err := h.BordereauUseCase.Reassign(ctx, number, &usecase.ReassignBordereauInput{
		DriverCode:  req.DriverCode,
		ManagerCode: req.ManagerCode,
	})
	if err != nil {
		respondError(ctx, w, h.API, h.Logger, err)
		return
	}

	h.API.Success(ctx, w, bordereau)
}

// GetItemsHandler lists the delivery items of one bordereau
func (h *BordereauHandler) GetItemsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	items, err := h.BordereauUseCase.GetDeliveryItems(ctx, chi.URLParam(r, "number"))
	if err != nil {
		respondError(ctx, w, h.API, h.Logger, err)
		return
	}

	h.API.Success(ctx, w, items)
}
