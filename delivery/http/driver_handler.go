package http

import (
	"encoding/json"
	"net/http"

	"pharmachain-service/pkg/api"
	"pharmachain-service/pkg/logger"
	"pharmachain-service/pkg/validator"
	"pharmachain-service/usecase"

	"github.com/go-chi/chi/v5"
)

// DriverHandler handles HTTP requests for driver operations
type DriverHandler struct {
	DriverUseCase usecase.DriverUseCase
	Logger        logger.LoggerInterface
	API           api.Api
}

// NewDriverHandler creates a new instance of DriverHandler
func NewDriverHandler(driverUseCase usecase.DriverUseCase, appLogger logger.LoggerInterface) *DriverHandler {
	return &DriverHandler{
		DriverUseCase: driverUseCase,
		Logger:        appLogger,
		API:           api.New(),
	}
}

// CreateHandler provisions a driver account
func (h *DriverHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.Logger.InfoContext(ctx, "Create driver handler called")

	var req CreateDriverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.ErrorContext(ctx, "Invalid request body for driver creation", "error", err)
		h.API.BadRequest(ctx, w, "Invalid request body")
		return
	}

	if validationErrors := validator.ValidateStruct(&req); validationErrors != nil {
		h.Logger.WarnContext(ctx, "Validation failed for driver creation", "errors", validationErrors)
		h.API.ValidationError(ctx, w, convertValidationErrors(validationErrors))
		return
	}

	driver, err := h.DriverUseCase.CreateDriver(ctx, &usecase.CreateDriverInput{
		Username:            req.Username,
		Email:               req.Email,
		Password:            req.Password,
		FirstName:           req.FirstName,
		LastName:            req.LastName,
		Code:                req.Code,
		LicenseNumber:       req.LicenseNumber,
		Phone:               req.Phone,
		AssignedManagerCode: req.AssignedManagerCode,
	})
	if err != nil {
		respondError(ctx, w, h.API, h.Logger, err)
		return
	}

	h.API.Created(ctx, w, driver)
}

// ListHandler lists drivers with pagination
func (h *DriverHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	offset, limit := parsePagination(r)

	drivers, total, err := h.DriverUseCase.ListDrivers(ctx, offset, limit)
	if err != nil {
		respondError(ctx, w, h.API, h.Logger, err)
		return
	}

	h.API.SuccessWithMeta(ctx, w, drivers, paginationMeta(offset, limit, total))
}

// GetByCodeHandler retrieves one driver
func (h *DriverHandler) GetByCodeHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	driver, err := h.DriverUseCase.GetDriver(ctx, chi.URLParam(r, "code"))
	if err != nil {
		respondError(ctx, w, h.API, h.Logger, err)
		return
	}

	h.API.Success(ctx, w, driver)
}

// GetByExternalIDHandler resolves a driver from its identity provider id
func (h *DriverHandler) GetByExternalIDHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	driver, err := h.DriverUseCase.GetDriverByExternalID(ctx, chi.URLParam(r, "externalId"))
	if err != nil {
		respondError(ctx, w, h.API, h.Logger, err)
		return
	}

	h.API.Success(ctx, w, driver)
}

// UpdateHandler applies a partial update to a driver
func (h *DriverHandler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	code := chi.URLParam(r, "code")

	var req UpdateDriverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.ErrorContext(ctx, "Invalid request body for driver update", "error", err)
		h.API.BadRequest(ctx, w, "Invalid request body")
		return
	}

	if validationErrors := validator.ValidateStruct(&req); validationErrors != nil {
		h.API.ValidationError(ctx, w, convertValidationErrors(validationErrors))
		return
	}

	driver, err := h.DriverUseCase.UpdateDriver(ctx, code, &usecase.UpdateDriverInput{
		Email:               req.Email,
		FirstName:           req.FirstName,
		LastName:            req.LastName,
		LicenseNumber:       req.LicenseNumber,
		Phone:               req.Phone,
		AssignedManagerCode: req.AssignedManagerCode,
	})
	if err != nil {
		respondError(ctx, w, h.API, h.Logger, err)
		return
	}

	h.API.Success(ctx, w, driver)
}

// DeleteHandler removes a driver, remote identity first
func (h *DriverHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	code := chi.URLParam(r, "code")

	if err := h.DriverUseCase.DeleteDriver(ctx, code); err != nil {
		respondError(ctx, w, h.API, h.Logger, err)
		return
	}

	h.API.Success(ctx, w, map[string]string{"message": "Driver deleted successfully"})
}

// ResetPasswordHandler resets the driver's remote credential
func (h *DriverHandler) ResetPasswordHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	code := chi.URLParam(r, "code")

	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.API.BadRequest(ctx, w, "Invalid request body")
		return
	}

	if validationErrors := validator.ValidateStruct(&req); validationErrors != nil {
		h.API.ValidationError(ctx, w, convertValidationErrors(validationErrors))
		return
	}

	if err := h.DriverUseCase.ResetPassword(ctx, code, req.Password, req.Temporary); err != nil {
		respondError(ctx, w, h.API, h.Logger, err)
		return
	}

	h.API.Success(ctx, w, map[string]string{"message": "Password reset successfully"})
}

// SetActiveHandler enables or disables a driver account
func (h *DriverHandler) SetActiveHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	code := chi.URLParam(r, "code")

	var req SetActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.API.BadRequest(ctx, w, "Invalid request body")
		return
	}

	if validationErrors := validator.ValidateStruct(&req); validationErrors != nil {
		h.API.ValidationError(ctx, w, convertValidationErrors(validationErrors))
		return
	}

	driver, err := h.DriverUseCase.SetActive(ctx, code, *req.Active)
	if err != nil {
		respondError(ctx, w, h.API, h.Logger, err)
		return
	}

	h.API.Success(ctx, w, driver)
}

// GetBordereauxHandler lists the bordereaux currently held by a driver
func (h *DriverHandler) GetBordereauxHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	bordereaux, err := h.DriverUseCase.GetBordereaux(ctx, chi.URLParam(r, "code"))
	if err != nil {
		respondError(ctx, w, h.API, h.Logger, err)
		return
	}

	h.API.Success(ctx, w, bordereaux)
}

// GetDeliveryItemsHandler lists the delivery items on a driver's bordereaux
func (h *DriverHandler) GetDeliveryItemsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	items, err := h.DriverUseCase.GetDeliveryItems(ctx, chi.URLParam(r, "code"))
	if err != nil {
		respondError(ctx, w, h.API, h.Logger, err)
		return
	}

	h.API.Success(ctx, w, items)
}
