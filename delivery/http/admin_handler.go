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

// AdminHandler handles HTTP requests for admin operations
type AdminHandler struct {
	AdminUseCase usecase.AdminUseCase
	Logger       logger.LoggerInterface
	API          api.Api
}

// NewAdminHandler creates a new instance of AdminHandler
func NewAdminHandler(adminUseCase usecase.AdminUseCase, appLogger logger.LoggerInterface) *AdminHandler {
	return &AdminHandler{
		AdminUseCase: adminUseCase,
		Logger:       appLogger,
		API:          api.New(),
	}
}

// CreateHandler provisions an admin account
func (h *AdminHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.Logger.InfoContext(ctx, "Create admin handler called")

	var req CreateAdminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.ErrorContext(ctx, "Invalid request body for admin creation", "error", err)
		h.API.BadRequest(ctx, w, "Invalid request body")
		return
	}

	if validationErrors := validator.ValidateStruct(&req); validationErrors != nil {
		h.Logger.WarnContext(ctx, "Validation failed for admin creation", "errors", validationErrors)
		h.API.ValidationError(ctx, w, convertValidationErrors(validationErrors))
		return
	}

	admin, err := h.AdminUseCase.CreateAdmin(ctx, &usecase.CreateAdminInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Code:      req.Code,
	})
	if err != nil {
		respondError(ctx, w, h.API, h.Logger, err)
		return
	}

	h.API.Created(ctx, w, admin)
}

// ListHandler lists admins with pagination
func (h *AdminHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	offset, limit := parsePagination(r)

	admins, total, err := h.AdminUseCase.ListAdmins(ctx, offset, limit)
	if err != nil {
		respondError(ctx, w, h.API, h.Logger, err)
		return
	}

	h.API.SuccessWithMeta(ctx, w, admins, paginationMeta(offset, limit, total))
}

// GetByCodeHandler retrieves one admin
func (h *AdminHandler) GetByCodeHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	admin, err := h.AdminUseCase.GetAdmin(ctx, chi.URLParam(r, "code"))
	if err != nil {
		respondError(ctx, w, h.API, h.Logger, err)
		return
	}

	h.API.Success(ctx, w, admin)
}

// GetByExternalIDHandler resolves an admin from its identity provider id
func (h *AdminHandler) GetByExternalIDHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	admin, err := h.AdminUseCase.GetAdminByExternalID(ctx, chi.URLParam(r, "externalId"))
	if err != nil {
		respondError(ctx, w, h.API, h.Logger, err)
		return
	}

	h.API.Success(ctx, w, admin)
}

// UpdateHandler applies a partial update to an admin
func (h *AdminHandler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	code := chi.URLParam(r, "code")

	var req UpdateAdminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.ErrorContext(ctx, "Invalid request body for admin update", "error", err)
		h.API.BadRequest(ctx, w, "Invalid request body")
		return
	}

	if validationErrors := validator.ValidateStruct(&req); validationErrors != nil {
		h.API.ValidationError(ctx, w, convertValidationErrors(validationErrors))
		return
	}

	admin, err := h.AdminUseCase.UpdateAdmin(ctx, code, &usecase.UpdateAdminInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		respondError(ctx, w, h.API, h.Logger, err)
		return
	}

	h.API.Success(ctx, w, admin)
}

// DeleteHandler removes an admin, remote identity first
func (h *AdminHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	code := chi.URLParam(r, "code")

	if err := h.AdminUseCase.DeleteAdmin(ctx, code); err != nil {
		respondError(ctx, w, h.API, h.Logger, err)
		return
	}

	h.API.Success(ctx, w, map[string]string{"message": "Admin deleted successfully"})
}

// ResetPasswordHandler resets the admin's remote credential
func (h *AdminHandler) ResetPasswordHandler(w http.ResponseWriter, r *http.Request) {
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

	if err := h.AdminUseCase.ResetPassword(ctx, code, req.Password, req.Temporary); err != nil {
		respondError(ctx, w, h.API, h.Logger, err)
		return
	}

	h.API.Success(ctx, w, map[string]string{"message": "Password reset successfully"})
}

// SetActiveHandler enables or disables an admin account
func (h *AdminHandler) SetActiveHandler(w http.ResponseWriter, r *http.Request) {
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

	admin, err := h.AdminUseCase.SetActive(ctx, code, *req.Active)
	if err != nil {
		respondError(ctx, w, h.API, h.Logger, err)
		return
	}

	h.API.Success(ctx, w, admin)
}
