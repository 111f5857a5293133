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

// ManagerHandler handles HTTP requests for manager operations
type ManagerHandler struct {
	ManagerUseCase usecase.ManagerUseCase
	Logger         logger.LoggerInterface
	API            api.Api
}

// NewManagerHandler creates a new instance of ManagerHandler
func NewManagerHandler(managerUseCase usecase.ManagerUseCase, appLogger logger.LoggerInterface) *ManagerHandler {
	return &ManagerHandler{
		ManagerUseCase: managerUseCase,
		Logger:         appLogger,
		API:            api.New(),
	}
}

// CreateHandler provisions a manager account
func (h *ManagerHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.Logger.InfoContext(ctx, "Create manager handler called")

	var req CreateManagerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.ErrorContext(ctx, "Invalid request body for manager creation", "error", err)
		h.API.BadRequest(ctx, w, "Invalid request body")
		return
	}

	if validationErrors := validator.ValidateStruct(&req); validationErrors != nil {
		h.Logger.WarnContext(ctx, "Validation failed for manager creation", "errors", validationErrors)
		h.API.ValidationError(ctx, w, convertValidationErrors(validationErrors))
		return
	}

	manager, err := h.ManagerUseCase.CreateManager(ctx, &usecase.CreateManagerInput{
		Username:          req.Username,
		Email:             req.Email,
		Password:          req.Password,
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		Code:              req.Code,
		SecteurName:       req.SecteurName,
		Phone:             req.Phone,
		Address:           req.Address,
		AssignedAdminCode: req.AssignedAdminCode,
	})
	if err != nil {
		respondError(ctx, w, h.API, h.Logger, err)
		return
	}

	h.API.Created(ctx, w, manager)
}

// ListHandler lists managers with pagination
func (h *ManagerHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	offset, limit := parsePagination(r)

	managers, total, err := h.ManagerUseCase.ListManagers(ctx, offset, limit)
	if err != nil {
		respondError(ctx, w, h.API, h.Logger, err)
		return
	}

	h.API.SuccessWithMeta(ctx, w, managers, paginationMeta(offset, limit, total))
}

// GetByCodeHandler retrieves one manager
func (h *ManagerHandler) GetByCodeHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	manager, err := h.ManagerUseCase.GetManager(ctx, chi.URLParam(r, "code"))
	if err != nil {
		respondError(ctx, w, h.API, h.Logger, err)
		return
	}

	h.API.Success(ctx, w, manager)
}

// GetByExternalIDHandler resolves a manager from its identity provider id
func (h *ManagerHandler) GetByExternalIDHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	manager, err := h.ManagerUseCase.GetManagerByExternalID(ctx, chi.URLParam(r, "externalId"))
	if err != nil {
		respondError(ctx, w, h.API, h.Logger, err)
		return
	}

	h.API.Success(ctx, w, manager)
}

// UpdateHandler applies a partial update to a manager
func (h *ManagerHandler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	code := chi.URLParam(r, "code")

	var req UpdateManagerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.ErrorContext(ctx, "Invalid request body for manager update", "error", err)
		h.API.BadRequest(ctx, w, "Invalid request body")
		return
	}

	if validationErrors := validator.ValidateStruct(&req); validationErrors != nil {
		h.API.ValidationError(ctx, w, convertValidationErrors(validationErrors))
		return
	}

	manager, err := h.ManagerUseCase.UpdateManager(ctx, code, &usecase.UpdateManagerInput{
		Email:             req.Email,
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		SecteurName:       req.SecteurName,
		Phone:             req.Phone,
		Address:           req.Address,
		AssignedAdminCode: req.AssignedAdminCode,
	})
	if err != nil {
		respondError(ctx, w, h.API, h.Logger, err)
		return
	}

	h.API.Success(ctx, w, manager)
}

// DeleteHandler removes a manager, remote identity first
func (h *ManagerHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	code := chi.URLParam(r, "code")

	if err := h.ManagerUseCase.DeleteManager(ctx, code); err != nil {
		respondError(ctx, w, h.API, h.Logger, err)
		return
	}

	h.API.Success(ctx, w, map[string]string{"message": "Manager deleted successfully"})
}

// ResetPasswordHandler resets the manager's remote credential
func (h *ManagerHandler) ResetPasswordHandler(w http.ResponseWriter, r *http.Request) {
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

	if err := h.ManagerUseCase.ResetPassword(ctx, code, req.Password, req.Temporary); err != nil {
		respondError(ctx, w, h.API, h.Logger, err)
		return
	}

	h.API.Success(ctx, w, map[string]string{"message": "Password reset successfully"})
}

// SetActiveHandler enables or disables a manager account
func (h *ManagerHandler) SetActiveHandler(w http.ResponseWriter, r *http.Request) {
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

	manager, err := h.ManagerUseCase.SetActive(ctx, code, *req.Active)
	if err != nil {
		respondError(ctx, w, h.API, h.Logger, err)
		return
	}

	h.API.Success(ctx, w, manager)
}

// GetDriversHandler lists the drivers assigned to a manager
func (h *ManagerHandler) GetDriversHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	drivers, err := h.ManagerUseCase.GetDrivers(ctx, chi.URLParam(r, "code"))
	if err != nil {
		respondError(ctx, w, h.API, h.Logger, err)
		return
	}

	h.API.Success(ctx, w, drivers)
}

// GetClientsHandler lists the clients in a manager's secteur
func (h *ManagerHandler) GetClientsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	clients, err := h.ManagerUseCase.GetClients(ctx, chi.URLParam(r, "code"))
	if err != nil {
		respondError(ctx, w, h.API, h.Logger, err)
		return
	}

	h.API.Success(ctx, w, clients)
}

// GetBordereauxHandler lists the bordereaux of a manager's secteur
func (h *ManagerHandler) GetBordereauxHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	bordereaux, err := h.ManagerUseCase.GetBordereaux(ctx, chi.URLParam(r, "code"))
	if err != nil {
		respondError(ctx, w, h.API, h.Logger, err)
		return
	}

	h.API.Success(ctx, w, bordereaux)
}
