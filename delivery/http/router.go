package http

import (
	"net/http"

	"pharmachain-service/domain/model"
	"pharmachain-service/pkg/api"
	"pharmachain-service/pkg/logger"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router wires the handlers into the HTTP surface
type Router struct {
	BordereauHandler    *BordereauHandler
	DeliveryItemHandler *DeliveryItemHandler
	TransferHandler     *TransferHandler
	AdminHandler        *AdminHandler
	ManagerHandler      *ManagerHandler
	DriverHandler       *DriverHandler
	ClientHandler       *ClientHandler
	HealthHandler       *HealthHandler
	AppLogger           logger.LoggerInterface
}

// NewRouter creates a new Router
func NewRouter(
	bordereauHandler *BordereauHandler,
	deliveryItemHandler *DeliveryItemHandler,
	transferHandler *TransferHandler,
	adminHandler *AdminHandler,
	managerHandler *ManagerHandler,
	driverHandler *DriverHandler,
	clientHandler *ClientHandler,
	healthHandler *HealthHandler,
	appLogger logger.LoggerInterface,
) *Router {
	return &Router{
		BordereauHandler:    bordereauHandler,
		DeliveryItemHandler: deliveryItemHandler,
		TransferHandler:     transferHandler,
		AdminHandler:        adminHandler,
		ManagerHandler:      managerHandler,
		DriverHandler:       driverHandler,
		ClientHandler:       clientHandler,
		HealthHandler:       healthHandler,
		AppLogger:           appLogger,
	}
}

// SetupRoutes builds the chi handler tree
func (r *Router) SetupRoutes() http.Handler {
	router := chi.NewRouter()
	apiClient := api.New()

	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)
	router.Use(middleware.Heartbeat("/ping"))
	router.Use(LoggingMiddleware(r.AppLogger))

	router.Get("/health", r.HealthHandler.HealthCheckHandler)
	router.Handle("/metrics", promhttp.Handler())

	staff := RequireRole(r.AppLogger, apiClient, model.RoleAdmin, model.RoleManager)
	adminOnly := RequireRole(r.AppLogger, apiClient, model.RoleAdmin)
	anyRole := RequireRole(r.AppLogger, apiClient, model.RoleAdmin, model.RoleManager, model.RoleDriver)

	router.Route("/api/v1", func(v1 chi.Router) {
		v1.Use(IdentityMiddleware(r.AppLogger, apiClient))

		v1.Route("/bordereaux", func(bordereaux chi.Router) {
			bordereaux.With(anyRole).Post("/scan", r.BordereauHandler.ScanHandler)
			bordereaux.With(anyRole).Get("/", r.BordereauHandler.ListHandler)
			bordereaux.With(anyRole).Get("/{number}", r.BordereauHandler.GetByNumberHandler)
			bordereaux.With(anyRole).Get("/{number}/items", r.BordereauHandler.GetItemsHandler)
			bordereaux.With(staff).Put("/{number}", r.BordereauHandler.UpdateHandler)
			bordereaux.With(staff).Put("/{number}/assignments", r.BordereauHandler.ReassignHandler)
			bordereaux.With(adminOnly).Delete("/{number}", r.BordereauHandler.DeleteHandler)
			bordereaux.With(anyRole).Post("/{number}/transfers", r.TransferHandler.CreateHandler)
			bordereaux.With(anyRole).Get("/{number}/transfers", r.TransferHandler.GetByBordereauHandler)
		})

		v1.Route("/delivery-items", func(items chi.Router) {
			items.With(anyRole).Get("/", r.DeliveryItemHandler.ListHandler)
			items.With(anyRole).Get("/{blNumber}", r.DeliveryItemHandler.GetByBLNumberHandler)
			items.With(anyRole).Put("/{blNumber}", r.DeliveryItemHandler.UpdateHandler)
			items.With(anyRole).Put("/{blNumber}/proof", r.DeliveryItemHandler.UpdateProofHandler)
			items.With(adminOnly).Delete("/{blNumber}", r.DeliveryItemHandler.DeleteHandler)
		})

		v1.Route("/transfers", func(transfers chi.Router) {
			transfers.With(anyRole).Get("/", r.TransferHandler.ListHandler)
			transfers.With(anyRole).Get("/{id}", r.TransferHandler.GetByIDHandler)
			transfers.With(anyRole).Get("/barcode/{barcode}", r.TransferHandler.GetByBarcodeHandler)
			transfers.With(anyRole).Patch("/{id}/status", r.TransferHandler.UpdateStatusHandler)
			transfers.With(adminOnly).Delete("/{id}", r.TransferHandler.DeleteHandler)
		})

		v1.Route("/admins", func(admins chi.Router) {
			admins.Use(adminOnly)
			admins.Post("/", r.AdminHandler.CreateHandler)
			admins.Get("/", r.AdminHandler.ListHandler)
			admins.Get("/{code}", r.AdminHandler.GetByCodeHandler)
			admins.Get("/by-external-id/{externalId}", r.AdminHandler.GetByExternalIDHandler)
			admins.Put("/{code}", r.AdminHandler.UpdateHandler)
			admins.Put("/{code}/password", r.AdminHandler.ResetPasswordHandler)
			admins.Patch("/{code}/status", r.AdminHandler.SetActiveHandler)
			admins.Delete("/{code}", r.AdminHandler.DeleteHandler)
		})

		v1.Route("/managers", func(managers chi.Router) {
			managers.With(adminOnly).Post("/", r.ManagerHandler.CreateHandler)
			managers.With(staff).Get("/", r.ManagerHandler.ListHandler)
			managers.With(staff).Get("/{code}", r.ManagerHandler.GetByCodeHandler)
			managers.With(staff).Get("/by-external-id/{externalId}", r.ManagerHandler.GetByExternalIDHandler)
			managers.With(staff).Get("/{code}/drivers", r.ManagerHandler.GetDriversHandler)
			managers.With(staff).Get("/{code}/clients", r.ManagerHandler.GetClientsHandler)
			managers.With(staff).Get("/{code}/bordereaux", r.ManagerHandler.GetBordereauxHandler)
			managers.With(adminOnly).Put("/{code}", r.ManagerHandler.UpdateHandler)
			managers.With(adminOnly).Put("/{code}/password", r.ManagerHandler.ResetPasswordHandler)
			managers.With(adminOnly).Patch("/{code}/status", r.ManagerHandler.SetActiveHandler)
			managers.With(adminOnly).Delete("/{code}", r.ManagerHandler.DeleteHandler)
		})

		v1.Route("/drivers", func(drivers chi.Router) {
			drivers.With(staff).Post("/", r.DriverHandler.CreateHandler)
			drivers.With(anyRole).Get("/", r.DriverHandler.ListHandler)
			drivers.With(anyRole).Get("/{code}", r.DriverHandler.GetByCodeHandler)
			drivers.With(anyRole).Get("/by-external-id/{externalId}", r.DriverHandler.GetByExternalIDHandler)
			drivers.With(anyRole).Get("/{code}/bordereaux", r.DriverHandler.GetBordereauxHandler)
			drivers.With(anyRole).Get("/{code}/delivery-items", r.DriverHandler.GetDeliveryItemsHandler)
			drivers.With(staff).Put("/{code}", r.DriverHandler.UpdateHandler)
			drivers.With(staff).Put("/{code}/password", r.DriverHandler.ResetPasswordHandler)
			drivers.With(staff).Patch("/{code}/status", r.DriverHandler.SetActiveHandler)
			drivers.With(staff).Delete("/{code}", r.DriverHandler.DeleteHandler)
		})

		v1.Route("/clients", func(clients chi.Router) {
			clients.With(staff).Post("/", r.ClientHandler.CreateHandler)
			clients.With(anyRole).Get("/", r.ClientHandler.ListHandler)
			clients.With(anyRole).Get("/{clientCode}", r.ClientHandler.GetByCodeHandler)
			clients.With(anyRole).Get("/secteur/{secteurCode}", r.ClientHandler.GetBySecteurHandler)
			clients.With(staff).Put("/{clientCode}", r.ClientHandler.UpdateHandler)
			clients.With(adminOnly).Delete("/{clientCode}", r.ClientHandler.DeleteHandler)
		})
	})

	return router
}
