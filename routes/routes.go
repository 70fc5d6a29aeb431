package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/voyagecm/policy-api/app"
	"github.com/voyagecm/policy-api/handlers"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	policyHandler := handlers.NewPolicyHandler(deps.PolicyService, deps.Logger)
	fleetHandler := handlers.NewFleetHandler(deps.Repositories, deps.Logger)
	decisionHandler := handlers.NewDecisionHandler(deps.Repositories.DecisionLogs, deps.Logger)
	healthHandler := handlers.NewHealthHandler(deps.DB.DB, deps.Logger)

	// Health check endpoints
	r.Get("/healthz", healthHandler.HandleHealth)
	r.Get("/readyz", healthHandler.HandleReadiness)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Policy evaluations
		r.Route("/policies", func(r chi.Router) {
			r.Post("/plan-trip", policyHandler.HandlePlanTrip)
			r.Post("/reservation", policyHandler.HandleReservation)
			r.Post("/assign-driver", policyHandler.HandleAssignDriver)
			r.Post("/departure/{tripID}", policyHandler.HandleDeparture)
			r.Post("/transfer", policyHandler.HandleTransfer)
			r.Post("/maintenance/{busID}", policyHandler.HandleMaintenance)
		})

		// Operational dashboard
		r.Get("/statistics", policyHandler.HandleStatistics)

		// Fleet and customer management
		r.Route("/fleet", func(r chi.Router) {
			r.Post("/buses", fleetHandler.HandleCreateBus)
			r.Get("/buses", fleetHandler.HandleListBuses)
			r.Get("/buses/{busID}", fleetHandler.HandleGetBus)
			r.Post("/drivers", fleetHandler.HandleCreateDriver)
			r.Get("/drivers", fleetHandler.HandleListDrivers)
			r.Get("/drivers/{driverID}", fleetHandler.HandleGetDriver)
			r.Post("/users", fleetHandler.HandleCreateUser)
			r.Get("/users", fleetHandler.HandleListUsers)
			r.Get("/users/{userID}", fleetHandler.HandleGetUser)
		})

		r.Get("/trips", fleetHandler.HandleListTrips)
		r.Get("/trips/{tripID}", fleetHandler.HandleGetTrip)
		r.Get("/reservations", fleetHandler.HandleListReservations)
		r.Get("/reservations/{reservationNo}", fleetHandler.HandleGetReservation)

		// Decision audit trail
		r.Get("/decisions", decisionHandler.HandleListDecisions)
	})

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"endpoint not found"}`))
	})

	return r
}
