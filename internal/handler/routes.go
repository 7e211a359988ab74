package handler

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/segyhp/trainer-billing/pkg/response"
)

// NewRouter wires every endpoint behind access logging and CORS. Routes under
// /api/v1 require the trainer header.
func NewRouter(billing *BillingHandler, health *HealthHandler, metrics http.Handler, log *slog.Logger) http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/health", health.Health).Methods(http.MethodGet)
	router.HandleFunc("/health/ready", health.Ready).Methods(http.MethodGet)
	if metrics != nil {
		router.Handle("/metrics", metrics).Methods(http.MethodGet)
	}

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(TrainerScope)

	api.HandleFunc("/packages", billing.CreatePackage).Methods(http.MethodPost)
	api.HandleFunc("/packages", billing.ListPackages).Methods(http.MethodGet)
	api.HandleFunc("/packages/{packageId}", billing.GetPackage).Methods(http.MethodGet)
	api.HandleFunc("/packages/{packageId}/balance", billing.GetBalance).Methods(http.MethodGet)
	api.HandleFunc("/packages/{packageId}/deactivate", billing.DeactivatePackage).Methods(http.MethodPost)
	api.HandleFunc("/packages/{packageId}/payments", billing.AddPayment).Methods(http.MethodPost)
	api.HandleFunc("/packages/{packageId}/payments", billing.ListPayments).Methods(http.MethodGet)
	api.HandleFunc("/packages/{packageId}/sessions", billing.ScheduleSession).Methods(http.MethodPost)
	api.HandleFunc("/packages/{packageId}/sessions", billing.ListSessions).Methods(http.MethodGet)
	api.HandleFunc("/packages/{packageId}/audit", billing.ListAuditLog).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{sessionId}/complete", billing.CompleteSession).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{sessionId}/cancel", billing.CancelSession).Methods(http.MethodPost)
	api.HandleFunc("/fees/preview", billing.PreviewFees).Methods(http.MethodPost)
	api.HandleFunc("/pricing/preview", billing.PreviewPricing).Methods(http.MethodPost)

	return response.CORSMiddleware(response.LoggingMiddleware(log)(router))
}
