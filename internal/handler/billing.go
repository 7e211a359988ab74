package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/segyhp/trainer-billing/internal/domain"
	"github.com/segyhp/trainer-billing/pkg/response"
)

// LedgerService is the billing core consumed by the HTTP layer.
type LedgerService interface {
	CreatePackage(ctx context.Context, trainerID uuid.UUID, req *domain.CreatePackageRequest) (*domain.CreatePackageResponse, error)
	GetPackage(ctx context.Context, trainerID, packageID uuid.UUID) (*domain.Package, error)
	GetBalance(ctx context.Context, trainerID, packageID uuid.UUID) (*domain.PackageBalance, error)
	ListPackages(ctx context.Context, trainerID uuid.UUID, clientID *uuid.UUID) ([]*domain.Package, error)
	DeactivatePackage(ctx context.Context, trainerID, packageID uuid.UUID) (*domain.Package, error)

	AddPayment(ctx context.Context, trainerID, packageID uuid.UUID, req *domain.AddPaymentRequest) (*domain.AddPaymentResponse, error)
	ListPayments(ctx context.Context, trainerID, packageID uuid.UUID) ([]*domain.Payment, error)

	ScheduleSession(ctx context.Context, trainerID, packageID uuid.UUID, req *domain.ScheduleSessionRequest) (*domain.Session, error)
	ListSessions(ctx context.Context, trainerID, packageID uuid.UUID) ([]*domain.Session, error)
	CompleteSession(ctx context.Context, trainerID, sessionID uuid.UUID) (*domain.CompleteSessionResponse, error)
	CancelSession(ctx context.Context, trainerID, sessionID uuid.UUID) (*domain.Session, error)

	ListAuditLog(ctx context.Context, trainerID, packageID uuid.UUID) ([]*domain.FeeAuditLogEntry, error)

	PreviewFees(gross int64) (domain.FeeBreakdown, error)
	PreviewPricing(req *domain.PricingPreviewRequest) (domain.PricingResult, error)
}

type BillingHandler struct {
	service   LedgerService
	validator *validator.Validate
	log       *slog.Logger
}

func NewBillingHandler(service LedgerService, log *slog.Logger) *BillingHandler {
	v := validator.New()
	_ = v.RegisterValidation("payment_method", func(fl validator.FieldLevel) bool {
		return domain.PaymentMethod(fl.Field().String()).IsValid()
	})

	return &BillingHandler{
		service:   service,
		validator: v,
		log:       log,
	}
}

// CreatePackage handles POST /packages
func (h *BillingHandler) CreatePackage(w http.ResponseWriter, r *http.Request) {
	var req domain.CreatePackageRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.service.CreatePackage(r.Context(), trainerID(r), &req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	response.Created(w, resp)
}

// ListPackages handles GET /packages?client_id=
func (h *BillingHandler) ListPackages(w http.ResponseWriter, r *http.Request) {
	var clientID *uuid.UUID
	if raw := r.URL.Query().Get("client_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(w, "Invalid client_id", err)
			return
		}
		clientID = &id
	}

	packages, err := h.service.ListPackages(r.Context(), trainerID(r), clientID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	response.Success(w, packages)
}

// GetPackage handles GET /packages/{packageId}
func (h *BillingHandler) GetPackage(w http.ResponseWriter, r *http.Request) {
	packageID, ok := pathID(w, r, "packageId")
	if !ok {
		return
	}

	pkg, err := h.service.GetPackage(r.Context(), trainerID(r), packageID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	response.Success(w, pkg)
}

// GetBalance handles GET /packages/{packageId}/balance
func (h *BillingHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	packageID, ok := pathID(w, r, "packageId")
	if !ok {
		return
	}

	balance, err := h.service.GetBalance(r.Context(), trainerID(r), packageID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	response.Success(w, balance)
}

// DeactivatePackage handles POST /packages/{packageId}/deactivate
func (h *BillingHandler) DeactivatePackage(w http.ResponseWriter, r *http.Request) {
	packageID, ok := pathID(w, r, "packageId")
	if !ok {
		return
	}

	pkg, err := h.service.DeactivatePackage(r.Context(), trainerID(r), packageID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	response.Success(w, pkg)
}

// AddPayment handles POST /packages/{packageId}/payments
func (h *BillingHandler) AddPayment(w http.ResponseWriter, r *http.Request) {
	packageID, ok := pathID(w, r, "packageId")
	if !ok {
		return
	}

	var req domain.AddPaymentRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.service.AddPayment(r.Context(), trainerID(r), packageID, &req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	response.Created(w, resp)
}

// ListPayments handles GET /packages/{packageId}/payments
func (h *BillingHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	packageID, ok := pathID(w, r, "packageId")
	if !ok {
		return
	}

	payments, err := h.service.ListPayments(r.Context(), trainerID(r), packageID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	response.Success(w, payments)
}

// ScheduleSession handles POST /packages/{packageId}/sessions
func (h *BillingHandler) ScheduleSession(w http.ResponseWriter, r *http.Request) {
	packageID, ok := pathID(w, r, "packageId")
	if !ok {
		return
	}

	var req domain.ScheduleSessionRequest
	if !h.decode(w, r, &req) {
		return
	}

	session, err := h.service.ScheduleSession(r.Context(), trainerID(r), packageID, &req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	response.Created(w, session)
}

// ListSessions handles GET /packages/{packageId}/sessions
func (h *BillingHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	packageID, ok := pathID(w, r, "packageId")
	if !ok {
		return
	}

	sessions, err := h.service.ListSessions(r.Context(), trainerID(r), packageID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	response.Success(w, sessions)
}

// ListAuditLog handles GET /packages/{packageId}/audit
func (h *BillingHandler) ListAuditLog(w http.ResponseWriter, r *http.Request) {
	packageID, ok := pathID(w, r, "packageId")
	if !ok {
		return
	}

	entries, err := h.service.ListAuditLog(r.Context(), trainerID(r), packageID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	response.Success(w, entries)
}

// CompleteSession handles POST /sessions/{sessionId}/complete
func (h *BillingHandler) CompleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathID(w, r, "sessionId")
	if !ok {
		return
	}

	resp, err := h.service.CompleteSession(r.Context(), trainerID(r), sessionID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	response.Success(w, resp)
}

// CancelSession handles POST /sessions/{sessionId}/cancel
func (h *BillingHandler) CancelSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathID(w, r, "sessionId")
	if !ok {
		return
	}

	session, err := h.service.CancelSession(r.Context(), trainerID(r), sessionID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	response.Success(w, session)
}

// PreviewFees handles POST /fees/preview
func (h *BillingHandler) PreviewFees(w http.ResponseWriter, r *http.Request) {
	var req domain.FeePreviewRequest
	if !h.decode(w, r, &req) {
		return
	}

	breakdown, err := h.service.PreviewFees(req.GrossAmount)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	response.Success(w, breakdown)
}

// PreviewPricing handles POST /pricing/preview
func (h *BillingHandler) PreviewPricing(w http.ResponseWriter, r *http.Request) {
	var req domain.PricingPreviewRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.service.PreviewPricing(&req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	response.Success(w, result)
}

// decode reads and validates a JSON body, answering 400 itself on failure.
func (h *BillingHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return false
	}

	if err := h.validator.Struct(dst); err != nil {
		writeValidationError(w, err)
		return false
	}

	return true
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		response.BadRequest(w, "Invalid "+name, err)
		return uuid.Nil, false
	}
	return id, true
}

func trainerID(r *http.Request) uuid.UUID {
	id, _ := TrainerIDFromContext(r.Context())
	return id
}
