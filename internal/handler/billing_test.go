package handler_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/trainer-billing/internal/domain"
	"github.com/segyhp/trainer-billing/internal/handler"
	"github.com/segyhp/trainer-billing/internal/mocks"
	customError "github.com/segyhp/trainer-billing/pkg/errors"
	"github.com/segyhp/trainer-billing/pkg/logger"
)

var trainerID = uuid.MustParse("7b0e6f0a-5d3c-4c55-9a4e-2f1d8c3b6a10")

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
}

func newTestRouter(svc *mocks.MockLedgerService) http.Handler {
	log := logger.NewWithWriter(io.Discard, "error", "json")
	health := handler.NewHealthHandler(okPinger{}, nil, 0)
	return handler.NewRouter(handler.NewBillingHandler(svc, log), health, nil, log)
}

func doRequest(t *testing.T, router http.Handler, method, path string, body interface{}, trainer string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = bytes.NewBufferString(b)
		default:
			raw, err := json.Marshal(b)
			require.NoError(t, err)
			reader = bytes.NewBuffer(raw)
		}
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if trainer != "" {
		req.Header.Set(handler.TrainerHeader, trainer)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func TestTrainerScope(t *testing.T) {
	tests := []struct {
		name    string
		trainer string
	}{
		{name: "missing header", trainer: ""},
		{name: "not a uuid", trainer: "trainer-1"},
		{name: "nil uuid", trainer: uuid.Nil.String()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mocks.MockLedgerService{}
			w, env := doRequest(t, newTestRouter(svc), http.MethodGet, "/api/v1/packages", nil, tt.trainer)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.False(t, env.Success)
			svc.AssertNotCalled(t, "ListPackages", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestBillingHandler_CreatePackage(t *testing.T) {
	clientID := uuid.New()

	tests := []struct {
		name           string
		requestBody    interface{}
		setupMock      func(*mocks.MockLedgerService)
		expectedStatus int
		expectedCode   string
		checkResponse  func(*testing.T, envelope)
	}{
		{
			name:        "successful package creation",
			requestBody: map[string]interface{}{"client_id": clientID, "gross_amount": 1000000, "total_sessions": 10},
			setupMock: func(svc *mocks.MockLedgerService) {
				pkg := &domain.Package{
					ID:                uuid.New(),
					TrainerID:         trainerID,
					ClientID:          clientID,
					GrossAmount:       1000000,
					VATAmount:         90909,
					CardFeeAmount:     31818,
					NetAmount:         877273,
					TotalSessions:     10,
					RemainingSessions: 10,
					SessionPrice:      100000,
					RemainingCredits:  877273,
					IsActive:          true,
				}
				svc.On("CreatePackage", mock.Anything, trainerID, mock.MatchedBy(func(req *domain.CreatePackageRequest) bool {
					return req.ClientID == clientID && req.GrossAmount == 1000000 &&
						req.TotalSessions != nil && *req.TotalSessions == 10 && req.SessionPrice == nil
				})).Return(&domain.CreatePackageResponse{Package: pkg}, nil).Once()
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, env envelope) {
				var resp domain.CreatePackageResponse
				require.NoError(t, json.Unmarshal(env.Data, &resp))
				assert.Equal(t, int64(90909), resp.Package.VATAmount)
				assert.Equal(t, int64(31818), resp.Package.CardFeeAmount)
				assert.Equal(t, int64(877273), resp.Package.NetAmount)
				assert.Equal(t, 10, resp.Package.RemainingSessions)
			},
		},
		{
			name:           "missing client id",
			requestBody:    map[string]interface{}{"gross_amount": 1000000, "total_sessions": 10},
			setupMock:      func(svc *mocks.MockLedgerService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "negative gross amount",
			requestBody:    map[string]interface{}{"client_id": clientID, "gross_amount": -5, "total_sessions": 10},
			setupMock:      func(svc *mocks.MockLedgerService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "session count beyond package capacity",
			requestBody:    map[string]interface{}{"client_id": clientID, "gross_amount": 1000000, "total_sessions": int64(1) << 31},
			setupMock:      func(svc *mocks.MockLedgerService) {},
			expectedStatus: http.StatusBadRequest,
			checkResponse: func(t *testing.T, env envelope) {
				assert.Contains(t, env.Error, "TotalSessions")
			},
		},
		{
			name:           "malformed body",
			requestBody:    "{not json",
			setupMock:      func(svc *mocks.MockLedgerService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "strict pricing mismatch",
			requestBody: map[string]interface{}{"client_id": clientID, "gross_amount": 1000000, "total_sessions": 9, "session_price": 100000},
			setupMock: func(svc *mocks.MockLedgerService) {
				svc.On("CreatePackage", mock.Anything, trainerID, mock.Anything).
					Return(nil, customError.WrapInconsistentPricing(1000000, 9, 100000)).Once()
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   customError.ErrCodeInconsistentPricing,
		},
		{
			name:        "missing pricing",
			requestBody: map[string]interface{}{"client_id": clientID, "gross_amount": 1000000},
			setupMock: func(svc *mocks.MockLedgerService) {
				svc.On("CreatePackage", mock.Anything, trainerID, mock.Anything).
					Return(nil, customError.WrapMissingPricing()).Once()
			},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   customError.ErrCodeMissingPricing,
		},
		{
			name:        "audit failure is a server error",
			requestBody: map[string]interface{}{"client_id": clientID, "gross_amount": 1000000, "total_sessions": 10},
			setupMock: func(svc *mocks.MockLedgerService) {
				svc.On("CreatePackage", mock.Anything, trainerID, mock.Anything).
					Return(nil, customError.WrapAuditWriteFailure(errors.New("pq: relation does not exist"))).Once()
			},
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   customError.ErrCodeAuditWriteFailure,
			checkResponse: func(t *testing.T, env envelope) {
				assert.Equal(t, "Internal server error", env.Message)
				assert.NotContains(t, env.Error, "pq:")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mocks.MockLedgerService{}
			tt.setupMock(svc)

			w, env := doRequest(t, newTestRouter(svc), http.MethodPost, "/api/v1/packages", tt.requestBody, trainerID.String())

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, env.Code)
			}
			if tt.checkResponse != nil {
				tt.checkResponse(t, env)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestBillingHandler_AddPayment(t *testing.T) {
	packageID := uuid.New()
	path := "/api/v1/packages/" + packageID.String() + "/payments"

	tests := []struct {
		name           string
		path           string
		requestBody    interface{}
		setupMock      func(*mocks.MockLedgerService)
		expectedStatus int
		expectedCode   string
	}{
		{
			name:        "successful payment",
			path:        path,
			requestBody: map[string]interface{}{"amount": 100000, "method": "card"},
			setupMock: func(svc *mocks.MockLedgerService) {
				svc.On("AddPayment", mock.Anything, trainerID, packageID, mock.MatchedBy(func(req *domain.AddPaymentRequest) bool {
					return req.Amount == 100000 && req.Method == domain.PaymentMethodCard
				})).Return(&domain.AddPaymentResponse{
					Payment: &domain.Payment{ID: uuid.New(), PackageID: packageID, Amount: 100000, VATAmount: 9091, CardFeeAmount: 3182, NetAmount: 87727},
					Balance: domain.PackageBalance{PackageID: packageID, RemainingCredits: 965000},
				}, nil).Once()
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "unknown payment method",
			path:           path,
			requestBody:    map[string]interface{}{"amount": 100000, "method": "crypto"},
			setupMock:      func(svc *mocks.MockLedgerService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "zero amount",
			path:           path,
			requestBody:    map[string]interface{}{"amount": 0, "method": "cash"},
			setupMock:      func(svc *mocks.MockLedgerService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid package id",
			path:           "/api/v1/packages/not-a-uuid/payments",
			requestBody:    map[string]interface{}{"amount": 100000, "method": "cash"},
			setupMock:      func(svc *mocks.MockLedgerService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "package not found",
			path:        path,
			requestBody: map[string]interface{}{"amount": 100000, "method": "transfer"},
			setupMock: func(svc *mocks.MockLedgerService) {
				svc.On("AddPayment", mock.Anything, trainerID, packageID, mock.Anything).
					Return(nil, customError.WrapPackageNotFound(packageID.String())).Once()
			},
			expectedStatus: http.StatusNotFound,
			expectedCode:   customError.ErrCodePackageNotFound,
		},
		{
			name:        "inactive package",
			path:        path,
			requestBody: map[string]interface{}{"amount": 100000, "method": "other"},
			setupMock: func(svc *mocks.MockLedgerService) {
				svc.On("AddPayment", mock.Anything, trainerID, packageID, mock.Anything).
					Return(nil, customError.WrapPackageInactive(packageID.String())).Once()
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   customError.ErrCodePackageInactive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mocks.MockLedgerService{}
			tt.setupMock(svc)

			w, env := doRequest(t, newTestRouter(svc), http.MethodPost, tt.path, tt.requestBody, trainerID.String())

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, env.Code)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestBillingHandler_CompleteSession(t *testing.T) {
	sessionID := uuid.New()
	path := "/api/v1/sessions/" + sessionID.String() + "/complete"

	t.Run("completed", func(t *testing.T) {
		svc := &mocks.MockLedgerService{}
		svc.On("CompleteSession", mock.Anything, trainerID, sessionID).Return(&domain.CompleteSessionResponse{
			Session: &domain.Session{ID: sessionID, Status: domain.SessionStatusCompleted},
			Balance: domain.PackageBalance{TotalSessions: 10, RemainingSessions: 9},
		}, nil).Once()

		w, env := doRequest(t, newTestRouter(svc), http.MethodPost, path, nil, trainerID.String())

		assert.Equal(t, http.StatusOK, w.Code)
		var resp domain.CompleteSessionResponse
		require.NoError(t, json.Unmarshal(env.Data, &resp))
		assert.Equal(t, 9, resp.Balance.RemainingSessions)
		svc.AssertExpectations(t)
	})

	t.Run("no sessions remaining", func(t *testing.T) {
		svc := &mocks.MockLedgerService{}
		svc.On("CompleteSession", mock.Anything, trainerID, sessionID).
			Return(nil, customError.WrapNoSessionsRemaining(uuid.NewString())).Once()

		w, env := doRequest(t, newTestRouter(svc), http.MethodPost, path, nil, trainerID.String())

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, customError.ErrCodeNoSessionsRemaining, env.Code)
		svc.AssertExpectations(t)
	})

	t.Run("terminal session", func(t *testing.T) {
		svc := &mocks.MockLedgerService{}
		svc.On("CompleteSession", mock.Anything, trainerID, sessionID).
			Return(nil, customError.WrapInvalidSessionTransition(sessionID.String(), "cancelled", "completed")).Once()

		w, env := doRequest(t, newTestRouter(svc), http.MethodPost, path, nil, trainerID.String())

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, customError.ErrCodeInvalidSessionTransition, env.Code)
	})
}

func TestBillingHandler_ListPackages(t *testing.T) {
	clientID := uuid.New()

	svc := &mocks.MockLedgerService{}
	svc.On("ListPackages", mock.Anything, trainerID, mock.MatchedBy(func(id *uuid.UUID) bool {
		return id != nil && *id == clientID
	})).Return([]*domain.Package{{ID: uuid.New(), ClientID: clientID}}, nil).Once()

	w, env := doRequest(t, newTestRouter(svc), http.MethodGet, "/api/v1/packages?client_id="+clientID.String(), nil, trainerID.String())

	assert.Equal(t, http.StatusOK, w.Code)
	var packages []*domain.Package
	require.NoError(t, json.Unmarshal(env.Data, &packages))
	assert.Len(t, packages, 1)
	svc.AssertExpectations(t)

	w, _ = doRequest(t, newTestRouter(svc), http.MethodGet, "/api/v1/packages?client_id=abc", nil, trainerID.String())
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBillingHandler_PreviewFees(t *testing.T) {
	svc := &mocks.MockLedgerService{}
	svc.On("PreviewFees", int64(1000000)).
		Return(domain.FeeBreakdown{Gross: 1000000, VAT: 90909, CardFee: 31818, Net: 877273}, nil).Once()

	w, env := doRequest(t, newTestRouter(svc), http.MethodPost, "/api/v1/fees/preview",
		map[string]interface{}{"gross_amount": 1000000}, trainerID.String())

	assert.Equal(t, http.StatusOK, w.Code)
	var breakdown domain.FeeBreakdown
	require.NoError(t, json.Unmarshal(env.Data, &breakdown))
	assert.Equal(t, int64(877273), breakdown.Net)
	svc.AssertExpectations(t)
}

func TestBillingHandler_DatabaseErrorIsHidden(t *testing.T) {
	packageID := uuid.New()
	svc := &mocks.MockLedgerService{}
	svc.On("GetBalance", mock.Anything, trainerID, packageID).
		Return(nil, customError.WrapDatabaseError(errors.New("dial tcp 10.0.0.5:5432: connection refused"))).Once()

	w, env := doRequest(t, newTestRouter(svc), http.MethodGet, "/api/v1/packages/"+packageID.String()+"/balance", nil, trainerID.String())

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, customError.ErrCodeDatabaseError, env.Code)
	assert.NotContains(t, w.Body.String(), "10.0.0.5")
}
