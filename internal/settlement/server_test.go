package settlement

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang/mock/gomock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-settlement/internal/settlement/handlers/mocks"
	"go-settlement/internal/settlement/metrics"
	"go-settlement/internal/settlement/reconciler"
	"go-settlement/pkg/jwtfactory"
	"go-settlement/pkg/logging"
)

func TestRoutes(t *testing.T) {
	ctrl := gomock.NewController(t)
	callbacks := mocks.NewMockCallbackReconciler(ctrl)
	ledgerService := mocks.NewMockLedgerService(ctrl)

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	tokenAuth := jwtauth.New("HS256", []byte("secret"), nil)
	mux := createMux(
		tokenAuth,
		Services{
			Reconciler: callbacks,
			Ledger:     ledgerService,
			Deposits:   mocks.NewMockDepositService(ctrl),
			Payer:      mocks.NewMockBalancePayer(ctrl),
		},
		m,
		registry,
		logging.NewNopLogger(),
	)

	callbacks.EXPECT().
		HandlePayment(gomock.Any(), "qrpay", gomock.Any(), gomock.Any()).
		Return(reconciler.Result{Success: true, Message: "completed"}, nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/callbacks/payment/qrpay", strings.NewReader("{}")))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/ledger/users/1/balance", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := jwtfactory.New(tokenAuth, time.Hour).Generate(jwtfactory.Subject{UserID: 1, Role: jwtfactory.UserRole})
	require.NoError(t, err)
	ledgerService.EXPECT().Balance(gomock.Any(), int64(1)).Return(int64(500), nil)
	req := httptest.NewRequest(http.MethodGet, "/api/ledger/users/1/balance", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "settlement_http_request_duration_seconds")
	assert.Equal(t, 3, testutil.CollectAndCount(m.RequestDuration))
}
