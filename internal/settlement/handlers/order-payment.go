package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"go-settlement/internal/common/clientprotocol"
	"go-settlement/internal/settlement/data"
	"go-settlement/internal/settlement/statemachine"
	"go-settlement/pkg/jwtfactory"
	"go-settlement/pkg/logging"
)

type OrderPaymentHandler struct {
	payer  BalancePayer
	logger *logging.ZapLogger
}

func NewOrderPaymentHandler(payer BalancePayer, logger *logging.ZapLogger) *OrderPaymentHandler {
	return &OrderPaymentHandler{
		payer:  payer,
		logger: logger,
	}
}

func (h *OrderPaymentHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	subject, err := jwtfactory.SubjectFromContext(r.Context())
	if err != nil {
		h.logger.ErrorCtx(r.Context(), failedToRecoverSubjectErrorMessage, zap.Error(err))
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	orderID := chi.URLParam(r, "orderID")
	if kind, ok := data.KindOfRef(orderID); !ok || kind != data.OrderEntity {
		h.logger.DebugCtx(r.Context(), "invalid order id", zap.String("orderID", orderID))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	outcome, err := h.payer.PayWithBalance(r.Context(), subject.UserID, orderID)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrInsufficientBalance):
			h.logger.DebugCtx(r.Context(), "", zap.Error(err))
			w.WriteHeader(http.StatusPaymentRequired)
		case errors.Is(err, data.ErrOrderNotFound):
			w.WriteHeader(http.StatusNotFound)
		case errors.Is(err, statemachine.ErrNotOrderOwner):
			w.WriteHeader(http.StatusForbidden)
		case errors.Is(err, statemachine.ErrNotFoundOrAlreadyProcessed):
			w.WriteHeader(http.StatusConflict)
		case errors.Is(err, statemachine.ErrProviderMismatch),
			errors.Is(err, statemachine.ErrPaymentWindowClosed):
			h.logger.DebugCtx(r.Context(), "order not payable from balance", zap.Error(err))
			w.WriteHeader(http.StatusUnprocessableEntity)
		default:
			h.logger.ErrorCtx(r.Context(), "Failed to pay order", zap.Error(err))
			w.WriteHeader(http.StatusInternalServerError)
		}
		return
	}

	err = tryWriteResponseJSON(w, http.StatusOK, clientprotocol.OrderPayment{OrderID: outcome.Ref, Message: outcome.Message})
	if err != nil {
		h.logger.ErrorCtx(r.Context(), failedToWriteResponseErrorMessage, zap.Error(err))
	}
}
