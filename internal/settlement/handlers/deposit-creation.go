package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"go-settlement/internal/common/clientprotocol"
	"go-settlement/internal/settlement/data"
	"go-settlement/internal/settlement/service"
	"go-settlement/pkg/jwtfactory"
	"go-settlement/pkg/logging"
)

type DepositCreationHandler struct {
	service DepositService
	logger  *logging.ZapLogger
}

func NewDepositCreationHandler(service DepositService, logger *logging.ZapLogger) *DepositCreationHandler {
	return &DepositCreationHandler{
		service: service,
		logger:  logger,
	}
}

func (h *DepositCreationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer closeBody(r.Context(), r.Body, h.logger)

	subject, err := jwtfactory.SubjectFromContext(r.Context())
	if err != nil {
		h.logger.ErrorCtx(r.Context(), failedToRecoverSubjectErrorMessage, zap.Error(err))
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	request, err := decodeJSON[clientprotocol.CreateDepositRequest](r.Body)
	if err != nil {
		h.logger.DebugCtx(r.Context(), "input decoding error", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	deposit, err := h.service.Create(r.Context(), subject.UserID, service.CreateDeposit{
		Provider:  request.Provider,
		AmountPay: request.Amount,
		AmountFee: request.Fee,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAmount), errors.Is(err, service.ErrUnknownProvider):
			h.logger.DebugCtx(r.Context(), "deposit rejected", zap.Error(err))
			w.WriteHeader(http.StatusUnprocessableEntity)
		case errors.Is(err, data.ErrUserNotFound):
			w.WriteHeader(http.StatusNotFound)
		default:
			h.logger.ErrorCtx(r.Context(), "Failed to create deposit", zap.Error(err))
			w.WriteHeader(http.StatusInternalServerError)
		}
		return
	}

	err = tryWriteResponseJSON(w, http.StatusCreated, clientprotocol.Deposit{
		DepositID:      deposit.DepositID,
		Provider:       deposit.Provider,
		Status:         string(deposit.Status),
		AmountPay:      deposit.AmountPay,
		AmountFee:      deposit.AmountFee,
		AmountReceived: deposit.AmountReceived,
		ExpiredAt:      deposit.ExpiredAt,
	})
	if err != nil {
		h.logger.ErrorCtx(r.Context(), failedToWriteResponseErrorMessage, zap.Error(err))
	}
}
