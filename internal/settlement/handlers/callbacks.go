package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"go-settlement/internal/common/clientprotocol"
	"go-settlement/internal/settlement/reconciler"
	"go-settlement/internal/settlement/statemachine"
	"go-settlement/pkg/logging"
)

const maxCallbackBodySize = 1 << 20

type reconcileFunc func(ctx context.Context, provider string, header http.Header, body []byte) (reconciler.Result, error)

type CallbackHandler struct {
	reconcile reconcileFunc
	logger    *logging.ZapLogger
}

func NewPaymentCallbackHandler(callbacks CallbackReconciler, logger *logging.ZapLogger) *CallbackHandler {
	return &CallbackHandler{
		reconcile: callbacks.HandlePayment,
		logger:    logger,
	}
}

func NewFulfillmentCallbackHandler(callbacks CallbackReconciler, logger *logging.ZapLogger) *CallbackHandler {
	return &CallbackHandler{
		reconcile: callbacks.HandleFulfillment,
		logger:    logger,
	}
}

func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer closeBody(r.Context(), r.Body, h.logger)

	provider := chi.URLParam(r, "provider")
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxCallbackBodySize))
	if err != nil {
		h.logger.DebugCtx(r.Context(), "failed to read callback body", zap.Error(err))
		h.respond(w, r, http.StatusBadRequest, clientprotocol.CallbackResult{Message: "unreadable body"})
		return
	}

	result, err := h.reconcile(r.Context(), provider, r.Header, body)
	if err != nil {
		status := callbackErrorStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.ErrorCtx(r.Context(), "Failed to reconcile callback", zap.Error(err))
		} else {
			h.logger.DebugCtx(r.Context(), "callback rejected", zap.Error(err))
		}
		h.respond(w, r, status, clientprotocol.CallbackResult{Message: err.Error()})
		return
	}
	h.respond(w, r, http.StatusOK, clientprotocol.CallbackResult{Success: result.Success, Message: result.Message})
}

func (h *CallbackHandler) respond(w http.ResponseWriter, r *http.Request, status int, body clientprotocol.CallbackResult) {
	if err := tryWriteResponseJSON(w, status, body); err != nil {
		h.logger.ErrorCtx(r.Context(), failedToWriteResponseErrorMessage, zap.Error(err))
	}
}

func callbackErrorStatus(err error) int {
	switch {
	case errors.Is(err, reconciler.ErrInvalidSignature):
		return http.StatusUnauthorized
	case errors.Is(err, reconciler.ErrUnknownProvider):
		return http.StatusNotFound
	case errors.Is(err, reconciler.ErrMalformedPayload),
		errors.Is(err, reconciler.ErrUnroutableReference),
		errors.Is(err, statemachine.ErrNoTransition):
		return http.StatusBadRequest
	case errors.Is(err, statemachine.ErrProviderMismatch):
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}
