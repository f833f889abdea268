package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"go-settlement/internal/common/clientprotocol"
	"go-settlement/internal/settlement/data"
	"go-settlement/pkg/jwtfactory"
	"go-settlement/pkg/logging"
)

const maxMutationsPageSize = 500

type LedgerQueryHandler struct {
	service LedgerService
	logger  *logging.ZapLogger
}

func NewLedgerQueryHandler(service LedgerService, logger *logging.ZapLogger) *LedgerQueryHandler {
	return &LedgerQueryHandler{
		service: service,
		logger:  logger,
	}
}

// authorize resolves the path user and checks the caller may read it. It
// writes the error response itself and returns false on failure.
func (h *LedgerQueryHandler) authorize(w http.ResponseWriter, r *http.Request, adminOnly bool) (int64, bool) {
	subject, err := jwtfactory.SubjectFromContext(r.Context())
	if err != nil {
		h.logger.ErrorCtx(r.Context(), failedToRecoverSubjectErrorMessage, zap.Error(err))
		w.WriteHeader(http.StatusUnauthorized)
		return 0, false
	}
	userID, err := int64URLParam(r, "userID")
	if err != nil {
		h.logger.DebugCtx(r.Context(), "invalid user id", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		return 0, false
	}
	if (adminOnly && !subject.IsAdmin()) || !subject.CanAccess(userID) {
		h.logger.WarnCtx(
			r.Context(),
			"ledger access denied",
			zap.Int64("subject", subject.UserID),
			zap.Int64("userID", userID),
		)
		w.WriteHeader(http.StatusForbidden)
		return 0, false
	}
	return userID, true
}

func (h *LedgerQueryHandler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	if errors.Is(err, data.ErrUserNotFound) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	h.logger.ErrorCtx(r.Context(), msg, zap.Error(err))
	w.WriteHeader(http.StatusInternalServerError)
}

func (h *LedgerQueryHandler) write(w http.ResponseWriter, r *http.Request, body any) {
	if err := tryWriteResponseJSON(w, http.StatusOK, body); err != nil {
		h.logger.ErrorCtx(r.Context(), failedToWriteResponseErrorMessage, zap.Error(err))
	}
}

func (h *LedgerQueryHandler) Balance(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authorize(w, r, false)
	if !ok {
		return
	}
	balance, err := h.service.Balance(r.Context(), userID)
	if err != nil {
		h.fail(w, r, "Failed to get user balance", err)
		return
	}
	h.write(w, r, clientprotocol.Balance{UserID: userID, Balance: balance})
}

func (h *LedgerQueryHandler) Mutations(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authorize(w, r, false)
	if !ok {
		return
	}
	filter, err := parseMutationFilter(r)
	if err != nil {
		h.logger.DebugCtx(r.Context(), "invalid mutations filter", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	mutations, err := h.service.Mutations(r.Context(), userID, filter)
	if err != nil {
		h.fail(w, r, "Failed to get user mutations", err)
		return
	}
	res := make([]clientprotocol.Mutation, 0, len(mutations))
	for _, m := range mutations {
		res = append(res, clientprotocol.Mutation{
			ID:            m.ID,
			Amount:        m.Amount,
			Type:          string(m.Type),
			RefType:       string(m.RefType),
			RefID:         m.RefID,
			BalanceBefore: m.BalanceBefore,
			BalanceAfter:  m.BalanceAfter,
			Notes:         m.Notes,
			CreatedAt:     m.CreatedAt,
		})
	}
	h.write(w, r, res)
}

func (h *LedgerQueryHandler) Audit(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authorize(w, r, true)
	if !ok {
		return
	}
	report, err := h.service.Audit(r.Context(), userID)
	if err != nil {
		h.fail(w, r, "Failed to audit user ledger", err)
		return
	}
	h.write(w, r, clientprotocol.Audit{
		UserID:         report.UserID,
		Balance:        report.Balance,
		Replayed:       report.Replayed,
		MutationsCount: report.MutationsCount,
		BrokenChainAt:  report.BrokenChainAt,
		Consistent:     report.Consistent,
	})
}

var errBadQuery = errors.New("bad query parameter")

func parseMutationFilter(r *http.Request) (data.MutationFilter, error) {
	var filter data.MutationFilter
	query := r.URL.Query()
	if v := query.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit <= 0 || limit > maxMutationsPageSize {
			return filter, errBadQuery
		}
		filter.Limit = limit
	}
	if v := query.Get("before_id"); v != "" {
		beforeID, err := strconv.ParseInt(v, 10, 64)
		if err != nil || beforeID <= 0 {
			return filter, errBadQuery
		}
		filter.BeforeID = beforeID
	}
	return filter, nil
}
