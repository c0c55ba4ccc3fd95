package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/Nzyazin/finledger/internal/core/auth"
	"github.com/Nzyazin/finledger/internal/core/logger"
	"github.com/Nzyazin/finledger/internal/core/models"
	"github.com/Nzyazin/finledger/internal/core/usecase"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

type LedgerHandler struct {
	ledger     usecase.LedgerUsecase
	statements usecase.StatementUsecase
	log        logger.Logger
}

type operationRequest struct {
	Amount      string `json:"amount"`
	Description string `json:"description"`
}

var amountRegexp = regexp.MustCompile(`^\s*\d{1,12}([.,]\d{1,2})?\s*$`)

func NewLedgerHandler(ledger usecase.LedgerUsecase, statements usecase.StatementUsecase, log logger.Logger) *LedgerHandler {
	return &LedgerHandler{ledger: ledger, statements: statements, log: log}
}

func (h *LedgerHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, models.OperationDeposit)
}

func (h *LedgerHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, models.OperationWithdraw)
}

// Transfer files the operation under the receiving account with the
// authenticated user as counterparty, so one row carries both sides.
func (h *LedgerHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	senderID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	receiverID, err := uuid.Parse(mux.Vars(r)["receiver_id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid receiver id")
		return
	}

	req, err := h.decodeRequest(w, r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	amount, err := h.parseAmount(req.Amount)
	if err != nil {
		h.log.Warn("Invalid amount", logger.StringField("amount", req.Amount), logger.ErrorField("error", err))
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	op, err := h.ledger.Submit(r.Context(), models.SubmitRequest{
		OwnerID:        receiverID,
		CounterpartyID: &senderID,
		Type:           models.OperationTransfer,
		Amount:         amount,
		Description:    req.Description,
	})
	if err != nil {
		h.handleOperationError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, op)
}

func (h *LedgerHandler) submit(w http.ResponseWriter, r *http.Request, opType models.OperationType) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	req, err := h.decodeRequest(w, r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	amount, err := h.parseAmount(req.Amount)
	if err != nil {
		h.log.Warn("Invalid amount", logger.StringField("amount", req.Amount), logger.ErrorField("error", err))
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	op, err := h.ledger.Submit(r.Context(), models.SubmitRequest{
		OwnerID:     userID,
		Type:        opType,
		Amount:      amount,
		Description: req.Description,
	})
	if err != nil {
		h.handleOperationError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, op)
}

func (h *LedgerHandler) GetStatement(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	statement, err := h.statements.GetStatement(r.Context(), userID)
	if err != nil {
		h.handleOperationError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, statement)
}

func (h *LedgerHandler) GetOperation(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	operationID, err := uuid.Parse(mux.Vars(r)["operation_id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid operation id")
		return
	}

	op, err := h.statements.GetOperation(r.Context(), userID, operationID)
	if err != nil {
		h.handleOperationError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, op)
}

func (h *LedgerHandler) decodeRequest(w http.ResponseWriter, r *http.Request) (*operationRequest, error) {
	var req operationRequest
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Warn("Failed to decode request body", logger.ErrorField("error", err))
		return nil, fmt.Errorf("invalid request payload")
	}
	defer r.Body.Close()
	return &req, nil
}

// parseAmount обрабатывает и валидирует сумму операции
func (h *LedgerHandler) parseAmount(amountStr string) (decimal.Decimal, error) {
	cleaned := strings.ReplaceAll(strings.ReplaceAll(amountStr, " ", ""), ",", ".")

	if !amountRegexp.MatchString(cleaned) {
		return decimal.Zero, fmt.Errorf("invalid amount format: %s", cleaned)
	}

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("could not parse amount: %v", err)
	}

	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, fmt.Errorf("amount must be positive")
	}

	return amount, nil
}

func (h *LedgerHandler) handleOperationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, usecase.ErrUserNotFound):
		respondWithError(w, http.StatusNotFound, "user not found")
	case errors.Is(err, usecase.ErrOperationNotFound):
		respondWithError(w, http.StatusNotFound, "operation not found")
	case errors.Is(err, usecase.ErrRecipientNotSpecified):
		respondWithError(w, http.StatusBadRequest, "recipient not specified")
	case errors.Is(err, usecase.ErrInvalidAmount), errors.Is(err, usecase.ErrInvalidOperationType):
		respondWithError(w, http.StatusBadRequest, "invalid operation")
	case errors.Is(err, usecase.ErrInsufficientFunds):
		respondWithError(w, http.StatusBadRequest, "insufficient funds")
	default:
		h.log.Error("Failed to process operation", logger.ErrorField("error", err))
		respondWithError(w, http.StatusInternalServerError, "failed to process operation")
	}
}
