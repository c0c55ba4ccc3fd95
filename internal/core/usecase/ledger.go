package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Nzyazin/finledger/internal/core/logger"
	"github.com/Nzyazin/finledger/internal/core/models"
	"github.com/Nzyazin/finledger/internal/core/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type LedgerUsecase interface {
	Submit(ctx context.Context, req models.SubmitRequest) (*models.Operation, error)
}

type ledgerUsecase struct {
	operations repository.OperationStore
	users      repository.UserRepository
	balance    BalanceCalculator
	locks      *userLocks
	log        logger.Logger
}

func NewLedgerUsecase(operations repository.OperationStore, users repository.UserRepository, balance BalanceCalculator, log logger.Logger) LedgerUsecase {
	return &ledgerUsecase{
		operations: operations,
		users:      users,
		balance:    balance,
		locks:      newUserLocks(),
		log:        log,
	}
}

// Submit validates and admits one operation. Exactly one record is written on
// success, nothing on any failure. Check order is observable: owner existence
// first, then transfer checks, then the funds check.
func (uc *ledgerUsecase) Submit(ctx context.Context, req models.SubmitRequest) (*models.Operation, error) {
	uc.logStart(req)

	if err := uc.ensureUser(ctx, req.OwnerID); err != nil {
		return nil, err
	}

	if req.Type == models.OperationTransfer {
		if req.CounterpartyID == nil {
			uc.log.Warn("Transfer without recipient",
				logger.StringField("owner_id", req.OwnerID.String()))
			return nil, ErrRecipientNotSpecified
		}
		if err := uc.ensureUser(ctx, *req.CounterpartyID); err != nil {
			return nil, err
		}
	}

	if err := uc.validateAmount(req); err != nil {
		return nil, err
	}

	debited, hasDebited := debitedParty(req)
	if !hasDebited {
		return uc.persist(ctx, req)
	}

	// Hold the debited party's lock across the balance read and the insert
	// so a concurrent submit cannot spend the same funds twice.
	lock := uc.locks.forUser(debited)
	lock.Lock()
	defer lock.Unlock()

	if err := uc.ensureFunds(ctx, debited, req.Amount); err != nil {
		return nil, err
	}

	return uc.persist(ctx, req)
}

// debitedParty resolves whose balance must cover the amount: the owner for a
// withdrawal, the counterparty for a transfer (a transfer row is filed under
// the receiving account). Deposits debit nobody.
func debitedParty(req models.SubmitRequest) (uuid.UUID, bool) {
	switch req.Type {
	case models.OperationWithdraw:
		return req.OwnerID, true
	case models.OperationTransfer:
		return *req.CounterpartyID, true
	default:
		return uuid.Nil, false
	}
}

func (uc *ledgerUsecase) logStart(req models.SubmitRequest) {
	uc.log.Info("Submitting operation",
		logger.StringField("owner_id", req.OwnerID.String()),
		logger.StringField("type", string(req.Type)),
		logger.StringField("amount", req.Amount.String()))
}

func (uc *ledgerUsecase) ensureUser(ctx context.Context, id uuid.UUID) error {
	if _, err := uc.users.FindByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			uc.log.Warn("User not found", logger.StringField("user_id", id.String()))
			return ErrUserNotFound
		}
		return fmt.Errorf("find user: %w", err)
	}
	return nil
}

func (uc *ledgerUsecase) validateAmount(req models.SubmitRequest) error {
	switch req.Type {
	case models.OperationDeposit, models.OperationWithdraw, models.OperationTransfer:
	default:
		return ErrInvalidOperationType
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		uc.log.Warn("Non-positive amount rejected",
			logger.StringField("amount", req.Amount.String()))
		return ErrInvalidAmount
	}
	return nil
}

func (uc *ledgerUsecase) ensureFunds(ctx context.Context, debited uuid.UUID, amount decimal.Decimal) error {
	balance, err := uc.balance.BalanceOf(ctx, debited)
	if err != nil {
		return err
	}
	if balance.LessThan(amount) {
		uc.log.Warn("Insufficient funds",
			logger.StringField("user_id", debited.String()),
			logger.StringField("balance", balance.String()),
			logger.StringField("requested", amount.String()))
		return ErrInsufficientFunds
	}
	return nil
}

func (uc *ledgerUsecase) persist(ctx context.Context, req models.SubmitRequest) (*models.Operation, error) {
	op := &models.Operation{
		ID:             uuid.New(),
		OwnerID:        req.OwnerID,
		CounterpartyID: req.CounterpartyID,
		Type:           req.Type,
		Amount:         req.Amount,
		Description:    req.Description,
		CreatedAt:      time.Now().UTC(),
	}

	if err := uc.operations.Insert(ctx, op); err != nil {
		uc.log.Error("Operation insert failed",
			logger.StringField("operation_id", op.ID.String()),
			logger.ErrorField("error", err))
		return nil, fmt.Errorf("insert operation: %w", err)
	}

	return op, nil
}
