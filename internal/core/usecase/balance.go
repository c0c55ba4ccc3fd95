package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/Nzyazin/finledger/internal/core/logger"
	"github.com/Nzyazin/finledger/internal/core/models"
	"github.com/Nzyazin/finledger/internal/core/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BalanceCalculator interface {
	BalanceOf(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error)
}

type balanceCalculator struct {
	operations repository.OperationStore
	users      repository.UserRepository
	log        logger.Logger
}

func NewBalanceCalculator(operations repository.OperationStore, users repository.UserRepository, log logger.Logger) BalanceCalculator {
	return &balanceCalculator{operations: operations, users: users, log: log}
}

// BalanceOf derives the user's balance by folding their operation log. The
// balance is never stored, so it cannot drift from the log.
func (c *balanceCalculator) BalanceOf(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	if _, err := c.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return decimal.Zero, ErrUserNotFound
		}
		return decimal.Zero, fmt.Errorf("find user: %w", err)
	}

	ops, err := c.operations.FindByParticipant(ctx, userID)
	if err != nil {
		c.log.Error("Operation lookup failed",
			logger.StringField("user_id", userID.String()),
			logger.ErrorField("error", err))
		return decimal.Zero, fmt.Errorf("find operations: %w", err)
	}

	return foldBalance(userID, ops), nil
}

// foldBalance applies the balance formula: deposits and incoming transfers
// credit the owner, withdrawals debit the owner, and a transfer debits the
// counterparty. The two id fields of a transfer row are asymmetric; treating
// them otherwise double-counts.
func foldBalance(userID uuid.UUID, ops []models.Operation) decimal.Decimal {
	balance := decimal.Zero
	for _, op := range ops {
		switch op.Type {
		case models.OperationDeposit:
			if op.OwnerID == userID {
				balance = balance.Add(op.Amount)
			}
		case models.OperationWithdraw:
			if op.OwnerID == userID {
				balance = balance.Sub(op.Amount)
			}
		case models.OperationTransfer:
			if op.OwnerID == userID {
				balance = balance.Add(op.Amount)
			}
			if op.CounterpartyID != nil && *op.CounterpartyID == userID {
				balance = balance.Sub(op.Amount)
			}
		}
	}
	return balance
}
