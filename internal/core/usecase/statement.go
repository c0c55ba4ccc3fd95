package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/Nzyazin/finledger/internal/core/logger"
	"github.com/Nzyazin/finledger/internal/core/models"
	"github.com/Nzyazin/finledger/internal/core/repository"
	"github.com/google/uuid"
)

type StatementUsecase interface {
	GetStatement(ctx context.Context, userID uuid.UUID) (*models.Statement, error)
	GetOperation(ctx context.Context, userID, operationID uuid.UUID) (*models.Operation, error)
}

type statementUsecase struct {
	operations repository.OperationStore
	users      repository.UserRepository
	log        logger.Logger
}

func NewStatementUsecase(operations repository.OperationStore, users repository.UserRepository, log logger.Logger) StatementUsecase {
	return &statementUsecase{operations: operations, users: users, log: log}
}

// GetStatement returns the user's balance together with their full history,
// oldest first. Balance and history are folded from the same snapshot so they
// always agree with each other.
func (uc *statementUsecase) GetStatement(ctx context.Context, userID uuid.UUID) (*models.Statement, error) {
	if _, err := uc.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	ops, err := uc.operations.FindByParticipant(ctx, userID)
	if err != nil {
		uc.log.Error("Operation lookup failed",
			logger.StringField("user_id", userID.String()),
			logger.ErrorField("error", err))
		return nil, fmt.Errorf("find operations: %w", err)
	}

	sort.SliceStable(ops, func(i, j int) bool {
		if ops[i].CreatedAt.Equal(ops[j].CreatedAt) {
			return ops[i].ID.String() < ops[j].ID.String()
		}
		return ops[i].CreatedAt.Before(ops[j].CreatedAt)
	})

	return &models.Statement{
		Balance:    foldBalance(userID, ops),
		Operations: ops,
	}, nil
}

// GetOperation looks up a single record scoped to the requesting user. A
// record belonging to somebody else reads as not-found, never as forbidden,
// so ids cannot be probed for existence.
func (uc *statementUsecase) GetOperation(ctx context.Context, userID, operationID uuid.UUID) (*models.Operation, error) {
	if _, err := uc.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	op, err := uc.operations.FindByID(ctx, operationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOperationNotFound
		}
		return nil, fmt.Errorf("find operation: %w", err)
	}

	if !involves(op, userID) {
		uc.log.Warn("Operation access outside ownership",
			logger.StringField("user_id", userID.String()),
			logger.StringField("operation_id", operationID.String()))
		return nil, ErrOperationNotFound
	}

	return op, nil
}

func involves(op *models.Operation, userID uuid.UUID) bool {
	if op.OwnerID == userID {
		return true
	}
	return op.CounterpartyID != nil && *op.CounterpartyID == userID
}
