package repository

import (
	"context"
	"errors"

	"github.com/Nzyazin/finledger/internal/core/models"
	"github.com/google/uuid"
)

var (
	// ErrNotFound сигнализирует об отсутствии записи в хранилище
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate сигнализирует о нарушении уникальности
	ErrDuplicate = errors.New("record already exists")
)

// OperationStore is the append-only ledger store. There is deliberately no
// update or delete: corrections are new offsetting operations.
type OperationStore interface {
	Insert(ctx context.Context, op *models.Operation) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Operation, error)
	// FindByParticipant returns every operation where the user is either the
	// owner or the counterparty, in insertion order.
	FindByParticipant(ctx context.Context, userID uuid.UUID) ([]models.Operation, error)
}

// UserRepository is the user directory consumed for existence checks.
type UserRepository interface {
	Insert(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}
