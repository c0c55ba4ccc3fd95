package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Nzyazin/finledger/internal/core/logger"
	"github.com/Nzyazin/finledger/internal/core/models"
	"github.com/Nzyazin/finledger/internal/core/repository"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

type postgresOperationStore struct {
	db  *sqlx.DB
	log logger.Logger
}

func NewPostgresOperationStore(db *sqlx.DB, log logger.Logger) repository.OperationStore {
	return &postgresOperationStore{
		db:  db,
		log: log,
	}
}

func (s *postgresOperationStore) Insert(ctx context.Context, op *models.Operation) error {
	const query = `INSERT INTO operations
		(id, owner_id, counterparty_id, type, amount, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := s.db.ExecContext(ctx, query,
		op.ID,
		op.OwnerID,
		op.CounterpartyID,
		op.Type,
		op.Amount,
		op.Description,
		op.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return repository.ErrDuplicate
		}
		s.log.Error("Error inserting operation",
			logger.StringField("operation_id", op.ID.String()),
			logger.ErrorField("error", err))
		return fmt.Errorf("insert operation: %w", err)
	}

	return nil
}

func (s *postgresOperationStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Operation, error) {
	var op models.Operation
	query := `SELECT id, owner_id, counterparty_id, type, amount, description, created_at
		FROM operations WHERE id = $1`
	err := s.db.GetContext(ctx, &op, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("error getting operation: %w", err)
	}

	return &op, nil
}

func (s *postgresOperationStore) FindByParticipant(ctx context.Context, userID uuid.UUID) ([]models.Operation, error) {
	var ops []models.Operation
	query := `SELECT id, owner_id, counterparty_id, type, amount, description, created_at
		FROM operations
		WHERE owner_id = $1 OR counterparty_id = $1
		ORDER BY created_at, id`
	if err := s.db.SelectContext(ctx, &ops, query, userID); err != nil {
		return nil, fmt.Errorf("error listing operations: %w", err)
	}

	return ops, nil
}
