package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OperationType определяет тип операции в журнале
type OperationType string

const (
	// OperationDeposit - пополнение счёта
	OperationDeposit OperationType = "deposit"
	// OperationWithdraw - снятие средств со счёта
	OperationWithdraw OperationType = "withdraw"
	// OperationTransfer - перевод между счетами
	OperationTransfer OperationType = "transfer"
)

// Operation is a single immutable ledger record. The record is filed under
// OwnerID; for transfers CounterpartyID holds the sending account, so one row
// carries both sides of the movement.
type Operation struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	OwnerID        uuid.UUID       `json:"owner_id" db:"owner_id"`
	CounterpartyID *uuid.UUID      `json:"counterparty_id,omitempty" db:"counterparty_id"`
	Type           OperationType   `json:"type" db:"type"`
	Amount         decimal.Decimal `json:"amount" db:"amount"`
	Description    string          `json:"description" db:"description"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
}

// SubmitRequest представляет запрос на проведение операции
type SubmitRequest struct {
	OwnerID        uuid.UUID
	CounterpartyID *uuid.UUID
	Type           OperationType
	Amount         decimal.Decimal
	Description    string
}

// Statement is a user's derived balance together with the full history that
// produced it, oldest record first.
type Statement struct {
	Balance    decimal.Decimal `json:"balance"`
	Operations []Operation     `json:"statement"`
}
