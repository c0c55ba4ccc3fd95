package usecase

import "errors"

// Определение ошибок сервиса
var (
	ErrInvalidAmount         = errors.New("amount must be positive")
	ErrInvalidOperationType  = errors.New("invalid operation type")
	ErrUserNotFound          = errors.New("user not found")
	ErrRecipientNotSpecified = errors.New("recipient not specified")
	ErrInsufficientFunds     = errors.New("insufficient funds")
	ErrOperationNotFound     = errors.New("operation not found")
	ErrEmailTaken            = errors.New("email already taken")
	ErrInvalidCredentials    = errors.New("incorrect email or password")
)
