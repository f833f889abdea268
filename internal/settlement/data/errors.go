package data

import "errors"

var (
	ErrUserNotFound              = errors.New("user not found")
	ErrDepositNotFound           = errors.New("deposit not found")
	ErrOrderNotFound             = errors.New("order not found")
	ErrInsufficientBalance       = errors.New("insufficient balance")
	ErrUniqueConstraintViolation = errors.New("unique constraint violation")
	ErrForeignKeyViolation       = errors.New("foreign key violation")
)
