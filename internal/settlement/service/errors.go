package service

import "errors"

var (
	ErrInvalidAmount   = errors.New("invalid deposit amount")
	ErrUnknownProvider = errors.New("unknown payment provider")
)
