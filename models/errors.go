package models

import "errors"

var (
	ErrInsufficientHistory = errors.New("insufficient history")
	ErrRiskRejected        = errors.New("order rejected by risk manager")
	ErrExecutionFailure    = errors.New("execution failure")
	ErrNoActiveModel       = errors.New("no active model")
	ErrUnknownStrategy     = errors.New("unknown strategy")
	ErrInvalidEnvelope     = errors.New("invalid message envelope")
	ErrInvalidTransition   = errors.New("invalid order status transition")
)
