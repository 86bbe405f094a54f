package session

import (
	"errors"
	"fmt"
)

var (
	ErrClosed         = errors.New("payment session closed")
	ErrInvalidState   = errors.New("operation not allowed in current state")
	ErrBusy           = errors.New("payment in progress")
	ErrChannelLocked  = errors.New("payment channel is locked")
	ErrDismissBlocked = errors.New(DismissBlockedMessage)
)

// publicMessager is implemented by backend errors that carry a message meant
// for the payer.
type publicMessager interface {
	PublicMessage() string
}

func reasonOf(err error, fallback string) string {
	var pm publicMessager
	if errors.As(err, &pm) {
		if msg := pm.PublicMessage(); msg != "" {
			return msg
		}
	}
	return fallback
}

func stateError(op string, s State) error {
	return fmt.Errorf("%w: %s from %s", ErrInvalidState, op, s)
}
