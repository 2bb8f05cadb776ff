package domain

import "errors"

var (
	// ErrNoSignal: the message carried no usable trade. Skipped silently.
	ErrNoSignal = errors.New("no trade signal in message")

	// ErrInvalidSignal: a required field is missing or non-numeric. The
	// trade is skipped and the operator notified.
	ErrInvalidSignal = errors.New("signal failed validation")

	// ErrSymbolNotFound: the instrument cannot be resolved on the desk.
	ErrSymbolNotFound = errors.New("symbol not found on desk")

	// ErrRejected: the venue declined the order. The reason travels to the
	// operator verbatim; there is no retry.
	ErrRejected = errors.New("order rejected by venue")
)
