package ui

import "errors"

type ActionableError struct {
	Message string
}

func (e *ActionableError) Error() string {
	return e.Message
}

// Message returns the player-facing text for err, or fallback when err
// carries none.
func Message(err error, fallback string) string {
	var actionableErr *ActionableError
	if errors.As(err, &actionableErr) {
		return actionableErr.Message
	}
	return fallback
}
