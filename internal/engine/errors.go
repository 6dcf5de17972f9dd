package engine

import (
	"errors"
	"fmt"
)

// Error is a caller-visible engine failure.
//
// All three codes are recoverable from the caller's point of view:
//   - invalid_move: the move changed nothing, try another direction
//   - game_over: the move succeeded but no legal follow-up exists
//   - invalid_state: programmer error (no board yet, ticket misuse, bad grid)
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string
}

// ErrorCode categorizes engine errors.
type ErrorCode string

const (
	// ErrCodeInvalidMove indicates a move that produced no cell change.
	ErrCodeInvalidMove ErrorCode = "invalid_move"

	// ErrCodeGameOver indicates no empty cell and no adjacent equal pair remain.
	ErrCodeGameOver ErrorCode = "game_over"

	// ErrCodeInvalidState indicates an operation invoked in a state that does
	// not allow it.
	ErrCodeInvalidState ErrorCode = "invalid_state"
)

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidMoveError creates an Error with ErrCodeInvalidMove.
func NewInvalidMoveError(msg string) *Error {
	return &Error{Code: ErrCodeInvalidMove, Message: msg}
}

// NewGameOverError creates an Error with ErrCodeGameOver.
func NewGameOverError(msg string) *Error {
	return &Error{Code: ErrCodeGameOver, Message: msg}
}

// NewInvalidStateError creates an Error with ErrCodeInvalidState.
func NewInvalidStateError(msg string) *Error {
	return &Error{Code: ErrCodeInvalidState, Message: msg}
}

// CodeOf returns the code of the first *Error in err's chain, or "" if there
// is none.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsInvalidMove reports whether err is an invalid_move error.
// Uses errors.As to handle wrapped errors.
func IsInvalidMove(err error) bool {
	return CodeOf(err) == ErrCodeInvalidMove
}

// IsGameOver reports whether err is a game_over error.
func IsGameOver(err error) bool {
	return CodeOf(err) == ErrCodeGameOver
}

// IsInvalidState reports whether err is an invalid_state error.
func IsInvalidState(err error) bool {
	return CodeOf(err) == ErrCodeInvalidState
}
