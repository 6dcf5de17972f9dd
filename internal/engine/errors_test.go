package engine

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Codes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code ErrorCode
		is   func(error) bool
	}{
		{"invalid move", NewInvalidMoveError("no change"), ErrCodeInvalidMove, IsInvalidMove},
		{"game over", NewGameOverError("stuck"), ErrCodeGameOver, IsGameOver},
		{"invalid state", NewInvalidStateError("no board"), ErrCodeInvalidState, IsInvalidState},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, CodeOf(tt.err))
			assert.True(t, tt.is(tt.err))

			wrapped := fmt.Errorf("left: %w", tt.err)
			assert.True(t, tt.is(wrapped), "predicates must see through wrapping")
			assert.Contains(t, wrapped.Error(), string(tt.code))
		})
	}
}

func TestError_ForeignErrors(t *testing.T) {
	err := errors.New("boom")
	assert.Equal(t, ErrorCode(""), CodeOf(err))
	assert.False(t, IsInvalidMove(err))
	assert.False(t, IsGameOver(nil))
}

func TestError_Message(t *testing.T) {
	err := NewInvalidMoveError("Move caused no change in state.")
	assert.Equal(t, "invalid_move: Move caused no change in state.", err.Error())
}
