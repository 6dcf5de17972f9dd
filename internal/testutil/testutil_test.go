package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedSessionGenerator(t *testing.T) {
	gen := NewFixedSessionGenerator("session-123")
	assert.Equal(t, "session-123", gen.Generate())
	assert.Equal(t, "session-123", gen.Generate())

	assert.Equal(t, "test-session-default", NewFixedSessionGenerator("").Generate())
}

func TestByteSource_ReplaysThenExhausts(t *testing.T) {
	ctx := context.Background()
	src := NewByteSource(1, 2, 3)

	buf := make([]byte, 2)
	require.NoError(t, src.Fill(ctx, buf))
	assert.Equal(t, []byte{1, 2}, buf)

	require.ErrorIs(t, src.Fill(ctx, buf), ErrBytesExhausted)
	assert.Equal(t, 2, src.Calls())
}

func TestByteSource_Loops(t *testing.T) {
	ctx := context.Background()
	src := NewLoopingByteSource(7, 9)

	buf := make([]byte, 5)
	require.NoError(t, src.Fill(ctx, buf))
	assert.Equal(t, []byte{7, 9, 7, 9, 7}, buf)
}

func TestByteSource_HonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, NewByteSource(1).Fill(ctx, make([]byte, 1)), context.Canceled)
}

func TestBlockingSource(t *testing.T) {
	src := NewBlockingSource(4)
	done := make(chan []byte, 1)
	go func() {
		buf := make([]byte, 1)
		_ = src.Fill(context.Background(), buf)
		done <- buf
	}()

	select {
	case <-done:
		t.Fatal("Fill returned before Unblock")
	case <-time.After(10 * time.Millisecond):
	}

	src.Unblock()
	assert.Equal(t, []byte{4}, <-done)
}
