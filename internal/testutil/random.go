package testutil

import (
	"context"
	"errors"
	"sync"
)

// ErrBytesExhausted is returned by ByteSource once all bytes are consumed
// and looping is off.
var ErrBytesExhausted = errors.New("testutil: random bytes exhausted")

// ByteSource replays predetermined "random" bytes.
//
// This makes spawn positions and values deterministic: the low bit of each
// byte picks 2 or 4, the remaining bits pick the empty cell.
//
// Thread-safety: ByteSource is safe for concurrent use via internal mutex.
type ByteSource struct {
	mu    sync.Mutex
	bytes []byte
	idx   int
	loop  bool
	calls int
}

// NewByteSource returns a source that yields bytes in order and then fails
// with ErrBytesExhausted.
func NewByteSource(b ...byte) *ByteSource {
	return &ByteSource{bytes: b}
}

// NewLoopingByteSource returns a source that cycles through b forever.
// b must not be empty.
func NewLoopingByteSource(b ...byte) *ByteSource {
	if len(b) == 0 {
		panic("NewLoopingByteSource: no bytes")
	}
	return &ByteSource{bytes: b, loop: true}
}

// Fill implements board.RandomSource.
func (s *ByteSource) Fill(ctx context.Context, buf []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	for i := range buf {
		if s.idx >= len(s.bytes) {
			if !s.loop {
				return ErrBytesExhausted
			}
			s.idx = 0
		}
		buf[i] = s.bytes[s.idx]
		s.idx++
	}
	return nil
}

// Calls returns how many times Fill was called.
func (s *ByteSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// BlockingSource blocks every Fill until Unblock is called or ctx ends.
// Used to hold a board's queue inside a spawn.
type BlockingSource struct {
	release chan struct{}
	once    sync.Once
	value   byte
}

// NewBlockingSource creates a source that yields value once unblocked.
func NewBlockingSource(value byte) *BlockingSource {
	return &BlockingSource{release: make(chan struct{}), value: value}
}

// Fill implements board.RandomSource.
func (s *BlockingSource) Fill(ctx context.Context, buf []byte) error {
	select {
	case <-s.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	for i := range buf {
		buf[i] = s.value
	}
	return nil
}

// Unblock lets all current and future Fill calls proceed.
func (s *BlockingSource) Unblock() {
	s.once.Do(func() { close(s.release) })
}
