package board

import (
	"context"
	"crypto/rand"
	"fmt"
)

// RandomSource fills buf with uniformly distributed random bytes.
// A failure aborts the spawn (and the move) that asked for the bytes.
type RandomSource interface {
	Fill(ctx context.Context, buf []byte) error
}

// RandomSourceFunc adapts a function to RandomSource.
type RandomSourceFunc func(ctx context.Context, buf []byte) error

// Fill calls f.
func (f RandomSourceFunc) Fill(ctx context.Context, buf []byte) error {
	return f(ctx, buf)
}

// CryptoSource draws bytes from crypto/rand.
type CryptoSource struct{}

// Fill implements RandomSource.
func (CryptoSource) Fill(ctx context.Context, buf []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := rand.Read(buf); err != nil {
		return fmt.Errorf("read random bytes: %w", err)
	}
	return nil
}
