package board

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/forty96/internal/engine"
)

// Grid is the snapshot format: n rows of n values, row-major, no metadata.
type Grid [][]uint16

// NewGrid returns an all-empty n x n grid.
func NewGrid(n int) Grid {
	g := make(Grid, n)
	for y := range g {
		g[y] = make([]uint16, n)
	}
	return g
}

// Equal reports whether g and o hold the same values in the same shape.
func (g Grid) Equal(o Grid) bool {
	if len(g) != len(o) {
		return false
	}
	for y := range g {
		if len(g[y]) != len(o[y]) {
			return false
		}
		for x := range g[y] {
			if g[y][x] != o[y][x] {
				return false
			}
		}
	}
	return true
}

// Sum returns the total of all cell values.
func (g Grid) Sum() int {
	total := 0
	for _, row := range g {
		for _, v := range row {
			total += int(v)
		}
	}
	return total
}

// Clone returns a deep copy.
func (g Grid) Clone() Grid {
	out := make(Grid, len(g))
	for y, row := range g {
		out[y] = append([]uint16(nil), row...)
	}
	return out
}

// String renders the grid one bracketed row per line, values right-aligned.
func (g Grid) String() string {
	var sb strings.Builder
	for y, row := range g {
		if y > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString("[")
		for _, v := range row {
			fmt.Fprintf(&sb, "%6d", v)
		}
		sb.WriteString(" ]")
	}
	return sb.String()
}

// Validate checks that g is an n x n grid of storable values.
func (g Grid) Validate(n int) error {
	if len(g) != n {
		return engine.NewInvalidStateError(fmt.Sprintf("grid has %d rows, want %d", len(g), n))
	}
	for y, row := range g {
		if len(row) != n {
			return engine.NewInvalidStateError(fmt.Sprintf("grid row %d has %d cells, want %d", y, len(row), n))
		}
		for x, v := range row {
			if !ValidValue(v) {
				return engine.NewInvalidStateError(fmt.Sprintf("grid cell (%d,%d) holds %d", x, y, v))
			}
		}
	}
	return nil
}

// State returns a deep copy of the grid as observed by an action on the
// board's queue.
func (b *Board) State(ctx context.Context, t *engine.Ticket) (Grid, error) {
	return engine.Do(ctx, b.queue, t, func(ctx context.Context, t *engine.Ticket) (Grid, error) {
		values := b.Values()
		g := NewGrid(b.size)
		for y := range g {
			copy(g[y], values[y*b.size:(y+1)*b.size])
		}
		return g, nil
	})
}

// RestoreState overwrites every cell with g, in row-major order, under one
// ticket. Each write is notified as a Spawned tile.
func (b *Board) RestoreState(ctx context.Context, g Grid, t *engine.Ticket) error {
	if err := g.Validate(b.size); err != nil {
		return err
	}

	return b.Run(ctx, t, func(ctx context.Context, t *engine.Ticket) error {
		for y, row := range g {
			for x, v := range row {
				if _, err := b.SetTile(ctx, b.ID(x, y), v, SpawnedCreation(), t); err != nil {
					return fmt.Errorf("restore (%d,%d): %w", x, y, err)
				}
			}
		}
		return nil
	})
}
