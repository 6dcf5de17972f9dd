package game

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/roach88/forty96/internal/board"
	"github.com/roach88/forty96/internal/engine"
)

// StandardBoard is a board with the classic 2048 move rules.
type StandardBoard struct {
	*board.Board

	spawn atomic.Bool
	moves atomic.Int64
}

// NewStandardBoard creates an empty board that spawns a tile after every
// successful move.
func NewStandardBoard(size int, opts ...board.Option) (*StandardBoard, error) {
	b, err := board.New(size, opts...)
	if err != nil {
		return nil, err
	}
	sb := &StandardBoard{Board: b}
	sb.spawn.Store(true)
	return sb, nil
}

// MoveCount returns the number of successful moves made on this board.
func (s *StandardBoard) MoveCount() int {
	return int(s.moves.Load())
}

// SpawnAfterMove reports whether a random tile is spawned after each move.
func (s *StandardBoard) SpawnAfterMove() bool {
	return s.spawn.Load()
}

// SetSpawnAfterMove turns the spawn step on or off. Off is the deterministic
// mode used by the self-test scenarios.
func (s *StandardBoard) SetSpawnAfterMove(on bool) {
	s.spawn.Store(on)
}

// Left moves and merges tiles toward the left edge.
func (s *StandardBoard) Left(ctx context.Context, t *engine.Ticket) error {
	return s.Move(ctx, Left, t)
}

// Right moves and merges tiles toward the right edge.
func (s *StandardBoard) Right(ctx context.Context, t *engine.Ticket) error {
	return s.Move(ctx, Right, t)
}

// Up moves and merges tiles toward the top edge.
func (s *StandardBoard) Up(ctx context.Context, t *engine.Ticket) error {
	return s.Move(ctx, Up, t)
}

// Down moves and merges tiles toward the bottom edge.
func (s *StandardBoard) Down(ctx context.Context, t *engine.Ticket) error {
	return s.Move(ctx, Down, t)
}

// Move executes one move as a single action on the board's queue.
//
// Returns an invalid_move error, with no side effects, if nothing slid or
// merged. Otherwise the changed cells are written, the move is counted, a
// tile is spawned if enabled, and a game_over error is returned if the
// resulting grid has no empty cell and no mergeable neighbours.
func (s *StandardBoard) Move(ctx context.Context, dir Direction, t *engine.Ticket) error {
	if dir < Left || dir > Down {
		return engine.NewInvalidStateError(fmt.Sprintf("unknown direction %d", int(dir)))
	}

	return s.Run(ctx, t, func(ctx context.Context, t *engine.Ticket) error {
		l := s.Size()
		changes := planMove(s.Values(), l, dir)
		if len(changes) == 0 {
			return engine.NewInvalidMoveError("Move caused no change in state.")
		}

		for _, c := range changes {
			if _, err := s.SetTile(ctx, c.id, c.value, c.creation, t); err != nil {
				return fmt.Errorf("%s: %w", dir, err)
			}
		}
		count := s.moves.Add(1)

		s.Logger().Debug("move applied",
			"direction", dir.String(),
			"changes", len(changes),
			"move_count", count,
			"ticket", t.String(),
		)

		if s.SpawnAfterMove() {
			if _, err := s.RandomTile(ctx, t); err != nil {
				return fmt.Errorf("%s: %w", dir, err)
			}
		}

		if !HasMoves(s.Values(), l) {
			s.Logger().Info("no moves left", "move_count", count)
			return engine.NewGameOverError("No possible moves left.")
		}
		return nil
	})
}
