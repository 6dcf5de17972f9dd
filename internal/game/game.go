package game

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/roach88/forty96/internal/board"
	"github.com/roach88/forty96/internal/engine"
)

// Game is the facade over the current StandardBoard.
//
// A Game starts without a board; Reset or RestoreState creates one. Both
// replace the board wholesale, so the move counter restarts with it.
// Subscribers see the tiles of whichever board is current.
//
// Thread-safety: all methods are safe for concurrent use. Operations on the
// same board are serialized by that board's queue.
type Game struct {
	size   int
	spawn  bool
	random board.RandomSource
	logger *slog.Logger
	tiles  *engine.Listeners[board.Tile]

	mu      sync.Mutex
	board   *StandardBoard
	forward func()
}

// Option configures a Game.
type Option func(*Game)

// WithSpawnAfterMove sets whether boards spawn a tile after each move.
// Default: true.
func WithSpawnAfterMove(on bool) Option {
	return func(g *Game) {
		g.spawn = on
	}
}

// WithRandomSource sets the byte source of every board the game creates.
func WithRandomSource(src board.RandomSource) Option {
	return func(g *Game) {
		g.random = src
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(g *Game) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// New creates a game for size x size boards. Call Reset to start playing.
func New(size int, opts ...Option) (*Game, error) {
	if size < board.MinSize || size > board.MaxSize {
		return nil, engine.NewInvalidStateError(
			fmt.Sprintf("board size %d out of range [%d, %d]", size, board.MinSize, board.MaxSize))
	}

	g := &Game{
		size:   size,
		spawn:  true,
		random: board.CryptoSource{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.tiles = engine.NewListeners[board.Tile]("game-tiles", g.logger)
	return g, nil
}

// Size returns the edge length of the game's boards.
func (g *Game) Size() int {
	return g.size
}

// Subscribe registers fn for tile notifications of the current board.
func (g *Game) Subscribe(fn func(board.Tile)) (unsubscribe func()) {
	return g.tiles.Subscribe(fn)
}

// Board returns the current board, or nil before the first Reset.
func (g *Game) Board() *StandardBoard {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.board
}

// MoveCount returns the current board's move counter, or 0 without a board.
func (g *Game) MoveCount() int {
	if b := g.Board(); b != nil {
		return b.MoveCount()
	}
	return 0
}

// Reset starts a new game: a fresh board with one random tile.
//
// When a previous board existed and someone is subscribed, every cell that
// held a value on the old board (other than the spawned cell) is notified as
// empty, so renderers that only follow notifications can clear their view.
func (g *Game) Reset(ctx context.Context) error {
	old, b, err := g.replaceBoard()
	if err != nil {
		return err
	}

	return b.Run(ctx, nil, func(ctx context.Context, t *engine.Ticket) error {
		tile, err := b.RandomTile(ctx, t)
		if err != nil {
			return fmt.Errorf("reset: %w", err)
		}
		if tile == nil || old == nil || g.Board() != b || g.tiles.Len() == 0 {
			return nil
		}

		l := b.Size()
		for y := 0; y < l; y++ {
			for x := 0; x < l; x++ {
				if (tile.X == x && tile.Y == y) || old.TileValueAt(x, y) == 0 {
					continue
				}
				g.tiles.Notify(board.Tile{
					Board:    b.Board,
					ID:       b.ID(x, y),
					X:        x,
					Y:        y,
					Creation: board.SpawnedCreation(),
				})
			}
		}
		return nil
	})
}

// RestoreState starts a new board holding grid. Restored input is trusted:
// no terminal check is made. An ill-shaped grid leaves the current board in
// place.
func (g *Game) RestoreState(ctx context.Context, grid board.Grid) error {
	if err := grid.Validate(g.size); err != nil {
		return err
	}

	_, b, err := g.replaceBoard()
	if err != nil {
		return err
	}
	return b.RestoreState(ctx, grid, nil)
}

// State returns a snapshot of the current board.
func (g *Game) State(ctx context.Context) (board.Grid, error) {
	b, err := g.requireBoard()
	if err != nil {
		return nil, err
	}
	return b.State(ctx, nil)
}

// Move delegates one move to the current board.
func (g *Game) Move(ctx context.Context, dir Direction) error {
	b, err := g.requireBoard()
	if err != nil {
		return err
	}
	return b.Move(ctx, dir, nil)
}

// Up moves the current board up.
func (g *Game) Up(ctx context.Context) error { return g.Move(ctx, Up) }

// Down moves the current board down.
func (g *Game) Down(ctx context.Context) error { return g.Move(ctx, Down) }

// Left moves the current board left.
func (g *Game) Left(ctx context.Context) error { return g.Move(ctx, Left) }

// Right moves the current board right.
func (g *Game) Right(ctx context.Context) error { return g.Move(ctx, Right) }

func (g *Game) requireBoard() (*StandardBoard, error) {
	b := g.Board()
	if b == nil {
		return nil, engine.NewInvalidStateError("No game board initialized. Reset to start a new game.")
	}
	return b, nil
}

// replaceBoard installs a fresh board and moves the forwarding subscription
// onto it.
func (g *Game) replaceBoard() (old, fresh *StandardBoard, err error) {
	fresh, err = NewStandardBoard(g.size,
		board.WithRandomSource(g.random),
		board.WithLogger(g.logger),
	)
	if err != nil {
		return nil, nil, err
	}
	fresh.SetSpawnAfterMove(g.spawn)

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.forward != nil {
		g.forward()
	}
	old = g.board
	g.board = fresh
	g.forward = fresh.Subscribe(func(t board.Tile) {
		g.tiles.Notify(t)
	})

	g.logger.Debug("board replaced", "size", g.size, "had_previous", old != nil)
	return old, fresh, nil
}
