package board

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/roach88/forty96/internal/engine"
)

const (
	// MinSize is the smallest supported edge length.
	MinSize = 2
	// MaxSize is the largest supported edge length.
	MaxSize = 15
	// DefaultSize is the classic 4x4 board.
	DefaultSize = 4
	// MaxValue is the largest cell value representable in 16 bits.
	MaxValue uint16 = 1 << 15
)

// Board is a fixed-size grid of tile values with its own action queue.
//
// Cell writes happen only inside an action holding the board's active
// ticket. The RWMutex only makes the lock-free TileValue reads race-free; it
// is not the serialization mechanism.
type Board struct {
	size   int
	queue  *engine.Queue
	random RandomSource
	logger *slog.Logger
	tiles  *engine.Listeners[Tile]

	mu    sync.RWMutex
	cells []uint16
}

// Option configures a Board.
type Option func(*Board)

// WithRandomSource sets the byte source used by RandomTile.
// Default: CryptoSource.
func WithRandomSource(src RandomSource) Option {
	return func(b *Board) {
		if src != nil {
			b.random = src
		}
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(b *Board) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// New creates an empty board with the given edge length.
func New(size int, opts ...Option) (*Board, error) {
	if size < MinSize || size > MaxSize {
		return nil, engine.NewInvalidStateError(
			fmt.Sprintf("board size %d out of range [%d, %d]", size, MinSize, MaxSize))
	}

	b := &Board{
		size:   size,
		queue:  engine.NewQueue("board"),
		random: CryptoSource{},
		logger: slog.Default(),
		cells:  make([]uint16, size*size),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.tiles = engine.NewListeners[Tile]("board-tiles", b.logger)
	return b, nil
}

// Size returns the edge length n.
func (b *Board) Size() int {
	return b.size
}

// Queue returns the queue serializing this board's actions.
func (b *Board) Queue() *engine.Queue {
	return b.queue
}

// Logger returns the board's logger.
func (b *Board) Logger() *slog.Logger {
	return b.logger
}

// ID converts coordinates to a TileID.
func (b *Board) ID(x, y int) TileID {
	return TileID(y*b.size + x)
}

// XY converts a TileID to coordinates.
func (b *Board) XY(id TileID) (x, y int) {
	return int(id) % b.size, int(id) / b.size
}

// Contains reports whether id addresses a cell of this board.
func (b *Board) Contains(id TileID) bool {
	return id >= 0 && int(id) < len(b.cells)
}

// TileValue reads a cell from the live grid without queueing.
// Inside an action this observes the action's own writes.
func (b *Board) TileValue(id TileID) uint16 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.cells[id]
}

// TileValueAt is TileValue by coordinates.
func (b *Board) TileValueAt(x, y int) uint16 {
	return b.TileValue(b.ID(x, y))
}

// Values returns a row-major copy of the live grid without queueing.
func (b *Board) Values() []uint16 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]uint16, len(b.cells))
	copy(out, b.cells)
	return out
}

// Subscribe registers fn for every committed cell write.
// fn runs synchronously inside the write; a panic in fn is logged and
// swallowed.
func (b *Board) Subscribe(fn func(Tile)) (unsubscribe func()) {
	return b.tiles.Subscribe(fn)
}

// Run runs work as an action on the board's queue (see engine.Do).
func (b *Board) Run(ctx context.Context, t *engine.Ticket, work func(ctx context.Context, t *engine.Ticket) error) error {
	return b.queue.Run(ctx, t, work)
}

// SetTile writes one cell and notifies subscribers with the resulting Tile.
func (b *Board) SetTile(ctx context.Context, id TileID, value uint16, creation Creation, t *engine.Ticket) (Tile, error) {
	if !b.Contains(id) {
		return Tile{}, engine.NewInvalidStateError(fmt.Sprintf("tile id %d out of bounds for size %d", id, b.size))
	}
	if !ValidValue(value) {
		return Tile{}, engine.NewInvalidStateError(fmt.Sprintf("tile value %d is not 0 or a power of two", value))
	}

	return engine.Do(ctx, b.queue, t, func(ctx context.Context, t *engine.Ticket) (Tile, error) {
		return b.setTileLocked(id, value, creation), nil
	})
}

// setTileLocked writes a cell. Caller must hold the active ticket.
func (b *Board) setTileLocked(id TileID, value uint16, creation Creation) Tile {
	b.mu.Lock()
	b.cells[id] = value
	b.mu.Unlock()

	x, y := b.XY(id)
	tile := Tile{
		Board:    b,
		ID:       id,
		X:        x,
		Y:        y,
		Value:    value,
		Creation: creation,
	}
	b.logger.Debug("tile set", "tile", tile.String())
	b.tiles.Notify(tile)
	return tile
}

// RandomTile spawns a 2 or a 4 on a random empty cell.
// Returns nil, nil when the board is full.
//
// One random byte decides both: the low bit picks the value, the remaining
// seven bits modulo the number of empty cells pick the cell.
func (b *Board) RandomTile(ctx context.Context, t *engine.Ticket) (*Tile, error) {
	return engine.Do(ctx, b.queue, t, func(ctx context.Context, t *engine.Ticket) (*Tile, error) {
		empty := b.emptyCells()
		if len(empty) == 0 {
			return nil, nil
		}

		var buf [1]byte
		if err := b.random.Fill(ctx, buf[:]); err != nil {
			return nil, fmt.Errorf("random tile: %w", err)
		}
		r := buf[0]
		value := uint16(2) << (r & 1)
		id := empty[int(r>>1)%len(empty)]

		tile, err := b.SetTile(ctx, id, value, SpawnedCreation(), t)
		if err != nil {
			return nil, err
		}
		return &tile, nil
	})
}

func (b *Board) emptyCells() []TileID {
	b.mu.RLock()
	defer b.mu.RUnlock()

	empty := make([]TileID, 0, len(b.cells))
	for id, v := range b.cells {
		if v == 0 {
			empty = append(empty, TileID(id))
		}
	}
	return empty
}

// ValidValue reports whether v may be stored in a cell.
func ValidValue(v uint16) bool {
	return v == 0 || (v >= 2 && v&(v-1) == 0)
}
