package board

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/forty96/internal/engine"
	"github.com/roach88/forty96/internal/testutil"
)

// newTestBoard creates a board with a deterministic byte source.
func newTestBoard(t *testing.T, size int, bytes ...byte) *Board {
	t.Helper()
	b, err := New(size, WithRandomSource(testutil.NewByteSource(bytes...)))
	require.NoError(t, err)
	return b
}

func TestNew_SizeBounds(t *testing.T) {
	for _, size := range []int{MinSize, DefaultSize, MaxSize} {
		b, err := New(size)
		require.NoError(t, err)
		assert.Equal(t, size, b.Size())
		assert.Len(t, b.Values(), size*size)
	}

	for _, size := range []int{-1, 0, 1, 16} {
		_, err := New(size)
		require.Error(t, err, "size %d", size)
		assert.True(t, engine.IsInvalidState(err))
	}
}

func TestBoard_Geometry(t *testing.T) {
	b := newTestBoard(t, 4)

	assert.Equal(t, TileID(6), b.ID(2, 1))
	x, y := b.XY(13)
	assert.Equal(t, 1, x)
	assert.Equal(t, 3, y)
	assert.True(t, b.Contains(15))
	assert.False(t, b.Contains(16))
	assert.False(t, b.Contains(-1))
}

func TestSetTile_WritesAndNotifies(t *testing.T) {
	ctx := context.Background()
	b := newTestBoard(t, 4)

	var seen []Tile
	b.Subscribe(func(tile Tile) { seen = append(seen, tile) })

	tile, err := b.SetTile(ctx, 6, 8, MovedFrom(7), nil)
	require.NoError(t, err)

	assert.Equal(t, uint16(8), b.TileValueAt(2, 1))
	assert.Equal(t, TileID(6), tile.ID)
	assert.Equal(t, 2, tile.X)
	assert.Equal(t, 1, tile.Y)
	assert.Equal(t, uint16(8), tile.Value)
	assert.Equal(t, MovedFrom(7), tile.Creation)
	assert.Same(t, b, tile.Board)

	require.Len(t, seen, 1)
	assert.Equal(t, tile, seen[0])
	assert.Nil(t, b.Queue().Current(), "top-level call releases its ticket")
}

func TestSetTile_RejectsBadInput(t *testing.T) {
	ctx := context.Background()
	b := newTestBoard(t, 4)

	_, err := b.SetTile(ctx, 16, 2, SpawnedCreation(), nil)
	assert.True(t, engine.IsInvalidState(err))

	_, err = b.SetTile(ctx, 0, 3, SpawnedCreation(), nil)
	assert.True(t, engine.IsInvalidState(err))

	_, err = b.SetTile(ctx, 0, 1, SpawnedCreation(), nil)
	assert.True(t, engine.IsInvalidState(err))
}

func TestSetTile_SubscriberPanicIsSwallowed(t *testing.T) {
	ctx := context.Background()
	b := newTestBoard(t, 4)

	calls := 0
	b.Subscribe(func(Tile) { panic("renderer bug") })
	b.Subscribe(func(Tile) { calls++ })

	_, err := b.SetTile(ctx, 0, 2, SpawnedCreation(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, uint16(2), b.TileValue(0))
}

func TestSetTile_UnsubscribeStopsNotifications(t *testing.T) {
	ctx := context.Background()
	b := newTestBoard(t, 4)

	calls := 0
	unsubscribe := b.Subscribe(func(Tile) { calls++ })
	_, _ = b.SetTile(ctx, 0, 2, SpawnedCreation(), nil)
	unsubscribe()
	_, _ = b.SetTile(ctx, 1, 2, SpawnedCreation(), nil)

	assert.Equal(t, 1, calls)
}

func TestRandomTile_ValueAndPosition(t *testing.T) {
	tests := []struct {
		name  string
		b     byte
		id    TileID
		value uint16
	}{
		{"zero byte", 0x00, 0, 2},
		{"low bit picks four", 0x01, 0, 4},
		{"upper bits pick cell", 0x05, 2, 4},
		{"modulo empty count", 0xFE, TileID(127 % 16), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBoard(t, 4, tt.b)
			tile, err := b.RandomTile(context.Background(), nil)
			require.NoError(t, err)
			require.NotNil(t, tile)
			assert.Equal(t, tt.id, tile.ID)
			assert.Equal(t, tt.value, tile.Value)
			assert.Equal(t, SpawnedCreation(), tile.Creation)
			assert.Equal(t, tt.value, b.TileValue(tt.id))
		})
	}
}

func TestRandomTile_IndexesEmptyCellsOnly(t *testing.T) {
	ctx := context.Background()
	src := testutil.NewByteSource(0x02)
	b, err := New(2, WithRandomSource(src))
	require.NoError(t, err)

	require.NoError(t, b.RestoreState(ctx, Grid{{2, 0}, {0, 4}}, nil))

	// Empty cells are [1, 2]; (0x02 >> 1) % 2 == 1 selects id 2.
	tile, err := b.RandomTile(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, TileID(2), tile.ID)
}

func TestRandomTile_FullBoard(t *testing.T) {
	ctx := context.Background()
	src := testutil.NewByteSource()
	b, err := New(2, WithRandomSource(src))
	require.NoError(t, err)
	require.NoError(t, b.RestoreState(ctx, Grid{{2, 4}, {8, 16}}, nil))

	tile, err := b.RandomTile(ctx, nil)
	require.NoError(t, err)
	assert.Nil(t, tile)
	assert.Equal(t, 0, src.Calls(), "no byte is drawn for a full board")
}

func TestRandomTile_SourceFailure(t *testing.T) {
	boom := errors.New("entropy gone")
	b, err := New(4, WithRandomSource(RandomSourceFunc(func(context.Context, []byte) error {
		return boom
	})))
	require.NoError(t, err)

	_, err = b.RandomTile(context.Background(), nil)
	require.ErrorIs(t, err, boom)
	assert.Nil(t, b.Queue().Current())
}

func TestBoard_TopLevelCallsAreFIFO(t *testing.T) {
	ctx := context.Background()
	src := testutil.NewBlockingSource(0x02)
	b, err := New(4, WithRandomSource(src))
	require.NoError(t, err)

	var order []TileID
	b.Subscribe(func(tile Tile) { order = append(order, tile.ID) })

	spawned := make(chan error, 1)
	go func() {
		_, err := b.RandomTile(ctx, nil)
		spawned <- err
	}()
	require.Eventually(t, func() bool { return b.Queue().Current() != nil }, time.Second, time.Millisecond)

	set := make(chan error, 1)
	go func() {
		_, err := b.SetTile(ctx, 0, 8, SpawnedCreation(), nil)
		set <- err
	}()
	require.Eventually(t, func() bool { return b.Queue().Len() == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, uint16(0), b.TileValue(0), "queued write must wait for the spawn")

	src.Unblock()
	require.NoError(t, <-spawned)
	require.NoError(t, <-set)

	assert.Equal(t, []TileID{1, 0}, order)
}

func TestBoard_ChainedCallsUnderOneTicket(t *testing.T) {
	ctx := context.Background()
	b := newTestBoard(t, 4, 0x00)

	err := b.Run(ctx, nil, func(ctx context.Context, tk *engine.Ticket) error {
		if _, err := b.SetTile(ctx, 0, 2, SpawnedCreation(), tk); err != nil {
			return err
		}
		tile, err := b.RandomTile(ctx, tk)
		if err != nil {
			return err
		}
		// Cell 0 is taken, so the first empty cell is 1.
		assert.Equal(t, TileID(1), tile.ID)

		g, err := b.State(ctx, tk)
		if err != nil {
			return err
		}
		assert.Equal(t, uint16(2), g[0][0])
		assert.Equal(t, uint16(2), g[0][1])
		return nil
	})
	require.NoError(t, err)
}
