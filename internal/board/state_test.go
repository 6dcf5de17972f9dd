package board

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/forty96/internal/engine"
)

func TestState_RestoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	b := newTestBoard(t, 4)

	want := Grid{
		{0, 2, 2, 32},
		{0, 0, 0, 16},
		{0, 0, 0, 8},
		{0, 0, 0, 0},
	}

	var seen []Tile
	b.Subscribe(func(tile Tile) { seen = append(seen, tile) })

	require.NoError(t, b.RestoreState(ctx, want, nil))

	got, err := b.State(ctx, nil)
	require.NoError(t, err)
	assert.True(t, want.Equal(got), "got\n%s", got)

	require.Len(t, seen, 16, "every cell is written")
	for i, tile := range seen {
		assert.Equal(t, TileID(i), tile.ID, "row-major order")
		assert.Equal(t, Spawned, tile.Creation.Kind)
	}
}

func TestState_IsDeepCopy(t *testing.T) {
	ctx := context.Background()
	b := newTestBoard(t, 2)

	g, err := b.State(ctx, nil)
	require.NoError(t, err)
	g[0][0] = 1024

	assert.Equal(t, uint16(0), b.TileValue(0))
}

func TestRestoreState_RejectsBadGrid(t *testing.T) {
	ctx := context.Background()
	b := newTestBoard(t, 2)

	tests := []struct {
		name string
		grid Grid
	}{
		{"too few rows", Grid{{0, 0}}},
		{"ragged row", Grid{{0, 0}, {0}}},
		{"not a power of two", Grid{{0, 6}, {0, 0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := b.RestoreState(ctx, tt.grid, nil)
			require.Error(t, err)
			assert.True(t, engine.IsInvalidState(err))
		})
	}
}

func TestGrid_Helpers(t *testing.T) {
	g := Grid{{2, 4}, {0, 8}}
	assert.Equal(t, 14, g.Sum())

	c := g.Clone()
	c[0][0] = 16
	assert.False(t, g.Equal(c))
	assert.True(t, g.Equal(Grid{{2, 4}, {0, 8}}))
	assert.False(t, g.Equal(Grid{{2, 4}}))

	assert.Equal(t, "[     2     4 ]\n[     0     8 ]", g.String())
	assert.True(t, NewGrid(3).Equal(Grid{{0, 0, 0}, {0, 0, 0}, {0, 0, 0}}))
}

func TestCreation_String(t *testing.T) {
	assert.Equal(t, "spawned", SpawnedCreation().String())
	assert.Equal(t, "moved(3)", MovedFrom(3).String())
	assert.Equal(t, "merged(1,2)", MergedFrom(1, 2).String())
	assert.Equal(t, []TileID{1, 2}, MergedFrom(1, 2).Sources())
	assert.Nil(t, SpawnedCreation().Sources())
}
