package cli

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/forty96/internal/game"
	"github.com/roach88/forty96/internal/testutil"
)

func TestPlay_PipedKeysToGameOver(t *testing.T) {
	opts := &RootOptions{Random: testutil.NewLoopingByteSource(0x00)}

	// The first a is a no-op; the rest fill a 2x2 board until it locks.
	out, err := execute(t, opts, "adaswawda", "play", "--size", "2")
	require.NoError(t, err)

	assert.Contains(t, out, "  Move caused no change in state.\n")
	assert.Contains(t, out, "  No possible moves left.\n")
	assert.True(t, strings.HasSuffix(out, "  8 moves played.\n"), out)

	final := " |      8 |      4 |\n" +
		" +--------+--------+\n" +
		" |      4 |      2 |\n"
	assert.Contains(t, out, final)

	// One frame after reset, one per successful move, one at game over.
	assert.Equal(t, 1+7+1, strings.Count(out, controlsLine))
}

func TestPlay_IgnoresOtherKeysAndQuitsOnCtrlD(t *testing.T) {
	opts := &RootOptions{Random: testutil.NewLoopingByteSource(0x00)}

	out, err := execute(t, opts, "x?D\x04ddd", "play", "--size", "2")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out, "  1 move played.\n"), out)
}

func TestPlay_UppercaseKeys(t *testing.T) {
	for key, dir := range map[byte]game.Direction{
		'W': game.Up, 'A': game.Left, 'S': game.Down, 'D': game.Right,
		'w': game.Up, 'a': game.Left, 's': game.Down, 'd': game.Right,
	} {
		got, ok := keyDirection(key)
		require.True(t, ok, "key %q", key)
		assert.Equal(t, dir, got, "key %q", key)
	}
	_, ok := keyDirection('q')
	assert.False(t, ok)
}

func TestPlay_EndOfInput(t *testing.T) {
	opts := &RootOptions{Random: testutil.NewLoopingByteSource(0x00)}

	out, err := execute(t, opts, "", "play")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, controlsLine))
	assert.True(t, strings.HasSuffix(out, "  0 moves played.\n"), out)
}

func TestPlay_Timeout(t *testing.T) {
	pr, pw := io.Pipe()
	t.Cleanup(func() { pw.Close() })

	cmd := newRootCommand(&RootOptions{Random: testutil.NewLoopingByteSource(0x00)})
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(pr)
	cmd.SetArgs([]string{"play", "--timeout", "20ms"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Equal(t, "user timeout", err.Error())
	assert.Contains(t, out.String(), "0 moves played.")
}

func TestPlay_BadFlags(t *testing.T) {
	_, err := execute(t, nil, "", "play", "--size", "1")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, err = execute(t, nil, "", "play", "--timeout", "0s")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestPlay_TerminalRedrawsTiles(t *testing.T) {
	terminal := true
	opts := &RootOptions{
		Random:   testutil.NewLoopingByteSource(0x00),
		Terminal: &terminal,
	}

	out, err := execute(t, opts, "ad", "play", "--size", "2", "--spawn=false")
	require.NoError(t, err)

	// A single frame; everything after it is in-place edits.
	assert.Equal(t, 1, strings.Count(out, controlsLine))
	// Reset spawns a 2 at the top left.
	assert.Contains(t, out, "\x1b[8A\x1b[3C     2\x1b[8B\r\n\x1b[1A")
	// a is a no-op and reports on the status line.
	assert.Contains(t, out, "\x1b[36mMove caused no change in state.\x1b[0m")
	// d slides the 2 to the right and clears its old cell.
	assert.Contains(t, out, "\x1b[8A\x1b[12C     2\x1b[8B\r\n\x1b[1A")
	assert.Contains(t, out, "\x1b[8A\x1b[3C      \x1b[8B\r\n\x1b[1A")
	assert.Contains(t, out, "1 move played.")
}
