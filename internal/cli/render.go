package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/roach88/forty96/internal/board"
)

const (
	controlsLine    = "  Controls: [ w = up ] [ a = left ] [ s = down ] [ d = right ]"
	descriptionLine = "  Description: Merge tiles of the same number."

	// Cells are " |" then " vvvvvv |" per column: 9 columns each, 3 to the
	// first digit.
	cellWidth  = 9
	cellOffset = 3
)

// Renderer draws boards with ANSI escapes.
//
// A frame is the full board followed by the controls. In incremental mode
// the cursor parks on the status line below the frame and DrawTile jumps up
// to rewrite a single cell.
type Renderer struct {
	w    io.Writer
	size int
	eol  string
}

// NewRenderer creates a renderer for size x size boards.
func NewRenderer(w io.Writer, size int) *Renderer {
	return &Renderer{w: w, size: size, eol: "\n"}
}

// SetRaw switches line endings to CRLF for terminals in raw mode.
func (r *Renderer) SetRaw(raw bool) {
	if raw {
		r.eol = "\r\n"
	} else {
		r.eol = "\n"
	}
}

// DrawFrame prints a full frame. A nil grid draws empty cells.
func (r *Renderer) DrawFrame(g board.Grid) error {
	divider := " +" + strings.Repeat("--------+", r.size)

	var sb strings.Builder
	sb.WriteString(strings.Repeat(r.eol, 4))
	sb.WriteString(divider + r.eol)
	for y := 0; y < r.size; y++ {
		sb.WriteString(" |")
		for x := 0; x < r.size; x++ {
			var v uint16
			if g != nil {
				v = g[y][x]
			}
			sb.WriteString(" " + cellText(v) + " |")
		}
		sb.WriteString(r.eol + divider + r.eol)
	}
	sb.WriteString(r.eol + controlsLine + r.eol + descriptionLine + r.eol + r.eol)

	_, err := io.WriteString(r.w, sb.String())
	return err
}

// DrawTile rewrites one cell of the last frame in place.
func (r *Renderer) DrawTile(t board.Tile) error {
	up := (r.size-t.Y)*2 + 4
	text := cellText(t.Value)
	if c := colorFor(t.Value); c != "" {
		text = "\x1b[" + c + "m" + text + "\x1b[0m"
	}

	_, err := fmt.Fprintf(r.w, "\x1b[%dA\x1b[%dC%s\x1b[%dB\r\n\x1b[1A", up, t.X*cellWidth+cellOffset, text, up)
	return err
}

// Status prints msg in cyan on the status line and keeps the cursor there.
func (r *Renderer) Status(msg string) error {
	_, err := io.WriteString(r.w, "  \x1b[36m"+msg+"\x1b[0m\r\n\x1b[1A")
	return err
}

// ClearStatus blanks the status line.
func (r *Renderer) ClearStatus() error {
	_, err := io.WriteString(r.w, "\x1b[2D"+strings.Repeat(" ", 46)+"\r\n\x1b[1A")
	return err
}

// cellText right-aligns v in six columns; empty cells are blank.
func cellText(v uint16) string {
	if v == 0 {
		return strings.Repeat(" ", 6)
	}
	return fmt.Sprintf("%6d", v)
}

// colorFor returns the SGR color code for a tile value, or "" for none.
func colorFor(v uint16) string {
	switch {
	case v < 16:
		return ""
	case v < 128:
		return "32"
	case v < 1024:
		return "34"
	case v < 8192:
		return "35"
	default:
		return "33"
	}
}
