package game

import (
	"fmt"
	"strings"

	"github.com/roach88/forty96/internal/board"
)

// Direction is one of the four moves.
type Direction int

// Moves slide toward the named edge.
const (
	Left Direction = iota
	Right
	Up
	Down
)

// Directions lists all moves in a stable order.
var Directions = []Direction{Left, Right, Up, Down}

// String returns the lowercase direction name.
func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Right:
		return "right"
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// ParseDirection parses "left", "right", "up" or "down" (any case).
func ParseDirection(s string) (Direction, error) {
	for _, d := range Directions {
		if strings.EqualFold(s, d.String()) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

// indexFunc maps line-local coordinates to a TileID on an l x l board.
// x runs along the slide axis with x == 0 at the front, y selects the line.
type indexFunc func(l, x, y int) board.TileID

// boundCheck wraps f so an out-of-range id panics. Such an id can only come
// from a broken mapping.
func boundCheck(name string, f indexFunc) indexFunc {
	return func(l, x, y int) board.TileID {
		id := f(l, x, y)
		if id < 0 || int(id) >= l*l {
			panic(fmt.Sprintf("resulting tile id %d is out of bounds for %q", id, name))
		}
		return id
	}
}

var indexFuncs = [...]indexFunc{
	Left: boundCheck("left", func(l, x, y int) board.TileID {
		return board.TileID(l*y + x)
	}),
	Right: boundCheck("right", func(l, x, y int) board.TileID {
		return board.TileID(l*(1+y) - x - 1)
	}),
	Up: boundCheck("up", func(l, x, y int) board.TileID {
		return board.TileID(l*x + y)
	}),
	Down: boundCheck("down", func(l, x, y int) board.TileID {
		return board.TileID(l*(l-x-1) + y)
	}),
}

// provKind tags the provenance of one destination cell.
type provKind uint8

const (
	noChange provKind = iota
	moved
	merged
)

type provenance struct {
	kind provKind
	from [2]board.TileID
}

// change is one pending cell write of a move.
type change struct {
	id       board.TileID
	value    uint16
	creation board.Creation
}

// canMerge reports whether two adjacent values combine. A pair of MaxValue
// tiles would overflow 16 bits and therefore stays apart.
func canMerge(a, b uint16) bool {
	return a != 0 && a == b && a < board.MaxValue
}

// planLine computes the writes for line y of a row-major grid and appends
// them to out in slide order.
//
// Tiles are compacted toward x == 0; each adjacent equal pair, taken front
// to back, merges once: the front tile absorbs the one behind it. A cell
// that slid or merged is reported with its source ids; a cell left empty
// that held a value is reported as a Spawned zero.
func planLine(cells []uint16, l, y int, idx indexFunc, out []change) []change {
	var src [board.MaxSize]board.TileID
	var val [board.MaxSize]uint16
	n := 0
	for x := 0; x < l; x++ {
		id := idx(l, x, y)
		if v := cells[id]; v != 0 {
			src[n] = id
			val[n] = v
			n++
		}
	}

	var next [board.MaxSize]uint16
	var prov [board.MaxSize]provenance
	dest := 0
	for i := 0; i < n; dest++ {
		id := idx(l, dest, y)
		if i+1 < n && canMerge(val[i], val[i+1]) {
			next[dest] = val[i] << 1
			prov[dest] = provenance{kind: merged, from: [2]board.TileID{src[i], src[i+1]}}
			i += 2
			continue
		}
		next[dest] = val[i]
		if src[i] != id {
			prov[dest] = provenance{kind: moved, from: [2]board.TileID{src[i], src[i]}}
		}
		i++
	}

	for x := 0; x < l; x++ {
		id := idx(l, x, y)
		switch p := prov[x]; p.kind {
		case merged:
			out = append(out, change{id: id, value: next[x], creation: board.MergedFrom(p.from[0], p.from[1])})
		case moved:
			out = append(out, change{id: id, value: next[x], creation: board.MovedFrom(p.from[0])})
		default:
			if next[x] == 0 && cells[id] != 0 {
				out = append(out, change{id: id, value: 0, creation: board.SpawnedCreation()})
			}
		}
	}
	return out
}

// planMove computes all writes of a move on a row-major l x l grid.
func planMove(cells []uint16, l int, dir Direction) []change {
	idx := indexFuncs[dir]
	changes := make([]change, 0, l*l)
	for y := 0; y < l; y++ {
		changes = planLine(cells, l, y, idx, changes)
	}
	return changes
}

// HasMoves reports whether a row-major l x l grid has an empty cell or a
// horizontally or vertically adjacent pair that can merge.
func HasMoves(cells []uint16, l int) bool {
	for y := 0; y < l; y++ {
		for x := 0; x < l; x++ {
			id := l*y + x
			v := cells[id]
			if v == 0 {
				return true
			}
			if x != 0 && canMerge(v, cells[id-1]) {
				return true
			}
			if y != 0 && canMerge(v, cells[id-l]) {
				return true
			}
		}
	}
	return false
}
