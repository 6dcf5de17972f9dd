package board

import "fmt"

// TileID is the row-major index of a cell: id = y*n + x.
type TileID int

// CreationKind tells how a cell came to hold its value.
type CreationKind uint8

const (
	// Spawned covers spontaneous values: random spawns, restores and cells
	// cleared by a move.
	Spawned CreationKind = iota
	// Moved means the value slid in unchanged from From[0].
	Moved
	// Merged means From[0] absorbed From[1] and doubled.
	Merged
)

// String returns the lowercase kind name.
func (k CreationKind) String() string {
	switch k {
	case Spawned:
		return "spawned"
	case Moved:
		return "moved"
	case Merged:
		return "merged"
	default:
		return fmt.Sprintf("CreationKind(%d)", int(k))
	}
}

// Creation is the provenance of a cell value.
// From is meaningful for Moved (From[0]) and Merged (both).
type Creation struct {
	Kind CreationKind
	From [2]TileID
}

// SpawnedCreation returns the provenance of a spontaneous value.
func SpawnedCreation() Creation {
	return Creation{Kind: Spawned}
}

// MovedFrom returns the provenance of a value that slid in from src.
func MovedFrom(src TileID) Creation {
	return Creation{Kind: Moved, From: [2]TileID{src, src}}
}

// MergedFrom returns the provenance of a merge where absorber doubled by
// taking in merged.
func MergedFrom(absorber, merged TileID) Creation {
	return Creation{Kind: Merged, From: [2]TileID{absorber, merged}}
}

// Sources returns the source cells: none, one or two.
func (c Creation) Sources() []TileID {
	switch c.Kind {
	case Moved:
		return []TileID{c.From[0]}
	case Merged:
		return []TileID{c.From[0], c.From[1]}
	default:
		return nil
	}
}

// String renders the provenance, e.g. "moved(3)" or "merged(1,2)".
func (c Creation) String() string {
	switch c.Kind {
	case Moved:
		return fmt.Sprintf("moved(%d)", c.From[0])
	case Merged:
		return fmt.Sprintf("merged(%d,%d)", c.From[0], c.From[1])
	default:
		return c.Kind.String()
	}
}

// Tile is an immutable snapshot of one cell taken at the moment of a write.
type Tile struct {
	Board    *Board
	ID       TileID
	X, Y     int
	Value    uint16
	Creation Creation
}

// String renders the tile for logs, e.g. "tile#5(1,1)=4 merged(5,6)".
func (t Tile) String() string {
	return fmt.Sprintf("tile#%d(%d,%d)=%d %s", t.ID, t.X, t.Y, t.Value, t.Creation)
}
