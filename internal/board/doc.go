// Package board holds the grid of a forty96 game.
//
// A Board owns a fixed n x n grid of uint16 cells (0 empty, otherwise a power
// of two) and the engine.Queue that serializes every operation on it. Apart
// from the lock-free TileValue reads, every operation runs as an action on
// that queue and accepts an optional *engine.Ticket to join a composite
// action already in flight.
//
// Every committed cell write produces a Tile snapshot that is fanned out
// synchronously to subscribers. Tiles are never retained by the Board.
package board
