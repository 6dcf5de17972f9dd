// Package game implements the 2048 rules on top of package board.
//
// StandardBoard adds the four directional moves, the move counter and the
// spawn-after-move rule to a board. Game is the facade a front end talks to:
// it owns the current StandardBoard, replaces it on Reset and RestoreState,
// and forwards tile notifications of whichever board is current.
//
// A move runs as one action on the board's queue: plan all lines, write the
// changed cells, count the move, spawn, check for a terminal state. Nothing
// else can run on the board between those steps.
package game
