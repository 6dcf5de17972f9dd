// Package harness runs move-tree self-test scenarios against a live board.
//
// # Scenario Format
//
// A scenario is a YAML file holding one tree. Every node has a grid and, per
// direction, either the grid expected after that move or the error code the
// move must fail with:
//
//	name: state1
//	description: "pair merge next to a larger tile"
//	tree:
//	  state:
//	    - [0, 2, 2, 32]
//	    - [0, 0, 0, 16]
//	    - [0, 0, 0, 8]
//	    - [0, 0, 0, 0]
//	  left:
//	    state:
//	      - [4, 32, 0, 0]
//	      - ...
//	    left: invalid_move
//
// Unknown keys are rejected at every level.
//
// # Execution
//
// Scenarios of the same board size share one board with spawning disabled.
// Trees run concurrently; each node is one action on the board's queue that
// restores the node's grid before every move it checks. A node queues the
// tickets of its passing children before it releases its own, so children run
// in the order they were discovered while other trees interleave.
//
// Results come back in a fixed order (a node's own checks, then each child's
// subtree), so reports compare byte for byte against golden files in
// testdata/golden.
package harness
