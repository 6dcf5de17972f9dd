package harness

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/forty96/internal/board"
	"github.com/roach88/forty96/internal/engine"
	"github.com/roach88/forty96/internal/game"
)

// Scenario is one named move tree.
type Scenario struct {
	// Name identifies the scenario in reports and golden file names.
	// Stored NFC-normalized.
	Name string `yaml:"name"`

	// Description explains what the tree exercises.
	Description string `yaml:"description,omitempty"`

	// Tree is the root node.
	Tree *Node `yaml:"tree"`
}

// Size returns the board edge length of the tree.
func (s *Scenario) Size() int {
	if s.Tree == nil {
		return 0
	}
	return len(s.Tree.State)
}

// Node is a grid plus the expected outcome of each direction tried from it.
type Node struct {
	State board.Grid
	Moves [4]*Outcome
}

// Outcome is the expectation for one move: either a next node or an error
// code.
type Outcome struct {
	Error engine.ErrorCode
	Next  *Node
}

// UnmarshalYAML decodes a node strictly: only "state" and the four direction
// names are accepted.
func (n *Node) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: node must be a mapping", value.Line)
	}

	seen := make(map[string]bool, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		key, val := value.Content[i], value.Content[i+1]
		if seen[key.Value] {
			return fmt.Errorf("line %d: duplicate key %q", key.Line, key.Value)
		}
		seen[key.Value] = true

		if key.Value == "state" {
			if err := val.Decode(&n.State); err != nil {
				return fmt.Errorf("line %d: state: %w", val.Line, err)
			}
			continue
		}

		dir, err := game.ParseDirection(key.Value)
		if err != nil || key.Value != dir.String() {
			return fmt.Errorf("line %d: field %s not found in node", key.Line, key.Value)
		}
		out, err := decodeOutcome(val)
		if err != nil {
			return err
		}
		n.Moves[dir] = out
	}
	return nil
}

func decodeOutcome(val *yaml.Node) (*Outcome, error) {
	if val.Kind == yaml.ScalarNode {
		code := engine.ErrorCode(val.Value)
		switch code {
		case engine.ErrCodeInvalidMove, engine.ErrCodeGameOver, engine.ErrCodeInvalidState:
			return &Outcome{Error: code}, nil
		}
		return nil, fmt.Errorf("line %d: unknown error code %q", val.Line, val.Value)
	}

	next := &Node{}
	if err := val.Decode(next); err != nil {
		return nil, err
	}
	return &Outcome{Next: next}, nil
}

// Result is one checked move.
type Result struct {
	// History is the scenario name followed by the directions leading to
	// and including the checked move.
	History []string

	Pass bool

	// Message describes the expectation, plus the mismatch on failure.
	Message string
}

// Path joins the history the way reports print it.
func (r Result) Path() string {
	return strings.Join(r.History, " -> ")
}

// Report is the outcome of a harness run.
type Report struct {
	// Scenarios lists the scenario names in input order.
	Scenarios []string

	// Results holds each scenario's results, in input order.
	Results [][]Result

	// Sessions maps board size to the journal session that recorded the
	// board, when a journal was attached.
	Sessions map[int]string
}

// All returns every result in report order.
func (r *Report) All() []Result {
	var all []Result
	for _, rs := range r.Results {
		all = append(all, rs...)
	}
	return all
}

// Failures returns the number of failed checks.
func (r *Report) Failures() int {
	n := 0
	for _, res := range r.All() {
		if !res.Pass {
			n++
		}
	}
	return n
}

// Passed reports whether every check passed.
func (r *Report) Passed() bool {
	return r.Failures() == 0
}
