package harness

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/roach88/forty96/internal/board"
	"github.com/roach88/forty96/internal/game"
)

//go:embed scenarios/*.yaml
var builtinFS embed.FS

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed, contains unknown
// fields, or describes an inconsistent tree.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	s, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// ParseScenario parses one scenario document.
func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	s.Name = norm.NFC.String(strings.TrimSpace(s.Name))
	if err := validateScenario(&s); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &s, nil
}

// Builtin returns the scenarios compiled into the binary, sorted by name.
func Builtin() ([]*Scenario, error) {
	entries, err := fs.ReadDir(builtinFS, "scenarios")
	if err != nil {
		return nil, err
	}

	var out []*Scenario
	for _, e := range entries {
		data, err := builtinFS.ReadFile(path.Join("scenarios", e.Name()))
		if err != nil {
			return nil, err
		}
		s, err := ParseScenario(data)
		if err != nil {
			return nil, fmt.Errorf("builtin %s: %w", e.Name(), err)
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// validateScenario checks that required fields are present and that every
// grid in the tree has the root's size.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Tree == nil {
		return fmt.Errorf("tree is required")
	}

	n := len(s.Tree.State)
	if n < board.MinSize || n > board.MaxSize {
		return fmt.Errorf("tree state must be an n x n grid with %d <= n <= %d, got %d rows",
			board.MinSize, board.MaxSize, n)
	}
	return validateNode(s.Tree, n, s.Name)
}

func validateNode(node *Node, n int, at string) error {
	if err := node.State.Validate(n); err != nil {
		return fmt.Errorf("%s: %w", at, err)
	}
	for _, dir := range game.Directions {
		out := node.Moves[dir]
		if out == nil || out.Next == nil {
			continue
		}
		if err := validateNode(out.Next, n, at+" -> "+dir.String()); err != nil {
			return err
		}
	}
	return nil
}
