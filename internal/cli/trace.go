package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/roach88/forty96/internal/board"
	"github.com/roach88/forty96/internal/engine"
	"github.com/roach88/forty96/internal/game"
	"github.com/roach88/forty96/internal/journal"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	State string
	Size  int
	Spawn bool
}

// TraceEvent is one journaled tile write in JSON output.
type TraceEvent struct {
	Seq      uint64 `json:"seq"`
	TileID   int    `json:"tile_id"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Value    uint16 `json:"value"`
	Creation string `json:"creation"`
}

// TraceStep is one operation and the tile writes it caused.
type TraceStep struct {
	Op      string       `json:"op"`
	Outcome string       `json:"outcome"`
	Events  []TraceEvent `json:"events"`
}

// TraceResult is the JSON payload of the trace command.
type TraceResult struct {
	Session string      `json:"session"`
	Size    int         `json:"size"`
	Steps   []TraceStep `json:"steps"`
	Final   board.Grid  `json:"final"`
	Moves   int         `json:"moves"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace [left|right|up|down...]",
		Short: "Apply moves and print every tile write",
		Long: `Apply a sequence of moves and print the tile writes each one caused.

The game starts from --state (a JSON grid) or from a reset board, and every
tile notification is recorded in an in-memory journal session. Tracing stops
at the first move that ends the game.

Examples:
  forty96 trace left up
  forty96 trace --state '[[0,2],[2,0]]' --spawn=false left left
  forty96 trace --format json right`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(cmd, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.State, "state", "", "starting grid as JSON, e.g. [[0,2],[2,0]]")
	cmd.Flags().IntVar(&opts.Size, "size", 0, "board edge length when no state is given (default from config: 4)")
	cmd.Flags().BoolVar(&opts.Spawn, "spawn", true, "spawn a tile after every move")

	return cmd
}

func runTrace(cmd *cobra.Command, opts *TraceOptions, args []string) error {
	f := opts.formatter(cmd)

	dirs := make([]game.Direction, 0, len(args))
	for _, arg := range args {
		d, err := game.ParseDirection(arg)
		if err != nil {
			f.EngineError(err)
			return WrapExitError(ExitCommandError, "bad move", err)
		}
		dirs = append(dirs, d)
	}

	cfg := opts.settings()
	if cmd.Flags().Changed("size") {
		cfg.Size = opts.Size
	}
	if cmd.Flags().Changed("spawn") {
		cfg.Spawn = opts.Spawn
	}

	var start board.Grid
	if opts.State != "" {
		if err := json.Unmarshal([]byte(opts.State), &start); err != nil {
			f.Error("bad_state", err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to parse --state", err)
		}
		if cmd.Flags().Changed("size") && cfg.Size != len(start) {
			return NewExitError(ExitCommandError,
				fmt.Sprintf("--size %d does not match a %d-row --state", cfg.Size, len(start)))
		}
		cfg.Size = len(start)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	gameOpts := []game.Option{
		game.WithSpawnAfterMove(cfg.Spawn),
		game.WithLogger(slog.Default()),
	}
	if opts.Random != nil {
		gameOpts = append(gameOpts, game.WithRandomSource(opts.Random))
	}
	g, err := game.New(cfg.Size, gameOpts...)
	if err != nil {
		f.EngineError(err)
		return WrapExitError(ExitCommandError, "failed to create game", err)
	}

	journalOpts := []journal.Option{journal.WithLogger(slog.Default())}
	if opts.Sessions != nil {
		journalOpts = append(journalOpts, journal.WithSessionGenerator(opts.Sessions))
	}
	j, err := journal.Open(journalOpts...)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to open journal", err)
	}
	defer j.Close()

	session, err := j.Begin(ctx, cfg.Size)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to begin journal session", err)
	}
	defer session.Attach(g)()

	t := &tracer{session: session}
	result := TraceResult{Session: session.Token(), Size: cfg.Size}

	if start != nil {
		err = g.RestoreState(ctx, start)
		result.Steps = append(result.Steps, t.step(ctx, "restore", err))
	} else {
		err = g.Reset(ctx)
		result.Steps = append(result.Steps, t.step(ctx, "reset", err))
	}
	if err != nil {
		f.EngineError(err)
		return WrapExitError(ExitFailure, "failed to start game", err)
	}
	if t.err != nil {
		return WrapExitError(ExitFailure, "failed to read journal", t.err)
	}

	for _, d := range dirs {
		err := g.Move(ctx, d)
		result.Steps = append(result.Steps, t.step(ctx, d.String(), err))
		if t.err != nil {
			return WrapExitError(ExitFailure, "failed to read journal", t.err)
		}
		if err != nil && !engine.IsInvalidMove(err) {
			break
		}
	}

	result.Final, err = g.State(ctx)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to read final state", err)
	}
	result.Moves = g.MoveCount()

	if f.Format == "json" {
		return f.Success(result)
	}
	return writeTrace(f.Writer, result)
}

// tracer slices the session's events into per-operation steps.
type tracer struct {
	session *journal.Session
	seen    int
	err     error
}

func (t *tracer) step(ctx context.Context, op string, opErr error) TraceStep {
	s := TraceStep{Op: op, Outcome: "ok", Events: []TraceEvent{}}
	if opErr != nil {
		s.Outcome = string(engine.CodeOf(opErr))
		if s.Outcome == "" {
			s.Outcome = "error"
		}
	}

	events, err := t.session.Events(ctx)
	if err != nil {
		t.err = err
		return s
	}
	for _, e := range events[t.seen:] {
		s.Events = append(s.Events, TraceEvent{
			Seq:      e.Seq,
			TileID:   int(e.TileID),
			X:        e.X,
			Y:        e.Y,
			Value:    e.Value,
			Creation: e.Creation.String(),
		})
	}
	t.seen = len(events)
	return s
}

func writeTrace(w io.Writer, r TraceResult) error {
	p := message.NewPrinter(language.English)

	fmt.Fprintf(w, "session %s\n", r.Session)
	for _, s := range r.Steps {
		// Starting operations only print their outcome when they failed.
		if (s.Op == "reset" || s.Op == "restore") && s.Outcome == "ok" {
			fmt.Fprintln(w, s.Op)
		} else {
			fmt.Fprintf(w, "%s: %s\n", s.Op, s.Outcome)
		}
		for _, e := range s.Events {
			fmt.Fprintf(w, "  #%d tile#%d(%d,%d)=%d %s\n", e.Seq, e.TileID, e.X, e.Y, e.Value, e.Creation)
		}
	}

	p.Fprintf(w, "final (%d %s)\n", r.Moves, moveUnit(r.Moves))
	_, err := fmt.Fprintln(w, r.Final.String())
	return err
}

func moveUnit(n int) string {
	if n == 1 {
		return "move"
	}
	return "moves"
}
