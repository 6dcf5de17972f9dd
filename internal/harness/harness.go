package harness

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/forty96/internal/board"
	"github.com/roach88/forty96/internal/engine"
	"github.com/roach88/forty96/internal/game"
	"github.com/roach88/forty96/internal/journal"
)

// Option configures a run.
type Option func(*runner)

// WithJournal records every board of the run into j, one session per board.
func WithJournal(j *journal.Journal) Option {
	return func(r *runner) {
		r.journal = j
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

type runner struct {
	journal *journal.Journal
	logger  *slog.Logger
}

// Run executes the scenarios and returns their results.
//
// The returned error covers infrastructure failures only (context ended,
// board or journal errors); failed expectations are in the report.
func Run(ctx context.Context, scenarios []*Scenario, opts ...Option) (*Report, error) {
	r := &runner{logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &Report{
		Scenarios: make([]string, len(scenarios)),
		Results:   make([][]Result, len(scenarios)),
		Sessions:  map[int]string{},
	}

	boards := map[int]*game.StandardBoard{}
	for _, s := range scenarios {
		size := s.Size()
		if _, ok := boards[size]; ok {
			continue
		}
		b, err := game.NewStandardBoard(size, board.WithLogger(r.logger))
		if err != nil {
			return nil, err
		}
		b.SetSpawnAfterMove(false)
		boards[size] = b

		if r.journal != nil {
			session, err := r.journal.Begin(ctx, size)
			if err != nil {
				return nil, err
			}
			defer session.Attach(b)()
			report.Sessions[size] = session.Token()
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, s := range scenarios {
		report.Scenarios[i] = s.Name
		g.Go(func() error {
			res, err := r.testNode(gctx, boards[s.Size()], []string{s.Name}, s.Tree, nil)
			report.Results[i] = res
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	r.logger.Debug("harness run finished",
		"scenarios", len(scenarios),
		"failures", report.Failures(),
	)
	return report, nil
}

type pendingChild struct {
	history []string
	node    *Node
	ticket  *engine.Ticket
}

// testNode checks every move of node in one action on b. t is nil for a
// root, or a ticket queued by the parent; testNode releases it.
func (r *runner) testNode(ctx context.Context, b *game.StandardBoard, history []string, node *Node, t *engine.Ticket) ([]Result, error) {
	q := b.Queue()

	var results []Result
	var children []pendingChild

	err := b.Run(ctx, t, func(ctx context.Context, t *engine.Ticket) error {
		for _, dir := range game.Directions {
			out := node.Moves[dir]
			if out == nil {
				continue
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			h := append(append([]string(nil), history...), dir.String())

			if err := b.RestoreState(ctx, node.State, t); err != nil {
				return err
			}
			moveErr := b.Move(ctx, dir, t)

			if out.Error != "" {
				results = append(results, checkError(h, dir, out.Error, moveErr))
				continue
			}
			if moveErr != nil {
				results = append(results, Result{
					History: h,
					Message: fmt.Sprintf("expected state after %s(), got error %v", dir, moveErr),
				})
				continue
			}

			got, err := b.State(ctx, t)
			if err != nil {
				return err
			}
			res := Result{History: h, Pass: got.Equal(out.Next.State)}
			res.Message = fmt.Sprintf("expected state after %s()", dir)
			if !res.Pass {
				res.Message += "\n" + renderSideBySide(out.Next.State, got)
			} else {
				children = append(children, pendingChild{h, out.Next, q.Acquire()})
			}
			results = append(results, res)
		}
		return nil
	})
	q.Release(t)
	if err != nil {
		for _, c := range children {
			q.Release(c.ticket)
		}
		return nil, fmt.Errorf("%s: %w", strings.Join(history, " -> "), err)
	}

	sub := make([][]Result, len(children))
	g, gctx := errgroup.WithContext(ctx)
	for i, c := range children {
		g.Go(func() error {
			res, err := r.testNode(gctx, b, c.history, c.node, c.ticket)
			sub[i] = res
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, rs := range sub {
		results = append(results, rs...)
	}
	return results, nil
}

func checkError(history []string, dir game.Direction, want engine.ErrorCode, got error) Result {
	res := Result{
		History: history,
		Message: fmt.Sprintf("expected %s() to fail with %s", dir, want),
	}
	switch {
	case got == nil:
		res.Message += ", but it succeeded"
	case engine.CodeOf(got) != want:
		res.Message += fmt.Sprintf(", got %v", got)
	default:
		res.Pass = true
	}
	return res
}

// renderSideBySide prints the expected and actual grids next to each other.
func renderSideBySide(want, got board.Grid) string {
	left := strings.Split(want.String(), "\n")
	right := strings.Split(got.String(), "\n")
	width := 0
	for _, l := range left {
		width = max(width, len(l))
	}

	var sb strings.Builder
	sb.WriteString("   want" + strings.Repeat(" ", max(width-4, 1)) + "got")
	for i := 0; i < max(len(left), len(right)); i++ {
		var l, rr string
		if i < len(left) {
			l = left[i]
		}
		if i < len(right) {
			rr = right[i]
		}
		fmt.Fprintf(&sb, "\n   %-*s %s", width, l, rr)
	}
	return sb.String()
}
