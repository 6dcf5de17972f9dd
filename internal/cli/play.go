package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/roach88/forty96/internal/board"
	"github.com/roach88/forty96/internal/engine"
	"github.com/roach88/forty96/internal/game"
)

// PlayOptions holds flags for the play command.
type PlayOptions struct {
	*RootOptions
	Size    int
	Spawn   bool
	Timeout time.Duration
}

// NewPlayCommand creates the play command.
func NewPlayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play in the terminal",
		Long: `Play a game in the terminal.

Keys w/a/s/d (any case) move up/left/down/right. Ctrl-C or Ctrl-D quits.
On a terminal single tiles are redrawn in place; otherwise the whole board
is printed after every move, so keys can be piped in.

The session ends on game over, on end of input, or after the idle timeout.

Examples:
  forty96 play
  forty96 play --size 5 --timeout 10m
  printf 'wasd' | forty96 play --spawn=false`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Size, "size", 0, "board edge length (default from config: 4)")
	cmd.Flags().BoolVar(&opts.Spawn, "spawn", true, "spawn a tile after every move")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 0, "idle timeout (default from config: 1h)")

	return cmd
}

type playSession struct {
	game     *game.Game
	render   *Renderer
	out      io.Writer
	terminal bool
	eol      string
}

func runPlay(cmd *cobra.Command, opts *PlayOptions) error {
	cfg := opts.settings()
	if cmd.Flags().Changed("size") {
		cfg.Size = opts.Size
	}
	if cmd.Flags().Changed("spawn") {
		cfg.Spawn = opts.Spawn
	}
	if cmd.Flags().Changed("timeout") {
		if opts.Timeout <= 0 {
			return NewExitError(ExitCommandError, "timeout must be positive")
		}
		cfg.Timeout = opts.Timeout
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()
	in := cmd.InOrStdin()

	gameOpts := []game.Option{
		game.WithSpawnAfterMove(cfg.Spawn),
		game.WithLogger(slog.Default()),
	}
	if opts.Random != nil {
		gameOpts = append(gameOpts, game.WithRandomSource(opts.Random))
	}
	g, err := game.New(cfg.Size, gameOpts...)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create game", err)
	}

	s := &playSession{
		game:     g,
		render:   NewRenderer(out, cfg.Size),
		out:      out,
		terminal: isTerminal(out),
		eol:      "\n",
	}
	if opts.Terminal != nil {
		s.terminal = *opts.Terminal
	}

	if s.terminal {
		if err := s.render.DrawFrame(nil); err != nil {
			return err
		}
		defer g.Subscribe(func(t board.Tile) {
			if err := s.render.DrawTile(t); err != nil {
				slog.Warn("tile redraw failed", "tile", t.String(), "error", err)
			}
		})()
	}

	if err := g.Reset(ctx); err != nil {
		return WrapExitError(ExitFailure, "failed to start game", err)
	}
	if err := s.drawState(ctx); err != nil {
		return err
	}

	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd := int(f.Fd())
		prev, err := term.MakeRaw(fd)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to enter raw mode", err)
		}
		defer term.Restore(fd, prev)
		s.render.SetRaw(true)
		s.eol = "\r\n"
	}

	slog.Debug("play session started", "size", cfg.Size, "spawn", cfg.Spawn, "terminal", s.terminal)
	return s.loop(ctx, in, cfg.Timeout)
}

func (s *playSession) loop(ctx context.Context, in io.Reader, timeout time.Duration) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	keys := readKeys(ctx, in)
	idle := time.NewTimer(timeout)
	defer idle.Stop()

	for {
		select {
		case <-ctx.Done():
			return WrapExitError(ExitFailure, "interrupted", ctx.Err())

		case <-idle.C:
			s.summary()
			return NewExitError(ExitFailure, "user timeout")

		case key, ok := <-keys:
			if !ok || key <= 4 {
				s.summary()
				return nil
			}
			idle.Reset(timeout)

			dir, ok := keyDirection(key)
			if !ok {
				continue
			}
			if s.terminal {
				if err := s.render.ClearStatus(); err != nil {
					return err
				}
			}

			err := s.game.Move(ctx, dir)
			switch {
			case err == nil:
				if err := s.drawState(ctx); err != nil {
					return err
				}
			case engine.IsInvalidMove(err):
				s.status(err)
			case engine.IsGameOver(err):
				if err := s.drawState(ctx); err != nil {
					return err
				}
				s.status(err)
				s.summary()
				return nil
			default:
				return WrapExitError(ExitFailure, "move failed", err)
			}
		}
	}
}

// drawState prints a full frame when tiles are not redrawn in place.
func (s *playSession) drawState(ctx context.Context) error {
	if s.terminal {
		return nil
	}
	g, err := s.game.State(ctx)
	if err != nil {
		return err
	}
	return s.render.DrawFrame(g)
}

func (s *playSession) status(err error) {
	msg := err.Error()
	var e *engine.Error
	if errors.As(err, &e) {
		msg = e.Message
	}
	if s.terminal {
		_ = s.render.Status(msg)
		return
	}
	io.WriteString(s.out, "  "+msg+s.eol)
}

func (s *playSession) summary() {
	p := message.NewPrinter(language.English)
	if s.terminal {
		io.WriteString(s.out, "\x1b[1B"+s.eol)
	}
	n := s.game.MoveCount()
	p.Fprintf(s.out, "  %d %s played."+s.eol, n, moveUnit(n))
}

// readKeys streams single bytes from in until EOF, a read error or ctx ends.
func readKeys(ctx context.Context, in io.Reader) <-chan byte {
	keys := make(chan byte)
	go func() {
		defer close(keys)
		buf := make([]byte, 64)
		for {
			n, err := in.Read(buf)
			for _, b := range buf[:n] {
				select {
				case keys <- b:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				if err != io.EOF {
					slog.Debug("input closed", "error", err)
				}
				return
			}
		}
	}()
	return keys
}

// keyDirection maps w/a/s/d in either case to a direction.
func keyDirection(key byte) (game.Direction, bool) {
	switch key {
	case 'w', 'W':
		return game.Up, true
	case 'a', 'A':
		return game.Left, true
	case 's', 'S':
		return game.Down, true
	case 'd', 'D':
		return game.Right, true
	}
	return 0, false
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
