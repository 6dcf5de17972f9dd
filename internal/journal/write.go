package journal

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/forty96/internal/board"
)

// Session is one recorded game session inside a Journal.
type Session struct {
	journal *Journal
	token   string
	size    int
}

// TileSource is anything publishing tile notifications: a board.Board, a
// game.StandardBoard or a game.Game.
type TileSource interface {
	Subscribe(fn func(board.Tile)) (unsubscribe func())
}

// Begin registers a new session for size x size boards.
func (j *Journal) Begin(ctx context.Context, size int) (*Session, error) {
	token := j.sessions.Generate()
	seq := j.clock.Next()

	_, err := j.db.ExecContext(ctx, `
		INSERT INTO sessions (token, size, started_seq)
		VALUES (?, ?, ?)
	`, token, size, int64(seq))
	if err != nil {
		return nil, fmt.Errorf("begin session: %w", err)
	}

	j.logger.Debug("journal session started", "session", token, "size", size, "seq", seq)
	return &Session{journal: j, token: token, size: size}, nil
}

// Token returns the session token.
func (s *Session) Token() string {
	return s.token
}

// Size returns the board edge length recorded for the session.
func (s *Session) Size() int {
	return s.size
}

// Record appends tile to the session and returns the assigned seq.
func (s *Session) Record(ctx context.Context, tile board.Tile) (uint64, error) {
	seq := s.journal.clock.Next()

	var srcA, srcB sql.NullInt64
	switch sources := tile.Creation.Sources(); len(sources) {
	case 2:
		srcB = sql.NullInt64{Int64: int64(sources[1]), Valid: true}
		fallthrough
	case 1:
		srcA = sql.NullInt64{Int64: int64(sources[0]), Valid: true}
	}

	_, err := s.journal.db.ExecContext(ctx, `
		INSERT INTO tile_events
		(seq, session, tile_id, x, y, value, creation, source_a, source_b)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		int64(seq),
		s.token,
		int(tile.ID),
		tile.X,
		tile.Y,
		int(tile.Value),
		tile.Creation.Kind.String(),
		srcA,
		srcB,
	)
	if err != nil {
		return 0, fmt.Errorf("record tile: %w", err)
	}
	return seq, nil
}

// Attach records every tile src publishes until detach is called.
// Write failures are logged; notifications carry no error path.
func (s *Session) Attach(src TileSource) (detach func()) {
	return src.Subscribe(func(tile board.Tile) {
		if _, err := s.Record(context.Background(), tile); err != nil {
			s.journal.logger.Warn("journal record failed",
				"session", s.token,
				"tile", tile.String(),
				"error", err,
			)
		}
	})
}
