package journal

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/forty96/internal/board"
	"github.com/roach88/forty96/internal/engine"
)

// Event is one recorded tile notification.
type Event struct {
	Seq      uint64
	Session  string
	TileID   board.TileID
	X, Y     int
	Value    uint16
	Creation board.Creation
}

// String renders the event like a board.Tile prefixed with its seq.
func (e Event) String() string {
	return fmt.Sprintf("#%d tile#%d(%d,%d)=%d %s", e.Seq, e.TileID, e.X, e.Y, e.Value, e.Creation)
}

// SessionInfo summarizes one session.
type SessionInfo struct {
	Token      string
	Size       int
	StartedSeq uint64
	Events     int
}

// Events returns the events of a session in seq order.
// Returns an empty slice (not nil) for a session without events.
func (j *Journal) Events(ctx context.Context, token string) ([]Event, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT seq, session, tile_id, x, y, value, creation, source_a, source_b
		FROM tile_events
		WHERE session = ?
		ORDER BY seq ASC
	`, token)
	if err != nil {
		return nil, fmt.Errorf("query tile events: %w", err)
	}
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tile events: %w", err)
	}
	return events, nil
}

// Events returns this session's events in seq order.
func (s *Session) Events(ctx context.Context) ([]Event, error) {
	return s.journal.Events(ctx, s.token)
}

// Sessions lists all sessions in start order.
func (j *Journal) Sessions(ctx context.Context) ([]SessionInfo, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT s.token, s.size, s.started_seq, COUNT(e.seq)
		FROM sessions s
		LEFT JOIN tile_events e ON e.session = s.token
		GROUP BY s.token
		ORDER BY s.started_seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	infos := []SessionInfo{}
	for rows.Next() {
		var info SessionInfo
		var started int64
		if err := rows.Scan(&info.Token, &info.Size, &started, &info.Events); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		info.StartedSeq = uint64(started)
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return infos, nil
}

// Replay rebuilds the final grid of a session by applying its events in seq
// order to an empty board.
func (j *Journal) Replay(ctx context.Context, token string) (board.Grid, error) {
	var size int
	err := j.db.QueryRowContext(ctx, `SELECT size FROM sessions WHERE token = ?`, token).Scan(&size)
	if err == sql.ErrNoRows {
		return nil, engine.NewInvalidStateError(fmt.Sprintf("unknown session %q", token))
	}
	if err != nil {
		return nil, fmt.Errorf("query session: %w", err)
	}

	events, err := j.Events(ctx, token)
	if err != nil {
		return nil, err
	}

	g := board.NewGrid(size)
	for _, ev := range events {
		if ev.X < 0 || ev.X >= size || ev.Y < 0 || ev.Y >= size {
			return nil, engine.NewInvalidStateError(fmt.Sprintf("event #%d outside a %dx%d board", ev.Seq, size, size))
		}
		g[ev.Y][ev.X] = ev.Value
	}
	return g, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (Event, error) {
	var (
		ev         Event
		seq        int64
		tileID     int
		value      int
		kind       string
		srcA, srcB sql.NullInt64
	)
	if err := row.Scan(&seq, &ev.Session, &tileID, &ev.X, &ev.Y, &value, &kind, &srcA, &srcB); err != nil {
		return Event{}, fmt.Errorf("scan tile event: %w", err)
	}
	ev.Seq = uint64(seq)
	ev.TileID = board.TileID(tileID)
	ev.Value = uint16(value)

	switch kind {
	case board.Spawned.String():
		ev.Creation = board.SpawnedCreation()
	case board.Moved.String():
		ev.Creation = board.MovedFrom(board.TileID(srcA.Int64))
	case board.Merged.String():
		ev.Creation = board.MergedFrom(board.TileID(srcA.Int64), board.TileID(srcB.Int64))
	default:
		return Event{}, fmt.Errorf("scan tile event: unknown creation %q", kind)
	}
	return ev, nil
}
