// internal/database/store.go
package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/CodeIngame/OceanOfCode/service/internal/models"
)

// ErrMatchNotFound is returned when a match id is not recorded.
var ErrMatchNotFound = errors.New("match not found")

// Backend names accepted by Open.
const (
	SQLite   = "sqlite"
	Postgres = "postgres"
)

// Store records matches and turns in SQLite or Postgres.
type Store struct {
	db       *sql.DB
	postgres bool
}

const schema = `
CREATE TABLE IF NOT EXISTS matches (
	id TEXT PRIMARY KEY,
	my_id INTEGER NOT NULL,
	width INTEGER NOT NULL,
	height INTEGER NOT NULL,
	map_rows TEXT NOT NULL,
	start TEXT NOT NULL,
	started_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS turns (
	match_id TEXT NOT NULL REFERENCES matches(id),
	turn INTEGER NOT NULL,
	input TEXT NOT NULL,
	output TEXT NOT NULL,
	mode TEXT NOT NULL,
	candidates INTEGER NOT NULL,
	hit_case TEXT NOT NULL,
	elapsed_us BIGINT NOT NULL,
	recorded_at BIGINT NOT NULL,
	PRIMARY KEY (match_id, turn)
);
`

// Open connects to the backend and applies the schema.
func Open(ctx context.Context, backend, dsn string) (*Store, error) {
	var driver string
	switch backend {
	case SQLite:
		driver = "sqlite"
	case Postgres:
		driver = "pgx"
	default:
		return nil, fmt.Errorf("unknown database backend %q", backend)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", backend, err)
	}
	if backend == SQLite {
		// SQLite allows a single writer.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to %s: %w", backend, err)
	}

	s := &Store{db: db, postgres: backend == Postgres}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("applying schema: %w", err)
		}
	}
	return nil
}

// rebind rewrites ? placeholders as $n for Postgres.
func (s *Store) rebind(q string) string {
	if !s.postgres {
		return q
	}
	var sb strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			sb.WriteString("$" + strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveMatch stores a match header. Saving the same id twice is a no-op.
func (s *Store) SaveMatch(ctx context.Context, m models.Match) error {
	rows, err := json.Marshal(m.Map)
	if err != nil {
		return fmt.Errorf("encoding map: %w", err)
	}
	q := s.rebind(`
		INSERT INTO matches (id, my_id, width, height, map_rows, start, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING`)
	_, err = s.db.ExecContext(ctx, q,
		m.ID.String(), m.MyID, m.Width, m.Height, string(rows), m.Start, m.StartedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("saving match %s: %w", m.ID, err)
	}
	return nil
}

// RecordTurn stores one turn. A turn already recorded is kept as is.
func (s *Store) RecordTurn(ctx context.Context, t models.TurnRecord) error {
	input, err := json.Marshal(t.Input)
	if err != nil {
		return fmt.Errorf("encoding turn input: %w", err)
	}
	q := s.rebind(`
		INSERT INTO turns (match_id, turn, input, output, mode, candidates, hit_case, elapsed_us, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (match_id, turn) DO NOTHING`)
	_, err = s.db.ExecContext(ctx, q,
		t.MatchID.String(), t.Turn, string(input), t.Output, t.Mode,
		t.Candidates, t.HitCase, t.ElapsedMicros, t.RecordedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("recording turn %d of %s: %w", t.Turn, t.MatchID, err)
	}
	return nil
}

const matchColumns = `id, my_id, width, height, map_rows, start, started_at`

// Match loads one match header.
func (s *Store) Match(ctx context.Context, id uuid.UUID) (models.Match, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+matchColumns+` FROM matches WHERE id = ?`), id.String())
	m, err := scanMatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Match{}, fmt.Errorf("%w: %s", ErrMatchNotFound, id)
	}
	return m, err
}

// Matches lists the most recent matches first. limit <= 0 means all.
func (s *Store) Matches(ctx context.Context, limit int) ([]models.Match, error) {
	q := `SELECT ` + matchColumns + ` FROM matches ORDER BY started_at DESC, id`
	var args []any
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, s.rebind(q), args...)
	if err != nil {
		return nil, fmt.Errorf("listing matches: %w", err)
	}
	defer rows.Close()

	var out []models.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Turns returns the recorded turns of a match in order.
func (s *Store) Turns(ctx context.Context, matchID uuid.UUID) ([]models.TurnRecord, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT turn, input, output, mode, candidates, hit_case, elapsed_us, recorded_at
		FROM turns WHERE match_id = ? ORDER BY turn`), matchID.String())
	if err != nil {
		return nil, fmt.Errorf("listing turns of %s: %w", matchID, err)
	}
	defer rows.Close()

	var out []models.TurnRecord
	for rows.Next() {
		t := models.TurnRecord{MatchID: matchID}
		var input string
		var recorded int64
		if err := rows.Scan(&t.Turn, &input, &t.Output, &t.Mode, &t.Candidates,
			&t.HitCase, &t.ElapsedMicros, &recorded); err != nil {
			return nil, fmt.Errorf("scanning turn: %w", err)
		}
		if err := json.Unmarshal([]byte(input), &t.Input); err != nil {
			return nil, fmt.Errorf("decoding turn %d input: %w", t.Turn, err)
		}
		t.RecordedAt = time.UnixMilli(recorded).UTC()
		out = append(out, t)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMatch(row scanner) (models.Match, error) {
	var (
		m       models.Match
		id      string
		mapRows string
		started int64
	)
	if err := row.Scan(&id, &m.MyID, &m.Width, &m.Height, &mapRows, &m.Start, &started); err != nil {
		return models.Match{}, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return models.Match{}, fmt.Errorf("bad match id %q: %w", id, err)
	}
	m.ID = parsed
	if err := json.Unmarshal([]byte(mapRows), &m.Map); err != nil {
		return models.Match{}, fmt.Errorf("decoding map of %s: %w", id, err)
	}
	m.StartedAt = time.UnixMilli(started).UTC()
	return m, nil
}
