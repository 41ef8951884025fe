package sandbox

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"queryquest/internal/game"
)

var forbiddenStatement = regexp.MustCompile(`(?i)\b(attach|detach|pragma)\b`)

// SQLite serves dev mode. The catalog file is attached read-only as "game" to an
// empty in-memory database, so queries written against the game schema work
// unchanged. Queries share one connection and run one at a time.
type SQLite struct {
	db      *sql.DB
	conn    *sql.Conn
	timeout time.Duration

	mu sync.Mutex
}

func NewSQLite(ctx context.Context, catalogPath string, timeout time.Duration) (*SQLite, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening sqlite sandbox: %w", err)
	}
	db.SetMaxOpenConns(1)

	conn, err := db.Conn(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}
	setup := []struct {
		stmt string
		args []any
	}{
		{stmt: `ATTACH DATABASE ? AS game`, args: []any{"file:" + catalogPath + "?mode=ro"}},
		{stmt: `PRAGMA query_only = ON`},
	}
	for _, step := range setup {
		if _, err := conn.ExecContext(ctx, step.stmt, step.args...); err != nil {
			conn.Close()
			db.Close()
			return nil, fmt.Errorf("preparing sqlite sandbox: %w", err)
		}
	}
	return &SQLite{db: db, conn: conn, timeout: timeout}, nil
}

func (s *SQLite) Run(ctx context.Context, query string) (game.QueryResult, error) {
	if forbiddenStatement.MatchString(query) {
		return game.QueryResult{}, &ExecutionError{Message: "statement not permitted"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.conn.QueryContext(ctx, query)
	if err != nil {
		return game.QueryResult{}, s.classify(ctx, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return game.QueryResult{}, s.classify(ctx, err)
	}
	result := game.QueryResult{Columns: columns, Rows: [][]string{}}
	values := make([]sql.NullString, len(columns))
	dest := make([]any, len(columns))
	for i := range values {
		dest[i] = &values[i]
	}
	for rows.Next() {
		if len(result.Rows) >= MaxRows {
			break
		}
		if err := rows.Scan(dest...); err != nil {
			return game.QueryResult{}, s.classify(ctx, err)
		}
		row := make([]string, len(values))
		for i, value := range values {
			if !value.Valid {
				row[i] = "NULL"
				continue
			}
			row[i] = value.String
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return game.QueryResult{}, s.classify(ctx, err)
	}
	return result, nil
}

func (s *SQLite) Close() error {
	return errors.Join(s.conn.Close(), s.db.Close())
}

func (s *SQLite) classify(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return timeoutError(s.timeout)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return &ExecutionError{Message: err.Error()}
}
