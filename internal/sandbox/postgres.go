package sandbox

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"queryquest/internal/game"
)

const queryCanceled = "57014"

// Postgres runs untrusted queries as the read-only role, each in its own
// read-only transaction bounded by statement_timeout.
type Postgres struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

func NewPostgres(ctx context.Context, connString string, timeout time.Duration, maxConns int32) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parsing sandbox url: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	cfg.ConnConfig.RuntimeParams["default_transaction_read_only"] = "on"
	cfg.ConnConfig.RuntimeParams["application_name"] = "queryquest-sandbox"

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connecting sandbox: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging sandbox: %w", err)
	}
	return &Postgres{pool: pool, timeout: timeout}, nil
}

func (p *Postgres) Run(ctx context.Context, query string) (game.QueryResult, error) {
	// statement_timeout normally fires first
	ctx, cancel := context.WithTimeout(ctx, p.timeout+250*time.Millisecond)
	defer cancel()

	tx, err := p.pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return game.QueryResult{}, p.classify(ctx, err)
	}
	defer tx.Rollback(context.Background())

	if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL statement_timeout = %d", p.timeout.Milliseconds())); err != nil {
		return game.QueryResult{}, p.classify(ctx, err)
	}

	// the extended protocol accepts exactly one statement, so the text cannot
	// end the read-only transaction and run more after it
	rows, err := tx.Query(ctx, query, pgx.QueryExecModeExec)
	if err != nil {
		return game.QueryResult{}, p.classify(ctx, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	result := game.QueryResult{
		Columns: make([]string, len(fields)),
		Rows:    [][]string{},
	}
	for i, field := range fields {
		result.Columns[i] = field.Name
	}
	for rows.Next() {
		if len(result.Rows) >= MaxRows {
			break
		}
		raw := rows.RawValues()
		row := make([]string, len(raw))
		for i, value := range raw {
			if value == nil {
				row[i] = "NULL"
				continue
			}
			row[i] = string(value)
		}
		result.Rows = append(result.Rows, row)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return game.QueryResult{}, p.classify(ctx, err)
	}
	return result, nil
}

func (p *Postgres) Close() {
	p.pool.Close()
}

func (p *Postgres) classify(ctx context.Context, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == queryCanceled {
			return timeoutError(p.timeout)
		}
		return &ExecutionError{Message: pgErr.Message}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return timeoutError(p.timeout)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return &ExecutionError{Message: err.Error()}
}
