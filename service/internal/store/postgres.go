// internal/store/postgres.go
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JDasic01/AgentTournament/engine/agent"
)

const schema = `
CREATE TABLE IF NOT EXISTS team_beliefs (
	team       TEXT PRIMARY KEY,
	state      JSONB NOT NULL,
	version    BIGINT NOT NULL DEFAULT 0,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresStore persists team state in a single table, one row per team.
// Updates lock the row for the duration of fn.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps an existing pool. Call Migrate once before use.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// ConnectPostgres opens a pool for dsn and verifies it with a ping.
func ConnectPostgres(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return pool, nil
}

// Migrate creates the team_beliefs table if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("postgres migrate: %w", err)
	}
	return nil
}

// Load returns the team's state, or an empty state if none is stored.
func (s *PostgresStore) Load(ctx context.Context, team string) (*agent.TeamState, error) {
	var data []byte
	err := s.pool.QueryRow(ctx, `SELECT state FROM team_beliefs WHERE team = $1`, team).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return &agent.TeamState{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("postgres load %s: %w", team, err)
	}
	return decodeState(data)
}

// Update runs fn inside a transaction holding the team's row lock.
func (s *PostgresStore) Update(ctx context.Context, team string, fn func(*agent.TeamState) error) error {
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		// Make sure a row exists so FOR UPDATE has something to lock.
		if _, err := tx.Exec(ctx,
			`INSERT INTO team_beliefs (team, state) VALUES ($1, '{}'::jsonb) ON CONFLICT (team) DO NOTHING`,
			team); err != nil {
			return err
		}

		var data []byte
		if err := tx.QueryRow(ctx,
			`SELECT state FROM team_beliefs WHERE team = $1 FOR UPDATE`, team).Scan(&data); err != nil {
			return err
		}
		st, err := decodeState(data)
		if err != nil {
			return err
		}
		if err := fn(st); err != nil {
			return err
		}
		out, err := encodeState(st)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx,
			`UPDATE team_beliefs SET state = $2, version = $3, updated_at = now() WHERE team = $1`,
			team, out, int64(st.Version))
		return err
	})
	if err != nil {
		return fmt.Errorf("postgres update %s: %w", team, err)
	}
	return nil
}

// Delete removes a team's row.
func (s *PostgresStore) Delete(ctx context.Context, team string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM team_beliefs WHERE team = $1`, team); err != nil {
		return fmt.Errorf("postgres delete %s: %w", team, err)
	}
	return nil
}
