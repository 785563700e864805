package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/gallows-bot/internal/game"
)

const (
	DefaultRecentLimit = 20
	MaxRecentLimit     = 100
)

type Summary struct {
	Played  int     `json:"played"`
	Won     int     `json:"won"`
	Lost    int     `json:"lost"`
	WinRate float64 `json:"winRate"`
}

// Results records finished sessions.
type Results interface {
	Record(ctx context.Context, res game.Result) error
	Summary(ctx context.Context) (Summary, error)
	Recent(ctx context.Context, limit int) ([]game.Result, error)
}

type ResultStore struct {
	db *pgxpool.Pool
}

var _ Results = (*ResultStore)(nil)

func NewResultStore(db *pgxpool.Pool) *ResultStore {
	return &ResultStore{db: db}
}

// Record is idempotent per session id.
func (s *ResultStore) Record(ctx context.Context, res game.Result) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO game_results
			(id, status, state, rounds, remaining_guesses, misses, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING
	`, res.SessionID, string(res.Status), res.State, res.Rounds, res.Remaining, res.Misses,
		res.StartedAt, res.FinishedAt)
	if err != nil {
		return fmt.Errorf("record result %s: %w", res.SessionID, err)
	}
	return nil
}

func (s *ResultStore) Summary(ctx context.Context) (Summary, error) {
	var sum Summary
	err := s.db.QueryRow(ctx, `
		SELECT count(*),
		       count(*) FILTER (WHERE status = 'WON'),
		       count(*) FILTER (WHERE status = 'LOST')
		FROM game_results
	`).Scan(&sum.Played, &sum.Won, &sum.Lost)
	if err != nil {
		return Summary{}, err
	}
	sum.WinRate = winRate(sum.Won, sum.Played)
	return sum, nil
}

func (s *ResultStore) Recent(ctx context.Context, limit int) ([]game.Result, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, status, state, rounds, remaining_guesses, misses, started_at, finished_at
		FROM game_results
		ORDER BY finished_at DESC
		LIMIT $1
	`, clampLimit(limit))
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (game.Result, error) {
		var r game.Result
		var status string
		err := row.Scan(&r.SessionID, &status, &r.State, &r.Rounds, &r.Remaining, &r.Misses,
			&r.StartedAt, &r.FinishedAt)
		r.Status = game.Status(status)
		return r, err
	})
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultRecentLimit
	}
	if limit > MaxRecentLimit {
		return MaxRecentLimit
	}
	return limit
}

func winRate(won, played int) float64 {
	if played == 0 {
		return 0
	}
	return float64(won) / float64(played)
}
