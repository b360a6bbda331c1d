package persist

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type MatchRow struct {
	ID            uuid.UUID
	StartedAt     time.Time
	EndedAt       time.Time
	DaysSurvived  int
	Players       int
	ZombiesKilled int
	Deaths        []DeathRow
}

type DeathRow struct {
	PlayerID string
	Day      int
	DiedAt   time.Time
}

type MatchRepo struct {
	db *DB
}

func NewMatchRepo(db *DB) *MatchRepo {
	return &MatchRepo{db: db}
}

// InsertMatch writes the match and its deaths in one transaction.
func (r *MatchRepo) InsertMatch(ctx context.Context, m MatchRow) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("match begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO matches (id, started_at, ended_at, days_survived, players, zombies_killed)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		m.ID, m.StartedAt, m.EndedAt, m.DaysSurvived, m.Players, m.ZombiesKilled,
	); err != nil {
		return fmt.Errorf("match insert: %w", err)
	}

	for _, d := range m.Deaths {
		if _, err := tx.Exec(ctx,
			`INSERT INTO match_deaths (match_id, player_id, day, died_at)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT DO NOTHING`,
			m.ID, d.PlayerID, d.Day, d.DiedAt,
		); err != nil {
			return fmt.Errorf("death insert: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// Recent returns up to limit matches, newest first, without their deaths.
func (r *MatchRepo) Recent(ctx context.Context, limit int) ([]MatchRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, started_at, ended_at, days_survived, players, zombies_killed
		 FROM matches ORDER BY ended_at DESC LIMIT $1`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []MatchRow
	for rows.Next() {
		var m MatchRow
		if err := rows.Scan(&m.ID, &m.StartedAt, &m.EndedAt, &m.DaysSurvived, &m.Players, &m.ZombiesKilled); err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, rows.Err()
}
