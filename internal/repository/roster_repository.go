package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/workdesk/internal/domain"
)

// RosterRepository encapsulates on-call roster persistence. The table is
// only ever rewritten wholesale by seeding; weeks are unique by date.
type RosterRepository interface {
	GetByWeekStart(ctx context.Context, weekStart time.Time) (*domain.RosterEntry, error)
	List(ctx context.Context) ([]domain.RosterEntry, error)
	// ReplaceAll deletes every entry and inserts the given ones in a
	// single transaction.
	ReplaceAll(ctx context.Context, entries []domain.RosterEntry) error
}

type rosterRepository struct {
	pool *pgxpool.Pool
}

// NewRosterRepository instantiates the repository.
func NewRosterRepository(pool *pgxpool.Pool) RosterRepository {
	return &rosterRepository{pool: pool}
}

func (r *rosterRepository) GetByWeekStart(ctx context.Context, weekStart time.Time) (*domain.RosterEntry, error) {
	const query = `SELECT id, starts_on, user_id FROM oncall_roster WHERE starts_on=$1`
	var entry domain.RosterEntry
	if err := r.pool.QueryRow(ctx, query, weekStart).Scan(
		&entry.ID,
		&entry.StartsOn,
		&entry.UserID,
	); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *rosterRepository) List(ctx context.Context) ([]domain.RosterEntry, error) {
	const query = `SELECT id, starts_on, user_id FROM oncall_roster ORDER BY starts_on`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.RosterEntry
	for rows.Next() {
		var entry domain.RosterEntry
		if err := rows.Scan(&entry.ID, &entry.StartsOn, &entry.UserID); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

func (r *rosterRepository) ReplaceAll(ctx context.Context, entries []domain.RosterEntry) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM oncall_roster`); err != nil {
			return err
		}
		for i := range entries {
			if err := tx.QueryRow(ctx,
				`INSERT INTO oncall_roster (starts_on, user_id) VALUES ($1,$2) RETURNING id`,
				entries[i].StartsOn, entries[i].UserID,
			).Scan(&entries[i].ID); err != nil {
				return err
			}
		}
		return nil
	})
}
