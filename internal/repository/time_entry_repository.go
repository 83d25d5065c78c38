package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/workdesk/internal/domain"
)

// TimeEntryRepository encapsulates time entry persistence. StartTimer is a
// single-statement check-and-set: two concurrent starts for one user can
// never both succeed.
type TimeEntryRepository interface {
	Create(ctx context.Context, entry *domain.TimeEntry) error
	// StartTimer inserts a running entry unless the user already has one.
	// It reports false, nil when the insert was refused.
	StartTimer(ctx context.Context, entry *domain.TimeEntry) (bool, error)
	// StopTimer finalizes the user's running entry with the stop time and
	// computed hours. Missing or already-stopped entries yield ErrNoRows.
	StopTimer(ctx context.Context, entryID, userID string, stoppedAt time.Time, hours float64, description *string) (*domain.TimeEntry, error)
	GetRunningByUser(ctx context.Context, userID string) (*domain.TimeEntry, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.TimeEntry, error)
}

type timeEntryRepository struct {
	pool *pgxpool.Pool
}

// NewTimeEntryRepository instantiates the repository.
func NewTimeEntryRepository(pool *pgxpool.Pool) TimeEntryRepository {
	return &timeEntryRepository{pool: pool}
}

const timeEntryColumns = `id, item_id, user_id, hours, description, started_at, stopped_at, is_running, logged_at, created_at`

func (r *timeEntryRepository) Create(ctx context.Context, entry *domain.TimeEntry) error {
	const query = `
        INSERT INTO time_entries (item_id, user_id, hours, description, started_at, stopped_at, is_running, logged_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		entry.ItemID,
		entry.UserID,
		entry.Hours,
		entry.Description,
		entry.StartedAt,
		entry.StoppedAt,
		entry.IsRunning,
		entry.LoggedAt,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *timeEntryRepository) StartTimer(ctx context.Context, entry *domain.TimeEntry) (bool, error) {
	// The WHERE NOT EXISTS guard and the partial unique index together
	// make the one-running-timer rule atomic at the store.
	const query = `
        INSERT INTO time_entries (item_id, user_id, hours, description, started_at, is_running, logged_at)
        SELECT $1, $2, 0, $3, $4, TRUE, $4
        WHERE NOT EXISTS (
            SELECT 1 FROM time_entries WHERE user_id=$2 AND is_running
        )
        RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, query,
		entry.ItemID,
		entry.UserID,
		entry.Description,
		entry.StartedAt,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	entry.IsRunning = true
	entry.Hours = 0
	entry.LoggedAt = *entry.StartedAt
	return true, nil
}

func (r *timeEntryRepository) StopTimer(ctx context.Context, entryID, userID string, stoppedAt time.Time, hours float64, description *string) (*domain.TimeEntry, error) {
	query := `
        UPDATE time_entries
        SET stopped_at=$3, is_running=FALSE, hours=$4,
            description=COALESCE($5, description)
        WHERE id=$1 AND user_id=$2 AND is_running
        RETURNING ` + timeEntryColumns
	var entry domain.TimeEntry
	if err := r.pool.QueryRow(ctx, query, entryID, userID, stoppedAt, hours, description).
		Scan(timeEntryFields(&entry)...); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *timeEntryRepository) GetRunningByUser(ctx context.Context, userID string) (*domain.TimeEntry, error) {
	query := `SELECT ` + timeEntryColumns + ` FROM time_entries WHERE user_id=$1 AND is_running`
	var entry domain.TimeEntry
	if err := r.pool.QueryRow(ctx, query, userID).Scan(timeEntryFields(&entry)...); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *timeEntryRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.TimeEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	query := `SELECT ` + timeEntryColumns + `
        FROM time_entries WHERE user_id=$1
        ORDER BY logged_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TimeEntry
	for rows.Next() {
		var entry domain.TimeEntry
		if err := rows.Scan(timeEntryFields(&entry)...); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

func timeEntryFields(entry *domain.TimeEntry) []any {
	return []any{
		&entry.ID,
		&entry.ItemID,
		&entry.UserID,
		&entry.Hours,
		&entry.Description,
		&entry.StartedAt,
		&entry.StoppedAt,
		&entry.IsRunning,
		&entry.LoggedAt,
		&entry.CreatedAt,
	}
}
