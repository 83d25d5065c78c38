package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/workdesk/internal/domain"
)

// WorkItemFilter captures listing parameters.
type WorkItemFilter struct {
	BranchID   *string
	AssigneeID *string
	ReporterID *string
	Type       *domain.ItemType
	Status     *domain.ItemStatus
	Limit      int
	Offset     int
}

// WorkItemRepository encapsulates work item persistence, including the
// atomic compare-and-set primitive for assignment and the time-window
// queries the monitor sweeps with.
type WorkItemRepository interface {
	Create(ctx context.Context, item *domain.WorkItem) error
	Update(ctx context.Context, item *domain.WorkItem) error
	GetByID(ctx context.Context, id string) (*domain.WorkItem, error)
	ListWithFilter(ctx context.Context, filter WorkItemFilter) ([]domain.WorkItem, error)

	// AssignIfChanged sets the assignee in a single statement guarded on
	// the current value differing. It returns (nil, false, nil) when the
	// row exists but already carries that assignee.
	AssignIfChanged(ctx context.Context, itemID string, assigneeID *string) (*domain.WorkItem, bool, error)

	// ListDueWithin returns non-terminal items with a deadline at or
	// before the cutoff.
	ListDueWithin(ctx context.Context, cutoff time.Time) ([]domain.WorkItem, error)
	// ListTouchedSince returns the user's assigned items updated since
	// the given instant, excluding rows never mutated after creation.
	ListTouchedSince(ctx context.Context, userID string, since time.Time) ([]domain.WorkItem, error)
	// ListUpdatedSince returns the user's assigned items updated since
	// the given instant, brand-new included.
	ListUpdatedSince(ctx context.Context, userID string, since time.Time) ([]domain.WorkItem, error)
	// ListStaleAssigned returns the user's non-terminal assigned items
	// untouched since before the given instant.
	ListStaleAssigned(ctx context.Context, userID string, before time.Time) ([]domain.WorkItem, error)
}

type workItemRepository struct {
	pool *pgxpool.Pool
}

// NewWorkItemRepository instantiates the repository.
func NewWorkItemRepository(pool *pgxpool.Pool) WorkItemRepository {
	return &workItemRepository{pool: pool}
}

const itemColumns = `id, type, title, description, status, priority, reporter_id,
        assignee_id, branch_id, due_at, completed_at, created_at, updated_at`

func (r *workItemRepository) Create(ctx context.Context, item *domain.WorkItem) error {
	const query = `
        INSERT INTO work_items (type, title, description, status, priority, reporter_id, assignee_id, branch_id, due_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		item.Type,
		item.Title,
		item.Description,
		item.Status,
		item.Priority,
		item.ReporterID,
		item.AssigneeID,
		item.BranchID,
		item.DueAt,
	).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
}

func (r *workItemRepository) Update(ctx context.Context, item *domain.WorkItem) error {
	const query = `
        UPDATE work_items SET type=$1, title=$2, description=$3, status=$4, priority=$5,
            assignee_id=$6, branch_id=$7, due_at=$8, completed_at=$9, updated_at=NOW()
        WHERE id=$10
        RETURNING updated_at`
	err := r.pool.QueryRow(ctx, query,
		item.Type,
		item.Title,
		item.Description,
		item.Status,
		item.Priority,
		item.AssigneeID,
		item.BranchID,
		item.DueAt,
		item.CompletedAt,
		item.ID,
	).Scan(&item.UpdatedAt)
	return err
}

func (r *workItemRepository) GetByID(ctx context.Context, id string) (*domain.WorkItem, error) {
	query := `SELECT ` + itemColumns + ` FROM work_items WHERE id=$1`
	var item domain.WorkItem
	if err := r.pool.QueryRow(ctx, query, id).Scan(itemFields(&item)...); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *workItemRepository) AssignIfChanged(ctx context.Context, itemID string, assigneeID *string) (*domain.WorkItem, bool, error) {
	query := `
        UPDATE work_items SET assignee_id=$2, updated_at=NOW()
        WHERE id=$1 AND assignee_id IS DISTINCT FROM $2
        RETURNING ` + itemColumns
	var item domain.WorkItem
	err := r.pool.QueryRow(ctx, query, itemID, assigneeID).Scan(itemFields(&item)...)
	if err == pgx.ErrNoRows {
		// Row missing or assignee unchanged; let the caller tell apart.
		if _, getErr := r.GetByID(ctx, itemID); getErr != nil {
			return nil, false, getErr
		}
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &item, true, nil
}

func (r *workItemRepository) ListWithFilter(ctx context.Context, filter WorkItemFilter) ([]domain.WorkItem, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.BranchID != nil {
		args = append(args, *filter.BranchID)
		clauses = append(clauses, fmt.Sprintf("branch_id=$%d", len(args)))
	}
	if filter.AssigneeID != nil {
		args = append(args, *filter.AssigneeID)
		clauses = append(clauses, fmt.Sprintf("assignee_id=$%d", len(args)))
	}
	if filter.ReporterID != nil {
		args = append(args, *filter.ReporterID)
		clauses = append(clauses, fmt.Sprintf("reporter_id=$%d", len(args)))
	}
	if filter.Type != nil {
		args = append(args, *filter.Type)
		clauses = append(clauses, fmt.Sprintf("type=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM work_items WHERE %s ORDER BY updated_at DESC LIMIT %d OFFSET %d`,
		itemColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanWorkItems(rows)
}

func (r *workItemRepository) ListDueWithin(ctx context.Context, cutoff time.Time) ([]domain.WorkItem, error) {
	query := `SELECT ` + itemColumns + `
        FROM work_items
        WHERE status <> 'done' AND due_at IS NOT NULL AND due_at <= $1
        ORDER BY due_at`
	rows, err := r.pool.Query(ctx, query, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanWorkItems(rows)
}

func (r *workItemRepository) ListTouchedSince(ctx context.Context, userID string, since time.Time) ([]domain.WorkItem, error) {
	query := `SELECT ` + itemColumns + `
        FROM work_items
        WHERE assignee_id=$1 AND updated_at >= $2 AND updated_at <> created_at
        ORDER BY updated_at DESC`
	rows, err := r.pool.Query(ctx, query, userID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanWorkItems(rows)
}

func (r *workItemRepository) ListUpdatedSince(ctx context.Context, userID string, since time.Time) ([]domain.WorkItem, error) {
	query := `SELECT ` + itemColumns + `
        FROM work_items
        WHERE assignee_id=$1 AND updated_at >= $2
        ORDER BY updated_at DESC`
	rows, err := r.pool.Query(ctx, query, userID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanWorkItems(rows)
}

func (r *workItemRepository) ListStaleAssigned(ctx context.Context, userID string, before time.Time) ([]domain.WorkItem, error) {
	query := `SELECT ` + itemColumns + `
        FROM work_items
        WHERE assignee_id=$1 AND status <> 'done' AND updated_at <= $2
        ORDER BY updated_at`
	rows, err := r.pool.Query(ctx, query, userID, before)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanWorkItems(rows)
}

func itemFields(item *domain.WorkItem) []any {
	return []any{
		&item.ID,
		&item.Type,
		&item.Title,
		&item.Description,
		&item.Status,
		&item.Priority,
		&item.ReporterID,
		&item.AssigneeID,
		&item.BranchID,
		&item.DueAt,
		&item.CompletedAt,
		&item.CreatedAt,
		&item.UpdatedAt,
	}
}

func scanWorkItems(rows pgx.Rows) ([]domain.WorkItem, error) {
	var result []domain.WorkItem
	for rows.Next() {
		var item domain.WorkItem
		if err := rows.Scan(itemFields(&item)...); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}
