package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/workdesk/internal/domain"
)

// PreferenceRepository encapsulates notification preference persistence.
type PreferenceRepository interface {
	GetByUser(ctx context.Context, userID string) (*domain.NotificationPreference, error)
	// CreateDefault inserts the all-true default row, tolerating a
	// concurrent insert of the same user.
	CreateDefault(ctx context.Context, userID string) error
	Update(ctx context.Context, pref *domain.NotificationPreference) error
}

type preferenceRepository struct {
	pool *pgxpool.Pool
}

// NewPreferenceRepository instantiates the repository.
func NewPreferenceRepository(pool *pgxpool.Pool) PreferenceRepository {
	return &preferenceRepository{pool: pool}
}

const preferenceColumns = `user_id,
    email_ticket_assigned, email_ticket_updated, email_ticket_commented,
    email_ticket_reopened, email_ticket_status_changed, email_ticket_reassigned,
    email_mention, email_due_date_reminder, email_sla_alert,
    app_ticket_assigned, app_ticket_updated, app_ticket_commented,
    app_ticket_reopened, app_ticket_status_changed, app_ticket_reassigned,
    app_mention, app_due_date_reminder, app_sla_alert,
    digest_frequency, quiet_hours_start, quiet_hours_end,
    created_at, updated_at`

func (r *preferenceRepository) GetByUser(ctx context.Context, userID string) (*domain.NotificationPreference, error) {
	query := `SELECT ` + preferenceColumns + ` FROM notification_preferences WHERE user_id=$1`
	var p domain.NotificationPreference
	if err := r.pool.QueryRow(ctx, query, userID).Scan(
		&p.UserID,
		&p.EmailTicketAssigned, &p.EmailTicketUpdated, &p.EmailTicketCommented,
		&p.EmailTicketReopened, &p.EmailTicketStatusChanged, &p.EmailTicketReassigned,
		&p.EmailMention, &p.EmailDueDateReminder, &p.EmailSLAAlert,
		&p.AppTicketAssigned, &p.AppTicketUpdated, &p.AppTicketCommented,
		&p.AppTicketReopened, &p.AppTicketStatusChanged, &p.AppTicketReassigned,
		&p.AppMention, &p.AppDueDateReminder, &p.AppSLAAlert,
		&p.DigestFrequency, &p.QuietHoursStart, &p.QuietHoursEnd,
		&p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *preferenceRepository) CreateDefault(ctx context.Context, userID string) error {
	const query = `
        INSERT INTO notification_preferences (user_id)
        VALUES ($1)
        ON CONFLICT (user_id) DO NOTHING`
	_, err := r.pool.Exec(ctx, query, userID)
	return err
}

func (r *preferenceRepository) Update(ctx context.Context, pref *domain.NotificationPreference) error {
	const query = `
        UPDATE notification_preferences SET
            email_ticket_assigned=$2, email_ticket_updated=$3, email_ticket_commented=$4,
            email_ticket_reopened=$5, email_ticket_status_changed=$6, email_ticket_reassigned=$7,
            email_mention=$8, email_due_date_reminder=$9, email_sla_alert=$10,
            app_ticket_assigned=$11, app_ticket_updated=$12, app_ticket_commented=$13,
            app_ticket_reopened=$14, app_ticket_status_changed=$15, app_ticket_reassigned=$16,
            app_mention=$17, app_due_date_reminder=$18, app_sla_alert=$19,
            digest_frequency=$20, quiet_hours_start=$21, quiet_hours_end=$22,
            updated_at=NOW()
        WHERE user_id=$1
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query,
		pref.UserID,
		pref.EmailTicketAssigned, pref.EmailTicketUpdated, pref.EmailTicketCommented,
		pref.EmailTicketReopened, pref.EmailTicketStatusChanged, pref.EmailTicketReassigned,
		pref.EmailMention, pref.EmailDueDateReminder, pref.EmailSLAAlert,
		pref.AppTicketAssigned, pref.AppTicketUpdated, pref.AppTicketCommented,
		pref.AppTicketReopened, pref.AppTicketStatusChanged, pref.AppTicketReassigned,
		pref.AppMention, pref.AppDueDateReminder, pref.AppSLAAlert,
		pref.DigestFrequency, pref.QuietHoursStart, pref.QuietHoursEnd,
	).Scan(&pref.UpdatedAt)
}
