package repository

import (
	"context"
	"database/sql"
	"fmt"

	"projexa/internal/domain"

	"github.com/sirupsen/logrus"
)

type postgresNotificationRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresNotificationRepository(db *sql.DB, logger *logrus.Logger) domain.NotificationRepository {
	return &postgresNotificationRepository{
		db:  db,
		log: logger,
	}
}

func (r *postgresNotificationRepository) CreateNotification(ctx context.Context, n *domain.EmailNotification) (*domain.EmailNotification, error) {
	query := `
        INSERT INTO email_notifications (recipient_email, subject, type, order_id, user_id, status)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at
    `
	if n.Status == "" {
		n.Status = domain.NotificationPending
	}
	err := r.db.QueryRowContext(ctx, query, n.RecipientEmail, n.Subject, n.Type, n.OrderID, n.UserID, n.Status).
		Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		r.log.Errorf("Failed to log %s notification for %s: %v", n.Type, n.RecipientEmail, err)
		return nil, translatePqError(fmt.Errorf("could not log email notification: %w", err))
	}
	return n, nil
}

func (r *postgresNotificationRepository) MarkNotification(ctx context.Context, id int64, status domain.NotificationStatus, errMsg string) error {
	query := `
        UPDATE email_notifications
        SET status = $1,
            error_message = NULLIF($2, ''),
            sent_at = CASE WHEN $1 = 'sent' THEN NOW() ELSE NULL END
        WHERE id = $3
    `
	res, err := r.db.ExecContext(ctx, query, status, errMsg, id)
	if err != nil {
		r.log.Errorf("Failed to update email notification %d: %v", id, err)
		return fmt.Errorf("could not update email notification: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("email notification %d: %w", id, domain.ErrNotFound)
	}
	return nil
}
