// Package notification renders lifecycle emails and delivers them on a best-effort basis.
// Every attempt is recorded in the email_notifications log; delivery failures never reach callers.
package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"projexa/internal/domain"

	"github.com/sirupsen/logrus"
)

var ErrNoTransport = errors.New("mail transport not configured")

type Mail struct {
	To      string
	Subject string
	HTML    string
}

type Mailer interface {
	Send(ctx context.Context, m Mail) error
}

type Message struct {
	To      string
	Subject string
	HTML    string
	Type    domain.NotificationType
	OrderID *int64
	UserID  *int64
}

type Dispatcher struct {
	repo        domain.NotificationRepository
	mailer      Mailer
	maxAttempts int
	backoff     time.Duration
	log         *logrus.Logger
}

// NewDispatcher accepts a nil mailer; every send is then recorded as failed.
func NewDispatcher(repo domain.NotificationRepository, mailer Mailer, maxAttempts int, backoff time.Duration, logger *logrus.Logger) *Dispatcher {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Dispatcher{repo: repo, mailer: mailer, maxAttempts: maxAttempts, backoff: backoff, log: logger}
}

// Send reports whether the message was handed to the mail transport.
func (d *Dispatcher) Send(ctx context.Context, msg Message) bool {
	entry := d.log.WithFields(logrus.Fields{"type": msg.Type, "to": msg.To})

	record, err := d.repo.CreateNotification(ctx, &domain.EmailNotification{
		RecipientEmail: msg.To,
		Subject:        msg.Subject,
		Type:           msg.Type,
		OrderID:        msg.OrderID,
		UserID:         msg.UserID,
		Status:         domain.NotificationPending,
	})
	if err != nil {
		entry.Warnf("Dispatcher: Failed to record notification, sending anyway: %v", err)
		record = nil
	}

	sendErr := d.deliver(ctx, msg)

	status, errMsg := domain.NotificationSent, ""
	if sendErr != nil {
		status, errMsg = domain.NotificationFailed, sendErr.Error()
		entry.Errorf("Dispatcher: Email not delivered: %v", sendErr)
	} else {
		entry.Info("Dispatcher: Email sent")
	}

	if record != nil {
		if err := d.repo.MarkNotification(ctx, record.ID, status, errMsg); err != nil {
			entry.Warnf("Dispatcher: Failed to mark notification %d as %s: %v", record.ID, status, err)
		}
	}
	return sendErr == nil
}

func (d *Dispatcher) deliver(ctx context.Context, msg Message) error {
	if d.mailer == nil {
		return ErrNoTransport
	}

	mail := Mail{To: msg.To, Subject: msg.Subject, HTML: msg.HTML}
	var err error
	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		if err = d.mailer.Send(ctx, mail); err == nil {
			return nil
		}
		if errors.Is(err, ErrCircuitOpen) {
			break
		}
		d.log.Warnf("Dispatcher: Attempt %d/%d to %s failed: %v", attempt, d.maxAttempts, msg.To, err)
		if attempt == d.maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("send aborted after %d attempts: %w", attempt, ctx.Err())
		case <-time.After(d.backoff):
		}
	}
	return err
}
