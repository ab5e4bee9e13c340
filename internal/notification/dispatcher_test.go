package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"projexa/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMessage() Message {
	id := int64(1)
	return Message{To: "a@x.io", Subject: "Order Confirmation - Order #1", HTML: "<p>hi</p>", Type: domain.NotificationOrderConfirmation, OrderID: &id}
}

func TestDispatcher_Send_Success(t *testing.T) {
	repo := NewMockNotificationRepo()
	mailer := &MockMailer{}
	d := NewDispatcher(repo, mailer, 3, time.Millisecond, quietLogger())

	ok := d.Send(context.Background(), testMessage())

	assert.True(t, ok)
	require.Len(t, repo.Created, 1)
	assert.Equal(t, domain.NotificationPending, repo.Created[0].Status)
	assert.Equal(t, "a@x.io", repo.Created[0].RecipientEmail)
	assert.Equal(t, domain.NotificationSent, repo.Marks[1])
	require.Len(t, mailer.Sent, 1)
	assert.Equal(t, "<p>hi</p>", mailer.Sent[0].HTML)
}

func TestDispatcher_Send_RetriesThenFails(t *testing.T) {
	repo := NewMockNotificationRepo()
	mailer := &MockMailer{Err: errSMTPDown}
	d := NewDispatcher(repo, mailer, 3, time.Millisecond, quietLogger())

	ok := d.Send(context.Background(), testMessage())

	assert.False(t, ok)
	assert.Equal(t, 3, mailer.Calls)
	assert.Equal(t, domain.NotificationFailed, repo.Marks[1])
	assert.Contains(t, repo.MarkErrs[1], "connection refused")
}

func TestDispatcher_Send_RecoversOnRetry(t *testing.T) {
	repo := NewMockNotificationRepo()
	mailer := &MockMailer{Err: errSMTPDown, FailFirst: 1}
	d := NewDispatcher(repo, mailer, 3, time.Millisecond, quietLogger())

	assert.True(t, d.Send(context.Background(), testMessage()))
	assert.Equal(t, 2, mailer.Calls)
	assert.Equal(t, domain.NotificationSent, repo.Marks[1])
}

func TestDispatcher_Send_NoTransport(t *testing.T) {
	repo := NewMockNotificationRepo()
	d := NewDispatcher(repo, nil, 3, time.Millisecond, quietLogger())

	assert.False(t, d.Send(context.Background(), testMessage()))
	assert.Equal(t, domain.NotificationFailed, repo.Marks[1])
	assert.Equal(t, ErrNoTransport.Error(), repo.MarkErrs[1])
}

func TestDispatcher_Send_LogFailureStillSends(t *testing.T) {
	repo := NewMockNotificationRepo()
	repo.CreateErr = errors.New("db down")
	mailer := &MockMailer{}
	d := NewDispatcher(repo, mailer, 1, 0, quietLogger())

	assert.True(t, d.Send(context.Background(), testMessage()))
	assert.Len(t, mailer.Sent, 1)
	assert.Empty(t, repo.Marks)
}

func TestDispatcher_Send_StopsOnOpenCircuit(t *testing.T) {
	repo := NewMockNotificationRepo()
	mailer := &MockMailer{Err: ErrCircuitOpen}
	d := NewDispatcher(repo, mailer, 5, time.Millisecond, quietLogger())

	assert.False(t, d.Send(context.Background(), testMessage()))
	assert.Equal(t, 1, mailer.Calls)
}

func TestDispatcher_Send_ContextCancelledDuringBackoff(t *testing.T) {
	repo := NewMockNotificationRepo()
	mailer := &MockMailer{Err: errSMTPDown}
	d := NewDispatcher(repo, mailer, 3, time.Hour, quietLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.False(t, d.Send(ctx, testMessage()))
	assert.Equal(t, 1, mailer.Calls)
	assert.Equal(t, domain.NotificationFailed, repo.Marks[1])
}
