package notification

import (
	"context"
	"errors"
	"io"
	"sync"

	"projexa/internal/domain"

	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type MockNotificationRepo struct {
	mu        sync.Mutex
	nextID    int64
	Created   []domain.EmailNotification
	Marks     map[int64]domain.NotificationStatus
	MarkErrs  map[int64]string
	CreateErr error
}

func NewMockNotificationRepo() *MockNotificationRepo {
	return &MockNotificationRepo{Marks: map[int64]domain.NotificationStatus{}, MarkErrs: map[int64]string{}}
}

func (m *MockNotificationRepo) CreateNotification(_ context.Context, n *domain.EmailNotification) (*domain.EmailNotification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	m.nextID++
	rec := *n
	rec.ID = m.nextID
	m.Created = append(m.Created, rec)
	return &rec, nil
}

func (m *MockNotificationRepo) MarkNotification(_ context.Context, id int64, status domain.NotificationStatus, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Marks[id] = status
	m.MarkErrs[id] = errMsg
	return nil
}

type MockMailer struct {
	mu    sync.Mutex
	Sent  []Mail
	Calls int
	Err   error
	// FailFirst makes only the first N calls fail with Err.
	FailFirst int
}

func (m *MockMailer) Send(_ context.Context, mail Mail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.Err != nil && (m.FailFirst == 0 || m.Calls <= m.FailFirst) {
		return m.Err
	}
	m.Sent = append(m.Sent, mail)
	return nil
}

type MockSender struct {
	mu   sync.Mutex
	Msgs []Message
}

func (m *MockSender) Send(_ context.Context, msg Message) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Msgs = append(m.Msgs, msg)
	return true
}

var errSMTPDown = errors.New("dial tcp: connection refused")
