package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"projexa/internal/domain"
	"projexa/internal/events"

	"github.com/sirupsen/logrus"
)

var errStoreDown = errors.New("dial tcp 127.0.0.1:5432: connection refused")

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// MockOrderRepo is an in-memory order store with an optional failure switch.
type MockOrderRepo struct {
	mu       sync.Mutex
	nextID   int64
	orders   map[int64]*domain.Order
	Err      error
	Writes   int
	RefIndex map[string]int64
}

func NewMockOrderRepo() *MockOrderRepo {
	return &MockOrderRepo{orders: map[int64]*domain.Order{}, RefIndex: map[string]int64{}}
}

func (m *MockOrderRepo) CreateOrder(_ context.Context, order *domain.Order) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	if _, dup := m.RefIndex[order.PaymentReference]; dup {
		return nil, fmt.Errorf("duplicate payment reference %s", order.PaymentReference)
	}
	m.nextID++
	m.Writes++
	now := time.Now()
	stored := *order
	stored.ID = m.nextID
	stored.CreatedAt, stored.UpdatedAt = now, now
	stored.Items = make([]domain.OrderItem, len(order.Items))
	for i, item := range order.Items {
		item.ID = int64(i + 1)
		item.OrderID = stored.ID
		stored.Items[i] = item
	}
	if order.Payment != nil {
		p := *order.Payment
		p.OrderID = stored.ID
		stored.Payment = &p
	}
	m.orders[stored.ID] = &stored
	m.RefIndex[stored.PaymentReference] = stored.ID
	out := stored
	return &out, nil
}

func (m *MockOrderRepo) get(id int64) (*domain.Order, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	o, ok := m.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	out := *o
	return &out, nil
}

func (m *MockOrderRepo) GetOrderByID(_ context.Context, id int64) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.get(id)
}

func (m *MockOrderRepo) GetOrderByReference(_ context.Context, ref string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	id, ok := m.RefIndex[ref]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return m.get(id)
}

func (m *MockOrderRepo) GetOrderItems(_ context.Context, orderID int64) ([]domain.OrderItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, err := m.get(orderID)
	if err != nil {
		return nil, err
	}
	return o.Items, nil
}

func (m *MockOrderRepo) ListOrders(_ context.Context) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]domain.Order, 0, len(m.orders))
	for _, o := range m.orders {
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *MockOrderRepo) UpdateOrderStatus(_ context.Context, id int64, status domain.OrderStatus) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Writes++
	if m.Err != nil {
		return nil, m.Err
	}
	o, ok := m.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	o.Status = status
	o.UpdatedAt = time.Now()
	out := *o
	return &out, nil
}

func (m *MockOrderRepo) UpdatePaymentStatus(_ context.Context, id int64, status domain.PaymentStatus) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Writes++
	if m.Err != nil {
		return nil, m.Err
	}
	o, ok := m.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	o.PaymentStatus = status
	if o.Payment != nil {
		o.Payment.Status = status
	}
	out := *o
	return &out, nil
}

func (m *MockOrderRepo) Stats(_ context.Context) (*domain.OrderStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	stats := &domain.OrderStats{ByStatus: map[domain.OrderStatus]int64{}}
	for _, s := range domain.OrderStatuses {
		stats.ByStatus[s] = 0
	}
	for _, o := range m.orders {
		stats.TotalOrders++
		stats.ByStatus[o.Status]++
		stats.Revenue += o.TotalAmount
	}
	return stats, nil
}

type MockPublisher struct {
	mu     sync.Mutex
	Events []events.Event
	Err    error
}

func (m *MockPublisher) Publish(_ context.Context, evt events.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Events = append(m.Events, evt)
	return nil
}

func (m *MockPublisher) Types() []events.Type {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]events.Type, len(m.Events))
	for i, e := range m.Events {
		out[i] = e.Type
	}
	return out
}

type MockUserRepo struct {
	mu      sync.Mutex
	nextID  int64
	byEmail map[string]*domain.User
	Err     error
	Touched []int64
}

func NewMockUserRepo() *MockUserRepo {
	return &MockUserRepo{byEmail: map[string]*domain.User{}}
}

func (m *MockUserRepo) CreateUser(_ context.Context, user *domain.User) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	if _, ok := m.byEmail[user.Email]; ok {
		return nil, domain.ErrEmailTaken
	}
	m.nextID++
	u := *user
	u.ID = m.nextID
	if u.Role == "" {
		u.Role = domain.RoleUser
	}
	m.byEmail[u.Email] = &u
	out := u
	return &out, nil
}

func (m *MockUserRepo) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	u, ok := m.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	out := *u
	return &out, nil
}

func (m *MockUserRepo) GetUserByID(_ context.Context, id int64) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, u := range m.byEmail {
		if u.ID == id {
			out := *u
			return &out, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepo) UpdateUserRole(_ context.Context, id int64, role domain.Role, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byEmail {
		if u.ID == id {
			u.Role = role
			if passwordHash != "" {
				u.PasswordHash = passwordHash
			}
			return nil
		}
	}
	return domain.ErrUserNotFound
}

func (m *MockUserRepo) TouchLastSignedIn(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Touched = append(m.Touched, id)
	return nil
}
