// Package events carries order lifecycle events from the order ledger to the notification dispatcher.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"projexa/internal/domain"

	"github.com/google/uuid"
)

type Type string

const (
	OrderCreated       Type = "order.created"
	OrderStatusChanged Type = "order.status_changed"
	UserRegistered     Type = "user.registered"
)

var (
	ErrBusClosed  = errors.New("event bus closed")
	ErrBufferFull = errors.New("event buffer full")
)

// Event is a flat envelope so it crosses broker boundaries as plain JSON.
type Event struct {
	ID            string               `json:"id"`
	Type          Type                 `json:"type"`
	OrderID       int64                `json:"orderId,omitempty"`
	UserID        int64                `json:"userId,omitempty"`
	Name          string               `json:"name"`
	Email         string               `json:"email"`
	TotalAmount   int64                `json:"totalAmount,omitempty"`
	PaymentMethod domain.PaymentMethod `json:"paymentMethod,omitempty"`
	Status        domain.OrderStatus   `json:"status,omitempty"`
	OccurredAt    time.Time            `json:"occurredAt"`
}

func NewOrderCreated(order *domain.Order) Event {
	return Event{
		ID:            uuid.NewString(),
		Type:          OrderCreated,
		OrderID:       order.ID,
		Name:          order.CustomerName,
		Email:         order.CustomerEmail,
		TotalAmount:   order.TotalAmount,
		PaymentMethod: order.PaymentMethod,
		Status:        order.Status,
		OccurredAt:    time.Now().UTC(),
	}
}

func NewOrderStatusChanged(order *domain.Order) Event {
	evt := NewOrderCreated(order)
	evt.ID = uuid.NewString()
	evt.Type = OrderStatusChanged
	return evt
}

func NewUserRegistered(user *domain.User) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       UserRegistered,
		UserID:     user.ID,
		Name:       user.Name,
		Email:      user.Email,
		OccurredAt: time.Now().UTC(),
	}
}

// Key groups events of one order (or user) on the same broker partition.
func (e Event) Key() string {
	if e.OrderID != 0 {
		return fmt.Sprintf("order-%d", e.OrderID)
	}
	return fmt.Sprintf("user-%d", e.UserID)
}

type Handler func(ctx context.Context, evt Event) error

type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

// Bus publishes events and runs a consumer loop that feeds them to a Handler until ctx is done.
type Bus interface {
	Publisher
	Run(ctx context.Context, handler Handler) error
	Close() error
}

func encode(evt Event) ([]byte, error) {
	body, err := json.Marshal(evt)
	if err != nil {
		return nil, fmt.Errorf("marshal event %s: %w", evt.Type, err)
	}
	return body, nil
}

func decode(body []byte) (Event, error) {
	var evt Event
	if err := json.Unmarshal(body, &evt); err != nil {
		return Event{}, fmt.Errorf("unmarshal event: %w", err)
	}
	if evt.Type == "" {
		return Event{}, errors.New("unmarshal event: missing type")
	}
	return evt, nil
}
