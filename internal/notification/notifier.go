package notification

import (
	"context"
	"fmt"

	"projexa/internal/domain"
	"projexa/internal/events"

	"github.com/sirupsen/logrus"
)

type Sender interface {
	Send(ctx context.Context, msg Message) bool
}

// Notifier turns lifecycle events into emails. It is the events.Handler run by the bus consumer.
type Notifier struct {
	sender     Sender
	adminEmail string
	log        *logrus.Logger
}

func NewNotifier(sender Sender, adminEmail string, logger *logrus.Logger) *Notifier {
	return &Notifier{sender: sender, adminEmail: adminEmail, log: logger}
}

func (n *Notifier) Handle(ctx context.Context, evt events.Event) error {
	switch evt.Type {
	case events.OrderCreated:
		return n.orderCreated(ctx, evt)
	case events.OrderStatusChanged:
		return n.statusChanged(ctx, evt)
	case events.UserRegistered:
		return n.userRegistered(ctx, evt)
	default:
		return fmt.Errorf("no notification for event type %q", evt.Type)
	}
}

func (n *Notifier) orderCreated(ctx context.Context, evt events.Event) error {
	orderID := evt.OrderID
	html, err := OrderConfirmationEmail(evt.Name, orderID, evt.TotalAmount, evt.PaymentMethod)
	if err != nil {
		return err
	}
	n.sender.Send(ctx, Message{
		To:      evt.Email,
		Subject: fmt.Sprintf("Order Confirmation - Order #%d", orderID),
		HTML:    html,
		Type:    domain.NotificationOrderConfirmation,
		OrderID: &orderID,
	})

	if n.adminEmail == "" {
		n.log.Debugf("Notifier: ADMIN_ALERT_EMAIL not set, skipping admin alert for order %d", orderID)
		return nil
	}
	html, err = AdminOrderAlertEmail(orderID, evt.Name, evt.Email, evt.TotalAmount)
	if err != nil {
		return err
	}
	n.sender.Send(ctx, Message{
		To:      n.adminEmail,
		Subject: fmt.Sprintf("New Order #%d", orderID),
		HTML:    html,
		Type:    domain.NotificationAdminAlert,
		OrderID: &orderID,
	})
	return nil
}

func (n *Notifier) statusChanged(ctx context.Context, evt events.Event) error {
	orderID := evt.OrderID
	html, err := OrderStatusUpdateEmail(evt.Name, orderID, evt.Status)
	if err != nil {
		return err
	}
	n.sender.Send(ctx, Message{
		To:      evt.Email,
		Subject: fmt.Sprintf("Order #%d Status Update: %s", orderID, evt.Status),
		HTML:    html,
		Type:    domain.NotificationOrderStatusUpdate,
		OrderID: &orderID,
	})
	return nil
}

func (n *Notifier) userRegistered(ctx context.Context, evt events.Event) error {
	userID := evt.UserID
	html, err := RegistrationEmail(evt.Name)
	if err != nil {
		return err
	}
	n.sender.Send(ctx, Message{
		To:      evt.Email,
		Subject: "Welcome to Projexa Store",
		HTML:    html,
		Type:    domain.NotificationRegistration,
		UserID:  &userID,
	})
	return nil
}
