package domain

import (
	"context"
	"time"
)

type NotificationType string

const (
	NotificationRegistration      NotificationType = "registration"
	NotificationOrderConfirmation NotificationType = "order_confirmation"
	NotificationOrderStatusUpdate NotificationType = "order_status_update"
	NotificationAdminAlert        NotificationType = "admin_alert"
)

type NotificationStatus string

const (
	NotificationPending NotificationStatus = "pending"
	NotificationSent    NotificationStatus = "sent"
	NotificationFailed  NotificationStatus = "failed"
)

type EmailNotification struct {
	ID             int64              `json:"id"`
	RecipientEmail string             `json:"recipientEmail"`
	Subject        string             `json:"subject"`
	Type           NotificationType   `json:"type"`
	OrderID        *int64             `json:"orderId,omitempty"`
	UserID         *int64             `json:"userId,omitempty"`
	Status         NotificationStatus `json:"status"`
	ErrorMessage   string             `json:"errorMessage,omitempty"`
	CreatedAt      time.Time          `json:"createdAt"`
	SentAt         *time.Time         `json:"sentAt,omitempty"`
}

type NotificationRepository interface {
	CreateNotification(ctx context.Context, n *EmailNotification) (*EmailNotification, error)
	MarkNotification(ctx context.Context, id int64, status NotificationStatus, errMsg string) error
}
