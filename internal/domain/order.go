package domain

import (
	"context"
	"fmt"
	"time"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusShipped   OrderStatus = "shipped"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

// OrderStatuses lists every status in fulfillment order.
var OrderStatuses = []OrderStatus{StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled}

type PaymentMethod string

const (
	PaymentVodafoneCash PaymentMethod = "vodafone_cash"
	PaymentInstapay     PaymentMethod = "instapay"
	PaymentManual       PaymentMethod = "manual"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

type Order struct {
	ID               int64         `json:"id"`
	UserID           *int64        `json:"userId,omitempty"`
	CustomerName     string        `json:"customerName"`
	CustomerEmail    string        `json:"customerEmail"`
	CustomerPhone    string        `json:"customerPhone"`
	TotalAmount      int64         `json:"totalAmount"`
	Status           OrderStatus   `json:"status"`
	PaymentMethod    PaymentMethod `json:"paymentMethod"`
	PaymentStatus    PaymentStatus `json:"paymentStatus"`
	PaymentReference string        `json:"paymentReference"`
	ShippingAddress  string        `json:"shippingAddress"`
	Notes            string        `json:"notes,omitempty"`
	Items            []OrderItem   `json:"items,omitempty"`
	Payment          *Payment      `json:"payment,omitempty"`
	CreatedAt        time.Time     `json:"createdAt"`
	UpdatedAt        time.Time     `json:"updatedAt"`
}

// OrderItem keeps the price the customer saw when ordering, not the live product price.
type OrderItem struct {
	ID        int64     `json:"id"`
	OrderID   int64     `json:"orderId"`
	ProductID int64     `json:"productId"`
	Quantity  int       `json:"quantity"`
	Price     int64     `json:"price"`
	CreatedAt time.Time `json:"createdAt"`
}

type NewOrderItem struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
	Price     int64 `json:"price"`
}

type NewOrderInput struct {
	CustomerName    string         `json:"customerName"`
	CustomerEmail   string         `json:"customerEmail"`
	CustomerPhone   string         `json:"customerPhone"`
	TotalAmount     int64          `json:"totalAmount"`
	PaymentMethod   PaymentMethod  `json:"paymentMethod"`
	ShippingAddress string         `json:"shippingAddress"`
	Notes           string         `json:"notes"`
	Items           []NewOrderItem `json:"items"`
}

type CreatedOrder struct {
	OrderID          int64  `json:"orderId"`
	PaymentReference string `json:"paymentReference"`
}

type OrderStats struct {
	TotalOrders int64                 `json:"totalOrders"`
	ByStatus    map[OrderStatus]int64 `json:"byStatus"`
	Revenue     int64                 `json:"revenue"`
}

type OrderRepository interface {
	// CreateOrder writes the order, its items and its payment row in one transaction.
	CreateOrder(ctx context.Context, order *Order) (*Order, error)
	GetOrderByID(ctx context.Context, id int64) (*Order, error)
	GetOrderByReference(ctx context.Context, reference string) (*Order, error)
	GetOrderItems(ctx context.Context, orderID int64) ([]OrderItem, error)
	ListOrders(ctx context.Context) ([]Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, status OrderStatus) (*Order, error)
	UpdatePaymentStatus(ctx context.Context, id int64, status PaymentStatus) (*Order, error)
	Stats(ctx context.Context) (*OrderStats, error)
}

type OrderUseCase interface {
	CreateOrder(ctx context.Context, input NewOrderInput) (*CreatedOrder, error)
	GetOrder(ctx context.Context, id int64) (*Order, error)
	GetOrderByReference(ctx context.Context, reference string) (*Order, error)
	ListOrders(ctx context.Context, caller Caller) ([]Order, error)
	UpdateOrderStatus(ctx context.Context, caller Caller, id int64, status OrderStatus) (bool, error)
	UpdatePaymentStatus(ctx context.Context, caller Caller, id int64, status PaymentStatus) (bool, error)
	Stats(ctx context.Context, caller Caller) (*OrderStats, error)
}

func IsValidStatus(status OrderStatus) bool {
	switch status {
	case StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(s)
	if !IsValidStatus(status) {
		return "", &ValidationError{Field: "status", Reason: fmt.Sprintf("unknown order status %q", s), err: ErrInvalidStatus}
	}
	return status, nil
}

func IsValidPaymentMethod(method PaymentMethod) bool {
	switch method {
	case PaymentVodafoneCash, PaymentInstapay, PaymentManual:
		return true
	default:
		return false
	}
}

// DisplayName is the customer-facing label used in emails and instructions.
func (m PaymentMethod) DisplayName() string {
	switch m {
	case PaymentVodafoneCash:
		return "Vodafone Cash"
	case PaymentInstapay:
		return "InstaPay"
	default:
		return "Manual Payment"
	}
}

func IsValidPaymentStatus(status PaymentStatus) bool {
	switch status {
	case PaymentPending, PaymentCompleted, PaymentFailed:
		return true
	default:
		return false
	}
}

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	status := PaymentStatus(s)
	if !IsValidPaymentStatus(status) {
		return "", &ValidationError{Field: "paymentStatus", Reason: fmt.Sprintf("unknown payment status %q", s), err: ErrInvalidStatus}
	}
	return status, nil
}

// FormatAmount renders minor units as "EGP 590.00".
func FormatAmount(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("EGP %s%d.%02d", sign, minor/100, minor%100)
}
