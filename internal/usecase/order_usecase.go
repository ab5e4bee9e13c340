package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"projexa/internal/domain"
	"projexa/internal/events"
	"projexa/internal/reference"

	"github.com/sirupsen/logrus"
)

var _ domain.OrderUseCase = (*orderUseCase)(nil)

const publishTimeout = 3 * time.Second

// Column widths of the orders and users tables, counted in characters.
const (
	maxNameLen  = 255
	maxEmailLen = 320
	maxPhoneLen = 20
)

type orderUseCase struct {
	orderRepo domain.OrderRepository
	publisher events.Publisher
	newRef    reference.Generator
	accounts  domain.PaymentAccounts
	log       *logrus.Logger
}

func NewOrderUseCase(repo domain.OrderRepository, publisher events.Publisher, newRef reference.Generator, accounts domain.PaymentAccounts, logger *logrus.Logger) domain.OrderUseCase {
	if newRef == nil {
		newRef = reference.New
	}
	return &orderUseCase{
		orderRepo: repo,
		publisher: publisher,
		newRef:    newRef,
		accounts:  accounts,
		log:       logger,
	}
}

func (uc *orderUseCase) CreateOrder(ctx context.Context, input domain.NewOrderInput) (*domain.CreatedOrder, error) {
	input.CustomerName = strings.TrimSpace(input.CustomerName)
	input.CustomerEmail = strings.ToLower(strings.TrimSpace(input.CustomerEmail))
	input.CustomerPhone = strings.TrimSpace(input.CustomerPhone)
	input.ShippingAddress = strings.TrimSpace(input.ShippingAddress)

	if err := validateOrderInput(input); err != nil {
		uc.log.Warnf("Use Case: Rejected order for %s: %v", input.CustomerEmail, err)
		return nil, err
	}

	var itemsTotal int64
	items := make([]domain.OrderItem, 0, len(input.Items))
	for _, item := range input.Items {
		itemsTotal += item.Price * int64(item.Quantity)
		items = append(items, domain.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	if itemsTotal != input.TotalAmount {
		uc.log.Warnf("Use Case: Order total %d for %s does not match item sum %d", input.TotalAmount, input.CustomerEmail, itemsTotal)
	}

	ref, err := uc.newRef()
	if err != nil {
		uc.log.Errorf("Use Case: Failed to issue payment reference: %v", err)
		return nil, fmt.Errorf("issue payment reference: %w", err)
	}

	order := &domain.Order{
		CustomerName:     input.CustomerName,
		CustomerEmail:    input.CustomerEmail,
		CustomerPhone:    input.CustomerPhone,
		TotalAmount:      input.TotalAmount,
		Status:           domain.StatusPending,
		PaymentMethod:    input.PaymentMethod,
		PaymentStatus:    domain.PaymentPending,
		PaymentReference: ref,
		ShippingAddress:  input.ShippingAddress,
		Notes:            strings.TrimSpace(input.Notes),
		Items:            items,
		Payment: &domain.Payment{
			Amount:       input.TotalAmount,
			Method:       input.PaymentMethod,
			Reference:    ref,
			Status:       domain.PaymentPending,
			Instructions: uc.accounts.Instructions(input.PaymentMethod, input.TotalAmount, ref),
		},
	}

	uc.log.Infof("Use Case: Attempting to save order for %s with %d item(s), reference %s", order.CustomerEmail, len(items), ref)
	created, err := uc.orderRepo.CreateOrder(ctx, order)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to create order for %s: %v", order.CustomerEmail, err)
		return nil, fmt.Errorf("failed to save order: %w", err)
	}
	uc.log.Infof("Use Case: Order created successfully with ID %d, reference %s", created.ID, created.PaymentReference)

	uc.publish(ctx, events.NewOrderCreated(created))

	return &domain.CreatedOrder{OrderID: created.ID, PaymentReference: created.PaymentReference}, nil
}

func (uc *orderUseCase) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	if id <= 0 {
		return nil, domain.NewValidationError("id", "order id must be positive")
	}
	order, err := uc.orderRepo.GetOrderByID(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			uc.log.Errorf("Use Case: Repository failed to get order ID %d: %v", id, err)
		}
		return nil, nil
	}
	return order, nil
}

func (uc *orderUseCase) GetOrderByReference(ctx context.Context, ref string) (*domain.Order, error) {
	ref = strings.TrimSpace(ref)
	if len(ref) != reference.Length {
		return nil, domain.NewValidationError("reference", fmt.Sprintf("payment reference must be %d characters", reference.Length))
	}
	order, err := uc.orderRepo.GetOrderByReference(ctx, ref)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			uc.log.Errorf("Use Case: Repository failed to get order by reference %s: %v", ref, err)
		}
		return nil, nil
	}
	return order, nil
}

func (uc *orderUseCase) ListOrders(ctx context.Context, caller domain.Caller) ([]domain.Order, error) {
	if !caller.IsAdmin() {
		uc.log.Warnf("Use Case: User %d attempted to list orders without admin role", caller.UserID)
		return nil, domain.ErrForbidden
	}
	orders, err := uc.orderRepo.ListOrders(ctx)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to list orders: %v", err)
		return []domain.Order{}, nil
	}
	return orders, nil
}

// UpdateOrderStatus allows any status to follow any other; admins use it for corrections too.
func (uc *orderUseCase) UpdateOrderStatus(ctx context.Context, caller domain.Caller, id int64, status domain.OrderStatus) (bool, error) {
	if !caller.IsAdmin() {
		uc.log.Warnf("Use Case: User %d attempted to set order %d to '%s' without admin role", caller.UserID, id, status)
		return false, domain.ErrForbidden
	}
	if !domain.IsValidStatus(status) {
		_, err := domain.ParseOrderStatus(string(status))
		return false, err
	}

	uc.log.Infof("Use Case: Attempting to update status for order ID %d to '%s'", id, status)
	order, err := uc.orderRepo.UpdateOrderStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			uc.log.Warnf("Use Case: Order %d not found for status update", id)
		} else {
			uc.log.Errorf("Use Case: Repository failed to update status for order %d: %v", id, err)
		}
		return false, nil
	}
	uc.log.Infof("Use Case: Order %d status updated to '%s'", id, order.Status)

	uc.publish(ctx, events.NewOrderStatusChanged(order))
	return true, nil
}

func (uc *orderUseCase) UpdatePaymentStatus(ctx context.Context, caller domain.Caller, id int64, status domain.PaymentStatus) (bool, error) {
	if !caller.IsAdmin() {
		uc.log.Warnf("Use Case: User %d attempted to set payment of order %d to '%s' without admin role", caller.UserID, id, status)
		return false, domain.ErrForbidden
	}
	if !domain.IsValidPaymentStatus(status) {
		_, err := domain.ParsePaymentStatus(string(status))
		return false, err
	}

	order, err := uc.orderRepo.UpdatePaymentStatus(ctx, id, status)
	if err != nil {
		uc.log.Warnf("Use Case: Failed to update payment status for order %d: %v", id, err)
		return false, nil
	}
	uc.log.Infof("Use Case: Order %d payment status updated to '%s'", id, order.PaymentStatus)
	return true, nil
}

func (uc *orderUseCase) Stats(ctx context.Context, caller domain.Caller) (*domain.OrderStats, error) {
	if !caller.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	stats, err := uc.orderRepo.Stats(ctx)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to compute order stats: %v", err)
		empty := &domain.OrderStats{ByStatus: make(map[domain.OrderStatus]int64, len(domain.OrderStatuses))}
		for _, s := range domain.OrderStatuses {
			empty.ByStatus[s] = 0
		}
		return empty, nil
	}
	return stats, nil
}

// publish runs after the order is committed; a failed publish only costs the email.
func (uc *orderUseCase) publish(ctx context.Context, evt events.Event) {
	if uc.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := uc.publisher.Publish(ctx, evt); err != nil {
		uc.log.Errorf("Use Case: Failed to publish %s for order %d: %v", evt.Type, evt.OrderID, err)
	}
}

func validateOrderInput(input domain.NewOrderInput) error {
	if input.CustomerName == "" {
		return domain.NewValidationError("customerName", "must not be empty")
	}
	if err := checkMaxLen("customerName", input.CustomerName, maxNameLen); err != nil {
		return err
	}
	if !isValidEmail(input.CustomerEmail) {
		return domain.NewValidationError("customerEmail", "invalid email format")
	}
	if err := checkMaxLen("customerEmail", input.CustomerEmail, maxEmailLen); err != nil {
		return err
	}
	if input.CustomerPhone == "" {
		return domain.NewValidationError("customerPhone", "must not be empty")
	}
	if err := checkMaxLen("customerPhone", input.CustomerPhone, maxPhoneLen); err != nil {
		return err
	}
	if input.TotalAmount <= 0 {
		return domain.NewValidationError("totalAmount", "must be a positive amount in minor units")
	}
	if !domain.IsValidPaymentMethod(input.PaymentMethod) {
		return domain.NewValidationError("paymentMethod", fmt.Sprintf("unknown payment method %q", input.PaymentMethod))
	}
	if input.ShippingAddress == "" {
		return domain.NewValidationError("shippingAddress", "must not be empty")
	}
	if len(input.Items) == 0 {
		return domain.NewValidationError("items", "order must contain at least one item")
	}
	for i, item := range input.Items {
		if item.ProductID <= 0 {
			return domain.NewValidationError("items", fmt.Sprintf("item %d: invalid product ID", i))
		}
		if item.Quantity <= 0 {
			return domain.NewValidationError("items", fmt.Sprintf("item %d (product %d): quantity must be positive", i, item.ProductID))
		}
		if item.Price < 0 {
			return domain.NewValidationError("items", fmt.Sprintf("item %d (product %d): price cannot be negative", i, item.ProductID))
		}
	}
	return nil
}

func checkMaxLen(field, value string, limit int) error {
	if utf8.RuneCountInString(value) > limit {
		return domain.NewValidationError(field, fmt.Sprintf("must be at most %d characters", limit))
	}
	return nil
}
