package notification

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"projexa/internal/domain"
)

const layout = `{{define "layout"}}<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <style>
    body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
    .container { max-width: 600px; margin: 0 auto; padding: 20px; }
    .header { background-color: {{.Accent}}; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
    .content { background-color: #f9f9f9; padding: 20px; border: 1px solid #ddd; border-radius: 0 0 5px 5px; }
    .details { background-color: white; padding: 15px; border: 1px solid #ddd; margin: 15px 0; border-radius: 5px; }
    .label { font-weight: bold; }
    .badge { display: inline-block; background-color: #4CAF50; color: white; padding: 10px 15px; border-radius: 5px; font-weight: bold; }
    .footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header"><h1>{{.Title}}</h1></div>
    <div class="content">{{template "body" .}}</div>
    <div class="footer"><p>&copy; Projexa Store. All rights reserved.</p></div>
  </div>
</body>
</html>{{end}}`

var (
	registrationTmpl = mustParse(`{{define "body"}}
      <p>Hello {{.Name}},</p>
      <p>Thank you for registering with Projexa Store. Your account has been successfully created.</p>
      <p>You can now browse our products and place orders.</p>
      <p>Best regards,<br>Projexa Store Team</p>{{end}}`)

	confirmationTmpl = mustParse(`{{define "body"}}
      <p>Hello {{.Name}},</p>
      <p>Thank you for your order!</p>
      <div class="details">
        <p><span class="label">Order ID:</span> #{{.OrderID}}</p>
        <p><span class="label">Total Amount:</span> {{.Amount}}</p>
        <p><span class="label">Payment Method:</span> {{.Method}}</p>
      </div>
      <p>Your order has been received. You will receive further updates via email.</p>
      <p>Best regards,<br>Projexa Store Team</p>{{end}}`)

	statusUpdateTmpl = mustParse(`{{define "body"}}
      <p>Hello {{.Name}},</p>
      <p>We have an update on your order #{{.OrderID}}.</p>
      <div class="badge">{{.Status}}</div>
      <p>{{.StatusMessage}}</p>
      <p>Best regards,<br>Projexa Store Team</p>{{end}}`)

	adminAlertTmpl = mustParse(`{{define "body"}}
      <p>A new order has been received!</p>
      <div class="details">
        <p><span class="label">Order ID:</span> #{{.OrderID}}</p>
        <p><span class="label">Customer Name:</span> {{.Name}}</p>
        <p><span class="label">Customer Email:</span> {{.Email}}</p>
        <p><span class="label">Total Amount:</span> {{.Amount}}</p>
      </div>
      <p>Please log in to your admin dashboard to view and process this order.</p>
      <p>Best regards,<br>Projexa Store System</p>{{end}}`)
)

var statusMessages = map[domain.OrderStatus]string{
	domain.StatusConfirmed: "Your order has been confirmed and is being prepared.",
	domain.StatusShipped:   "Your order has been shipped!",
	domain.StatusDelivered: "Your order has been delivered. Thank you!",
	domain.StatusCancelled: "Your order has been cancelled.",
}

func mustParse(body string) *template.Template {
	return template.Must(template.Must(template.New("layout").Parse(layout)).Parse(body))
}

type view struct {
	Title         string
	Accent        template.CSS
	Name          string
	Email         string
	OrderID       int64
	Amount        string
	Method        string
	Status        string
	StatusMessage string
}

func render(t *template.Template, v view) (string, error) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", v); err != nil {
		return "", fmt.Errorf("render %q email: %w", v.Title, err)
	}
	return buf.String(), nil
}

func RegistrationEmail(name string) (string, error) {
	return render(registrationTmpl, view{Title: "Welcome to Projexa Store!", Accent: "#4CAF50", Name: name})
}

func OrderConfirmationEmail(name string, orderID, amount int64, method domain.PaymentMethod) (string, error) {
	return render(confirmationTmpl, view{
		Title:   "Order Confirmation",
		Accent:  "#2196F3",
		Name:    name,
		OrderID: orderID,
		Amount:  domain.FormatAmount(amount),
		Method:  method.DisplayName(),
	})
}

func OrderStatusUpdateEmail(name string, orderID int64, status domain.OrderStatus) (string, error) {
	msg, ok := statusMessages[status]
	if !ok {
		msg = "Your order status has been updated."
	}
	return render(statusUpdateTmpl, view{
		Title:         "Order Status Update",
		Accent:        "#FF9800",
		Name:          name,
		OrderID:       orderID,
		Status:        strings.ToUpper(string(status)),
		StatusMessage: msg,
	})
}

func AdminOrderAlertEmail(orderID int64, name, email string, amount int64) (string, error) {
	return render(adminAlertTmpl, view{
		Title:   "New Order Alert",
		Accent:  "#E91E63",
		Name:    name,
		Email:   email,
		OrderID: orderID,
		Amount:  domain.FormatAmount(amount),
	})
}
