package notification

import (
	"testing"

	"projexa/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderConfirmationEmail(t *testing.T) {
	html, err := OrderConfirmationEmail("Ahmed", 1, 59000, domain.PaymentVodafoneCash)
	require.NoError(t, err)
	assert.Contains(t, html, "Hello Ahmed,")
	assert.Contains(t, html, "#1")
	assert.Contains(t, html, "EGP 590.00")
	assert.Contains(t, html, "Vodafone Cash")
	assert.Contains(t, html, "#2196F3")
}

func TestOrderStatusUpdateEmail(t *testing.T) {
	html, err := OrderStatusUpdateEmail("Ahmed", 5, domain.StatusShipped)
	require.NoError(t, err)
	assert.Contains(t, html, "SHIPPED")
	assert.Contains(t, html, "Your order has been shipped!")

	html, err = OrderStatusUpdateEmail("Ahmed", 5, domain.StatusPending)
	require.NoError(t, err)
	assert.Contains(t, html, "Your order status has been updated.")
}

func TestAdminOrderAlertEmail(t *testing.T) {
	html, err := AdminOrderAlertEmail(9, "Mona", "m@x.io", 125)
	require.NoError(t, err)
	assert.Contains(t, html, "New Order Alert")
	assert.Contains(t, html, "m@x.io")
	assert.Contains(t, html, "EGP 1.25")
}

func TestRegistrationEmail_EscapesName(t *testing.T) {
	html, err := RegistrationEmail("<script>alert(1)</script>")
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
	assert.Contains(t, html, "Welcome to Projexa Store!")
}
