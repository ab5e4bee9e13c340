package domain

import (
	"fmt"
	"time"
)

// Payment records the transfer a customer is expected to make for an order.
// Its Status is updated together with Order.PaymentStatus.
type Payment struct {
	ID           int64         `json:"id"`
	OrderID      int64         `json:"orderId"`
	Amount       int64         `json:"amount"`
	Method       PaymentMethod `json:"method"`
	Reference    string        `json:"reference"`
	Status       PaymentStatus `json:"status"`
	Instructions string        `json:"instructions"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// PaymentAccounts holds the receiving wallet/handle shown in transfer instructions.
type PaymentAccounts struct {
	VodafoneCashNumber string
	InstapayAddress    string
}

func (a PaymentAccounts) Instructions(method PaymentMethod, amount int64, reference string) string {
	switch method {
	case PaymentVodafoneCash:
		if a.VodafoneCashNumber != "" {
			return fmt.Sprintf("Send %s via Vodafone Cash to %s and write reference %s in the transfer note.",
				FormatAmount(amount), a.VodafoneCashNumber, reference)
		}
	case PaymentInstapay:
		if a.InstapayAddress != "" {
			return fmt.Sprintf("Send %s via InstaPay to %s and write reference %s in the transfer note.",
				FormatAmount(amount), a.InstapayAddress, reference)
		}
	}
	return fmt.Sprintf("Our team will contact you to arrange payment of %s. Keep reference %s for your records.",
		FormatAmount(amount), reference)
}
