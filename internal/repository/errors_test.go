package repository

import (
	"errors"
	"fmt"
	"testing"

	"projexa/internal/domain"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestTranslatePqError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"email taken", &pq.Error{Code: pqUniqueViolation, Constraint: "users_email_key"}, domain.ErrEmailTaken},
		{"other unique", &pq.Error{Code: pqUniqueViolation, Constraint: "orders_payment_reference_key"}, domain.ErrDuplicate},
		{"missing product", &pq.Error{Code: pqForeignKeyViolation, Constraint: "order_items_product_id_fkey"}, domain.ErrValidation},
		{"check", &pq.Error{Code: pqCheckViolation, Constraint: "orders_status_check"}, domain.ErrValidation},
		{"value too long", &pq.Error{Code: pqStringTooLong, Message: "value too long for type character varying(20)"}, domain.ErrValidation},
		{"wrapped too long", fmt.Errorf("insert order: %w", &pq.Error{Code: pqStringTooLong}), domain.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, translatePqError(tt.err), tt.want)
		})
	}
}

func TestTranslatePqError_PassThrough(t *testing.T) {
	plain := errors.New("connection reset")
	assert.Same(t, plain, translatePqError(plain))

	deadlock := &pq.Error{Code: "40P01"}
	err := translatePqError(deadlock)
	assert.NotErrorIs(t, err, domain.ErrValidation)
	assert.NotErrorIs(t, err, domain.ErrDuplicate)
}
