package repository

import (
	"errors"
	"fmt"

	"projexa/internal/domain"

	"github.com/lib/pq"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqCheckViolation      = "23514"
	pqStringTooLong       = "22001"
)

// translatePqError maps constraint violations onto domain errors and leaves everything else wrapped as-is.
func translatePqError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case pqUniqueViolation:
		if pqErr.Constraint == "users_email_key" {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("%w: duplicate key (%s): %v", domain.ErrDuplicate, pqErr.Constraint, err)
	case pqForeignKeyViolation:
		return domain.NewValidationError("reference", fmt.Sprintf("referenced row does not exist (%s)", pqErr.Constraint))
	case pqCheckViolation:
		return domain.NewValidationError("value", fmt.Sprintf("constraint violation (%s)", pqErr.Constraint))
	case pqStringTooLong:
		// Postgres leaves Column empty for 22001; the message names the limit.
		return domain.NewValidationError("value", pqErr.Message)
	}
	return err
}
