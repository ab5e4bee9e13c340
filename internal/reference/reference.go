// Package reference issues the opaque payment references handed to customers.
package reference

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Length of every issued reference. 13 symbols over a 64-character alphabet give 78 bits,
// enough that collisions are not retried.
const Length = 13

// Generator produces a new reference on each call.
type Generator func() (string, error)

// New returns a URL-safe random reference.
func New() (string, error) {
	ref, err := gonanoid.New(Length)
	if err != nil {
		return "", fmt.Errorf("generate payment reference: %w", err)
	}
	return ref, nil
}
