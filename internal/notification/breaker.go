package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"
)

var ErrCircuitOpen = errors.New("mail transport circuit open")

const (
	breakerTripAfter = 5
	breakerCooldown  = 30 * time.Second
)

// BreakerMailer stops dialing a mail server that keeps failing until the cooldown passes.
type BreakerMailer struct {
	next Mailer
	cb   *gobreaker.CircuitBreaker[struct{}]
}

func NewBreakerMailer(next Mailer, logger *logrus.Logger) *BreakerMailer {
	return newBreakerMailer(next, logger, breakerTripAfter, breakerCooldown)
}

func newBreakerMailer(next Mailer, logger *logrus.Logger, tripAfter uint32, cooldown time.Duration) *BreakerMailer {
	cb := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "smtp",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= tripAfter
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warnf("Circuit breaker %s: %s -> %s", name, from, to)
		},
	})
	return &BreakerMailer{next: next, cb: cb}
}

func (b *BreakerMailer) Send(ctx context.Context, m Mail) error {
	_, err := b.cb.Execute(func() (struct{}, error) {
		return struct{}{}, b.next.Send(ctx, m)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrCircuitOpen, err)
	}
	return err
}
