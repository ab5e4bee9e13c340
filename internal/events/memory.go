package events

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// MemoryBus is an in-process bus: a buffered channel drained by a fixed pool of workers.
// Publish never blocks; a full buffer drops the event.
type MemoryBus struct {
	ch        chan Event
	done      chan struct{}
	closeOnce sync.Once
	workers   int
	log       *logrus.Logger
}

func NewMemoryBus(buffer, workers int, logger *logrus.Logger) *MemoryBus {
	if buffer <= 0 {
		buffer = 256
	}
	if workers <= 0 {
		workers = 1
	}
	return &MemoryBus{
		ch:      make(chan Event, buffer),
		done:    make(chan struct{}),
		workers: workers,
		log:     logger,
	}
}

func (b *MemoryBus) Publish(_ context.Context, evt Event) error {
	select {
	case <-b.done:
		return ErrBusClosed
	default:
	}

	select {
	case b.ch <- evt:
		return nil
	default:
		return ErrBufferFull
	}
}

func (b *MemoryBus) Run(ctx context.Context, handler Handler) error {
	var wg sync.WaitGroup
	for i := 0; i < b.workers; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case <-b.done:
					return
				case evt := <-b.ch:
					b.handle(ctx, worker, handler, evt)
				}
			}
		}(i)
	}
	wg.Wait()
	return nil
}

func (b *MemoryBus) handle(ctx context.Context, worker int, handler Handler, evt Event) {
	entry := b.log.WithFields(logrus.Fields{"worker": worker, "event_id": evt.ID, "event_type": evt.Type})
	defer func() {
		if p := recover(); p != nil {
			entry.Errorf("Event handler panicked: %v", p)
		}
	}()
	if err := handler(ctx, evt); err != nil {
		entry.Warnf("Event handler failed: %v", err)
		return
	}
	entry.Debug("Event handled")
}

func (b *MemoryBus) Close() error {
	b.closeOnce.Do(func() { close(b.done) })
	return nil
}
