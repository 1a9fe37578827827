package notification

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"wishlist/internal/domain"
	"wishlist/internal/metrics"
)

type Deliverer interface {
	Send(ctx context.Context, order domain.Order, baseURL string) error
}

// Dispatcher sends order notifications on background goroutines. Results are
// logged and counted; callers never see them.
type Dispatcher struct {
	sender  Deliverer
	timeout time.Duration
	logger  *zap.Logger

	wg sync.WaitGroup
}

// NewDispatcher returns a dispatcher. A nil sender disables notifications.
func NewDispatcher(sender Deliverer, timeout time.Duration, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		sender:  sender,
		timeout: timeout,
		logger:  logger,
	}
}

// OrderCreated schedules a notification and returns immediately. The send
// outlives ctx cancellation and is bounded by the dispatcher timeout.
func (d *Dispatcher) OrderCreated(ctx context.Context, order domain.Order, baseURL string) {
	logger := d.logger.With(zap.String("orderId", order.ID))
	if d.sender == nil {
		logger.Debug("notifications disabled, skipping")
		return
	}

	order.Items = append([]string(nil), order.Items...)
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				metrics.NotificationFailed()
				logger.Error("notification panicked", zap.Error(fmt.Errorf("%v", r)))
			}
		}()

		if err := d.sender.Send(sendCtx, order, baseURL); err != nil {
			metrics.NotificationFailed()
			logger.Error("failed to send order notification", zap.Error(err))
			return
		}

		metrics.NotificationSent()
		logger.Info("order notification sent")
	}()
}

// Wait blocks until in-flight notifications finish or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
