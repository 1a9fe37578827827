package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"wishlist/internal/config"
	"wishlist/internal/infrastructure/mysql"
	"wishlist/internal/infrastructure/redis"
	"wishlist/internal/order/controller"
	"wishlist/internal/order/notification"
	orderrepo "wishlist/internal/order/repository"
	"wishlist/internal/order/service"
)

// Module holds the order feature and the resources it owns.
type Module struct {
	Controller *controller.OrderController

	dispatcher *notification.Dispatcher
	provider   *mysql.Provider
	rdb        *goredis.Client
	logger     *zap.Logger
}

func NewModule(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Module, error) {
	m := &Module{logger: logger}

	var repo service.OrderRepository
	switch cfg.Server.StoreDriver {
	case config.StoreMemory:
		logger.Warn("using in-memory order store, data is lost on restart")
		repo = orderrepo.NewMemoryOrderRepository()
	default:
		m.provider = mysql.NewProvider(cfg.Database)
		repo = orderrepo.NewMySQLOrderRepository(m.provider)
	}

	var idempotency service.IdempotencyStore
	if cfg.Redis.Enabled() {
		rdb, err := redis.NewClient(ctx, cfg.Redis)
		if err != nil {
			logger.Warn("redis unavailable, idempotency keys disabled", zap.Error(err))
		} else {
			m.rdb = rdb
			idempotency = orderrepo.NewRedisIdempotencyStore(rdb, cfg.Redis.IdempotencyTTL)
		}
	}

	var deliverer notification.Deliverer
	if cfg.Notification.Enabled() {
		location, err := time.LoadLocation(cfg.Notification.Timezone)
		if err != nil {
			return nil, fmt.Errorf("loading notification timezone: %w", err)
		}
		deliverer = notification.NewSender(
			cfg.Notification.Endpoint,
			cfg.Notification.Recipient,
			location,
			nil,
			cfg.Notification.Timeout,
		)
	} else {
		logger.Info("notification endpoint not configured, order emails disabled")
	}
	m.dispatcher = notification.NewDispatcher(deliverer, cfg.Notification.Timeout, logger)

	svc := service.NewOrderService(repo, m.dispatcher, idempotency, logger)
	m.Controller = controller.NewOrderController(svc, cfg.Server.PublicBaseURL, logger)

	return m, nil
}

// Close waits for pending notifications and releases the store connections.
func (m *Module) Close(ctx context.Context) error {
	var errs []error

	if err := m.dispatcher.Wait(ctx); err != nil {
		m.logger.Warn("pending notifications abandoned", zap.Error(err))
		errs = append(errs, err)
	}
	if m.provider != nil {
		if err := m.provider.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing database: %w", err))
		}
	}
	if m.rdb != nil {
		if err := m.rdb.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing redis: %w", err))
		}
	}

	return errors.Join(errs...)
}
