package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"wishlist/internal/domain"
	apperrors "wishlist/internal/errors"
	"wishlist/internal/metrics"
)

const (
	MaxItems         = 100
	MaxItemLength    = 500
	MaxCommentLength = 2000
)

type OrderRepository interface {
	Insert(ctx context.Context, order domain.Order) (string, error)
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.Status) (*domain.Order, error)
	Delete(ctx context.Context, id string) error
	ListAll(ctx context.Context) ([]domain.Order, error)
}

type Notifier interface {
	OrderCreated(ctx context.Context, order domain.Order, baseURL string)
}

type IdempotencyStore interface {
	TryLock(ctx context.Context, key string) (bool, error)
	Unlock(ctx context.Context, key string) error
	Remember(ctx context.Context, key, orderID string) error
	Recall(ctx context.Context, key string) (string, bool, error)
}

type CreateOrderInput struct {
	Items          []string
	Comment        string
	BaseURL        string
	IdempotencyKey string
}

type CreateOrderResult struct {
	Order    *domain.Order
	Replayed bool
}

// OrderService owns the order lifecycle rules. Every read and write of the
// store goes through it.
type OrderService struct {
	repo        OrderRepository
	notifier    Notifier
	idempotency IdempotencyStore
	logger      *zap.Logger
	now         func() time.Time
}

// NewOrderService wires the service. idempotency may be nil.
func NewOrderService(repo OrderRepository, notifier Notifier, idempotency IdempotencyStore, logger *zap.Logger) *OrderService {
	return &OrderService{
		repo:        repo,
		notifier:    notifier,
		idempotency: idempotency,
		logger:      logger,
		now:         time.Now,
	}
}

func validateItems(items []string, comment string) error {
	var details []apperrors.ValidationDetail

	if len(items) == 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "items",
			Message: "items must not be empty",
		})
	}

	if len(items) > MaxItems {
		details = append(details, apperrors.ValidationDetail{
			Field:   "items",
			Message: fmt.Sprintf("items exceeds maximum of %d", MaxItems),
		})
	}

	for idx, item := range items {
		field := fmt.Sprintf("items[%d]", idx)
		if strings.TrimSpace(item) == "" {
			details = append(details, apperrors.ValidationDetail{
				Field:   field,
				Message: "item must not be blank",
			})
			continue
		}
		if utf8.RuneCountInString(item) > MaxItemLength {
			details = append(details, apperrors.ValidationDetail{
				Field:   field,
				Message: fmt.Sprintf("item exceeds maximum length of %d", MaxItemLength),
			})
		}
	}

	if utf8.RuneCountInString(comment) > MaxCommentLength {
		details = append(details, apperrors.ValidationDetail{
			Field:   "comment",
			Message: fmt.Sprintf("comment exceeds maximum length of %d", MaxCommentLength),
		})
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}
	return nil
}

func invalidID(id string) error {
	if domain.ValidOrderID(id) {
		return nil
	}
	return apperrors.NewValidationError("invalid order id", apperrors.ValidationDetail{
		Field:   "id",
		Message: "id must be a UUID",
	})
}

func mapStoreError(err error, action string) error {
	if _, ok := apperrors.IsNotFoundError(err); ok {
		return apperrors.NewNotFoundError("order not found")
	}
	if _, ok := apperrors.IsConflictError(err); ok {
		return err
	}
	return apperrors.NewInternalError("failed to "+action, err)
}

// Create validates and persists a new order, then schedules its notification.
// A repeated idempotency key returns the order created by the first request.
func (s *OrderService) Create(ctx context.Context, in CreateOrderInput) (*CreateOrderResult, error) {
	if err := validateItems(in.Items, in.Comment); err != nil {
		return nil, err
	}

	key := in.IdempotencyKey
	if key != "" && s.idempotency != nil {
		existing, err := s.replay(ctx, key)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			metrics.OrderReplayed()
			return &CreateOrderResult{Order: existing, Replayed: true}, nil
		}

		locked, err := s.idempotency.TryLock(ctx, key)
		switch {
		case err != nil:
			s.logger.Warn("idempotency store unavailable, creating without it", zap.Error(err))
			key = ""
		case !locked:
			return nil, apperrors.NewConflictError("a request with this idempotency key is already in progress")
		}
	} else {
		key = ""
	}

	order := domain.Order{
		Items:     append([]string(nil), in.Items...),
		Comment:   in.Comment,
		Status:    domain.StatusOrdered,
		CreatedAt: s.now().UTC().Truncate(time.Microsecond),
	}

	id, err := s.repo.Insert(ctx, order)
	if err != nil {
		if key != "" {
			if uerr := s.idempotency.Unlock(context.WithoutCancel(ctx), key); uerr != nil {
				s.logger.Warn("failed to release idempotency key", zap.Error(uerr))
			}
		}
		return nil, apperrors.NewInternalError("failed to create order", err)
	}
	order.ID = id

	if key != "" {
		if err := s.idempotency.Remember(ctx, key, id); err != nil {
			s.logger.Warn("failed to remember idempotency key", zap.String("orderId", id), zap.Error(err))
			if uerr := s.idempotency.Unlock(context.WithoutCancel(ctx), key); uerr != nil {
				s.logger.Warn("failed to release idempotency key", zap.Error(uerr))
			}
		}
	}

	metrics.OrderCreated()
	s.logger.Info("order created", zap.String("orderId", id), zap.Int("itemCount", len(order.Items)))

	if s.notifier != nil {
		s.notifier.OrderCreated(ctx, order, in.BaseURL)
	}

	return &CreateOrderResult{Order: &order}, nil
}

func (s *OrderService) replay(ctx context.Context, key string) (*domain.Order, error) {
	id, found, err := s.idempotency.Recall(ctx, key)
	if err != nil {
		s.logger.Warn("idempotency lookup failed", zap.Error(err))
		return nil, nil
	}
	if !found {
		return nil, nil
	}

	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if _, ok := apperrors.IsNotFoundError(err); ok {
			return nil, apperrors.NewConflictError("idempotency key belongs to a deleted order")
		}
		return nil, apperrors.NewInternalError("failed to load order", err)
	}
	return order, nil
}

func (s *OrderService) Get(ctx context.Context, id string) (*domain.Order, error) {
	if err := invalidID(id); err != nil {
		return nil, err
	}

	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, "load order")
	}
	return order, nil
}

// UpdateStatus moves an order to the requested status.
func (s *OrderService) UpdateStatus(ctx context.Context, id, status string) (*domain.Order, error) {
	if err := invalidID(id); err != nil {
		return nil, err
	}

	next, ok := domain.ParseStatus(status)
	if !ok {
		return nil, apperrors.NewValidationError("invalid status", apperrors.ValidationDetail{
			Field:   "status",
			Message: "status must be one of ordered, in_progress, delivered",
		})
	}

	order, err := s.repo.UpdateStatus(ctx, id, next)
	if err != nil {
		return nil, mapStoreError(err, "update order")
	}

	metrics.StatusUpdated(string(next))
	s.logger.Info("order status updated", zap.String("orderId", id), zap.String("status", string(next)))
	return order, nil
}

func (s *OrderService) Delete(ctx context.Context, id string) error {
	if err := invalidID(id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return mapStoreError(err, "delete order")
	}

	metrics.OrderDeleted()
	s.logger.Info("order deleted", zap.String("orderId", id))
	return nil
}

func (s *OrderService) List(ctx context.Context) ([]domain.Order, error) {
	orders, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list orders", err)
	}
	return orders, nil
}
