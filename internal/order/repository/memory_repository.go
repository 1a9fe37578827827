package repository

import (
	"context"
	"sort"
	"sync"

	"wishlist/internal/domain"
)

// MemoryOrderRepository keeps orders in process memory. It honours the same
// contract as the MySQL repository and is used for local runs and tests.
type MemoryOrderRepository struct {
	mu     sync.RWMutex
	orders map[string]domain.Order
	// seq breaks ties between orders created within the same microsecond.
	seq  map[string]uint64
	next uint64
}

func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{
		orders: make(map[string]domain.Order),
		seq:    make(map[string]uint64),
	}
}

func cloneOrder(o domain.Order) domain.Order {
	o.Items = append([]string(nil), o.Items...)
	return o
}

func (r *MemoryOrderRepository) Insert(_ context.Context, order domain.Order) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := domain.NewOrderID()
	for {
		if _, taken := r.orders[id]; !taken {
			break
		}
		id = domain.NewOrderID()
	}

	order = cloneOrder(order)
	order.ID = id
	r.orders[id] = order
	r.next++
	r.seq[id] = r.next
	return id, nil
}

func (r *MemoryOrderRepository) FindByID(_ context.Context, id string) (*domain.Order, error) {
	if !domain.ValidOrderID(id) {
		return nil, notFound(id)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, notFound(id)
	}
	out := cloneOrder(order)
	return &out, nil
}

func (r *MemoryOrderRepository) UpdateStatus(_ context.Context, id string, status domain.Status) (*domain.Order, error) {
	if !domain.ValidOrderID(id) {
		return nil, notFound(id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, notFound(id)
	}
	if !domain.CanTransition(order.Status, status) {
		return nil, transitionRefused(order.Status, status)
	}
	order.Status = status
	r.orders[id] = order

	out := cloneOrder(order)
	return &out, nil
}

func (r *MemoryOrderRepository) Delete(_ context.Context, id string) error {
	if !domain.ValidOrderID(id) {
		return notFound(id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[id]; !ok {
		return notFound(id)
	}
	delete(r.orders, id)
	delete(r.seq, id)
	return nil
}

func (r *MemoryOrderRepository) ListAll(_ context.Context) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orders := make([]domain.Order, 0, len(r.orders))
	for _, o := range r.orders {
		orders = append(orders, cloneOrder(o))
	}
	sort.Slice(orders, func(i, j int) bool {
		a, b := orders[i], orders[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return r.seq[a.ID] > r.seq[b.ID]
	})
	return orders, nil
}

// Count returns the number of stored orders.
func (r *MemoryOrderRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.orders)
}
