package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"wishlist/internal/domain"
	"wishlist/internal/errors"
)

type DBProvider interface {
	DB(ctx context.Context) (*sql.DB, error)
}

type MySQLOrderRepository struct {
	provider DBProvider
	backoffs []time.Duration
}

func NewMySQLOrderRepository(provider DBProvider) *MySQLOrderRepository {
	return &MySQLOrderRepository{
		provider: provider,
		backoffs: lockRetryBackoffs,
	}
}

const selectOrderColumns = `SELECT id, items, comment, status, created_at FROM orders`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var (
		order  domain.Order
		items  []byte
		status string
	)
	if err := row.Scan(&order.ID, &items, &order.Comment, &status, &order.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &order.Items); err != nil {
		return nil, fmt.Errorf("decoding items of order %s: %w", order.ID, err)
	}
	order.Status = domain.Status(status)
	order.CreatedAt = order.CreatedAt.UTC()
	return &order, nil
}

func notFound(id string) error {
	return errors.NewNotFoundError(fmt.Sprintf("order with id %s not found", id))
}

func transitionRefused(from, to domain.Status) error {
	return errors.NewConflictError(fmt.Sprintf("cannot move order from %s to %s", from, to))
}

// Insert stores a new order under a freshly generated id and returns the id.
func (r *MySQLOrderRepository) Insert(ctx context.Context, order domain.Order) (string, error) {
	db, err := r.provider.DB(ctx)
	if err != nil {
		return "", fmt.Errorf("connecting to database: %w", err)
	}

	items, err := json.Marshal(order.Items)
	if err != nil {
		return "", fmt.Errorf("encoding items: %w", err)
	}

	id := domain.NewOrderID()
	query := `INSERT INTO orders (id, items, comment, status, created_at) VALUES (?, ?, ?, ?, ?)`

	if _, err := db.ExecContext(ctx, query, id, items, order.Comment, string(order.Status), order.CreatedAt.UTC()); err != nil {
		return "", fmt.Errorf("inserting order: %w", err)
	}

	return id, nil
}

func (r *MySQLOrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	if !domain.ValidOrderID(id) {
		return nil, notFound(id)
	}

	db, err := r.provider.DB(ctx)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	order, err := scanOrder(db.QueryRowContext(ctx, selectOrderColumns+` WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying order by id: %w", err)
	}

	return order, nil
}

// UpdateStatus sets the status under a row lock and returns the updated order.
// The transition rule is checked against the locked row. Deadlocks and lock wait timeouts are retried with backoff.
func (r *MySQLOrderRepository) UpdateStatus(ctx context.Context, id string, status domain.Status) (*domain.Order, error) {
	if !domain.ValidOrderID(id) {
		return nil, notFound(id)
	}

	db, err := r.provider.DB(ctx)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	var order *domain.Order
	err = withLockRetry(ctx, r.backoffs, func() error {
		var txErr error
		order, txErr = updateStatusTx(ctx, db, id, status)
		return txErr
	})
	return order, err
}

func updateStatusTx(ctx context.Context, db *sql.DB, id string, status domain.Status) (*domain.Order, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	order, err := scanOrder(tx.QueryRowContext(ctx, selectOrderColumns+` WHERE id = ? FOR UPDATE`, id))
	if err == sql.ErrNoRows {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("locking order: %w", err)
	}
	if !domain.CanTransition(order.Status, status) {
		return nil, transitionRefused(order.Status, status)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE orders SET status = ? WHERE id = ?`, string(status), id); err != nil {
		return nil, fmt.Errorf("updating order status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing status update: %w", err)
	}

	order.Status = status
	return order, nil
}

func (r *MySQLOrderRepository) Delete(ctx context.Context, id string) error {
	if !domain.ValidOrderID(id) {
		return notFound(id)
	}

	db, err := r.provider.DB(ctx)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}

	result, err := db.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting order: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return notFound(id)
	}

	return nil
}

// ListAll returns every order, newest first.
func (r *MySQLOrderRepository) ListAll(ctx context.Context) ([]domain.Order, error) {
	db, err := r.provider.DB(ctx)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	rows, err := db.QueryContext(ctx, selectOrderColumns+` ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying orders: %w", err)
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning order row: %w", err)
		}
		orders = append(orders, *order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating order rows: %w", err)
	}

	return orders, nil
}
