package dto

import (
	"time"

	"wishlist/internal/domain"
)

type CreateOrderRequest struct {
	Items   []string `json:"items"`
	Comment *string  `json:"comment"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type OrderDTO struct {
	ID        string    `json:"id"`
	Items     []string  `json:"items"`
	Comment   string    `json:"comment"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

type DeleteOrderResponse struct {
	Success bool `json:"success"`
}

func FromOrder(o domain.Order) OrderDTO {
	items := o.Items
	if items == nil {
		items = []string{}
	}
	return OrderDTO{
		ID:        o.ID,
		Items:     items,
		Comment:   o.Comment,
		Status:    string(o.Status),
		CreatedAt: o.CreatedAt.UTC(),
	}
}

func FromOrders(orders []domain.Order) []OrderDTO {
	out := make([]OrderDTO, len(orders))
	for i, o := range orders {
		out[i] = FromOrder(o)
	}
	return out
}
