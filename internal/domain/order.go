package domain

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusOrdered    Status = "ordered"
	StatusInProgress Status = "in_progress"
	StatusDelivered  Status = "delivered"
)

var statuses = []Status{StatusOrdered, StatusInProgress, StatusDelivered}

type Order struct {
	ID        string
	Items     []string
	Comment   string
	Status    Status
	CreatedAt time.Time
}

// Statuses returns the valid statuses in workflow order.
func Statuses() []Status {
	out := make([]Status, len(statuses))
	copy(out, statuses)
	return out
}

func (s Status) Valid() bool {
	for _, v := range statuses {
		if s == v {
			return true
		}
	}
	return false
}

func ParseStatus(s string) (Status, bool) {
	st := Status(s)
	if !st.Valid() {
		return "", false
	}
	return st, true
}

// CanTransition reports whether an order may move from one status to another.
// Every status is reachable from every other, including moving backwards.
func CanTransition(from, to Status) bool {
	return from.Valid() && to.Valid()
}

const orderIDLength = 36

func NewOrderID() string {
	return uuid.NewString()
}

// ValidOrderID accepts only the canonical hyphenated UUID form.
func ValidOrderID(id string) bool {
	if len(id) != orderIDLength {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}
