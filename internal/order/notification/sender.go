package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"wishlist/internal/domain"
)

// Message is the payload accepted by the mail relay.
type Message struct {
	Email string `json:"email"`
	Title string `json:"title"`
	HTML  string `json:"html"`
}

// DeliveryError describes a notification that could not be handed to the
// relay. It never reaches API callers.
type DeliveryError struct {
	OrderID    string
	StatusCode int
	Err        error
}

func (e *DeliveryError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("notification for order %s rejected with status %d", e.OrderID, e.StatusCode)
	}
	return fmt.Sprintf("notification for order %s failed: %v", e.OrderID, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

type Sender struct {
	endpoint  string
	recipient string
	location  *time.Location
	client    *http.Client
}

// NewSender builds a relay client. A nil client gets one with the given timeout.
func NewSender(endpoint, recipient string, location *time.Location, client *http.Client, timeout time.Duration) *Sender {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	if location == nil {
		location = time.UTC
	}
	return &Sender{
		endpoint:  endpoint,
		recipient: recipient,
		location:  location,
		client:    client,
	}
}

func OrderURL(baseURL, orderID string) string {
	return strings.TrimRight(baseURL, "/") + "/orders/" + orderID
}

// Render builds the email for a freshly created order.
func (s *Sender) Render(order domain.Order, baseURL string) (Message, error) {
	view := emailView{
		Items:     make([]itemView, len(order.Items)),
		Comment:   order.Comment,
		CreatedAt: formatDate(order.CreatedAt.In(s.location)),
		OrderURL:  OrderURL(baseURL, order.ID),
	}
	for i, item := range order.Items {
		view.Items[i] = itemView{Number: i + 1, Text: item}
	}

	var buf bytes.Buffer
	if err := emailTemplate.Execute(&buf, view); err != nil {
		return Message{}, fmt.Errorf("rendering email: %w", err)
	}

	return Message{
		Email: s.recipient,
		Title: title,
		HTML:  buf.String(),
	}, nil
}

func (s *Sender) Send(ctx context.Context, order domain.Order, baseURL string) error {
	msg, err := s.Render(order, baseURL)
	if err != nil {
		return &DeliveryError{OrderID: order.ID, Err: err}
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return &DeliveryError{OrderID: order.ID, Err: fmt.Errorf("encoding message: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return &DeliveryError{OrderID: order.ID, Err: fmt.Errorf("building request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return &DeliveryError{OrderID: order.ID, Err: fmt.Errorf("calling relay: %w", err)}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &DeliveryError{OrderID: order.ID, StatusCode: resp.StatusCode}
	}

	return nil
}
