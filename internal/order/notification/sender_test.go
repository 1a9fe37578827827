package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wishlist/internal/domain"
)

func testOrder() domain.Order {
	return domain.Order{
		ID:        "7d444840-9dc0-11d1-b245-5ffdce74fad2",
		Items:     []string{"cake", "tea"},
		Comment:   "for you",
		Status:    domain.StatusOrdered,
		CreatedAt: time.Date(2026, 10, 15, 11, 5, 0, 0, time.UTC),
	}
}

func moscow(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Moscow")
	if err != nil {
		t.Skipf("time zone data not available: %v", err)
	}
	return loc
}

func TestFormatDate(t *testing.T) {
	got := formatDate(time.Date(2026, 3, 8, 9, 7, 0, 0, time.UTC))
	assert.Equal(t, "8 марта 2026 г. в 09:07", got)
}

func TestRender(t *testing.T) {
	s := NewSender("http://relay.invalid", "someone@example.com", moscow(t), nil, time.Second)

	msg, err := s.Render(testOrder(), "https://wishlist.example.com/")
	require.NoError(t, err)

	assert.Equal(t, "someone@example.com", msg.Email)
	assert.Equal(t, title, msg.Title)
	assert.Contains(t, msg.HTML, `<span class="item-number">1</span><span>cake</span>`)
	assert.Contains(t, msg.HTML, `<span class="item-number">2</span><span>tea</span>`)
	assert.Contains(t, msg.HTML, "for you")
	assert.Contains(t, msg.HTML, "15 октября 2026 г. в 14:05")
	assert.Contains(t, msg.HTML, `href="https://wishlist.example.com/orders/7d444840-9dc0-11d1-b245-5ffdce74fad2"`)
}

func TestRender_OmitsEmptyComment(t *testing.T) {
	s := NewSender("http://relay.invalid", "someone@example.com", time.UTC, nil, time.Second)
	order := testOrder()
	order.Comment = ""

	msg, err := s.Render(order, "https://wishlist.example.com")
	require.NoError(t, err)
	assert.NotContains(t, msg.HTML, "Комментарий")
}

func TestRender_EscapesUserContent(t *testing.T) {
	s := NewSender("http://relay.invalid", "someone@example.com", time.UTC, nil, time.Second)
	order := testOrder()
	order.Items = []string{`<script>alert("x")</script>`}
	order.Comment = `<img src=x onerror=alert(1)>`

	msg, err := s.Render(order, "https://wishlist.example.com")
	require.NoError(t, err)
	assert.NotContains(t, msg.HTML, "<script>")
	assert.NotContains(t, msg.HTML, "<img")
	assert.Contains(t, msg.HTML, "&lt;script&gt;")
}

func TestSend_PostsJSON(t *testing.T) {
	var got Message
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewSender(srv.URL, "someone@example.com", time.UTC, srv.Client(), time.Second)

	require.NoError(t, s.Send(context.Background(), testOrder(), "https://wishlist.example.com"))
	assert.Equal(t, "someone@example.com", got.Email)
	assert.Equal(t, title, got.Title)
	assert.Contains(t, got.HTML, "cake")
}

func TestSend_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	s := NewSender(srv.URL, "someone@example.com", time.UTC, srv.Client(), time.Second)

	err := s.Send(context.Background(), testOrder(), "https://wishlist.example.com")
	require.Error(t, err)

	var de *DeliveryError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, http.StatusBadGateway, de.StatusCode)
	assert.Contains(t, err.Error(), "rejected with status 502")
}

func TestSend_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	s := NewSender(url, "someone@example.com", time.UTC, nil, time.Second)

	err := s.Send(context.Background(), testOrder(), "https://wishlist.example.com")
	var de *DeliveryError
	require.ErrorAs(t, err, &de)
	assert.Zero(t, de.StatusCode)
	assert.Error(t, de.Unwrap())
}

func TestOrderURL(t *testing.T) {
	assert.Equal(t, "https://a.example/orders/x", OrderURL("https://a.example/", "x"))
	assert.Equal(t, "https://a.example/orders/x", OrderURL("https://a.example", "x"))
}
