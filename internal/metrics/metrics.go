package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_ms",
			Help:    "Duration of HTTP requests in ms",
			Buckets: []float64{5, 10, 25, 50, 100, 200, 400, 800, 1600},
		},
		[]string{"method", "route"},
	)

	ordersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wishlist_orders_created_total",
		Help: "Orders persisted by the create operation",
	})

	ordersReplayed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wishlist_orders_replayed_total",
		Help: "Create requests answered from an earlier request with the same idempotency key",
	})

	statusUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wishlist_order_status_updates_total",
		Help: "Order status updates by target status",
	}, []string{"status"})

	ordersDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wishlist_orders_deleted_total",
		Help: "Orders removed by the delete operation",
	})

	notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wishlist_notifications_total",
		Help: "Order notifications by delivery result",
	}, []string{"result"})
)

func OrderCreated() { ordersCreated.Inc() }
func OrderReplayed() { ordersReplayed.Inc() }
func StatusUpdated(status string) { statusUpdates.WithLabelValues(status).Inc() }
func OrderDeleted() { ordersDeleted.Inc() }
func NotificationSent() { notifications.WithLabelValues("sent").Inc() }
func NotificationFailed() { notifications.WithLabelValues("failed").Inc() }
