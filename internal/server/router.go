package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"wishlist/internal/admin"
	"wishlist/internal/order/controller"
)

func NewRouter(orderCtrl *controller.OrderController, adminCtrl *admin.Controller, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(echoRequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(instrument)
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/admin", func(r chi.Router) {
		r.Post("/login", adminCtrl.HandleLogin)
		r.Get("/session", adminCtrl.HandleSession)
	})

	r.Route("/orders", func(r chi.Router) {
		r.Get("/", orderCtrl.HandleList)
		r.Post("/", orderCtrl.HandleCreate)
		r.Get("/{id}", orderCtrl.HandleGet)

		r.Group(func(r chi.Router) {
			r.Use(adminCtrl.RequireAdmin)
			r.Patch("/{id}", orderCtrl.HandleUpdateStatus)
			r.Delete("/{id}", orderCtrl.HandleDelete)
		})
	})

	return r
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   code,
		"message": message,
	})
}
