package controller

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"wishlist/internal/domain"
	"wishlist/internal/dto"
	apperrors "wishlist/internal/errors"
	"wishlist/internal/order/service"
)

const (
	maxBodyBytes         = 64 << 10
	maxIdempotencyKeyLen = 128
	idempotencyHeader    = "Idempotency-Key"
)

type OrderService interface {
	Create(ctx context.Context, in service.CreateOrderInput) (*service.CreateOrderResult, error)
	Get(ctx context.Context, id string) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id, status string) (*domain.Order, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Order, error)
}

type OrderController struct {
	service       OrderService
	publicBaseURL string
	logger        *zap.Logger
}

// NewOrderController builds the HTTP boundary for orders. When publicBaseURL
// is empty, links in notifications are derived from the incoming request.
func NewOrderController(service OrderService, publicBaseURL string, logger *zap.Logger) *OrderController {
	return &OrderController{
		service:       service,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		logger:        logger,
	}
}

func (c *OrderController) requestLogger(r *http.Request) *zap.Logger {
	return c.logger.With(zap.String("requestId", middleware.GetReqID(r.Context())))
}

func (c *OrderController) HandleList(w http.ResponseWriter, r *http.Request) {
	orders, err := c.service.List(r.Context())
	if err != nil {
		c.handleServiceError(w, r, err)
		return
	}

	c.writeJSON(w, http.StatusOK, dto.FromOrders(orders))
}

func (c *OrderController) HandleCreate(w http.ResponseWriter, r *http.Request) {
	logger := c.requestLogger(r)

	var req dto.CreateOrderRequest
	if err := decodeBody(w, r, &req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be a JSON object with an items array of strings",
		})
		return
	}

	key := strings.TrimSpace(r.Header.Get(idempotencyHeader))
	if len(key) > maxIdempotencyKeyLen {
		c.writeValidationError(w, "invalid idempotency key", apperrors.ValidationDetail{
			Field:   idempotencyHeader,
			Message: "idempotency key must be at most 128 characters",
		})
		return
	}

	in := service.CreateOrderInput{
		Items:          req.Items,
		BaseURL:        c.baseURL(r),
		IdempotencyKey: key,
	}
	if req.Comment != nil {
		in.Comment = *req.Comment
	}

	result, err := c.service.Create(r.Context(), in)
	if err != nil {
		c.handleServiceError(w, r, err)
		return
	}

	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}
	c.writeJSON(w, status, dto.FromOrder(*result.Order))
}

func (c *OrderController) HandleGet(w http.ResponseWriter, r *http.Request) {
	order, err := c.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		c.handleServiceError(w, r, err)
		return
	}

	c.writeJSON(w, http.StatusOK, dto.FromOrder(*order))
}

func (c *OrderController) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateStatusRequest
	if err := decodeBody(w, r, &req); err != nil {
		c.requestLogger(r).Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	order, err := c.service.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		c.handleServiceError(w, r, err)
		return
	}

	c.writeJSON(w, http.StatusOK, dto.FromOrder(*order))
}

func (c *OrderController) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := c.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		c.handleServiceError(w, r, err)
		return
	}

	c.writeJSON(w, http.StatusOK, dto.DeleteOrderResponse{Success: true})
}

// decodeBody reads exactly one JSON value from a size-capped body.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("unexpected data after JSON body")
	}
	return nil
}

func (c *OrderController) baseURL(r *http.Request) string {
	if c.publicBaseURL != "" {
		return c.publicBaseURL
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "http" || proto == "https" {
		scheme = proto
	}
	return scheme + "://" + r.Host
}

type errorResponse struct {
	Error   string                       `json:"error"`
	Message string                       `json:"message"`
	Details []apperrors.ValidationDetail `json:"details,omitempty"`
}

func (c *OrderController) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if ve, ok := apperrors.IsValidationError(err); ok {
		c.writeValidationError(w, ve.Message, ve.Details...)
		return
	}

	if nfe, ok := apperrors.IsNotFoundError(err); ok {
		c.writeJSON(w, http.StatusNotFound, errorResponse{Error: "NOT_FOUND", Message: nfe.Message})
		return
	}

	if ce, ok := apperrors.IsConflictError(err); ok {
		c.writeJSON(w, http.StatusConflict, errorResponse{Error: "CONFLICT", Message: ce.Message})
		return
	}

	c.requestLogger(r).Error("unexpected error",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	c.writeJSON(w, http.StatusInternalServerError, errorResponse{
		Error:   "INTERNAL_ERROR",
		Message: "an unexpected error occurred",
	})
}

func (c *OrderController) writeValidationError(w http.ResponseWriter, message string, details ...apperrors.ValidationDetail) {
	c.writeJSON(w, http.StatusBadRequest, errorResponse{
		Error:   "VALIDATION_ERROR",
		Message: message,
		Details: details,
	})
}

func (c *OrderController) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}
