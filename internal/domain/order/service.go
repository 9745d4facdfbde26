// internal/domain/order/service.go
package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Service handles order history lookups
type Service struct {
	repo Repository
	log  *logrus.Logger
}

// NewService creates a new order service
func NewService(repo Repository, log *logrus.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
	}
}

// OrderListRequest represents order list query parameters
type OrderListRequest struct {
	Page  int `form:"page,default=1"`
	Limit int `form:"limit,default=20"`
}

// OrderResponse represents order response with pagination
type OrderResponse struct {
	Orders     []Order    `json:"orders"`
	Pagination Pagination `json:"pagination"`
}

// Pagination represents pagination information
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// GetOrderByNumber retrieves a single order by order number
func (s *Service) GetOrderByNumber(ctx context.Context, orderNumber string) (*Order, error) {
	order, err := s.repo.FindByNumber(ctx, orderNumber)
	if err != nil {
		if !errors.Is(err, ErrOrderNotFound) {
			s.log.WithError(err).WithField("order_number", orderNumber).Error("Failed to load order")
		}
		return nil, err
	}
	return order, nil
}

// GetUserOrders retrieves the orders placed with email
func (s *Service) GetUserOrders(ctx context.Context, email string, req OrderListRequest) (*OrderResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}

	offset := (req.Page - 1) * req.Limit
	orders, total, err := s.repo.ListByEmail(ctx, email, offset, req.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	return &OrderResponse{
		Orders: orders,
		Pagination: Pagination{
			Page:       req.Page,
			Limit:      req.Limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    req.Page < totalPages,
			HasPrev:    req.Page > 1,
		},
	}, nil
}
