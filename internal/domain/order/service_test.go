package order

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/evermore-storefront/internal/pkg/logger"
)

func seed(t *testing.T, repo *MemoryRepository, email string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, repo.Create(context.Background(), &Order{
			OrderNumber:    fmt.Sprintf("ORD-20240101-%08d", i),
			IdempotencyKey: fmt.Sprintf("%s-%d", email, i),
			Email:          email,
			Items:          []OrderItem{{ProductID: "m1", Quantity: 1}},
		}))
	}
}

func TestService_GetOrderByNumber(t *testing.T) {
	repo := NewMemoryRepository()
	seed(t, repo, "a@example.com", 1)
	svc := NewService(repo, logger.Discard())

	o, err := svc.GetOrderByNumber(context.Background(), "ORD-20240101-00000000")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", o.Email)
	assert.Len(t, o.Items, 1)

	_, err = svc.GetOrderByNumber(context.Background(), "ORD-missing")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestService_GetUserOrders(t *testing.T) {
	repo := NewMemoryRepository()
	seed(t, repo, "a@example.com", 5)
	seed(t, repo, "b@example.com", 1)
	svc := NewService(repo, logger.Discard())

	resp, err := svc.GetUserOrders(context.Background(), "a@example.com", OrderListRequest{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, resp.Orders, 2)
	assert.Equal(t, int64(5), resp.Pagination.Total)
	assert.Equal(t, 3, resp.Pagination.TotalPages)
	assert.True(t, resp.Pagination.HasNext)
	assert.False(t, resp.Pagination.HasPrev)
	assert.Equal(t, "ORD-20240101-00000004", resp.Orders[0].OrderNumber)

	resp, err = svc.GetUserOrders(context.Background(), "a@example.com", OrderListRequest{Page: 3, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, resp.Orders, 1)
	assert.False(t, resp.Pagination.HasNext)

	resp, err = svc.GetUserOrders(context.Background(), "nobody@example.com", OrderListRequest{})
	require.NoError(t, err)
	assert.Empty(t, resp.Orders)
	assert.Equal(t, 20, resp.Pagination.Limit)
}

func TestMemoryRepository_RejectsDuplicateKey(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &Order{OrderNumber: "A", IdempotencyKey: "k"}))
	err := repo.Create(ctx, &Order{OrderNumber: "B", IdempotencyKey: "k"})
	assert.ErrorIs(t, err, ErrDuplicateOrder)

	found, err := repo.FindByIdempotencyKey(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "A", found.OrderNumber)
}
