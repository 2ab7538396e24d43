package order_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/pkg/apperror"
	"github.com/your-org/storefront-backend/internal/pkg/testdb"
)

func TestGetBySessionID_NotFound(t *testing.T) {
	f := newOrderFixture(t)

	_, err := f.service.GetBySessionID(context.Background(), "cs_missing")
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	_, err = f.service.GetBySessionID(context.Background(), " ")
	assert.Equal(t, apperror.KindInvalidRequest, apperror.KindOf(err))
}

func TestGetByCustomerFacingID(t *testing.T) {
	f := newOrderFixture(t)
	f.fillCart(t, "C1", 250, 4)

	result, err := f.service.Fulfill(context.Background(), completedSession("cs_1", "C1"), nil)
	require.NoError(t, err)

	found, err := f.service.GetByCustomerFacingID(context.Background(), result.Order.CustomerFacingID)
	require.NoError(t, err)
	assert.Equal(t, "cs_1", found.GatewaySessionID)
	assert.Equal(t, int64(1000), found.Subtotal())
}

func TestListByOwner_Paginates(t *testing.T) {
	f := newOrderFixture(t)
	owner := uint(7)
	other := uint(8)

	for i := 0; i < 3; i++ {
		require.NoError(t, f.db.Create(&order.Order{
			CustomerFacingID: fmt.Sprintf("ORDER-00000%d", i),
			GatewaySessionID: fmt.Sprintf("cs_%d", i),
			OwnerID:          &owner,
			CartID:           fmt.Sprintf("C%d", i),
			TotalPrice:       100,
		}).Error)
	}
	require.NoError(t, f.db.Create(&order.Order{
		CustomerFacingID: "ORDER-999999", GatewaySessionID: "cs_other", OwnerID: &other, CartID: "CX", TotalPrice: 100,
	}).Error)

	page, err := f.service.ListByOwner(context.Background(), owner, &order.OrderListRequest{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page.Orders, 2)
	assert.Equal(t, int64(3), page.Pagination.Total)
	assert.Equal(t, 2, page.Pagination.TotalPages)
	assert.True(t, page.Pagination.HasNext)
	assert.False(t, page.Pagination.HasPrev)

	page, err = f.service.ListByOwner(context.Background(), owner, &order.OrderListRequest{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page.Orders, 1)
	assert.False(t, page.Pagination.HasNext)
	assert.True(t, page.Pagination.HasPrev)
}

func TestQueries_StorageUnavailable(t *testing.T) {
	f := newOrderFixture(t)
	testdb.Close(t, f.db)

	_, err := f.service.GetBySessionID(context.Background(), "cs_1")
	assert.Equal(t, apperror.KindStorageUnavailable, apperror.KindOf(err))

	_, err = f.service.ListByOwner(context.Background(), 1, &order.OrderListRequest{})
	assert.Equal(t, apperror.KindStorageUnavailable, apperror.KindOf(err))
}
