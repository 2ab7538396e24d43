package product_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/pkg/apperror"
	"github.com/your-org/storefront-backend/internal/pkg/testdb"
	"gorm.io/gorm"
)

func seed(t *testing.T, db *gorm.DB, sku, name, ref string, active bool) *product.Product {
	t.Helper()
	p := &product.Product{SKU: sku, Name: name, Price: 1000, PriceReference: ref, IsActive: true}
	require.NoError(t, db.Create(p).Error)
	if !active {
		require.NoError(t, db.Model(p).Update("is_active", false).Error)
	}
	return p
}

func TestGetProducts_PaginatesActiveOnly(t *testing.T) {
	db := testdb.New(t)
	svc := product.NewService(db)
	seed(t, db, "A", "Aloe", "price_a", true)
	seed(t, db, "B", "Begonia", "price_b", true)
	seed(t, db, "C", "Cactus", "price_c", true)
	seed(t, db, "D", "Dracaena", "price_d", false)

	res, err := svc.GetProducts(context.Background(), &product.ProductListRequest{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, res.Products, 2)
	assert.Equal(t, int64(3), res.Pagination.Total)
	assert.Equal(t, 2, res.Pagination.TotalPages)
	assert.True(t, res.Pagination.HasNext)

	res, err = svc.GetProducts(context.Background(), &product.ProductListRequest{Page: 2, Limit: 2})
	require.NoError(t, err)
	require.Len(t, res.Products, 1)
	assert.Equal(t, "Cactus", res.Products[0].Name)
	assert.True(t, res.Pagination.HasPrev)
}

func TestGetProducts_Search(t *testing.T) {
	db := testdb.New(t)
	svc := product.NewService(db)
	seed(t, db, "A", "Aloe Vera", "price_a", true)
	seed(t, db, "B", "Begonia", "price_b", true)

	res, err := svc.GetProducts(context.Background(), &product.ProductListRequest{Search: "aloe"})
	require.NoError(t, err)
	require.Len(t, res.Products, 1)
	assert.Equal(t, "Aloe Vera", res.Products[0].Name)
	assert.Equal(t, 20, res.Pagination.Limit)
}

func TestGetActiveProduct(t *testing.T) {
	db := testdb.New(t)
	svc := product.NewService(db)
	live := seed(t, db, "A", "Aloe", "price_a", true)
	gone := seed(t, db, "B", "Begonia", "price_b", false)

	got, err := svc.GetActiveProduct(context.Background(), live.ID)
	require.NoError(t, err)
	assert.Equal(t, "Aloe", got.Name)

	_, err = svc.GetActiveProduct(context.Background(), gone.ID)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestLookupPriceReferences_OmitsUnpriced(t *testing.T) {
	db := testdb.New(t)
	svc := product.NewService(db)
	priced := seed(t, db, "A", "Aloe", "price_a", true)
	bare := seed(t, db, "B", "Begonia", "", true)

	refs, err := svc.LookupPriceReferences(context.Background(), []uint{priced.ID, bare.ID, 9999})
	require.NoError(t, err)
	assert.Equal(t, map[uint]string{priced.ID: "price_a"}, refs)

	refs, err = svc.LookupPriceReferences(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, refs)
}

func TestLookupPriceReferences_StorageUnavailable(t *testing.T) {
	db := testdb.New(t)
	svc := product.NewService(db)
	testdb.Close(t, db)

	_, err := svc.LookupPriceReferences(context.Background(), []uint{1})
	assert.Equal(t, apperror.KindStorageUnavailable, apperror.KindOf(err))
}
