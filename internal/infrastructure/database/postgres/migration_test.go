package postgres_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/infrastructure/database/postgres"
	"github.com/your-org/storefront-backend/internal/pkg/logger"
	"github.com/your-org/storefront-backend/internal/pkg/testdb"
)

func TestSeedInitialData_Idempotent(t *testing.T) {
	db := testdb.New(t)
	migration := postgres.NewMigration(db, logger.Discard())

	require.NoError(t, migration.SeedInitialData())
	require.NoError(t, migration.SeedInitialData())

	var products []product.Product
	require.NoError(t, db.Find(&products).Error)
	assert.Len(t, products, 3)
	for _, p := range products {
		assert.NotEmpty(t, p.PriceReference, p.SKU)
	}
}

func TestRunAutoMigrations_Repeatable(t *testing.T) {
	db := testdb.New(t)
	migration := postgres.NewMigration(db, logger.Discard())

	assert.NoError(t, migration.RunAutoMigrations())
	assert.NoError(t, migration.CreateIndexes())
}
