// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB, logger *logrus.Logger) *Migration {
	return &Migration{
		db:     db,
		logger: logger,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	m.logger.Info("🔄 Running database auto-migrations...")

	// Dependency order
	models := []interface{}{
		&product.Product{},

		&cart.Cart{},
		&cart.CartItem{},

		&order.Order{},
		&order.OrderItem{},
	}

	for _, model := range models {
		m.logger.Debugf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	m.logger.Info("✅ Database auto-migrations completed successfully")
	return nil
}

// CreateIndexes creates the indexes gorm tags cannot express
func (m *Migration) CreateIndexes() error {
	m.logger.Info("🔄 Creating additional database indexes...")

	indexes := []string{
		// One active cart per owner
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_carts_active_owner ON carts(owner_id) WHERE status = 'active' AND owner_id IS NOT NULL",
		"CREATE INDEX IF NOT EXISTS idx_carts_status_updated ON carts(status, updated_at)",

		"CREATE INDEX IF NOT EXISTS idx_cart_items_cart_quantity ON cart_items(cart_id, quantity)",

		"CREATE INDEX IF NOT EXISTS idx_orders_owner_created ON orders(owner_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at DESC)",

		"CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id)",

		"CREATE INDEX IF NOT EXISTS idx_products_active ON products(is_active)",
	}

	for _, stmt := range indexes {
		if err := m.db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create index: %s: %w", stmt, err)
		}
	}

	m.logger.Info("✅ Database indexes created successfully")
	return nil
}

// SeedInitialData seeds catalog entries for local development
func (m *Migration) SeedInitialData() error {
	m.logger.Info("🌱 Seeding initial data...")

	if err := m.seedTestProducts(); err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}

	m.logger.Info("✅ Initial data seeding completed")
	return nil
}

func (m *Migration) seedTestProducts() error {
	var productCount int64
	if err := m.db.Model(&product.Product{}).Count(&productCount).Error; err != nil {
		return err
	}
	if productCount >= 3 {
		m.logger.Info("⏭️ Test products already exist")
		return nil
	}

	testProducts := []product.Product{
		{
			SKU:            "PLANT-TEST-001",
			Name:           "Monstera Deliciosa",
			Description:    "Large split-leaf tropical plant.",
			Includes:       "Nursery pot",
			Price:          3499,
			PriceReference: "price_test_monstera",
			IsActive:       true,
		},
		{
			SKU:            "PLANT-TEST-002",
			Name:           "Snake Plant",
			Description:    "Hardy upright plant, tolerates low light.",
			Includes:       "Ceramic pot",
			Price:          2499,
			PriceReference: "price_test_snake",
			IsActive:       true,
		},
		{
			SKU:            "PLANT-TEST-003",
			Name:           "Pothos Cutting",
			Description:    "Rooted cutting ready for soil.",
			Price:          500,
			PriceReference: "price_test_pothos",
			IsActive:       true,
		},
	}

	for _, prod := range testProducts {
		var existing product.Product
		if err := m.db.Where("sku = ?", prod.SKU).First(&existing).Error; err == nil {
			m.logger.Infof("⏭️ Product already exists: %s", prod.Name)
			continue
		}
		if err := m.db.Create(&prod).Error; err != nil {
			m.logger.Warnf("⚠️ Failed to create test product %s: %v", prod.SKU, err)
			continue
		}
		m.logger.Infof("✅ Created test product: %s", prod.Name)
	}

	return nil
}

// GetTableInfo logs row counts of the managed tables
func (m *Migration) GetTableInfo() error {
	tables := []string{"products", "carts", "cart_items", "orders", "order_items"}

	m.logger.Info("📊 Database Tables Information:")

	totalRecords := int64(0)
	for _, table := range tables {
		var count int64
		if err := m.db.Table(table).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to count %s: %w", table, err)
		}
		totalRecords += count
		m.logger.Infof("%-15s | %d records", table, count)
	}

	m.logger.Infof("📈 Total records across all tables: %d", totalRecords)
	return nil
}
