package storage

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/presencematic/whatsapp-orders/internal/models"
)

// DatabaseOrderSink mirrors every submitted order into the orders table
type DatabaseOrderSink struct {
	db *gorm.DB
}

// NewDatabaseOrderSink creates a sink backed by an already migrated database
func NewDatabaseOrderSink(db *gorm.DB) *DatabaseOrderSink {
	return &DatabaseOrderSink{db: db}
}

// Append inserts the order as a new row
func (d *DatabaseOrderSink) Append(ctx context.Context, record models.OrderRecord) error {
	if err := d.db.WithContext(ctx).Create(models.OrderFromRecord(record)).Error; err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// Name identifies the sink in logs
func (d *DatabaseOrderSink) Name() string {
	return "database"
}

// OrdersBySender lists a sender's mirrored orders, newest first
func (d *DatabaseOrderSink) OrdersBySender(ctx context.Context, sender string) ([]*models.Order, error) {
	var orders []*models.Order
	err := d.db.WithContext(ctx).
		Where("sender = ?", sender).
		Order("submitted_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	return orders, nil
}
