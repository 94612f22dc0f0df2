package models

import (
	"time"

	"gorm.io/gorm"
)

// OrderStatusPending is the status every new order row starts with
const OrderStatusPending = "Pending"

// TimestampLayout is the format used for the timestamp column of an order row
const TimestampLayout = "2006-01-02 15:04:05"

// OrderRecord is one completed order submission
type OrderRecord struct {
	Timestamp time.Time `json:"timestamp"`
	Sender    string    `json:"sender"`
	Items     string    `json:"items"`
	Address   string    `json:"address"`
	Status    string    `json:"status"`
}

// NewOrderRecord builds a pending order submitted at the given time
func NewOrderRecord(sender, items, address string, at time.Time) OrderRecord {
	return OrderRecord{
		Timestamp: at.Truncate(time.Second),
		Sender:    sender,
		Items:     items,
		Address:   address,
		Status:    OrderStatusPending,
	}
}

// Row returns the record as a spreadsheet row:
// [timestamp, sender, items, address, status]
func (o OrderRecord) Row() []interface{} {
	return []interface{}{
		o.Timestamp.Local().Format(TimestampLayout),
		o.Sender,
		o.Items,
		o.Address,
		o.Status,
	}
}

// Order is the database mirror of an OrderRecord
type Order struct {
	gorm.Model
	SubmittedAt time.Time `json:"submitted_at"`
	Sender      string    `json:"sender" gorm:"index"`
	Items       string    `json:"items"`
	Address     string    `json:"address"`
	Status      string    `json:"status" gorm:"default:Pending"`
}

// OrderFromRecord converts a record into its database row
func OrderFromRecord(r OrderRecord) *Order {
	return &Order{
		SubmittedAt: r.Timestamp,
		Sender:      r.Sender,
		Items:       r.Items,
		Address:     r.Address,
		Status:      r.Status,
	}
}
