package core

import "github.com/shopspring/decimal"

// Status is the derived stock classification of an item. It is never set
// directly by a client.
type Status string

const (
	StatusInStock    Status = "in_stock"
	StatusLowStock   Status = "low_stock"
	StatusOutOfStock Status = "out_of_stock"
)

// DeriveStatus classifies a stock level against its minimum threshold.
// It is a pure function: callers re-derive after every stock change.
func DeriveStatus(current, minimum decimal.Decimal) Status {
	switch {
	case current.LessThanOrEqual(decimal.Zero):
		return StatusOutOfStock
	case current.LessThanOrEqual(minimum):
		return StatusLowStock
	default:
		return StatusInStock
	}
}
