package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPaid            OrderStatus = "paid"
	OrderStatusRedeemRequested OrderStatus = "redeem_requested"
	OrderStatusFulfilled       OrderStatus = "fulfilled"
)

// Order is one completed purchase. CorrelationID and LedgerTxID are the
// external confirmation references: at least one is set, and each is unique
// across all orders when present. That uniqueness is the idempotency
// boundary for repeated confirmation delivery.
type Order struct {
	ID            string
	ListingID     string
	Buyer         string
	Price         decimal.Decimal
	Currency      Currency
	Status        OrderStatus
	CorrelationID *string
	LedgerTxID    *string
	CreatedAt     time.Time
}
