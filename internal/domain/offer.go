package domain

import "time"

type OfferStatus string

const (
	OfferStatusOpen OfferStatus = "open"
	OfferStatusUsed OfferStatus = "used"
)

// SaleOffer is a ledger-tracked standing offer to sell one unit of an asset
// in a given currency. At most one offer is tracked per
// (listing, asset, currency); the ledger-assigned offer index is globally
// unique. An offer moves open -> used exactly once and is never reverted.
type SaleOffer struct {
	ID         string
	ListingID  string
	AssetID    string
	OfferIndex string
	Currency   Currency
	Status     OfferStatus
	CreatedAt  time.Time
}
