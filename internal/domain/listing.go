package domain

import "time"

// Listing is a sellable unit of limited inventory. Quantity is mutated only
// by settlement and never goes negative; removal is the soft Delisted flag,
// never a hard delete while orders reference the listing.
type Listing struct {
	ID        string
	Title     string
	AssetID   string
	Prices    PriceSet
	Quantity  int
	Sold      int
	Delisted  bool
	Minted    bool
	CreatedAt time.Time
}

// Purchasable reports whether the listing may appear in the public catalog.
func (l Listing) Purchasable() bool {
	return l.Minted && !l.Delisted && l.Quantity > 0
}
