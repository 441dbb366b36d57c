package domain

import "errors"

var (
	ErrListingNotFound     = errors.New("listing not found")
	ErrListingDelisted     = errors.New("listing delisted")
	ErrAssetNotMinted      = errors.New("listing asset not minted")
	ErrInvalidPrice        = errors.New("price missing or not positive")
	ErrInvalidQuantity     = errors.New("invalid quantity")
	ErrTitleRequired       = errors.New("listing title required")
	ErrUnsupportedCurrency = errors.New("unsupported settlement currency")
	ErrOfferNotObserved    = errors.New("offer not observed on ledger")
	ErrNoOpenOffer         = errors.New("no open offer for listing")
	ErrSoldOut             = errors.New("listing sold out")
	ErrDuplicateSettlement = errors.New("settlement already recorded")
	ErrInvalidEvent        = errors.New("invalid confirmation event")
	ErrInvalidID           = errors.New("invalid id")
)
