package domain

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Currency is a settlement denomination a listing can be priced and paid in.
type Currency string

const (
	// CurrencyXRP is the ledger's native currency; on the wire it travels as
	// a bare drops value.
	CurrencyXRP Currency = "XRP"
	// CurrencyIssued is the configured issued token; on the wire it travels
	// as a structured currency/issuer/value amount.
	CurrencyIssued Currency = "ISSUED"
)

func (c Currency) Valid() bool {
	return c == CurrencyXRP || c == CurrencyIssued
}

// ClassifyAmount derives the settlement currency from a ledger amount as
// delivered: issued amounts are JSON objects, native amounts a bare value.
func ClassifyAmount(raw json.RawMessage) (Currency, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", ErrInvalidEvent
	}
	if trimmed[0] == '{' {
		return CurrencyIssued, nil
	}
	return CurrencyXRP, nil
}

// PriceSet holds a listing's price per settlement currency. A nil entry means
// the listing is not sellable in that currency.
type PriceSet struct {
	XRP    *decimal.Decimal
	Issued *decimal.Decimal
}

// For resolves the price for a currency. Missing or non-positive prices are
// rejected so a zero-priced order can never be recorded.
func (p PriceSet) For(c Currency) (decimal.Decimal, error) {
	var price *decimal.Decimal
	switch c {
	case CurrencyXRP:
		price = p.XRP
	case CurrencyIssued:
		price = p.Issued
	default:
		return decimal.Decimal{}, ErrUnsupportedCurrency
	}
	if price == nil || !price.IsPositive() {
		return decimal.Decimal{}, ErrInvalidPrice
	}
	return *price, nil
}
