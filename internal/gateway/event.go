package gateway

import (
	"encoding/json"

	"github.com/CenterForCreators/cfc-nft-shared-mint-backend/internal/domain"
)

// EventKind names the confirmation path an event belongs to. Both paths share
// one webhook endpoint and are split by this explicit field, carried in the
// payload's correlation metadata, never inferred from the payload shape.
type EventKind string

const (
	KindOfferCreated EventKind = "offer_created"
	KindPurchase     EventKind = "purchase"
)

// Event is a validated confirmation notification. The channel delivering it
// is untrusted and retry-prone: events may be duplicated, reordered or
// malformed, and everything downstream treats them accordingly.
type Event struct {
	Kind            EventKind
	CorrelationID   string
	Signed          bool
	Dispatched      bool
	TxID            string
	Buyer           string
	ListingID       string
	OfferIndex      string
	Currency        domain.Currency
	DeliveredAmount json.RawMessage
}

// Confirmed reports whether the gateway attests a signed and successfully
// dispatched transaction. Anything else is noise.
func (e Event) Confirmed() bool {
	return e.Signed && e.Dispatched
}

type webhookBody struct {
	CorrelationID    string          `json:"correlation_id"`
	Signed           bool            `json:"signed"`
	DispatchedResult string          `json:"dispatched_result"`
	TxID             string          `json:"txid"`
	Account          string          `json:"account"`
	DeliveredAmount  json.RawMessage `json:"delivered_amount"`
	CustomMeta       Meta            `json:"custom_meta"`
}

// dispatchedSuccess is the ledger result code for a successfully applied
// transaction.
const dispatchedSuccess = "tesSUCCESS"

// ParseEvent validates a raw webhook body into an Event. Required fields
// (kind, listing id, correlation id) are checked here, before any domain
// logic runs; a body that fails validation yields domain.ErrInvalidEvent.
func ParseEvent(body []byte) (Event, error) {
	var wb webhookBody
	if err := json.Unmarshal(body, &wb); err != nil {
		return Event{}, domain.ErrInvalidEvent
	}

	kind := wb.CustomMeta.Kind
	if kind != KindOfferCreated && kind != KindPurchase {
		return Event{}, domain.ErrInvalidEvent
	}
	if wb.CustomMeta.ListingID == "" {
		return Event{}, domain.ErrInvalidEvent
	}
	if wb.CorrelationID == "" {
		return Event{}, domain.ErrInvalidEvent
	}

	return Event{
		Kind:            kind,
		CorrelationID:   wb.CorrelationID,
		Signed:          wb.Signed,
		Dispatched:      wb.DispatchedResult == dispatchedSuccess,
		TxID:            wb.TxID,
		Buyer:           wb.Account,
		ListingID:       wb.CustomMeta.ListingID,
		OfferIndex:      wb.CustomMeta.OfferIndex,
		Currency:        domain.Currency(wb.CustomMeta.Currency),
		DeliveredAmount: wb.DeliveredAmount,
	}, nil
}
