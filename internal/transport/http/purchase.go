package http

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/CenterForCreators/cfc-nft-shared-mint-backend/internal/domain"
)

// OfferInitiator starts listing setup: a sell offer to sign.
type OfferInitiator interface {
	CreateOffer(ctx context.Context, listingID string, currency domain.Currency) (string, error)
}

// PurchaseInitiator starts a purchase: an accept-offer to sign.
type PurchaseInitiator interface {
	InitiatePurchase(ctx context.Context, listingID string, currency domain.Currency) (string, error)
}

type currencyRequest struct {
	Currency string `json:"currency"`
}

func (r currencyRequest) currency() domain.Currency {
	if r.Currency == "" {
		return domain.CurrencyXRP
	}
	return domain.Currency(r.Currency)
}

type signingLinkResponse struct {
	SigningLink string `json:"signing_link"`
}

// HandleInitiateListing submits a sell-offer payload and returns the signing
// link the owner follows to put the item on the ledger.
func HandleInitiateListing(svc OfferInitiator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req currencyRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		link, err := svc.CreateOffer(r.Context(), mux.Vars(r)["id"], req.currency())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusAccepted, signingLinkResponse{SigningLink: link})
	}
}

// HandleInitiatePurchase returns the signing link for buying one unit.
func HandleInitiatePurchase(svc PurchaseInitiator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req currencyRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		link, err := svc.InitiatePurchase(r.Context(), mux.Vars(r)["id"], req.currency())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusAccepted, signingLinkResponse{SigningLink: link})
	}
}
