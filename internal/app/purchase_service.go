package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/CenterForCreators/cfc-nft-shared-mint-backend/internal/domain"
	"github.com/CenterForCreators/cfc-nft-shared-mint-backend/internal/gateway"
)

// PurchaseService starts a purchase: it finds the open sale offer for the
// listing and hands the buyer a signing link for the accept-offer
// transaction. Settlement happens later, when the confirmation event lands.
type PurchaseService struct {
	repo    OfferRepository
	gateway SigningGateway
	logger  *zap.Logger
}

func NewPurchaseService(repo OfferRepository, gw SigningGateway, logger *zap.Logger) *PurchaseService {
	return &PurchaseService{
		repo:    repo,
		gateway: gw,
		logger:  logger,
	}
}

// InitiatePurchase returns a signing link for buying one unit of the listing
// in the given currency. ErrNoOpenOffer means the seller has to re-run
// listing setup before the item is buyable in that currency.
func (s *PurchaseService) InitiatePurchase(ctx context.Context, listingID string, currency domain.Currency) (string, error) {
	if !currency.Valid() {
		return "", domain.ErrUnsupportedCurrency
	}

	listing, err := s.repo.GetListing(ctx, listingID)
	if err != nil {
		return "", err
	}
	if listing.Delisted {
		return "", domain.ErrListingDelisted
	}
	if listing.Quantity <= 0 {
		return "", domain.ErrSoldOut
	}
	if _, err := listing.Prices.For(currency); err != nil {
		return "", err
	}

	offer, err := s.repo.FindOpenOffer(ctx, listing.ID, currency)
	if err != nil {
		return "", err
	}
	if offer == nil {
		return "", domain.ErrNoOpenOffer
	}

	sub, err := s.gateway.SubmitPayload(ctx, gateway.Payload{
		TxType: "NFTokenAcceptOffer",
		Fields: map[string]any{
			"NFTokenSellOffer": offer.OfferIndex,
		},
		Meta: gateway.Meta{
			Kind:       gateway.KindPurchase,
			ListingID:  listing.ID,
			OfferIndex: offer.OfferIndex,
			Currency:   string(currency),
		},
	})
	if err != nil {
		return "", fmt.Errorf("submit purchase payload: %w", err)
	}

	s.logger.Info("purchase payload submitted",
		zap.String("listing_id", listing.ID),
		zap.String("offer_index", offer.OfferIndex),
		zap.String("correlation_id", sub.CorrelationID),
	)
	return sub.SigningLink, nil
}
