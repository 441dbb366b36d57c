package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/CenterForCreators/cfc-nft-shared-mint-backend/internal/clock"
	"github.com/CenterForCreators/cfc-nft-shared-mint-backend/internal/domain"
	"github.com/CenterForCreators/cfc-nft-shared-mint-backend/internal/gateway"
	"github.com/CenterForCreators/cfc-nft-shared-mint-backend/internal/ledger"
)

// IssuedToken identifies the issued settlement token payloads are priced in.
type IssuedToken struct {
	Code   string
	Issuer string
}

type SigningGateway interface {
	SubmitPayload(ctx context.Context, p gateway.Payload) (gateway.Submitted, error)
}

type LedgerQuerier interface {
	SellOffers(ctx context.Context, assetID string) ([]ledger.OfferEntry, error)
	Transaction(ctx context.Context, txID string) (ledger.TxInfo, error)
}

type OfferRepository interface {
	GetListing(ctx context.Context, id string) (domain.Listing, error)
	// InsertOffer inserts an open offer; it reports false when an offer for
	// the same (listing, asset, currency) is already tracked.
	InsertOffer(ctx context.Context, offer domain.SaleOffer) (bool, error)
	FindOpenOffer(ctx context.Context, listingID string, currency domain.Currency) (*domain.SaleOffer, error)
}

// OfferService tracks the sale-offer lifecycle: it submits offer-creation
// payloads to the signing gateway and, once the gateway confirms the signed
// transaction, resolves the ledger-assigned offer index and records the
// offer as open.
type OfferService struct {
	repo    OfferRepository
	gateway SigningGateway
	ledger  LedgerQuerier
	clock   clock.Clock
	logger  *zap.Logger
	token   IssuedToken

	pollInterval time.Duration
	pollAttempts int
}

const (
	defaultPollInterval = 2 * time.Second
	defaultPollAttempts = 12
)

func NewOfferService(repo OfferRepository, gw SigningGateway, lq LedgerQuerier, clk clock.Clock, logger *zap.Logger, token IssuedToken, opts ...OfferServiceOption) *OfferService {
	svc := &OfferService{
		repo:         repo,
		gateway:      gw,
		ledger:       lq,
		clock:        clk,
		logger:       logger,
		token:        token,
		pollInterval: defaultPollInterval,
		pollAttempts: defaultPollAttempts,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type OfferServiceOption func(*OfferService)

// WithPollInterval overrides the delay between ledger offer-query attempts.
func WithPollInterval(d time.Duration) OfferServiceOption {
	return func(s *OfferService) {
		if d >= 0 {
			s.pollInterval = d
		}
	}
}

// WithPollAttempts overrides the number of ledger offer-query attempts.
func WithPollAttempts(n int) OfferServiceOption {
	return func(s *OfferService) {
		if n > 0 {
			s.pollAttempts = n
		}
	}
}

// CreateOffer submits a sell-offer payload for the listing's asset and
// returns the signing link. It is fire-and-forget: the offer row is only
// written once the gateway confirms the signed transaction (ConfirmOffer).
func (s *OfferService) CreateOffer(ctx context.Context, listingID string, currency domain.Currency) (string, error) {
	if !currency.Valid() {
		return "", domain.ErrUnsupportedCurrency
	}

	listing, err := s.repo.GetListing(ctx, listingID)
	if err != nil {
		return "", err
	}
	if !listing.Minted || listing.AssetID == "" {
		return "", domain.ErrAssetNotMinted
	}

	price, err := listing.Prices.For(currency)
	if err != nil {
		return "", err
	}

	sub, err := s.gateway.SubmitPayload(ctx, gateway.Payload{
		TxType: "NFTokenCreateOffer",
		Fields: map[string]any{
			"NFTokenID": listing.AssetID,
			"Amount":    s.amountField(price, currency),
			"Flags":     tfSellToken,
		},
		Meta: gateway.Meta{
			Kind:      gateway.KindOfferCreated,
			ListingID: listing.ID,
			Currency:  string(currency),
		},
	})
	if err != nil {
		return "", fmt.Errorf("submit offer payload: %w", err)
	}

	s.logger.Info("offer payload submitted",
		zap.String("listing_id", listing.ID),
		zap.String("currency", string(currency)),
		zap.String("correlation_id", sub.CorrelationID),
	)
	return sub.SigningLink, nil
}

// ConfirmOffer resolves the ledger-assigned offer index for a confirmed
// offer-creation event and records the open offer. The index is read from
// the transaction's affected-state diff when available; otherwise the
// ledger's offer query is polled at a fixed interval until the offer appears
// or attempts run out. Duplicate delivery is a no-op.
func (s *OfferService) ConfirmOffer(ctx context.Context, ev gateway.Event) error {
	if !ev.Currency.Valid() {
		s.logger.Warn("offer confirmation without valid currency",
			zap.String("listing_id", ev.ListingID),
			zap.String("correlation_id", ev.CorrelationID),
		)
		return nil
	}

	listing, err := s.repo.GetListing(ctx, ev.ListingID)
	if err != nil {
		if err == domain.ErrListingNotFound || err == domain.ErrInvalidID {
			s.logger.Warn("offer confirmation for unknown listing", zap.String("listing_id", ev.ListingID))
			return nil
		}
		return err
	}

	index := s.offerIndexFromTx(ctx, ev.TxID)
	if index == "" {
		index, err = s.waitForOffer(ctx, listing.AssetID, ev.Currency)
		if err != nil {
			return err
		}
	}

	created, err := s.repo.InsertOffer(ctx, domain.SaleOffer{
		ID:         uuid.NewString(),
		ListingID:  listing.ID,
		AssetID:    listing.AssetID,
		OfferIndex: index,
		Currency:   ev.Currency,
		Status:     domain.OfferStatusOpen,
		CreatedAt:  s.clock.Now(),
	})
	if err != nil {
		return err
	}

	if created {
		s.logger.Info("sale offer recorded",
			zap.String("listing_id", listing.ID),
			zap.String("offer_index", index),
			zap.String("currency", string(ev.Currency)),
		)
	} else {
		s.logger.Info("sale offer already tracked",
			zap.String("listing_id", listing.ID),
			zap.String("currency", string(ev.Currency)),
		)
	}
	return nil
}

func (s *OfferService) offerIndexFromTx(ctx context.Context, txID string) string {
	if txID == "" {
		return ""
	}
	info, err := s.ledger.Transaction(ctx, txID)
	if err != nil {
		// Fall through to polling; the diff is an optimization, not the
		// only source of the index.
		s.logger.Warn("transaction lookup failed", zap.String("txid", txID), zap.Error(err))
		return ""
	}
	index, ok := info.CreatedOfferIndex()
	if !ok {
		return ""
	}
	return index
}

// waitForOffer polls the ledger until a sell offer in the wanted currency
// appears for the asset. The wait is bounded: exhausting attempts returns
// ErrOfferNotObserved so the caller leaves no offer row behind.
func (s *OfferService) waitForOffer(ctx context.Context, assetID string, currency domain.Currency) (string, error) {
	for attempt := 0; attempt < s.pollAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(s.pollInterval):
			}
		}

		offers, err := s.ledger.SellOffers(ctx, assetID)
		if err != nil {
			return "", fmt.Errorf("query sell offers: %w", err)
		}
		for _, offer := range offers {
			c, err := domain.ClassifyAmount(offer.Amount)
			if err != nil {
				continue
			}
			if c == currency && offer.Index != "" {
				return offer.Index, nil
			}
		}
	}
	return "", domain.ErrOfferNotObserved
}

// tfSellToken marks an offer as sell-side on the ledger.
const tfSellToken = 1

const dropsPerNative = 1_000_000

// amountField renders a price as the ledger amount shape for its currency:
// native prices become a bare drops string, issued prices a structured
// currency/issuer/value object.
func (s *OfferService) amountField(price decimal.Decimal, currency domain.Currency) any {
	return amountField(price, currency, s.token)
}

func amountField(price decimal.Decimal, currency domain.Currency, token IssuedToken) any {
	if currency == domain.CurrencyXRP {
		return price.Mul(decimal.NewFromInt(dropsPerNative)).Truncate(0).String()
	}
	return map[string]any{
		"currency": token.Code,
		"issuer":   token.Issuer,
		"value":    price.String(),
	}
}
