package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/CenterForCreators/cfc-nft-shared-mint-backend/internal/clock"
	"github.com/CenterForCreators/cfc-nft-shared-mint-backend/internal/domain"
	"github.com/CenterForCreators/cfc-nft-shared-mint-backend/internal/gateway"
)

type SettlementRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	// GetListingForUpdate takes an exclusive row lock on the listing,
	// serializing concurrent confirmations for it.
	GetListingForUpdate(ctx context.Context, id string) (domain.Listing, error)
	// InsertOrder returns domain.ErrDuplicateSettlement when either external
	// reference already exists; the constraint lives in the store so
	// concurrent duplicates cannot slip past it.
	InsertOrder(ctx context.Context, order domain.Order) error
	// DecrementListing takes one unit of inventory, guarded by quantity > 0
	// in the statement itself. It reports false when nothing was taken.
	DecrementListing(ctx context.Context, id string) (bool, error)
	MarkOfferUsed(ctx context.Context, offerIndex string) error
}

type OfferConfirmer interface {
	ConfirmOffer(ctx context.Context, ev gateway.Event) error
}

// CacheInvalidator drops the catalog snapshot after inventory moves.
type CacheInvalidator interface {
	Invalidate()
}

// SettlementService reconciles confirmation events against the store. Each
// distinct confirmed payment becomes exactly one order and exactly one unit
// of inventory, no matter how often or how concurrently the event is
// delivered.
type SettlementService struct {
	repo    SettlementRepository
	offers  OfferConfirmer
	catalog CacheInvalidator
	clock   clock.Clock
	logger  *zap.Logger
}

func NewSettlementService(repo SettlementRepository, offers OfferConfirmer, catalog CacheInvalidator, clk clock.Clock, logger *zap.Logger) *SettlementService {
	return &SettlementService{
		repo:    repo,
		offers:  offers,
		catalog: catalog,
		clock:   clk,
		logger:  logger,
	}
}

// HandleConfirmation consumes one confirmation event. Business rejections
// (duplicates, sold-out, unpriced currency, unknown listing) are logged and
// swallowed: the sender is untrusted and retry-driven, so silent discard is
// the correct answer for everything except a dependency failure, which is
// returned so the transport can ask the sender to retry.
func (s *SettlementService) HandleConfirmation(ctx context.Context, ev gateway.Event) error {
	if !ev.Confirmed() {
		s.logger.Info("confirmation discarded",
			zap.String("reason", "not signed and dispatched"),
			zap.String("correlation_id", ev.CorrelationID),
		)
		return nil
	}
	if ev.ListingID == "" {
		s.logger.Info("confirmation discarded",
			zap.String("reason", "no listing reference"),
			zap.String("correlation_id", ev.CorrelationID),
		)
		return nil
	}

	switch ev.Kind {
	case gateway.KindOfferCreated:
		return s.offers.ConfirmOffer(ctx, ev)
	case gateway.KindPurchase:
		return s.settlePurchase(ctx, ev)
	default:
		s.logger.Info("confirmation discarded",
			zap.String("reason", "unknown kind"),
			zap.String("kind", string(ev.Kind)),
		)
		return nil
	}
}

func (s *SettlementService) settlePurchase(ctx context.Context, ev gateway.Event) error {
	currency, err := domain.ClassifyAmount(ev.DeliveredAmount)
	if err != nil {
		s.logger.Info("purchase discarded",
			zap.String("reason", "unclassifiable delivered amount"),
			zap.String("listing_id", ev.ListingID),
			zap.String("correlation_id", ev.CorrelationID),
		)
		return nil
	}
	if ev.CorrelationID == "" && ev.TxID == "" {
		s.logger.Info("purchase discarded",
			zap.String("reason", "no external reference"),
			zap.String("listing_id", ev.ListingID),
		)
		return nil
	}

	err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		listing, err := s.repo.GetListingForUpdate(txCtx, ev.ListingID)
		if err != nil {
			return err
		}
		if listing.Quantity <= 0 {
			return domain.ErrSoldOut
		}

		price, err := listing.Prices.For(currency)
		if err != nil {
			return err
		}

		// The order insert must precede the decrement: it is the sole
		// idempotency gate, and inventory may only move once a new order
		// row exists.
		order := domain.Order{
			ID:            uuid.NewString(),
			ListingID:     listing.ID,
			Buyer:         ev.Buyer,
			Price:         price,
			Currency:      currency,
			Status:        domain.OrderStatusPaid,
			CorrelationID: optional(ev.CorrelationID),
			LedgerTxID:    optional(ev.TxID),
			CreatedAt:     s.clock.Now(),
		}
		if err := s.repo.InsertOrder(txCtx, order); err != nil {
			return err
		}

		taken, err := s.repo.DecrementListing(txCtx, listing.ID)
		if err != nil {
			return err
		}
		if !taken {
			return domain.ErrSoldOut
		}

		if ev.OfferIndex != "" {
			if err := s.repo.MarkOfferUsed(txCtx, ev.OfferIndex); err != nil {
				return err
			}
		}
		return nil
	})

	switch {
	case err == nil:
		s.catalog.Invalidate()
		s.logger.Info("purchase settled",
			zap.String("listing_id", ev.ListingID),
			zap.String("currency", string(currency)),
			zap.String("correlation_id", ev.CorrelationID),
			zap.String("txid", ev.TxID),
		)
		return nil
	case errors.Is(err, domain.ErrDuplicateSettlement):
		// Expected under duplicate delivery; logged distinctly so duplicate
		// rates stay observable.
		s.logger.Info("purchase already settled",
			zap.String("reason", "duplicate"),
			zap.String("listing_id", ev.ListingID),
			zap.String("correlation_id", ev.CorrelationID),
		)
		return nil
	case errors.Is(err, domain.ErrSoldOut),
		errors.Is(err, domain.ErrInvalidPrice),
		errors.Is(err, domain.ErrUnsupportedCurrency),
		errors.Is(err, domain.ErrListingNotFound),
		errors.Is(err, domain.ErrInvalidID):
		s.logger.Info("purchase discarded",
			zap.String("reason", err.Error()),
			zap.String("listing_id", ev.ListingID),
			zap.String("correlation_id", ev.CorrelationID),
		)
		return nil
	default:
		s.logger.Error("purchase settlement failed",
			zap.String("listing_id", ev.ListingID),
			zap.String("correlation_id", ev.CorrelationID),
			zap.Error(err),
		)
		return fmt.Errorf("settle purchase: %w", err)
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
