package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/CenterForCreators/cfc-nft-shared-mint-backend/internal/cache"
	"github.com/CenterForCreators/cfc-nft-shared-mint-backend/internal/clock"
	"github.com/CenterForCreators/cfc-nft-shared-mint-backend/internal/domain"
)

type CatalogRepository interface {
	CreateListing(ctx context.Context, listing domain.Listing) error
	GetListing(ctx context.Context, id string) (domain.Listing, error)
	SetDelisted(ctx context.Context, id string, delisted bool) error
	// ListPublic returns minted, non-delisted listings with inventory left.
	ListPublic(ctx context.Context) ([]domain.Listing, error)
}

// CatalogService serves the public catalog through the snapshot cache and
// applies listing mutations, each of which invalidates the snapshot.
type CatalogService struct {
	repo     CatalogRepository
	snapshot *cache.Snapshot
	clock    clock.Clock
	logger   *zap.Logger
}

func NewCatalogService(repo CatalogRepository, snapshot *cache.Snapshot, clk clock.Clock, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		repo:     repo,
		snapshot: snapshot,
		clock:    clk,
		logger:   logger,
	}
}

type listingView struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	AssetID   string    `json:"asset_id"`
	PriceXRP  *string   `json:"price_xrp,omitempty"`
	PriceCFC  *string   `json:"price_issued,omitempty"`
	Quantity  int       `json:"quantity"`
	Sold      int       `json:"sold"`
	CreatedAt time.Time `json:"created_at"`
}

// Catalog returns the public catalog rendered as JSON. The payload comes out
// of the snapshot cache while fresh, so repeat reads inside the TTL are
// byte-identical.
func (s *CatalogService) Catalog(ctx context.Context) ([]byte, error) {
	return s.snapshot.Get(ctx, func(fetchCtx context.Context) ([]byte, error) {
		listings, err := s.repo.ListPublic(fetchCtx)
		if err != nil {
			return nil, fmt.Errorf("list catalog: %w", err)
		}

		views := make([]listingView, 0, len(listings))
		for _, l := range listings {
			views = append(views, listingView{
				ID:        l.ID,
				Title:     l.Title,
				AssetID:   l.AssetID,
				PriceXRP:  priceString(l.Prices.XRP),
				PriceCFC:  priceString(l.Prices.Issued),
				Quantity:  l.Quantity,
				Sold:      l.Sold,
				CreatedAt: l.CreatedAt,
			})
		}
		return json.Marshal(views)
	})
}

// Invalidate drops the catalog snapshot. Settlement calls this after a
// successful decrement so the next read reflects the new inventory.
func (s *CatalogService) Invalidate() {
	s.snapshot.Invalidate()
}

func (s *CatalogService) Listing(ctx context.Context, id string) (domain.Listing, error) {
	if id == "" {
		return domain.Listing{}, domain.ErrInvalidID
	}
	return s.repo.GetListing(ctx, id)
}

type CreateListingInput struct {
	Title       string
	AssetID     string
	PriceXRP    *decimal.Decimal
	PriceIssued *decimal.Decimal
	Quantity    int
}

func (s *CatalogService) CreateListing(ctx context.Context, in CreateListingInput) (domain.Listing, error) {
	if in.Title == "" {
		return domain.Listing{}, domain.ErrTitleRequired
	}
	if in.Quantity <= 0 {
		return domain.Listing{}, domain.ErrInvalidQuantity
	}
	if in.PriceXRP == nil && in.PriceIssued == nil {
		return domain.Listing{}, domain.ErrInvalidPrice
	}
	if in.PriceXRP != nil && !in.PriceXRP.IsPositive() {
		return domain.Listing{}, domain.ErrInvalidPrice
	}
	if in.PriceIssued != nil && !in.PriceIssued.IsPositive() {
		return domain.Listing{}, domain.ErrInvalidPrice
	}

	listing := domain.Listing{
		ID:        uuid.NewString(),
		Title:     in.Title,
		AssetID:   in.AssetID,
		Prices:    domain.PriceSet{XRP: in.PriceXRP, Issued: in.PriceIssued},
		Quantity:  in.Quantity,
		Minted:    in.AssetID != "",
		CreatedAt: s.clock.Now(),
	}

	if err := s.repo.CreateListing(ctx, listing); err != nil {
		return domain.Listing{}, err
	}
	s.snapshot.Invalidate()

	s.logger.Info("listing created",
		zap.String("listing_id", listing.ID),
		zap.Int("quantity", listing.Quantity),
	)
	return listing, nil
}

func (s *CatalogService) SetDelisted(ctx context.Context, id string, delisted bool) error {
	if id == "" {
		return domain.ErrInvalidID
	}
	if err := s.repo.SetDelisted(ctx, id, delisted); err != nil {
		return err
	}
	s.snapshot.Invalidate()

	s.logger.Info("listing delist toggled",
		zap.String("listing_id", id),
		zap.Bool("delisted", delisted),
	)
	return nil
}

func priceString(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}
