package app

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/CenterForCreators/cfc-nft-shared-mint-backend/internal/cache"
	"github.com/CenterForCreators/cfc-nft-shared-mint-backend/internal/clock"
	"github.com/CenterForCreators/cfc-nft-shared-mint-backend/internal/domain"
)

func TestCatalogService(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ten := decimal.NewFromInt(10)

	newService := func(repo *fakeCatalogRepo) *CatalogService {
		clk := clock.NewFixed(now)
		return NewCatalogService(repo, cache.NewSnapshot(10*time.Second, clk), clk, zap.NewNop())
	}

	t.Run("catalog reads are cached and byte-identical", func(t *testing.T) {
		repo := &fakeCatalogRepo{listings: []domain.Listing{
			{ID: "listing-1", Title: "Print #1", AssetID: "ASSET1", Prices: domain.PriceSet{XRP: &ten}, Quantity: 2, Minted: true, CreatedAt: now},
		}}
		svc := newService(repo)

		first, err := svc.Catalog(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		second, err := svc.Catalog(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if repo.listCalls != 1 {
			t.Fatalf("expected 1 store read, got %d", repo.listCalls)
		}
		if !bytes.Equal(first, second) {
			t.Fatalf("expected byte-identical payloads")
		}
	})

	t.Run("mutation invalidates the snapshot", func(t *testing.T) {
		repo := &fakeCatalogRepo{}
		svc := newService(repo)

		if _, err := svc.Catalog(context.Background()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if _, err := svc.CreateListing(context.Background(), CreateListingInput{
			Title:    "Print #2",
			PriceXRP: &ten,
			Quantity: 1,
		}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if _, err := svc.Catalog(context.Background()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if repo.listCalls != 2 {
			t.Fatalf("expected read after mutation to hit the store, got %d reads", repo.listCalls)
		}
	})

	t.Run("delist invalidates the snapshot", func(t *testing.T) {
		repo := &fakeCatalogRepo{}
		svc := newService(repo)

		if _, err := svc.Catalog(context.Background()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if err := svc.SetDelisted(context.Background(), "listing-1", true); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if _, err := svc.Catalog(context.Background()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if repo.listCalls != 2 {
			t.Fatalf("expected read after delist to hit the store, got %d reads", repo.listCalls)
		}
	})

	t.Run("create listing validations", func(t *testing.T) {
		svc := newService(&fakeCatalogRepo{})

		if _, err := svc.CreateListing(context.Background(), CreateListingInput{PriceXRP: &ten, Quantity: 1}); err != domain.ErrTitleRequired {
			t.Fatalf("expected ErrTitleRequired, got %v", err)
		}
		if _, err := svc.CreateListing(context.Background(), CreateListingInput{Title: "x", PriceXRP: &ten}); err != domain.ErrInvalidQuantity {
			t.Fatalf("expected ErrInvalidQuantity, got %v", err)
		}
		if _, err := svc.CreateListing(context.Background(), CreateListingInput{Title: "x", Quantity: 1}); err != domain.ErrInvalidPrice {
			t.Fatalf("expected ErrInvalidPrice, got %v", err)
		}
		zero := decimal.Zero
		if _, err := svc.CreateListing(context.Background(), CreateListingInput{Title: "x", Quantity: 1, PriceXRP: &zero}); err != domain.ErrInvalidPrice {
			t.Fatalf("expected ErrInvalidPrice for zero price, got %v", err)
		}
	})

	t.Run("listing with asset id is minted", func(t *testing.T) {
		repo := &fakeCatalogRepo{}
		svc := newService(repo)

		created, err := svc.CreateListing(context.Background(), CreateListingInput{
			Title:    "Print #3",
			AssetID:  "ASSET3",
			PriceXRP: &ten,
			Quantity: 5,
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !created.Minted {
			t.Fatalf("expected minted listing")
		}
		if created.ID == "" {
			t.Fatalf("expected listing id assigned")
		}
	})
}

type fakeCatalogRepo struct {
	listings  []domain.Listing
	listCalls int
	created   []domain.Listing
}

func (f *fakeCatalogRepo) CreateListing(_ context.Context, l domain.Listing) error {
	f.created = append(f.created, l)
	return nil
}

func (f *fakeCatalogRepo) GetListing(_ context.Context, id string) (domain.Listing, error) {
	for _, l := range f.listings {
		if l.ID == id {
			return l, nil
		}
	}
	return domain.Listing{}, domain.ErrListingNotFound
}

func (f *fakeCatalogRepo) SetDelisted(_ context.Context, _ string, _ bool) error {
	return nil
}

func (f *fakeCatalogRepo) ListPublic(_ context.Context) ([]domain.Listing, error) {
	f.listCalls++
	return f.listings, nil
}
