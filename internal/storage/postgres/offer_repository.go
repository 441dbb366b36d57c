package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/CenterForCreators/cfc-nft-shared-mint-backend/internal/domain"
)

type OfferRepository struct {
	db
}

func NewOfferRepository(pool *pgxpool.Pool) *OfferRepository {
	return &OfferRepository{db: db{pool: pool}}
}

func (r *OfferRepository) GetListing(ctx context.Context, id string) (domain.Listing, error) {
	const query = `SELECT ` + listingColumns + ` FROM listings WHERE id = $1`
	return scanListing(r.queryRow(ctx, query, id))
}

// InsertOffer records an open offer. The insert tolerates conflicts on both
// the (listing, asset, currency) triple and the offer index, so duplicate
// confirmation delivery is a no-op; it reports whether a row was written.
func (r *OfferRepository) InsertOffer(ctx context.Context, offer domain.SaleOffer) (bool, error) {
	const stmt = `
INSERT INTO sale_offers (id, listing_id, asset_id, offer_index, currency, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT DO NOTHING`

	tag, err := r.exec(ctx, stmt,
		offer.ID,
		offer.ListingID,
		offer.AssetID,
		offer.OfferIndex,
		offer.Currency,
		offer.Status,
		offer.CreatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return false, domain.ErrInvalidID
		}
		return false, fmt.Errorf("insert offer: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *OfferRepository) FindOpenOffer(ctx context.Context, listingID string, currency domain.Currency) (*domain.SaleOffer, error) {
	const query = `
SELECT id, listing_id, asset_id, offer_index, currency, status, created_at
FROM sale_offers
WHERE listing_id = $1 AND currency = $2 AND status = 'open'`

	var o domain.SaleOffer
	err := r.queryRow(ctx, query, listingID, currency).
		Scan(&o.ID, &o.ListingID, &o.AssetID, &o.OfferIndex, &o.Currency, &o.Status, &o.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find open offer: %w", err)
	}
	return &o, nil
}
