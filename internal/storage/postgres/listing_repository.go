package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/CenterForCreators/cfc-nft-shared-mint-backend/internal/domain"
)

// listingColumns is the shared select list; prices come back as text so they
// scan losslessly into decimals.
const listingColumns = `id, title, COALESCE(asset_id, ''), price_xrp::text, price_issued::text, quantity, sold, delisted, minted, created_at`

type ListingRepository struct {
	db
}

func NewListingRepository(pool *pgxpool.Pool) *ListingRepository {
	return &ListingRepository{db: db{pool: pool}}
}

func (r *ListingRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *ListingRepository) CreateListing(ctx context.Context, l domain.Listing) error {
	const stmt = `
INSERT INTO listings (id, title, asset_id, price_xrp, price_issued, quantity, sold, delisted, minted, created_at)
VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.exec(ctx, stmt,
		l.ID,
		l.Title,
		l.AssetID,
		priceArg(l.Prices.XRP),
		priceArg(l.Prices.Issued),
		l.Quantity,
		l.Sold,
		l.Delisted,
		l.Minted,
		l.CreatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create listing: %w", err)
	}
	return nil
}

func (r *ListingRepository) GetListing(ctx context.Context, id string) (domain.Listing, error) {
	const query = `SELECT ` + listingColumns + ` FROM listings WHERE id = $1`
	return scanListing(r.queryRow(ctx, query, id))
}

func (r *ListingRepository) SetDelisted(ctx context.Context, id string, delisted bool) error {
	const stmt = `UPDATE listings SET delisted = $2 WHERE id = $1`

	tag, err := r.exec(ctx, stmt, id, delisted)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("set delisted: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}

func (r *ListingRepository) ListPublic(ctx context.Context) ([]domain.Listing, error) {
	const query = `
SELECT ` + listingColumns + `
FROM listings
WHERE minted AND NOT delisted AND quantity > 0
ORDER BY created_at, id`

	rows, err := r.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list public listings: %w", err)
	}
	defer rows.Close()

	var listings []domain.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list public listings: %w", err)
	}
	return listings, nil
}

func scanListing(row pgx.Row) (domain.Listing, error) {
	var l domain.Listing
	var priceXRP, priceIssued *string
	err := row.Scan(
		&l.ID,
		&l.Title,
		&l.AssetID,
		&priceXRP,
		&priceIssued,
		&l.Quantity,
		&l.Sold,
		&l.Delisted,
		&l.Minted,
		&l.CreatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Listing{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Listing{}, domain.ErrListingNotFound
		}
		return domain.Listing{}, fmt.Errorf("scan listing: %w", err)
	}

	if l.Prices.XRP, err = parsePrice(priceXRP); err != nil {
		return domain.Listing{}, err
	}
	if l.Prices.Issued, err = parsePrice(priceIssued); err != nil {
		return domain.Listing{}, err
	}
	return l, nil
}

func priceArg(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func parsePrice(s *string) (*decimal.Decimal, error) {
	if s == nil {
		return nil, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return nil, fmt.Errorf("parse price %q: %w", *s, err)
	}
	return &d, nil
}
