package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/CenterForCreators/cfc-nft-shared-mint-backend/internal/domain"
)

// OrderRepository carries the settlement transaction: the locked listing
// read, the order insert that doubles as the idempotency gate, the guarded
// inventory decrement, and the offer transition.
type OrderRepository struct {
	db
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{db: db{pool: pool}}
}

func (r *OrderRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

// GetListingForUpdate locks the listing row for the rest of the transaction,
// serializing concurrent settlements of the same listing while leaving other
// listings untouched.
func (r *OrderRepository) GetListingForUpdate(ctx context.Context, id string) (domain.Listing, error) {
	const query = `SELECT ` + listingColumns + ` FROM listings WHERE id = $1 FOR UPDATE`
	return scanListing(r.queryRow(ctx, query, id))
}

// InsertOrder writes the order row. The partial unique indexes on the
// correlation id and ledger transaction id are the idempotency boundary: a
// collision on either means the payment was already settled.
func (r *OrderRepository) InsertOrder(ctx context.Context, order domain.Order) error {
	const stmt = `
INSERT INTO orders (id, listing_id, buyer, price, currency, status, correlation_id, ledger_tx_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.exec(ctx, stmt,
		order.ID,
		order.ListingID,
		order.Buyer,
		order.Price.String(),
		order.Currency,
		order.Status,
		order.CorrelationID,
		order.LedgerTxID,
		order.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateSettlement
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// DecrementListing takes one unit of inventory. The quantity > 0 guard lives
// in the statement itself, a second defense behind the row lock; zero
// affected rows means inventory was already exhausted.
func (r *OrderRepository) DecrementListing(ctx context.Context, id string) (bool, error) {
	const stmt = `
UPDATE listings
SET quantity = quantity - 1, sold = sold + 1
WHERE id = $1 AND quantity > 0`

	tag, err := r.exec(ctx, stmt, id)
	if err != nil {
		if isInvalidUUID(err) {
			return false, domain.ErrInvalidID
		}
		return false, fmt.Errorf("decrement listing: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// MarkOfferUsed transitions an open offer to used. An offer that is unknown
// or already used is left alone: the order uniqueness check has already
// decided whether this settlement is new.
func (r *OrderRepository) MarkOfferUsed(ctx context.Context, offerIndex string) error {
	const stmt = `UPDATE sale_offers SET status = 'used' WHERE offer_index = $1 AND status = 'open'`

	if _, err := r.exec(ctx, stmt, offerIndex); err != nil {
		return fmt.Errorf("mark offer used: %w", err)
	}
	return nil
}
