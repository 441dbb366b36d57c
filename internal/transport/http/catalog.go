package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/CenterForCreators/cfc-nft-shared-mint-backend/internal/app"
	"github.com/CenterForCreators/cfc-nft-shared-mint-backend/internal/domain"
)

// CatalogReader serves the public catalog as a rendered payload.
type CatalogReader interface {
	Catalog(ctx context.Context) ([]byte, error)
}

// HandleCatalog serves the cached public catalog.
func HandleCatalog(svc CatalogReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := svc.Catalog(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(payload)
	}
}

// CatalogAdmin is the mutation surface for listings.
type CatalogAdmin interface {
	Listing(ctx context.Context, id string) (domain.Listing, error)
	CreateListing(ctx context.Context, in app.CreateListingInput) (domain.Listing, error)
	SetDelisted(ctx context.Context, id string, delisted bool) error
}

type createListingRequest struct {
	Title       string `json:"title"`
	AssetID     string `json:"asset_id"`
	PriceXRP    string `json:"price_xrp"`
	PriceIssued string `json:"price_issued"`
	Quantity    int    `json:"quantity"`
}

type listingResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	AssetID   string    `json:"asset_id"`
	PriceXRP  *string   `json:"price_xrp,omitempty"`
	PriceCFC  *string   `json:"price_issued,omitempty"`
	Quantity  int       `json:"quantity"`
	Sold      int       `json:"sold"`
	Delisted  bool      `json:"delisted"`
	Minted    bool      `json:"minted"`
	CreatedAt time.Time `json:"created_at"`
}

func toListingResponse(l domain.Listing) listingResponse {
	resp := listingResponse{
		ID:        l.ID,
		Title:     l.Title,
		AssetID:   l.AssetID,
		Quantity:  l.Quantity,
		Sold:      l.Sold,
		Delisted:  l.Delisted,
		Minted:    l.Minted,
		CreatedAt: l.CreatedAt,
	}
	if l.Prices.XRP != nil {
		s := l.Prices.XRP.String()
		resp.PriceXRP = &s
	}
	if l.Prices.Issued != nil {
		s := l.Prices.Issued.String()
		resp.PriceCFC = &s
	}
	return resp
}

// HandleCreateListing creates a listing from an admin request.
func HandleCreateListing(svc CatalogAdmin) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createListingRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		in := app.CreateListingInput{
			Title:    req.Title,
			AssetID:  req.AssetID,
			Quantity: req.Quantity,
		}
		var ok bool
		if in.PriceXRP, ok = parseOptionalPrice(w, req.PriceXRP); !ok {
			return
		}
		if in.PriceIssued, ok = parseOptionalPrice(w, req.PriceIssued); !ok {
			return
		}

		listing, err := svc.CreateListing(r.Context(), in)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toListingResponse(listing))
	}
}

// HandleGetListing serves one listing's detail view.
func HandleGetListing(svc CatalogAdmin) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		listing, err := svc.Listing(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toListingResponse(listing))
	}
}

type delistRequest struct {
	Delisted bool `json:"delisted"`
}

// HandleDelistListing toggles the soft-removal flag.
func HandleDelistListing(svc CatalogAdmin) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req delistRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if err := svc.SetDelisted(r.Context(), mux.Vars(r)["id"], req.Delisted); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func parseOptionalPrice(w http.ResponseWriter, s string) (*decimal.Decimal, bool) {
	if s == "" {
		return nil, true
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidPrice, "invalid price")
		return nil, false
	}
	return &d, true
}
