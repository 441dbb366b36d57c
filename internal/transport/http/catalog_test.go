package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/CenterForCreators/cfc-nft-shared-mint-backend/internal/app"
	"github.com/CenterForCreators/cfc-nft-shared-mint-backend/internal/domain"
)

type stubCatalogReader struct {
	payload []byte
	err     error
}

func (s *stubCatalogReader) Catalog(_ context.Context) ([]byte, error) {
	return s.payload, s.err
}

type stubCatalogAdmin struct {
	listing  domain.Listing
	err      error
	input    app.CreateListingInput
	delisted *bool
}

func (s *stubCatalogAdmin) Listing(_ context.Context, _ string) (domain.Listing, error) {
	return s.listing, s.err
}

func (s *stubCatalogAdmin) CreateListing(_ context.Context, in app.CreateListingInput) (domain.Listing, error) {
	s.input = in
	return s.listing, s.err
}

func (s *stubCatalogAdmin) SetDelisted(_ context.Context, _ string, delisted bool) error {
	s.delisted = &delisted
	return s.err
}

func TestHandleCatalog(t *testing.T) {
	t.Parallel()

	t.Run("serves rendered payload verbatim", func(t *testing.T) {
		t.Parallel()
		payload := []byte(`[{"id":"listing-1","title":"Poster"}]`)
		rec := httptest.NewRecorder()

		HandleCatalog(&stubCatalogReader{payload: payload})(rec, httptest.NewRequest(http.MethodGet, "/catalog", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		if rec.Body.String() != string(payload) {
			t.Fatalf("expected body %q, got %q", payload, rec.Body.String())
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Fatalf("expected json content type, got %q", ct)
		}
	})

	t.Run("store failure is an internal error", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()

		HandleCatalog(&stubCatalogReader{err: errors.New("db down")})(rec, httptest.NewRequest(http.MethodGet, "/catalog", nil))

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected status 500, got %d", rec.Code)
		}
		if strings.Contains(rec.Body.String(), "db down") {
			t.Fatalf("internal detail leaked: %q", rec.Body.String())
		}
	})
}

func TestHandleCreateListing(t *testing.T) {
	t.Parallel()

	created := domain.Listing{
		ID:        "listing-1",
		Title:     "Poster",
		AssetID:   "ASSET-1",
		Quantity:  3,
		Minted:    true,
		CreatedAt: time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC),
	}
	price := decimal.RequireFromString("2.5")
	created.Prices.XRP = &price

	tests := []struct {
		name           string
		body           string
		serviceErr     error
		expectedStatus int
		expectedSubstr string
	}{
		{
			name:           "created",
			body:           `{"title": "Poster", "asset_id": "ASSET-1", "price_xrp": "2.5", "quantity": 3}`,
			expectedStatus: http.StatusCreated,
			expectedSubstr: `"price_xrp":"2.5"`,
		},
		{
			name:           "unparseable price",
			body:           `{"title": "Poster", "price_xrp": "two", "quantity": 3}`,
			expectedStatus: http.StatusBadRequest,
			expectedSubstr: `"code":"invalid_price"`,
		},
		{
			name:           "invalid body",
			body:           "{",
			expectedStatus: http.StatusBadRequest,
			expectedSubstr: `"code":"invalid_request_body"`,
		},
		{
			name:           "missing title",
			body:           `{"price_xrp": "2.5", "quantity": 3}`,
			serviceErr:     domain.ErrTitleRequired,
			expectedStatus: http.StatusBadRequest,
			expectedSubstr: `"code":"title_required"`,
		},
		{
			name:           "zero quantity",
			body:           `{"title": "Poster", "price_xrp": "2.5", "quantity": 0}`,
			serviceErr:     domain.ErrInvalidQuantity,
			expectedStatus: http.StatusBadRequest,
			expectedSubstr: `"code":"invalid_quantity"`,
		},
		{
			name:           "no price at all",
			body:           `{"title": "Poster", "quantity": 3}`,
			serviceErr:     domain.ErrInvalidPrice,
			expectedStatus: http.StatusBadRequest,
			expectedSubstr: `"code":"invalid_price"`,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := &stubCatalogAdmin{listing: created, err: tt.serviceErr}

			req := httptest.NewRequest(http.MethodPost, "/listings", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			HandleCreateListing(svc)(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.expectedStatus, rec.Code, rec.Body.String())
			}
			if tt.expectedSubstr != "" && !strings.Contains(rec.Body.String(), tt.expectedSubstr) {
				t.Fatalf("expected response to contain %q, got %q", tt.expectedSubstr, rec.Body.String())
			}
		})
	}
}

func TestHandleCreateListing_ParsesPrices(t *testing.T) {
	t.Parallel()

	svc := &stubCatalogAdmin{}
	body := `{"title": "Poster", "price_xrp": "2.5", "price_issued": "10", "quantity": 3}`
	rec := httptest.NewRecorder()

	HandleCreateListing(svc)(rec, httptest.NewRequest(http.MethodPost, "/listings", strings.NewReader(body)))

	if svc.input.PriceXRP == nil || !svc.input.PriceXRP.Equal(decimal.RequireFromString("2.5")) {
		t.Fatalf("expected parsed XRP price, got %v", svc.input.PriceXRP)
	}
	if svc.input.PriceIssued == nil || !svc.input.PriceIssued.Equal(decimal.RequireFromString("10")) {
		t.Fatalf("expected parsed issued price, got %v", svc.input.PriceIssued)
	}
}

func TestHandleGetListing(t *testing.T) {
	t.Parallel()

	t.Run("found", func(t *testing.T) {
		t.Parallel()
		svc := &stubCatalogAdmin{listing: domain.Listing{ID: "listing-1", Title: "Poster"}}

		r := mux.NewRouter()
		r.HandleFunc("/listings/{id}", HandleGetListing(svc)).Methods(http.MethodGet)

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/listings/listing-1", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"title":"Poster"`) {
			t.Fatalf("expected listing body, got %q", rec.Body.String())
		}
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()
		svc := &stubCatalogAdmin{err: domain.ErrListingNotFound}

		r := mux.NewRouter()
		r.HandleFunc("/listings/{id}", HandleGetListing(svc)).Methods(http.MethodGet)

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/listings/missing", nil))

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected status 404, got %d", rec.Code)
		}
	})
}

func TestHandleDelistListing(t *testing.T) {
	t.Parallel()

	svc := &stubCatalogAdmin{}
	r := mux.NewRouter()
	r.HandleFunc("/listings/{id}/delist", HandleDelistListing(svc)).Methods(http.MethodPost)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/listings/listing-1/delist", strings.NewReader(`{"delisted": true}`)))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rec.Code)
	}
	if svc.delisted == nil || !*svc.delisted {
		t.Fatalf("expected delist flag to pass through")
	}
}
