package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// RouterDeps carries the handlers' service dependencies.
type RouterDeps struct {
	Catalog      CatalogReader
	CatalogAdmin CatalogAdmin
	Offers       OfferInitiator
	Purchases    PurchaseInitiator
	Confirmation ConfirmationSink
	Logger       *zap.Logger
}

// NewRouter wires all routes.
func NewRouter(deps RouterDeps) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/health", HealthHandler).Methods(http.MethodGet)
	r.HandleFunc("/catalog", HandleCatalog(deps.Catalog)).Methods(http.MethodGet)
	r.HandleFunc("/listings", HandleCreateListing(deps.CatalogAdmin)).Methods(http.MethodPost)
	r.HandleFunc("/listings/{id}", HandleGetListing(deps.CatalogAdmin)).Methods(http.MethodGet)
	r.HandleFunc("/listings/{id}/delist", HandleDelistListing(deps.CatalogAdmin)).Methods(http.MethodPost)
	r.HandleFunc("/listings/{id}/offers", HandleInitiateListing(deps.Offers)).Methods(http.MethodPost)
	r.HandleFunc("/listings/{id}/purchase", HandleInitiatePurchase(deps.Purchases)).Methods(http.MethodPost)
	r.HandleFunc("/webhooks/confirmations", HandleConfirmationWebhook(deps.Confirmation, deps.Logger)).Methods(http.MethodPost)
	r.NotFoundHandler = NotFoundHandler()

	return RequestLogger(r, deps.Logger)
}
