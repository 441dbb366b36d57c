package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/CenterForCreators/cfc-nft-shared-mint-backend/internal/domain"
)

const (
	codeNotFound            = "not_found"
	codeInvalidRequestBody  = "invalid_request_body"
	codeInvalidID           = "invalid_id"
	codeListingNotFound     = "listing_not_found"
	codeListingDelisted     = "listing_delisted"
	codeAssetNotMinted      = "asset_not_minted"
	codeInvalidPrice        = "invalid_price"
	codeInvalidQuantity     = "invalid_quantity"
	codeTitleRequired       = "title_required"
	codeUnsupportedCurrency = "unsupported_currency"
	codeNoOfferAvailable    = "no_offer_available"
	codeSoldOut             = "sold_out"
	codeInternalError       = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

// writeDomainError maps the error taxonomy to user-facing responses. The
// no-offer case deliberately tells the caller to retry listing setup; nothing
// here ever leaks idempotency mechanics.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrListingNotFound):
		writeError(w, http.StatusNotFound, codeListingNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidID):
		writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
	case errors.Is(err, domain.ErrListingDelisted):
		writeError(w, http.StatusConflict, codeListingDelisted, err.Error())
	case errors.Is(err, domain.ErrAssetNotMinted):
		writeError(w, http.StatusConflict, codeAssetNotMinted, err.Error())
	case errors.Is(err, domain.ErrInvalidPrice):
		writeError(w, http.StatusBadRequest, codeInvalidPrice, err.Error())
	case errors.Is(err, domain.ErrInvalidQuantity):
		writeError(w, http.StatusBadRequest, codeInvalidQuantity, err.Error())
	case errors.Is(err, domain.ErrTitleRequired):
		writeError(w, http.StatusBadRequest, codeTitleRequired, err.Error())
	case errors.Is(err, domain.ErrUnsupportedCurrency):
		writeError(w, http.StatusBadRequest, codeUnsupportedCurrency, err.Error())
	case errors.Is(err, domain.ErrNoOpenOffer):
		writeError(w, http.StatusConflict, codeNoOfferAvailable, "no offer available, retry listing setup")
	case errors.Is(err, domain.ErrSoldOut):
		writeError(w, http.StatusConflict, codeSoldOut, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}
