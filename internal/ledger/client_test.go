package ledger

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientSellOffers(t *testing.T) {
	t.Parallel()

	t.Run("returns open offers", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req rpcRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("decode request: %v", err)
			}
			if req.Method != "nft_sell_offers" {
				t.Errorf("expected nft_sell_offers, got %s", req.Method)
			}
			if req.Params[0]["nft_id"] != "ASSET1" {
				t.Errorf("expected nft_id ASSET1, got %v", req.Params[0])
			}
			_, _ = w.Write([]byte(`{"result":{"status":"success","offers":[
				{"nft_offer_index":"OFFER1","amount":"10000000"},
				{"nft_offer_index":"OFFER2","amount":{"currency":"CFC","issuer":"rIssuer","value":"25"}}
			]}}`))
		}))
		defer srv.Close()

		client := NewClient(srv.URL)
		offers, err := client.SellOffers(context.Background(), "ASSET1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(offers) != 2 {
			t.Fatalf("expected 2 offers, got %d", len(offers))
		}
		if offers[0].Index != "OFFER1" {
			t.Fatalf("expected OFFER1, got %s", offers[0].Index)
		}
	})

	t.Run("absent object is empty not error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"result":{"status":"error","error":"objectNotFound"}}`))
		}))
		defer srv.Close()

		client := NewClient(srv.URL)
		offers, err := client.SellOffers(context.Background(), "ASSET1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(offers) != 0 {
			t.Fatalf("expected no offers, got %d", len(offers))
		}
	})

	t.Run("other ledger error surfaces", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"result":{"status":"error","error":"invalidParams"}}`))
		}))
		defer srv.Close()

		client := NewClient(srv.URL)
		if _, err := client.SellOffers(context.Background(), "ASSET1"); err == nil {
			t.Fatalf("expected error")
		}
	})
}

func TestClientTransaction(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result":{
			"status":"success",
			"hash":"TX1",
			"validated":true,
			"meta":{"AffectedNodes":[
				{"CreatedNode":{"LedgerEntryType":"NFTokenPage","LedgerIndex":"PAGE1"}},
				{"CreatedNode":{"LedgerEntryType":"NFTokenOffer","LedgerIndex":"OFFER1"}}
			]}
		}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	info, err := client.Transaction(context.Background(), "TX1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !info.Validated {
		t.Fatalf("expected validated transaction")
	}

	index, ok := info.CreatedOfferIndex()
	if !ok {
		t.Fatalf("expected created offer index")
	}
	if index != "OFFER1" {
		t.Fatalf("expected OFFER1, got %s", index)
	}
}

func TestCreatedOfferIndexAbsent(t *testing.T) {
	t.Parallel()

	info := TxInfo{Meta: TxMeta{AffectedNodes: []AffectedNode{
		{CreatedNode: &NodeDetail{LedgerEntryType: "NFTokenPage", LedgerIndex: "PAGE1"}},
		{},
	}}}
	if _, ok := info.CreatedOfferIndex(); ok {
		t.Fatalf("expected no created offer index")
	}
}
