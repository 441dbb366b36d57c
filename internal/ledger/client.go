// Package ledger is a thin query client for the ledger node's JSON-RPC API.
// The ledger is an external collaborator: this client only reads offers and
// transaction results, it never submits transactions itself (signing always
// flows through the gateway).
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const defaultRequestTimeout = 10 * time.Second

// offerEntryType is the ledger entry type of a token sell offer in a
// transaction's affected-node diff.
const offerEntryType = "NFTokenOffer"

type Client struct {
	rpcURL string
	http   *http.Client
}

func NewClient(rpcURL string) *Client {
	return &Client{
		rpcURL: rpcURL,
		http:   &http.Client{Timeout: defaultRequestTimeout},
	}
}

// OfferEntry is one open sell offer as reported by the ledger.
type OfferEntry struct {
	Index  string          `json:"nft_offer_index"`
	Amount json.RawMessage `json:"amount"`
}

// TxInfo is a recorded transaction with its affected-state diff.
type TxInfo struct {
	Hash      string `json:"hash"`
	Validated bool   `json:"validated"`
	Meta      TxMeta `json:"meta"`
}

type TxMeta struct {
	AffectedNodes []AffectedNode `json:"AffectedNodes"`
}

type AffectedNode struct {
	CreatedNode *NodeDetail `json:"CreatedNode,omitempty"`
}

type NodeDetail struct {
	LedgerEntryType string `json:"LedgerEntryType"`
	LedgerIndex     string `json:"LedgerIndex"`
}

// CreatedOfferIndex extracts the ledger-assigned index of the sell offer this
// transaction created, if the diff contains one.
func (t TxInfo) CreatedOfferIndex() (string, bool) {
	for _, node := range t.Meta.AffectedNodes {
		if node.CreatedNode == nil {
			continue
		}
		if node.CreatedNode.LedgerEntryType == offerEntryType && node.CreatedNode.LedgerIndex != "" {
			return node.CreatedNode.LedgerIndex, true
		}
	}
	return "", false
}

type rpcRequest struct {
	Method string           `json:"method"`
	Params []map[string]any `json:"params"`
}

type rpcResult struct {
	Status string       `json:"status"`
	Error  string       `json:"error"`
	Offers []OfferEntry `json:"offers"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
}

// SellOffers lists the open sell offers for an asset. An asset with no offer
// object on the ledger is an empty result, not an error.
func (c *Client) SellOffers(ctx context.Context, assetID string) ([]OfferEntry, error) {
	raw, err := c.call(ctx, "nft_sell_offers", map[string]any{"nft_id": assetID})
	if err != nil {
		return nil, err
	}

	var res rpcResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("decode sell offers: %w", err)
	}
	if res.Error == "objectNotFound" {
		return nil, nil
	}
	if res.Status == "error" {
		return nil, fmt.Errorf("sell offers: ledger returned %s", res.Error)
	}
	return res.Offers, nil
}

// Transaction fetches a recorded transaction including its affected-state
// diff.
func (c *Client) Transaction(ctx context.Context, txID string) (TxInfo, error) {
	raw, err := c.call(ctx, "tx", map[string]any{"transaction": txID})
	if err != nil {
		return TxInfo{}, err
	}

	var res rpcResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return TxInfo{}, fmt.Errorf("decode transaction: %w", err)
	}
	if res.Status == "error" {
		return TxInfo{}, fmt.Errorf("transaction: ledger returned %s", res.Error)
	}

	var info TxInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return TxInfo{}, fmt.Errorf("decode transaction: %w", err)
	}
	return info, nil
}

func (c *Client) call(ctx context.Context, method string, params map[string]any) (json.RawMessage, error) {
	body, err := json.Marshal(rpcRequest{Method: method, Params: []map[string]any{params}})
	if err != nil {
		return nil, fmt.Errorf("marshal %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rpcURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: ledger returned %d", method, resp.StatusCode)
	}

	var out rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", method, err)
	}
	if len(out.Result) == 0 {
		return nil, fmt.Errorf("%s: empty ledger response", method)
	}
	return out.Result, nil
}
