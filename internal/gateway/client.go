// Package gateway talks to the wallet-signing gateway. Payloads are submitted
// for the asset owner or buyer to sign in their wallet; the gateway later
// reports the outcome through the confirmation webhook.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const defaultRequestTimeout = 10 * time.Second

// Payload is one signing request: the transaction to sign plus the
// correlation metadata the gateway echoes back on the webhook.
type Payload struct {
	TxType    string
	Fields    map[string]any
	ReturnURL string
	Meta      Meta
}

// Meta is the correlation metadata attached to a payload. Kind tells the
// webhook sink which confirmation path the event belongs to.
type Meta struct {
	Kind       EventKind `json:"kind"`
	ListingID  string    `json:"listing_id"`
	OfferIndex string    `json:"offer_index,omitempty"`
	Currency   string    `json:"currency,omitempty"`
}

// Submitted is the gateway's answer to a payload submission. The signing link
// is handed to the user; the correlation id ties the eventual webhook back to
// this submission.
type Submitted struct {
	CorrelationID string
	SigningLink   string
}

type Client struct {
	baseURL   string
	apiKey    string
	apiSecret string
	http      *http.Client
}

func NewClient(baseURL, apiKey, apiSecret string) *Client {
	return &Client{
		baseURL:   baseURL,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		http:      &http.Client{Timeout: defaultRequestTimeout},
	}
}

type submitRequest struct {
	TxJSON     map[string]any `json:"txjson"`
	CustomMeta Meta           `json:"custom_meta"`
	ReturnURL  string         `json:"return_url,omitempty"`
}

type submitResponse struct {
	UUID string `json:"uuid"`
	Next struct {
		Always string `json:"always"`
	} `json:"next"`
}

// SubmitPayload submits a signing request and returns the signing link
// immediately; confirmation arrives later on the webhook.
func (c *Client) SubmitPayload(ctx context.Context, p Payload) (Submitted, error) {
	txjson := make(map[string]any, len(p.Fields)+1)
	for k, v := range p.Fields {
		txjson[k] = v
	}
	txjson["TransactionType"] = p.TxType

	body, err := json.Marshal(submitRequest{
		TxJSON:     txjson,
		CustomMeta: p.Meta,
		ReturnURL:  p.ReturnURL,
	})
	if err != nil {
		return Submitted{}, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/payload", bytes.NewReader(body))
	if err != nil {
		return Submitted{}, fmt.Errorf("build payload request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("X-API-Secret", c.apiSecret)

	resp, err := c.http.Do(req)
	if err != nil {
		return Submitted{}, fmt.Errorf("submit payload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return Submitted{}, fmt.Errorf("submit payload: gateway returned %d", resp.StatusCode)
	}

	var out submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Submitted{}, fmt.Errorf("decode payload response: %w", err)
	}
	if out.UUID == "" || out.Next.Always == "" {
		return Submitted{}, fmt.Errorf("submit payload: incomplete gateway response")
	}

	return Submitted{CorrelationID: out.UUID, SigningLink: out.Next.Always}, nil
}
