package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"storefront/internal/config"

	"github.com/shopspring/decimal"
)

// ProviderOrderRequest asks the wallet provider for an order keyed by our order id.
type ProviderOrderRequest struct {
	OrderID  string
	Amount   decimal.Decimal
	Currency string
}

// Approval is what the wallet provider reports about a provider order.
type Approval struct {
	ProviderOrderID string
	ReferenceID     string
	Status          string
	Amount          decimal.Decimal
	Currency        string
	PayerEmail      string
}

// Capture is the receipt of a captured provider order.
type Capture struct {
	ID         string
	Status     string
	Amount     decimal.Decimal
	Currency   string
	PayerEmail string
}

// WalletProvider is an externally hosted wallet the buyer approves payments in.
type WalletProvider interface {
	CreateProviderOrder(ctx context.Context, req ProviderOrderRequest) (string, error)
	// VerifyApproval reads the provider order back; it never moves money.
	VerifyApproval(ctx context.Context, providerOrderID string) (*Approval, error)
	Capture(ctx context.Context, providerOrderID string) (*Capture, error)
}

// PayPalStatusApproved is the provider order status after buyer approval.
const PayPalStatusApproved = "APPROVED"

// PayPalStatusCompleted is the provider order status after capture.
const PayPalStatusCompleted = "COMPLETED"

// PayPalClient talks to the PayPal Orders v2 REST API.
type PayPalClient struct {
	httpClient   *http.Client
	baseAPIURL   string
	clientID     string
	clientSecret string
}

// NewPayPalClient creates a PayPal client. The http client carries no
// timeout of its own; every call is bounded by its context.
func NewPayPalClient(cfg config.PayPal, httpClient *http.Client) *PayPalClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &PayPalClient{
		httpClient:   httpClient,
		baseAPIURL:   strings.TrimRight(cfg.BaseAPIURL, "/"),
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
	}
}

type paypalAmount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type paypalCapture struct {
	ID     string       `json:"id"`
	Status string       `json:"status"`
	Amount paypalAmount `json:"amount"`
}

type paypalPurchaseUnit struct {
	ReferenceID string       `json:"reference_id"`
	Amount      paypalAmount `json:"amount"`
	Payments    struct {
		Captures []paypalCapture `json:"captures"`
	} `json:"payments"`
}

type paypalOrder struct {
	ID            string               `json:"id"`
	Status        string               `json:"status"`
	PurchaseUnits []paypalPurchaseUnit `json:"purchase_units"`
	Payer         struct {
		EmailAddress string `json:"email_address"`
	} `json:"payer"`
}

func (c *PayPalClient) accessToken(ctx context.Context) (string, error) {
	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseAPIURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var res struct {
		AccessToken string `json:"access_token"`
	}
	if err := c.do(req, &res); err != nil {
		return "", fmt.Errorf("get paypal access token: %w", err)
	}
	if res.AccessToken == "" {
		return "", fmt.Errorf("empty paypal access token: %w", ErrProviderUnavailable)
	}
	return res.AccessToken, nil
}

func (c *PayPalClient) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read body: %v", ErrProviderUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: paypal status=%d body=%s", ErrProviderUnavailable, resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode paypal response: %v", ErrProviderUnavailable, err)
	}
	return nil
}

func (c *PayPalClient) authorized(ctx context.Context, method, path string, payload interface{}) (*http.Request, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal paypal payload: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseAPIURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create paypal request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// CreateProviderOrder creates a CAPTURE intent order for the amount and
// returns the PayPal order id the buyer approves.
func (c *PayPalClient) CreateProviderOrder(ctx context.Context, in ProviderOrderRequest) (string, error) {
	payload := map[string]interface{}{
		"intent": "CAPTURE",
		"purchase_units": []map[string]interface{}{
			{
				"reference_id": in.OrderID,
				"amount": paypalAmount{
					CurrencyCode: strings.ToUpper(in.Currency),
					Value:        in.Amount.StringFixed(2),
				},
			},
		},
	}
	req, err := c.authorized(ctx, http.MethodPost, "/v2/checkout/orders", payload)
	if err != nil {
		return "", err
	}
	req.Header.Set("PayPal-Request-Id", "order-"+in.OrderID)

	var res paypalOrder
	if err := c.do(req, &res); err != nil {
		return "", fmt.Errorf("paypal create order: %w", err)
	}
	return res.ID, nil
}

// VerifyApproval fetches the provider order and reports what the buyer approved.
func (c *PayPalClient) VerifyApproval(ctx context.Context, providerOrderID string) (*Approval, error) {
	req, err := c.authorized(ctx, http.MethodGet, "/v2/checkout/orders/"+url.PathEscape(providerOrderID), nil)
	if err != nil {
		return nil, err
	}

	var res paypalOrder
	if err := c.do(req, &res); err != nil {
		return nil, fmt.Errorf("paypal get order: %w", err)
	}
	if len(res.PurchaseUnits) == 0 {
		return nil, fmt.Errorf("%w: paypal order %s has no purchase units", ErrProviderUnavailable, providerOrderID)
	}
	unit := res.PurchaseUnits[0]
	amount, err := decimal.NewFromString(unit.Amount.Value)
	if err != nil {
		return nil, fmt.Errorf("%w: paypal amount %q: %v", ErrProviderUnavailable, unit.Amount.Value, err)
	}
	return &Approval{
		ProviderOrderID: res.ID,
		ReferenceID:     unit.ReferenceID,
		Status:          res.Status,
		Amount:          amount,
		Currency:        unit.Amount.CurrencyCode,
		PayerEmail:      res.Payer.EmailAddress,
	}, nil
}

// Capture collects the funds of an approved provider order.
func (c *PayPalClient) Capture(ctx context.Context, providerOrderID string) (*Capture, error) {
	req, err := c.authorized(ctx, http.MethodPost, "/v2/checkout/orders/"+url.PathEscape(providerOrderID)+"/capture", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("PayPal-Request-Id", "capture-"+providerOrderID)

	var res paypalOrder
	if err := c.do(req, &res); err != nil {
		return nil, fmt.Errorf("paypal capture order: %w", err)
	}

	if len(res.PurchaseUnits) == 0 || len(res.PurchaseUnits[0].Payments.Captures) == 0 {
		return nil, fmt.Errorf("%w: paypal order %s returned no capture", ErrProviderUnavailable, providerOrderID)
	}
	cp := res.PurchaseUnits[0].Payments.Captures[0]
	amount, err := decimal.NewFromString(cp.Amount.Value)
	if err != nil {
		return nil, fmt.Errorf("%w: paypal capture amount %q: %v", ErrProviderUnavailable, cp.Amount.Value, err)
	}
	return &Capture{
		ID:         cp.ID,
		Status:     res.Status,
		Amount:     amount,
		Currency:   cp.Amount.CurrencyCode,
		PayerEmail: res.Payer.EmailAddress,
	}, nil
}
