package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	apperrors "github.com/macdee501/web-grocery-delivery-version-1/pkg/errors"
	"github.com/macdee501/web-grocery-delivery-version-1/pkg/httpclient"
)

// Intent statuses reported by the gateway.
const (
	IntentStatusRequiresPayment = "requires_payment_method"
	IntentStatusProcessing      = "processing"
	IntentStatusSucceeded       = "succeeded"
)

// Intent is a payment intent created on the gateway. The client secret is
// handed to the storefront UI to drive the card widget.
type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

// Confirmation is the gateway's answer to a confirm call.
type Confirmation struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type gatewayError struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Client talks to the payment gateway's HTTP API. All calls carry an
// idempotency key so the retry layer cannot double-create or double-charge.
type Client struct {
	http    *httpclient.Client
	baseURL string
	apiKey  string
	logger  *slog.Logger
}

// NewClient creates a gateway client.
func NewClient(httpClient *httpclient.Client, baseURL, apiKey string, logger *slog.Logger) *Client {
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		logger:  logger,
	}
}

// CreateIntent creates a payment intent for the given amount in minor units.
// idempotencyKey deduplicates creates for the same checkout session.
func (c *Client) CreateIntent(ctx context.Context, amount int64, currency, description, idempotencyKey string) (*Intent, error) {
	payload := map[string]any{
		"amount":      amount,
		"currency":    strings.ToLower(currency),
		"description": description,
	}

	var intent Intent
	if err := c.post(ctx, "/v1/payment_intents", idempotencyKey, payload, &intent); err != nil {
		return nil, err
	}

	if intent.ClientSecret == "" {
		return nil, apperrors.ServiceUnavailable("payment gateway returned no client secret")
	}
	return &intent, nil
}

// ConfirmIntent confirms a payment intent with a tokenized payment method.
// Card declines map to a PaymentDeclined error; the caller may resubmit with
// corrected details.
func (c *Client) ConfirmIntent(ctx context.Context, intentID, paymentMethodID string) (*Confirmation, error) {
	payload := map[string]any{
		"payment_method": paymentMethodID,
	}

	var confirmation Confirmation
	path := fmt.Sprintf("/v1/payment_intents/%s/confirm", intentID)
	if err := c.post(ctx, path, "confirm-"+intentID, payload, &confirmation); err != nil {
		return nil, err
	}
	return &confirmation, nil
}

func (c *Client) post(ctx context.Context, path, idempotencyKey string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return apperrors.Wrap(err, "marshal gateway request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return apperrors.Wrap(err, "create gateway request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Idempotency-Key", idempotencyKey)

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		c.logger.ErrorContext(ctx, "payment gateway unreachable", "path", path, "error", err)
		return apperrors.ServiceUnavailable("payment gateway unreachable")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return apperrors.Wrap(err, "read gateway response")
	}

	if resp.StatusCode >= 400 {
		return c.mapError(ctx, path, resp.StatusCode, respBody)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return apperrors.Wrap(err, "unmarshal gateway response")
	}
	return nil
}

func (c *Client) mapError(ctx context.Context, path string, status int, body []byte) error {
	var gwErr gatewayError
	_ = json.Unmarshal(body, &gwErr)

	c.logger.WarnContext(ctx, "payment gateway error",
		"path", path,
		"status", status,
		"gateway_code", gwErr.Error.Code,
	)

	if gwErr.Error.Type == "card_error" || status == http.StatusPaymentRequired {
		msg := gwErr.Error.Message
		if msg == "" {
			msg = "your card was declined"
		}
		return apperrors.PaymentDeclined(msg)
	}

	if status >= 500 {
		return apperrors.ServiceUnavailable("payment gateway error")
	}
	return apperrors.Internal(fmt.Errorf("payment gateway returned status %d: %s", status, gwErr.Error.Message))
}
