// Package payments is the HTTP client for the payment API consumed by
// checkout. Transport-level failures are reported as ErrUnavailable so
// callers can decide explicitly whether to fall back to a simulated
// payment; server-side rejections carry the backend's validation detail.
package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"zapateria-storefront/internal/domain"
)

// ErrUnavailable marks a transport-level failure: the endpoint could not
// be reached or the request timed out before a response arrived.
var ErrUnavailable = errors.New("payment api unreachable")

// RejectionError is a non-2xx response from a reachable backend. Message
// is safe to surface to the user.
type RejectionError struct {
	StatusCode int
	Message    string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("payment api rejected request (%d): %s", e.StatusCode, e.Message)
}

// Payment mirrors the backend payment record. The backend only ever
// stores masked card metadata.
type Payment struct {
	ID           string  `json:"id"`
	FullName     string  `json:"full_name"`
	Email        string  `json:"email"`
	Address      *string `json:"address"`
	City         *string `json:"city"`
	Country      *string `json:"country"`
	CardLast4    string  `json:"card_last4"`
	ExpMonth     int     `json:"exp_month"`
	ExpYear      int     `json:"exp_year"`
	Amount       string  `json:"amount"`
	Currency     string  `json:"currency"`
	PaymentToken *string `json:"payment_token"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

// CreateBody is the payment-creation request. The full card number and
// CCV travel to the backend and are never persisted locally.
type CreateBody struct {
	FullName     string          `json:"full_name"`
	Email        string          `json:"email"`
	Address      string          `json:"address"`
	City         string          `json:"city,omitempty"`
	Country      string          `json:"country,omitempty"`
	CardNumber   string          `json:"card_number"`
	Expiration   string          `json:"expiration"`
	CCV          string          `json:"ccv"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency,omitempty"`
	PaymentToken *string         `json:"payment_token,omitempty"`
}

// UpdateBody carries the mutable delivery fields of a payment.
type UpdateBody struct {
	FullName *string          `json:"full_name,omitempty"`
	Email    *string          `json:"email,omitempty"`
	Address  *string          `json:"address,omitempty"`
	City     *string          `json:"city,omitempty"`
	Country  *string          `json:"country,omitempty"`
	Amount   *decimal.Decimal `json:"amount,omitempty"`
	Currency *string          `json:"currency,omitempty"`
}

// Page is the paginator envelope the backend wraps list responses in.
type Page struct {
	CurrentPage int       `json:"current_page"`
	Data        []Payment `json:"data"`
	PerPage     int       `json:"per_page"`
	Total       int       `json:"total"`
}

// ListParams selects a page of payments.
type ListParams struct {
	Page    int
	PerPage int
}

type Client struct {
	baseURL string
	http    *http.Client
	logger  *log.Logger
}

// NewClient builds a client for the given API base URL (e.g.
// "http://127.0.0.1:8000/api"). The request timeout bounds how long a
// checkout can stay in the submitting state before falling back.
func NewClient(baseURL string, timeout time.Duration, logger *log.Logger) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Create submits a payment. Network failures return ErrUnavailable;
// validation failures return a *RejectionError with the first field
// error (or the top-level message) from the backend.
func (c *Client) Create(ctx context.Context, body CreateBody) (*Payment, error) {
	var out Payment
	if err := c.do(ctx, http.MethodPost, "/payments", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// List fetches a page of payments. A plain-array response from a dev
// stub is accepted and wrapped into a single page.
func (c *Client) List(ctx context.Context, params ListParams) (*Page, error) {
	path := "/payments"
	q := url.Values{}
	if params.Page > 0 {
		q.Set("page", strconv.Itoa(params.Page))
	}
	if params.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(params.PerPage))
	}
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	raw, err := c.doRaw(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	return parsePage(raw)
}

func (c *Client) Get(ctx context.Context, id string) (*Payment, error) {
	var out Payment
	if err := c.do(ctx, http.MethodGet, "/payments/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Update(ctx context.Context, id string, body UpdateBody) (*Payment, error) {
	var out Payment
	if err := c.do(ctx, http.MethodPut, "/payments/"+url.PathEscape(id), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	_, err := c.doRaw(ctx, http.MethodDelete, "/payments/"+url.PathEscape(id), nil)
	return err
}

// UserCards fetches remote saved cards for a user. A 404 means the
// backend has no card storage yet and reads as "no cards".
func (c *Client) UserCards(ctx context.Context, userID string) ([]domain.SavedCard, error) {
	raw, err := c.doRaw(ctx, http.MethodGet, "/users/"+url.PathEscape(userID)+"/cards", nil)
	if err != nil {
		var rej *RejectionError
		if errors.As(err, &rej) && rej.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	return parseCards(raw)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	raw, err := c.doRaw(ctx, method, path, body)
	if err != nil {
		return err
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	// Responses may arrive bare or wrapped in a {"data": ...} envelope.
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && len(envelope.Data) > 0 {
		raw = envelope.Data
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode payment response: %w", err)
	}
	return nil
}

func (c *Client) doRaw(ctx context.Context, method, path string, body interface{}) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if c.logger != nil {
			c.logger.Printf("payment api unreachable: %v", err)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RejectionError{
			StatusCode: resp.StatusCode,
			Message:    extractValidationMessage(raw),
		}
	}
	return raw, nil
}

// extractValidationMessage pulls the most specific user-facing message
// out of an error body: the first field error when a validation map is
// present, then the top-level message, then the raw body.
func extractValidationMessage(body []byte) string {
	var parsed struct {
		Message string              `json:"message"`
		Errors  map[string][]string `json:"errors"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		fields := make([]string, 0, len(parsed.Errors))
		for field := range parsed.Errors {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		for _, field := range fields {
			if msgs := parsed.Errors[field]; len(msgs) > 0 && msgs[0] != "" {
				return msgs[0]
			}
		}
		if parsed.Message != "" {
			return parsed.Message
		}
	}
	if len(body) > 0 {
		return string(body)
	}
	return "The payment request was rejected."
}

func parsePage(raw []byte) (*Page, error) {
	var page Page
	if err := json.Unmarshal(raw, &page); err == nil && page.Data != nil {
		return &page, nil
	}
	var plain []Payment
	if err := json.Unmarshal(raw, &plain); err == nil {
		return &Page{CurrentPage: 1, Data: plain, PerPage: len(plain), Total: len(plain)}, nil
	}
	return nil, errors.New("unexpected pagination format")
}

func parseCards(raw []byte) ([]domain.SavedCard, error) {
	var plain []domain.SavedCard
	if err := json.Unmarshal(raw, &plain); err == nil {
		return plain, nil
	}
	var envelope struct {
		Data []domain.SavedCard `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Data != nil {
		return envelope.Data, nil
	}
	return nil, errors.New("unexpected saved-cards format")
}
