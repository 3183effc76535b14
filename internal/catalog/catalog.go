// Package catalog reads products from the catalog API, falling back to
// an embedded sample catalog when no backend is reachable so the
// storefront stays browsable in development.
package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"zapateria-storefront/internal/domain"
)

//go:embed data/products.json
var sampleProducts []byte

type Client struct {
	baseURL string
	http    *http.Client
	logger  *log.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *log.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// List fetches all products. Responses may be a plain array or a
// {"data": [...]} envelope. An unreachable backend degrades to the
// embedded sample catalog.
func (c *Client) List(ctx context.Context) ([]domain.Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/products", nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if c.logger != nil {
			c.logger.Printf("catalog unreachable, using sample products: %v", err)
		}
		return parseProducts(sampleProducts)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if c.logger != nil {
			c.logger.Printf("catalog responded %d, using sample products", resp.StatusCode)
		}
		return parseProducts(sampleProducts)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read catalog response: %w", err)
	}
	return parseProducts(raw)
}

// Get returns a single product by id.
func (c *Client) Get(ctx context.Context, id string) (*domain.Product, error) {
	products, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].ID == id {
			return &products[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

// BaseURL reports the configured catalog endpoint, mainly for logging.
func (c *Client) BaseURL() string {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return c.baseURL
	}
	return u.String()
}

func parseProducts(raw []byte) ([]domain.Product, error) {
	var plain []domain.Product
	if err := json.Unmarshal(raw, &plain); err == nil {
		return plain, nil
	}
	var envelope struct {
		Data []domain.Product `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Data != nil {
		return envelope.Data, nil
	}
	return nil, errors.New("unexpected product list format")
}
