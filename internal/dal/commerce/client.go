package commerce

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/avelora/admin-metrics/internal/service/models/order"
	"github.com/avelora/admin-metrics/internal/service/models/product"
	"github.com/avelora/admin-metrics/internal/service/models/review"
	"github.com/avelora/admin-metrics/internal/service/models/snapshot"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// Client fetches the admin collections from the external commerce API. Every
// request carries the bearer credential; responses arrive either as bare JSON
// arrays or wrapped under the collection key.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	token          string
	amountsInCents bool
}

// MustNewClient creates a new commerce API client from config. The bearer
// token comes from the environment so it never lands in config files.
func MustNewClient() *Client {
	baseURL := strings.TrimRight(viper.GetString("commerce.base_url"), "/")
	if baseURL == "" {
		panic("commerce.base_url is not configured")
	}

	timeoutSeconds := viper.GetInt("commerce.timeout_seconds")
	if timeoutSeconds == 0 {
		timeoutSeconds = 15
	}

	return &Client{
		httpClient:     &http.Client{Timeout: time.Duration(timeoutSeconds) * time.Second},
		baseURL:        baseURL,
		token:          os.Getenv("COMMERCE_API_TOKEN"),
		amountsInCents: viper.GetBool("commerce.amounts_in_cents"),
	}
}

// NewClient creates a client with explicit settings, used by tests.
func NewClient(httpClient *http.Client, baseURL, token string, amountsInCents bool) *Client {
	return &Client{
		httpClient:     httpClient,
		baseURL:        strings.TrimRight(baseURL, "/"),
		token:          token,
		amountsInCents: amountsInCents,
	}
}

// FetchSnapshot fetches orders, products, and reviews concurrently and
// assembles them into one immutable snapshot.
func (c *Client) FetchSnapshot(ctx context.Context) (*snapshot.Snapshot, error) {
	var (
		orders   []order.Order
		products []product.Product
		reviews  []review.Review
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		orders, err = c.FetchOrders(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		products, err = c.FetchProducts(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		reviews, err = c.FetchReviews(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return snapshot.New(time.Now(), orders, products, reviews), nil
}

// FetchOrders fetches and normalizes the order collection.
func (c *Client) FetchOrders(ctx context.Context) ([]order.Order, error) {
	rows, err := c.getCollection(ctx, "/orders", "orders")
	if err != nil {
		return nil, err
	}

	orders := make([]order.Order, 0, len(rows))
	for i, row := range rows {
		var dal orderDal
		if err := json.Unmarshal(row, &dal); err != nil {
			slog.Warn("Skipping malformed order row", "index", i, "error", err)
			continue
		}
		orders = append(orders, dal.ToModel(c.amountsInCents))
	}

	return orders, nil
}

// FetchProducts fetches and normalizes the product collection.
func (c *Client) FetchProducts(ctx context.Context) ([]product.Product, error) {
	rows, err := c.getCollection(ctx, "/products", "products")
	if err != nil {
		return nil, err
	}

	products := make([]product.Product, 0, len(rows))
	for i, row := range rows {
		var dal productDal
		if err := json.Unmarshal(row, &dal); err != nil {
			slog.Warn("Skipping malformed product row", "index", i, "error", err)
			continue
		}
		products = append(products, dal.ToModel())
	}

	return products, nil
}

// FetchReviews fetches and normalizes the review collection.
func (c *Client) FetchReviews(ctx context.Context) ([]review.Review, error) {
	rows, err := c.getCollection(ctx, "/reviews", "reviews")
	if err != nil {
		return nil, err
	}

	reviews := make([]review.Review, 0, len(rows))
	for i, row := range rows {
		var dal reviewDal
		if err := json.Unmarshal(row, &dal); err != nil {
			slog.Warn("Skipping malformed review row", "index", i, "error", err)
			continue
		}
		reviews = append(reviews, dal.ToModel())
	}

	return reviews, nil
}

// getCollection performs an authorized GET and returns the raw rows of the
// collection, whether the payload was a bare array or wrapped under key.
func (c *Client) getCollection(ctx context.Context, path, key string) ([]json.RawMessage, error) {
	tracer := otel.Tracer("commerce-client")
	ctx, span := tracer.Start(ctx, "GET "+path, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", path, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", path, err)
	}

	rows, err := decodeCollection(body, key)
	if err != nil {
		return nil, fmt.Errorf("decode %s response: %w", path, err)
	}

	return rows, nil
}

// decodeCollection accepts either a bare JSON array or an object wrapping the
// array under key.
func decodeCollection(body []byte, key string) ([]json.RawMessage, error) {
	var rows []json.RawMessage
	if err := json.Unmarshal(body, &rows); err == nil {
		return rows, nil
	}

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("payload is neither array nor object: %w", err)
	}
	if err := json.Unmarshal(wrapped[key], &rows); err != nil {
		return nil, fmt.Errorf("missing %q collection: %w", key, err)
	}

	return rows, nil
}
