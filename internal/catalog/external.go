package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/mock_cart/internal/domain"
)

const DefaultSourceURL = "https://api.escuelajs.co/api/v1/products"

// Client pulls products from the third-party catalog used for seeding.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(sourceURL string) *Client {
	if sourceURL == "" {
		sourceURL = DefaultSourceURL
	}
	return &Client{
		baseURL: sourceURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

type externalProduct struct {
	ID          int64            `json:"id"`
	Title       string           `json:"title"`
	Price       *decimal.Decimal `json:"price"`
	Description string           `json:"description"`
	Images      []any            `json:"images"`
	Category    *struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"category"`
}

func (c *Client) FetchProducts(ctx context.Context, offset, limit int) ([]domain.Product, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse source url: %w", err)
	}
	q := u.Query()
	q.Set("offset", strconv.Itoa(offset))
	q.Set("limit", strconv.Itoa(limit))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog source responded with status: %d", resp.StatusCode)
	}

	var raw []externalProduct
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	out := make([]domain.Product, 0, len(raw))
	for _, ep := range raw {
		if p, ok := mapExternal(ep); ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// mapExternal drops entries without a title or a positive price and keeps
// only absolute http image urls.
func mapExternal(ep externalProduct) (domain.Product, bool) {
	if strings.TrimSpace(ep.Title) == "" || ep.Price == nil || !ep.Price.IsPositive() {
		return domain.Product{}, false
	}

	images := make([]string, 0, len(ep.Images))
	for _, img := range ep.Images {
		s, ok := img.(string)
		if ok && strings.HasPrefix(s, "http") {
			images = append(images, s)
		}
	}

	p := domain.Product{
		ID:          ep.ID,
		Name:        ep.Title,
		Price:       *ep.Price,
		Description: ep.Description,
		Images:      images,
	}
	if ep.Category != nil {
		p.Category = domain.Category{ID: ep.Category.ID, Name: ep.Category.Name}
	}
	return p, true
}
