// Package catalog fetches the option/location/item reference lists used to
// populate the query builder's pickers.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"querychat/internal/models"
)

var ErrCatalogUnavailable = errors.New("catalog unavailable")

const defaultTimeout = 10 * time.Second

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    hc,
	}
}

func (c *Client) Options(ctx context.Context, nameFilter string) ([]models.Option, error) {
	var out []models.Option
	if err := c.getJSON(ctx, "/api/options", "optionName", nameFilter, &out); err != nil {
		return nil, fmt.Errorf("list options: %w", err)
	}
	return out, nil
}

func (c *Client) Locations(ctx context.Context, typeFilter string) ([]models.Location, error) {
	var out []models.Location
	if err := c.getJSON(ctx, "/api/locations", "locationTypeFilter", typeFilter, &out); err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	return out, nil
}

func (c *Client) Items(ctx context.Context, categoryFilter string) ([]models.Item, error) {
	var out []models.Item
	if err := c.getJSON(ctx, "/api/items", "itemCategoryFilter", categoryFilter, &out); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, path, filterParam, filter string, out any) error {
	u := c.baseURL + path
	// "" and the "all" sentinel both mean unfiltered; send no parameter.
	if filter != "" && filter != "all" {
		q := url.Values{}
		q.Set(filterParam, filter)
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var body struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&body)
		if body.Error == "" {
			body.Error = http.StatusText(resp.StatusCode)
		}
		return fmt.Errorf("%w: status %d: %s", ErrCatalogUnavailable, resp.StatusCode, body.Error)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrCatalogUnavailable, err)
	}
	return nil
}
