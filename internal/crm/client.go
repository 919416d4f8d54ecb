// Package crm is a read-only client for the RetailCRM-style v5 JSON API:
// orders, tasks, users and customer chat messages. Every fetch happens fresh
// per report run; nothing is cached or persisted.
package crm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/qcdesk/qcbot/internal/metrics"
)

type Config struct {
	BaseURL  string        `split_words:"true" required:"true"`
	APIKey   string        `envconfig:"API_KEY" required:"true"`
	SiteCode string        `split_words:"true" required:"true"`
	PageSize int           `split_words:"true" default:"100"`
	Timeout  time.Duration `default:"30s"`
}

type Client struct {
	cfg  Config
	http *http.Client
}

func New(cfg Config) *Client {
	// Deployments sometimes configure the base URL with the API prefix
	// already attached; strip it so request paths do not double up.
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/api/v5")

	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

// OrderLink is the deep link into the CRM UI used in report detail lines.
func (c *Client) OrderLink(orderID int64) string {
	return fmt.Sprintf("%s/orders/%d/edit", c.cfg.BaseURL, orderID)
}

func (c *Client) CustomerLink(customerID int64) string {
	return fmt.Sprintf("%s/customers/%d/edit", c.cfg.BaseURL, customerID)
}

// envelope carries the fields common to every v5 list response.
type envelope struct {
	Success    bool        `json:"success"`
	ErrorMsg   string      `json:"errorMsg"`
	Pagination *pagination `json:"pagination"`
}

type pagination struct {
	CurrentPage    int `json:"currentPage"`
	TotalPageCount int `json:"totalPageCount"`
}

// lastPage reports whether the pagination metadata says there is nothing
// further to fetch.
func (e envelope) lastPage() bool {
	return e.Pagination == nil || e.Pagination.CurrentPage >= e.Pagination.TotalPageCount
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	err := c.doGet(ctx, path, params, out)
	metrics.ObserveUpstream("crm", err)
	return err
}

func (c *Client) doGet(ctx context.Context, path string, params url.Values, out any) error {
	params.Set("apiKey", c.cfg.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.cfg.BaseURL+"/api/v5"+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("building %s request: %w", path, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("requesting %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}
