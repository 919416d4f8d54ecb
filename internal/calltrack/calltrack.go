// Package calltrack is a client for the UIS-style call-tracking data API,
// a JSON-RPC 2.0 endpoint returning call-detail records.
package calltrack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/qcdesk/qcbot/internal/apitime"
	"github.com/qcdesk/qcbot/internal/metrics"
)

type Config struct {
	BaseURL     string        `split_words:"true" default:"https://dataapi.uiscom.ru/v2.0"`
	AccessToken string        `split_words:"true" required:"true"`
	Timeout     time.Duration `default:"30s"`
}

type Client struct {
	cfg  Config
	http *http.Client
}

func New(cfg Config) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

const (
	DirectionIn  = "in"
	DirectionOut = "out"
)

type Call struct {
	Direction           string  `json:"direction"`
	ContactPhoneNumber  string  `json:"contact_phone_number"`
	StartTime           string  `json:"start_time"`
	IsLost              bool    `json:"is_lost"`
	CallSessionDuration float64 `json:"call_session_duration"`
}

// StartedAt parses the record's start time. Records with unparseable
// timestamps are dropped by callers with a warning; they never abort a batch.
func (c Call) StartedAt() (time.Time, error) {
	return apitime.Parse(c.StartTime)
}

type rpcRequest struct {
	ID      string         `json:"id"`
	JSONRPC string         `json:"jsonrpc"`
	Method  string         `json:"method"`
	Params  map[string]any `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type callsReportResponse struct {
	Error  *rpcError `json:"error"`
	Result struct {
		Data []Call `json:"data"`
	} `json:"result"`
}

// CallsReport fetches the call log for [from, to]. The range is rendered in
// the business timezone with second precision, as the API expects. A single
// request covers the whole range; the endpoint is not paginated.
func (c *Client) CallsReport(ctx context.Context, from, to time.Time) ([]Call, error) {
	calls, err := c.callsReport(ctx, from, to)
	metrics.ObserveUpstream("calltrack", err)
	return calls, err
}

func (c *Client) callsReport(ctx context.Context, from, to time.Time) ([]Call, error) {
	payload := rpcRequest{
		ID:      "1",
		JSONRPC: "2.0",
		Method:  "get.calls_report",
		Params: map[string]any{
			"access_token": c.cfg.AccessToken,
			"date_from":    apitime.Format(from),
			"date_till":    apitime.Format(to),
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling %s request: %w", payload.Method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building %s request: %w", payload.Method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting %s: %w", payload.Method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned status %d", payload.Method, resp.StatusCode)
	}

	var result callsReportResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding %s response: %w", payload.Method, err)
	}
	if result.Error != nil {
		return nil, fmt.Errorf("%s failed: %s (code %d)", payload.Method, result.Error.Message, result.Error.Code)
	}
	return result.Result.Data, nil
}
