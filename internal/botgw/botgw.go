// Package botgw is a client for the messaging/bot gateway: active dialogs and
// their recent messages. Both endpoints return bare JSON arrays and
// authenticate through the X-Bot-Token header.
package botgw

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/qcdesk/qcbot/internal/metrics"
)

type Config struct {
	BaseURL string        `split_words:"true" default:"https://mg-s1.retailcrm.pro/api/bot/v1"`
	Token   string        `required:"true"`
	Timeout time.Duration `default:"15s"`
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

type Dialog struct {
	ChatID int64
}

// The gateway has shipped both key spellings over time.
func (d *Dialog) UnmarshalJSON(b []byte) error {
	var raw struct {
		ChatID      *int64 `json:"chatId"`
		ChatIDSnake *int64 `json:"chat_id"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch {
	case raw.ChatID != nil:
		d.ChatID = *raw.ChatID
	case raw.ChatIDSnake != nil:
		d.ChatID = *raw.ChatIDSnake
	}
	return nil
}

const SenderCustomer = "customer"

type Message struct {
	CreatedAt string `json:"createdAt"`
	Sender    struct {
		Type string `json:"type"`
	} `json:"sender"`
}

// ActiveDialogs pages through the active-dialog list, stopping at max
// dialogs or the first empty page.
func (c *Client) ActiveDialogs(ctx context.Context, max int) ([]Dialog, error) {
	var all []Dialog
	for page := 1; len(all) < max; page++ {
		params := url.Values{}
		params.Set("active", "true")
		params.Set("limit", "100")
		params.Set("page", strconv.Itoa(page))

		var batch []Dialog
		if err := c.get(ctx, "/dialogs", params, &batch); err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			break
		}
		all = append(all, batch...)
	}
	if len(all) > max {
		all = all[:max]
	}
	return all, nil
}

// DialogMessages returns the newest messages of one chat, most recent first.
func (c *Client) DialogMessages(ctx context.Context, chatID int64, limit int) ([]Message, error) {
	params := url.Values{}
	params.Set("chatId", strconv.FormatInt(chatID, 10))
	params.Set("limit", strconv.Itoa(limit))
	params.Set("order", "desc")

	var messages []Message
	if err := c.get(ctx, "/messages", params, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	err := c.doGet(ctx, path, params, out)
	metrics.ObserveUpstream("botgw", err)
	return err
}

func (c *Client) doGet(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.cfg.BaseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("building %s request: %w", path, err)
	}
	req.Header.Set("X-Bot-Token", c.cfg.Token)
	req.Header.Set("Content-Type", "application/json")

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
