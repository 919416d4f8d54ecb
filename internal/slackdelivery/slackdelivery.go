// Package slackdelivery posts an assembled report to a Slack channel. A
// report longer than one message allows is split at line boundaries and the
// chunks are sent strictly in order with a pause between them, so the
// transport's rate limit is respected and readers see the report top-down.
package slackdelivery

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/slack-go/slack"
	"golang.org/x/time/rate"

	"github.com/qcdesk/qcbot/internal/metrics"
)

type Config struct {
	BotToken string `split_words:"true" required:"true"`
	Channel  string `required:"true"`

	// MessageLimit is the transport's single-message size cap in bytes.
	MessageLimit int `split_words:"true" default:"4000"`

	// MessagesPerSecond paces chunk delivery.
	MessagesPerSecond float64 `split_words:"true" default:"1"`
}

type Client struct {
	api     *slack.Client
	limiter *rate.Limiter
	channel string
	limit   int
}

func New(cfg Config) *Client {
	return &Client{
		api:     slack.New(cfg.BotToken),
		limiter: rate.NewLimiter(rate.Limit(cfg.MessagesPerSecond), 1),
		channel: cfg.Channel,
		limit:   cfg.MessageLimit,
	}
}

// Deliver posts text as one or more ordered messages. The first failed chunk
// aborts the remainder; a half-delivered report with a visible error beats
// chunks arriving out of order.
func (c *Client) Deliver(ctx context.Context, text string) error {
	chunks := Split(text, c.limit)
	for i, chunk := range chunks {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("waiting to post chunk %d/%d: %w", i+1, len(chunks), err)
		}
		_, _, err := c.api.PostMessageContext(ctx, c.channel,
			slack.MsgOptionText(chunk, false),
			slack.MsgOptionDisableLinkUnfurl(),
		)
		if err != nil {
			metrics.MessagesDelivered.WithLabelValues("error").Inc()
			return fmt.Errorf("posting chunk %d/%d: %w", i+1, len(chunks), err)
		}
		metrics.MessagesDelivered.WithLabelValues("ok").Inc()
		slog.DebugContext(ctx, "posted report chunk", "chunk", i+1, "of", len(chunks), "bytes", len(chunk))
	}
	return nil
}

// Split cuts text into pieces no longer than limit bytes. Each cut lands on
// the latest line boundary within the limit; when no newline falls inside the
// last tenth of the limit the text is cut hard instead of wasting most of a
// message. Hard cuts back off to a rune boundary.
func Split(text string, limit int) []string {
	if limit <= 0 || len(text) <= limit {
		return []string{text}
	}

	var chunks []string
	rest := text
	for len(rest) > limit {
		if idx := strings.LastIndexByte(rest[:limit], '\n'); idx >= limit-limit/10 {
			chunks = append(chunks, rest[:idx])
			rest = rest[idx+1:]
			continue
		}

		cut := limit
		for cut > 0 && !utf8.RuneStart(rest[cut]) {
			cut--
		}
		chunks = append(chunks, rest[:cut])
		rest = rest[cut:]
	}
	if rest != "" {
		chunks = append(chunks, rest)
	}
	return chunks
}
