package crm

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/qcdesk/qcbot/internal/apitime"
)

// Order intake channels the SLA analysis cares about. Orders arriving through
// other channels (marketplaces, imports) have no first-contact obligation.
var DefaultOrderMethods = []string{
	"one-click",
	"zadat-vopros",
	"zakazat-uslugu",
	"shopping-cart",
	"khotite-uvidet-foto",
}

type Order struct {
	ID          int64     `json:"id"`
	Number      string    `json:"number"`
	CreatedAt   string    `json:"createdAt"`
	Phone       string    `json:"phone"`
	OrderMethod string    `json:"orderMethod"`
	Customer    *Customer `json:"customer"`
}

type Customer struct {
	ID         int64           `json:"id"`
	FirstName  string          `json:"firstName"`
	LastName   string          `json:"lastName"`
	Patronymic string          `json:"patronymic"`
	Phones     []CustomerPhone `json:"phones"`
}

type CustomerPhone struct {
	Number string `json:"number"`
}

// ContactPhone returns the order-level phone, falling back to the customer's
// first phone record. Empty when neither location is filled.
func (o Order) ContactPhone() string {
	if o.Phone != "" {
		return o.Phone
	}
	if o.Customer != nil && len(o.Customer.Phones) > 0 {
		return o.Customer.Phones[0].Number
	}
	return ""
}

type ordersResponse struct {
	envelope
	Orders []Order `json:"orders"`
}

// Orders fetches every order created within [from, to], optionally filtered
// by order-method codes, following pagination to the last page. A failed
// fetch is an error, never an empty slice: zero orders is a legitimate,
// reportable outcome and must stay distinguishable.
func (c *Client) Orders(ctx context.Context, from, to time.Time, methods []string) ([]Order, error) {
	var all []Order
	for page := 1; ; page++ {
		params := url.Values{}
		params.Set("site", c.cfg.SiteCode)
		params.Set("page", strconv.Itoa(page))
		params.Set("limit", strconv.Itoa(c.cfg.PageSize))
		params.Set("filter[createdAtFrom]", apitime.Format(from))
		params.Set("filter[createdAtTo]", apitime.Format(to))
		for i, m := range methods {
			params.Set(fmt.Sprintf("filter[orderMethod][%d]", i), m)
		}

		var resp ordersResponse
		if err := c.get(ctx, "/orders", params, &resp); err != nil {
			return nil, err
		}
		if !resp.Success {
			return nil, fmt.Errorf("orders.list failed: %s", resp.ErrorMsg)
		}
		if len(resp.Orders) == 0 {
			break
		}
		all = append(all, resp.Orders...)
		if resp.lastPage() {
			break
		}
	}
	return all, nil
}

// DedupeOrders merges batches keeping the first occurrence of each order ID.
// The same order can come back from multiple window or origin queries.
func DedupeOrders(batches ...[]Order) []Order {
	seen := make(map[int64]struct{})
	var merged []Order
	for _, batch := range batches {
		for _, o := range batch {
			if _, ok := seen[o.ID]; ok {
				continue
			}
			seen[o.ID] = struct{}{}
			merged = append(merged, o)
		}
	}
	return merged
}
