package crm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/qcdesk/qcbot/internal/apitime"
)

type customersResponse struct {
	envelope
	Customers []Customer `json:"customers"`
}

type customerMessagesResponse struct {
	envelope
	CustomerMessages []json.RawMessage `json:"customerMessages"`
}

// FindCustomerIDByPhone resolves a phone number to a customer ID: first
// through orders placed since the given time, then through the customer
// search. found is false when neither lookup matches.
func (c *Client) FindCustomerIDByPhone(ctx context.Context, phoneNumber string, since time.Time) (id int64, found bool, err error) {
	params := url.Values{}
	params.Set("filter[customer]", phoneNumber)
	params.Set("filter[createdAtFrom]", apitime.Format(since))

	var orders ordersResponse
	if err := c.get(ctx, "/orders", params, &orders); err != nil {
		return 0, false, err
	}
	if orders.Success && len(orders.Orders) > 0 && orders.Orders[0].Customer != nil {
		return orders.Orders[0].Customer.ID, true, nil
	}

	params = url.Values{}
	params.Set("filter[name]", phoneNumber)

	var customers customersResponse
	if err := c.get(ctx, "/customers", params, &customers); err != nil {
		return 0, false, err
	}
	if customers.Success && len(customers.Customers) > 0 {
		return customers.Customers[0].ID, true, nil
	}
	return 0, false, nil
}

// HasChatMessagesSince reports whether the customer wrote anything in the
// chat channel after the given time.
func (c *Client) HasChatMessagesSince(ctx context.Context, customerID int64, since time.Time) (bool, error) {
	params := url.Values{}
	params.Set("filter[customerIds][0]", fmt.Sprintf("%d", customerID))
	params.Set("filter[createdAtFrom]", apitime.Format(since))

	var resp customerMessagesResponse
	if err := c.get(ctx, "/customer-messages", params, &resp); err != nil {
		return false, err
	}
	return resp.Success && len(resp.CustomerMessages) > 0, nil
}
