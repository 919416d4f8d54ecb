package crm

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// DisplayName is "First Last", the email when both names are blank, and a
// synthetic label as the last resort.
func (u User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name != "" {
		return name
	}
	if u.Email != "" {
		return u.Email
	}
	return fmt.Sprintf("Manager %d", u.ID)
}

type usersResponse struct {
	envelope
	Users []User `json:"users"`
}

// ActiveManagers returns id -> display name for every active user flagged as
// a manager.
func (c *Client) ActiveManagers(ctx context.Context) (map[int64]string, error) {
	managers := make(map[int64]string)
	for page := 1; ; page++ {
		params := url.Values{}
		params.Set("page", strconv.Itoa(page))
		params.Set("limit", strconv.Itoa(c.cfg.PageSize))
		params.Set("filter[isManager]", "1")
		params.Set("filter[active]", "1")

		var resp usersResponse
		if err := c.get(ctx, "/users", params, &resp); err != nil {
			return nil, err
		}
		if !resp.Success {
			return nil, fmt.Errorf("users.list failed: %s", resp.ErrorMsg)
		}
		for _, u := range resp.Users {
			managers[u.ID] = u.DisplayName()
		}
		if len(resp.Users) == 0 || resp.lastPage() {
			break
		}
	}
	return managers, nil
}
