package crm

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// Task is a manager to-do item. Due holds the task's scheduled completion
// time ("datetime" in the API), distinct from CreatedAt.
type Task struct {
	ID        int64  `json:"id"`
	Performer int64  `json:"performer"`
	Complete  bool   `json:"complete"`
	CreatedAt string `json:"createdAt"`
	Due       string `json:"datetime"`
}

type tasksResponse struct {
	envelope
	Tasks []Task `json:"tasks"`
}

// The tasks endpoint takes its range filter in UTC with the ISO "Z" suffix,
// unlike the orders endpoint.
const taskFilterLayout = "2006-01-02T15:04:05Z"

// Tasks fetches all tasks whose due time falls within [from, to].
func (c *Client) Tasks(ctx context.Context, from, to time.Time) ([]Task, error) {
	var all []Task
	for page := 1; ; page++ {
		params := url.Values{}
		params.Set("page", strconv.Itoa(page))
		params.Set("limit", strconv.Itoa(c.cfg.PageSize))
		params.Set("filter[dateFrom]", from.UTC().Format(taskFilterLayout))
		params.Set("filter[dateTo]", to.UTC().Format(taskFilterLayout))

		var resp tasksResponse
		if err := c.get(ctx, "/tasks", params, &resp); err != nil {
			return nil, err
		}
		if !resp.Success {
			return nil, fmt.Errorf("tasks.list failed: %s", resp.ErrorMsg)
		}
		all = append(all, resp.Tasks...)
		if len(resp.Tasks) == 0 || resp.lastPage() {
			break
		}
	}
	return all, nil
}
