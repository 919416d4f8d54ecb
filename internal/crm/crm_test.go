package crm

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qcdesk/qcbot/internal/timewindow"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{
		BaseURL:  srv.URL,
		APIKey:   "test-key",
		SiteCode: "main",
		PageSize: 2,
		Timeout:  5 * time.Second,
	})
}

func TestNewTrimsAPIPrefix(t *testing.T) {
	c := New(Config{BaseURL: "https://crm.example/api/v5/"})
	assert.Equal(t, "https://crm.example/orders/42/edit", c.OrderLink(42))
	assert.Equal(t, "https://crm.example/customers/7/edit", c.CustomerLink(7))

	c = New(Config{BaseURL: "https://crm.example"})
	assert.Equal(t, "https://crm.example/orders/42/edit", c.OrderLink(42))
}

func TestOrdersPagination(t *testing.T) {
	var pages []string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v5/orders", r.URL.Path)
		require.Equal(t, "test-key", r.URL.Query().Get("apiKey"))
		require.Equal(t, "main", r.URL.Query().Get("site"))
		require.Equal(t, "one-click", r.URL.Query().Get("filter[orderMethod][0]"))

		page := r.URL.Query().Get("page")
		pages = append(pages, page)
		switch page {
		case "1":
			fmt.Fprint(w, `{"success":true,"pagination":{"currentPage":1,"totalPageCount":2},
				"orders":[{"id":1,"number":"100","createdAt":"2024-03-13 11:00:00","phone":"89261234567"},
				          {"id":2,"number":"200","createdAt":"2024-03-13 12:00:00"}]}`)
		case "2":
			fmt.Fprint(w, `{"success":true,"pagination":{"currentPage":2,"totalPageCount":2},
				"orders":[{"id":3,"number":"300","createdAt":"2024-03-13 13:00:00",
				           "customer":{"id":55,"phones":[{"number":"+79160000000"}]}}]}`)
		default:
			t.Fatalf("unexpected page %q", page)
		}
	})

	from := time.Date(2024, 3, 13, 0, 0, 0, 0, timewindow.Zone)
	to := time.Date(2024, 3, 13, 23, 59, 59, 0, timewindow.Zone)
	orders, err := c.Orders(t.Context(), from, to, []string{"one-click"})
	require.NoError(t, err)
	require.Equal(t, []string{"1", "2"}, pages)
	require.Len(t, orders, 3)

	// Order-level phone wins; customer phone is the fallback.
	assert.Equal(t, "89261234567", orders[0].ContactPhone())
	assert.Equal(t, "", orders[1].ContactPhone())
	assert.Equal(t, "+79160000000", orders[2].ContactPhone())
}

func TestOrdersAPIError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success":false,"errorMsg":"wrong api key"}`)
	})

	_, err := c.Orders(t.Context(), time.Now(), time.Now(), nil)
	require.ErrorContains(t, err, "wrong api key")
}

func TestOrdersHTTPError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.Orders(t.Context(), time.Now(), time.Now(), nil)
	require.ErrorContains(t, err, "status 500")
}

func TestDedupeOrders(t *testing.T) {
	spillover := []Order{{ID: 1, Number: "100"}, {ID: 2, Number: "200"}}
	day := []Order{{ID: 2, Number: "200-dup"}, {ID: 3, Number: "300"}}

	merged := DedupeOrders(spillover, day)
	require.Len(t, merged, 3)
	// First occurrence wins.
	assert.Equal(t, "200", merged[1].Number)
}

func TestTasksFilterIsUTC(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v5/tasks", r.URL.Path)
		// 2024-03-13 00:00 at UTC+3 is 21:00 UTC on the 12th.
		require.Equal(t, "2024-03-12T21:00:00Z", r.URL.Query().Get("filter[dateFrom]"))
		fmt.Fprint(w, `{"success":true,"pagination":{"currentPage":1,"totalPageCount":1},
			"tasks":[{"id":1,"performer":10,"complete":true,"datetime":"2024-03-13 15:00"}]}`)
	})

	from := time.Date(2024, 3, 13, 0, 0, 0, 0, timewindow.Zone)
	tasks, err := c.Tasks(t.Context(), from, from.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, int64(10), tasks[0].Performer)
	assert.True(t, tasks[0].Complete)
}

func TestActiveManagers(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "1", r.URL.Query().Get("filter[isManager]"))
		require.Equal(t, "1", r.URL.Query().Get("filter[active]"))
		fmt.Fprint(w, `{"success":true,"pagination":{"currentPage":1,"totalPageCount":1},
			"users":[{"id":1,"firstName":"Anna","lastName":"Petrova"},
			         {"id":2,"email":"ops@example.com"},
			         {"id":3}]}`)
	})

	managers, err := c.ActiveManagers(t.Context())
	require.NoError(t, err)
	assert.Equal(t, map[int64]string{
		1: "Anna Petrova",
		2: "ops@example.com",
		3: "Manager 3",
	}, managers)
}

func TestFindCustomerIDByPhone(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v5/orders":
			require.Equal(t, "79261234567", r.URL.Query().Get("filter[customer]"))
			fmt.Fprint(w, `{"success":true,"orders":[{"id":1,"customer":{"id":55}}]}`)
		default:
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
	})

	id, found, err := c.FindCustomerIDByPhone(t.Context(), "79261234567", time.Now())
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, int64(55), id)
}

func TestFindCustomerIDByPhoneFallsBackToSearch(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v5/orders":
			fmt.Fprint(w, `{"success":true,"orders":[]}`)
		case "/api/v5/customers":
			require.Equal(t, "79261234567", r.URL.Query().Get("filter[name]"))
			fmt.Fprint(w, `{"success":true,"customers":[{"id":77}]}`)
		default:
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
	})

	id, found, err := c.FindCustomerIDByPhone(t.Context(), "79261234567", time.Now())
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, int64(77), id)
}

func TestHasChatMessagesSince(t *testing.T) {
	empty := false
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v5/customer-messages", r.URL.Path)
		require.Equal(t, "55", r.URL.Query().Get("filter[customerIds][0]"))
		if empty {
			fmt.Fprint(w, `{"success":true,"customerMessages":[]}`)
			return
		}
		fmt.Fprint(w, `{"success":true,"customerMessages":[{"id":1}]}`)
	})

	has, err := c.HasChatMessagesSince(t.Context(), 55, time.Now())
	require.NoError(t, err)
	assert.True(t, has)

	empty = true
	has, err = c.HasChatMessagesSince(t.Context(), 55, time.Now())
	require.NoError(t, err)
	assert.False(t, has)
}
