package sections

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qcdesk/qcbot/internal/timewindow"
)

func TestTasksLines(t *testing.T) {
	crmClient := testCRM(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v5/users":
			fmt.Fprint(w, `{"success":true,"pagination":{"currentPage":1,"totalPageCount":1},
				"users":[{"id":10,"firstName":"Anna","lastName":"Petrova"},
				         {"id":20,"firstName":"Boris","lastName":"Ivanov"}]}`)
		case "/api/v5/tasks":
			// Anna: one done, one deferred to the next day, one simply not
			// done. Boris: all done. Performer 99 is not an active manager.
			fmt.Fprint(w, `{"success":true,"pagination":{"currentPage":1,"totalPageCount":1},
				"tasks":[
					{"id":1,"performer":10,"complete":true,"datetime":"2024-03-13 12:00:00"},
					{"id":2,"performer":10,"complete":false,"datetime":"2024-03-14 10:00:00"},
					{"id":3,"performer":10,"complete":false,"datetime":"2024-03-13 16:00:00"},
					{"id":4,"performer":20,"complete":true,"datetime":"2024-03-13 09:30:00"},
					{"id":5,"performer":99,"complete":false,"datetime":"2024-03-13 10:00:00"}
				]}`)
		default:
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
	})

	section := NewTasks(crmClient)
	lines, err := section.Lines(t.Context(), timewindow.Compute(reportDay, 21))
	require.NoError(t, err)

	require.Len(t, lines, 3)
	assert.Equal(t, "1. Unfinished task check: 4", lines[0])
	// Sorted by name; Anna has an unaccounted task and gets the mark.
	assert.Equal(t, "Anna - assigned 3/completed 1 (deferred 1)❗", lines[1])
	assert.Equal(t, "Boris - assigned 1/completed 1 (deferred 0)", lines[2])
}

func TestTasksManagersFetchFailure(t *testing.T) {
	crmClient := testCRM(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := NewTasks(crmClient).Lines(t.Context(), timewindow.Compute(reportDay, 21))
	require.Error(t, err)
}
