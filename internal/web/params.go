package web

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/employees/internal/core"
)

// parseID reads and range-checks the {id} path parameter.
func parseID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, core.NewValidationError("id", "must be an integer")
	}
	if err := core.ValidateID(id); err != nil {
		return 0, err
	}
	return id, nil
}

// parseListQuery reads page, size, sortBy and month from the query string.
// Absent parameters take their defaults; non-integer values are rejected.
func parseListQuery(r *http.Request) (core.ListQuery, error) {
	q := core.DefaultListQuery()
	values := r.URL.Query()
	fields := map[string]string{}

	intParam := func(name string, dst *int) bool {
		raw := values.Get(name)
		if raw == "" {
			return false
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			fields[name] = "must be an integer"
			return false
		}
		*dst = n
		return true
	}

	intParam("page", &q.Page)
	intParam("size", &q.Size)
	q.ByMonth = intParam("month", &q.Month) || values.Has("month")
	if v := values.Get("sortBy"); v != "" {
		q.SortBy = v
	}

	if len(fields) > 0 {
		return core.ListQuery{}, &core.ValidationError{Fields: fields}
	}
	return q, nil
}
