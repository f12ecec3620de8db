package handlers

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/xavierca1/coach-crm/internal/usecase"
)

const dateLayout = "2006-01-02"

// listParam accepts both repeated keys and comma separated values.
func listParam(q url.Values, key string) []string {
	var out []string
	for _, raw := range q[key] {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

func intParam(q url.Values, key string) int {
	n, err := strconv.Atoi(q.Get(key))
	if err != nil {
		return 0
	}
	return n
}

// parseRange reads from/to as dates or RFC 3339 timestamps. A date-only "to" covers that whole day.
func parseRange(q url.Values) (usecase.DateRange, usecase.ValidationErrors) {
	var r usecase.DateRange
	var errs usecase.ValidationErrors

	if raw := strings.TrimSpace(q.Get("from")); raw != "" {
		t, _, err := parseDate(raw)
		if err != nil {
			errs = append(errs, usecase.ValidationError{Field: "from", Message: "must be a date (YYYY-MM-DD) or RFC 3339 timestamp"})
		} else {
			r.From = &t
		}
	}
	if raw := strings.TrimSpace(q.Get("to")); raw != "" {
		t, dateOnly, err := parseDate(raw)
		if err != nil {
			errs = append(errs, usecase.ValidationError{Field: "to", Message: "must be a date (YYYY-MM-DD) or RFC 3339 timestamp"})
		} else {
			if dateOnly {
				t = t.Add(24*time.Hour - time.Nanosecond)
			}
			r.To = &t
		}
	}
	if r.From != nil && r.To != nil && r.To.Before(*r.From) {
		errs = append(errs, usecase.ValidationError{Field: "to", Message: "must not be before from"})
	}
	return r, errs
}

func parseDate(raw string) (time.Time, bool, error) {
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	return t, false, err
}

func sortParam(q url.Values) usecase.SortState {
	field := strings.TrimSpace(q.Get("sort"))
	if field == "" {
		return usecase.SortState{}
	}
	dir := usecase.SortAsc
	if strings.EqualFold(q.Get("dir"), string(usecase.SortDesc)) {
		dir = usecase.SortDesc
	}
	return usecase.SortState{Field: field, Direction: dir}
}
