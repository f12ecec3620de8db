package usecase

import (
	"sort"
	"strings"
	"time"
)

const DefaultPageSize = 10

// DateRange is inclusive on both ends. A nil bound leaves that side open.
type DateRange struct {
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`
}

func (r DateRange) IsZero() bool {
	return r.From == nil && r.To == nil
}

// Contains reports whether t lies within the bounds. A missing date is outside any set range.
func (r DateRange) Contains(t *time.Time) bool {
	if r.IsZero() {
		return true
	}
	if t == nil {
		return false
	}
	if r.From != nil && t.Before(*r.From) {
		return false
	}
	if r.To != nil && t.After(*r.To) {
		return false
	}
	return true
}

// ContainsLenient is Contains for list filtering: records without a date pass.
func (r DateRange) ContainsLenient(t *time.Time) bool {
	if t == nil {
		return true
	}
	return r.Contains(t)
}

// Select is a multi-select field filter: OR within the options, case-insensitive.
type Select[T any] struct {
	Value   func(T) string
	Options []string
}

func (s Select[T]) match(rec T) bool {
	if len(s.Options) == 0 {
		return true
	}
	v := strings.TrimSpace(s.Value(rec))
	for _, opt := range s.Options {
		if strings.EqualFold(strings.TrimSpace(opt), v) {
			return true
		}
	}
	return false
}

// FilterSpec is a conjunction of a free-text search, multi-select filters and a date range.
type FilterSpec[T any] struct {
	Search       string
	SearchFields []func(T) string
	Selects      []Select[T]
	DateField    func(T) *time.Time
	Range        DateRange
}

func (f FilterSpec[T]) Match(rec T) bool {
	if term := normalizeText(f.Search); term != "" {
		found := false
		for _, field := range f.SearchFields {
			if strings.Contains(normalizeText(field(rec)), term) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	for _, sel := range f.Selects {
		if !sel.match(rec) {
			return false
		}
	}

	if f.DateField != nil && !f.Range.ContainsLenient(f.DateField(rec)) {
		return false
	}
	return true
}

// Filter returns the matching records in input order. The input slice is not modified.
func Filter[T any](records []T, spec FilterSpec[T]) []T {
	out := make([]T, 0, len(records))
	for _, rec := range records {
		if spec.Match(rec) {
			out = append(out, rec)
		}
	}
	return out
}

type SortDirection string

const (
	SortNone SortDirection = ""
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

type SortState struct {
	Field     string        `json:"field,omitempty"`
	Direction SortDirection `json:"direction,omitempty"`
}

// Toggle advances asc -> desc -> none on the same field and restarts at asc on a new one.
func (s SortState) Toggle(field string) SortState {
	if s.Field != field || s.Direction == SortNone {
		return SortState{Field: field, Direction: SortAsc}
	}
	if s.Direction == SortAsc {
		return SortState{Field: field, Direction: SortDesc}
	}
	return SortState{}
}

func (s SortState) Active() bool {
	return s.Field != "" && s.Direction != SortNone
}

// SortKey describes how one field compares. Exactly one accessor is set.
type SortKey[T any] struct {
	String func(T) string
	Number func(T) float64
	Time   func(T) *time.Time
}

func (k SortKey[T]) compare(a, b T) int {
	switch {
	case k.Number != nil:
		x, y := k.Number(a), k.Number(b)
		if x < y {
			return -1
		}
		if x > y {
			return 1
		}
		return 0
	case k.Time != nil:
		return timeOrZero(k.Time(a)).Compare(timeOrZero(k.Time(b)))
	case k.String != nil:
		return strings.Compare(strings.ToLower(k.String(a)), strings.ToLower(k.String(b)))
	}
	return 0
}

func timeOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

// Sorter maps sortable field names to their keys.
type Sorter[T any] map[string]SortKey[T]

// Sort returns a stably sorted copy. Unknown fields and an inactive state keep input order.
func (s Sorter[T]) Sort(records []T, state SortState) []T {
	out := make([]T, len(records))
	copy(out, records)

	key, ok := s[state.Field]
	if !ok || !state.Active() {
		return out
	}

	sort.SliceStable(out, func(i, j int) bool {
		c := key.compare(out[i], out[j])
		if state.Direction == SortDesc {
			return c > 0
		}
		return c < 0
	})
	return out
}

type Page[T any] struct {
	Items      []T `json:"items"`
	TotalCount int `json:"total_count"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
}

// Paginate reports page clamped into [1, max(1, ceil(total/size))] and never
// fails. The window is taken from the requested index bounded to total, so a
// page past the end is empty and consecutive pages never overlap.
func Paginate[T any](records []T, page, size int) Page[T] {
	if size <= 0 {
		size = DefaultPageSize
	}
	total := len(records)
	totalPages := max(1, (total+size-1)/size)
	requested := max(page, 1)

	start := min((requested-1)*size, total)
	end := min(start+size, total)

	items := make([]T, end-start)
	copy(items, records[start:end])

	return Page[T]{
		Items:      items,
		TotalCount: total,
		Page:       min(requested, totalPages),
		PageSize:   size,
		TotalPages: totalPages,
	}
}

// Apply filters, sorts and paginates records without touching the input.
func Apply[T any](records []T, spec FilterSpec[T], sorter Sorter[T], state SortState, page, size int) Page[T] {
	return Paginate(sorter.Sort(Filter(records, spec), state), page, size)
}
