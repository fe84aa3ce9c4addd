// Package listing filters and paginates in-memory display records.
package listing

import (
	"net/url"
	"strconv"
	"strings"
)

// StatusAll matches every status.
const StatusAll = "all"

// DefaultPageSize is used when a query omits or garbles page_size.
const DefaultPageSize = 10

// MaxPageSize bounds page_size from query strings.
const MaxPageSize = 200

// Query is a parsed list request.
type Query struct {
	Search   string
	Status   string
	Date     string // YYYY-MM-DD, empty for any
	Page     int
	PageSize int
}

// Fields extracts the searchable, status and date values from a record.
// Search may return one to three fields; Date may be nil when the record has no date.
type Fields[T any] struct {
	Search func(T) []string
	Status func(T) string
	Date   func(T) string
}

// Filter returns the records matching q, preserving input order.
// The result never contains a record absent from items.
func Filter[T any](items []T, q Query, f Fields[T]) []T {
	term := strings.ToLower(strings.TrimSpace(q.Search))
	status := strings.ToLower(strings.TrimSpace(q.Status))
	date := strings.TrimSpace(q.Date)

	out := make([]T, 0, len(items))
	for _, item := range items {
		if term != "" && (f.Search == nil || !matchesAny(f.Search(item), term)) {
			continue
		}
		if status != "" && status != StatusAll && f.Status != nil && strings.ToLower(f.Status(item)) != status {
			continue
		}
		if date != "" && f.Date != nil && f.Date(item) != date {
			continue
		}
		out = append(out, item)
	}
	return out
}

func matchesAny(fields []string, term string) bool {
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

// Page is one slice of a paginated list.
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

// TotalPages returns the page count for n items, never less than one.
func TotalPages(n, pageSize int) int {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if n <= 0 {
		return 1
	}
	return (n + pageSize - 1) / pageSize
}

// ClampPage moves page into [1, total].
func ClampPage(page, total int) int {
	if page < 1 {
		return 1
	}
	if page > total {
		return total
	}
	return page
}

// Paginate returns the requested page, clamping out-of-range page numbers.
func Paginate[T any](items []T, page, pageSize int) Page[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	total := TotalPages(len(items), pageSize)
	page = ClampPage(page, total)

	start := (page - 1) * pageSize
	end := min(start+pageSize, len(items))
	slice := make([]T, 0, end-start)
	slice = append(slice, items[start:end]...)

	return Page[T]{
		Items:      slice,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: len(items),
		TotalPages: total,
	}
}

// ParseQuery reads q, status, date, page and page_size. Invalid numbers fall back to defaults.
func ParseQuery(v url.Values, defaultPageSize int) Query {
	if defaultPageSize <= 0 {
		defaultPageSize = DefaultPageSize
	}
	q := Query{
		Search:   v.Get("q"),
		Status:   v.Get("status"),
		Date:     v.Get("date"),
		Page:     1,
		PageSize: defaultPageSize,
	}
	if n, err := strconv.Atoi(v.Get("page")); err == nil {
		q.Page = n
	}
	if n, err := strconv.Atoi(v.Get("page_size")); err == nil && n > 0 {
		q.PageSize = min(n, MaxPageSize)
	}
	return q
}
