// Package listview turns an in-memory record list plus transient table state
// (search text, sort keys, page) into the page of rows to render.
//
// Every table declares its fields up front. Only declared text and number
// fields take part in search; booleans, dates and nested records never do
// unless the table flattens them into a text field.
package listview

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

const DefaultPageSize = 10

var ErrUnknownField = errors.New("listview: unknown sort field")

// SortKey orders by one field. Keys are applied in slice order.
type SortKey struct {
	Field string
	Desc  bool
}

// Query is the transient table state coming from the UI.
type Query struct {
	Text string
	Sort []SortKey
	Page int
}

// Action is a row-level operation offered next to a record.
type Action struct {
	Name   string
	Label  string
	Method string // GET or POST
	URL    string
	Danger bool
}

type Row[T any] struct {
	Item    T
	Actions []Action
}

type Page[T any] struct {
	Rows       []Row[T]
	TotalItems int
	PageCount  int
	Page       int
	PageSize   int
}

func (p Page[T]) HasPrev() bool { return p.Page > 0 }
func (p Page[T]) HasNext() bool { return p.Page+1 < p.PageCount }

// Table is the declared shape of one list screen.
type Table[T any] struct {
	Fields   []Field[T]
	Actions  func(T) []Action
	PageSize int
}

func (t *Table[T]) field(key string) (Field[T], bool) {
	for _, f := range t.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field[T]{}, false
}

func (t *Table[T]) pageSize() int {
	if t.PageSize <= 0 {
		return DefaultPageSize
	}
	return t.PageSize
}

// Filter keeps the items where at least one searchable field contains text,
// ignoring case. The input is not modified.
func (t *Table[T]) Filter(items []T, text string) []T {
	if text == "" {
		return slices.Clone(items)
	}
	needle := fold(text)
	out := make([]T, 0, len(items))
	for _, item := range items {
		if t.matches(item, needle) {
			out = append(out, item)
		}
	}
	return out
}

func (t *Table[T]) matches(item T, needle string) bool {
	for _, f := range t.Fields {
		if !f.Searchable {
			continue
		}
		v := f.get(item)
		if !v.present {
			continue
		}
		if strings.Contains(fold(v.text()), needle) {
			return true
		}
	}
	return false
}

// Sort returns a stably sorted copy of items. Missing values sort before
// present ones; Desc reverses that along with everything else.
func (t *Table[T]) Sort(items []T, keys []SortKey) ([]T, error) {
	out := slices.Clone(items)
	if len(keys) == 0 {
		return out, nil
	}
	fields := make([]Field[T], len(keys))
	for i, k := range keys {
		f, ok := t.field(k.Field)
		if !ok || !f.Sortable {
			return nil, fmt.Errorf("%w: %q", ErrUnknownField, k.Field)
		}
		fields[i] = f
	}
	slices.SortStableFunc(out, func(a, b T) int {
		for i, f := range fields {
			c := compare(f.get(a), f.get(b))
			if c == 0 {
				continue
			}
			if keys[i].Desc {
				return -c
			}
			return c
		}
		return 0
	})
	return out, nil
}

// Apply filters and sorts without paginating.
func (t *Table[T]) Apply(items []T, q Query) ([]T, error) {
	return t.Sort(t.Filter(items, q.Text), q.Sort)
}

// View filters, sorts and paginates items, deriving row actions for the
// visible page. An out of range page is clamped to the last one.
func (t *Table[T]) View(items []T, q Query) (Page[T], error) {
	sorted, err := t.Apply(items, q)
	if err != nil {
		return Page[T]{}, err
	}
	size := t.pageSize()
	visible, page, pageCount := Paginate(sorted, q.Page, size)

	rows := make([]Row[T], len(visible))
	for i, item := range visible {
		rows[i] = Row[T]{Item: item}
		if t.Actions != nil {
			rows[i].Actions = t.Actions(item)
		}
	}
	return Page[T]{
		Rows:       rows,
		TotalItems: len(sorted),
		PageCount:  pageCount,
		Page:       page,
		PageSize:   size,
	}, nil
}

// Paginate returns the items of the requested page along with the clamped
// page index and the page count.
func Paginate[T any](items []T, page, size int) ([]T, int, int) {
	if size <= 0 {
		size = DefaultPageSize
	}
	total := len(items)
	pageCount := (total + size - 1) / size
	if pageCount == 0 {
		return []T{}, 0, 0
	}
	if page >= pageCount {
		page = pageCount - 1
	}
	if page < 0 {
		page = 0
	}
	start := page * size
	end := min(start+size, total)
	return items[start:end], page, pageCount
}
