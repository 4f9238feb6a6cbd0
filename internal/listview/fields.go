package listview

import (
	"cmp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

type Kind int

const (
	KindText Kind = iota
	KindNumber
	KindDate
	KindFlag
)

const DateLayout = "2006-01-02 15:04"

// FormatDate renders a timestamp in UTC the same way on screens and in
// exports. The zero time renders empty.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(DateLayout)
}

type value struct {
	present bool
	kind    Kind
	s       string
	n       float64
	t       time.Time
	b       bool
}

func (v value) text() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.n, 'f', -1, 64)
	case KindDate:
		return FormatDate(v.t)
	case KindFlag:
		if v.b {
			return "Active"
		}
		return "Inactive"
	default:
		return v.s
	}
}

// Field is one declared column of a table.
type Field[T any] struct {
	Key        string
	Label      string
	Kind       Kind
	Searchable bool
	Sortable   bool
	get        func(T) value
}

// Display renders the field for a table cell. Missing values render empty.
func (f Field[T]) Display(item T) string {
	v := f.get(item)
	if !v.present {
		return ""
	}
	return v.text()
}

// Value returns the typed value: string, float64, time.Time or bool. Missing
// values are nil.
func (f Field[T]) Value(item T) any {
	v := f.get(item)
	if !v.present {
		return nil
	}
	switch v.kind {
	case KindNumber:
		return v.n
	case KindDate:
		return v.t
	case KindFlag:
		return v.b
	default:
		return v.s
	}
}

// NoSearch excludes the field from free-text search.
func (f Field[T]) NoSearch() Field[T] {
	f.Searchable = false
	return f
}

// NoSort makes the field unsortable.
func (f Field[T]) NoSort() Field[T] {
	f.Sortable = false
	return f
}

// Text declares a string field. The empty string counts as missing.
func Text[T any](key, label string, fn func(T) string) Field[T] {
	return Field[T]{
		Key: key, Label: label, Kind: KindText, Searchable: true, Sortable: true,
		get: func(item T) value {
			s := fn(item)
			return value{present: s != "", kind: KindText, s: s}
		},
	}
}

// Number declares a numeric field, searchable in its shortest decimal form.
func Number[T any](key, label string, fn func(T) float64) Field[T] {
	return Field[T]{
		Key: key, Label: label, Kind: KindNumber, Searchable: true, Sortable: true,
		get: func(item T) value {
			return value{present: true, kind: KindNumber, n: fn(item)}
		},
	}
}

// Date declares a timestamp field. The zero time counts as missing.
func Date[T any](key, label string, fn func(T) time.Time) Field[T] {
	return Field[T]{
		Key: key, Label: label, Kind: KindDate, Sortable: true,
		get: func(item T) value {
			t := fn(item)
			return value{present: !t.IsZero(), kind: KindDate, t: t}
		},
	}
}

// Flag declares a boolean field. It sorts false before true and never
// takes part in search.
func Flag[T any](key, label string, fn func(T) bool) Field[T] {
	return Field[T]{
		Key: key, Label: label, Kind: KindFlag, Sortable: true,
		get: func(item T) value {
			return value{present: true, kind: KindFlag, b: fn(item)}
		},
	}
}

func compare(a, b value) int {
	switch {
	case !a.present && !b.present:
		return 0
	case !a.present:
		return -1
	case !b.present:
		return 1
	}
	switch a.kind {
	case KindNumber:
		return cmp.Compare(a.n, b.n)
	case KindDate:
		return a.t.Compare(b.t)
	case KindFlag:
		switch {
		case a.b == b.b:
			return 0
		case !a.b:
			return -1
		default:
			return 1
		}
	default:
		return strings.Compare(fold(a.s), fold(b.s))
	}
}

func fold(s string) string {
	return cases.Fold().String(s)
}

// ParseSort reads the URL form "name,-price": comma separated field keys,
// a leading minus meaning descending. Empty segments are skipped.
func ParseSort(s string) []SortKey {
	var keys []SortKey
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		desc := strings.HasPrefix(part, "-")
		part = strings.TrimPrefix(part, "-")
		if part == "" {
			continue
		}
		keys = append(keys, SortKey{Field: part, Desc: desc})
	}
	return keys
}

func FormatSort(keys []SortKey) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		if k.Desc {
			parts[i] = "-" + k.Field
		} else {
			parts[i] = k.Field
		}
	}
	return strings.Join(parts, ",")
}

// SortDirection reports how key is currently sorted: "asc", "desc" or "".
func (q Query) SortDirection(key string) string {
	for _, k := range q.Sort {
		if k.Field == key {
			if k.Desc {
				return "desc"
			}
			return "asc"
		}
	}
	return ""
}

// ToggleSort cycles key through ascending, descending and unsorted, keeping
// the other keys in place. A newly sorted key is appended last.
func (q Query) ToggleSort(key string) []SortKey {
	out := make([]SortKey, 0, len(q.Sort)+1)
	found := false
	for _, k := range q.Sort {
		if k.Field != key {
			out = append(out, k)
			continue
		}
		found = true
		if !k.Desc {
			out = append(out, SortKey{Field: key, Desc: true})
		}
	}
	if !found {
		out = append(out, SortKey{Field: key})
	}
	return out
}
