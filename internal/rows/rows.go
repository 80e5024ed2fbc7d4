// Package rows orders and filters table rows. It knows nothing about the row
// type; callers supply an accessor that reads a sort field out of a row.
package rows

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// Dir is a sort direction.
type Dir int

const (
	Asc Dir = iota
	Desc
)

// ParseDir maps "desc"/"d"/"-" to Desc and everything else to Asc.
func ParseDir(s string) Dir {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "desc", "d", "-":
		return Desc
	}
	return Asc
}

func (d Dir) String() string {
	if d == Desc {
		return "desc"
	}
	return "asc"
}

type fieldKind int

const (
	null fieldKind = iota
	number
	text
)

// Field is one sortable cell: a number, a string, or null.
type Field struct {
	kind fieldKind
	num  float64
	str  string
}

// Number wraps v. NaN is treated as null.
func Number(v float64) Field {
	if math.IsNaN(v) {
		return Field{}
	}
	return Field{kind: number, num: v}
}

// OptNumber wraps *v, or null when v is nil.
func OptNumber(v *float64) Field {
	if v == nil {
		return Field{}
	}
	return Number(*v)
}

func Text(s string) Field { return Field{kind: text, str: s} }

func Null() Field { return Field{} }

func (f Field) IsNull() bool { return f.kind == null }

func (f Field) lower() string {
	if f.kind == number {
		return strconv.FormatFloat(f.num, 'g', -1, 64)
	}
	return strings.ToLower(f.str)
}

// Accessor reads the field named key from row.
type Accessor[T any] func(row T, key string) Field

// Sort returns a sorted copy of rows. Nulls go last in either direction, two
// numbers compare numerically, anything else compares case-insensitively as
// text. Rows with equal keys keep their input order.
func Sort[T any](rows []T, key string, dir Dir, get Accessor[T]) []T {
	out := make([]T, len(rows))
	copy(out, rows)
	if key == "" || get == nil {
		return out
	}

	fields := make([]Field, len(out))
	for i, r := range out {
		fields[i] = get(r, key)
	}
	idx := make([]int, len(out))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return less(fields[idx[a]], fields[idx[b]], dir)
	})

	sorted := make([]T, len(out))
	for i, j := range idx {
		sorted[i] = out[j]
	}
	return sorted
}

func less(a, b Field, dir Dir) bool {
	switch {
	case a.IsNull() && b.IsNull():
		return false
	case a.IsNull():
		return false
	case b.IsNull():
		return true
	}
	c := compare(a, b)
	if dir == Desc {
		return c > 0
	}
	return c < 0
}

func compare(a, b Field) int {
	if a.kind == number && b.kind == number {
		switch {
		case a.num < b.num:
			return -1
		case a.num > b.num:
			return 1
		}
		return 0
	}
	return strings.Compare(a.lower(), b.lower())
}

// Filter keeps rows whose label contains query, ignoring case. A blank query
// keeps every row. The result is always a new slice.
func Filter[T any](rows []T, query string, label func(T) string) []T {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		if q == "" || strings.Contains(strings.ToLower(label(r)), q) {
			out = append(out, r)
		}
	}
	return out
}
