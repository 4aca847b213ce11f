package reporting

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/tontinehub/tontine-admin-bfa/internal/domain"
)

// FieldKind selects how a column compares.
type FieldKind int

const (
	TextField FieldKind = iota
	NumberField
	BoolField
)

// Field describes one sortable and/or searchable column of T.
// Exactly one accessor matching Kind must be set.
type Field[T any] struct {
	Name       string
	Kind       FieldKind
	Searchable bool

	Text   func(T) string
	Number func(T) int64
	Bool   func(T) bool
}

// Query is the table state the UI sends with every request.
type Query struct {
	Search     string
	SortKey    string
	Descending bool
	Page       int
	PageSize   int
}

// Table filters, sorts and paginates homogeneous in-memory lists.
type Table[T any] struct {
	fields map[string]Field[T]
	search []Field[T]
}

// NewTable registers the columns of T.
func NewTable[T any](fields ...Field[T]) *Table[T] {
	t := &Table[T]{fields: make(map[string]Field[T], len(fields))}
	for _, f := range fields {
		t.fields[f.Name] = f
		if f.Searchable {
			t.search = append(t.search, f)
		}
	}
	return t
}

// Filter keeps the items whose searchable columns contain query,
// case-insensitively. Numbers match on their decimal text. An empty query
// returns items unchanged.
func (t *Table[T]) Filter(items []T, query string) []T {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return items
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		if t.matches(item, query) {
			out = append(out, item)
		}
	}
	return out
}

func (t *Table[T]) matches(item T, query string) bool {
	for _, f := range t.search {
		var text string
		switch f.Kind {
		case TextField:
			text = f.Text(item)
		case NumberField:
			text = strconv.FormatInt(f.Number(item), 10)
		default:
			continue
		}
		if strings.Contains(strings.ToLower(text), query) {
			return true
		}
	}
	return false
}

// Sort returns a sorted copy of items. Ties keep their input order in both
// directions. An unknown key leaves the order untouched.
func (t *Table[T]) Sort(items []T, key string, descending bool) []T {
	out := slices.Clone(items)
	f, ok := t.fields[key]
	if !ok {
		return out
	}
	compare := comparator(f)
	if compare == nil {
		return out
	}
	if descending {
		asc := compare
		compare = func(a, b T) int { return asc(b, a) }
	}
	slices.SortStableFunc(out, compare)
	return out
}

func comparator[T any](f Field[T]) func(a, b T) int {
	switch f.Kind {
	case TextField:
		if f.Text == nil {
			return nil
		}
		col := newCollator()
		return func(a, b T) int { return col.CompareString(f.Text(a), f.Text(b)) }
	case NumberField:
		if f.Number == nil {
			return nil
		}
		return func(a, b T) int { return cmp.Compare(f.Number(a), f.Number(b)) }
	case BoolField:
		if f.Bool == nil {
			return nil
		}
		return func(a, b T) int { return cmp.Compare(boolRank(f.Bool(a)), boolRank(f.Bool(b))) }
	}
	return nil
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Apply runs filter, sort and pagination in that order.
func (t *Table[T]) Apply(items []T, q Query) domain.Page[T] {
	filtered := t.Filter(items, q.Search)
	sorted := t.Sort(filtered, q.SortKey, q.Descending)
	return Paginate(sorted, q.Page, q.PageSize)
}

// TotalPages is ceil(count/size), never less than one. size is clamped to 1.
func TotalPages(count, size int) int {
	if size < 1 {
		size = 1
	}
	pages := (count + size - 1) / size
	if pages < 1 {
		return 1
	}
	return pages
}

// Paginate slices one page out of items. Page numbers are 1-based; a page
// below 1 or beyond the last page is clamped into range, and a size below 1
// is treated as 1.
func Paginate[T any](items []T, page, size int) domain.Page[T] {
	if size < 1 {
		size = 1
	}
	pages := TotalPages(len(items), size)
	page = min(max(page, 1), pages)

	start := min((page-1)*size, len(items))
	end := min(start+size, len(items))

	pageItems := make([]T, end-start)
	copy(pageItems, items[start:end])

	return domain.Page[T]{
		Items:      pageItems,
		Total:      len(items),
		Page:       page,
		PageSize:   size,
		TotalPages: pages,
		HasMore:    page < pages,
	}
}
