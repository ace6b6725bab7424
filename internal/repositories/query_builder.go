package repositories

import (
	"fmt"
	"strings"
	"time"
)

// QueryBuilder accumulates query arguments and hands out numbered
// placeholders, so that composable predicate fragments can be built without
// tracking indices by hand. The zero value is ready to use.
type QueryBuilder struct {
	args []any
}

// Bind registers a query argument and returns its placeholder, e.g. "$3".
func (b *QueryBuilder) Bind(value any) string {
	b.args = append(b.args, value)
	return fmt.Sprintf("$%d", len(b.args))
}

// Args returns the accumulated arguments in placeholder order.
func (b *QueryBuilder) Args() []any {
	return b.args
}

// TextSearch builds a case-insensitive substring match over one or more
// columns, OR-ed together. An empty term yields no constraint.
func (b *QueryBuilder) TextSearch(term string, columns ...string) string {
	if term == "" {
		return ""
	}
	placeholder := b.Bind("%" + escapeLike(term) + "%")
	fragments := make([]string, 0, len(columns))
	for _, column := range columns {
		fragments = append(fragments, column+" ILIKE "+placeholder)
	}
	return CombineOr(fragments...)
}

// Exact builds an equality predicate.
func (b *QueryBuilder) Exact(column string, value any) string {
	return column + " = " + b.Bind(value)
}

// NumberRange builds an inclusive numeric range predicate. Either bound may
// be nil, constraining only the other end; both nil yields no constraint.
func (b *QueryBuilder) NumberRange(column string, min, max *int) string {
	return b.rangeFragment(column, anyOrNil(min), anyOrNil(max))
}

// DateRange builds an inclusive date range predicate with the same bound
// semantics as NumberRange.
func (b *QueryBuilder) DateRange(column string, from, to *time.Time) string {
	return b.rangeFragment(column, anyOrNil(from), anyOrNil(to))
}

func (b *QueryBuilder) rangeFragment(column string, min, max any) string {
	var fragments []string
	if min != nil {
		fragments = append(fragments, column+" >= "+b.Bind(min))
	}
	if max != nil {
		fragments = append(fragments, column+" <= "+b.Bind(max))
	}
	return CombineAnd(fragments...)
}

// InList builds a membership predicate. An empty list yields no constraint,
// not "match nothing".
func (b *QueryBuilder) InList(column string, values []string) string {
	if len(values) == 0 {
		return ""
	}
	placeholders := make([]string, 0, len(values))
	for _, value := range values {
		placeholders = append(placeholders, b.Bind(value))
	}
	return column + " IN (" + strings.Join(placeholders, ", ") + ")"
}

// TagContains builds a containment predicate against a text[] column.
func (b *QueryBuilder) TagContains(column, tag string) string {
	if tag == "" {
		return ""
	}
	return b.Bind(tag) + " = ANY(" + column + ")"
}

// NullCheck builds an IS NULL or IS NOT NULL predicate.
func NullCheck(column string, isNull bool) string {
	if isNull {
		return column + " IS NULL"
	}
	return column + " IS NOT NULL"
}

// CombineAnd joins the given fragments with AND. Empty fragments are
// dropped; a single surviving fragment is returned unwrapped.
func CombineAnd(fragments ...string) string {
	return combine(" AND ", fragments)
}

// CombineOr joins the given fragments with OR under the same rules.
func CombineOr(fragments ...string) string {
	return combine(" OR ", fragments)
}

func combine(separator string, fragments []string) string {
	kept := make([]string, 0, len(fragments))
	for _, fragment := range fragments {
		if fragment != "" {
			kept = append(kept, fragment)
		}
	}
	switch len(kept) {
	case 0:
		return ""
	case 1:
		return kept[0]
	default:
		return "(" + strings.Join(kept, separator) + ")"
	}
}

// WhereClause prefixes a combined fragment with WHERE, or returns "" when
// there is no constraint.
func WhereClause(fragment string) string {
	if fragment == "" {
		return ""
	}
	return " WHERE " + fragment
}

// escapeLike escapes the LIKE wildcard characters in a user-supplied term so
// they match literally.
func escapeLike(term string) string {
	term = strings.ReplaceAll(term, `\`, `\\`)
	term = strings.ReplaceAll(term, "%", `\%`)
	return strings.ReplaceAll(term, "_", `\_`)
}

func anyOrNil[T any](value *T) any {
	if value == nil {
		return nil
	}
	return *value
}
