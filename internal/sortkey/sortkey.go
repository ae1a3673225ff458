// Package sortkey sorts records by a string field the way a browser's
// localeCompare would: Unicode collation for English, stable on ties.
package sortkey

import (
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Stable sorts items in place by field(item), ascending.  A Collator is not
// safe for concurrent use, so each call builds its own.
func Stable[T any](items []T, field func(T) string) {
	col := collate.New(language.English)
	slices.SortStableFunc(items, func(a, b T) int {
		return col.CompareString(field(a), field(b))
	})
}
