package catalog

import (
	"slices"

	"github.com/yanizio/campus/internal/sortkey"
)

// SortKey is a validated section ordering.
type SortKey string

const (
	SortTime      SortKey = "time"
	SortProfessor SortKey = "professor"
	SortRoom      SortKey = "room"

	// DefaultSort keeps the scheduled order.
	DefaultSort = SortTime
)

// ParseSort validates raw against the allow-list.  Anything else,
// including "", yields DefaultSort.
func ParseSort(raw string) SortKey {
	switch k := SortKey(raw); k {
	case SortTime, SortProfessor, SortRoom:
		return k
	default:
		return DefaultSort
	}
}

// SortSections returns a sorted copy of sections.  SortTime keeps the
// input order; the others compare with locale collation and are stable.
func SortSections(sections []Section, key SortKey) []Section {
	out := slices.Clone(sections)
	var field func(Section) string
	switch key {
	case SortProfessor:
		field = func(s Section) string { return s.Professor }
	case SortRoom:
		field = func(s Section) string { return s.Room }
	default:
		return out
	}
	sortkey.Stable(out, field)
	return out
}
