// Package catalog holds the course catalog: the record types, the Store
// contract the catalog routes depend on, and section sorting.
//
// Lookup reports a missing course with ErrNotFound, never with a zero
// Course, so "no record" and "empty record" cannot be confused.
package catalog

import (
	"context"
	"errors"
	"slices"
)

// ErrNotFound is returned by Store.Lookup for an unknown course ID.
var ErrNotFound = errors.New("catalog: course not found")

// Section is one scheduled offering of a course.
type Section struct {
	Time      string `db:"time_label"`
	Room      string `db:"room"`
	Professor string `db:"professor"`
}

// Course is one catalog entry.  Sections keep their scheduled order.
type Course struct {
	ID          string    `db:"id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	Credits     int       `db:"credits"`
	Sections    []Section `db:"-"`
}

// Clone returns a deep copy so callers may reorder Sections freely.
func (c Course) Clone() Course {
	c.Sections = slices.Clone(c.Sections)
	return c
}

// Store is the lookup collaborator used by the catalog routes.
type Store interface {
	Lookup(ctx context.Context, id string) (Course, error)
	List(ctx context.Context) ([]Course, error)
}
