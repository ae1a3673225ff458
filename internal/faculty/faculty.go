// Package faculty holds the faculty directory: member records, the Store
// contract, and list sorting.  Members are addressed by slug.
package faculty

import (
	"context"
	"errors"
	"slices"

	"github.com/yanizio/campus/internal/routing"
	"github.com/yanizio/campus/internal/sortkey"
)

// ErrNotFound is returned by Store.Lookup for an unknown slug.
var ErrNotFound = errors.New("faculty: member not found")

// Member is one directory entry.
type Member struct {
	Slug       string `db:"slug"`
	Name       string `db:"name"`
	Department string `db:"department"`
	Title      string `db:"title"`
	Office     string `db:"office"`
	Email      string `db:"email"`
}

// Store is the lookup collaborator used by the faculty routes.
type Store interface {
	Lookup(ctx context.Context, slug string) (Member, error)
	List(ctx context.Context) ([]Member, error)
}

// SortKey is a validated directory ordering.
type SortKey string

const (
	SortName       SortKey = "name"
	SortDepartment SortKey = "department"
	SortTitle      SortKey = "title"

	DefaultSort = SortDepartment
)

// ParseSort validates raw, falling back to DefaultSort.
func ParseSort(raw string) SortKey {
	switch k := SortKey(raw); k {
	case SortName, SortDepartment, SortTitle:
		return k
	default:
		return DefaultSort
	}
}

// Sorted returns a copy of members ordered by key, ascending and stable.
func Sorted(members []Member, key SortKey) []Member {
	out := slices.Clone(members)
	switch key {
	case SortName:
		sortkey.Stable(out, func(m Member) string { return m.Name })
	case SortTitle:
		sortkey.Stable(out, func(m Member) string { return m.Title })
	default:
		sortkey.Stable(out, func(m Member) string { return m.Department })
	}
	return out
}

/*──────────────────────────── memory store ───────────────────────────────*/

// Memory serves a fixed directory.  Read-only after construction.
type Memory struct {
	members []Member
	bySlug  map[string]int
}

// NewMemory indexes members by slug, deriving a slug from Name when empty.
func NewMemory(members ...Member) *Memory {
	m := &Memory{bySlug: make(map[string]int, len(members))}
	for _, mem := range members {
		if mem.Slug == "" {
			mem.Slug = routing.MakeSlug(mem.Name)
		}
		if i, dup := m.bySlug[mem.Slug]; dup {
			m.members[i] = mem
			continue
		}
		m.bySlug[mem.Slug] = len(m.members)
		m.members = append(m.members, mem)
	}
	return m
}

func (m *Memory) Lookup(_ context.Context, slug string) (Member, error) {
	i, ok := m.bySlug[slug]
	if !ok {
		return Member{}, ErrNotFound
	}
	return m.members[i], nil
}

func (m *Memory) List(_ context.Context) ([]Member, error) {
	return slices.Clone(m.members), nil
}

// Members is the default directory, in the order it was compiled.
func Members() []Member {
	return []Member{
		{Name: "Brother Jack", Department: "Computer Science", Title: "Professor", Office: "STC 310", Email: "jack@campus.example"},
		{Name: "Sister Enkey", Department: "Computer Science", Title: "Associate Professor", Office: "STC 312", Email: "enkey@campus.example"},
		{Name: "Brother Keers", Department: "Computer Science", Title: "Assistant Professor", Office: "STC 314", Email: "keers@campus.example"},
		{Name: "Sister Anderson", Department: "Mathematics", Title: "Professor", Office: "MC 220", Email: "anderson@campus.example"},
		{Name: "Brother Miller", Department: "Mathematics", Title: "Lecturer", Office: "MC 224", Email: "miller@campus.example"},
		{Name: "Brother Thompson", Department: "Mathematics", Title: "Assistant Professor", Office: "MC 226", Email: "thompson@campus.example"},
		{Name: "Brother Davis", Department: "English", Title: "Associate Professor", Office: "GEB 110", Email: "davis@campus.example"},
	}
}
