package catalog

import (
	"context"
)

// Memory serves a fixed course table.  It is read-only after
// construction and safe for concurrent use.
type Memory struct {
	order []string
	byID  map[string]Course
}

// NewMemory indexes courses, keeping their order for List.  A later
// duplicate ID replaces an earlier one.
func NewMemory(courses ...Course) *Memory {
	m := &Memory{byID: make(map[string]Course, len(courses))}
	for _, c := range courses {
		if _, dup := m.byID[c.ID]; !dup {
			m.order = append(m.order, c.ID)
		}
		m.byID[c.ID] = c.Clone()
	}
	return m
}

// Lookup returns a copy of the course with id.
func (m *Memory) Lookup(_ context.Context, id string) (Course, error) {
	c, ok := m.byID[id]
	if !ok {
		return Course{}, ErrNotFound
	}
	return c.Clone(), nil
}

// List returns copies of every course in table order.
func (m *Memory) List(_ context.Context) ([]Course, error) {
	out := make([]Course, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.byID[id].Clone())
	}
	return out, nil
}

// Courses is the default catalog.
func Courses() []Course {
	return []Course{
		{
			ID:          "CS121",
			Title:       "Introduction to Programming",
			Description: "Learn programming fundamentals using JavaScript and basic web development concepts.",
			Credits:     3,
			Sections: []Section{
				{Time: "9:00 AM", Room: "STC 392", Professor: "Brother Jack"},
				{Time: "2:00 PM", Room: "STC 394", Professor: "Sister Enkey"},
				{Time: "11:00 AM", Room: "STC 390", Professor: "Brother Keers"},
			},
		},
		{
			ID:          "MATH110",
			Title:       "College Algebra",
			Description: "Fundamental algebraic concepts including functions, graphing, and problem solving.",
			Credits:     4,
			Sections: []Section{
				{Time: "8:00 AM", Room: "MC 301", Professor: "Sister Anderson"},
				{Time: "1:00 PM", Room: "MC 305", Professor: "Brother Miller"},
				{Time: "3:00 PM", Room: "MC 307", Professor: "Brother Thompson"},
			},
		},
		{
			ID:          "ENG101",
			Title:       "Academic Writing",
			Description: "Develop writing skills for academic and professional communication.",
			Credits:     3,
			Sections: []Section{
				{Time: "10:00 AM", Room: "GEB 201", Professor: "Sister Anderson"},
				{Time: "12:00 PM", Room: "GEB 205", Professor: "Brother Davis"},
				{Time: "4:00 PM", Room: "GEB 203", Professor: "Sister Enkey"},
			},
		},
	}
}
