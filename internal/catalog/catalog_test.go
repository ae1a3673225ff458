// internal/catalog/catalog_test.go
//
// Memory and SQL stores, sort validation, and section ordering.
//
// Run: go test ./internal/catalog -v

package catalog

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"
	"github.com/jmoiron/sqlx"
)

func rooms(ss []Section) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = s.Room
	}
	return out
}

func TestParseSort(t *testing.T) {
	cases := map[string]SortKey{
		"":          SortTime,
		"time":      SortTime,
		"professor": SortProfessor,
		"room":      SortRoom,
		"ROOM":      SortTime,
		"credits":   SortTime,
	}
	for raw, want := range cases {
		if got := ParseSort(raw); got != want {
			t.Errorf("ParseSort(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestSortSections(t *testing.T) {
	cs121, err := NewMemory(Courses()...).Lookup(context.Background(), "CS121")
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		key  SortKey
		want []string
	}{
		{SortTime, []string{"STC 392", "STC 394", "STC 390"}},
		{SortRoom, []string{"STC 390", "STC 392", "STC 394"}},
		{SortProfessor, []string{"STC 392", "STC 390", "STC 394"}}, // Jack, Keers, Enkey
	}
	for _, tc := range cases {
		got := rooms(SortSections(cs121.Sections, tc.key))
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("%s (-want +got):\n%s", tc.key, diff)
		}
	}
	if diff := cmp.Diff([]string{"STC 392", "STC 394", "STC 390"}, rooms(cs121.Sections)); diff != "" {
		t.Errorf("input mutated (-want +got):\n%s", diff)
	}
}

func TestMemory(t *testing.T) {
	m := NewMemory(Courses()...)
	ctx := context.Background()

	if _, err := m.Lookup(ctx, "NOPE"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Lookup(NOPE) err = %v, want ErrNotFound", err)
	}

	c, err := m.Lookup(ctx, "MATH110")
	if err != nil {
		t.Fatal(err)
	}
	c.Sections[0].Room = "changed"
	again, _ := m.Lookup(ctx, "MATH110")
	if again.Sections[0].Room != "MC 301" {
		t.Error("Lookup returned shared section storage")
	}

	list, _ := m.List(ctx)
	var ids []string
	for _, c := range list {
		ids = append(ids, c.ID)
	}
	if diff := cmp.Diff([]string{"CS121", "MATH110", "ENG101"}, ids); diff != "" {
		t.Errorf("list order (-want +got):\n%s", diff)
	}
}

func TestSQLStoreLookup(t *testing.T) {
	raw, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer raw.Close()
	s := NewSQLStore(sqlx.NewDb(raw, "mysql"))

	mock.ExpectQuery(regexp.QuoteMeta(qCourse)).
		WithArgs("CS121").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "description", "credits"}).
			AddRow("CS121", "Introduction to Programming", "d", 3))
	mock.ExpectQuery(regexp.QuoteMeta(qSections)).
		WithArgs("CS121").
		WillReturnRows(sqlmock.NewRows([]string{"time_label", "room", "professor"}).
			AddRow("9:00 AM", "STC 392", "Brother Jack").
			AddRow("2:00 PM", "STC 394", "Sister Enkey"))

	c, err := s.Lookup(context.Background(), "CS121")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if c.Credits != 3 || len(c.Sections) != 2 || c.Sections[1].Professor != "Sister Enkey" {
		t.Fatalf("unexpected course: %#v", c)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestSQLStoreNotFound(t *testing.T) {
	raw, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer raw.Close()
	s := NewSQLStore(sqlx.NewDb(raw, "mysql"))

	mock.ExpectQuery(regexp.QuoteMeta(qCourse)).
		WithArgs("NOPE").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "description", "credits"}))

	if _, err := s.Lookup(context.Background(), "NOPE"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestMigrationsSeedEveryCourse(t *testing.T) {
	seed := Migrations()[2]
	for _, c := range Courses() {
		if !regexp.MustCompile(`'` + c.ID + `'`).MatchString(seed) {
			t.Errorf("seed missing %s", c.ID)
		}
	}
}
