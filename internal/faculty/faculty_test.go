package faculty

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"
	"github.com/jmoiron/sqlx"
)

func names(ms []Member) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.Name
	}
	return out
}

func TestParseSort(t *testing.T) {
	for raw, want := range map[string]SortKey{
		"":           SortDepartment,
		"name":       SortName,
		"title":      SortTitle,
		"department": SortDepartment,
		"office":     SortDepartment,
	} {
		if got := ParseSort(raw); got != want {
			t.Errorf("ParseSort(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestSorted(t *testing.T) {
	all := Members()
	cases := []struct {
		key  SortKey
		want []string
	}{
		{SortDepartment, []string{
			"Brother Jack", "Sister Enkey", "Brother Keers",
			"Brother Davis",
			"Sister Anderson", "Brother Miller", "Brother Thompson",
		}},
		{SortName, []string{
			"Brother Davis", "Brother Jack", "Brother Keers", "Brother Miller",
			"Brother Thompson", "Sister Anderson", "Sister Enkey",
		}},
		{SortTitle, []string{
			"Brother Keers", "Brother Thompson",
			"Sister Enkey", "Brother Davis",
			"Brother Miller",
			"Brother Jack", "Sister Anderson",
		}},
	}
	for _, tc := range cases {
		if diff := cmp.Diff(tc.want, names(Sorted(all, tc.key))); diff != "" {
			t.Errorf("%s (-want +got):\n%s", tc.key, diff)
		}
	}
}

func TestMemorySlugs(t *testing.T) {
	m := NewMemory(Members()...)
	ctx := context.Background()

	got, err := m.Lookup(ctx, "sister-anderson")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got.Department != "Mathematics" {
		t.Errorf("department = %q", got.Department)
	}
	if _, err := m.Lookup(ctx, "professor-nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestSQLStore(t *testing.T) {
	raw, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer raw.Close()
	s := NewSQLStore(sqlx.NewDb(raw, "sqlite"))

	cols := []string{"slug", "name", "department", "title", "office", "email"}
	mock.ExpectQuery(regexp.QuoteMeta(qMember)).
		WithArgs("brother-davis").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("brother-davis", "Brother Davis", "English", "Associate Professor", "GEB 110", "davis@campus.example"))
	mock.ExpectQuery(regexp.QuoteMeta(qMember)).
		WithArgs("nobody").
		WillReturnRows(sqlmock.NewRows(cols))

	m, err := s.Lookup(context.Background(), "brother-davis")
	if err != nil || m.Office != "GEB 110" {
		t.Fatalf("Lookup = %#v, %v", m, err)
	}
	if _, err := s.Lookup(context.Background(), "nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}
