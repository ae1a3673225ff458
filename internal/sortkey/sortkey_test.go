package sortkey

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestStable(t *testing.T) {
	type rec struct{ Name, Tag string }
	in := []rec{
		{"rosy", "1"},
		{"résumé", "2"},
		{"resume", "3"},
		{"rosy", "4"},
	}
	Stable(in, func(r rec) string { return r.Name })

	got := make([]string, len(in))
	for i, r := range in {
		got[i] = r.Tag
	}
	// Byte order would put "rosy" before "résumé".
	want := []string{"3", "2", "1", "4"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("order (-want +got):\n%s", diff)
	}
}
