package routing

import (
	"strings"
	"testing"
)

func TestMakeSlug(t *testing.T) {
	cases := map[string]string{
		"Brother Jack":       "brother-jack",
		"  Sister   Enkey  ": "sister-enkey",
		"José Núñez":         "jose-nunez",
		"C++ & Go!":          "c-go",
		"---":                "item",
		"":                   "item",
		"Room 390 (STC)":     "room-390-stc",
	}
	for in, want := range cases {
		if got := MakeSlug(in); got != want {
			t.Errorf("MakeSlug(%q) = %q, want %q", in, got, want)
		}
	}

	long := MakeSlug(strings.Repeat("ab ", 60))
	if len(long) > maxSlug || strings.HasSuffix(long, "-") {
		t.Errorf("long slug = %q (%d)", long, len(long))
	}
}

func TestBuildPath(t *testing.T) {
	cases := []struct{ parent, slug, want string }{
		{"faculty", "brother-jack", "/faculty/brother-jack"},
		{"/faculty/", "/brother-jack/", "/faculty/brother-jack"},
		{"", "about", "/about"},
		{"catalog", "", "/catalog"},
		{"", "", "/"},
	}
	for _, tc := range cases {
		if got := BuildPath(tc.parent, tc.slug); got != tc.want {
			t.Errorf("BuildPath(%q, %q) = %q, want %q", tc.parent, tc.slug, got, tc.want)
		}
	}
}
