package vault

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeKV struct {
	calls int
	data  map[string]map[string]any
}

func (f *fakeKV) Get(_ context.Context, mount, path string) (map[string]any, error) {
	f.calls++
	d, ok := f.data[mount+"/"+path]
	if !ok {
		return nil, errors.New("secret not found")
	}
	return d, nil
}

func TestGetKVCaches(t *testing.T) {
	store := &fakeKV{data: map[string]map[string]any{
		"secret/campus": {"db_password": "s3cret", "port": 42},
	}}
	c := newClient(store, nil)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		got, err := c.GetKV(ctx, "secret/campus", "db_password", time.Minute)
		if err != nil || got != "s3cret" {
			t.Fatalf("GetKV = %q, %v", got, err)
		}
	}
	if store.calls != 1 {
		t.Errorf("backend calls = %d, want 1", store.calls)
	}

	now = now.Add(2 * time.Minute)
	if _, err := c.GetKV(ctx, "secret/campus", "db_password", time.Minute); err != nil {
		t.Fatal(err)
	}
	if store.calls != 2 {
		t.Errorf("expired entry not refetched: calls = %d", store.calls)
	}
}

func TestGetKVErrors(t *testing.T) {
	c := newClient(&fakeKV{data: map[string]map[string]any{
		"secret/campus": {"port": 42},
	}}, nil)
	ctx := context.Background()

	if _, err := c.GetKV(ctx, "secret/campus", "missing", 0); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("missing key err = %v", err)
	}
	if _, err := c.GetKV(ctx, "secret/campus", "port", 0); err == nil {
		t.Error("non-string value accepted")
	}
	if _, err := c.GetKV(ctx, "secret/other", "x", 0); err == nil {
		t.Error("missing secret accepted")
	}
	if _, err := c.GetKV(ctx, "", "x", 0); err == nil {
		t.Error("empty path accepted")
	}
}

func TestSplitMount(t *testing.T) {
	cases := map[string][2]string{
		"secret/campus/db": {"secret", "campus/db"},
		"/secret/campus/":  {"secret", "campus"},
		"secret":           {"secret", ""},
	}
	for in, want := range cases {
		m, r := splitMount(in)
		if m != want[0] || r != want[1] {
			t.Errorf("splitMount(%q) = %q, %q", in, m, r)
		}
	}
}
