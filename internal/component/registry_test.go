package component

import (
	"testing"

	"github.com/yanizio/campus/internal/pipeline"
)

type stub struct {
	name   string
	mounts *[]string
}

func (s stub) Name() string         { return s.name }
func (s stub) Migrations() []string { return nil }
func (s stub) Routes(*pipeline.Pipeline) {
	*s.mounts = append(*s.mounts, s.name)
}

func TestMountKeepsOrder(t *testing.T) {
	var got []string
	r := NewRegistry()
	r.Register(stub{"pages", &got}, stub{"catalog", &got})
	r.Register(stub{"account", &got})

	r.Mount(pipeline.New(pipeline.Options{}))

	want := []string{"pages", "catalog", "account"}
	if len(got) != len(want) {
		t.Fatalf("mounted %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("mounted %v, want %v", got, want)
		}
	}
}

func TestDuplicatePanics(t *testing.T) {
	var got []string
	r := NewRegistry()
	r.Register(stub{"pages", &got})
	defer func() {
		if recover() == nil {
			t.Fatal("duplicate name did not panic")
		}
	}()
	r.Register(stub{"pages", &got})
}
