// internal/funnel/funnel_test.go
//
// Error Funnel behaviour: view choice, env-gated detail, inline fallback,
// and the double-send guard.
//
// Run: go test ./internal/funnel -v

package funnel

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap/zaptest"

	"github.com/yanizio/campus/internal/core"
)

// fakeRenderer records the last call and writes a predictable body.
type fakeRenderer struct {
	name string
	page core.Page
	err  error
}

func (f *fakeRenderer) Render(w io.Writer, name string, page core.Page) error {
	f.name, f.page = name, page
	if f.err != nil {
		return f.err
	}
	_, err := fmt.Fprintf(w, "%s|%s|%s", name, page.Title, page.Error)
	return err
}

func newFunnel(t *testing.T, r *fakeRenderer, production bool) *Funnel {
	t.Helper()
	return New(zaptest.NewLogger(t).Sugar(), r, production)
}

func TestHandleNotFound(t *testing.T) {
	fr := &fakeRenderer{}
	f := newFunnel(t, fr, false)
	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	c := core.New(req, "development")
	rec := httptest.NewRecorder()

	if err := f.Handle(c, rec, req, NotFound("no route for %s", "/missing")); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if fr.name != "errors/404" || fr.page.Title != "Page Not Found" {
		t.Fatalf("view = %q title = %q", fr.name, fr.page.Title)
	}
	want := []core.State{core.StateNormal, core.StateErrored, core.StateResponded}
	if diff := cmp.Diff(want, c.History()); diff != "" {
		t.Errorf("history mismatch (-want +got):\n%s", diff)
	}
	if !c.Sealed() {
		t.Error("context not sealed")
	}
}

func TestHandleServerFaultDetailByEnv(t *testing.T) {
	cases := []struct {
		name       string
		production bool
		wantMsg    string
		wantStack  bool
	}{
		{"development", false, "boom", true},
		{"production", true, "An error occurred", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fr := &fakeRenderer{}
			f := newFunnel(t, fr, tc.production)
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()

			if err := f.Handle(core.New(req, tc.name), rec, req, ServerFault(errors.New("boom"))); err != nil {
				t.Fatalf("Handle: %v", err)
			}
			if rec.Code != http.StatusInternalServerError {
				t.Fatalf("status = %d, want 500", rec.Code)
			}
			if fr.name != "errors/500" || fr.page.Title != "Server Error" {
				t.Fatalf("view = %q title = %q", fr.name, fr.page.Title)
			}
			if fr.page.Error != tc.wantMsg {
				t.Errorf("message = %q, want %q", fr.page.Error, tc.wantMsg)
			}
			if got := fr.page.Stack != ""; got != tc.wantStack {
				t.Errorf("stack present = %v, want %v", got, tc.wantStack)
			}
		})
	}
}

func TestHandlePlainErrorIs500(t *testing.T) {
	fr := &fakeRenderer{}
	f := newFunnel(t, fr, false)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	if err := f.Handle(nil, rec, req, errors.New("plain")); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestHandleRenderFallback(t *testing.T) {
	fr := &fakeRenderer{err: errors.New("template missing")}
	f := newFunnel(t, fr, true)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := core.New(req, "production")
	rec := httptest.NewRecorder()

	if err := f.Handle(c, rec, req, NotFound("gone")); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	want := "<h1>Error 404</h1><p>An error occurred.</p>"
	if got := rec.Body.String(); got != want {
		t.Fatalf("body = %q, want %q", got, want)
	}
	if c.State() != core.StateResponded {
		t.Errorf("state = %s, want RESPONDED", c.State())
	}
}

func TestHandleAlreadyWritten(t *testing.T) {
	fr := &fakeRenderer{}
	f := newFunnel(t, fr, false)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := core.New(req, "development")
	rec := httptest.NewRecorder()
	ww := middleware.NewWrapResponseWriter(rec, req.ProtoMajor)

	ww.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(ww, "partial")

	cause := errors.New("late failure")
	err := f.Handle(c, ww, req, cause)
	if !errors.Is(err, ErrAlreadyResponded) || !errors.Is(err, cause) {
		t.Fatalf("err = %v, want ErrAlreadyResponded wrapping cause", err)
	}
	if rec.Body.String() != "partial" {
		t.Errorf("body changed: %q", rec.Body.String())
	}
	if fr.name != "" {
		t.Errorf("renderer called for %q", fr.name)
	}
	if c.State() != core.StateNormal {
		t.Errorf("state = %s, want NORMAL", c.State())
	}
}

func TestHandleAfterResponded(t *testing.T) {
	f := newFunnel(t, &fakeRenderer{}, false)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := core.New(req, "development")
	if err := c.Transition(core.StateResponded); err != nil {
		t.Fatal(err)
	}
	rec := httptest.NewRecorder()

	err := f.Handle(c, rec, req, NotFound("x"))
	if !errors.Is(err, ErrAlreadyResponded) {
		t.Fatalf("err = %v, want ErrAlreadyResponded", err)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
}

func TestStatusOf(t *testing.T) {
	cases := map[string]struct {
		err  error
		want int
	}{
		"not found":  {NotFound("x"), http.StatusNotFound},
		"wrapped":    {fmt.Errorf("outer: %w", NotFound("x")), http.StatusNotFound},
		"plain":      {errors.New("x"), http.StatusInternalServerError},
		"validation": {&Error{Kind: KindValidation, Message: "bad"}, http.StatusInternalServerError},
		"custom":     {WithStatus(http.StatusTeapot, "short and stout"), http.StatusTeapot},
	}
	for name, tc := range cases {
		if got := StatusOf(tc.err); got != tc.want {
			t.Errorf("%s: StatusOf = %d, want %d", name, got, tc.want)
		}
	}
	if !strings.Contains(Recovered("kaboom", nil).Error(), "kaboom") {
		t.Error("Recovered message lost the panic value")
	}
}
