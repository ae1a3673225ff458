// components/demo/demo_test.go
//
// Run: go test ./components/demo -v

package demo

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yanizio/campus/internal/locals"
	"github.com/yanizio/campus/internal/pipeline"
	"github.com/yanizio/campus/internal/view/viewtest"
)

func serve(t *testing.T, visitor bool, target string) (*httptest.ResponseRecorder, *viewtest.Recorder) {
	t.Helper()
	rec := viewtest.New()
	p := pipeline.New(pipeline.Options{Env: "production", Renderer: rec})
	if visitor {
		p.Use(locals.Visitor(nil))
	}
	New().Routes(p)

	r := httptest.NewRequest(http.MethodGet, target, nil)
	r.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64; rv:126.0) Gecko/20100101 Firefox/126.0")
	w := httptest.NewRecorder()
	p.Handler().ServeHTTP(w, r)
	return w, rec
}

func TestDemoPageSetsHeaders(t *testing.T) {
	w, rec := serve(t, true, "/demo")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if got := w.Header().Get("X-Demo-Page"); got != "true" {
		t.Errorf("X-Demo-Page = %q", got)
	}
	if got := w.Header().Get("X-Middleware-Demo"); got != "Hello Class!" {
		t.Errorf("X-Middleware-Demo = %q", got)
	}
	page, ok := rec.Page("demo")
	if !ok {
		t.Fatalf("demo view not rendered: %v", rec.Views())
	}
	if page.Title != "Middleware Demo Page" {
		t.Errorf("title = %q", page.Title)
	}
	shown := page.Data["Headers"].(map[string]string)
	if len(shown) != 2 {
		t.Errorf("headers shown = %v", shown)
	}
	for k, v := range shown {
		if got := w.Header().Get(k); got != v {
			t.Errorf("page shows %s=%q, response sent %q", k, v, got)
		}
	}
}

func TestDemoJSON(t *testing.T) {
	w, _ := serve(t, true, "/api/demo")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}
	var body struct {
		UA struct{ Browser string }
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.UA.Browser != "Firefox" {
		t.Errorf("browser = %q", body.UA.Browser)
	}
}

func TestDemoJSONWithoutVisitorFails(t *testing.T) {
	w, rec := serve(t, false, "/api/demo")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	if _, ok := rec.Page("errors/500"); !ok {
		t.Errorf("views = %v", rec.Views())
	}
}
