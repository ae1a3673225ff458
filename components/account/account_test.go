// components/account/account_test.go
//
// Run: go test ./components/account -v

package account

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/yanizio/campus/internal/auth"
	"github.com/yanizio/campus/internal/form"
	"github.com/yanizio/campus/internal/pipeline"
	"github.com/yanizio/campus/internal/session"
	"github.com/yanizio/campus/internal/view/viewtest"
)

type fixture struct {
	h    http.Handler
	rec  *viewtest.Recorder
	csrf *form.CSRF
}

func setup(t *testing.T) fixture {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	dir, err := auth.NewDirectory(map[string]string{"student@campus.example": string(hash)})
	if err != nil {
		t.Fatal(err)
	}
	sessions := session.New(bytes.Repeat([]byte("s"), 32), time.Hour, false)
	csrf := form.NewCSRF(bytes.Repeat([]byte("c"), 32))

	rec := viewtest.New()
	p := pipeline.New(pipeline.Options{Renderer: rec})
	p.Use(auth.Authenticate(sessions))
	New(dir, sessions, csrf).Routes(p)
	return fixture{h: p.Handler(), rec: rec, csrf: csrf}
}

func (f fixture) do(method, target string, vals url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if vals != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(vals.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	f.h.ServeHTTP(w, req)
	return w
}

func (f fixture) token(t *testing.T) string {
	t.Helper()
	tok, err := f.csrf.Token()
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == session.CookieName {
			return c
		}
	}
	return nil
}

func TestDashboardRequiresLogin(t *testing.T) {
	f := setup(t)
	w := f.do(http.MethodGet, "/dashboard", nil)
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != auth.LoginPath {
		t.Fatalf("status = %d, location = %q", w.Code, w.Header().Get("Location"))
	}
}

func TestLoginFlow(t *testing.T) {
	f := setup(t)

	w := f.do(http.MethodPost, "/login", url.Values{
		form.TokenField: {f.token(t)},
		"email":         {"Student@Campus.example"},
		"password":      {"correct horse"},
	})
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != DashboardPath {
		t.Fatalf("login status = %d, location = %q", w.Code, w.Header().Get("Location"))
	}
	cookie := sessionCookie(w)
	if cookie == nil {
		t.Fatal("no session cookie")
	}

	w = f.do(http.MethodGet, "/dashboard", nil, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("dashboard status = %d", w.Code)
	}
	page, _ := f.rec.Page("account/dashboard")
	if page.Data["Email"] != "Student@Campus.example" || !page.Authenticated {
		t.Errorf("dashboard page = %+v", page)
	}

	w = f.do(http.MethodGet, "/login", nil, cookie)
	if w.Code != http.StatusSeeOther {
		t.Errorf("signed-in /login status = %d", w.Code)
	}

	w = f.do(http.MethodGet, "/logout", nil, cookie)
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/" {
		t.Fatalf("logout status = %d", w.Code)
	}
	if c := sessionCookie(w); c == nil || c.MaxAge >= 0 {
		t.Errorf("logout cookie = %+v", c)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	f := setup(t)
	w := f.do(http.MethodPost, "/login", url.Values{
		form.TokenField: {f.token(t)},
		"email":         {"student@campus.example"},
		"password":      {"wrong"},
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	if sessionCookie(w) != nil {
		t.Error("cookie issued for bad password")
	}
	page, _ := f.rec.Page("account/login")
	if page.Data["LoginError"] != msgBadLogin {
		t.Errorf("LoginError = %v", page.Data["LoginError"])
	}
}

func TestRegister(t *testing.T) {
	f := setup(t)

	w := f.do(http.MethodPost, "/register", url.Values{
		form.TokenField:    {f.token(t)},
		"name":             {"Ada"},
		"email":            {"ada@example.com"},
		"password":         {"longenough"},
		"confirm_password": {"different!"},
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("mismatch status = %d", w.Code)
	}

	w = f.do(http.MethodPost, "/register", url.Values{
		form.TokenField:    {f.token(t)},
		"name":             {"Ada"},
		"email":            {"ada@example.com"},
		"password":         {"longenough"},
		"confirm_password": {"longenough"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	page, ok := f.rec.Page("account/registered")
	if !ok || page.Data["Name"] != "Ada" {
		t.Errorf("registered page = %+v", page)
	}
}
