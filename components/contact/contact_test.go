// components/contact/contact_test.go
//
// Run: go test ./components/contact -v

package contact

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/yanizio/campus/internal/form"
	"github.com/yanizio/campus/internal/pipeline"
	"github.com/yanizio/campus/internal/view/viewtest"
)

type memInbox struct{ got []form.Contact }

func (m *memInbox) Save(_ context.Context, msg form.Contact) error {
	m.got = append(m.got, msg)
	return nil
}

func setup() (http.Handler, *viewtest.Recorder, *memInbox, *form.CSRF) {
	rec := viewtest.New()
	inbox := &memInbox{}
	csrf := form.NewCSRF(bytes.Repeat([]byte("c"), 32))
	p := pipeline.New(pipeline.Options{Renderer: rec})
	New(inbox, csrf).Routes(p)
	return p.Handler(), rec, inbox, csrf
}

func post(h http.Handler, vals url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(vals.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestGetIssuesToken(t *testing.T) {
	h, rec, _, csrf := setup()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/contact", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	page, _ := rec.Page("contact/form")
	tok, _ := page.Data["CSRFToken"].(string)
	if !csrf.Verify(tok) {
		t.Errorf("token %q does not verify", tok)
	}
	if !strings.Contains(string(page.Styles), Stylesheet) {
		t.Errorf("styles = %q", page.Styles)
	}
}

func TestInvalidSubmissionRerenders(t *testing.T) {
	h, rec, inbox, csrf := setup()
	tok, _ := csrf.Token()
	w := post(h, url.Values{form.TokenField: {tok}, "name": {"A"}, "email": {"nope"}})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	page, _ := rec.Page("contact/form")
	if len(page.FormErrors) == 0 {
		t.Error("no form errors recorded")
	}
	if len(inbox.got) != 0 {
		t.Error("invalid message saved")
	}
}

func TestBadTokenRerenders(t *testing.T) {
	h, _, inbox, _ := setup()
	w := post(h, url.Values{
		form.TokenField: {"forged"},
		"name":          {"Ada Lovelace"},
		"email":         {"ada@example.com"},
		"subject":       {"Engines"},
		"message":       {"Analytical engines are great."},
	})
	if w.Code != http.StatusBadRequest || len(inbox.got) != 0 {
		t.Fatalf("status = %d, saved = %d", w.Code, len(inbox.got))
	}
}

func TestValidSubmissionThanks(t *testing.T) {
	h, rec, inbox, csrf := setup()
	tok, _ := csrf.Token()
	w := post(h, url.Values{
		form.TokenField: {tok},
		"name":          {"Ada Lovelace"},
		"email":         {"ada@example.com"},
		"subject":       {"Engines"},
		"message":       {"Analytical engines are great."},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if _, ok := rec.Page("contact/thanks"); !ok {
		t.Errorf("views = %v", rec.Views())
	}
	if len(inbox.got) != 1 || inbox.got[0].Email != "ada@example.com" {
		t.Errorf("inbox = %+v", inbox.got)
	}
}

func TestSQLInboxSave(t *testing.T) {
	raw, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer raw.Close()
	db := sqlx.NewDb(raw, "mysql")

	in := NewSQLInbox(db)
	at := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	in.now = func() time.Time { return at }

	mock.ExpectExec("INSERT INTO contact_messages").
		WithArgs(sqlmock.AnyArg(), "Ada", "ada@example.com", "Hi", "Hello there, friend.", at).
		WillReturnResult(sqlmock.NewResult(1, 1))

	msg := form.Contact{Name: "Ada", Email: "ada@example.com", Subject: "Hi", Message: "Hello there, friend."}
	if err := in.Save(context.Background(), msg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
