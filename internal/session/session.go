// internal/session/session.go
//
// Signed session cookie.
//
// Context
//   Authentication only needs a "logged-in as <email>" flag between
//   requests.  The Manager stores it in a cookie named “campus_session”:
//
//      base64url(email) "." unixExpiry "." base64url(HMAC_SHA256(key, email|expiry))
//
//   Nothing is kept server-side.  A cookie that fails the signature or
//   expiry check is treated as absent.
//
//   The payload is signed, not encrypted; the email is visible to the
//   browser that owns it.
//
//------------------------------------------------------------------------------

package session

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// CookieName is the session cookie's name.
const CookieName = "campus_session"

// Manager issues and reads session cookies.  Safe for concurrent use.
type Manager struct {
	key    []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

// New returns a Manager.  A key shorter than 32 bytes is replaced by a
// random one, which logs everyone out on restart.  secure marks cookies
// HTTPS-only regardless of the request.
func New(key []byte, ttl time.Duration, secure bool) *Manager {
	if len(key) < 32 {
		key = make([]byte, 32)
		_, _ = rand.Read(key)
		zap.S().Warn("session.key not set or too short; using an ephemeral key")
	}
	if ttl <= 0 {
		ttl = 14 * 24 * time.Hour
	}
	return &Manager{key: key, ttl: ttl, secure: secure, now: time.Now}
}

// Login sets a session cookie for email.
func (m *Manager) Login(w http.ResponseWriter, r *http.Request, email string) {
	exp := m.now().Add(m.ttl)
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    m.encode(email, exp),
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure || r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
		Expires:  exp,
	})
}

// Logout clears the session cookie.
func (m *Manager) Logout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// Email returns the signed-in email, if the cookie is present and valid.
func (m *Manager) Email(r *http.Request) (string, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	return m.decode(c.Value)
}

func (m *Manager) encode(email string, exp time.Time) string {
	e := base64.RawURLEncoding.EncodeToString([]byte(email))
	ts := strconv.FormatInt(exp.Unix(), 10)
	return e + "." + ts + "." + base64.RawURLEncoding.EncodeToString(m.sign(e, ts))
}

func (m *Manager) decode(v string) (string, bool) {
	parts := strings.Split(v, ".")
	if len(parts) != 3 {
		return "", false
	}
	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil || !hmac.Equal(sig, m.sign(parts[0], parts[1])) {
		return "", false
	}
	exp, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || m.now().Unix() >= exp {
		return "", false
	}
	email, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil || len(email) == 0 {
		return "", false
	}
	return string(email), true
}

func (m *Manager) sign(email, ts string) []byte {
	mac := hmac.New(sha256.New, m.key)
	mac.Write([]byte(email))
	mac.Write([]byte{'|'})
	mac.Write([]byte(ts))
	return mac.Sum(nil)
}
