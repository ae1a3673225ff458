// internal/auth/auth.go
//
// Account directory and the two auth stages.
//
// Context
// -------
// Accounts come from configuration (email → bcrypt hash) and are read-only
// for the life of the process.  Registration does not add to them.
//
//   - Directory.Check   – verify an email/password pair.
//   - Authenticate      – global stage; marks the Request Context
//                         authenticated when the session cookie is valid.
//   - RequireLogin      – route stage; redirects anonymous users to /login.
//
// Notes
// -----
// • Unknown emails still pay for one bcrypt comparison so response time
//   does not reveal which accounts exist.
// • Oxford commas, two spaces after periods.

package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/yanizio/campus/internal/core"
	"github.com/yanizio/campus/internal/funnel"
	"github.com/yanizio/campus/internal/pipeline"
	"github.com/yanizio/campus/internal/session"
)

// ErrInvalidCredentials covers both an unknown email and a wrong password.
var ErrInvalidCredentials = errors.New("auth: invalid email or password")

// LoginPath is where RequireLogin sends anonymous users.
const LoginPath = "/login"

// dummyHash is compared against when the email is unknown.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("campus-timing-pad"), bcrypt.MinCost)

// Directory maps lower-cased emails to bcrypt hashes.
type Directory struct {
	accounts map[string][]byte
}

// NewDirectory validates and indexes accounts (email → bcrypt hash).
func NewDirectory(accounts map[string]string) (*Directory, error) {
	d := &Directory{accounts: make(map[string][]byte, len(accounts))}
	for email, hash := range accounts {
		if _, err := bcrypt.Cost([]byte(hash)); err != nil {
			return nil, fmt.Errorf("auth: account %s: %w", email, err)
		}
		d.accounts[normalize(email)] = []byte(hash)
	}
	return d, nil
}

// Check returns nil when password matches the account for email.
func (d *Directory) Check(email, password string) error {
	hash, ok := d.accounts[normalize(email)]
	if !ok {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// Len reports the number of configured accounts.
func (d *Directory) Len() int { return len(d.accounts) }

// Hash returns a bcrypt hash of password at the default cost.
func Hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(h), err
}

func normalize(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

/*──────────────────────────── stages ─────────────────────────────────────*/

// Authenticate reads the session cookie and records the user.
func Authenticate(sessions *session.Manager) pipeline.Stage {
	return func(c *core.Context, _ http.ResponseWriter, r *http.Request) pipeline.Result {
		email, ok := sessions.Email(r)
		if !ok {
			return pipeline.Continue()
		}
		if err := c.SetUser(email); err != nil {
			return pipeline.Fail(funnel.ServerFault(fmt.Errorf("auth: %w", err)))
		}
		return pipeline.Continue()
	}
}

// RequireLogin short-circuits anonymous requests with a redirect.
func RequireLogin() pipeline.Stage {
	return func(c *core.Context, _ http.ResponseWriter, _ *http.Request) pipeline.Result {
		if c.Authenticated() {
			return pipeline.Continue()
		}
		return pipeline.Redirect(LoginPath, http.StatusSeeOther)
	}
}
