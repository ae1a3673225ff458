// internal/form/forms.go
//
// The site's three forms.  Each type binds itself from url.Values so the
// Validation stage can stay generic.

package form

import (
	"net/url"
	"strings"
)

// Binder fills the receiver from posted values.
type Binder interface {
	Bind(url.Values)
}

// Contact is the /contact form.
type Contact struct {
	Name    string `form:"name" validate:"required,min=2,max=100"`
	Email   string `form:"email" validate:"required,email,max=191"`
	Subject string `form:"subject" validate:"required,min=2,max=150"`
	Message string `form:"message" validate:"required,min=10,max=2000"`
}

func NewContact() Binder { return &Contact{} }

func (f *Contact) Bind(v url.Values) {
	f.Name = field(v, "name")
	f.Email = field(v, "email")
	f.Subject = field(v, "subject")
	f.Message = field(v, "message")
}

// Registration is the /register form.
type Registration struct {
	Name            string `form:"name" validate:"required,min=2,max=100"`
	Email           string `form:"email" validate:"required,email,max=191"`
	Password        string `form:"password" validate:"required,min=8,max=72"`
	ConfirmPassword string `form:"confirm_password" validate:"required,eqfield=Password"`
}

func NewRegistration() Binder { return &Registration{} }

func (f *Registration) Bind(v url.Values) {
	f.Name = field(v, "name")
	f.Email = field(v, "email")
	f.Password = v.Get("password")
	f.ConfirmPassword = v.Get("confirm_password")
}

// Login is the /login form.
type Login struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

func NewLogin() Binder { return &Login{} }

func (f *Login) Bind(v url.Values) {
	f.Email = field(v, "email")
	f.Password = v.Get("password")
}

// field trims surrounding whitespace.  Passwords are taken verbatim.
func field(v url.Values, name string) string {
	return strings.TrimSpace(v.Get(name))
}
