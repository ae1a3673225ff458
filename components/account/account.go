// components/account/account.go
//
// Account component: registration, login, logout, and the dashboard.
//
// Context
// -------
// Accounts are configured, not stored.  Registration validates and
// acknowledges the submission but creates nothing; login checks the
// configured directory with bcrypt and issues a signed session cookie.
//
//   - GET/POST /register  – registration form.
//   - GET/POST /login     – login form; success redirects to /dashboard.
//   - GET      /logout    – clears the cookie, redirects to /.
//   - GET      /dashboard – RequireLogin, else redirect to /login.
//
// /register and /login each get their own stylesheet and Validation stage
// through a scope.
//
//------------------------------------------------------------------------------

package account

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/yanizio/campus/internal/auth"
	"github.com/yanizio/campus/internal/component"
	"github.com/yanizio/campus/internal/core"
	"github.com/yanizio/campus/internal/form"
	"github.com/yanizio/campus/internal/locals"
	"github.com/yanizio/campus/internal/pipeline"
	"github.com/yanizio/campus/internal/session"
)

// Compile-time assertion: *Component satisfies component.Component.
var _ component.Component = (*Component)(nil)

// DashboardPath is where a successful login lands.
const DashboardPath = "/dashboard"

const msgBadLogin = "Incorrect email or password."

// Component encapsulates the account flows.
type Component struct {
	dir      *auth.Directory
	sessions *session.Manager
	csrf     *form.CSRF
}

// New builds the component.
func New(dir *auth.Directory, sessions *session.Manager, csrf *form.CSRF) *Component {
	return &Component{dir: dir, sessions: sessions, csrf: csrf}
}

/*────────────────── component.Component methods ───────────────────────────*/

// Name returns the canonical component key.
func (c *Component) Name() string { return "account" }

// Migrations returns nil; accounts live in configuration.
func (c *Component) Migrations() []string { return nil }

// Routes registers the account scopes and routes.
func (c *Component) Routes(p *pipeline.Pipeline) {
	reg := p.Scope("/register",
		locals.Stylesheet("/css/registration.css", 0),
		form.Validation(form.NewRegistration, c.csrf),
	)
	reg.Get("/", c.showRegister)
	reg.Post("/", c.register)

	login := p.Scope(auth.LoginPath,
		locals.Stylesheet("/css/login.css", 0),
		form.Validation(form.NewLogin, c.csrf),
	)
	login.Get("/", c.showLogin)
	login.Post("/", c.login)

	p.Get("/logout", c.logout)
	p.Get(DashboardPath, c.dashboard, auth.RequireLogin())
}

/*──────────────────────────── Handlers ─────────────────────────────────────*/

func (c *Component) showRegister(ctx *core.Context, _ http.ResponseWriter, _ *http.Request) pipeline.Result {
	ctx.SetTitle("Register")
	return pipeline.Render("account/register")
}

func (c *Component) register(ctx *core.Context, _ http.ResponseWriter, _ *http.Request) pipeline.Result {
	f, _ := ctx.Form().(*form.Registration)
	if !form.Valid(ctx) || f == nil {
		ctx.SetTitle("Register")
		ctx.SetStatus(http.StatusBadRequest)
		if f != nil {
			ctx.Set("Prefill", map[string]string{"Name": f.Name, "Email": f.Email})
		}
		return pipeline.Render("account/register")
	}
	zap.S().Infow("registration received", "email", f.Email)
	ctx.SetTitle("Registration Complete")
	ctx.Set("Name", f.Name)
	return pipeline.Render("account/registered")
}

func (c *Component) showLogin(ctx *core.Context, _ http.ResponseWriter, _ *http.Request) pipeline.Result {
	if ctx.Authenticated() {
		return pipeline.Redirect(DashboardPath, http.StatusSeeOther)
	}
	ctx.SetTitle("Login")
	return pipeline.Render("account/login")
}

func (c *Component) login(ctx *core.Context, _ http.ResponseWriter, _ *http.Request) pipeline.Result {
	f, _ := ctx.Form().(*form.Login)
	if !form.Valid(ctx) || f == nil {
		return c.rejectLogin(ctx, f, "")
	}
	if err := c.dir.Check(f.Email, f.Password); err != nil {
		zap.S().Infow("login failed", "email", f.Email)
		return c.rejectLogin(ctx, f, msgBadLogin)
	}

	email := f.Email
	return pipeline.Respond(func(w http.ResponseWriter, r *http.Request) {
		c.sessions.Login(w, r, email)
		http.Redirect(w, r, DashboardPath, http.StatusSeeOther)
	})
}

func (c *Component) rejectLogin(ctx *core.Context, f *form.Login, msg string) pipeline.Result {
	ctx.SetTitle("Login")
	ctx.SetStatus(http.StatusBadRequest)
	if msg != "" {
		ctx.Set("LoginError", msg)
	}
	if f != nil {
		ctx.Set("Prefill", map[string]string{"Email": f.Email})
	}
	return pipeline.Render("account/login")
}

func (c *Component) logout(*core.Context, http.ResponseWriter, *http.Request) pipeline.Result {
	return pipeline.Respond(func(w http.ResponseWriter, r *http.Request) {
		c.sessions.Logout(w, r)
		http.Redirect(w, r, "/", http.StatusSeeOther)
	})
}

func (c *Component) dashboard(ctx *core.Context, _ http.ResponseWriter, _ *http.Request) pipeline.Result {
	ctx.SetTitle("Dashboard")
	ctx.Set("Email", ctx.User())
	return pipeline.Render("account/dashboard")
}
