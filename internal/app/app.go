// internal/app/app.go
//
// Application wiring.
//
// Context
// -------
// New turns a validated *config.Config into a ready http.Handler:
//
//	root chi router
//	  ├─ Security headers, optional ForceHTTPS, Compress
//	  ├─ /css/*, /js/*      static files (bypass the pipeline)
//	  ├─ /metrics           promhttp (when metrics.enabled)
//	  └─ /                  pipeline
//	                          ├─ Wrap: RequestLog
//	                          ├─ global stages (see locals)
//	                          └─ components, in registration order
//
// Run serves the handler and, in development, the live-reload hub plus
// the template watcher, all under one errgroup.
//
// Notes
// -----
// • Collaborators default to the built-in tables.  Setting
//   database.driver switches catalog, faculty, and the contact inbox to
//   SQL, and database.migrate applies component schemas at boot.
// • Oxford commas, two spaces after periods.
package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yanizio/campus/components/account"
	catalogc "github.com/yanizio/campus/components/catalog"
	"github.com/yanizio/campus/components/contact"
	"github.com/yanizio/campus/components/demo"
	facultyc "github.com/yanizio/campus/components/faculty"
	"github.com/yanizio/campus/components/pages"
	"github.com/yanizio/campus/internal/auth"
	"github.com/yanizio/campus/internal/catalog"
	"github.com/yanizio/campus/internal/component"
	"github.com/yanizio/campus/internal/config"
	"github.com/yanizio/campus/internal/database"
	"github.com/yanizio/campus/internal/faculty"
	"github.com/yanizio/campus/internal/form"
	"github.com/yanizio/campus/internal/funnel"
	"github.com/yanizio/campus/internal/livereload"
	"github.com/yanizio/campus/internal/locals"
	"github.com/yanizio/campus/internal/middleware"
	"github.com/yanizio/campus/internal/pipeline"
	"github.com/yanizio/campus/internal/requestinfo"
	"github.com/yanizio/campus/internal/server"
	"github.com/yanizio/campus/internal/session"
	"github.com/yanizio/campus/internal/view"
	"github.com/yanizio/campus/web"
)

// Base assets every page carries.
const (
	MainStylesheet = "/css/main.css"
	MainScript     = "/js/main.js"
)

// Options injects process-level dependencies.  Zero values use the wall
// clock, math/rand, and zap.S().
type Options struct {
	Now  locals.Clock
	Intn func(n int) int
	Log  *zap.SugaredLogger
}

// App is a fully wired site.
type App struct {
	cfg      *config.Config
	log      *zap.SugaredLogger
	views    *view.Engine
	viewDir  string
	pipeline *pipeline.Pipeline
	registry *component.Registry
	handler  http.Handler

	db  *sqlx.DB
	geo *requestinfo.Resolver
}

// New wires every collaborator for cfg.  Call Close when done.
func New(ctx context.Context, cfg *config.Config, opts Options) (_ *App, err error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Intn == nil {
		opts.Intn = rand.Intn
	}
	if opts.Log == nil {
		opts.Log = zap.S()
	}

	a := &App{cfg: cfg, log: opts.Log}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	// Views
	tmpl, dir, err := viewSource(cfg)
	if err != nil {
		return nil, err
	}
	if a.views, err = view.New(tmpl); err != nil {
		return nil, fmt.Errorf("load views: %w", err)
	}
	a.viewDir = dir

	// Request info
	if a.geo, err = requestinfo.Open(cfg.Geo.DB); err != nil {
		return nil, err
	}

	// Auth
	accounts, err := auth.NewDirectory(cfg.AccountMap())
	if err != nil {
		return nil, err
	}
	sessions := session.New([]byte(cfg.Session.Key), cfg.Session.TTL, cfg.Production())
	csrf := form.NewCSRF([]byte(cfg.CSRF.Key))

	// Collaborators
	var (
		courses catalog.Store = catalog.NewMemory(catalog.Courses()...)
		members faculty.Store = faculty.NewMemory(faculty.Members()...)
		inbox   contact.Inbox = contact.LogInbox{}
		sql     bool
	)
	if cfg.Database.Driver != "" {
		if a.db, err = database.Open(cfg.Database.Driver, cfg.Database.DSN); err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		courses = catalog.NewSQLStore(a.db)
		members = faculty.NewSQLStore(a.db)
		inbox = contact.NewSQLInbox(a.db)
		sql = true
	}

	a.registry = component.NewRegistry()
	a.registry.Register(
		pages.New(),
		demo.New(),
		catalogc.New(courses, sql),
		facultyc.New(members, sql),
		contact.New(inbox, csrf),
		account.New(accounts, sessions, csrf),
	)
	if a.db != nil && cfg.Database.Migrate {
		if err = a.registry.Migrate(ctx, a.db); err != nil {
			return nil, err
		}
	}

	// Pipeline
	p := pipeline.New(pipeline.Options{
		Env:      cfg.Env.Mode,
		Renderer: a.views,
		Funnel:   funnel.New(opts.Log, a.views, cfg.Production()),
		Log:      opts.Log,
	})
	p.Wrap(middleware.RequestLog(opts.Log.Desugar()))
	p.Use(
		locals.CurrentYear(opts.Now),
		locals.QueryParams(),
		locals.Greeting(opts.Now),
		locals.Theme(opts.Intn),
		locals.Visitor(a.geo),
		auth.Authenticate(sessions),
		locals.Stylesheet(MainStylesheet, 10),
		locals.ExternalScript(MainScript, 0),
	)
	if cfg.LiveReload() {
		p.Use(locals.Script(livereload.ClientScript(cfg.HTTP.Port+1), 0))
	}
	a.registry.Mount(p)
	a.pipeline = p

	a.handler = a.root()
	opts.Log.Infow("app wired",
		"mode", cfg.Env.Mode, "components", len(a.registry.All()),
		"routes", len(p.Routes()), "database", cfg.Database.Driver, "accounts", accounts.Len())
	return a, nil
}

// root builds the outer router.
func (a *App) root() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Security(!a.cfg.Production()))
	if a.cfg.HTTP.ForceHTTPS {
		r.Use(middleware.ForceHTTPS)
	}
	r.Use(chimw.Compress(5, "text/html", "text/css", "text/javascript", "application/json"))

	static := http.FileServer(http.FS(web.Public()))
	r.Handle("/css/*", static)
	r.Handle("/js/*", static)

	if a.cfg.Metrics.Enabled {
		r.Handle(a.cfg.Metrics.Path, promhttp.Handler())
	}
	r.Mount("/", a.pipeline.Handler())
	return r
}

// viewSource picks the on-disk template tree when views.dir is set, or
// when developing from a checkout, and the embedded set otherwise.  dir is
// "" for the embedded set.
func viewSource(cfg *config.Config) (fs.FS, string, error) {
	dir := cfg.Views.Dir
	if dir == "" && cfg.LiveReload() && cfg.Paths.Root != "" {
		cand := filepath.Join(cfg.Paths.Root, "web", "templates")
		if st, err := os.Stat(cand); err == nil && st.IsDir() {
			dir = cand
		}
	}
	if dir == "" {
		return web.Templates(), "", nil
	}
	if !filepath.IsAbs(dir) && cfg.Paths.Root != "" {
		dir = filepath.Join(cfg.Paths.Root, dir)
	}
	if st, err := os.Stat(dir); err != nil || !st.IsDir() {
		return nil, "", fmt.Errorf("views.dir %q is not a directory", dir)
	}
	return os.DirFS(dir), dir, nil
}

// Handler returns the root handler.
func (a *App) Handler() http.Handler { return a.handler }

// Routes lists the pipeline routes.
func (a *App) Routes() []pipeline.RouteInfo { return a.pipeline.Routes() }

// Run serves until ctx is done.  With live reload enabled it also runs the
// hub on port+1 and, for on-disk templates, the watcher.
func (a *App) Run(ctx context.Context) error {
	var (
		hub     *livereload.Hub
		watcher *livereload.Watcher
	)
	if a.cfg.LiveReload() {
		hub = livereload.NewHub(a.log)
		if a.viewDir != "" {
			w, err := livereload.NewWatcher(a.viewDir, livereload.DefaultDebounce, func() {
				if err := a.views.Reload(); err != nil {
					a.log.Errorw("view reload failed", "err", err)
					return
				}
				n := hub.Broadcast(livereload.MsgReload)
				a.log.Debugw("views reloaded", "clients", n)
			}, a.log)
			if err != nil {
				return fmt.Errorf("watch %s: %w", a.viewDir, err)
			}
			watcher = w
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(ctx, server.New(a.cfg.HTTP.Addr(), a.handler))
	})
	if hub != nil {
		g.Go(func() error {
			defer hub.Close()
			addr := a.cfg.HTTP.LiveReloadAddr()
			if err := server.Run(ctx, server.New(addr, hub)); err != nil {
				// The site stays up without live reload.
				a.log.Errorw("live reload unavailable", "addr", addr, "err", err)
			}
			return nil
		})
	}
	if watcher != nil {
		g.Go(func() error { return watcher.Run(ctx) })
	}
	return g.Wait()
}

// Close releases the database and geo handles.
func (a *App) Close() error {
	var errs []error
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	if a.geo != nil {
		errs = append(errs, a.geo.Close())
	}
	return errors.Join(errs...)
}
