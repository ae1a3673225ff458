// internal/config/model.go
//
// Typed configuration model.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from its overlay layers:
//
//   • built-in defaults                          – port 3000, production,
//   • optional `conf/.env`                        – dotenv values,
//   • `conf/global.yaml`                          – optional static file,
//   • bare `PORT`, `NODE_ENV`, `APP_ENV`          – the classic variables,
//   • `CAMPUS_`-prefixed environment overrides    – highest precedence.
//
// Any string value beginning with `vault:` is resolved through Vault
// *before* unmarshalling, so the model never stores Vault URIs.
//
// Validation happens immediately after unmarshal; the app fails fast if
// a field is malformed.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Oxford commas, two spaces after periods.  No em-dash.

package config

import (
	"net"
	"strconv"
	"strings"
	"time"
)

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	Host       string `koanf:"host"`
	Port       int    `koanf:"port"        validate:"min=1,max=65534"`
	ForceHTTPS bool   `koanf:"force_https"`
}

// Addr is host:port for the main listener.
func (h HTTP) Addr() string { return net.JoinHostPort(h.Host, strconv.Itoa(h.Port)) }

// LiveReloadAddr is host:(port+1).
func (h HTTP) LiveReloadAddr() string { return net.JoinHostPort(h.Host, strconv.Itoa(h.Port+1)) }

//
// Environment section
//

// Env carries the environment mode ("production", "development", …).
type Env struct {
	Mode string `koanf:"mode" validate:"required"`
}

//
// Logging section
//

// Log controls the zap logger.
type Log struct {
	Level   string `koanf:"level"   validate:"oneof=debug info warn error"`
	Console bool   `koanf:"console"`
}

//
// Database section
//

// Database is optional.  With no driver the site serves its built-in
// tables.  The DSN may carry a vault: reference so the password stays out
// of flat files.
type Database struct {
	Driver  string `koanf:"driver"  validate:"omitempty,oneof=mysql sqlite"`
	DSN     string `koanf:"dsn"     validate:"required_with=Driver"`
	Migrate bool   `koanf:"migrate"`
}

//
// Secrets and accounts
//

// Session configures the signed login cookie.
type Session struct {
	Key string        `koanf:"key"`
	TTL time.Duration `koanf:"ttl"`
}

// CSRF configures form tokens.
type CSRF struct {
	Key string `koanf:"key"`
}

// Account is one login permitted by the site.
type Account struct {
	Email string `koanf:"email" validate:"required,email"`
	Hash  string `koanf:"hash"  validate:"required"`
}

// Auth lists the configured accounts.
type Auth struct {
	Accounts []Account `koanf:"accounts" validate:"dive"`
}

//
// Optional features
//

// Metrics exposes Prometheus collectors.
type Metrics struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path" validate:"required_if=Enabled true"`
}

// Geo points at a GeoLite2-City database; empty disables geo lookups.
type Geo struct {
	DB string `koanf:"db"`
}

// Views selects the template source.  Empty Dir means the embedded set.
type Views struct {
	Dir string `koanf:"dir"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime, never set in YAML or env.
type Paths struct {
	Root string // CAMPUS_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP     HTTP     `koanf:"http"`
	Env      Env      `koanf:"env"`
	Log      Log      `koanf:"log"`
	Database Database `koanf:"database"`
	Session  Session  `koanf:"session"`
	CSRF     CSRF     `koanf:"csrf"`
	Auth     Auth     `koanf:"auth"`
	Metrics  Metrics  `koanf:"metrics"`
	Geo      Geo      `koanf:"geo"`
	Views    Views    `koanf:"views"`
	Paths    Paths    `koanf:"-"`
}

// Production reports whether verbose error output must be suppressed.
func (c *Config) Production() bool { return c.Env.Mode == "production" }

// LiveReload reports whether the live-reload channel should start.
func (c *Config) LiveReload() bool { return strings.Contains(c.Env.Mode, "dev") }

// AccountMap returns email → hash for auth.NewDirectory.
func (c *Config) AccountMap() map[string]string {
	out := make(map[string]string, len(c.Auth.Accounts))
	for _, a := range c.Auth.Accounts {
		out[a.Email] = a.Hash
	}
	return out
}
