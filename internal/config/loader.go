// internal/config/loader.go
//
// Configuration loader.
//
/*
Context
--------
`Load()` builds one immutable `Config` struct from these layers (highest
precedence last):

  1. Built-in defaults (port 3000, mode production, log level info).
  2. Optional `<root>/conf/.env`, loaded into the process environment.
  3. Optional `<root>/conf/global.yaml`.
  4. Bare `PORT`, `NODE_ENV`, and `APP_ENV`, the variables deploy scripts
     already set.
  5. Environment variables prefixed `CAMPUS_`, where `__` maps to “.”
     (e.g., `CAMPUS_HTTP__PORT → http.port`).

Before unmarshalling, every string of the form
`vault:<mount>/<path>#<key>` is replaced by the secret it names.  The
tree is then unmarshalled, validated, enriched with the runtime root
path, and cached in an `atomic.Pointer` for lock-free reads.  Nothing
mutates it afterwards.

Instrumentation
---------------
  • DEBUG spans : root discovery, YAML read, env overlay.
  • ERROR spans : YAML parse, vault, unmarshal, validation failures.
  • INFO  span  : final “config loaded” with key highlights.
  • Logs use the global *sugared* logger (`zap.S()`) so early boot issues
    surface even before the file logger is installed.

Notes
-----
  • `rootDir()` climbs the cwd tree until it finds `conf/`; this lets
    `go run ./cmd/web` work from any sub-directory.
  • Oxford commas, two spaces after periods.
*/
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"

	"github.com/yanizio/campus/internal/vault"
)

const (
	envPrefix   = "CAMPUS_"
	vaultPrefix = "vault:"
	secretTTL   = 5 * time.Minute
)

var current atomic.Pointer[Config]

// SecretFunc resolves one KV-v2 secret.  The Vault client satisfies it.
type SecretFunc func(ctx context.Context, path, key string) (string, error)

// Options tunes Load.  The zero value discovers the root and dials Vault
// only if a vault: reference is present.
type Options struct {
	Root    string
	Secrets SecretFunc
}

var defaults = map[string]any{
	"http.host":        "",
	"http.port":        3000,
	"http.force_https": false,
	"env.mode":         "production",
	"log.level":        "info",
	"session.ttl":      "336h",
	"metrics.enabled":  false,
	"metrics.path":     "/metrics",
}

/*──────────────────────────── root discovery ───────────────────────────────*/

// rootDir resolves CAMPUS_ROOT or climbs directories until conf/ is found.
// Falls back to the executable heuristic for the production layout.
func rootDir() string {
	if r := os.Getenv("CAMPUS_ROOT"); r != "" {
		return r
	}

	wd, _ := os.Getwd()
	dir := wd
	for {
		if st, err := os.Stat(filepath.Join(dir, "conf")); err == nil && st.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir { // reached filesystem root
			break
		}
		dir = parent
	}

	exe, _ := os.Executable()
	if filepath.Base(filepath.Dir(exe)) == "bin" {
		return filepath.Dir(filepath.Dir(exe))
	}
	return wd
}

/*─────────────────────────────── loader ───────────────────────────────────*/

// Load merges every layer, resolves secrets, validates, and caches Config.
func Load(ctx context.Context, opts Options) (*Config, error) {
	root := opts.Root
	if root == "" {
		root = rootDir()
	}
	zap.S().Debugw("config root resolved", "root", root)

	// .env (optional, never overrides the real environment)
	_ = godotenv.Load(filepath.Join(root, "conf", ".env"))

	k := koanf.New(".")
	for key, val := range defaults {
		if err := k.Set(key, val); err != nil {
			return nil, err
		}
	}

	yamlPath := filepath.Join(root, "conf", "global.yaml")
	if err := k.Load(file.Provider(yamlPath), yaml.Parser()); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			zap.S().Errorw("config yaml load failed", "file", yamlPath, "err", err)
			return nil, err
		}
		zap.S().Debugw("config yaml absent, using defaults", "file", yamlPath)
	} else {
		zap.S().Debugw("config yaml loaded", "file", yamlPath)
	}

	if err := loadBareEnv(k); err != nil {
		return nil, err
	}

	// Env overrides: CAMPUS_HTTP__PORT → http.port
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, envPrefix)
		return strings.ToLower(strings.ReplaceAll(s, "__", "."))
	}), nil); err != nil {
		zap.S().Errorw("config env overlay failed", "err", err)
		return nil, err
	}

	if err := resolveSecrets(ctx, k, opts.Secrets); err != nil {
		zap.S().Errorw("config vault resolution failed", "err", err)
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		zap.S().Errorw("config unmarshal failed", "err", err)
		return nil, err
	}

	cfg.Env.Mode = strings.ToLower(strings.TrimSpace(cfg.Env.Mode))
	cfg.Paths.Root = root
	if err := validateStruct(&cfg); err != nil {
		zap.S().Errorw("config validation failed", "err", err)
		return nil, err
	}

	current.Store(&cfg)
	zap.S().Infow("config loaded",
		"addr", cfg.HTTP.Addr(),
		"mode", cfg.Env.Mode,
		"database", cfg.Database.Driver,
		"accounts", len(cfg.Auth.Accounts),
		"root", cfg.Paths.Root,
	)
	return &cfg, nil
}

// loadBareEnv maps PORT and NODE_ENV / APP_ENV onto the tree.  APP_ENV
// wins when both are set.
func loadBareEnv(k *koanf.Koanf) error {
	pairs := []struct{ env, key string }{
		{"PORT", "http.port"},
		{"NODE_ENV", "env.mode"},
		{"APP_ENV", "env.mode"},
	}
	for _, p := range pairs {
		if v, ok := os.LookupEnv(p.env); ok && v != "" {
			if err := k.Set(p.key, v); err != nil {
				return err
			}
		}
	}
	return nil
}

/*──────────────────────────── vault ───────────────────────────────────────*/

// resolveSecrets replaces vault: references in place.  The Vault client is
// only created when at least one reference exists and secrets is nil.
func resolveSecrets(ctx context.Context, k *koanf.Koanf, secrets SecretFunc) error {
	refs := map[string]string{}
	for key, val := range k.All() {
		if s, ok := val.(string); ok && strings.HasPrefix(s, vaultPrefix) {
			refs[key] = s
		}
	}
	if len(refs) == 0 {
		return nil
	}

	if secrets == nil {
		cli, err := vault.New(ctx, zap.S().Debugf)
		if err != nil {
			return err
		}
		secrets = func(ctx context.Context, path, key string) (string, error) {
			return cli.GetKV(ctx, path, key, secretTTL)
		}
	}

	for key, ref := range refs {
		path, field, err := parseRef(ref)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		val, err := secrets(ctx, path, field)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		if err := k.Set(key, val); err != nil {
			return err
		}
		zap.S().Debugw("config secret resolved", "key", key, "path", path)
	}
	return nil
}

// parseRef splits "vault:secret/campus#db_password".
func parseRef(ref string) (path, key string, err error) {
	path, key, ok := strings.Cut(strings.TrimPrefix(ref, vaultPrefix), "#")
	if !ok || path == "" || key == "" {
		return "", "", fmt.Errorf("malformed vault reference %q (want vault:<mount>/<path>#<key>)", ref)
	}
	return path, key, nil
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

// Get returns the config cached by the last successful Load.
func Get() *Config { return current.Load() }
