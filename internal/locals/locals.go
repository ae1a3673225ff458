// internal/locals/locals.go
//
// Global stages that populate the Request Context before any scope or
// route runs.
//
// Context
// -------
// The application registers them in this order:
//
//	CurrentYear → QueryParams → Greeting → Theme → Visitor → (auth) →
//	base stylesheet → base script → (live-reload client, dev only)
//
// Clock and randomness are injected so tests never touch the wall clock
// or a global RNG.  A write-once violation is a programming error and is
// funnelled as a 500.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package locals

import (
	"fmt"
	"html"
	"net/http"
	"time"

	"github.com/yanizio/campus/internal/core"
	"github.com/yanizio/campus/internal/funnel"
	"github.com/yanizio/campus/internal/pipeline"
	"github.com/yanizio/campus/internal/requestinfo"
	"github.com/yanizio/campus/internal/theme"
)

// Clock returns the current time.
type Clock func() time.Time

// check converts a setter error into the stage's Result.
func check(what string, err error) pipeline.Result {
	if err != nil {
		return pipeline.Fail(funnel.ServerFault(fmt.Errorf("locals: %s: %w", what, err)))
	}
	return pipeline.Continue()
}

// CurrentYear stores now().Year().
func CurrentYear(now Clock) pipeline.Stage {
	return func(c *core.Context, _ http.ResponseWriter, _ *http.Request) pipeline.Result {
		return check("current year", c.SetCurrentYear(now().Year()))
	}
}

// QueryParams copies the request's query string verbatim.
func QueryParams() pipeline.Stage {
	return func(c *core.Context, _ http.ResponseWriter, r *http.Request) pipeline.Result {
		return check("query params", c.SetQueryParams(r.URL.Query()))
	}
}

// GreetingFor maps the hour of t to a greeting.
func GreetingFor(t time.Time) string {
	switch h := t.Hour(); {
	case h < 12:
		return "Good Morning!"
	case h < 18:
		return "Good Afternoon!"
	default:
		return "Good Evening!"
	}
}

// Greeting stores GreetingFor(now()).
func Greeting(now Clock) pipeline.Stage {
	return func(c *core.Context, _ http.ResponseWriter, _ *http.Request) pipeline.Result {
		return check("greeting", c.SetGreeting(GreetingFor(now())))
	}
}

// Theme picks a body class with intn.
func Theme(intn func(n int) int) pipeline.Stage {
	return func(c *core.Context, _ http.ResponseWriter, _ *http.Request) pipeline.Result {
		return check("theme", c.SetThemeClass(theme.Pick(intn)))
	}
}

// Visitor attaches parsed UA and geo data.  A nil resolver still parses
// the UA.
func Visitor(res *requestinfo.Resolver) pipeline.Stage {
	if res == nil {
		res = &requestinfo.Resolver{}
	}
	return func(c *core.Context, _ http.ResponseWriter, r *http.Request) pipeline.Result {
		return check("visitor", c.SetInfo(res.Collect(r)))
	}
}

/*──────────────────────────── assets ─────────────────────────────────────*/

// StyleTag renders a stylesheet link.
func StyleTag(href string) string {
	return `<link rel="stylesheet" href="` + html.EscapeString(href) + `">`
}

// ScriptTag renders a deferred external script.
func ScriptTag(src string) string {
	return `<script src="` + html.EscapeString(src) + `" defer></script>`
}

// Style appends raw content to the style registry.
func Style(content string, priority int) pipeline.Stage {
	return func(c *core.Context, _ http.ResponseWriter, _ *http.Request) pipeline.Result {
		c.Assets.AddStyleWithPriority(content, priority)
		return pipeline.Continue()
	}
}

// Script appends raw content to the script registry.
func Script(content string, priority int) pipeline.Stage {
	return func(c *core.Context, _ http.ResponseWriter, _ *http.Request) pipeline.Result {
		c.Assets.AddScriptWithPriority(content, priority)
		return pipeline.Continue()
	}
}

// Stylesheet is Style(StyleTag(href), priority).
func Stylesheet(href string, priority int) pipeline.Stage {
	return Style(StyleTag(href), priority)
}

// ExternalScript is Script(ScriptTag(src), priority).
func ExternalScript(src string, priority int) pipeline.Stage {
	return Script(ScriptTag(src), priority)
}

/*──────────────────────────── demo ───────────────────────────────────────*/

// DemoHeaderValues returns a fresh copy of the headers DemoHeaders sets.
func DemoHeaderValues() map[string]string {
	return map[string]string{
		"X-Demo-Page":       "true",
		"X-Middleware-Demo": "Hello Class!",
	}
}

// DemoHeaders sets the two headers the /demo page advertises.
func DemoHeaders() pipeline.Stage {
	values := DemoHeaderValues()
	return func(_ *core.Context, w http.ResponseWriter, _ *http.Request) pipeline.Result {
		for k, v := range values {
			w.Header().Set(k, v)
		}
		return pipeline.Continue()
	}
}
