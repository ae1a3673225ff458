// components/contact/contact.go
//
// Contact form component.
//
// Context
// -------
// The /contact scope adds the contact stylesheet and the Validation stage,
// so by the time either leaf runs the CSRF token is in view data and, on
// POST, the bound form and its errors are on the Request Context.
//
//   - GET  /contact  – empty form.
//   - POST /contact  – invalid: re-render with messages, status 400.
//                      valid:   save to the Inbox, render the thank-you.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.

package contact

import (
	"fmt"
	"net/http"

	"github.com/yanizio/campus/internal/component"
	"github.com/yanizio/campus/internal/core"
	"github.com/yanizio/campus/internal/form"
	"github.com/yanizio/campus/internal/funnel"
	"github.com/yanizio/campus/internal/locals"
	"github.com/yanizio/campus/internal/pipeline"
)

// Stylesheet is added to every /contact request.
const Stylesheet = "/css/contact.css"

var _ component.Component = (*Component)(nil)

// Component serves the contact form.
type Component struct {
	inbox Inbox
	csrf  *form.CSRF
}

// New builds the component.  A nil inbox logs submissions only.
func New(inbox Inbox, csrf *form.CSRF) *Component {
	if inbox == nil {
		inbox = LogInbox{}
	}
	return &Component{inbox: inbox, csrf: csrf}
}

func (c *Component) Name() string { return "contact" }

// Migrations returns the inbox schema when the inbox needs one.
func (c *Component) Migrations() []string {
	if m, ok := c.inbox.(interface{ Migrations() []string }); ok {
		return m.Migrations()
	}
	return nil
}

func (c *Component) Routes(p *pipeline.Pipeline) {
	s := p.Scope("/contact",
		locals.Stylesheet(Stylesheet, 0),
		form.Validation(form.NewContact, c.csrf),
	)
	s.Get("/", c.show)
	s.Post("/", c.submit)
}

/*──────────────────────────── Handlers ─────────────────────────────────────*/

func (c *Component) show(ctx *core.Context, _ http.ResponseWriter, _ *http.Request) pipeline.Result {
	ctx.SetTitle("Contact Us")
	return pipeline.Render("contact/form")
}

func (c *Component) submit(ctx *core.Context, _ http.ResponseWriter, r *http.Request) pipeline.Result {
	msg, _ := ctx.Form().(*form.Contact)
	if !form.Valid(ctx) || msg == nil {
		ctx.SetTitle("Contact Us")
		ctx.SetStatus(http.StatusBadRequest)
		ctx.Set("Prefill", msg)
		return pipeline.Render("contact/form")
	}

	if err := c.inbox.Save(r.Context(), *msg); err != nil {
		return pipeline.Fail(funnel.ServerFault(fmt.Errorf("contact save: %w", err)))
	}
	ctx.SetTitle("Thank You")
	ctx.Set("Contact", msg)
	return pipeline.Render("contact/thanks")
}
