// Package pages holds full-page components that do not belong to a plugin.
package pages

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/keyxmakerx/authpages/internal/templates/layouts"
)

// ErrorPage renders the generic error page for code with message. The
// request ID, when known, is shown so users can quote it in support requests.
func ErrorPage(code int, message, signInPath string) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		html := `<h1 class="authTitle">` + strconv.Itoa(code) + `</h1>` +
			`<p class="authSubtitle">` + templ.EscapeString(message) + `</p>`
		if id := layouts.GetRequestID(ctx); id != "" {
			html += `<p class="authHint">Reference: <code>` + templ.EscapeString(id) + `</code></p>`
		}
		html += `<div class="authBottomLinkWrap"><a class="authBottomLink" href="` + templ.EscapeString(signInPath) + `">Go to Sign In</a></div>`
		_, err := io.WriteString(w, html)
		return err
	})
	return layouts.Auth("Error", body)
}
