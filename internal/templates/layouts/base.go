package layouts

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Auth wraps body in the shared auth page shell: document head, stylesheet,
// htmx, and the centered card. The CSRF token is exposed to htmx through
// hx-headers so every hx-post carries it.
func Auth(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		csrf := templ.EscapeString(GetCSRFToken(ctx))

		head := `<!DOCTYPE html><html lang="en"><head>` +
			`<meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1">` +
			`<meta name="referrer" content="no-referrer">` +
			`<title>` + templ.EscapeString(title) + `</title>` +
			`<link rel="stylesheet" href="/static/css/auth-pages.css">` +
			`<script src="/static/js/htmx.min.js" defer></script>` +
			`</head><body hx-headers='{"X-CSRF-Token": "` + csrf + `"}'>` +
			`<main class="authPage"><div class="authCard">`
		if _, err := io.WriteString(w, head); err != nil {
			return err
		}

		if err := body.Render(ctx, w); err != nil {
			return err
		}

		_, err := io.WriteString(w, `</div></main></body></html>`)
		return err
	})
}

// CSRFField renders the hidden CSRF input for plain form posts.
func CSRFField() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<input type="hidden" name="csrf_token" value="`+
			templ.EscapeString(GetCSRFToken(ctx))+`">`)
		return err
	})
}
