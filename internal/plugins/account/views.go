package account

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/keyxmakerx/authpages/internal/templates/layouts"
	"github.com/keyxmakerx/authpages/internal/verification"
)

// writeHTML renders static markup followed by the given components.
func writeHTML(ctx context.Context, w io.Writer, parts ...any) error {
	for _, p := range parts {
		switch v := p.(type) {
		case string:
			if _, err := io.WriteString(w, v); err != nil {
				return err
			}
		case templ.Component:
			if err := v.Render(ctx, w); err != nil {
				return err
			}
		}
	}
	return nil
}

// bannerHTML renders b, or nothing when b is nil.
func bannerHTML(b *Banner) string {
	if b == nil {
		return ""
	}
	return `<div class="authMessage authMessage--` + string(b.Kind) + `" role="status" aria-live="polite">` +
		templ.EscapeString(b.Text) + `</div>`
}

func bottomLink(href, label string) string {
	return `<div class="authBottomLinkWrap"><a class="authBottomLink" href="` +
		templ.EscapeString(href) + `">` + templ.EscapeString(label) + `</a></div>`
}

// --- Forgot password ---

// ForgotPasswordPage renders the full forgot-password page.
func ForgotPasswordPage(v ForgotPasswordView, signInPath string) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return writeHTML(ctx, w,
			`<h1 class="authTitle">Forgot Password?</h1>`+
				`<p class="authSubtitle">Enter your email to reset your password</p>`,
			ForgotPasswordForm(v),
			bottomLink(signInPath, "Back to Sign In"),
		)
	})
	return layouts.Auth("Forgot Password", body)
}

// ForgotPasswordForm renders the swappable form fragment.
func ForgotPasswordForm(v ForgotPasswordView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		invalid := v.EmailError != ""

		var field strings.Builder
		field.WriteString(`<div class="authField"><label class="authLabel" for="email">Email Address</label>`)
		field.WriteString(`<input id="email" name="email" class="authInput" type="email" inputmode="email" autocomplete="email" placeholder="Email Address" required`)
		field.WriteString(` value="` + templ.EscapeString(v.Email) + `"`)
		field.WriteString(` aria-invalid="` + strconv.FormatBool(invalid) + `"`)
		if invalid {
			field.WriteString(` aria-describedby="email-error">`)
			field.WriteString(`<span id="email-error" class="authFieldError" role="alert">` + templ.EscapeString(v.EmailError) + `</span>`)
		} else {
			field.WriteString(`>`)
		}
		field.WriteString(`</div>`)

		return writeHTML(ctx, w,
			`<form id="forgot-password-form" method="post" action="/forgot-password" `+
				`hx-post="/forgot-password" hx-target="this" hx-swap="outerHTML" hx-disabled-elt="find button">`,
			layouts.CSRFField(),
			field.String(),
			`<button class="authButton" type="submit">Reset Password</button>`,
			bannerHTML(v.Banner),
			`</form>`,
		)
	})
}

// --- Reset password ---

// ResetPasswordPage renders the full reset-password page.
func ResetPasswordPage(v ResetPasswordView, signInPath string) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return writeHTML(ctx, w,
			`<h1 class="authTitle">Reset Password</h1>`+
				`<p class="authSubtitle">Enter your new password</p>`,
			ResetPasswordForm(v),
			bottomLink(signInPath, "Back to Sign In"),
		)
	})
	return layouts.Auth("Reset Password", body)
}

// ResetPasswordForm renders the swappable form fragment. Without a token
// only the banner and a link to request a new email are shown.
func ResetPasswordForm(v ResetPasswordView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if v.Disabled {
			return writeHTML(ctx, w,
				`<div id="reset-password-form">`,
				bannerHTML(v.Banner),
				bottomLink("/forgot-password", "Request a new link"),
				`</div>`,
			)
		}

		return writeHTML(ctx, w,
			`<form id="reset-password-form" method="post" action="/reset-password" `+
				`hx-post="/reset-password" hx-target="this" hx-swap="outerHTML" hx-disabled-elt="find button">`,
			layouts.CSRFField(),
			`<input type="hidden" name="token" value="`+templ.EscapeString(v.Token)+`">`,
			`<div class="authField"><label class="authLabel" for="password">New Password</label>`+
				`<input id="password" name="password" class="authInput" type="password" autocomplete="new-password" placeholder="New Password" required></div>`,
			`<div class="authField"><label class="authLabel" for="confirm">Confirm Password</label>`+
				`<input id="confirm" name="confirm" class="authInput" type="password" autocomplete="new-password" placeholder="Confirm Password" required></div>`,
			`<button class="authButton" type="submit">Reset Password</button>`,
			bannerHTML(v.Banner),
			`</form>`,
		)
	})
}

// --- Verify email ---

// VerifyEmailPage renders the full verify-email page for view.
func VerifyEmailPage(view verification.View, token string, settings VerifySettings) templ.Component {
	return layouts.Auth(view.Title(), VerifyEmailCard(view, token, settings))
}

// VerifyEmailCard renders the swappable status card. While verifying, it
// posts the token to /verify-email/confirm as soon as it loads; without
// JavaScript the user presses the button instead. Once a redirect is
// scheduled it asks /verify-email/continue for it after the delay.
func VerifyEmailCard(view verification.View, token string, settings VerifySettings) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		status := view.Status.String()

		parts := []any{
			`<section id="verify-email-card" class="verifyCard verifyCard--` + status + `">`,
			`<div class="verifyIcon verifyIcon--` + status + `" aria-hidden="true"></div>`,
			`<h1 class="authTitle">` + templ.EscapeString(view.Title()) + `</h1>`,
			`<p class="authSubtitle authSubtitle--` + status + `">` + templ.EscapeString(view.Message) + `</p>`,
		}

		switch view.Status {
		case verification.StatusVerifying:
			parts = append(parts,
				`<form method="post" action="/verify-email/confirm" `+
					`hx-post="/verify-email/confirm" hx-trigger="load" hx-target="#verify-email-card" hx-swap="outerHTML">`,
				layouts.CSRFField(),
				`<input type="hidden" name="token" value="`+templ.EscapeString(token)+`">`,
				`<noscript><button class="authButton" type="submit">Verify my email</button></noscript>`,
				`</form>`,
			)
		case verification.StatusSuccess:
			if view.RedirectTo != "" {
				parts = append(parts,
					`<div hx-get="/verify-email/continue" hx-trigger="load delay:`+
						strconv.FormatInt(settings.RedirectDelay.Milliseconds(), 10)+`ms"></div>`)
			}
			parts = append(parts, bottomLink(settings.SignInPath, "Go to Sign In Now"))
		case verification.StatusError:
			parts = append(parts,
				bottomLink("/signup", "Back to Sign Up"),
				bottomLink(settings.SignInPath, "Go to Sign In"),
			)
		}

		parts = append(parts, `</section>`)
		return writeHTML(ctx, w, parts...)
	})
}
