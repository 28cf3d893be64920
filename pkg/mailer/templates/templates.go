package templates

import (
	"bytes"
	"fmt"
	htmpl "html/template"
)

// Template names carried in EmailJob.Template.
const (
	VerifyEmail   = "verify_email"
	ResetPassword = "reset_password"
)

// EmailData holds the fields the account emails interpolate.
type EmailData struct {
	Name      string
	Email     string
	ActionURL string
	AppName   string
}

type emailTemplate struct {
	subject string
	html    string
}

var registry = map[string]emailTemplate{
	VerifyEmail: {
		subject: "Verify Your Email Address",
		html: `<html>
  <body>
    <h2>Verify Your Email Address</h2>
    <p>Hi {{.Name}}, thank you for registering! Please click the link below to verify your email address:</p>
    <p><a href="{{.ActionURL}}">Verify Email</a></p>
    <p>If you didn't create an account, please ignore this email.</p>
  </body>
</html>`,
	},
	ResetPassword: {
		subject: "Password Reset Request",
		html: `<html>
  <body>
    <h2>Password Reset Request</h2>
    <p>Hi {{.Name}}, you requested a password reset. Click the link below to reset your password:</p>
    <p><a href="{{.ActionURL}}">Reset Password</a></p>
    <p>If you didn't request this, please ignore this email.</p>
  </body>
</html>`,
	},
}

// Render produces the subject and HTML body for the named template.
func Render(name string, data EmailData) (subject string, html string, err error) {
	t, ok := registry[name]
	if !ok {
		return "", "", fmt.Errorf("unknown email template %q", name)
	}
	tpl, err := htmpl.New(name).Parse(t.html)
	if err != nil {
		return "", "", fmt.Errorf("parse %q: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("exec %q: %w", name, err)
	}
	return t.subject, buf.String(), nil
}
