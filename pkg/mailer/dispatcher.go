package mailer

import (
	"context"
	"net/url"

	"github.com/oksasatya/go-user-accounts/pkg/helpers"
	tpl "github.com/oksasatya/go-user-accounts/pkg/mailer/templates"
)

// QueueDispatcher publishes email jobs to RabbitMQ for the email worker
// to deliver. Dispatch is fire-and-forget from the caller's perspective: a
// failed publish must never roll back the state change that triggered it.
type QueueDispatcher struct {
	Pub       *helpers.RabbitPublisher
	VerifyURL string
	ResetURL  string
	Enabled   bool
}

func NewQueueDispatcher(pub *helpers.RabbitPublisher, verifyURL, resetURL string, enabled bool) *QueueDispatcher {
	return &QueueDispatcher{Pub: pub, VerifyURL: verifyURL, ResetURL: resetURL, Enabled: enabled}
}

func (d *QueueDispatcher) SendVerificationEmail(ctx context.Context, to, name, token string) error {
	return d.publish(ctx, to, tpl.VerifyEmail, name, tokenLink(d.VerifyURL, token))
}

func (d *QueueDispatcher) SendPasswordResetEmail(ctx context.Context, to, name, token string) error {
	return d.publish(ctx, to, tpl.ResetPassword, name, tokenLink(d.ResetURL, token))
}

func (d *QueueDispatcher) publish(ctx context.Context, to, template, name, link string) error {
	if d == nil || !d.Enabled || d.Pub == nil {
		return nil
	}
	job := EmailJob{
		To:       to,
		Template: template,
		Data: map[string]string{
			"name":       name,
			"action_url": link,
		},
	}
	return d.Pub.PublishJSON(ctx, job)
}

func tokenLink(base, token string) string {
	return base + "?token=" + url.QueryEscape(token)
}
