package mailer

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Template selects one of the templates package entries ("verify_email",
// "reset_password"); Data carries its interpolation fields.
type EmailJob struct {
	To       string            `json:"to"`
	Template string            `json:"template"`
	Data     map[string]string `json:"data,omitempty"`
}
