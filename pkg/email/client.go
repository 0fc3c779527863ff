package email

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"time"
)

// Client handles email sending operations.
type Client struct {
	host     string
	port     string
	username string
	password string
	from     string
	secure   bool
}

// NewClient creates a new email client. It returns nil when host is empty;
// callers treat a nil client as email disabled.
func NewClient(host, port, username, password, from string, secure bool) *Client {
	if host == "" {
		return nil
	}

	return &Client{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		secure:   secure,
	}
}

// EmailOptions represents the options for sending an email.
type EmailOptions struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// SendEmail sends an email with HTML content.
func (c *Client) SendEmail(opts EmailOptions) error {
	// Wrap HTML in template
	wrappedHTML := c.wrapHTMLTemplate(opts.HTML)

	// Build message
	message := c.buildMessage(opts.To, opts.Subject, wrappedHTML, opts.Text)

	// Connect and send
	auth := smtp.PlainAuth("", c.username, c.password, c.host)
	addr := fmt.Sprintf("%s:%s", c.host, c.port)

	err := smtp.SendMail(addr, auth, c.from, []string{opts.To}, []byte(message))
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

// wrapHTMLTemplate wraps the HTML content in a nice template.
func (c *Client) wrapHTMLTemplate(content string) string {
	tmpl := `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="margin: 0; padding: 0; font-family: Arial, sans-serif; background: #f9f9f9;">
    <div style="padding: 32px;">
        <div style="max-width: 600px; margin: auto; background: #fff; border-radius: 8px; box-shadow: 0 2px 8px #eee; padding: 32px;">
            <div style="text-align: center; margin-bottom: 24px;">
                <h2 style="color: #2a7ae2; margin: 0;">CredTube Notification</h2>
            </div>
            <div style="font-size: 16px; color: #333;">
                {{.Content}}
            </div>
            <div style="margin-top: 32px; text-align: center; color: #aaa; font-size: 12px;">
                &copy; {{.Year}} CredTube. All rights reserved.
            </div>
        </div>
    </div>
</body>
</html>
`

	t := template.Must(template.New("email").Parse(tmpl))
	var buf bytes.Buffer
	data := map[string]interface{}{
		"Content": template.HTML(content),
		"Year":    time.Now().Year(),
	}

	if err := t.Execute(&buf, data); err != nil {
		// Fallback to plain content if template fails
		return content
	}

	return buf.String()
}

// buildMessage constructs the email message with headers.
func (c *Client) buildMessage(to, subject, html, text string) string {
	from := c.from
	if from == "" {
		from = "noreply@credtube.app"
	}

	msg := fmt.Sprintf("From: %s\r\n", from)
	msg += fmt.Sprintf("To: %s\r\n", to)
	msg += fmt.Sprintf("Subject: %s\r\n", subject)
	msg += "MIME-Version: 1.0\r\n"
	msg += "Content-Type: multipart/alternative; boundary=\"boundary42\"\r\n"
	msg += "\r\n"

	// Plain text part
	if text != "" {
		msg += "--boundary42\r\n"
		msg += "Content-Type: text/plain; charset=\"UTF-8\"\r\n"
		msg += "\r\n"
		msg += text + "\r\n"
	}

	// HTML part
	msg += "--boundary42\r\n"
	msg += "Content-Type: text/html; charset=\"UTF-8\"\r\n"
	msg += "\r\n"
	msg += html + "\r\n"
	msg += "--boundary42--\r\n"

	return msg
}

// SendWelcome sends a welcome email to a new user.
func (c *Client) SendWelcome(to, userName string) error {
	html := fmt.Sprintf(`
		<p>Hello %s,</p>
		<p>Welcome to CredTube! We're excited to have you on board.</p>
		<p>Get started by enrolling in a playlist and earning your first learning credential.</p>
		<p>If you have any questions, feel free to reach out to our support team.</p>
		<p>Happy learning!</p>
	`, userName)

	return c.SendEmail(EmailOptions{
		To:      to,
		Subject: "Welcome to CredTube!",
		HTML:    html,
		Text:    fmt.Sprintf("Hello %s, Welcome to CredTube!", userName),
	})
}

// SendCredentialIssued notifies a learner that a learning token was issued.
func (c *Client) SendCredentialIssued(to, userName, videoTitle string, score int, verificationURL string) error {
	html := fmt.Sprintf(`
		<p>Hello %s,</p>
		<p>Congratulations! You passed the assessment for <strong>%s</strong> with a score of %d%%.</p>
		<p>Your verifiable learning credential has been issued and added to your token gallery.</p>
		<p style="text-align: center; margin: 24px 0;">
			<a href="%s" style="background: #2a7ae2; color: #fff; padding: 12px 24px; text-decoration: none; border-radius: 4px; display: inline-block;">
				View Credential
			</a>
		</p>
		<p>You can share this credential anywhere; anyone with the link can verify it.</p>
	`, userName, videoTitle, score, verificationURL)

	return c.SendEmail(EmailOptions{
		To:      to,
		Subject: "Your Learning Credential Has Been Issued!",
		HTML:    html,
		Text:    fmt.Sprintf("You passed the assessment for %q with %d%%. Verify your credential: %s", videoTitle, score, verificationURL),
	})
}

// SendNotification sends a general notification email.
func (c *Client) SendNotification(to, title, message string) error {
	html := fmt.Sprintf(`
		<h3 style="color: #2a7ae2;">%s</h3>
		<p>%s</p>
	`, title, message)

	return c.SendEmail(EmailOptions{
		To:      to,
		Subject: title,
		HTML:    html,
		Text:    message,
	})
}
