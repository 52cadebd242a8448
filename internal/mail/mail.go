// Package mail provides outbound email dispatch over SMTP.
package mail

import (
	"crypto/tls"
	"fmt"
	"net/mail"
	"net/url"

	"github.com/dajohi/goemail"
)

// Mailer is the outbound-notification capability consumed by the endpoint
// orchestration. Callers decide whether a dispatch failure is fatal.
type Mailer interface {
	IsEnabled() bool
	Send(to, subject, htmlBody string) error
}

// Client implements Mailer over SMTP.
type Client struct {
	smtp        *goemail.SMTP
	mailName    string
	mailAddress string
	disabled    bool
}

// NewClient constructs an SMTP mailer. An empty smtpURL yields a disabled
// client whose Send is a no-op, which keeps local development working
// without a mail server.
func NewClient(smtpURL, fromAddress string, skipVerify bool) (*Client, error) {
	if smtpURL == "" {
		return &Client{disabled: true}, nil
	}

	u, err := url.Parse(smtpURL)
	if err != nil {
		return nil, fmt.Errorf("mail: parse smtp url: %w", err)
	}

	from, err := mail.ParseAddress(fromAddress)
	if err != nil {
		return nil, fmt.Errorf("mail: parse from address: %w", err)
	}

	tlsConfig := &tls.Config{}
	if skipVerify {
		tlsConfig.InsecureSkipVerify = true
	}

	smtp, err := goemail.NewSMTP(u.String(), tlsConfig)
	if err != nil {
		return nil, fmt.Errorf("mail: smtp client: %w", err)
	}

	return &Client{
		smtp:        smtp,
		mailName:    from.Name,
		mailAddress: from.Address,
	}, nil
}

// IsEnabled returns whether the mail server is configured.
func (c *Client) IsEnabled() bool {
	return !c.disabled
}

// Send dispatches a single HTML email to one recipient.
func (c *Client) Send(to, subject, htmlBody string) error {
	if c.disabled {
		return nil
	}
	msg := goemail.NewHTMLMessage(c.mailAddress, subject, htmlBody)
	msg.SetName(c.mailName)
	msg.AddTo(to)
	return c.smtp.Send(msg)
}

var _ Mailer = (*Client)(nil)
