package mailer

import (
	"context"
	"fmt"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"
)

const defaultSendTimeout = 10 * time.Second

// Mailgun delivers rendered email jobs through one Mailgun client.
type Mailgun struct {
	client  *mg.MailgunImpl
	sender  string
	timeout time.Duration
}

type Option func(*Mailgun)

// WithAPIBase points the client at another Mailgun region, e.g. mg.APIBaseEU.
// The base must end in an API version such as /v3.
func WithAPIBase(base string) Option {
	return func(m *Mailgun) {
		if base != "" {
			m.client.SetAPIBase(base)
		}
	}
}

// WithTimeout bounds a single Send call.
func WithTimeout(d time.Duration) Option {
	return func(m *Mailgun) {
		if d > 0 {
			m.timeout = d
		}
	}
}

func NewMailgun(domain, apiKey, sender string, opts ...Option) *Mailgun {
	m := &Mailgun{
		client:  mg.NewMailgun(domain, apiKey),
		sender:  sender,
		timeout: defaultSendTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Send delivers one message to a single recipient. html is optional.
// It returns the Mailgun message id.
func (m *Mailgun) Send(ctx context.Context, to, subject, text, html string) (string, error) {
	msg := m.client.NewMessage(m.sender, subject, text, to)
	if html != "" {
		msg.SetHtml(html)
	}
	c, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	_, id, err := m.client.Send(c, msg)
	if err != nil {
		return "", fmt.Errorf("mailgun send to %s: %w", to, err)
	}
	return id, nil
}
