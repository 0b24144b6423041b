package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oksasatya/go-user-orders-api/pkg/helpers"
	"github.com/oksasatya/go-user-orders-api/pkg/mailer"
	mailtpl "github.com/oksasatya/go-user-orders-api/pkg/mailer/templates"
)

// Sender is implemented by *mailer.Mailgun.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) (string, error)
}

// outcome tells the consumer loop how to settle a delivery.
type outcome int

const (
	ack outcome = iota
	drop
	requeue
)

// process decodes, renders and sends a single email job and returns the provider
// message id. Malformed or unrenderable jobs are dropped; send failures are requeued.
func process(ctx context.Context, body []byte, sender Sender) (outcome, string, error) {
	var job mailer.EmailJob
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&job); err != nil {
		return drop, "", fmt.Errorf("bad message: %w", err)
	}
	if job.To == "" {
		return drop, "", fmt.Errorf("job without recipient")
	}
	helpers.EnsureRecipientAndEmail(&job)

	subject, text, html := job.Subject, job.Text, job.HTML
	if job.Template != "" {
		s, t, h, err := mailtpl.Render(job.Template, job.Data)
		if err != nil {
			return drop, "", fmt.Errorf("render %s: %w", job.Template, err)
		}
		subject, text, html = s, t, h
	}

	c, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	id, err := sender.Send(c, job.To, subject, text, html)
	if err != nil {
		return requeue, "", fmt.Errorf("send: %w", err)
	}
	return ack, id, nil
}
