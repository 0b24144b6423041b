package main

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-user-orders-api/pkg/mailer"
	mailtpl "github.com/oksasatya/go-user-orders-api/pkg/mailer/templates"
)

type sent struct{ to, subject, text, html string }

type fakeSender struct {
	calls []sent
	err   error
}

func (f *fakeSender) Send(_ context.Context, to, subject, text, html string) (string, error) {
	f.calls = append(f.calls, sent{to, subject, text, html})
	if f.err != nil {
		return "", f.err
	}
	return "<msg-1@example.com>", nil
}

func encode(t *testing.T, job mailer.EmailJob) []byte {
	t.Helper()
	b, err := json.Marshal(job)
	require.NoError(t, err)
	return b
}

func TestProcess_RendersTemplate(t *testing.T) {
	brand := mailtpl.Brand{AppName: "Orders"}
	job := mailer.EmailJob{
		To:       "john@example.com",
		Template: mailtpl.Welcome,
		Data:     mailtpl.NewWelcomeData(brand, "John Doe", "john@example.com", mailtpl.WithUsername("johndoe")),
	}
	s := &fakeSender{}

	res, _, err := process(context.Background(), encode(t, job), s)

	require.NoError(t, err)
	assert.Equal(t, ack, res)
	require.Len(t, s.calls, 1)
	assert.Equal(t, "john@example.com", s.calls[0].to)
	assert.Equal(t, "Welcome to Orders, John Doe", s.calls[0].subject)
	assert.NotEmpty(t, s.calls[0].html)
}

func TestProcess_PlainJob(t *testing.T) {
	s := &fakeSender{}
	job := mailer.EmailJob{To: "a@example.com", Subject: "Hi", Text: "hello"}

	res, id, err := process(context.Background(), encode(t, job), s)

	require.NoError(t, err)
	assert.Equal(t, ack, res)
	assert.Equal(t, "<msg-1@example.com>", id)
	assert.Equal(t, sent{"a@example.com", "Hi", "hello", ""}, s.calls[0])
}

func TestProcess_Failures(t *testing.T) {
	ctx := context.Background()

	res, _, err := process(ctx, []byte("{"), &fakeSender{})
	assert.Error(t, err)
	assert.Equal(t, drop, res)

	res, _, err = process(ctx, encode(t, mailer.EmailJob{Subject: "no one"}), &fakeSender{})
	assert.Error(t, err)
	assert.Equal(t, drop, res)

	res, _, err = process(ctx, encode(t, mailer.EmailJob{To: "a@example.com", Template: "missing"}), &fakeSender{})
	assert.Error(t, err)
	assert.Equal(t, drop, res)

	res, _, err = process(ctx, encode(t, mailer.EmailJob{To: "a@example.com", Text: "x"}), &fakeSender{err: errors.New("503")})
	assert.Error(t, err)
	assert.Equal(t, requeue, res)
}
