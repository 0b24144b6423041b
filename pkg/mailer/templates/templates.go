package templates

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	htmpl "html/template"
	"io"
	"reflect"
	"strings"
	texttpl "text/template"
	"time"
)

//go:embed *.tmpl
var files embed.FS

// EmailData defines standard fields for email templates.
type EmailData struct {
	// Recipient
	Name           string `json:"Name"`
	Username       string `json:"Username"`
	UserID         int64  `json:"UserID"`
	Email          string `json:"Email"`
	RecipientEmail string `json:"RecipientEmail"`
	Type           string `json:"Type"`

	// Company info
	CompanyName    string `json:"CompanyName"`
	CompanyAddress string `json:"CompanyAddress"`
	AppName        string `json:"AppName"`

	// URLs
	LogoURL        string `json:"LogoURL"`
	SupportURL     string `json:"SupportURL"`
	PrivacyURL     string `json:"PrivacyURL"`
	UnsubscribeURL string `json:"UnsubscribeURL"`

	Time   string    `json:"Time"`
	TimeAt time.Time `json:"TimeAt"`
}

// ToMap converts EmailData to a map[string]any for EmailJob.Data
func ToMap(d EmailData) map[string]any {
	b, _ := json.Marshal(d)
	var m map[string]any
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber() // keep ids printable as integers
	_ = dec.Decode(&m)
	return m
}

// defaultFn supports pipe usage: {{ .Value | default "Fallback" }}
// Blank strings and zero values fall back.
func defaultFn(fallback any, value any) any {
	if s, ok := value.(string); ok {
		if strings.TrimSpace(s) == "" {
			return fallback
		}
		return s
	}
	rv := reflect.ValueOf(value)
	if !rv.IsValid() || rv.IsZero() {
		return fallback
	}
	return value
}

var funcs = map[string]any{
	"now":        func() time.Time { return time.Now().UTC() },
	"formatTime": func(t time.Time, layout string) string { return t.Format(layout) },
	"upper":      strings.ToUpper,
	"default":    defaultFn,
}

const (
	Welcome       = "welcome"
	AccountClosed = "account_closed"
)

var ErrUnknownTemplate = errors.New("unknown email template")

// Every email is three files: <name>.subject.tmpl, <name>.text.tmpl and
// <name>.html.tmpl. They are parsed once; a broken file fails at init.
var (
	textSet = texttpl.Must(texttpl.New("text").Funcs(funcs).ParseFS(files, "*.subject.tmpl", "*.text.tmpl"))
	htmlSet = htmpl.Must(htmpl.New("html").Funcs(funcs).ParseFS(files, "*.html.tmpl"))
)

type executor interface {
	ExecuteTemplate(w io.Writer, name string, data any) error
}

func execute(set executor, file string, data any) (string, error) {
	var buf bytes.Buffer
	if err := set.ExecuteTemplate(&buf, file, data); err != nil {
		return "", fmt.Errorf("exec %q: %w", file, err)
	}
	return buf.String(), nil
}

// Render renders the subject, text and html parts of the named email.
func Render(name string, data any) (subject string, text string, html string, err error) {
	if textSet.Lookup(name+".subject.tmpl") == nil || htmlSet.Lookup(name+".html.tmpl") == nil {
		return "", "", "", fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
	}
	if subject, err = execute(textSet, name+".subject.tmpl", data); err != nil {
		return "", "", "", err
	}
	if text, err = execute(textSet, name+".text.tmpl", data); err != nil {
		return "", "", "", err
	}
	if html, err = execute(htmlSet, name+".html.tmpl", data); err != nil {
		return "", "", "", err
	}
	return strings.TrimSpace(subject), text, html, nil
}
