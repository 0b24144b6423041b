package templates

import (
	"time"
)

// Brand carries the company details stamped on every email.
type Brand struct {
	AppName        string
	CompanyName    string
	CompanyAddress string
	LogoURL        string
	SupportURL     string
	PrivacyURL     string
	UnsubscribeURL string
}

// Option pattern
type Option func(*EmailData)

func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.TimeAt = utc
		d.Time = utc.Format("02 January 2006, 15:04")
	}
}

func WithUsername(username string) Option { return func(d *EmailData) { d.Username = username } }
func WithUserID(id int64) Option          { return func(d *EmailData) { d.UserID = id } }

// NewBaseEmailData fills the common fields from the brand, then applies opts.
func NewBaseEmailData(b Brand, typ string, name, email, recipient string, opts ...Option) EmailData {
	d := EmailData{
		Name:           name,
		Email:          email,
		RecipientEmail: recipient,
		Type:           typ,

		CompanyName:    b.CompanyName,
		CompanyAddress: b.CompanyAddress,
		AppName:        b.AppName,

		LogoURL:        b.LogoURL,
		SupportURL:     b.SupportURL,
		PrivacyURL:     b.PrivacyURL,
		UnsubscribeURL: b.UnsubscribeURL,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

func NewWelcomeData(b Brand, name, email string, opts ...Option) map[string]any {
	return ToMap(NewBaseEmailData(b, Welcome, name, email, email, opts...))
}

func NewAccountClosedData(b Brand, name, email string, opts ...Option) map[string]any {
	return ToMap(NewBaseEmailData(b, AccountClosed, name, email, email, opts...))
}
