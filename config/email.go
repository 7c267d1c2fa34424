package config

import "github.com/spf13/viper"

// Email selects and configures the outbound mail provider.
type Email struct {
	Provider string
	Mailgun  *Mailgun
	SendGrid *SendGrid
	SMTP     *SMTP
}

// Mailgun holds the Mailgun provider settings.
type Mailgun struct {
	Key    string
	Domain string
	From   string
}

// SendGrid holds the SendGrid provider settings.
type SendGrid struct {
	Key  string
	From string
}

// SMTP holds plain SMTP settings.
type SMTP struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func getEmailConfig(v *viper.Viper) *Email {
	return &Email{
		Provider: v.GetString("email.provider"),
		Mailgun: &Mailgun{
			Key:    v.GetString("email.mailgun.key"),
			Domain: v.GetString("email.mailgun.domain"),
			From:   v.GetString("email.mailgun.from"),
		},
		SendGrid: &SendGrid{
			Key:  v.GetString("email.sendgrid.key"),
			From: v.GetString("email.sendgrid.from"),
		},
		SMTP: &SMTP{
			Host:     v.GetString("email.smtp.host"),
			Port:     v.GetInt("email.smtp.port"),
			Username: v.GetString("email.smtp.username"),
			Password: v.GetString("email.smtp.password"),
			From:     v.GetString("email.smtp.from"),
		},
	}
}
