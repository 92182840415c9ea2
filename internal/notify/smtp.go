package notify

import (
	"fmt"

	mail "github.com/go-mail/mail"
)

// SMTPSender sends OTP emails over SMTP using go-mail.
type SMTPSender struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

// NewSMTPSender returns a sender for the given SMTP endpoint.
func NewSMTPSender(host string, port int, user, pass, from string) *SMTPSender {
	if port <= 0 {
		port = 587
	}
	return &SMTPSender{Host: host, Port: port, User: user, Pass: pass, From: from}
}

// SendOTP emails the code to the given address. Subject and body are fixed;
// per-tenant templating belongs to the excluded presentation layer.
func (s *SMTPSender) SendOTP(destination, otp string) error {
	if s.Host == "" {
		return fmt.Errorf("notify: SMTP host not configured")
	}
	m := mail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", destination)
	m.SetHeader("Subject", "Your password reset code")
	m.SetBody("text/plain", fmt.Sprintf("Your one-time password reset code is %s. It expires in a few minutes.", otp))

	d := mail.NewDialer(s.Host, s.Port, s.User, s.Pass)
	return d.DialAndSend(m)
}
