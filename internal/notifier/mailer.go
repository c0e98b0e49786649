package notifier

import (
	"io"

	gomail "gopkg.in/gomail.v2"
)

// SMTPSender sends report emails over SMTP.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPSender creates a sender for the given SMTP endpoint. User and
// password may be empty for an unauthenticated relay.
func NewSMTPSender(host string, port int, user, pass, from string) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(host, port, user, pass),
		from:   from,
	}
}

// Send delivers one email with the workbook attached.
func (s *SMTPSender) Send(to, subject, body, filename string, attachment []byte) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)
	m.Attach(filename, gomail.SetCopyFunc(func(w io.Writer) error {
		_, err := w.Write(attachment)
		return err
	}))
	return s.dialer.DialAndSend(m)
}
