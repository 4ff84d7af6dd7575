package emailsvc

import (
	"bytes"
	"fmt"
	"io"
	"net/mail"

	"gopkg.in/gomail.v2"

	"github.com/Mithesh23/kmit-club-sub001/core"
)

type smtpService struct {
	base
	dialer *gomail.Dialer
}

var _ core.EmailService = (*smtpService)(nil) // interface compliance check

// NewSMTPService returns a service delivering emails through an SMTP relay.
func NewSMTPService(conf *core.Config, logger core.Logger) core.EmailService {
	return &smtpService{
		base:   newBase(conf, logger),
		dialer: gomail.NewDialer(conf.Email.SMTPHost, conf.Email.SMTPPort, conf.Email.SMTPUser, conf.Email.SMTPPassword),
	}
}

// SendMessages sends the messages over a single SMTP connection, in the background.
func (svc smtpService) SendMessages(messages ...*core.EmailMessage) {
	go func() {
		gms := make([]*gomail.Message, 0, len(messages))
		for _, msg := range messages {
			if svc.prepare(msg) {
				gms = append(gms, svc.build(*msg))
			}
		}
		if len(gms) == 0 {
			return
		}
		if err := svc.dialer.DialAndSend(gms...); err != nil {
			svc.logger.Error(fmt.Sprintf("sending %d email(s): %v", len(gms), err), err)
		}
	}()
}

func (svc smtpService) build(msg core.EmailMessage) *gomail.Message {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", svc.from.Address, svc.from.Name)
	m.SetHeader("To", formatAddresses(m, msg.To)...)
	if len(msg.Cc) > 0 {
		m.SetHeader("Cc", formatAddresses(m, msg.Cc)...)
	}
	if len(msg.Bcc) > 0 {
		m.SetHeader("Bcc", formatAddresses(m, msg.Bcc)...)
	}
	m.SetHeader("Subject", svc.subjPrefix+msg.Subject)

	m.SetBody("text/plain", msg.TextContent)
	if msg.HTMLContent != "" {
		m.AddAlternative("text/html", msg.HTMLContent)
	}

	for _, at := range msg.Attachments {
		content := at.Content
		m.Attach(at.Filename,
			gomail.SetHeader(map[string][]string{"Content-Type": {at.ContentType}}),
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := io.Copy(w, bytes.NewReader(content))
				return err
			}))
	}
	return m
}

func formatAddresses(m *gomail.Message, addrs []mail.Address) []string {
	formatted := make([]string, 0, len(addrs))
	for _, a := range addrs {
		formatted = append(formatted, m.FormatAddress(a.Address, a.Name))
	}
	return formatted
}
