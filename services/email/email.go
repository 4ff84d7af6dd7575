package emailsvc

import (
	"github.com/Mithesh23/kmit-club-sub001/core"
)

// New returns the email backend selected by the configuration.
// Debug mode always prints emails to the console.
func New(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug {
		return NewConsoleService(conf, logger)
	}
	switch conf.Email.Backend {
	case "sendgrid":
		return NewSendgridService(conf, logger)
	case "smtp":
		return NewSMTPService(conf, logger)
	default:
		return NewConsoleService(conf, logger)
	}
}
