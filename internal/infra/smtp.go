package infra

import (
	"fmt"
	"net/smtp"

	"pedidos/internal/config"

	"github.com/jordan-wright/email"
	"github.com/juju/errors"
)

// sendFunc matches (*email.Email).Send.
type sendFunc func(e *email.Email, addr string, auth smtp.Auth) error

// Mailer sends plain customer notifications over SMTP.
type Mailer struct {
	host     string
	user     string
	password string
	from     string
	addr     string
	breaker  *CircuitBreaker
	send     sendFunc
}

func NewMailer(cfg *config.Config) *Mailer {
	from := cfg.EmailFrom
	if from == "" {
		from = cfg.SMTPUser
	}
	return &Mailer{
		host:     cfg.SMTPHost,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     from,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		breaker:  NewCircuitBreaker(DefaultCBConfig()),
		send:     func(e *email.Email, addr string, auth smtp.Auth) error { return e.Send(addr, auth) },
	}
}

// State reports the SMTP circuit breaker state.
func (m *Mailer) State() CBState { return m.breaker.State() }

// Send delivers a text + HTML message to a single recipient. Servers without
// authentication are supported by leaving SMTP_USER empty.
func (m *Mailer) Send(to, subject, text, html string) error {
	e := email.NewEmail()
	e.From = m.from
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(text)
	if html != "" {
		e.HTML = []byte(html)
	}

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, m.host)
	}
	err := m.breaker.Execute(func() error { return m.send(e, m.addr, auth) })
	return errors.Annotatef(err, "mailer: send to %s", to)
}
