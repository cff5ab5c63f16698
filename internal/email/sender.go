package email

import (
	"fmt"
	"sync"

	gomail "gopkg.in/gomail.v2"
)

const senderName = "Suraksha Car Care"

type Sender interface {
	Send(to, subject, body string) error
}

// SMTPSender delivers mail over a reused SMTP connection. The connection is
// redialed after maxPerConn messages so a long-lived process does not pin one
// server connection forever, and sends are serialized so concurrent
// notification workers cannot interleave on the wire.
type SMTPSender struct {
	dialer     *gomail.Dialer
	from       string
	maxPerConn int

	mu   sync.Mutex
	conn gomail.SendCloser
	sent int
}

func NewSMTPSender(host string, port int, user, password, from string) *SMTPSender {
	if from == "" {
		from = user
	}
	return &SMTPSender{
		dialer:     gomail.NewDialer(host, port, user, password),
		from:       from,
		maxPerConn: 50,
	}
}

func (s *SMTPSender) Send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.from, senderName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil || s.sent >= s.maxPerConn {
		if err := s.redialLocked(); err != nil {
			return err
		}
	}
	if err := gomail.Send(s.conn, m); err != nil {
		// The connection may have gone stale between sends; one fresh dial
		// before giving up.
		if err := s.redialLocked(); err != nil {
			return err
		}
		if err := gomail.Send(s.conn, m); err != nil {
			s.closeLocked()
			return fmt.Errorf("smtp send: %w", err)
		}
	}
	s.sent++
	return nil
}

func (s *SMTPSender) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
}

func (s *SMTPSender) redialLocked() error {
	s.closeLocked()
	conn, err := s.dialer.Dial()
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	s.conn = conn
	s.sent = 0
	return nil
}

func (s *SMTPSender) closeLocked() {
	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
		s.sent = 0
	}
}

// NoopSender is used when SMTP is not configured (local development).
type NoopSender struct{}

func NewNoopSender() *NoopSender {
	return &NoopSender{}
}

func (*NoopSender) Send(_, _, _ string) error {
	return nil
}
