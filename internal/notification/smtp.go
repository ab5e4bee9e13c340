package notification

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

const defaultSMTPTimeout = 30 * time.Second

type SMTPConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	FromEmail string
	FromName  string
	// Timeout bounds one whole exchange with the server, dial to QUIT.
	Timeout time.Duration
}

// SMTPMailer composes messages with gomail and delivers them over a connection
// that carries a hard deadline, so a server that stops answering cannot hold a send forever.
type SMTPMailer struct {
	cfg SMTPConfig
	log *logrus.Logger
}

func NewSMTPMailer(cfg SMTPConfig, logger *logrus.Logger) *SMTPMailer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultSMTPTimeout
	}
	return &SMTPMailer{cfg: cfg, log: logger}
}

func (s *SMTPMailer) Send(ctx context.Context, m Mail) error {
	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", s.cfg.FromEmail, s.cfg.FromName)
	msg.SetHeader("To", m.To)
	msg.SetHeader("Subject", m.Subject)
	msg.SetBody("text/html", m.HTML)

	if err := s.deliver(ctx, msg); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("smtp send to %s: %w", m.To, err)
	}
	s.log.Debugf("SMTP: delivered %q to %s", m.Subject, m.To)
	return nil
}

func (s *SMTPMailer) deliver(ctx context.Context, msg *gomail.Message) error {
	deadline := time.Now().Add(s.cfg.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	dialer := net.Dialer{Deadline: deadline}
	raw, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port)))
	if err != nil {
		return err
	}
	defer raw.Close()
	if err := raw.SetDeadline(deadline); err != nil {
		return err
	}
	// Closing the socket unblocks any read or write in progress.
	stop := context.AfterFunc(ctx, func() { raw.Close() })
	defer stop()

	conn := raw

	tlsConfig := &tls.Config{ServerName: s.cfg.Host}
	if s.cfg.Port == 465 {
		conn = tls.Client(conn, tlsConfig)
	}
	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return err
	}
	defer client.Close()

	if s.cfg.Port != 465 {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(tlsConfig); err != nil {
				return err
			}
		}
	}
	if s.cfg.User != "" {
		if ok, mechs := client.Extension("AUTH"); ok {
			var auth smtp.Auth
			if strings.Contains(mechs, "CRAM-MD5") {
				auth = smtp.CRAMMD5Auth(s.cfg.User, s.cfg.Password)
			} else {
				auth = smtp.PlainAuth("", s.cfg.User, s.cfg.Password, s.cfg.Host)
			}
			if err := client.Auth(auth); err != nil {
				return err
			}
		}
	}

	send := gomail.SendFunc(func(from string, to []string, body io.WriterTo) error {
		if err := client.Mail(from); err != nil {
			return err
		}
		for _, addr := range to {
			if err := client.Rcpt(addr); err != nil {
				return err
			}
		}
		w, err := client.Data()
		if err != nil {
			return err
		}
		if _, err := body.WriteTo(w); err != nil {
			w.Close()
			return err
		}
		return w.Close()
	})
	if err := gomail.Send(send, msg); err != nil {
		return err
	}
	return client.Quit()
}
