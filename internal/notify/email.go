package notify

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/straye-as/billing-api/internal/config"
)

// ChannelEmail is the email channel name
const ChannelEmail = "email"

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailChannel sends plain-text mail through an SMTP relay
type EmailChannel struct {
	addr     string
	host     string
	from     string
	username string
	password string
	send     sendMailFunc
}

// NewEmailChannel creates an email channel from SMTP settings
func NewEmailChannel(cfg *config.EmailConfig) *EmailChannel {
	return &EmailChannel{
		addr:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		host:     cfg.Host,
		from:     cfg.From,
		username: cfg.Username,
		password: cfg.Password,
		send:     smtp.SendMail,
	}
}

func (c *EmailChannel) Name() string { return ChannelEmail }

func (c *EmailChannel) Address(r Recipient) string { return strings.TrimSpace(r.Email) }

// Send delivers msg to address. smtp.SendMail has no context support so ctx is only checked up front.
func (c *EmailChannel) Send(ctx context.Context, address string, msg Message) error {
	if address == "" {
		return ErrNoAddress
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if c.username != "" {
		auth = smtp.PlainAuth("", c.username, c.password, c.host)
	}

	if err := c.send(c.addr, auth, c.from, []string{address}, buildMail(c.from, address, msg)); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", address, err)
	}
	return nil
}

func buildMail(from, to string, msg Message) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + sanitizeHeader(msg.Subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)
	return []byte(b.String())
}

func sanitizeHeader(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}
