package notify

import (
	"context"
	"errors"
	"net/smtp"
	"testing"

	"github.com/straye-as/billing-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmailChannel_Send(t *testing.T) {
	ch := NewEmailChannel(&config.EmailConfig{
		Enabled:  true,
		Host:     "smtp.example.com",
		Port:     587,
		Username: "mailer",
		Password: "secret",
		From:     "billing@example.com",
	})

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	var gotAuth smtp.Auth
	ch.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotAuth, gotFrom, gotTo, gotMsg = addr, a, from, to, msg
		return nil
	}

	err := ch.Send(context.Background(), "client@example.com", Message{Subject: "Invoice INV-0001\nis overdue", Body: "Please pay."})
	require.NoError(t, err)

	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.NotNil(t, gotAuth)
	assert.Equal(t, "billing@example.com", gotFrom)
	assert.Equal(t, []string{"client@example.com"}, gotTo)
	assert.Contains(t, string(gotMsg), "Subject: Invoice INV-0001 is overdue\r\n")
	assert.Contains(t, string(gotMsg), "\r\n\r\nPlease pay.")
}

func TestEmailChannel_NoAuthWithoutUsername(t *testing.T) {
	ch := NewEmailChannel(&config.EmailConfig{Host: "localhost", Port: 25, From: "a@b.c"})

	var gotAuth smtp.Auth = smtp.PlainAuth("", "x", "y", "z")
	ch.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAuth = a
		return nil
	}

	require.NoError(t, ch.Send(context.Background(), "to@example.com", Message{Body: "hi"}))
	assert.Nil(t, gotAuth)
}

func TestEmailChannel_Errors(t *testing.T) {
	ch := NewEmailChannel(&config.EmailConfig{Host: "localhost", Port: 25})
	ch.send = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("relay refused")
	}

	err := ch.Send(context.Background(), "", Message{})
	assert.ErrorIs(t, err, ErrNoAddress)

	err = ch.Send(context.Background(), "to@example.com", Message{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "relay refused")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, ch.Send(ctx, "to@example.com", Message{}), context.Canceled)
}

func TestEmailChannel_Address(t *testing.T) {
	ch := NewEmailChannel(&config.EmailConfig{})
	assert.Equal(t, "a@b.c", ch.Address(Recipient{Email: " a@b.c "}))
	assert.Equal(t, "", ch.Address(Recipient{WhatsApp: "+4712345678"}))
}
