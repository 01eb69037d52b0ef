// Package notify delivers reminder messages over external channels.
package notify

import (
	"context"
	"errors"

	"github.com/straye-as/billing-api/internal/config"
)

// ErrNoAddress is returned when a recipient has no address for a channel
var ErrNoAddress = errors.New("recipient has no address for channel")

// Message is a channel-neutral notification payload
type Message struct {
	Subject string
	Body    string
}

// Recipient carries every address a message could be sent to
type Recipient struct {
	Name     string
	Email    string
	WhatsApp string
}

// Channel sends a message to a single address
type Channel interface {
	// Name identifies the channel, e.g. "email"
	Name() string
	// Address picks the recipient's address for this channel; empty means skip
	Address(r Recipient) string
	Send(ctx context.Context, address string, msg Message) error
}

// NewChannels returns the channels enabled in cfg
func NewChannels(cfg *config.Config) []Channel {
	var channels []Channel
	if cfg.Email.Enabled {
		channels = append(channels, NewEmailChannel(&cfg.Email))
	}
	if cfg.WhatsApp.Enabled {
		channels = append(channels, NewWhatsAppChannel(&cfg.WhatsApp))
	}
	return channels
}
