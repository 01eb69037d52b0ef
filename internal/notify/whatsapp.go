package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/straye-as/billing-api/internal/config"
)

// ChannelWhatsApp is the WhatsApp channel name
const ChannelWhatsApp = "whatsapp"

// WhatsAppChannel sends text messages through the WhatsApp Cloud API
type WhatsAppChannel struct {
	endpoint    string
	accessToken string
	client      *http.Client
}

type whatsAppText struct {
	Body string `json:"body"`
}

type whatsAppRequest struct {
	MessagingProduct string       `json:"messaging_product"`
	To               string       `json:"to"`
	Type             string       `json:"type"`
	Text             whatsAppText `json:"text"`
}

// NewWhatsAppChannel creates a WhatsApp channel from Cloud API settings
func NewWhatsAppChannel(cfg *config.WhatsAppConfig) *WhatsAppChannel {
	return &WhatsAppChannel{
		endpoint:    strings.TrimRight(cfg.APIURL, "/") + "/" + cfg.PhoneNumberID + "/messages",
		accessToken: cfg.AccessToken,
		client:      &http.Client{Timeout: cfg.TimeoutDuration()},
	}
}

func (c *WhatsAppChannel) Name() string { return ChannelWhatsApp }

func (c *WhatsAppChannel) Address(r Recipient) string { return normalizePhone(r.WhatsApp) }

func (c *WhatsAppChannel) Send(ctx context.Context, address string, msg Message) error {
	if address == "" {
		return ErrNoAddress
	}

	text := msg.Body
	if msg.Subject != "" {
		text = "*" + msg.Subject + "*\n" + msg.Body
	}

	payload, err := json.Marshal(whatsAppRequest{
		MessagingProduct: "whatsapp",
		To:               address,
		Type:             "text",
		Text:             whatsAppText{Body: text},
	})
	if err != nil {
		return fmt.Errorf("failed to encode whatsapp message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build whatsapp request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send whatsapp message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("whatsapp api returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

// normalizePhone strips everything but digits; the Cloud API expects E.164 without the plus sign
func normalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
