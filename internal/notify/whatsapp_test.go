package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/straye-as/billing-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWhatsApp(t *testing.T, handler http.HandlerFunc) *WhatsAppChannel {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewWhatsAppChannel(&config.WhatsAppConfig{
		Enabled:       true,
		APIURL:        srv.URL + "/",
		PhoneNumberID: "12345",
		AccessToken:   "token-abc",
		Timeout:       5,
	})
}

func TestWhatsAppChannel_Send(t *testing.T) {
	var got whatsAppRequest
	ch := newTestWhatsApp(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/12345/messages", r.URL.Path)
		assert.Equal(t, "Bearer token-abc", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	})

	err := ch.Send(context.Background(), "4712345678", Message{Subject: "Deadline", Body: "Project due tomorrow"})
	require.NoError(t, err)

	assert.Equal(t, "whatsapp", got.MessagingProduct)
	assert.Equal(t, "4712345678", got.To)
	assert.Equal(t, "text", got.Type)
	assert.Equal(t, "*Deadline*\nProject due tomorrow", got.Text.Body)
}

func TestWhatsAppChannel_ErrorStatus(t *testing.T) {
	ch := newTestWhatsApp(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid recipient"}}`))
	})

	err := ch.Send(context.Background(), "1", Message{Body: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Contains(t, err.Error(), "invalid recipient")
}

func TestWhatsAppChannel_Address(t *testing.T) {
	ch := NewWhatsAppChannel(&config.WhatsAppConfig{APIURL: "http://x", PhoneNumberID: "1"})
	assert.Equal(t, "4712345678", ch.Address(Recipient{WhatsApp: "+47 123 45 678"}))
	assert.Equal(t, "", ch.Address(Recipient{Email: "a@b.c"}))
	assert.ErrorIs(t, ch.Send(context.Background(), "", Message{}), ErrNoAddress)
}

func TestNewChannels_OnlyEnabled(t *testing.T) {
	cfg := &config.Config{}
	assert.Empty(t, NewChannels(cfg))

	cfg.Email.Enabled = true
	channels := NewChannels(cfg)
	require.Len(t, channels, 1)
	assert.Equal(t, ChannelEmail, channels[0].Name())

	cfg.WhatsApp.Enabled = true
	channels = NewChannels(cfg)
	require.Len(t, channels, 2)
	assert.Equal(t, ChannelWhatsApp, channels[1].Name())
}
