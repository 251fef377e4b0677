package mailer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSMTP_Defaults(t *testing.T) {
	t.Parallel()

	s := NewSMTP(SMTPConfig{})
	assert.Equal(t, DefaultSMTPHost, s.cfg.Host)
	assert.Equal(t, DefaultSMTPPort, s.cfg.Port)
	assert.Equal(t, TransportSMTP, s.Name())

	custom := NewSMTP(SMTPConfig{Host: "mail.example.com", Port: 2465})
	assert.Equal(t, "mail.example.com", custom.cfg.Host)
	assert.Equal(t, 2465, custom.cfg.Port)
}

func TestBuildMIME(t *testing.T) {
	t.Parallel()

	m, err := buildMIME(Message{
		From:    "sender@example.com",
		To:      []string{"a@example.com", "b@example.com"},
		Subject: "Weekly digest",
		HTML:    "<p>Hello html</p>",
		Text:    "Hello text",
	})
	require.NoError(t, err)

	rcpts, err := m.GetRecipients()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a@example.com", "b@example.com"}, rcpts)

	var buf bytes.Buffer
	_, err = m.WriteTo(&buf)
	require.NoError(t, err)

	raw := buf.String()
	assert.Contains(t, raw, "Subject: Weekly digest")
	assert.Contains(t, raw, "multipart/alternative")
	assert.Contains(t, raw, "Hello text")
	assert.Contains(t, raw, "Hello html")
}

func TestBuildMIME_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		msg  Message
	}{
		{name: "missing sender", msg: Message{To: []string{"a@example.com"}}},
		{name: "no recipients", msg: Message{From: "sender@example.com"}},
		{name: "bad recipient", msg: Message{From: "sender@example.com", To: []string{"not an address"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := buildMIME(tt.msg)
			assert.ErrorIs(t, err, ErrInvalidMessage)
		})
	}
}
