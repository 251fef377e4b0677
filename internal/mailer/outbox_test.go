package mailer

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutbox_SendBulk(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "outbox")
	o := NewOutbox(dir)
	o.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

	err := o.SendBulk(context.Background(), Message{
		From:    "sender@example.com",
		To:      []string{"a@example.com", "b@example.com"},
		Subject: "Hello World!",
		HTML:    "<p>hi</p>",
		Text:    "hi",
	})
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	var metaPath string
	for _, e := range entries {
		assert.True(t, strings.HasPrefix(e.Name(), "2024_05_01_120000_0001_hello_world"), e.Name())
		if strings.HasSuffix(e.Name(), ".json") {
			metaPath = filepath.Join(dir, e.Name())
		}
	}
	require.NotEmpty(t, metaPath)

	data, err := os.ReadFile(metaPath)
	require.NoError(t, err)
	var meta outboxMetadata
	require.NoError(t, json.Unmarshal(data, &meta))
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, meta.Recipients)
	assert.Equal(t, "Hello World!", meta.Subject)
}

func TestOutbox_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewOutbox(t.TempDir()).SendBulk(ctx, Message{From: "s@example.com", To: []string{"a@example.com"}})
	assert.ErrorIs(t, err, ErrSendFailed)
}

func TestSanitizeFilename(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "message", sanitizeFilename(""))
	assert.Equal(t, "news_2024", sanitizeFilename("News 2024"))
	assert.Equal(t, "abc", sanitizeFilename("a/b\\c"))
	assert.Len(t, sanitizeFilename(strings.Repeat("x", 200)), 80)
}
