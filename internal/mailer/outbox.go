package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync/atomic"
	"time"
)

// Outbox writes messages to disk instead of sending them. Each message
// produces a .html, a .txt and a .json metadata file sharing one base name.
type Outbox struct {
	dir string
	seq atomic.Uint64
	now func() time.Time
}

var _ Sender = (*Outbox)(nil)

func NewOutbox(dir string) *Outbox {
	return &Outbox{dir: dir, now: time.Now}
}

func (o *Outbox) Name() string { return TransportOutbox }

type outboxMetadata struct {
	Timestamp  string   `json:"timestamp"`
	From       string   `json:"from"`
	Recipients []string `json:"recipients"`
	Subject    string   `json:"subject"`
}

func (o *Outbox) SendBulk(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}

	if err := os.MkdirAll(o.dir, 0o755); err != nil {
		return fmt.Errorf("%w: create outbox dir: %v", ErrSendFailed, err)
	}

	now := o.now()
	base := fmt.Sprintf("%s_%04d_%s", now.Format("2006_01_02_150405"), o.seq.Add(1), sanitizeFilename(msg.Subject))

	meta, err := json.MarshalIndent(outboxMetadata{
		Timestamp:  now.Format(time.RFC3339),
		From:       msg.From,
		Recipients: msg.To,
		Subject:    msg.Subject,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshal metadata: %v", ErrSendFailed, err)
	}

	files := map[string][]byte{
		".html": []byte(msg.HTML),
		".txt":  []byte(msg.Text),
		".json": meta,
	}
	for ext, data := range files {
		if err := os.WriteFile(filepath.Join(o.dir, base+ext), data, 0o644); err != nil {
			return fmt.Errorf("%w: write %s: %v", ErrSendFailed, ext, err)
		}
	}
	return nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9\-_.]`)

func sanitizeFilename(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = unsafeFilenameChars.ReplaceAllString(s, "")
	if len(s) > 80 {
		s = s[:80]
	}
	if s == "" {
		s = "message"
	}
	return strings.ToLower(s)
}
