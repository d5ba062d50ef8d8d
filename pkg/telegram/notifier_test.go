package telegram

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatReminder(t *testing.T) {
	start := time.Date(2024, 6, 3, 16, 30, 0, 0, time.UTC)
	text := FormatReminder(Reminder{Title: "Maths <revision>", Subject: "Maths", StartTime: start, Lead: 5 * time.Minute})

	assert.Contains(t, text, "Starting in 5 minutes")
	assert.Contains(t, text, "Maths &lt;revision&gt;")
	assert.Contains(t, text, "Mon 03 Jun 16:30")
}

func TestFormatAdminAlert(t *testing.T) {
	text := FormatAdminAlert(AdminAlert{SenderName: "Nimal", SenderContact: "0771234567", Title: "Access", Content: "Please & thanks"})
	assert.Contains(t, text, "Nimal")
	assert.Contains(t, text, "0771234567")
	assert.Contains(t, text, "Please &amp; thanks")
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(slog.New(slog.NewTextHandler(&buf, nil)))

	require.NoError(t, n.SendReminder(context.Background(), 42, Reminder{Title: "Study"}))
	require.NoError(t, n.SendAdminAlert(context.Background(), 42, AdminAlert{Title: "Hello"}))
	assert.Contains(t, buf.String(), "chat_id=42")
	assert.Contains(t, buf.String(), "title=Hello")
}
