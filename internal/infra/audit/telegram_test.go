package audit

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"gate/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMessage struct {
	path   string
	chatID string
	text   string
}

func newCaptureServer(t *testing.T) (*httptest.Server, func() []sentMessage) {
	t.Helper()

	var mu sync.Mutex
	var messages []sentMessage

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		mu.Lock()
		messages = append(messages, sentMessage{
			path:   r.URL.Path,
			chatID: r.PostForm.Get("chat_id"),
			text:   r.PostForm.Get("text"),
		})
		mu.Unlock()
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))

	return server, func() []sentMessage {
		mu.Lock()
		defer mu.Unlock()

		return append([]sentMessage(nil), messages...)
	}
}

func testTelegramConfig() *config.TelegramConfig {
	return &config.TelegramConfig{
		InfoBotToken:  "info-token",
		InfoChatID:    "1001",
		ErrorBotToken: "error-token",
		ErrorChatID:   "2002",
	}
}

func newTestSink(t *testing.T, apiBase string) *telegramSink {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sink, err := NewTelegramSink(testTelegramConfig(), logger)
	require.NoError(t, err)

	ts := sink.(*telegramSink)
	ts.apiBase = apiBase

	return ts
}

func TestNewTelegramSink_MissingCredentials(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, err := NewTelegramSink(nil, logger)
	require.Error(t, err)

	incomplete := testTelegramConfig()
	incomplete.ErrorChatID = ""
	_, err = NewTelegramSink(incomplete, logger)
	require.Error(t, err)
}

func TestTelegramSink_RoutesBySeverity(t *testing.T) {
	server, sent := newCaptureServer(t)
	defer server.Close()

	sink := newTestSink(t, server.URL)

	sink.LogInfo(context.Background(), "login succeeded", map[string]any{
		"user_id": "u-1",
		"email":   "user@example.com",
	})
	sink.LogError(context.Background(), "unexpected failure", map[string]any{
		"error": "boom",
	})
	require.NoError(t, sink.Close())

	messages := sent()
	require.Len(t, messages, 2)

	assert.Equal(t, "/botinfo-token/sendMessage", messages[0].path)
	assert.Equal(t, "1001", messages[0].chatID)
	assert.True(t, strings.HasPrefix(messages[0].text, "INFO: login succeeded"))
	assert.Contains(t, messages[0].text, "email: user@example.com")
	assert.Contains(t, messages[0].text, "user_id: u-1")

	assert.Equal(t, "/boterror-token/sendMessage", messages[1].path)
	assert.Equal(t, "2002", messages[1].chatID)
	assert.True(t, strings.HasPrefix(messages[1].text, "ERROR: unexpected failure"))
}

func TestTelegramSink_CloseDrainsBacklog(t *testing.T) {
	server, sent := newCaptureServer(t)
	defer server.Close()

	sink := newTestSink(t, server.URL)

	for i := 0; i < 10; i++ {
		sink.LogInfo(context.Background(), "registration succeeded", map[string]any{"n": i})
	}
	require.NoError(t, sink.Close())

	assert.Len(t, sent(), 10)
}

func TestTelegramSink_FullQueueDoesNotBlock(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	sink := newTestSink(t, server.URL)

	// Overfill the queue while the worker is stuck on the first delivery.
	done := make(chan struct{})
	go func() {
		for i := 0; i < queueSize*2; i++ {
			sink.LogInfo(context.Background(), "event", nil)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("enqueue blocked on a full queue")
	}

	close(release)
	require.NoError(t, sink.Close())
}

func TestFormatMessage_StableFieldOrder(t *testing.T) {
	text := formatMessage(event{
		severity: severityInfo,
		name:     "login succeeded",
		fields: map[string]any{
			"b": 2,
			"a": 1,
		},
	})

	assert.Equal(t, "INFO: login succeeded\na: 1\nb: 2", text)
}

func TestTelegramSink_EndpointShape(t *testing.T) {
	server, sent := newCaptureServer(t)
	defer server.Close()

	sink := newTestSink(t, server.URL)
	sink.LogInfo(context.Background(), "logout", map[string]any{"user_id": "u-9"})
	require.NoError(t, sink.Close())

	messages := sent()
	require.Len(t, messages, 1)

	parsed, err := url.Parse(server.URL + messages[0].path)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(parsed.Path, "/sendMessage"))
}
