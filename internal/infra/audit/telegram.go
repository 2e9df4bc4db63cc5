// Package audit delivers auth events to the operators' Telegram channels.
// Delivery is queued and asynchronous so a slow or failing channel never
// delays the request path.
package audit

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"gate/config"
	"gate/internal/domain/service"

	"github.com/pkg/errors"
)

const (
	telegramAPIBase = "https://api.telegram.org"

	// queueSize bounds the event backlog. A full queue drops the event and
	// logs it locally instead of blocking a request.
	queueSize = 256

	deliveryTimeout = 10 * time.Second
)

type severity string

const (
	severityInfo  severity = "info"
	severityError severity = "error"
)

// event is one queued audit entry.
type event struct {
	severity severity
	name     string
	fields   map[string]any
}

// telegramSink implements AuditSink over the Telegram bot sendMessage API,
// one bot/chat pair per severity channel.
type telegramSink struct {
	infoBotToken  string
	infoChatID    string
	errorBotToken string
	errorChatID   string

	apiBase    string
	httpClient *http.Client
	logger     *slog.Logger

	queue chan event
	done  chan struct{}
}

// NewTelegramSink creates the sink and starts its delivery worker. Every
// credential is mandatory; a partially configured channel is a startup error,
// not a silently dropped one.
func NewTelegramSink(cfg *config.TelegramConfig, logger *slog.Logger) (service.AuditSink, error) {
	if cfg == nil {
		return nil, errors.New("telegram configuration is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	sink := &telegramSink{
		infoBotToken:  cfg.InfoBotToken,
		infoChatID:    cfg.InfoChatID,
		errorBotToken: cfg.ErrorBotToken,
		errorChatID:   cfg.ErrorChatID,
		apiBase:       telegramAPIBase,
		httpClient:    &http.Client{Timeout: deliveryTimeout},
		logger:        logger,
		queue:         make(chan event, queueSize),
		done:          make(chan struct{}),
	}

	go sink.deliverLoop()

	return sink, nil
}

// LogInfo queues an informational auth event for the info channel.
func (s *telegramSink) LogInfo(_ context.Context, name string, fields map[string]any) {
	s.enqueue(event{severity: severityInfo, name: name, fields: fields})
}

// LogError queues an operational failure for the high-severity channel.
func (s *telegramSink) LogError(_ context.Context, name string, fields map[string]any) {
	s.enqueue(event{severity: severityError, name: name, fields: fields})
}

// enqueue never blocks; on a full queue the event is dropped and logged
// locally so the backlog stays visible to operators.
func (s *telegramSink) enqueue(ev event) {
	select {
	case s.queue <- ev:
	default:
		s.logger.Warn("audit queue full, dropping event",
			slog.String("event", ev.name),
			slog.String("severity", string(ev.severity)),
		)
	}
}

// Close stops accepting events and drains the remaining backlog.
func (s *telegramSink) Close() error {
	close(s.queue)
	<-s.done

	return nil
}

func (s *telegramSink) deliverLoop() {
	defer close(s.done)

	for ev := range s.queue {
		if err := s.deliver(ev); err != nil {
			s.logger.Error("failed to deliver audit event",
				slog.String("event", ev.name),
				slog.Any("error", err),
			)
		}
	}
}

func (s *telegramSink) deliver(ev event) error {
	botToken, chatID := s.infoBotToken, s.infoChatID
	if ev.severity == severityError {
		botToken, chatID = s.errorBotToken, s.errorChatID
	}

	ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
	defer cancel()

	form := url.Values{}
	form.Set("chat_id", chatID)
	form.Set("text", formatMessage(ev))

	endpoint := s.apiBase + "/bot" + botToken + "/sendMessage"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return errors.Wrap(err, "failed to create telegram request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "failed to send telegram message")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)

		return errors.Errorf("telegram returned status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}

// formatMessage renders an event as a readable multi-line message with the
// fields in a stable order.
func formatMessage(ev event) string {
	var b strings.Builder
	b.WriteString(strings.ToUpper(string(ev.severity)))
	b.WriteString(": ")
	b.WriteString(ev.name)

	keys := make([]string, 0, len(ev.fields))
	for key := range ev.fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		b.WriteString("\n")
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(fmt.Sprint(ev.fields[key]))
	}

	return b.String()
}
