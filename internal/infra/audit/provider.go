package audit

import (
	"context"
	"log/slog"

	"gate/config"
	"gate/internal/domain/service"

	"go.uber.org/fx"
)

// noopSink is used when no audit channel is configured.
type noopSink struct {
	logger *slog.Logger
}

func (s *noopSink) LogInfo(_ context.Context, name string, _ map[string]any) {
	s.logger.Debug("audit disabled, skipping event", slog.String("event", name))
}

func (s *noopSink) LogError(_ context.Context, name string, _ map[string]any) {
	s.logger.Debug("audit disabled, skipping event", slog.String("event", name))
}

func (s *noopSink) Close() error {
	return nil
}

// SinkParams holds dependencies for AuditSink, injected by Fx
type SinkParams struct {
	fx.In

	Lc     fx.Lifecycle
	Config *config.Config
	Logger *slog.Logger
}

// NewSink creates an AuditSink based on configuration. Without a telegram
// section the sink is a no-op; with one, every credential is mandatory.
func NewSink(params SinkParams) (service.AuditSink, error) {
	if params.Config.Telegram == nil {
		params.Logger.Info("Audit channel not configured, using no-op sink")

		return &noopSink{logger: params.Logger}, nil
	}

	sink, err := NewTelegramSink(params.Config.Telegram, params.Logger)
	if err != nil {
		return nil, err
	}

	params.Lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return sink.Close()
		},
	})

	return sink, nil
}
