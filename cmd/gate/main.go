package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"gate/config"
	"gate/internal/delivery"
	"gate/internal/delivery/http"
	"gate/internal/delivery/http/middleware"
	"gate/internal/delivery/http/router/handler"
	"gate/internal/domain/service"
	"gate/internal/infra/audit"
	"gate/internal/infra/auth"
	"gate/internal/infra/auth/google"
	logs "gate/internal/infra/log"
	"gate/internal/infra/persistence/postgres"
	"gate/internal/usecase"
	"gate/internal/usecase/impl"

	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

type janitorParams struct {
	fx.In
	fx.Lifecycle

	Config      *config.Config
	Logger      *slog.Logger
	AuthUsecase usecase.AuthUsecase
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
		fx.Invoke(
			startServer,
			startTokenJanitor,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
		postgres.New,
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			postgres.NewUserRepository,
			postgres.NewTokenRepository,
			postgres.NewTransactionManager,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			auth.NewBcryptHasher,
			auth.NewJWTService,
			newOAuthProviders,
			audit.NewSink,
		),
	)
}

// newOAuthProviders builds the provider registry. Only configured providers
// are registered; routes for the rest answer 404.
func newOAuthProviders(cfg *config.Config) (service.OAuthProviders, error) {
	providers := make(service.OAuthProviders)

	if cfg.GoogleOAuth != nil {
		googleProvider, err := google.NewProvider(cfg)
		if err != nil {
			return nil, err
		}
		providers[googleProvider.Name()] = googleProvider
	}

	return providers, nil
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewAuthService,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			middleware.NewAuthMiddleware,
			middleware.NewErrorMiddleware,
			middleware.NewRequestIDMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewAuthHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				http.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))
				os.Exit(1)
			}
		}()
	}
}

// startTokenJanitor periodically purges token records that can no longer
// authenticate, so the token tables do not grow without bound.
func startTokenJanitor(params janitorParams) {
	interval := params.Config.Auth.TokenCleanupInterval

	janitorCtx, cancel := context.WithCancel(context.Background())

	params.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go runTokenJanitor(janitorCtx, interval, params.AuthUsecase, params.Logger)

			return nil
		},
		OnStop: func(context.Context) error {
			cancel()

			return nil
		},
	})
}

func runTokenJanitor(ctx context.Context, interval time.Duration, authUsecase usecase.AuthUsecase, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := authUsecase.PurgeExpiredTokens(ctx); err != nil {
				logger.Error("Failed to purge expired tokens", slog.Any("error", err))

				continue
			}
			logger.Debug("Purged expired tokens")
		}
	}
}
