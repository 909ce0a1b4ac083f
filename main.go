// Package main wires the org membership service: ArangoDB storage, the Fiber
// REST and GraphQL API, email notifications and the optional Kafka outbox.
package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/devexchange/orgs-backend/v1/config"
	"github.com/devexchange/orgs-backend/v1/database"
	"github.com/devexchange/orgs-backend/v1/events/modules/membership"
	"github.com/devexchange/orgs-backend/v1/graphql"
	"github.com/devexchange/orgs-backend/v1/internal/api"
	"github.com/devexchange/orgs-backend/v1/internal/cache"
	"github.com/devexchange/orgs-backend/v1/internal/kafka"
	"github.com/devexchange/orgs-backend/v1/internal/notify"
	"github.com/devexchange/orgs-backend/v1/internal/services"
	"github.com/devexchange/orgs-backend/v1/restapi"
	"github.com/devexchange/orgs-backend/v1/restapi/modules/admin"
	"github.com/devexchange/orgs-backend/v1/restapi/modules/auth"
	"github.com/devexchange/orgs-backend/v1/restapi/modules/orgs"
	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	gql "github.com/graphql-go/graphql"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func main() {
	opts := []fx.Option{}
	opts = append(opts, provideOptions()...)
	opts = append(opts, fx.Invoke(applyStartupRoster, startEventProcessor, restapi.SetupRoutes, run))

	app := fx.New(opts...)

	app.Run()
}

func provideOptions() []fx.Option {
	return []fx.Option{
		fx.Provide(config.Parse),
		fx.Provide(database.InitLogger),
		fx.Provide(provideDatabase),
		fx.Provide(database.NewOrgRepo),
		fx.Provide(database.NewUserRepo),
		fx.Provide(database.NewProposalRepo),
		fx.Provide(provideRedis),
		fx.Provide(provideSender),
		fx.Provide(provideNotifier),
		fx.Provide(provideMembershipService),
		fx.Provide(provideTokens),
		fx.Provide(provideMiddleware),
		fx.Provide(provideOrgHandlers),
		fx.Provide(provideAdminHandlers),
		fx.Provide(provideSchema),
		fx.Provide(api.NewFiberApp),
	}
}

func provideDatabase(cfg *config.Config, logger *zap.Logger) (database.DBConnection, error) {
	return database.InitializeDatabase(context.Background(), cfg.Arango, logger)
}

func provideRedis(cfg *config.Config, logger *zap.Logger, lc fx.Lifecycle) (*redis.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	rdb, err := cache.ProvideRedis(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	if rdb == nil {
		logger.Info("REDIS_ADDR not set, public org list is not cached")
		return nil, nil
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return rdb.Close()
		},
	})
	return rdb, nil
}

func provideSender(cfg *config.Config, logger *zap.Logger) *notify.Sender {
	return notify.NewSender(cfg.Email, notify.NewSMTPMailer(cfg.Email), logger)
}

// provideNotifier publishes notifications to Kafka when brokers are configured
// and mails them inline otherwise.
func provideNotifier(cfg *config.Config, sender *notify.Sender, logger *zap.Logger, lc fx.Lifecycle) services.Notifier {
	brokers := cfg.Kafka.BrokerList()
	if len(brokers) == 0 {
		return sender
	}

	producer := membership.NewProducer(brokers, cfg.Kafka.Topic, kafka.Transport(cfg.Kafka))
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return producer.Close()
		},
	})
	logger.Info("Membership notifications are published to Kafka", zap.String("topic", cfg.Kafka.Topic))
	return producer
}

func provideMembershipService(
	cfg *config.Config,
	orgRepo *database.OrgRepo,
	userRepo *database.UserRepo,
	proposalRepo *database.ProposalRepo,
	notifier services.Notifier,
	rdb *redis.Client,
	logger *zap.Logger,
) *services.MembershipService {
	var opts []services.Option
	if rdb != nil {
		ttl := time.Duration(cfg.Redis.TTL) * time.Second
		opts = append(opts, services.WithCache(cache.NewOrgListCache(rdb, ttl, logger)))
	}
	return services.NewMembershipService(orgRepo, userRepo, proposalRepo, notifier, logger, opts...)
}

func provideTokens(cfg *config.Config) (*auth.Tokens, error) {
	return auth.NewTokens(cfg.JwtSecret)
}

func provideMiddleware(tokens *auth.Tokens, userRepo *database.UserRepo, logger *zap.Logger) *auth.Middleware {
	return auth.NewMiddleware(tokens, userRepo, logger)
}

func provideOrgHandlers(svc *services.MembershipService, logger *zap.Logger) *orgs.Handlers {
	return orgs.NewHandlers(svc, logger)
}

func provideAdminHandlers(userRepo *database.UserRepo, logger *zap.Logger) *admin.Handlers {
	return admin.NewHandlers(userRepo, logger)
}

func provideSchema(svc *services.MembershipService) (gql.Schema, error) {
	return graphql.CreateSchema(svc)
}

// applyStartupRoster reconciles superusers with the roster file, if one exists
func applyStartupRoster(cfg *config.Config, userRepo *database.UserRepo, logger *zap.Logger) {
	if cfg.RosterPath == "" {
		return
	}
	if _, err := os.Stat(cfg.RosterPath); errors.Is(err, os.ErrNotExist) {
		logger.Info("No superuser roster file found, skipping", zap.String("path", cfg.RosterPath))
		return
	}

	roster, err := auth.LoadRoster(cfg.RosterPath)
	if err != nil {
		logger.Warn("Failed to load superuser roster", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := auth.ApplyRoster(ctx, userRepo, roster, logger)
	if err != nil {
		logger.Warn("Superuser roster apply failed", zap.Error(err))
		return
	}
	logger.Info("Superuser roster applied",
		zap.Int("granted", len(result.Granted)),
		zap.Int("revoked", len(result.Revoked)),
		zap.Int("notFound", len(result.NotFound)),
		zap.Int("errors", len(result.Errors)))
}

// startEventProcessor consumes the membership topic and mails each event.
// Nothing runs when Kafka is not configured since notifications are then sent inline.
func startEventProcessor(cfg *config.Config, sender *notify.Sender, logger *zap.Logger, lc fx.Lifecycle) {
	if len(cfg.Kafka.BrokerList()) == 0 {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			handler := membership.NewHandler(sender, logger)
			go func() {
				if err := kafka.RunEventProcessor(ctx, cfg.Kafka, handler, logger); err != nil {
					logger.Error("Membership event processor not started", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}

func run(app *fiber.App, cfg *config.Config, logger *zap.Logger, lc fx.Lifecycle) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			errChan := make(chan error, 1)

			go func() {
				logger.Info("Starting server", zap.String("port", cfg.Port))
				errChan <- app.Listen(":" + cfg.Port)
			}()

			select {
			case err := <-errChan:
				return err
			case <-time.After(100 * time.Millisecond):
				return nil
			}
		},
		OnStop: func(ctx context.Context) error {
			_ = logger.Sync()
			return app.Shutdown()
		},
	})
}
