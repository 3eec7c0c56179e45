package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/adapters/billing"
	cacheadapter "github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/adapters/cache"
	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/adapters/dynamo"
	eventadapter "github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/adapters/events"
	httpadapter "github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/adapters/http"
	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/adapters/ids"
	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/adapters/kvstore"
	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/adapters/memory"
	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/adapters/postgres"
	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/adapters/security"
	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/application"
	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/application/action"
	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/domain"
	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/ports"
)

type Runtime struct {
	cfg        Config
	logger     *slog.Logger
	service    *application.Service
	httpServer *http.Server
	grpcServer *grpc.Server
	cleanupFn  func(context.Context)
}

// cleanups runs registered closers in reverse order.
type cleanups []func()

func (c *cleanups) add(fn func()) { *c = append(*c, fn) }

func (c cleanups) run() {
	for i := len(c) - 1; i >= 0; i-- {
		c[i]()
	}
}

func NewRuntime(ctx context.Context, configPath string) (*Runtime, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)
	logger.Info("bootstrapping m98 account service",
		"http_port", cfg.HTTPPort,
		"grpc_port", cfg.GRPCPort,
		"store_driver", cfg.StoreDriver,
	)

	var closers cleanups
	fail := func(err error) (*Runtime, error) {
		closers.run()
		return nil, err
	}

	tables := kvstore.NewTables(cfg.TablePrefix)
	store, err := openStore(ctx, cfg, tables, &closers)
	if err != nil {
		return fail(err)
	}

	idGen, err := ids.New(cfg.IDStrategy, cfg.IDNode)
	if err != nil {
		return fail(fmt.Errorf("init id generator: %w", err))
	}
	repos := kvstore.NewRepositories(store, idGen, tables)

	var revocations ports.SessionRevocationStore
	pingRedis := func(context.Context) error { return nil }
	if cfg.SessionRevocation {
		if cfg.RedisURL != "" {
			redisClient, err := cacheadapter.Connect(ctx, cfg.RedisURL)
			if err != nil {
				return fail(fmt.Errorf("connect redis: %w", err))
			}
			closers.add(func() { _ = redisClient.Close() })
			revocations = cacheadapter.NewRedisSessionRevocationStore(redisClient)
			pingRedis = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
		} else {
			logger.Warn("session revocation enabled without REDIS_URL; using process-local denylist")
			revocations = cacheadapter.NewMemorySessionRevocationStore()
		}
	}

	codec, err := security.NewJWTSessionCodec(cfg.AuthSecret)
	if err != nil {
		return fail(fmt.Errorf("init session codec: %w", err))
	}

	var notifier ports.InvitationNotifier = eventadapter.NewLoggingNotifier(logger)
	if len(cfg.KafkaBrokers) > 0 {
		kafkaNotifier, err := eventadapter.NewKafkaNotifier(cfg.KafkaBrokers, cfg.InvitationTopic)
		if err != nil {
			return fail(fmt.Errorf("init kafka notifier: %w", err))
		}
		closers.add(func() { _ = kafkaNotifier.Close() })
		notifier = kafkaNotifier
	}

	checkout, err := billing.NewLinkProvider(cfg.CheckoutBaseURL)
	if err != nil {
		return fail(fmt.Errorf("init billing: %w", err))
	}

	sessions := application.NewSessionManager(codec, repos.Users, revocations, cfg.SessionTTL, logger)
	svc := application.NewService(application.Dependencies{
		Config: application.Config{
			ServiceName:       cfg.ServiceID,
			SessionTTL:        cfg.SessionTTL,
			SessionRevocation: cfg.SessionRevocation,
		},
		Users:              repos.Users,
		Teams:              repos.Teams,
		Members:            repos.Members,
		Invitations:        repos.Invitations,
		Activity:           repos.Activity,
		Keys:               repos.Keys,
		EmailIndex:         repos.EmailIndex,
		PendingInvitations: repos.PendingInvitations,
		Hasher:             security.NewBcryptHasher(cfg.BcryptCost, cfg.HashConcurrency),
		Sessions:           sessions,
		Notifier:           notifier,
		Billing:            checkout,
		Logger:             logger,
	})

	handler := httpadapter.NewHandler(svc, application.NewActions(svc, action.NewValidator()), httpadapter.Options{
		CookieSecure:        cfg.CookieSecure,
		BillingWebhookToken: cfg.BillingWebhookToken,
		Ready: func(ctx context.Context) error {
			if _, err := store.Get(ctx, tables.Users, ports.Key{"id": int64(0)}); err != nil && !errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("store: %w", err)
			}
			return pingRedis(ctx)
		},
	})
	router := httpadapter.NewRouter(handler)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcServer := grpc.NewServer()
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthSrv)
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	return &Runtime{
		cfg:        cfg,
		logger:     logger,
		service:    svc,
		httpServer: httpServer,
		grpcServer: grpcServer,
		cleanupFn: func(context.Context) {
			closers.run()
		},
	}, nil
}

func openStore(ctx context.Context, cfg Config, tables kvstore.Tables, closers *cleanups) (ports.Store, error) {
	switch cfg.StoreDriver {
	case StoreDynamoDB:
		client, err := dynamo.Connect(ctx, cfg.DynamoRegion, cfg.DynamoEndpoint)
		if err != nil {
			return nil, fmt.Errorf("connect dynamodb: %w", err)
		}
		return dynamo.NewStore(client, tables.Schemas()...), nil
	case StorePostgres:
		db, err := postgres.Connect(ctx, cfg.DatabaseURL, cfg.MaxDBConns)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("gorm sql db: %w", err)
		}
		closers.add(func() { _ = sqlDB.Close() })
		if _, err := postgres.RunMigrations(ctx, db); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		return postgres.NewDocumentStore(db, tables.Schemas()...), nil
	case StoreMemory:
		return memory.NewStore(tables.Schemas()...), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

func (r *Runtime) RunAPI(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", r.cfg.GRPCPort))
	if err != nil {
		r.cleanupFn(ctx)
		return fmt.Errorf("listen gRPC: %w", err)
	}

	errCh := make(chan error, 2)
	go func() {
		r.logger.Info("http server started", "addr", r.httpServer.Addr)
		if err := r.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		r.logger.Info("grpc server started", "addr", lis.Addr().String())
		if err := r.grpcServer.Serve(lis); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		r.logger.Info("shutdown signal received")
	case runErr = <-errCh:
		r.logger.Error("server failure", "error", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = r.httpServer.Shutdown(shutdownCtx)
	r.grpcServer.GracefulStop()
	r.cleanupFn(shutdownCtx)
	return runErr
}

// RunSeed creates the local demo account and exits without serving.
func (r *Runtime) RunSeed(ctx context.Context) error {
	defer r.cleanupFn(ctx)
	user, err := r.service.Seed(ctx, application.DefaultSeed)
	if err != nil {
		return err
	}
	r.logger.Info("seed complete", "user_id", user.ID, "email", user.Email)
	return nil
}
