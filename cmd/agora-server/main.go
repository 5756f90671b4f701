// Package main is the entry point for the Agora server.
// Agora is a forum service: users register, open topics, post in them and comment on posts.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"github.com/prn-tf/agora/internal/auth"
	"github.com/prn-tf/agora/internal/cache/memory"
	rediscache "github.com/prn-tf/agora/internal/cache/redis"
	"github.com/prn-tf/agora/internal/config"
	"github.com/prn-tf/agora/internal/handler"
	"github.com/prn-tf/agora/internal/logging"
	"github.com/prn-tf/agora/internal/metrics"
	"github.com/prn-tf/agora/internal/pkg/crypto"
	"github.com/prn-tf/agora/internal/repository"
	"github.com/prn-tf/agora/internal/repository/factory"
	"github.com/prn-tf/agora/internal/service"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	configPath := pflag.StringP("config", "c", "", "path to config file")
	showVersion := pflag.BoolP("version", "v", false, "print version information and exit")
	pflag.Parse()

	if *showVersion {
		fmt.Printf("agora-server %s (built %s, commit %s)\n", Version, BuildTime, GitCommit)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := logging.Setup(cfg.Logging, os.Stderr)

	logger.Info().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("git_commit", GitCommit).
		Str("env", cfg.App.Env).
		Msg("Starting Agora server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server stopped with error")
	}
	logger.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	if cfg.Auth.InsecureSecret {
		logger.Warn().Msg("JWT_SECRET is not set; signing tokens with the built-in development secret")
	} else if crypto.IsWeakSecret(cfg.Auth.JWTSecret) {
		logger.Warn().Int("min_length", crypto.SigningSecretSize).Msg("JWT_SECRET is shorter than recommended")
	}

	// Store
	store, err := factory.NewFactory(cfg.Database, logger).Open(ctx)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// User lookups made on every authenticated request go through the cache.
	users := store.Repos.User
	if cfg.Cache.UserTTL > 0 {
		cache, closeCache, err := newCache(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer closeCache()
		users = repository.NewCachedUserRepository(users, cache, cfg.Cache.UserTTL, logger)
	}

	m := metrics.New()

	codec, err := auth.NewTokenCodec([]byte(cfg.Auth.JWTSecret),
		auth.WithTTL(cfg.Auth.TokenTTL),
		auth.WithIssuer(cfg.Auth.Issuer),
	)
	if err != nil {
		return fmt.Errorf("failed to create token codec: %w", err)
	}
	resolver := auth.NewResolver(codec, users, m, logger)

	// Services
	userService := service.NewUserService(users, service.NewBcryptHasher(bcrypt.DefaultCost), codec, logger)
	topicService := service.NewTopicService(store.Repos.Topic, logger)
	postService := service.NewPostService(store.Repos.Post, logger)
	commentService := service.NewCommentService(store.Repos.Comment, logger)

	routerCfg := handler.RouterConfig{
		QueryHandler: handler.NewQueryHandler(handler.QueryHandlerConfig{
			UserService:    userService,
			TopicService:   topicService,
			PostService:    postService,
			CommentService: commentService,
			Recorder:       m,
			Logger:         logger,
		}),
		HealthHandler: handler.NewHealthHandler(store.Database, logger),
		Resolver:      resolver,
		CORS:          cfg.CORS,
		RateLimit:     cfg.RateLimit,
		MaxBodySize:   cfg.Server.MaxBodySize,
		TrustProxy:    cfg.Server.TrustProxy,
		Logger:        logger,
	}
	if cfg.Metrics.Enabled {
		routerCfg.HTTPRecorder = m
		if cfg.Metrics.Port == 0 {
			routerCfg.MetricsHandler = m.Handler()
			routerCfg.MetricsPath = cfg.Metrics.Path
		}
	}

	servers := []*http.Server{{
		Addr:         cfg.Server.Addr(),
		Handler:      handler.NewRouter(routerCfg).Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}}
	if cfg.Metrics.Enabled && cfg.Metrics.Port != 0 {
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, m.Handler())
		servers = append(servers, &http.Server{
			Addr:        fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Metrics.Port),
			Handler:     mux,
			ReadTimeout: cfg.Server.ReadTimeout,
		})
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		g.Go(func() error {
			logger.Info().Str("addr", srv.Addr).Msg("listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("listener %s failed: %w", srv.Addr, err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		var errs []error
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})

	return g.Wait()
}

// newCache returns the redis cache when enabled, else an in-process cache.
func newCache(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (repository.Cache, func(), error) {
	if cfg.Redis.Enabled {
		client, err := rediscache.NewClient(ctx, cfg.Redis, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		cache := rediscache.NewCache(client)
		return cache, func() { _ = cache.Close() }, nil
	}

	cache := memory.NewCache(cfg.Cache.CleanupInterval)
	logger.Info().Msg("using in-memory user cache")
	return cache, cache.Stop, nil
}
