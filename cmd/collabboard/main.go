package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/collabboard/internal/auth"
	"github.com/gosuda/collabboard/internal/config"
	"github.com/gosuda/collabboard/internal/notify"
	"github.com/gosuda/collabboard/internal/realtime"
	"github.com/gosuda/collabboard/internal/server"
	"github.com/gosuda/collabboard/internal/store/postgres"
	redisstore "github.com/gosuda/collabboard/internal/store/redis"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
}

func run() error {
	// Initialize structured logging from environment.
	level, parseErr := zerolog.ParseLevel(os.Getenv("COLLAB_LOG_LEVEL"))
	if parseErr != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if os.Getenv("COLLAB_LOG_FORMAT") == "text" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if cfg.Database.MaxConns < 0 || cfg.Database.MaxConns > math.MaxInt32 {
		return fmt.Errorf("database max_conns %d out of int32 range", cfg.Database.MaxConns)
	}

	// Connect to PostgreSQL.
	store, err := postgres.New(ctx, cfg.Database.DSN(), int32(cfg.Database.MaxConns)) //nolint:gosec // bounds checked above
	if err != nil {
		return err
	}
	defer store.Close()

	if cfg.Database.Migrate {
		if err := store.Migrate(ctx); err != nil {
			return err
		}
		log.Info().Msg("schema applied")
	}

	// Presence mirror. Without Redis the broker answers presence from its
	// own subscriber sets.
	var presence realtime.PresenceStore
	if cfg.Redis.Enabled {
		p, err := redisstore.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Realtime.PresenceTTL)
		if err != nil {
			return err
		}
		defer p.Close()
		presence = p
		log.Info().Str("addr", cfg.Redis.Addr).Msg("redis presence enabled")
	}

	authSvc := auth.NewService(store.Users(), cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	resolver := auth.NewIdentityResolver(cfg.JWT.Secret)

	broker := realtime.NewBroker(presence)
	live := realtime.NewRouter(
		realtime.NewGate(store.Memberships()),
		broker,
		realtime.NewRegistry(),
		realtime.NewStoreBridge(store.Chats(), store.Boards()),
	)

	// Graceful shutdown on SIGINT / SIGTERM.
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Keep mirrored rooms alive well inside the presence TTL.
	go broker.MirrorPresence(ctx, cfg.Realtime.PresenceTTL/3)

	channels := notify.NewRegistry()
	if cfg.Invite.WebhookURL != "" {
		channels.Register(notify.NewWebhook(cfg.Invite.WebhookURL, 10*time.Second))
	}
	notifier := notify.New(channels)

	srv := server.New(ctx, cfg, store, authSvc, resolver, live, notifier)

	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("starting server")
		if startErr := srv.Start(ctx); startErr != nil {
			log.Error().Err(startErr).Msg("server error")
			cancel()
		}
	}()

	// Block until shutdown signal.
	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		return shutdownErr
	}

	log.Info().Msg("stopped")
	return nil
}
