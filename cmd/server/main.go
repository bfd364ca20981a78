package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/AnshRaj112/contactbook-backend/internal/auth"
	"github.com/AnshRaj112/contactbook-backend/internal/config"
	"github.com/AnshRaj112/contactbook-backend/internal/database"
	"github.com/AnshRaj112/contactbook-backend/internal/handlers"
	"github.com/AnshRaj112/contactbook-backend/internal/middleware"
	"github.com/AnshRaj112/contactbook-backend/internal/routes"
	"github.com/AnshRaj112/contactbook-backend/internal/services"
	"github.com/AnshRaj112/contactbook-backend/internal/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration:\n%v\n", err)
		os.Exit(1)
	}

	log, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("MongoDB URI", zap.String("uri", cfg.MaskedMongoURI()))
	mongo, err := database.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase, log)
	if err != nil {
		return fmt.Errorf("connect mongo: %w", err)
	}
	defer mongo.Disconnect()

	if err := mongo.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}

	rdb, err := database.ConnectRedis(ctx, cfg.RedisURI, log)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if rdb != nil {
		defer rdb.Close()
	}

	tokens, err := auth.NewTokenService(cfg.JWTSecret, nil)
	if err != nil {
		return err
	}

	events := services.NewContactEvents(rdb, log)
	go events.Run(ctx)

	contacts := services.NewCachedContactStore(
		store.NewMongoContactStore(mongo.DB.Collection(store.ContactsCollection)),
		rdb, cfg.ContactCacheTTL, log,
	)
	users := store.NewMongoUserStore(mongo.DB.Collection(store.UsersCollection))

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLogger(log, cfg.TrustProxy))
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	if cfg.IsProduction() {
		for _, mw := range middleware.ProductionSecurity(cfg.AllowedHost, log) {
			r.Use(mw)
		}
		log.Info("production security enabled", zap.String("allowed_host", cfg.AllowedHost))
	}

	routes.SetupRoutes(r, routes.Deps{
		Auth:     handlers.NewAuthHandler(users, tokens, log),
		Contacts: handlers.NewContactHandler(contacts, events, log),
		Feed:     handlers.NewContactFeed(events, cfg.AllowedOrigins, log),
		Tokens:   tokens,
		Ready:    mongo.Ping,
		Log:      log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("contactbook backend listening", zap.String("addr", srv.Addr), zap.String("env", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if !cfg.IsProduction() {
		return zap.NewDevelopmentConfig().Build()
	}
	zcfg := zap.NewProductionConfig()
	if cfg.LogLevel != "" {
		level, err := zapcore.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("LOG_LEVEL: %w", err)
		}
		zcfg.Level = zap.NewAtomicLevelAt(level)
	}
	return zcfg.Build()
}
