package cmd

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

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"inventory-server/auth"
	"inventory-server/cache"
	"inventory-server/config"
	"inventory-server/database"
	"inventory-server/routes"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start the HTTP server on PORT (default 5000).

The listener opens immediately; the database connection is attempted once in
the background and /ready reports 503 until it succeeds. The server shuts
down cleanly on SIGTERM or SIGINT.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		gin.SetMode(gin.ReleaseMode)
		return serve(ctx, cfg, slog.Default(), database.Connector(cfg.Database), nil)
	},
}

func newCache(cc config.CacheConfig) cache.Cache {
	if cc.RedisAddr == "" {
		return cache.Noop{}
	}
	return cache.NewRedis(cache.RedisOptions{
		Addr:     cc.RedisAddr,
		Password: cc.RedisPassword,
		DB:       cc.RedisDB,
	})
}

func signingKey(ac config.AuthConfig, logger *slog.Logger) ([]byte, error) {
	if ac.JWTSecret != "" {
		return []byte(ac.JWTSecret), nil
	}
	logger.Warn("JWT_SECRET is not set; using a random key, tokens will not survive a restart")
	return auth.RandomSecret()
}

// serve opens the listener, starts the database connection attempt and
// runs until ctx is cancelled. listening, when set, is called with the bound
// address once the listener is open.
func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger, connect database.ConnectFunc, listening func(net.Addr)) error {
	key, err := signingKey(cfg.Auth, logger)
	if err != nil {
		return fmt.Errorf("generating JWT key: %w", err)
	}

	boot := database.NewBootstrap(logger.With("driver", cfg.Database.Driver))
	responses := newCache(cfg.Cache)
	defer responses.Close()

	router := routes.NewRouter(routes.Dependencies{
		Config:   cfg,
		Logger:   logger,
		Store:    boot,
		Database: boot,
		Tokens:   auth.NewTokenIssuer(key, cfg.Auth.TokenTTL),
		Hasher:   auth.NewHasher(cfg.Auth.BcryptCost),
		Notifier: auth.LogNotifier{Logger: logger},
		Cache:    responses,
	})

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Server.Port))
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	srv := &http.Server{
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	logger.Info(fmt.Sprintf("Server running on port %d", ln.Addr().(*net.TCPAddr).Port))
	if listening != nil {
		listening(ln.Addr())
	}

	boot.Start(ctx, connect)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received")

		shutCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		if err := boot.Close(shutCtx); err != nil {
			logger.Warn("closing database", "err", err)
		}
		logger.Info("server stopped cleanly")
		return nil
	})
	return g.Wait()
}
