package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sibubur/terminal/internal/api"
	"sibubur/terminal/internal/auth"
	"sibubur/terminal/internal/cart"
	"sibubur/terminal/internal/config"
	"sibubur/terminal/internal/httpapi"
	"sibubur/terminal/internal/logger"
	"sibubur/terminal/internal/permission"
	"sibubur/terminal/internal/service"
	"sibubur/terminal/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("invalid configuration: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	closers := make([]func() error, 0, 1)

	var store session.Store
	if cfg.RedisAddr != "" {
		redisStore := session.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.TerminalID)
		if err := redisStore.Ping(ctx); err != nil {
			log.Warn("redis unavailable, using file store", "error", err)
			store = mustFileStore(cfg.StateDir, log)
		} else {
			store = redisStore
			closers = append(closers, redisStore.Close)
			log.Info("session store: redis", "addr", cfg.RedisAddr)
		}
	} else {
		store = mustFileStore(cfg.StateDir, log)
	}

	var manager *auth.Manager
	client := api.New(cfg.APIBaseURL, cfg.RequestTimeout(), func(ctx context.Context) (string, bool) {
		return manager.Token(ctx)
	}, log)
	manager = auth.NewManager(store, client.Auth, log)

	perms := permission.NewCache(client.Auth, manager.IsAuthenticated, manager.CurrentRoleName, log)
	manager.BindPermissions(perms)
	client.SetOnUnauthorized(manager.HandleUnauthorized)

	manager.Restore(ctx)

	facade := httpapi.New(httpapi.Deps{
		Manager:         manager,
		Perms:           perms,
		Carts:           cart.NewRegistry(),
		Checkout:        service.NewCheckout(client.Orders, client.Transactions, log),
		Attendance:      service.NewAttendance(client.Attendances, log),
		Store:           store,
		Products:        client.Products,
		Orders:          client.Orders,
		PaymentMethods:  client.PaymentMethods,
		Stores:          client.Stores,
		Roles:           client.Roles,
		RolePermissions: client.Permissions,
		Logger:          log,
	})

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           facade.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("terminal facade listening", "addr", cfg.ListenAddr, "backend", cfg.APIBaseURL)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			log.Error("close error", "error", err)
		}
	}
	log.Info("terminal stopped")
}

func mustFileStore(dir string, log *slog.Logger) *session.FileStore {
	store, err := session.NewFileStore(dir)
	if err != nil {
		log.Error("state dir unusable", "dir", dir, "error", err)
		os.Exit(1)
	}
	return store
}
