package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"user-registry/internal/config"
	apphttp "user-registry/internal/http"
	"user-registry/internal/repository"
	"user-registry/internal/repository/postgres"
	"user-registry/internal/repository/sqlite"
	"user-registry/internal/service"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.Fatalf("invalid log level %q: %v", cfg.Log.Level, err)
	}
	logger.SetLevel(level)

	hasher, err := service.NewPasswordHasher(cfg.Security.PasswordHasher)
	if err != nil {
		logger.Fatalf("password hasher: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, userRepo, err := openUserRepository(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatalf("connect database: %v", err)
	}
	defer db.Close()

	if err := userRepo.Init(ctx); err != nil {
		logger.Fatalf("init user repository: %v", err)
	}

	userService := service.NewUserService(userRepo, hasher)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	handler := apphttp.NewHandler(userService, logger)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}

// openUserRepository connects the pool for the configured store and returns
// the repository bound to it.
func openUserRepository(ctx context.Context, cfg config.Database, logger *logrus.Logger) (*sql.DB, repository.UserRepository, error) {
	driver, dsn, err := cfg.Driver()
	if err != nil {
		return nil, nil, err
	}

	switch driver {
	case "pgx":
		db, err := postgres.Open(ctx, dsn, cfg.MaxConns)
		if err != nil {
			return nil, nil, err
		}
		logger.Infof("using postgres store (max %d connections)", cfg.MaxConns)
		return db, postgres.NewUserRepository(db), nil
	case "sqlite":
		db, err := sqlite.Open(ctx, dsn)
		if err != nil {
			return nil, nil, err
		}
		logger.Infof("using sqlite store at %s", dsn)
		return db, sqlite.NewUserRepository(db), nil
	}
	return nil, nil, fmt.Errorf("unsupported database driver %q", driver)
}
