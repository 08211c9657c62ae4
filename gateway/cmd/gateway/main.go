package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/planbookai/platform/gateway/internal/config"
	"github.com/planbookai/platform/gateway/internal/httpserver"
	"github.com/planbookai/platform/pkg/db"
	"github.com/planbookai/platform/pkg/logging"
	"github.com/planbookai/platform/pkg/revocation"
	"github.com/planbookai/platform/pkg/tokens"
)

func main() {
	cfg := config.Load()
	logger := logging.New("gateway", cfg.LogLevel)

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var gdb *gorm.DB
	if cfg.Revocation.Kind != revocation.BackendRedis {
		var err error
		gdb, err = db.Open(initCtx, cfg.DBDriver, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("db init error: %v", err)
		}
		defer db.Close(gdb)
	}

	store, closeStore, err := revocation.Open(initCtx, cfg.Revocation, gdb)
	if err != nil {
		log.Fatalf("revocation store: %v", err)
	}
	defer closeStore()

	// Access and refresh TTLs only matter when minting; the gateway never does.
	codec, err := tokens.NewCodec(cfg.JWTSecret, time.Minute, time.Hour)
	if err != nil {
		log.Fatalf("token codec: %v", err)
	}

	if err := httpserver.Register(e, &httpserver.Deps{
		AuthURL:        cfg.AuthURL,
		PackageURL:     cfg.PackageURL,
		QuestionURL:    cfg.QuestionURL,
		DiscoveryURL:   cfg.DiscoveryURL,
		Validator:      tokens.NewValidator(codec, store),
		PublicPrefixes: cfg.PublicPaths,
		LookupTimeout:  cfg.LookupTimeout,
		Logger:         logger,
	}); err != nil {
		log.Fatal(err)
	}

	go func() {
		logger.Info("gateway_listening", "addr", cfg.ListenAddr, "public_paths", cfg.PublicPaths)
		if err := e.Start(cfg.ListenAddr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
