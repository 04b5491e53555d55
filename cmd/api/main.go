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

	_ "go.uber.org/automaxprocs"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"gestao-marketplace/internal/app"
	"gestao-marketplace/internal/core/config"
	"gestao-marketplace/internal/core/database"
	"gestao-marketplace/internal/core/logger"
	"gestao-marketplace/internal/core/server"
	"gestao-marketplace/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log, cleanup := app.NewLogger(cfg)
	defer cleanup()
	defer logger.RedirectStdLog(log, zapcore.InfoLevel)()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	gin.DefaultWriter = logger.ToWriter(log.Named("gin"), zapcore.DebugLevel)
	gin.DefaultErrorWriter = logger.ToWriter(log.Named("gin"), zapcore.ErrorLevel)

	// 数据库（失败直接 Fatal）
	db, err := app.OpenDB(cfg, log)
	if err != nil {
		log.Fatal("db open", zap.Error(err))
	}
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))

	if cfg.DB.AutoMigrate {
		if err := database.AutoMigrate(db); err != nil {
			log.Fatal("automigrate failed", zap.Error(err))
		}
		log.Info("automigrate done")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log, db)
	if err != nil {
		log.Fatal("bootstrap failed", zap.Error(err))
	}
	defer a.Close()

	checks := map[string]router.Pinger{}
	if sqlDB, err := db.DB(); err == nil {
		checks["db"] = sqlDB.PingContext
	}
	if a.Cache != nil {
		checks["redis"] = a.Cache.Ping
	}

	h := cfg.App.HTTP
	r := router.NewAPIEngine(router.Deps{
		Log:            log,
		Auth:           a.Auth,
		Users:          a.Users,
		Products:       a.Products,
		CORSOrigins:    h.CORSOrigins,
		MaxInFlight:    h.MaxInFlight,
		MaxBodyBytes:   int64(cfg.Storage.MaxFileMB+1) << 20,
		HandlerTimeout: time.Duration(h.HandlerTimeoutSec) * time.Second,
		Checks:         checks,
	})

	addr := server.Addr(h.Host, h.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(h.ReadTimeoutSec)*time.Second,
		time.Duration(h.WriteTimeoutSec)*time.Second,
		time.Duration(h.IdleTimeoutSec)*time.Second,
	)

	host4human := h.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(h.Port)
	log.Info("marketplace api starting",
		zap.String("addr", addr),
		zap.String("env", cfg.App.Env),
		zap.String("storage", cfg.Storage.Driver),
		zap.Bool("cache", a.Cache != nil),
		zap.String("health", baseURL+"/health"),
	)

	// 异步启动
	errCh := make(chan error, 1)
	go func() {
		if err := server.StartHTTP(srv, log); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// 优雅关闭
	select {
	case <-ctx.Done():
	case err := <-errCh:
		log.Error("marketplace api start FAILED", zap.Error(err))
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("shutdown", zap.Error(err))
	}
	log.Info("marketplace api stopped gracefully")
}
