// Package app 把配置装配成可运行的依赖图，cmd/api 和 cmd/admin 共用
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"gestao-marketplace/internal/core/auth"
	"gestao-marketplace/internal/core/cache"
	"gestao-marketplace/internal/core/config"
	"gestao-marketplace/internal/core/database"
	"gestao-marketplace/internal/core/logger"
	"gestao-marketplace/internal/core/storage"
	"gestao-marketplace/internal/repo"
	"gestao-marketplace/internal/service"
	"gestao-marketplace/pkg/utils"
)

type App struct {
	Cfg   *config.Config
	Log   *zap.Logger
	DB    *gorm.DB
	Cache *cache.Cache
	Store storage.Gateway
	JWT   *auth.JWTer

	Users    *service.UserService
	Auth     *service.AuthService
	Products *service.ProductService
}

// NewLogger 配了 log.file.filename 就同时写滚动文件
func NewLogger(cfg *config.Config) (*zap.Logger, func()) {
	f := cfg.Log.File
	if f.Filename == "" {
		return logger.New(cfg.Log.Level, cfg.Log.JSON)
	}
	return logger.NewWithRotate(cfg.Log.Level, cfg.Log.JSON, f.Filename, f.MaxSizeMB, f.MaxBackups, f.MaxAgeDays, f.Compress)
}

func OpenDB(cfg *config.Config, l *zap.Logger) (*gorm.DB, error) {
	return database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		Writer:             logger.ToStdLogger(l.Named("gorm"), zapcore.WarnLevel),
	})
}

func NewStorage(ctx context.Context, cfg config.Storage) (storage.Gateway, error) {
	switch cfg.Driver {
	case "cloudinary":
		c := cfg.Cloudinary
		return storage.NewCloudinary(c.CloudName, c.APIKey, c.APISecret)
	case "memory":
		return storage.NewMemory("http://localhost/uploads"), nil
	default:
		s := cfg.S3
		return storage.NewS3(ctx, storage.S3Options{
			Bucket:          s.Bucket,
			Region:          s.Region,
			AccessKeyID:     s.AccessKeyID,
			SecretAccessKey: s.SecretAccessKey,
			Endpoint:        s.Endpoint,
			PublicBaseURL:   s.PublicBaseURL,
			UsePathStyle:    s.UsePathStyle,
		})
	}
}

// New db 由调用方打开并负责关闭；其余依赖在这里建
func New(ctx context.Context, cfg *config.Config, l *zap.Logger, db *gorm.DB) (*App, error) {
	a := &App{Cfg: cfg, Log: l, DB: db}

	if cfg.Redis.Enabled() {
		a.Cache = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Prefix)
		if err := a.Cache.Ping(ctx); err != nil {
			// redis 不可用时退化为直接查库
			l.Warn("redis unavailable, cache disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
			_ = a.Cache.Close()
			a.Cache = nil
		}
	}

	store, err := NewStorage(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	a.Store = store

	a.JWT = &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    time.Duration(cfg.JWT.AccessTokenTTLMin) * time.Minute,
	}
	hasher := utils.NewPasswordHasher(cfg.Security.BcryptCost)
	opt := service.Options{
		Cache:          a.Cache,
		CacheTTL:       time.Duration(cfg.Redis.TTLSec) * time.Second,
		MaxUploadBytes: int64(cfg.Storage.MaxFileMB) << 20,
		Log:            l.Named("service"),
	}
	a.Users = service.NewUserService(repo.NewUserRepo(db), hasher, a.Store, opt)
	a.Products = service.NewProductService(repo.NewProductRepo(db), a.Users, a.Store, opt)
	a.Auth = service.NewAuthService(a.Users, hasher, a.JWT, l.Named("auth"))
	return a, nil
}

func (a *App) Close() {
	_ = a.Cache.Close()
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
