package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gestao-marketplace/internal/app"
	"gestao-marketplace/internal/core/config"
	"gestao-marketplace/internal/core/database"
	"gestao-marketplace/internal/domain"
)

// 运维命令：建表、手工建用户、检查下游连通性
func main() {
	_ = godotenv.Load()
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgPath string
	root := &cobra.Command{
		Use:          "marketplace-admin",
		Short:        "Operational commands for the marketplace backend",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (default $CONFIG_PATH or ./configs/config.local.yaml)")

	root.AddCommand(
		&cobra.Command{
			Use:   "migrate",
			Short: "Create or update the users and products tables",
			RunE: func(cmd *cobra.Command, _ []string) error {
				// 只需要数据库，不初始化存储和缓存
				cfg, err := config.Load(cfgPath)
				if err != nil {
					return err
				}
				log, cleanup := app.NewLogger(cfg)
				defer cleanup()
				db, err := app.OpenDB(cfg, log)
				if err != nil {
					return fmt.Errorf("db open: %w", err)
				}
				if sqlDB, err := db.DB(); err == nil {
					defer sqlDB.Close()
				}
				if err := database.AutoMigrate(db); err != nil {
					return err
				}
				log.Info("automigrate done", zap.String("driver", cfg.DB.Driver))
				return nil
			},
		},
		newCreateUserCmd(&cfgPath),
		&cobra.Command{
			Use:   "check",
			Short: "Ping database and cache",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withApp(cmd.Context(), cfgPath, func(a *app.App) error {
					sqlDB, err := a.DB.DB()
					if err != nil {
						return err
					}
					if err := sqlDB.PingContext(cmd.Context()); err != nil {
						return fmt.Errorf("db: %w", err)
					}
					if err := a.Cache.Ping(cmd.Context()); err != nil {
						return fmt.Errorf("redis: %w", err)
					}
					fmt.Fprintln(cmd.OutOrStdout(), "ok")
					return nil
				})
			},
		},
	)
	return root
}

func newCreateUserCmd(cfgPath *string) *cobra.Command {
	var in domain.CreateUserInput
	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Register a user without going through the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), *cfgPath, func(a *app.App) error {
				u, err := a.Users.Create(cmd.Context(), in)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), u.ID)
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.Name, "name", "", "display name")
	f.StringVar(&in.Email, "email", "", "login email")
	f.StringVar(&in.Phone, "phone", "", "phone number")
	f.StringVar(&in.Password, "password", "", "initial password")
	for _, name := range []string{"name", "email", "phone", "password"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func withApp(ctx context.Context, cfgPath string, fn func(a *app.App) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	log, cleanup := app.NewLogger(cfg)
	defer cleanup()

	db, err := app.OpenDB(cfg, log)
	if err != nil {
		return fmt.Errorf("db open: %w", err)
	}
	a, err := app.New(ctx, cfg, log, db)
	if err != nil {
		if sqlDB, e := db.DB(); e == nil {
			_ = sqlDB.Close()
		}
		return err
	}
	defer a.Close()

	if err := fn(a); err != nil {
		log.Error("command failed", zap.Error(err))
		return err
	}
	return nil
}
