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

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/wastewise/binreminder/internal/config"
	"github.com/wastewise/binreminder/internal/db"
	"github.com/wastewise/binreminder/internal/handler"
	"github.com/wastewise/binreminder/internal/job"
	"github.com/wastewise/binreminder/internal/middleware"
	"github.com/wastewise/binreminder/internal/notify"
	"github.com/wastewise/binreminder/internal/repo"
	"github.com/wastewise/binreminder/internal/schedule"
	"github.com/wastewise/binreminder/internal/service"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "binreminder",
		Short: "binreminder backend server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run binreminder server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))

			conn, err := db.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			if err := db.ApplyMigrations(conn); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			return runServer(cfg, conn)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func runServer(cfg *config.Config, conn *sql.DB) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("reminder_spec", cfg.Reminder.CronSpec),
		zap.String("reminder_tz", cfg.Reminder.Timezone),
	)

	userRepo := repo.NewUserRepo(conn)
	binRepo := repo.NewBinRepo(conn)
	codeRepo := repo.NewVerificationCodeRepo(conn)
	holidayRepo := repo.NewHolidayRepo(conn)
	countryRepo := repo.NewCountryRepo(conn)

	codeSender := service.NewCodeSender(cfg.Mail)
	otpService := service.NewOtpService(codeRepo, codeSender)
	authService := service.NewAuthService(
		userRepo,
		otpService,
		[]byte(cfg.JWTSecret),
		time.Minute*time.Duration(cfg.AccessTTLMinutes),
		time.Hour*time.Duration(cfg.RefreshTTLHours),
		cfg.AdminToken,
	)
	userService := service.NewUserService(userRepo)
	holidayService := service.NewHolidayService(holidayRepo, countryRepo)
	binService := service.NewBinService(binRepo, holidayService)

	loc := time.Local
	if cfg.Reminder.Timezone != "" {
		parsed, err := time.LoadLocation(cfg.Reminder.Timezone)
		if err != nil {
			return fmt.Errorf("load reminder timezone: %w", err)
		}
		loc = parsed
	}
	notifier := notify.NewFCMNotifier(cfg.Push)
	reminderJob := job.NewCollectionReminderJob(binRepo, userRepo, notifier, loc)
	scheduler := schedule.NewCronScheduler(loc)
	if err := scheduler.AddJob(reminderJob, cfg.Reminder.CronSpec); err != nil {
		return fmt.Errorf("schedule reminder job: %w", err)
	}

	deps := handler.RouterDeps{
		Auth:           handler.NewAuthHandler(authService),
		Bins:           handler.NewBinHandler(binService, userService),
		Users:          handler.NewUserHandler(userService),
		Countries:      handler.NewCountryHandler(holidayService),
		JWTSecret:      []byte(cfg.JWTSecret),
		AuthRateWindow: time.Second * time.Duration(cfg.RateLimit.AuthWindowSeconds),
		CodeRateWindow: time.Second * time.Duration(cfg.RateLimit.CodeWindowSeconds),
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(cfg.CORSOrigins),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}
	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler.Start(ctx)
	defer scheduler.Stop()

	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}
