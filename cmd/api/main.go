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
	"gorm.io/gorm"

	"staffhub/internal/core/auth"
	"staffhub/internal/core/cache"
	"staffhub/internal/core/config"
	"staffhub/internal/core/database"
	"staffhub/internal/core/logger"
	"staffhub/internal/core/server"
	"staffhub/internal/domain"
	"staffhub/internal/mailer"
	"staffhub/internal/repo"
	"staffhub/internal/service"
	"staffhub/internal/storage"
	"staffhub/internal/transport/http/handler"
	"staffhub/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := newLogger(cfg)
	defer cleanup()

	// 标准库 log 和 gin 的调试输出统一进 zap
	defer logger.RedirectStdLog(log, zapcore.WarnLevel)()
	if cfg.App.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	gin.DefaultWriter = logger.ToWriter(log, zapcore.DebugLevel)

	// 数据库（失败会直接 Fatal）
	db := mustOpenDB(cfg, log)
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))

	if cfg.DB.AutoMigrate {
		if err := db.AutoMigrate(&domain.Admin{}, &domain.User{}); err != nil {
			log.Fatal("automigrate failed", zap.Error(err))
		}
		log.Info("automigrate done")
	}

	// JWT 会话
	jwter := &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    time.Duration(cfg.JWT.SessionTTLHour) * time.Hour,
	}

	// redis 可选：不配就直读 DB
	var cc *cache.Cache
	if cfg.Redis.Addr != "" {
		cc = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		log.Info("redis connected", zap.String("addr", cfg.Redis.Addr))
	}

	// 对象存储（头像必需）
	store, err := storage.NewS3Store(context.Background(), cfg.S3, log)
	if err != nil {
		log.Fatal("object storage init", zap.Error(err))
	}

	brevo := mailer.NewBrevo(cfg.Mail.APIKey, cfg.Mail.SenderName, cfg.Mail.SenderEmail, log)

	admins := repo.NewAdminRepo(db)
	users := repo.NewUserRepo(db)

	adminSvc := service.NewAdminService(admins, jwter, brevo, log, service.AdminServiceOpts{
		ResetTTL:    time.Duration(cfg.JWT.ResetTTLMin) * time.Minute,
		FrontendURL: cfg.App.FrontendURL,
	})
	userSvc := service.NewUserService(users, store, brevo, log, service.UserServiceOpts{
		TempPasswordLen: cfg.JWT.TempPasswordLen,
	})

	var origins []string
	if cfg.App.FrontendURL != "" {
		origins = []string{cfg.App.FrontendURL}
	}
	r := router.NewAPIEngine(router.Deps{
		Log:         log,
		JWTer:       jwter,
		Admins:      admins,
		Admin:       handler.NewAdminHandler(adminSvc),
		Users:       handler.NewUserHandler(userSvc, cc),
		CORSOrigins: origins,
	})

	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)
	if el, err := logger.ToStdLogger(log, zapcore.ErrorLevel); err == nil {
		srv.ErrorLog = el
	}

	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("staffhub api starting",
		zap.String("addr", addr),
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("api", baseURL+"/api"),
	)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("staffhub api start FAILED", zap.Error(err))
		}
	}()
	log.Info("staffhub api started SUCCESS")

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	log.Info("staffhub api stopped gracefully")
}

func newLogger(cfg *config.Config) (*zap.Logger, func()) {
	if cfg.Log.File != "" {
		return logger.NewWithRotate(cfg.Log.Level, cfg.Log.JSON, cfg.Log.File, 100, 7, 14, true)
	}
	return logger.New(cfg.Log.Level, cfg.Log.JSON)
}

func mustOpenDB(cfg *config.Config, l *zap.Logger) *gorm.DB {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
	})
	if err != nil {
		l.Fatal("db open", zap.Error(err))
	}
	return db
}
