package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-event-attendance/internal/api"
	"github.com/sanosuguru/go-event-attendance/internal/api/handler"
	"github.com/sanosuguru/go-event-attendance/internal/api/middleware"
	"github.com/sanosuguru/go-event-attendance/internal/application"
	"github.com/sanosuguru/go-event-attendance/internal/config"
	"github.com/sanosuguru/go-event-attendance/internal/infrastructure/postgres"
	redisinfra "github.com/sanosuguru/go-event-attendance/internal/infrastructure/redis"
	"github.com/sanosuguru/go-event-attendance/internal/pkg/logger"
	"github.com/sanosuguru/go-event-attendance/internal/pkg/metrics"
	"github.com/sanosuguru/go-event-attendance/internal/worker"
)

func main() {
	cfg := config.Load()

	logger.Init(cfg.App.Env)
	defer func() { _ = logger.Sync() }()

	logger.Info("起動します",
		zap.String("app", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("env", cfg.App.Env),
	)

	db, err := postgres.NewConnection(context.Background(), &cfg.Database)
	if err != nil {
		logger.Fatal("データベース接続エラー", zap.Error(err))
	}
	defer db.Close()

	if err := postgres.RunMigrations(db.DB, cfg.Migrations); err != nil {
		logger.Fatal("マイグレーションエラー", zap.Error(err))
	}

	// キャッシュはベストエフォートなので、Redis が落ちていても起動は続ける
	redisClient := redisinfra.NewClient(&cfg.Redis)
	defer redisClient.Close()
	pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	if err := redisinfra.Ping(pingCtx, redisClient); err != nil {
		logger.Warn("Redis に接続できません。キャッシュなしで動作します", zap.Error(err))
	}
	cancel()

	m := metrics.Init()

	e, collector := newServer(cfg, db, redisClient, m)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go collector.Start(ctx)

	go func() {
		addr := ":" + cfg.Server.Port
		logger.Info("サーバー起動", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("サーバー起動エラー", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("サーバーをシャットダウンしています...")

	collector.Stop()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("サーバーシャットダウンエラー", zap.Error(err))
		return
	}

	logger.Info("サーバーが正常にシャットダウンしました")
}

// newServer は依存関係を組み立てて Echo と件数ゲージのワーカーを返す
func newServer(cfg *config.Config, db *sqlx.DB, redisClient *redis.Client, m *metrics.Metrics) (*echo.Echo, *worker.EntityGaugeCollector) {
	cache := redisinfra.NewCache(redisClient, cfg.Cache.DefaultTTL)
	ttl := application.CacheTTL{
		Default:    cfg.Cache.DefaultTTL,
		Statistics: cfg.Cache.StatisticsTTL,
		Attendance: cfg.Cache.AttendanceTTL,
	}

	eventRepo := postgres.NewEventRepository(db)
	participantRepo := postgres.NewParticipantRepository(db)
	attendanceRepo := postgres.NewAttendanceRepository(db)
	txManager := postgres.NewTxManager(db)

	eventService := application.NewEventService(eventRepo, attendanceRepo, cache, ttl)
	participantService := application.NewParticipantService(participantRepo, attendanceRepo, cache, ttl)
	attendanceService := application.NewAttendanceService(txManager, eventRepo, participantRepo, attendanceRepo, cache, ttl, m)

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler

	middleware.SetupMiddleware(e, cfg.Server)
	e.Use(middleware.PrometheusMiddleware(m))

	handler.RegisterRoutes(e, handler.Handlers{
		Event:       handler.NewEventHandler(eventService),
		Participant: handler.NewParticipantHandler(participantService),
		Attendance:  handler.NewAttendanceHandler(attendanceService),
		Health:      handler.NewHealthHandler(db, cache, cfg.App.Version),
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), middleware.MetricsBasicAuth(cfg.Metrics))

	collector := worker.NewEntityGaugeCollector(m, cfg.Worker.GaugeInterval,
		worker.CountSource{Entity: "events", Counter: eventRepo},
		worker.CountSource{Entity: "participants", Counter: participantRepo},
		worker.CountSource{Entity: "attendances", Counter: attendanceRepo},
	)
	return e, collector
}
