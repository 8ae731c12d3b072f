package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/jhcsc/attend-api/internal/config"
	"github.com/jhcsc/attend-api/internal/handler"
	attendanceHandler "github.com/jhcsc/attend-api/internal/handler/attendance"
	authHandler "github.com/jhcsc/attend-api/internal/handler/auth"
	dispatchHandler "github.com/jhcsc/attend-api/internal/handler/dispatch"
	eventHandler "github.com/jhcsc/attend-api/internal/handler/event"
	sessionHandler "github.com/jhcsc/attend-api/internal/handler/session"
	studentHandler "github.com/jhcsc/attend-api/internal/handler/student"
	"github.com/jhcsc/attend-api/internal/mailer"
	"github.com/jhcsc/attend-api/internal/middleware"
	"github.com/jhcsc/attend-api/internal/repository/postgres"
	"github.com/jhcsc/attend-api/internal/router"
	attendanceService "github.com/jhcsc/attend-api/internal/service/attendance"
	authService "github.com/jhcsc/attend-api/internal/service/auth"
	"github.com/jhcsc/attend-api/internal/service/credential"
	dispatchService "github.com/jhcsc/attend-api/internal/service/dispatch"
	eventService "github.com/jhcsc/attend-api/internal/service/event"
	sessionService "github.com/jhcsc/attend-api/internal/service/session"
	studentService "github.com/jhcsc/attend-api/internal/service/student"
	"github.com/jhcsc/attend-api/pkg/logger"
	"github.com/jhcsc/attend-api/pkg/messaging"
	"github.com/jhcsc/attend-api/pkg/messaging/redis"
	"github.com/jhcsc/attend-api/pkg/metrics"
	"github.com/jhcsc/attend-api/pkg/security"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	baseLogger := logger.NewLogger(nil).Zerolog()

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	appMetrics := metrics.NewMetrics(prometheus.DefaultRegisterer, "attend", "api")

	eventRepo := postgres.NewEventRepository(db)
	studentRepo := postgres.NewStudentRepository(db)
	attendanceRepo := postgres.NewAttendanceRepository(db, appMetrics)
	operatorRepo := postgres.NewOperatorRepository(db)

	// The broker is optional: without Redis the API still runs, it just
	// stops publishing submission events.
	var broker messaging.Broker
	redisLogger := baseLogger.With().Str("component", "redis").Logger()
	broker, err = redis.NewRedisBroker(redis.Config{URL: redisURL(cfg.Redis)}, &redisLogger)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, submission events disabled")
		broker = nil
	} else {
		defer broker.Close()
	}

	tokenSource := credential.NewStaticSource(cfg.Mailer.Token, tokenExpiry(cfg.Mailer.TokenExpiry))
	credBroker := credential.NewBroker(tokenSource, baseLogger.With().Str("component", "credential").Logger())
	if !credBroker.Authenticate(context.Background()) {
		log.Warn().Msg("mailer credential not available, dispatch will fail until one is supplied")
	}

	smtpMailer := mailer.NewSMTPMailer(mailer.SMTPConfig{
		Host:     cfg.Mailer.Host,
		Port:     cfg.Mailer.Port,
		Username: cfg.Mailer.Username,
		From:     cfg.Mailer.From,
	})

	authSvc := authService.NewService(operatorRepo, security.NewBcryptHasher(0), authService.Config{
		Secret:   cfg.JWT.Secret,
		TokenTTL: time.Duration(cfg.JWT.ExpiryHours) * time.Hour,
	}, baseLogger.With().Str("component", "auth").Logger())
	eventSvc := eventService.NewService(eventRepo, baseLogger.With().Str("component", "event").Logger())
	studentSvc := studentService.NewService(studentRepo, baseLogger.With().Str("component", "student").Logger())
	attendanceSvc := attendanceService.NewService(eventRepo, studentRepo, attendanceRepo, appMetrics,
		baseLogger.With().Str("component", "attendance").Logger())
	dispatchSvc := dispatchService.NewService(smtpMailer, credBroker, dispatchService.Config{
		SendInterval:  cfg.Dispatch.SendInterval,
		ProgressEvery: cfg.Dispatch.ProgressEvery,
		From:          cfg.Mailer.From,
	}, appMetrics, baseLogger.With().Str("component", "dispatch").Logger())
	sessionSvc := sessionService.NewService(eventRepo, studentRepo, attendanceSvc, dispatchSvc, broker,
		baseLogger.With().Str("component", "session").Logger())

	authMiddleware := middleware.NewAuthMiddleware(authSvc)

	r := router.NewRouter(
		authMiddleware,
		authHandler.NewHandler(authSvc),
		eventHandler.NewHandler(eventSvc),
		studentHandler.NewHandler(studentSvc),
		sessionHandler.NewHandler(sessionSvc),
		dispatchHandler.NewHandler(dispatchSvc, credBroker),
		attendanceHandler.NewHandler(attendanceSvc, sessionSvc),
		handler.NewHandler(db),
		router.RouterConfig{
			RateLimit:     100,
			RateBurst:     200,
			CORSConfig:    middleware.DefaultCORSConfig(),
			MetricsPrefix: "attend_api",
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	sessionSvc.Wait()
	log.Info().Msg("server stopped")
}

func redisURL(cfg config.RedisConfig) string {
	if cfg.Password != "" {
		return fmt.Sprintf("redis://:%s@%s/%d", cfg.Password, cfg.Addr, cfg.DB)
	}
	return fmt.Sprintf("redis://%s/%d", cfg.Addr, cfg.DB)
}

func tokenExpiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return time.Now().Add(ttl)
}
