package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"authcore/internal/config"
	"authcore/internal/domain"
	"authcore/internal/notifier"
	"authcore/internal/observability/logging"
	"authcore/internal/observability/metrics"
	impl "authcore/internal/service/impl"
	"authcore/internal/store"
	"authcore/internal/sweeper"
	httpx "authcore/internal/transport/http"
	"authcore/pkg/db"
)

func main() {
	_ = godotenv.Load()

	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "dev"
	}

	logger := logging.NewLogger(logging.Config{
		ServiceName: "authcore",
		Environment: env,
		Level:       os.Getenv("LOG_LEVEL"),
	})
	slog.SetDefault(logger)

	logger.Info("starting service")

	cfg := config.Load()
	metrics.MustRegister("authcore")

	gdb, err := db.OpenGorm(db.Config{DSN: cfg.DatabaseURL, LogSQL: cfg.LogSQL})
	if err != nil {
		logger.Error("gorm open", "error", err)
		os.Exit(1)
	}

	st := store.New(gdb)
	if err := st.AutoMigrate(
		&domain.OtpSession{},
		&domain.PasskeyChallenge{},
		&domain.PushAuthRequest{},
		&domain.AuthenticationMethod{},
	); err != nil {
		logger.Error("auto-migrate", "error", err)
		os.Exit(1)
	}

	codes := impl.NewCryptoCodeSource()
	hasher := impl.NewCodeHasherArgon2id()
	notify := notifier.NewLogNotifier()

	methodSvc := impl.NewMethodService(st)
	otpSvc := impl.NewOtpService(st, methodSvc, hasher, notify, codes, impl.OtpConfig{
		TTL:          cfg.OtpTTL,
		MaxAttempts:  cfg.OtpMaxAttempts,
		ResendWindow: cfg.OtpResendWindow,
		CodeLength:   cfg.OtpCodeLength,
	})
	passkeySvc := impl.NewPasskeyService(st, methodSvc, codes, impl.PasskeyConfig{
		TTL:           cfg.PasskeyTTL,
		ChallengeSize: impl.DefaultPasskeyConfig().ChallengeSize,
	})
	pushSvc := impl.NewPushService(st, notify, codes, impl.PushConfig{
		TTL:           cfg.PushTTL,
		ChallengeSize: impl.DefaultPushConfig().ChallengeSize,
		MaxPending:    cfg.PushMaxPending,
	})
	totpSvc := impl.NewTotpService(impl.TotpConfig{Issuer: cfg.TotpIssuer}, st)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sw := sweeper.New(sweeper.Config{
		Interval:  cfg.SweepInterval,
		Retention: cfg.Retention,
	}, st, pushSvc)
	go sw.Run(ctx)

	routerCfg := httpx.DefaultRouterConfig()
	routerCfg.RateLimit = cfg.RateLimit
	routerCfg.RequestTimeout = cfg.RequestTimeout
	routerCfg.CORSOrigins = strings.Split(cfg.CORSOrigins, ",")
	handler := httpx.NewRouter(routerCfg, otpSvc, passkeySvc, pushSvc, methodSvc, totpSvc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", "error", err)
		}
	}()

	logger.Info("authcore listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
	logger.Info("stopped")
}
