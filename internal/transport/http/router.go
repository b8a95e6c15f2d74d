package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"authcore/internal/observability/middleware"
	"authcore/internal/service"
)

type RouterConfig struct {
	CORSOrigins    []string
	RateLimit      int
	RateLimitEvery time.Duration
	RequestTimeout time.Duration
}

func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		RateLimit:      100,
		RateLimitEvery: time.Minute,
		RequestTimeout: 30 * time.Second,
	}
}

func NewRouter(
	cfg RouterConfig,
	otp service.OtpService,
	passkey service.PasskeyService,
	push service.PushService,
	methods service.MethodService,
	totp service.TotpService,
) http.Handler {
	h := &handlers{otp: otp, passkey: passkey, push: push, methods: methods, totp: totp}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(cfg.RequestTimeout))
	r.Use(httprate.LimitByIP(cfg.RateLimit, cfg.RateLimitEvery))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   originsIfSet(cfg.CORSOrigins),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.WithRequestAndTrace)
	r.Use(middleware.WithMetrics)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Route("/otp", func(r chi.Router) {
			r.Post("/issue", h.otpIssue)
			r.Post("/verify", h.otpVerify)
		})
		r.Route("/passkey", func(r chi.Router) {
			r.Post("/challenge", h.passkeyChallenge)
			r.Post("/consume", h.passkeyConsume)
		})
		r.Route("/push", func(r chi.Router) {
			r.Post("/request", h.pushCreate)
			r.Post("/respond", h.pushRespond)
			r.Post("/cancel", h.pushCancel)
			r.Get("/{id}", h.pushPoll)
		})
		r.Route("/methods", func(r chi.Router) {
			r.Post("/", h.methodRegister)
			r.Get("/", h.methodList)
			r.Post("/{id}/enabled", h.methodSetEnabled)
		})
		r.Route("/totp", func(r chi.Router) {
			r.Post("/provision", h.totpProvision)
			r.Post("/verify", h.totpVerify)
		})
	})

	return r
}

func originsIfSet(origins []string) []string {
	cleaned := make([]string, 0, len(origins))
	for _, o := range origins {
		if o = strings.TrimSpace(o); o != "" {
			cleaned = append(cleaned, o)
		}
	}
	if len(cleaned) == 0 {
		return []string{"*"}
	}
	return cleaned
}
