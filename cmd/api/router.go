package main

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"net/http/pprof"
	"slices"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/noah-isme/ytf-quote/internal/catalog"
	"github.com/noah-isme/ytf-quote/internal/common"
	"github.com/noah-isme/ytf-quote/internal/config"
	"github.com/noah-isme/ytf-quote/internal/health"
	"github.com/noah-isme/ytf-quote/internal/obs"
	"github.com/noah-isme/ytf-quote/internal/quotation"
	"github.com/noah-isme/ytf-quote/internal/ratelimit"
	"github.com/noah-isme/ytf-quote/internal/security"
)

type routerDeps struct {
	Config         *config.Config
	Logger         zerolog.Logger
	Catalog        *catalog.Service
	Quotations     *quotation.Service
	HTTPMetrics    *obs.HTTPMetrics
	TracingEnabled bool
	// Metrics overrides the /metrics handler; tests pass a handler bound to a private registry.
	Metrics http.Handler
}

func newRouter(d routerDeps) http.Handler {
	cfg := d.Config
	logger := d.Logger

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if cfg.TrustForwardHeader {
		r.Use(middleware.RealIP)
	}
	r.Use(middleware.Recoverer)
	r.Use(obs.RoutePatternMiddleware)
	if d.TracingEnabled {
		r.Use(obs.TracingMiddleware)
	}
	if d.HTTPMetrics != nil {
		r.Use(obs.HTTPObs{Metrics: d.HTTPMetrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Use(security.Headers{Enable: cfg.SecurityHeadersEnabled, EnableHSTS: cfg.AppEnv == "production"}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Idempotency-Key"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	if cfg.MetricsEnabled {
		metrics := d.Metrics
		if metrics == nil {
			metrics = promhttp.Handler()
		}
		r.Handle("/metrics", metrics)
	}
	if cfg.PprofEnabled {
		if strings.TrimSpace(cfg.PprofUser) == "" || strings.TrimSpace(cfg.PprofPass) == "" {
			logger.Warn().Msg("pprof enabled without basic auth credentials; not mounting /debug/pprof")
		} else {
			r.Mount("/debug/pprof", protectPprof(newPprofMux(), cfg.PprofUser, cfg.PprofPass))
		}
	}

	healthHandler := health.Handler{
		Checkers: []health.Checker{
			health.CheckFunc{Label: "catalog", Fn: catalogCheck(d.Catalog)},
			health.CheckFunc{Label: "drafts", Fn: draftCheck(d.Quotations)},
		},
		Timeout: 500 * time.Millisecond,
	}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	catalogHandler := catalog.NewHandler(catalog.HandlerConfig{Service: d.Catalog})
	quoteHandler := quotation.NewHandler(quotation.HandlerConfig{Service: d.Quotations})
	idem := common.NewIdem(10 * time.Minute)
	limiter := ratelimit.Handler{
		Limiter: ratelimit.NewMemoryLimiter(cfg.RateLimitPerMinute, cfg.TrustForwardHeader),
		OnError: func(err error) { logger.Warn().Err(err).Msg("rate limiter unavailable") },
	}

	r.Route("/api/v1", func(v chi.Router) {
		v.Use(security.BodyLimit{Max: cfg.BodyLimitBytes}.Middleware)
		if cfg.RateLimitPerMinute > 0 {
			v.Use(limiter.Middleware)
		}

		v.Route("/catalog", func(c chi.Router) {
			c.Get("/typefaces", catalogHandler.Typefaces)
			c.Get("/business-sizes", catalogHandler.BusinessSizes)
			c.Get("/license-types", catalogHandler.LicenseTypes)
			c.Get("/license-types/{id}/usage-options", catalogHandler.UsageOptions)
		})

		v.Route("/quotations", func(q chi.Router) {
			q.With(idem.Middleware).Post("/", quoteHandler.Create)
			q.Get("/{id}", quoteHandler.Get)
			q.Get("/{id}/snapshot", quoteHandler.Snapshot)
			q.With(idem.Middleware).Post("/{id}/items", quoteHandler.AddItem)
			q.Patch("/{id}/items/{itemId}", quoteHandler.UpdateItem)
			q.Delete("/{id}/items/{itemId}", quoteHandler.RemoveItem)
			q.Put("/{id}/business-size", quoteHandler.ChangeBusinessSize)
			q.Put("/{id}/client", quoteHandler.ChangeClient)
			q.Post("/{id}/validate", quoteHandler.Validate)
		})

		v.Post("/quotes/price", quoteHandler.Price)
		v.Post("/quotes/totals", quoteHandler.Totals)
	})

	return r
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 || slices.Contains(cfg.CORSAllowedOrigins, "*") {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}

func catalogCheck(svc *catalog.Service) func(context.Context) error {
	return func(context.Context) error {
		if svc == nil || len(svc.ListTypefaces()) == 0 {
			return errors.New("catalog is empty")
		}
		return nil
	}
}

func draftCheck(svc *quotation.Service) func(context.Context) error {
	return func(ctx context.Context) error {
		if svc == nil {
			return errors.New("quotation service not configured")
		}
		return svc.CheckStore(ctx)
	}
}

func newPprofMux() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", pprof.Index)
	mux.HandleFunc("/cmdline", pprof.Cmdline)
	mux.HandleFunc("/profile", pprof.Profile)
	mux.HandleFunc("/symbol", pprof.Symbol)
	mux.HandleFunc("/trace", pprof.Trace)
	mux.Handle("/allocs", pprof.Handler("allocs"))
	mux.Handle("/goroutine", pprof.Handler("goroutine"))
	mux.Handle("/heap", pprof.Handler("heap"))
	mux.Handle("/mutex", pprof.Handler("mutex"))
	return mux
}

func protectPprof(handler http.Handler, user, pass string) http.Handler {
	user = strings.TrimSpace(user)
	pass = strings.TrimSpace(pass)
	if user == "" || pass == "" {
		return http.NotFoundHandler()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || subtle.ConstantTimeCompare([]byte(u), []byte(user)) != 1 || subtle.ConstantTimeCompare([]byte(p), []byte(pass)) != 1 {
			w.Header().Set("WWW-Authenticate", "Basic realm=restricted")
			http.Error(w, "unauthorised", http.StatusUnauthorized)
			return
		}
		handler.ServeHTTP(w, r)
	})
}
