package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "vet-appointments/docs"
	memdir "vet-appointments/internal/adapters/directory/memory"
	"vet-appointments/internal/domain/accounts"
	"vet-appointments/internal/domain/agenda"
	"vet-appointments/internal/domain/appointments"
	"vet-appointments/internal/middleware"
	"vet-appointments/internal/platform/logger"
	"vet-appointments/internal/ports/auth"
)

type Options struct {
	AuthVerifier  auth.AuthVerifier  // puede ser nil (modo dev)
	Authenticator auth.Authenticator // nil => /auth/* responde 503

	// Opcional: si no viene, Directorio in-memory.
	Directory appointments.Directory

	Logger   logger.Logger
	Fallback agenda.FallbackStrategy

	// Registry de métricas; nil => uno propio (evita colisiones en tests).
	Metrics *prometheus.Registry

	// Inactividad tras la cual se descarta la sesión de agenda; 0 => default.
	SessionIdleTTL time.Duration

	Now func() time.Time
}

func NewRouter(opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.Directory == nil {
		opts.Directory = memdir.NewDirectory()
	}
	if opts.Metrics == nil {
		opts.Metrics = prometheus.NewRegistry()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog(opts.Logger))
	r.Use(middleware.Recover(opts.Logger))

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(opts.Metrics, promhttp.HandlerOpts{}))
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// Services por módulo
	svc := appointments.NewService(opts.Directory)
	registry := agenda.NewRegistry(svc, agenda.RegistryOptions{
		Fallback: opts.Fallback,
		Logger:   opts.Logger,
		Metrics:  agenda.NewMetrics(opts.Metrics),
		Now:      opts.Now,
		IdleTTL:  opts.SessionIdleTTL,
	})

	// Rutas por módulo
	accounts.RegisterRoutes(r, opts.Authenticator, registry)
	appointments.RegisterRoutes(r, svc)
	agenda.RegisterRoutes(r, agenda.NewHandler(registry))

	return r
}
