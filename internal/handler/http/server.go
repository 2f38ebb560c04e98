package http

import (
	"VLINKS-Backend/internal/metrics"
	"VLINKS-Backend/internal/repository"
	"VLINKS-Backend/internal/service"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	"go.uber.org/zap"
)

const defaultWebhookBodyLimit = 1 << 20

// Options параметры HTTP слоя
type Options struct {
	Env              string
	Version          string
	CORSOrigins      []string
	WebhookRateLimit string // формат ulule/limiter, например "120-M"
	WebhookMaxBody   int64
	SkipOrphans      bool
	// Clock подменяет время для редиректов и атрибуции; nil означает time.Now
	Clock func() time.Time
}

// Server HTTP сервер с обработчиками
type Server struct {
	redirectHandler  *RedirectHandler
	webhookHandler   *WebhookHandler
	videosHandler    *VideosHandler
	linksHandler     *LinksHandler
	templatesHandler *TemplatesHandler
	domainsHandler   *DomainsHandler
	settingsHandler  *SettingsHandler
	dashboardHandler *DashboardHandler
	healthHandler    *HealthHandler
	webhookLimiter   func(http.Handler) http.Handler
	corsOrigins      []string
	log              *zap.Logger
}

// NewServer создает новый HTTP сервер. links разрешает ссылки для редиректа
// (обычно кэш поверх storage), invalidator сбрасывает кэш при изменениях;
// оба могут быть nil.
func NewServer(
	storage repository.Storage,
	links service.LinkResolver,
	invalidator service.LinkCacheInvalidator,
	clicks ClickQueue,
	log *zap.Logger,
	opts Options,
) (*Server, error) {
	if links == nil {
		links = storage
	}
	if opts.WebhookMaxBody <= 0 {
		opts.WebhookMaxBody = defaultWebhookBodyLimit
	}

	resp := newResponder(log, opts.Env)

	redirects := service.NewRedirectService(links)
	matcher := service.NewMatcher(storage, links, log, opts.SkipOrphans)
	dashboard := service.NewDashboardService(storage)
	if opts.Clock != nil {
		redirects.WithClock(opts.Clock)
		matcher.WithClock(opts.Clock)
		dashboard.WithClock(opts.Clock)
	}

	webhookLimiter, err := newRateLimiter(opts.WebhookRateLimit, resp)
	if err != nil {
		return nil, err
	}

	return &Server{
		redirectHandler:  NewRedirectHandler(redirects, clicks, resp),
		webhookHandler:   NewWebhookHandler(matcher, opts.WebhookMaxBody, resp),
		videosHandler:    NewVideosHandler(service.NewVideoService(storage, invalidator), resp),
		linksHandler:     NewLinksHandler(service.NewLinkService(storage, invalidator), resp),
		templatesHandler: NewTemplatesHandler(service.NewTemplateService(storage), resp),
		domainsHandler:   NewDomainsHandler(service.NewDomainService(storage), resp),
		settingsHandler:  NewSettingsHandler(service.NewSettingsService(storage), resp),
		dashboardHandler: NewDashboardHandler(dashboard, resp),
		healthHandler:    NewHealthHandler(storage, clicks, opts.Version, resp),
		webhookLimiter:   webhookLimiter,
		corsOrigins:      opts.CORSOrigins,
		log:              log,
	}, nil
}

// newRateLimiter ограничивает частоту webhook по IP; пустой формат отключает лимит
func newRateLimiter(formatted string, resp responder) (func(http.Handler) http.Handler, error) {
	if formatted == "" {
		return func(next http.Handler) http.Handler { return next }, nil
	}

	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook rate limit %q: %w", formatted, err)
	}

	mw := stdlib.NewMiddleware(
		limiter.New(memory.NewStore(), rate),
		stdlib.WithLimitReachedHandler(func(w http.ResponseWriter, r *http.Request) {
			resp.log.Warn("webhook rate limit reached", zap.String("remote_addr", r.RemoteAddr))
			resp.writeError(w, "Too many requests", http.StatusTooManyRequests)
		}),
	)
	return mw.Handler, nil
}

// SetupRoutes настраивает маршруты
func (s *Server) SetupRoutes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID", "X-Webhook-Secret"},
		MaxAge:         300,
	}))

	// Health checks и метрики
	r.Get("/health", s.healthHandler.Health)
	r.Get("/ready", s.healthHandler.Ready)
	r.Handle("/metrics", promhttp.Handler())

	// Swagger документация
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// Редиректы по ссылкам из описаний видео
	r.Get("/go/{videoSlug}/{linkLabel}", s.redirectHandler.HandleRedirect)

	r.Route("/api", func(r chi.Router) {
		r.With(s.webhookLimiter).Post("/webhooks/ghl", s.webhookHandler.HandleGHL)

		r.Route("/videos", func(r chi.Router) {
			r.Get("/", s.videosHandler.ListVideos)
			r.Post("/", s.videosHandler.CreateVideo)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.videosHandler.GetVideo)
				r.Put("/", s.videosHandler.UpdateVideo)
				r.Delete("/", s.videosHandler.ArchiveVideo)

				r.Get("/links", s.linksHandler.ListLinks)
				r.Post("/links", s.linksHandler.CreateLink)
				r.Post("/apply-templates", s.templatesHandler.ApplyTemplates)
				r.Get("/bookings", s.dashboardHandler.VideoBookings)
				r.Get("/clicks", s.dashboardHandler.VideoClicks)
			})
		})

		r.Route("/links/{id}", func(r chi.Router) {
			r.Put("/", s.linksHandler.UpdateLink)
			r.Delete("/", s.linksHandler.DeactivateLink)
			r.Delete("/clicks", s.linksHandler.ResetClicks)
		})

		r.Route("/templates", func(r chi.Router) {
			r.Get("/", s.templatesHandler.ListTemplates)
			r.Post("/", s.templatesHandler.CreateTemplate)
			r.Put("/{id}", s.templatesHandler.UpdateTemplate)
			r.Delete("/{id}", s.templatesHandler.DeleteTemplate)
		})

		r.Route("/domains", func(r chi.Router) {
			r.Get("/", s.domainsHandler.ListDomains)
			r.Post("/", s.domainsHandler.CreateDomain)
			r.Put("/{id}", s.domainsHandler.UpdateDomain)
			r.Delete("/{id}", s.domainsHandler.DeleteDomain)
		})

		r.Get("/settings", s.settingsHandler.GetSettings)
		r.Put("/settings", s.settingsHandler.UpdateSettings)

		r.Get("/bookings/recent", s.dashboardHandler.RecentBookings)

		r.Get("/dashboard/summary", s.dashboardHandler.Summary)
		r.Get("/dashboard/clicks-over-time", s.dashboardHandler.ClicksOverTime)

		r.Get("/analytics/devices", s.dashboardHandler.Devices)
		r.Get("/analytics/geo", s.dashboardHandler.Geo)
	})

	return r
}
