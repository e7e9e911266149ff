package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/merlotworks/wineclub-backend/api/controllers"
	"github.com/merlotworks/wineclub-backend/api/middleware"
	"github.com/merlotworks/wineclub-backend/internal/auth"
	"github.com/merlotworks/wineclub-backend/internal/catalog"
	"github.com/merlotworks/wineclub-backend/internal/dashboard"
	"github.com/merlotworks/wineclub-backend/internal/fulfillment"
	"github.com/merlotworks/wineclub-backend/internal/members"
	"github.com/merlotworks/wineclub-backend/internal/plans"
	"github.com/merlotworks/wineclub-backend/internal/preferences"
	"github.com/merlotworks/wineclub-backend/pkg/config"
	"github.com/merlotworks/wineclub-backend/pkg/db"
	"github.com/merlotworks/wineclub-backend/pkg/logger"
	"github.com/merlotworks/wineclub-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	authService auth.Service,
	catalogService catalog.Service,
	dashboardService dashboard.Service,
	planService plans.Service,
	memberService members.Service,
	preferenceService preferences.Service,
	fulfillmentService fulfillment.Service,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
	)

	var redisP redis.Pinger
	loginLimiter := func(next http.Handler) http.Handler { return next }
	if redisClient != nil {
		redisP = redisClient
		policy := middleware.NewLoginRateLimitPolicy(
			cfg.AuthRateLimit.LoginWindow,
			cfg.AuthRateLimit.LoginIPLimit,
			cfg.AuthRateLimit.LoginEmailLimit,
		)
		loginLimiter = middleware.LoginRateLimit(policy, redisClient, logg)
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/auth", func(r chi.Router) {
		r.With(loginLimiter).Post("/login", controllers.AuthLogin(authService, logg))
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		if redisClient != nil {
			r.Use(middleware.Idempotency(redisClient, logg))
		}

		r.Get("/ping", controllers.AdminPing())
		r.Get("/catalog", controllers.CatalogQuery(catalogService, logg))
		r.Get("/dashboard", controllers.DashboardStats(dashboardService, logg))

		r.Route("/plans", func(r chi.Router) {
			r.Get("/", controllers.PlanList(planService, logg))
			r.Post("/", controllers.PlanCreate(planService, logg))
			r.Get("/{planID}", controllers.PlanGet(planService, logg))
			r.Patch("/{planID}", controllers.PlanUpdate(planService, logg))
		})

		r.Route("/members", func(r chi.Router) {
			r.Get("/", controllers.MemberList(memberService, logg))
			r.Post("/", controllers.MemberCreate(memberService, logg))
			r.Get("/{memberID}", controllers.MemberGet(memberService, logg))
			r.Patch("/{memberID}", controllers.MemberUpdate(memberService, logg))

			r.Route("/{memberID}/preferences", func(r chi.Router) {
				r.Get("/", controllers.PreferenceList(preferenceService, logg))
				r.Put("/{window}", controllers.PreferenceSave(preferenceService, logg))
				r.Get("/{window}", controllers.PreferenceGet(preferenceService, logg))
				r.Delete("/{window}", controllers.PreferenceDelete(preferenceService, logg))
				r.Post("/{window}/checkout", controllers.PreferenceCheckout(preferenceService, logg))
			})
		})

		r.Route("/fulfillment", func(r chi.Router) {
			r.Get("/orders", controllers.FulfillmentList(fulfillmentService, logg))
			r.Post("/orders", controllers.FulfillmentImport(fulfillmentService, logg))
			r.Get("/orders/{orderID}", controllers.FulfillmentDetail(fulfillmentService, logg))
			r.Post("/orders/{orderID}/items/{itemID}/status", controllers.FulfillmentItemStatus(fulfillmentService, logg))
			r.Post("/orders/{orderID}/ready", controllers.FulfillmentMarkReady(fulfillmentService, logg))
			r.Post("/approve", controllers.FulfillmentApprove(fulfillmentService, logg))
			r.Post("/ship", controllers.FulfillmentShip(fulfillmentService, logg))
		})
	})

	return r
}
