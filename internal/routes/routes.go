package routes

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/nirvista/onboard/internal/authapi"
	"github.com/nirvista/onboard/internal/config"
	"github.com/nirvista/onboard/internal/flow"
	"github.com/nirvista/onboard/internal/metrics"
	"github.com/nirvista/onboard/internal/middleware"
	"github.com/nirvista/onboard/internal/notification"
	"github.com/nirvista/onboard/internal/session"
	"github.com/nirvista/onboard/internal/web"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg        config.Config
	Store      session.Store
	DB         *pgxpool.Pool
	Cache      *redis.Client
	Workspaces *flow.Workspaces
	Metrics    *metrics.Metrics
	Logger     *slog.Logger
	// Context is cancelled when the server stops; open status streams end
	// with it.
	Context context.Context
	// API overrides the remote API client; tests use it to inject fakes.
	API flow.API
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	if d.Store == nil {
		return fmt.Errorf("session store is required")
	}
	switch d.Cfg.StoreBackend {
	case config.BackendRedis:
		if d.Cache == nil {
			return fmt.Errorf("redis is required when STORE_BACKEND=%s", d.Cfg.StoreBackend)
		}
	case config.BackendPostgres:
		if d.DB == nil {
			return fmt.Errorf("database is required when STORE_BACKEND=%s", d.Cfg.StoreBackend)
		}
	}
	if d.Workspaces == nil {
		d.Workspaces = flow.NewWorkspaces()
	}
	if d.Metrics == nil {
		d.Metrics = metrics.New()
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	// Plain text access log in desired format: [HH:MM:SS] 200 -  145ms METHOD /path
	if d.Cfg.IsDev() {
		app.Use(logger.New(logger.Config{
			Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
			TimeFormat: "15:04:05",
			TimeZone:   "Local",
		}))
	}
	app.Use(middleware.Session(middleware.SessionOptions{
		Cookie: d.Cfg.SessionCookie,
		TTL:    d.Cfg.SessionTTL,
		Secure: d.Cfg.CookieSecure,
	}))
	app.Use(middleware.Audit(d.Logger))
	app.Use(middleware.Metrics(d.Metrics))

	// Ops
	RegisterHealthRoutes(app, d)
	app.Get("/metrics", adaptor.HTTPHandler(d.Metrics.Handler()))

	// Services and handlers
	api := d.API
	if api == nil {
		api = authapi.New(authapi.Options{
			BaseURL: d.Cfg.APIBaseURL,
			Timeout: d.Cfg.APITimeout,
			Observe: d.Metrics.ObserveUpstream,
		})
	}
	notifier := notification.Multi{
		notification.NewFlashNotifier(d.Workspaces),
		notification.NewLoggerNotifier(d.Logger),
	}
	handler := web.NewHandler(web.Deps{
		Store:      d.Store,
		Workspaces: d.Workspaces,
		Signup:     flow.NewSignupService(api, d.Workspaces, notifier, d.Cfg.DialCode, d.Logger),
		OTP:        flow.NewOTPService(api, d.Workspaces, notifier, d.Logger),
		PIN:        flow.NewPINService(api, notifier, d.Logger),
		KYC:        flow.NewKYCService(api, d.Workspaces, notifier, d.Logger),
		Poller:     flow.NewStatusPoller(api, d.Cfg.PollInterval, d.Logger),
		Links: web.Links{
			AppDownloadURL: d.Cfg.AppDownloadURL,
			PortalURL:      d.Cfg.PortalURL,
		},
		DialCode:     d.Cfg.DialCode,
		StreamMaxAge: d.Cfg.StatusStreamMaxAge,
		Metrics:      d.Metrics,
		Logger:       d.Logger,
		Context:      d.Context,
	})

	var locker middleware.Locker = middleware.NewMemoryLocker()
	if d.Cache != nil {
		locker = middleware.NewRedisLocker(d.Cache)
	}
	guard := func(scope string) fiber.Handler {
		return middleware.SubmitGuard(locker, scope, d.Cfg.SubmitGuardTTL, d.Logger)
	}

	// Screens; the signup catch-all must stay last.
	RegisterOTPRoutes(app, handler, guard, middleware.ResendRateLimit(d.Cache, d.Cfg.ResendPerMinute))
	RegisterPINRoutes(app, handler, guard, middleware.RequireToken(d.Store, d.Logger))
	RegisterKYCRoutes(app, handler, guard, middleware.RequireToken(d.Store, d.Logger), middleware.RequireTokenAPI(d.Store, d.Logger))
	RegisterCompletionRoutes(app, handler)
	RegisterSignupRoutes(app, handler, guard)

	return nil
}
