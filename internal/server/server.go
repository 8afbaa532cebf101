package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/nirvista/onboard/internal/config"
	"github.com/nirvista/onboard/internal/flow"
	"github.com/nirvista/onboard/internal/metrics"
	"github.com/nirvista/onboard/internal/routes"
	"github.com/nirvista/onboard/internal/session"
	"github.com/nirvista/onboard/internal/web"
)

const (
	bodyLimit      = 10 << 20
	janitorPeriod  = time.Minute
	janitorTimeout = 10 * time.Second
)

// Server wraps the Fiber application and shared dependencies.
type Server struct {
	app        *fiber.App
	cfg        config.Config
	store      session.Store
	workspaces *flow.Workspaces
	metrics    *metrics.Metrics
	logger     *slog.Logger
	stop       context.CancelFunc
	done       chan struct{}
}

// New instantiates the HTTP server and delegates route wiring to routes.Setup.
func New(cfg config.Config, store session.Store, db *pgxpool.Pool, cache *redis.Client, logger *slog.Logger) (*Server, error) {
	views, err := web.NewViews()
	if err != nil {
		return nil, err
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		Views:        views,
		ErrorHandler: web.ErrorHandler(logger),
		BodyLimit:    bodyLimit,
		ReadTimeout:  30 * time.Second,
		// Status streams stay open up to their maximum age.
		WriteTimeout: cfg.StatusStreamMaxAge + 30*time.Second,
	})

	ctx, stop := context.WithCancel(context.Background())
	workspaces := flow.NewWorkspaces()
	m := metrics.New()
	if err := routes.Setup(app, routes.Deps{
		Cfg:        cfg,
		Store:      store,
		DB:         db,
		Cache:      cache,
		Workspaces: workspaces,
		Metrics:    m,
		Logger:     logger,
		Context:    ctx,
	}); err != nil {
		stop()
		return nil, err
	}

	s := &Server{
		app:        app,
		cfg:        cfg,
		store:      store,
		workspaces: workspaces,
		metrics:    m,
		logger:     logger,
		stop:       stop,
		done:       make(chan struct{}),
	}
	go s.janitor(ctx)
	return s, nil
}

// Listen starts the HTTP server.
func (s *Server) Listen() error {
	return s.app.Listen(s.cfg.Address())
}

// Shutdown ends the janitor and open status streams, then gracefully stops
// the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.stop()
	select {
	case <-s.done:
	case <-ctx.Done():
	}
	return s.app.ShutdownWithContext(ctx)
}

// janitor drops idle visitor workspaces and, for stores that need it,
// purges expired persisted entries.
func (s *Server) janitor(ctx context.Context) {
	defer close(s.done)
	ticker := time.NewTicker(janitorPeriod)
	defer ticker.Stop()

	purger, _ := s.store.(session.Purger)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if removed := s.workspaces.Sweep(s.cfg.WorkspaceIdleTTL); removed > 0 {
			s.logger.Debug("idle workspaces swept", slog.Int("removed", removed))
		}
		s.metrics.Workspaces.Set(float64(s.workspaces.Len()))

		if purger == nil {
			continue
		}
		purgeCtx, cancel := context.WithTimeout(ctx, janitorTimeout)
		n, err := purger.Purge(purgeCtx)
		cancel()
		if err != nil {
			s.logger.Warn("purge expired client state", slog.Any("error", err))
			continue
		}
		if n > 0 {
			s.logger.Debug("expired client state purged", slog.Int64("rows", n))
		}
	}
}
