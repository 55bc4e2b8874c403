package server

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/sifan077/Rinku/internal/app/metadata"
	"github.com/sifan077/Rinku/internal/app/service"
	inthttp "github.com/sifan077/Rinku/internal/http/handler"
	"github.com/sifan077/Rinku/internal/http/middleware"
	"go.uber.org/zap"
)

// Dependencies bundles what the HTTP server needs to serve the API.
type Dependencies struct {
	Logger     *zap.Logger
	Bookmarks  service.BookmarkService
	Metadata   metadata.Provider
	StorePing  func(ctx context.Context) error
	CORSOrigin string
}

// Server wraps the Fiber application and its dependencies.
type Server struct {
	app  *fiber.App
	deps Dependencies
}

// New creates a new HTTP server instance with the API routes registered.
func New(deps Dependencies) *Server {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	app := fiber.New(fiber.Config{
		AppName:               "Rinku",
		DisableStartupMessage: true,
	})

	s := &Server{
		app:  app,
		deps: deps,
	}

	s.registerMiddleware()
	s.registerRoutes()
	return s
}

// App exposes the underlying Fiber app, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen starts the Fiber server on the given address.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the Fiber server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) registerMiddleware() {
	s.app.Use(
		middleware.Recovery(s.deps.Logger),
		middleware.RequestID(),
		middleware.CORS(s.deps.CORSOrigin),
		middleware.Logger(s.deps.Logger),
		middleware.Metrics(),
	)
}

func (s *Server) registerRoutes() {
	inthttp.NewHealthHandler(s.deps.Logger, s.deps.StorePing).Register(s.app)

	inthttp.NewAPIHandler(inthttp.APIDeps{
		Logger:          s.deps.Logger,
		BookmarkService: s.deps.Bookmarks,
		Metadata:        s.deps.Metadata,
	}).Register(s.app)
}
