package httpapi

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/logger"
)

// DefaultBodyLimit caps request bodies, uploads included.
const DefaultBodyLimit = 64 << 20

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 10 * time.Second

// Server serves the HTTP API.
type Server struct {
	ports     *Ports
	app       *fiber.App
	validate  *validator.Validate
	bodyLimit int
}

// Option configures a Server.
type Option func(*Server)

// WithBodyLimit sets the maximum request body size in bytes.
func WithBodyLimit(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.bodyLimit = n
		}
	}
}

// NewServer creates an HTTP server for the given ports.
func NewServer(ports *Ports, opts ...Option) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	s := &Server{
		ports:     ports,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		bodyLimit: DefaultBodyLimit,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "docsassistant",
		BodyLimit:             s.bodyLimit,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})
	s.registerRoutes()

	return s, nil
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run listens on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.app.ShutdownWithContext(shutdownCtx); err != nil {
			logger.Warn("HTTP shutdown: %v", err)
		}
	}()

	logger.Info("HTTP API listening on %s", addr)
	if err := s.app.Listen(addr); err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return nil
}
