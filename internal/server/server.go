// HTTP surface of the try-on service, built on Fiber. Routes live under
// /api; the heavy lifting happens in the pipeline package.
package server

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"

	"github.com/Martin-Chauke/Legend-Cut/internal/config"
)

// NewFiber builds the Fiber app with the codec and limits the frame endpoint
// needs. Body limit is generous because frames arrive as base64 JSON.
func NewFiber() *fiber.App {
	return fiber.New(fiber.Config{
		AppName:          "Legend Cut",
		BodyLimit:        50 * 1024 * 1024,
		DisableKeepalive: false,
		StrictRouting:    false,
		CaseSensitive:    true,
		JSONEncoder:      jsoniter.Marshal,
		JSONDecoder:      jsoniter.Unmarshal,
	})
}

func NewValidator() *validator.Validate {
	return validator.New()
}

type ServerOption func(*Server) error

// Server owns the Fiber engine and the API handler.
type Server struct {
	engine    *fiber.App
	log       *logrus.Logger
	validator *validator.Validate
	cfg       *config.Config
	handler   *Handler
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if server.handler == nil {
		return nil, fmt.Errorf("handler is required")
	}

	return server, nil
}

func WithFiber(app *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = app
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithValidator(v *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = v
		return nil
	}
}

func WithConfig(cfg *config.Config) ServerOption {
	return func(s *Server) error {
		s.cfg = cfg
		return nil
	}
}

func WithHandler(h *Handler) ServerOption {
	return func(s *Server) error {
		s.handler = h
		return nil
	}
}

// RegisterRoutes installs middleware and the API routes.
func (s *Server) RegisterRoutes() {
	s.engine.Use(requestIDMiddleware())
	s.engine.Use(loggingMiddleware(s.log))

	s.engine.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "Server is Healthy!"})
	})

	api := s.engine.Group("/api")
	s.handler.Start(api)
}

// Run blocks serving HTTP until Shutdown or a listener error.
func (s *Server) Run() error {
	return s.engine.Listen(fmt.Sprintf(":%s", s.cfg.Port))
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown() error {
	return s.engine.Shutdown()
}
