package api

import (
	"agencychat/app/config"
	"agencychat/app/service/conversation"
	"agencychat/app/service/session"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/samber/do"
)

const shutdownTimeout = 10 * time.Second

var _ do.Shutdownable = (*Server)(nil)

type Server struct {
	cfg      *config.Config
	sessions *session.Registry
	validate *validator.Validate
	app      *fiber.App
}

type chatRequest struct {
	SessionID string              `json:"session_id" validate:"required,max=128"`
	Message   string              `json:"message" validate:"required,max=4000"`
	History   []conversation.Turn `json:"history" validate:"max=100,dive"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func New(di *do.Injector) (*Server, error) {
	return NewServer(
		do.MustInvoke[*config.Config](di),
		do.MustInvoke[*session.Registry](di),
	), nil
}

func NewServer(cfg *config.Config, sessions *session.Registry) *Server {
	s := &Server{
		cfg:      cfg,
		sessions: sessions,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "agencychat",
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})

	s.app.Use(recover.New())
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.HTTP.AllowOrigins,
	}))

	s.app.Get("/healthz", s.handleHealthz)
	s.app.Post("/api/chat", s.handleChat)

	return s
}

func (s *Server) App() *fiber.App {
	return s.app
}

// Run serves HTTP until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		slog.Info("HTTP server listening", "addr", s.cfg.HTTP.Addr)
		errCh <- s.app.Listen(s.cfg.HTTP.Addr)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to listen: %w", err)
	case <-ctx.Done():
		return s.Shutdown()
	}
}

func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) handleHealthz(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":   "ok",
		"sessions": s.sessions.Len(),
	})
}

func (s *Server) handleChat(c *fiber.Ctx) error {
	var req chatRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := s.validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), s.cfg.Chat.ReplyTimeout)
	defer cancel()

	client := fmt.Sprintf("%s (%s)", c.Get(fiber.HeaderUserAgent), c.IP())
	start := time.Now()

	result := s.sessions.Get(req.SessionID, client).Respond(ctx, req.Message, req.History)

	slog.Info("Processed message",
		"session_id", req.SessionID,
		"success", result.Success,
		"reason", result.Reason,
		"duration", time.Since(start))

	return c.JSON(result)
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}

	if code >= fiber.StatusInternalServerError {
		slog.Error("Request failed", "path", c.Path(), "error", err)
	}

	return c.Status(code).JSON(errorResponse{Error: err.Error()})
}
