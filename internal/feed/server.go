package feed

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/rs/zerolog/log"

	"wallet-account-picker/internal/account"
	"wallet-account-picker/internal/health"
	"wallet-account-picker/internal/state"
)

// Store is what the feed needs from the background state
type Store interface {
	Snapshot() account.Snapshot
	Records() []account.Record
	Apply(state.Patch) error
}

// HealthReporter supplies component statuses for GET /health
type HealthReporter interface {
	GetStatuses() []health.Status
	Healthy() bool
}

// StateResponse is the body of GET /state
type StateResponse struct {
	account.Snapshot
	Records []account.Record `json:"records"`
}

// Server accepts state patches over HTTP
type Server struct {
	app    *fiber.App
	store  Store
	health HealthReporter
	host   string
	port   int
}

// NewServer creates a new feed server; rateLimit is requests per second per client, 0 disables
func NewServer(host string, port int, rateLimit int, store Store) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ReadTimeout:           5 * time.Second,
		WriteTimeout:          5 * time.Second,
	})

	s := &Server{
		app:   app,
		store: store,
		host:  host,
		port:  port,
	}

	if rateLimit > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        rateLimit,
			Expiration: time.Second,
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limited"})
			},
		}))
	}

	s.setupRoutes()
	return s
}

// SetHealth adds component statuses to GET /health
func (s *Server) SetHealth(h HealthReporter) {
	s.health = h
}

func (s *Server) setupRoutes() {
	// Health check
	s.app.Get("/health", func(c *fiber.Ctx) error {
		if s.health == nil {
			return c.JSON(fiber.Map{
				"status": "ok",
				"time":   time.Now().Unix(),
			})
		}
		status, code := "ok", fiber.StatusOK
		if !s.health.Healthy() {
			status, code = "degraded", fiber.StatusServiceUnavailable
		}
		return c.Status(code).JSON(fiber.Map{
			"status":     status,
			"time":       time.Now().Unix(),
			"components": s.health.GetStatuses(),
		})
	})

	s.app.Get("/state", s.handleGetState)
	s.app.Post("/state", s.handlePatch)
}

func (s *Server) handleGetState(c *fiber.Ctx) error {
	return c.JSON(StateResponse{
		Snapshot: s.store.Snapshot(),
		Records:  s.store.Records(),
	})
}

func (s *Server) handlePatch(c *fiber.Ctx) error {
	var patch state.Patch
	if err := c.BodyParser(&patch); err != nil {
		log.Error().Err(err).Msg("failed to parse state patch")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}

	if err := Normalize(&patch); err != nil {
		log.Warn().Err(err).Msg("rejected state patch")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if patch.Empty() {
		return c.JSON(fiber.Map{"status": "ignored", "reason": "empty patch"})
	}

	if err := s.store.Apply(patch); err != nil {
		log.Warn().Err(err).Msg("failed to apply state patch")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	log.Debug().
		Int("records", len(patch.Records)).
		Int("accounts", len(patch.Accounts)).
		Bool("selection", patch.SelectedAddress != nil).
		Msg("state patch applied")

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "applied"})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	log.Info().Str("addr", addr).Msg("starting feed server")
	return s.app.Listen(addr)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
