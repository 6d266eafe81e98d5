package server

import (
	"backend-velotrack/internal/auth"
	"backend-velotrack/internal/bike"
	"backend-velotrack/internal/config"
	"backend-velotrack/internal/metrics"
	"backend-velotrack/internal/run"
	"backend-velotrack/internal/stream"
	"backend-velotrack/internal/telemetry"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App    *fiber.App
	Cfg    config.Config
	DB     *pgxpool.Pool
	Redis  *redis.Client
	Stream *stream.Hub
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		App:    app,
		Cfg:    cfg,
		DB:     db,
		Redis:  redisClient,
		Stream: stream.NewHub(redisClient),
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)

	bikes := bike.NewService(s.DB)
	runs := run.NewService(s.DB)
	limits := telemetry.Limits{MinIntervalUs: s.Cfg.MinIntervalUs, MaxSpeedKmh: s.Cfg.MaxSpeedKmh}

	auth.RegisterRoutes(s.App.Group("/auth"), auth.NewService(s.Cfg.JWTSecret, s.DB))
	bike.RegisterRoutes(s.App.Group("/bikes"), bikes, jwtMiddleware)
	run.RegisterRoutes(s.App.Group("/runs"), runs, jwtMiddleware)
	telemetry.RegisterRoutes(s.App.Group("/telemetry"), telemetry.NewService(s.DB, bikes, runs, s.Stream, limits), jwtMiddleware)
	metrics.RegisterRoutes(s.App.Group("/metrics"), metrics.NewService(s.DB, s.Cfg.RollingWindow), jwtMiddleware)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream)
}
