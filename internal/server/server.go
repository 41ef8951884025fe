package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"queryquest/internal/config"
	"queryquest/internal/game"
)

// Options carries the collaborators that differ between production, dev mode and tests.
type Options struct {
	Content  game.ContentProvider
	Sandbox  game.QuerySandbox
	Recorder game.Recorder
	Ticks    game.TickSource
}

type Server struct {
	registry *game.Registry
	hub      *wsHub
	cfg      config.Config
	sessions *sessionManager
	limiter  *rateLimiter
}

func New(cfg config.Config, opts Options) *Server {
	hub := newWSHub()
	registry := game.NewRegistry(game.Deps{
		Content:     opts.Content,
		Sandbox:     opts.Sandbox,
		Broadcaster: hub,
		Ticks:       opts.Ticks,
		Recorder:    opts.Recorder,
		Settings:    cfg.GameSettings(),
	})
	return &Server{
		registry: registry,
		hub:      hub,
		cfg:      cfg,
		sessions: newSessionManager(cfg.SecretKey, strings.HasPrefix(cfg.BaseURL, "https://")),
		limiter:  newRateLimiter(cfg.RateLimitPerMinute),
	}
}

func (s *Server) Handler() http.Handler {
	registerValidators()

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())
	if origin := strings.TrimRight(s.cfg.BaseURL, "/"); origin != "" {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     []string{origin},
			AllowMethods:     []string{http.MethodGet, http.MethodPost},
			AllowHeaders:     []string{"Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/", s.handleHome)
	r.GET("/healthz", s.handleHealth)
	r.GET("/rooms/:code", s.handleRoomPage)
	r.GET("/rooms/:code/qr", s.handleRoomQR)

	api := r.Group("/api/rooms")
	api.POST("", s.handleCreateRoom)
	api.POST("/:code/join", s.handleJoinRoom)
	api.GET("/:code", s.handleRoomStatus)

	r.GET("/ws/rooms/:code", s.handleWebsocket)
	return r
}

func (s *Server) Registry() *game.Registry {
	return s.registry
}

// Shutdown waits for running rounds to finish, then drops every remaining connection.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.registry.Shutdown(ctx)
	for _, room := range s.registry.OpenRooms() {
		s.hub.CloseRoom(room.Code)
	}
	return err
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if c.Writer.Status() == http.StatusSwitchingProtocols {
			return
		}
		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("http request")
	}
}
