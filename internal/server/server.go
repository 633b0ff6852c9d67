// Package server exposes the synthesis service over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/book-expert/logger"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/naija-speech/tts-api/internal/audiostore"
	"github.com/naija-speech/tts-api/internal/config"
	"github.com/naija-speech/tts-api/internal/core"
	"github.com/naija-speech/tts-api/internal/tts/text"
)

// Version is reported by the root and health endpoints.
const Version = "1.0.0"

// ServiceName identifies the service in the root endpoint.
const ServiceName = "Nigerian-language TTS API"

// Timeouts for the HTTP listener. Synthesis can take a while on first
// requests, so the write timeout tracks the engine timeout rather than a
// generic default.
const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// Server wires the synthesis engine, artifact store, and optional mirror
// behind a gin router.
type Server struct {
	cfg       *config.Config
	log       *logger.Logger
	engine    core.Synthesizer
	validator *text.Validator
	store     *audiostore.Store
	janitor   *audiostore.Janitor
	mirror    *audiostore.Mirror
	router    *gin.Engine
}

// New builds a fully routed server. The mirror may be nil when no NATS
// mirror is configured.
func New(
	cfg *config.Config,
	log *logger.Logger,
	engine core.Synthesizer,
	store *audiostore.Store,
	janitor *audiostore.Janitor,
	mirror *audiostore.Mirror,
) *Server {
	srv := &Server{
		cfg:       cfg,
		log:       log,
		engine:    engine,
		validator: text.NewValidator(cfg.Synthesis.MaxTextLength),
		store:     store,
		janitor:   janitor,
		mirror:    mirror,
		router:    nil,
	}

	srv.router = srv.buildRouter()

	return srv
}

// Router returns the underlying gin engine, primarily for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) buildRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(s.loggingMiddleware())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     s.cfg.Server.CORSAllowOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/", s.handleRoot)
	router.GET("/health", s.handleHealth)
	router.GET("/voices", s.handleVoices)
	router.GET("/languages", s.handleLanguages)

	// The original deployment answered the same synthesis handler on
	// three paths for older clients.
	router.POST("/tts", s.handleSynthesize)
	router.POST("/generate-audio", s.handleSynthesize)
	router.POST("/generate-tts", s.handleSynthesize)

	router.GET("/audio/:filename", s.handleAudio)
	router.POST("/cleanup", s.handleCleanup)

	return router
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.log.Info("[HTTP] %s %s -> %d (%s)",
			c.Request.Method,
			c.Request.URL.Path,
			c.Writer.Status(),
			time.Since(start),
		)
	}
}

// Run serves HTTP until the context is canceled, then shuts down
// gracefully, letting in-flight synthesis requests finish.
func (s *Server) Run(ctx context.Context) error {
	addr := net.JoinHostPort(s.cfg.Server.Host, strconv.Itoa(s.cfg.Server.Port))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)

	go func() {
		s.log.Info("HTTP server listening on %s", addr)

		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}

		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}

		return nil
	case <-ctx.Done():
	}

	s.log.Info("Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := httpServer.Shutdown(shutdownCtx)
	if err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}

	return nil
}
