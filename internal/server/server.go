// SPDX-License-Identifier: MIT
/*
Package server exposes the haptic service over HTTP with gin.

	GET  /healthz
	GET  /ws                           playback event stream (WebSocket)
	GET  /api/presets[?category=]
	GET  /api/presets/:id
	POST /api/analyses                 {fileId, analysis} -> {id, fileId}
	GET  /api/analyses/:id
	POST /api/analyses/:id/patterns    {prompt, presetId} -> {patterns}
	GET  /api/patterns
	POST /api/embed                    multipart video, patterns, options -> tagged file
	POST /api/extract                  multipart video -> {found, metadata}
	POST /api/play                     {patterns, options} -> 202

Errors are returned as {"error": {"code": ..., "message": ...}}.
*/
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	applog "haptic/internal/log"
	"haptic/internal/player"
	"haptic/internal/service"
	"haptic/internal/transport"
)

var log = applog.With("server")

// Config holds the HTTP limits.
type Config struct {
	Addr           string
	MaxUploadBytes int64
	RequestTimeout time.Duration
}

// Server routes HTTP requests to the service and schedules playback onto
// the configured transports.
type Server struct {
	cfg    Config
	svc    *service.Service
	hub    http.Handler
	player *player.Player
	engine *gin.Engine

	// base is cancelled by Close and parents every playback.
	base       context.Context
	cancelBase context.CancelFunc

	playMu     sync.Mutex
	cancelPlay context.CancelFunc
	playWG     sync.WaitGroup
}

// New builds the router. hub serves /ws and may be nil; out receives
// playback events.
func New(cfg Config, svc *service.Service, hub http.Handler, out transport.Transport) *Server {
	base, cancel := context.WithCancel(context.Background())
	s := &Server{
		cfg:        cfg,
		svc:        svc,
		hub:        hub,
		player:     player.New(out),
		base:       base,
		cancelBase: cancel,
	}
	s.engine = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(
		gin.LoggerWithWriter(applog.Writer(applog.LevelDebug)),
		gin.RecoveryWithWriter(applog.Writer(applog.LevelError)),
	)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if s.hub != nil {
		r.GET("/ws", gin.WrapH(s.hub))
	}

	api := r.Group("/api", s.timeout())
	api.GET("/presets", s.listPresets)
	api.GET("/presets/:id", s.getPreset)
	api.POST("/analyses", s.createAnalysis)
	api.GET("/analyses/:id", s.getAnalysis)
	api.POST("/analyses/:id/patterns", s.generatePatterns)
	api.GET("/patterns", s.listPatterns)
	api.POST("/embed", s.embed)
	api.POST("/extract", s.extract)
	api.POST("/play", s.play)
	return r
}

// timeout bounds store work per request.
func (s *Server) timeout() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.cfg.RequestTimeout <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.RequestTimeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on cfg.Addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Listening on %s", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Infof("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

// Close stops any playback in progress and waits for it to finish.
func (s *Server) Close() error {
	s.cancelBase()
	s.playWG.Wait()
	return nil
}
