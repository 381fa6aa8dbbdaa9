// Package server hosts independent estimation sessions over HTTP. Each
// session owns one sequencer and its own analyzer client.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/iksnae/completion-estimator/internal"
	"github.com/iksnae/completion-estimator/internal/chart"
)

const shutdownTimeout = 15 * time.Second

// Server is the HTTP host
type Server struct {
	cfg       *internal.Config
	registry  *Registry
	dashboard *chart.Dashboard
	engine    *gin.Engine

	ctx    context.Context
	cancel context.CancelFunc
}

// New builds the host from cfg. history may be nil, in which case hosted
// runs are not recorded.
func New(cfg *internal.Config, history *internal.History) (*Server, error) {
	factory := func() (internal.Analyzer, error) {
		a, err := internal.NewHTTPAnalyzer(cfg.BackendURL, cfg.RequestTimeout)
		if err != nil {
			return nil, err
		}
		return a, nil
	}
	if _, err := factory(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		cfg:    cfg,
		ctx:    ctx,
		cancel: cancel,
		dashboard: &chart.Dashboard{
			Format:    chart.FormatSVG,
			Width:     cfg.Chart.Width,
			Height:    cfg.Chart.Height,
			Threshold: cfg.KDRThreshold,
		},
	}

	observers := func(id string) []internal.Observer {
		obs := []internal.Observer{sessionLogger(id)}
		if history != nil {
			obs = append(obs, history.Recorder(ctx, cfg.ChunkSize, cfg.KDRThreshold))
		}
		return obs
	}
	s.registry = NewRegistry(factory, observers,
		internal.WithChunkSize(cfg.ChunkSize),
		internal.WithStepTimeout(cfg.RequestTimeout),
	)
	s.engine = s.newRouter()
	return s, nil
}

// Handler returns the router
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Registry returns the hosted sessions
func (s *Server) Registry() *Registry {
	return s.registry
}

// Run serves on cfg.Server.Addr until ctx is done
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		internal.LogInfo("Listening on %s (backend %s)", s.cfg.Server.Addr, s.cfg.BackendURL)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		s.Close()
		return nil
	case err := <-errCh:
		s.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Close stops every background run
func (s *Server) Close() {
	s.cancel()
	s.registry.Close()
}

func (s *Server) newRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())
	router.Use(cors.New(corsConfig(s.cfg.Server.AllowedOrigins)))

	router.GET("/healthcheck", healthCheck)

	api := router.Group("/api")
	{
		api.POST("/sessions", s.createSession)
		api.GET("/sessions/:id", s.getSession)
		api.DELETE("/sessions/:id", s.deleteSession)
		api.POST("/sessions/:id/analyze", s.analyze)
		api.POST("/sessions/:id/reset", s.resetSession)
		api.GET("/sessions/:id/charts/:name", s.chart)
	}

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "X-Requested-With"},
		MaxAge:       12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		internal.LogWith(
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		).Debug("request")
	}
}

func sessionLogger(id string) internal.Observer {
	log := internal.LogWith("session", id)
	return internal.ObserverFunc(func(e internal.Event) {
		switch e.Kind {
		case internal.EventIntegrate:
			log.Debug("chunk integrated", "cursor", e.Snapshot.Cursor, "of", e.Snapshot.ChunkCount)
		case internal.EventStepFailed:
			log.Warn("chunk failed", "cursor", e.Snapshot.Cursor, "err", e.Err)
		case internal.EventCompleted:
			log.Info("run completed", "run", e.Snapshot.RunID, "convergence", internal.ConvergenceLine(e.Snapshot.Series))
		}
	})
}
