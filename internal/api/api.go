package api

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/glefebvre/moviesearch/internal/blobstore"
	"github.com/glefebvre/moviesearch/internal/circuitbreaker"
	"github.com/glefebvre/moviesearch/internal/imagefallback"
	"github.com/glefebvre/moviesearch/internal/logger"
	"github.com/glefebvre/moviesearch/internal/moviestore"
)

// BreakerReporter exposes the state of the remote catalog's circuit breaker
type BreakerReporter interface {
	BreakerState() circuitbreaker.State
}

// Options wires a Server to its collaborators
type Options struct {
	Store          *moviestore.Store
	Blobs          blobstore.Store
	Posters        *imagefallback.Registry
	Catalog        BreakerReporter
	Logger         *logger.Logger
	AllowedOrigins []string
	// Stopping is closed when shutdown begins; health checks then answer 503
	Stopping <-chan struct{}
}

// Server represents the API server
type Server struct {
	router   *gin.Engine
	store    *moviestore.Store
	blobs    blobstore.Store
	posters  *imagefallback.Registry
	catalog  BreakerReporter
	logger   *logger.Logger
	stopping <-chan struct{}

	mu      sync.Mutex
	httpSrv *http.Server
}

// NewServer creates a new API server instance
func NewServer(opts Options) *Server {
	if opts.Posters == nil {
		opts.Posters = imagefallback.NewRegistry()
	}
	if opts.Logger == nil {
		opts.Logger = logger.AppLogger()
	}

	router := gin.New()
	router.Use(requestIDMiddleware())
	router.Use(loggingMiddleware(opts.Logger))
	router.Use(errorHandlerMiddleware(opts.Logger))
	router.Use(cors.New(corsConfig(opts.AllowedOrigins)))

	s := &Server{
		router:   router,
		store:    opts.Store,
		blobs:    opts.Blobs,
		posters:  opts.Posters,
		catalog:  opts.Catalog,
		logger:   opts.Logger,
		stopping: opts.Stopping,
	}

	s.setupRoutes()

	return s
}

// Handler returns the router, for tests and custom listeners
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on port until Shutdown is called
func (s *Server) Run(port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Lock()
	s.httpSrv = srv
	s.mu.Unlock()

	s.logger.WithFields(map[string]interface{}{
		"port": port,
	}).Info("HTTP API server listening")

	if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpSrv
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

func (s *Server) setupRoutes() {
	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/health", s.healthCheck)

		// Search
		v1.GET("/search", s.getSearch)
		v1.PUT("/search", s.updateSearch)
		v1.DELETE("/search", s.resetSearch)
		v1.GET("/status", s.getStatus)
		v1.GET("/state", s.getState)

		// Results and detail
		v1.GET("/movies", s.listMovies)
		v1.GET("/movies/:id", s.fetchMovie)
		v1.GET("/detail", s.getDetail)

		// Favourites
		v1.GET("/favourites", s.listFavourites)
		v1.POST("/favourites", s.addFavourite)
		v1.DELETE("/favourites/:id", s.removeFavourite)

		// Error log
		v1.GET("/errors", s.listErrors)
		v1.DELETE("/errors", s.clearErrors)

		// Poster fallback
		v1.GET("/posters/:id", s.getPoster)
		v1.POST("/posters/:id/failures", s.reportPosterFailure)
		v1.DELETE("/posters/:id/failures", s.resetPoster)
	}
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID"},
		MaxAge:        12 * time.Hour,
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
