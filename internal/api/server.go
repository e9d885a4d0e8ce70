package api

import (
	"context"
	"errors"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"
)

const (
	serviceName    = "hll-geoguesser"
	serviceVersion = "1.0.0"
)

// SetupRoutes sets up the HTTP routes for the API server
func (s *Server) SetupRoutes() *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true

	router.Use(requestID())
	router.Use(requestLogger(s.log))
	router.Use(recovery(s.log))
	router.Use(secure.New(s.secureConfig()))
	if len(s.cfg.Server.CORSOrigins) > 0 {
		router.Use(cors.New(s.corsConfig()))
	}

	api := router.Group("/api")
	{
		api.GET("/scenes", s.ListScenes)
		api.POST("/saveCoords", s.SaveCoords)

		// Health check endpoint
		api.GET("/health", s.HealthCheck)

		// API documentation endpoint
		api.GET("/docs", s.APIDocs)
	}

	router.NoMethod(func(c *gin.Context) {
		s.writeError(c, http.StatusMethodNotAllowed, "method_not_allowed", "Method "+c.Request.Method+" is not allowed")
	})
	router.NoRoute(s.serveStatic)

	return router
}

// corsConfig allows cross-origin requests from the configured origins; "*"
// allows any origin without credentials.
func (s *Server) corsConfig() cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "X-Requested-With", headerRequestID},
		ExposeHeaders: []string{headerRequestID},
		MaxAge:        24 * time.Hour,
	}
	for _, o := range s.cfg.Server.CORSOrigins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = s.cfg.Server.CORSOrigins
	cfg.AllowCredentials = true
	return cfg
}

func (s *Server) secureConfig() secure.Config {
	cfg := secure.Config{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}
	// Only when TLS terminates here, not behind a reverse proxy.
	if s.cfg.Server.SSL {
		cfg.SSLRedirect = true
		cfg.STSSeconds = 31536000
		cfg.STSIncludeSubdomains = true
	}
	return cfg
}

// serveStatic serves the static-asset root verbatim; index.html is the
// default document and directories are never listed. Unknown /api paths get
// a JSON 404.
func (s *Server) serveStatic(c *gin.Context) {
	p := c.Request.URL.Path
	if p == "/api" || strings.HasPrefix(p, "/api/") {
		s.writeError(c, http.StatusNotFound, "not_found", "Endpoint not found")
		return
	}
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		s.writeError(c, http.StatusMethodNotAllowed, "method_not_allowed", "Only GET method is allowed")
		return
	}
	c.FileFromFS(path.Clean("/"+p), gin.Dir(s.cfg.Server.WebRoot, false))
}

// HealthCheck returns the health status of the API
func (s *Server) HealthCheck(c *gin.Context) {
	status := map[string]interface{}{
		"status":     "healthy",
		"service":    serviceName,
		"version":    serviceVersion,
		"sceneDir":   s.cfg.SceneDirRel(),
		"coordsFile": s.coords.FileName(),
	}

	s.writeSuccess(c, status, "Service is healthy")
}

// APIDocs returns API documentation
func (s *Server) APIDocs(c *gin.Context) {
	docs := map[string]interface{}{
		"title":       "HLL Geoguesser API",
		"version":     serviceVersion,
		"description": "Scene listing and coordinate persistence for the geoguesser front end",
		"endpoints": map[string]interface{}{
			"Scenes": map[string]interface{}{
				"GET /api/scenes": "List scene image paths relative to the static root",
			},
			"Coordinates": map[string]interface{}{
				"POST /api/saveCoords": "Replace all saved coordinates with the posted array",
			},
			"Utility": map[string]interface{}{
				"GET /api/health": "Health check",
				"GET /api/docs":   "API documentation",
			},
		},
		"examples": map[string]interface{}{
			"save_coords": map[string]interface{}{
				"method": "POST",
				"url":    "/api/saveCoords",
				"body": []map[string]interface{}{
					{"filename": s.cfg.SceneDirRel() + "/1.jpg", "x": 412.5, "y": 220},
					{"filename": s.cfg.SceneDirRel() + "/2.jpg"},
				},
			},
		},
	}

	s.writeSuccess(c, docs, "")
}

// Run serves HTTP until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Server.Addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("starting HTTP server", "addr", srv.Addr, "web_root", s.cfg.Server.WebRoot)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
