package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"hll-geoguesser/internal/apperr"
	"hll-geoguesser/internal/config"
	"hll-geoguesser/internal/logger"
)

// SceneLister is the scene listing dependency of the server.
type SceneLister interface {
	List(ctx context.Context) ([]string, error)
}

// CoordinateStore is the coordinate persistence dependency of the server.
type CoordinateStore interface {
	Save(ctx context.Context, payload []byte) (int, error)
	FileName() string
}

// Server represents the API server
type Server struct {
	cfg    *config.Config
	log    *logger.Logger
	scenes SceneLister
	coords CoordinateStore
	router *gin.Engine
}

// NewServer creates a new API server
func NewServer(cfg *config.Config, scenes SceneLister, coords CoordinateStore, log *logger.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		log:    log.With("component", "api"),
		scenes: scenes,
		coords: coords,
	}
	s.router = s.SetupRoutes()
	return s
}

// Handler returns the configured router.
func (s *Server) Handler() http.Handler { return s.router }

// Response structures

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

type SaveCoordsResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

// Helper functions

func (s *Server) writeError(c *gin.Context, status int, code string, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:   code,
		Message: message,
	})
}

func (s *Server) writeSuccess(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Data:    data,
		Message: message,
	})
}

// writeAppError maps an error kind to a status and a generic message. The
// error itself only goes to the log.
func (s *Server) writeAppError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	var status int
	var message string
	switch kind {
	case apperr.KindDirectoryNotFound:
		status, message = http.StatusNotFound, fmt.Sprintf("%s folder not found", s.cfg.SceneDirRel())
	case apperr.KindMalformedInput:
		status, message = http.StatusBadRequest, "Invalid JSON data."
	case apperr.KindPersistenceFailure:
		status, message = http.StatusInternalServerError, "Failed to save coordinates."
	default:
		status, message = http.StatusInternalServerError, "Internal server error."
	}

	fields := []interface{}{"path", c.Request.URL.Path, "kind", kind.String(), "error", err}
	if id := c.GetString(requestIDKey); id != "" {
		fields = append(fields, "request_id", id)
	}
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", fields...)
	} else {
		s.log.Warn("request rejected", fields...)
	}
	s.writeError(c, status, kind.String(), message)
}

// API Handlers

// ListScenes returns the web-root-relative paths of all scene images.
func (s *Server) ListScenes(c *gin.Context) {
	files, err := s.scenes.List(c.Request.Context())
	if err != nil {
		s.writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, files)
}

// SaveCoords replaces the persisted coordinate set with the request body.
func (s *Server) SaveCoords(c *gin.Context) {
	body := http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.Server.MaxBodyBytes)
	payload, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.log.Warn("coordinates payload too large", "limit", tooLarge.Limit)
			s.writeError(c, http.StatusRequestEntityTooLarge, "payload_too_large",
				fmt.Sprintf("Request body exceeds %d bytes.", tooLarge.Limit))
			return
		}
		s.writeAppError(c, apperr.New(apperr.KindMalformedInput, "api.SaveCoords", err))
		return
	}

	count, err := s.coords.Save(c.Request.Context(), payload)
	if err != nil {
		s.writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, SaveCoordsResponse{
		Message: "Coords saved to " + s.coords.FileName(),
		Count:   count,
	})
}
