package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/johnquangdev/monitor-agent/pkg/config"
)

// Router holds all handlers
type Router struct {
	cfg         *config.Config
	pipeline    *Pipeline
	transcripts *Transcripts
	stream      *Stream
}

// NewRouter creates a new router with all handlers
func NewRouter(cfg *config.Config, pipeline *Pipeline, transcripts *Transcripts, stream *Stream) *Router {
	return &Router{
		cfg:         cfg,
		pipeline:    pipeline,
		transcripts: transcripts,
		stream:      stream,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", rt.healthCheck)

	// API docs
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// API v1 group
	v1 := e.Group("/v1")

	rt.setupPipelineRoutes(v1)
	rt.setupTranscriptRoutes(v1)
}

// setupPipelineRoutes configures pipeline control routes
func (rt *Router) setupPipelineRoutes(g *echo.Group) {
	pipelineGroup := g.Group("/pipeline")

	if rt.pipeline != nil {
		pipelineGroup.POST("/start", rt.pipeline.Start)
		pipelineGroup.POST("/stop", rt.pipeline.Stop)
		pipelineGroup.GET("/status", rt.pipeline.Status)
	} else {
		pipelineGroup.POST("/start", rt.notImplemented)
		pipelineGroup.POST("/stop", rt.notImplemented)
		pipelineGroup.GET("/status", rt.notImplemented)
	}
}

// setupTranscriptRoutes configures history and live feed routes
func (rt *Router) setupTranscriptRoutes(g *echo.Group) {
	if rt.transcripts != nil {
		g.GET("/transcripts", rt.transcripts.List)
	} else {
		g.GET("/transcripts", rt.notImplemented)
	}

	if rt.stream != nil {
		g.GET("/ws", rt.stream.Serve)
	} else {
		g.GET("/ws", rt.notImplemented)
	}
}

// notImplemented returns 501 Not Implemented response
func (rt *Router) notImplemented(c echo.Context) error {
	return c.JSON(http.StatusNotImplemented, map[string]interface{}{
		"error":   "This endpoint is not yet implemented",
		"path":    c.Request().URL.Path,
		"method":  c.Request().Method,
		"message": "Please initialize the required handler in the serve command",
	})
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	environment := "production"
	if rt.cfg != nil {
		environment = rt.cfg.Server.Environment
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"time":        time.Now().UTC().Format(time.RFC3339),
		"environment": environment,
	})
}
