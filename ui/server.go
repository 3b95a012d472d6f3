package ui

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"ideaverse/app"
)

// Server exposes the workflow engine over HTTP for the browser UI
type Server struct {
	router *gin.Engine
	engine *app.Engine
	hub    *SSEHub
}

// NewServer wires routes for sessions, workflow operations, exports, and
// the SSE event feed.
func NewServer(engine *app.Engine, hub *SSEHub, ginMode string) *Server {
	if ginMode != "" {
		gin.SetMode(ginMode)
	}

	s := &Server{
		router: gin.Default(),
		engine: engine,
		hub:    hub,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	api := s.router.Group("/api")

	// Session management
	api.POST("/sessions", s.handleCreateSession)
	api.GET("/sessions", s.handleListSessions)
	api.GET("/sessions/current", s.handleCurrentSession)
	api.POST("/sessions/:id/load", s.handleLoadSession)
	api.DELETE("/sessions/:id", s.handleDeleteSession)
	api.POST("/sessions/reset", s.handleResetSession)
	api.POST("/sessions/complete", s.handleCompleteSession)
	api.POST("/sessions/step", s.handleSetStep)

	// Stage 1: interview
	api.POST("/interview/questions", s.handleGenerateQuestions)
	api.POST("/interview/answers", s.handleSaveAnswer)
	api.POST("/interview/understanding", s.handleGenerateUnderstanding)

	// Stage 2: analysis
	api.POST("/analysis/recommend", s.handleRecommendModels)
	api.GET("/analysis/models", s.handleListModels)
	api.POST("/analysis/dimensions", s.handleGenerateDimensions)
	api.POST("/analysis/cards/:id/analyze", s.handleAnalyzeCard)
	api.POST("/analysis/cards/analyze-all", s.handleAnalyzeAll)
	api.POST("/analysis/cards/:id/reanalyze", s.handleReanalyzeCard)
	api.PUT("/analysis/cards/:id", s.handleUpdateCard)
	api.DELETE("/analysis/cards/:id", s.handleDeleteCard)
	api.POST("/analysis/report", s.handleGenerateReport)

	// Stage 3: solutions
	api.POST("/solutions/generate", s.handleGenerateSolutions)
	api.PUT("/solutions/:id", s.handleUpdateSolution)
	api.POST("/solutions/:id/regenerate", s.handleRegenerateSolution)
	api.GET("/solutions/summary", s.handleScoreSummary)
	api.POST("/mindmap/generate", s.handleGenerateMindMap)

	// Status and events
	api.GET("/status", s.handleStatus)
	api.GET("/events", s.hub.HandleSSE)

	// Exports
	api.GET("/export/session", s.handleExportSession)
	api.GET("/export/report", s.handleExportReportHTML)
	api.GET("/export/mindmap", s.handleExportMindMap)
	api.GET("/export/solutions.xlsx", s.handleExportSolutionsXLSX)
}

// Start runs the HTTP server on the given port
func (s *Server) Start(port string) error {
	log.Printf("[Server] listening on :%s", port)
	return s.router.Run(":" + port)
}

// Handler exposes the router for tests
func (s *Server) Handler() http.Handler {
	return s.router
}
