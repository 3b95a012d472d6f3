package ui

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"ideaverse/app"
	"ideaverse/domain/catalog"
	"ideaverse/internal/errors"
	"ideaverse/models"
)

// respondError maps application error codes to HTTP statuses
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.CodeInvalidInput:
		status = http.StatusBadRequest
	case errors.CodeNotFound:
		status = http.StatusNotFound
	case errors.CodeResponseFormat:
		status = http.StatusBadGateway
	case errors.CodeTransport:
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{
		"error": err.Error(),
		"code":  errors.GetCode(err),
	})
}

func pathID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		respondError(c, errors.InvalidInput("id must be an integer"))
		return 0, false
	}
	return id, true
}

// Session management

func (s *Server) handleCreateSession(c *gin.Context) {
	var req struct {
		Problem string `json:"problem" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.InvalidInput("problem text is required"))
		return
	}

	session, err := s.engine.CreateSession(c.Request.Context(), req.Problem)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

func (s *Server) handleListSessions(c *gin.Context) {
	sessions, err := s.engine.ListSessions(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

func (s *Server) handleCurrentSession(c *gin.Context) {
	session := s.engine.Snapshot()
	if session == nil {
		var err error
		session, err = s.engine.LoadCurrentSession(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
	}
	if session == nil {
		c.JSON(http.StatusOK, gin.H{"session": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

func (s *Server) handleLoadSession(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, errors.InvalidInput("invalid session id"))
		return
	}
	session, err := s.engine.LoadSession(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (s *Server) handleDeleteSession(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, errors.InvalidInput("invalid session id"))
		return
	}
	if err := s.engine.DeleteSession(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleResetSession(c *gin.Context) {
	if err := s.engine.ResetSession(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleCompleteSession(c *gin.Context) {
	if err := s.engine.CompleteSession(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.engine.Snapshot())
}

func (s *Server) handleSetStep(c *gin.Context) {
	var req struct {
		Step int `json:"step" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.InvalidInput("step is required"))
		return
	}
	if err := s.engine.SetStep(c.Request.Context(), req.Step); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.engine.Snapshot())
}

// Stage 1: interview

func (s *Server) handleGenerateQuestions(c *gin.Context) {
	questions, err := s.engine.GenerateQuestions(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"questions": questions})
}

func (s *Server) handleSaveAnswer(c *gin.Context) {
	var req struct {
		QuestionID int    `json:"questionId"`
		Answer     string `json:"answer"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.InvalidInput("questionId and answer are required"))
		return
	}
	if err := s.engine.SaveAnswer(c.Request.Context(), req.QuestionID, req.Answer); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleGenerateUnderstanding(c *gin.Context) {
	report, err := s.engine.GenerateUnderstandingReport(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": report})
}

// Stage 2: analysis

func (s *Server) handleRecommendModels(c *gin.Context) {
	result, err := s.engine.RecommendModels(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleListModels(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"models": catalog.All()})
}

func (s *Server) handleGenerateDimensions(c *gin.Context) {
	var req struct {
		ModelID string `json:"modelId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.InvalidInput("modelId is required"))
		return
	}
	cards, err := s.engine.GenerateAnalysisDimensions(c.Request.Context(), req.ModelID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cards": cards})
}

func (s *Server) handleAnalyzeCard(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := s.engine.AnalyzeDimension(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.engine.Snapshot())
}

func (s *Server) handleAnalyzeAll(c *gin.Context) {
	if err := s.engine.AnalyzeAllDimensions(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.engine.Snapshot())
}

func (s *Server) handleReanalyzeCard(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req struct {
		Feedback string `json:"feedback"`
	}
	c.ShouldBindJSON(&req) // feedback is optional
	if err := s.engine.ReanalyzeCard(c.Request.Context(), id, req.Feedback); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.engine.Snapshot())
}

func (s *Server) handleUpdateCard(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var content models.CardContent
	if err := c.ShouldBindJSON(&content); err != nil {
		respondError(c, errors.InvalidInput("invalid card content"))
		return
	}
	if err := s.engine.UpdateAnalysisCard(c.Request.Context(), id, content); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.engine.Snapshot())
}

func (s *Server) handleDeleteCard(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := s.engine.DeleteAnalysisCard(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleGenerateReport(c *gin.Context) {
	report, err := s.engine.GenerateDeepAnalysisReport(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": report})
}

// Stage 3: solutions

func (s *Server) handleGenerateSolutions(c *gin.Context) {
	result, err := s.engine.GenerateSolutions(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleUpdateSolution(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var solution models.Solution
	if err := c.ShouldBindJSON(&solution); err != nil {
		respondError(c, errors.InvalidInput("invalid solution payload"))
		return
	}
	solution.ID = id
	solution.WeightedScore = app.WeightedScore(solution)
	if err := s.engine.UpdateSolution(c.Request.Context(), solution); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.engine.Snapshot())
}

func (s *Server) handleRegenerateSolution(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req struct {
		Feedback string `json:"feedback"`
	}
	c.ShouldBindJSON(&req) // feedback is optional
	solution, err := s.engine.RegenerateSolution(c.Request.Context(), id, req.Feedback)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, solution)
}

func (s *Server) handleScoreSummary(c *gin.Context) {
	session := s.engine.Snapshot()
	if session == nil {
		respondError(c, errors.InvalidInput("no active session"))
		return
	}
	summary, err := app.SummarizeScores(session.Solutions)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) handleGenerateMindMap(c *gin.Context) {
	mindMap, err := s.engine.GenerateMindMap(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mindMap": mindMap})
}

func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.engine.Status())
}
