package handlers

import (
	"errors"
	"net/http"

	"autoserve/services/diagnosis"
	"autoserve/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DiagnosisHandler exposes the conversational diagnosis endpoints.
type DiagnosisHandler struct {
	Service diagnosis.Service
}

func NewDiagnosisHandler(svc diagnosis.Service) *DiagnosisHandler {
	return &DiagnosisHandler{Service: svc}
}

// StartSessionHandler handles POST /api/diagnosis/sessions.
func (h *DiagnosisHandler) StartSessionHandler(c *gin.Context) {
	logger := utils.GetLogger()
	var input struct {
		CustomerID  string `json:"customer_id" binding:"required"`
		VehicleID   string `json:"vehicle_id" binding:"required"`
		SymptomText string `json:"symptom_text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	update, err := h.Service.StartSession(c.Request.Context(), input.CustomerID, input.VehicleID, input.SymptomText)
	if err != nil {
		logger.Error("Failed to start diagnosis session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, update)
}

// AnswerHandler handles POST /api/diagnosis/sessions/:id/answer.
func (h *DiagnosisHandler) AnswerHandler(c *gin.Context) {
	logger := utils.GetLogger()
	sessionID := c.Param("id")
	var input struct {
		Answer string `json:"answer" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	update, err := h.Service.AdvanceSession(c.Request.Context(), sessionID, input.Answer)
	if err != nil {
		switch {
		case errors.Is(err, diagnosis.ErrSessionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, diagnosis.ErrSessionTerminal):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to advance diagnosis session", zap.String("sessionID", sessionID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, update)
}

// GetSessionHandler handles GET /api/diagnosis/sessions/:id.
func (h *DiagnosisHandler) GetSessionHandler(c *gin.Context) {
	sessionID := c.Param("id")
	session, err := h.Service.GetSession(c.Request.Context(), sessionID)
	if err != nil {
		if errors.Is(err, diagnosis.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, session)
}

// CancelSessionHandler handles DELETE /api/diagnosis/sessions/:id.
func (h *DiagnosisHandler) CancelSessionHandler(c *gin.Context) {
	sessionID := c.Param("id")
	if err := h.Service.CancelSession(c.Request.Context(), sessionID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Session cancelled"})
}

// MatchProblemsHandler handles POST /api/problems/match. It runs one matcher
// pass without creating a session.
func (h *DiagnosisHandler) MatchProblemsHandler(c *gin.Context) {
	var input struct {
		SymptomText string `json:"symptom_text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	ranked, err := h.Service.MatchProblems(c.Request.Context(), input.SymptomText)
	if err != nil {
		if errors.Is(err, diagnosis.ErrNoCandidates) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"candidates": ranked})
}
