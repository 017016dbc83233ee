package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gopherqa/internal/app"
)

// QAHandler serves /api/ask. Response bodies keep the exact shapes the front
// end consumes: {heading, body} on success, {message} on validation failure.
type QAHandler struct {
	qaService *app.QAService
}

type AskRequest struct {
	Question string `json:"question"`
	Lang     string `json:"lang"`
}

func NewQAHandler(qaService *app.QAService) *QAHandler {
	return &QAHandler{qaService: qaService}
}

func (h *QAHandler) Ask(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid token payload"})
		return
	}

	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "No question provided."})
		return
	}

	answer, err := h.qaService.Ask(c.Request.Context(), userID, req.Question)
	if err != nil {
		if errors.Is(err, app.ErrQuestionEmpty) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "No question provided."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "ask failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"heading": answer.Heading, "body": answer.Body})
}
