package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gopherqa/internal/app"
	"gopherqa/internal/transport/http/response"
)

type HistoryHandler struct {
	historyService *app.HistoryService
}

func NewHistoryHandler(historyService *app.HistoryService) *HistoryHandler {
	return &HistoryHandler{historyService: historyService}
}

func (h *HistoryHandler) List(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}
	username, ok := getUsernameFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	view, err := h.historyService.List(c.Request.Context(), userID, username)
	if err != nil {
		if errors.Is(err, app.ErrInvalidInput) {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list history failed")
		return
	}

	response.OK(c, view)
}
