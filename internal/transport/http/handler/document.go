package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gopherqa/internal/app"
)

type DocumentHandler struct {
	documentService *app.DocumentService
}

func NewDocumentHandler(documentService *app.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

func (h *DocumentHandler) UploadPDF(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token payload"})
		return
	}

	fileHeader, err := c.FormFile("pdf")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No PDF uploaded"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No PDF uploaded"})
		return
	}
	defer file.Close()

	if _, err := h.documentService.UploadPDF(c.Request.Context(), userID, file); err != nil {
		if errors.Is(err, app.ErrDocumentEmpty) {
			c.JSON(http.StatusBadRequest, gin.H{"error": app.ErrDocumentEmpty.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "PDF uploaded and processed successfully."})
}
