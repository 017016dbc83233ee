package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"gopherqa/internal/ocr"
)

type OCRHandler struct {
	engine *ocr.Engine
}

func NewOCRHandler(engine *ocr.Engine) *OCRHandler {
	return &OCRHandler{engine: engine}
}

func (h *OCRHandler) Recognize(c *gin.Context) {
	if _, ok := getUserIDFromContext(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token payload"})
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No image file uploaded."})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No image file uploaded."})
		return
	}
	defer file.Close()

	text, err := h.engine.Recognize(c.Request.Context(), file)
	if err != nil {
		log.Printf("ocr failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"question": text})
}
