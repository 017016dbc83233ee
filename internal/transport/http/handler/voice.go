package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"gopherqa/internal/speech"
)

type VoiceHandler struct {
	recognizer *speech.Recognizer
}

func NewVoiceHandler(recognizer *speech.Recognizer) *VoiceHandler {
	return &VoiceHandler{recognizer: recognizer}
}

// Transcribe maps the two recognition failure kinds to distinct statuses:
// unintelligible audio is the client's problem, an unreachable backend is not.
func (h *VoiceHandler) Transcribe(c *gin.Context) {
	if _, ok := getUserIDFromContext(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token payload"})
		return
	}

	fileHeader, err := c.FormFile("audio")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No audio file"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No audio file"})
		return
	}
	defer file.Close()

	lang := c.PostForm("lang")

	text, err := h.recognizer.Transcribe(c.Request.Context(), file, fileHeader.Filename, lang)
	if err != nil {
		switch {
		case errors.Is(err, speech.ErrNoSpeech):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Could not understand audio"})
		case errors.Is(err, speech.ErrServiceUnavailable):
			log.Printf("speech recognition failed: %v", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "Speech recognition service failed"})
		default:
			log.Printf("speech recognition failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Speech recognition service failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"text": text})
}
