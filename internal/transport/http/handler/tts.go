package handler

import (
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"gopherqa/internal/speech"
)

type TTSHandler struct {
	synthesizer *speech.Synthesizer
}

type TTSRequest struct {
	Text string `json:"text"`
	Lang string `json:"lang"`
}

func NewTTSHandler(synthesizer *speech.Synthesizer) *TTSHandler {
	return &TTSHandler{synthesizer: synthesizer}
}

func (h *TTSHandler) Synthesize(c *gin.Context) {
	if _, ok := getUserIDFromContext(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token payload"})
		return
	}

	var req TTSRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No text provided"})
		return
	}

	if err := h.synthesizer.Synthesize(c.Request.Context(), req.Text, req.Lang); err != nil {
		log.Printf("tts failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "TTS failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"audio_url": "/output.mp3",
		"answer":    req.Text,
	})
}

// ServeAudio streams the latest synthesized audio.
func (h *TTSHandler) ServeAudio(c *gin.Context) {
	path := h.synthesizer.OutputPath()
	if _, err := os.Stat(path); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no audio available"})
		return
	}
	c.Header("Content-Type", "audio/mpeg")
	c.File(path)
}
