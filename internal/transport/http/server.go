package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"gopherqa/internal/ai"
	appsvc "gopherqa/internal/app"
	"gopherqa/internal/bootstrap"
	"gopherqa/internal/cache"
	"gopherqa/internal/ocr"
	"gopherqa/internal/platform/rabbitmq"
	"gopherqa/internal/repository"
	"gopherqa/internal/speech"
	"gopherqa/internal/transport/http/handler"
	"gopherqa/internal/transport/http/middleware"
	"gopherqa/internal/vectorstore"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	cfg := app.Config

	userRepo := repository.NewUserRepository(app.MySQL)
	questionRepo := repository.NewQuestionRepository(app.MySQL)

	llmClient := ai.NewOllamaClient()
	genCfg := ai.GenerateConfig{
		BaseURL:    cfg.LLM.BaseURL,
		Model:      cfg.LLM.Model,
		NumPredict: cfg.LLM.NumPredict,
	}
	embCfg := ai.EmbeddingConfig{
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.EmbeddingModel,
	}

	indexStore := vectorstore.NewUserIndexStore()
	historyCache := cache.NewHistoryCache(
		app.Redis,
		time.Duration(cfg.Redis.HistoryTTLSeconds)*time.Second,
		time.Duration(cfg.Redis.HistoryDirtyTTLSeconds)*time.Second,
	)
	questionPublisher := rabbitmq.NewQuestionPublisher(app.MQConn, cfg.RabbitMQ.QuestionPersistQueue)

	authService := appsvc.NewAuthService(
		userRepo,
		cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.JWTExpireMinute)*time.Minute,
	)
	qaService := appsvc.NewQAService(
		llmClient,
		appsvc.QAServiceConfig{
			Generate:     genCfg,
			Embedding:    embCfg,
			GenTimeout:   time.Duration(cfg.LLM.TimeoutSeconds) * time.Second,
			EmbedTimeout: time.Duration(cfg.LLM.EmbedTimeoutSeconds) * time.Second,
			TopK:         cfg.RAG.TopK,
		},
		indexStore,
		questionPublisher,
		historyCache,
	)
	documentService := appsvc.NewDocumentService(
		llmClient,
		embCfg,
		time.Duration(cfg.LLM.EmbedTimeoutSeconds)*time.Second,
		indexStore,
		cfg.RAG.ChunkSize,
		cfg.RAG.ChunkOverlap,
	)
	historyService := appsvc.NewHistoryService(questionRepo, historyCache, cfg.Auth.AdminUsername)

	ocrEngine := ocr.NewEngine(
		cfg.OCR.TesseractCmd,
		cfg.OCR.Languages,
		time.Duration(cfg.OCR.TimeoutSeconds)*time.Second,
	)
	recognizer := speech.NewRecognizer(cfg.STT.BaseURL, time.Duration(cfg.STT.TimeoutSeconds)*time.Second)
	synthesizer := speech.NewSynthesizer(cfg.TTS.BaseURL, cfg.TTS.OutputPath, time.Duration(cfg.TTS.TimeoutSeconds)*time.Second)

	authHandler := handler.NewAuthHandler(authService)
	qaHandler := handler.NewQAHandler(qaService)
	documentHandler := handler.NewDocumentHandler(documentService)
	ocrHandler := handler.NewOCRHandler(ocrEngine)
	voiceHandler := handler.NewVoiceHandler(recognizer)
	ttsHandler := handler.NewTTSHandler(synthesizer)
	historyHandler := handler.NewHistoryHandler(historyService)
	healthHandler := handler.NewHealthHandler(app)

	router.StaticFile("/", "web/index.html")
	router.StaticFile("/login.html", "web/login.html")
	router.StaticFile("/signup.html", "web/signup.html")
	router.StaticFile("/history.html", "web/history.html")
	router.GET("/healthz", healthHandler.Check)
	router.GET("/output.mp3", ttsHandler.ServeAudio)

	router.POST("/signup", authHandler.Signup)
	router.POST("/login", authHandler.Login)

	auth := middleware.AuthJWT(cfg.Auth.JWTSecret)
	router.GET("/history", auth, historyHandler.List)

	api := router.Group("/api")
	api.Use(auth)
	api.POST("/ask", qaHandler.Ask)
	api.POST("/upload_pdf", documentHandler.UploadPDF)
	api.POST("/ocr", ocrHandler.Recognize)
	api.POST("/voice", voiceHandler.Transcribe)
	api.POST("/tts", ttsHandler.Synthesize)

	return router
}
