package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/meetingscribe-backend/internal/http/handlers"
	httpMW "github.com/yungbote/meetingscribe-backend/internal/http/middleware"
	"github.com/yungbote/meetingscribe-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	CORSOrigins    []string
	MaxUploadBytes int64

	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler        *httpH.HealthHandler
	UserHandler          *httpH.UserHandler
	AudioHandler         *httpH.AudioHandler
	TranscriptionHandler *httpH.TranscriptionHandler
	SummarizerHandler    *httpH.SummarizerHandler
	MeetingHandler       *httpH.MeetingHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.CORSOrigins))
	if cfg.MaxUploadBytes > 0 {
		// Larger parts spill to temp files; the size rule itself lives in intake.
		r.MaxMultipartMemory = cfg.MaxUploadBytes
	}

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	if cfg.UserHandler != nil {
		api.POST("/users/signup/", cfg.UserHandler.Signup)
		api.POST("/users/login/", cfg.UserHandler.Login)
		api.POST("/users/token/refresh/", cfg.UserHandler.Refresh)
	}

	protected := api.Group("")
	if cfg.AuthMiddleware != nil {
		protected.Use(cfg.AuthMiddleware.RequireAuth())
	}
	{
		if cfg.UserHandler != nil {
			protected.GET("/users/me/quota/", cfg.UserHandler.GetQuota)
		}

		if cfg.AudioHandler != nil {
			protected.POST("/audio-files/", cfg.AudioHandler.Upload)
			protected.GET("/audio-files/", cfg.AudioHandler.List)
			protected.GET("/audio-files/:id/", cfg.AudioHandler.GetURL)
			protected.DELETE("/audio-files/:id/", cfg.AudioHandler.Delete)
		}

		if cfg.TranscriptionHandler != nil {
			protected.POST("/transcriptions/:asset_id/", cfg.TranscriptionHandler.Create)
			protected.GET("/transcriptions/:asset_id/", cfg.TranscriptionHandler.Get)
		}

		if cfg.SummarizerHandler != nil {
			protected.POST("/summarizer/summarize/:asset_id/", cfg.SummarizerHandler.Summarize)
			protected.GET("/summarizer/summarize/:asset_id/", cfg.SummarizerHandler.Get)
		}

		if cfg.MeetingHandler != nil {
			protected.POST("/meetings/:asset_id/process/", cfg.MeetingHandler.Process)
		}
	}

	return r
}
