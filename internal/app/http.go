package app

import (
	server "github.com/yungbote/meetingscribe-backend/internal/http"
	httpH "github.com/yungbote/meetingscribe-backend/internal/http/handlers"
	httpMW "github.com/yungbote/meetingscribe-backend/internal/http/middleware"
	"github.com/yungbote/meetingscribe-backend/internal/platform/logger"
)

func wireServer(log *logger.Logger, cfg Config, svcs *Services) *server.Server {
	log.Info("Wiring handlers and router...")
	// A nil *Starter still answers Process with a 503.
	return server.NewServer(server.RouterConfig{
		Log:            log,
		ServiceName:    cfg.Otel.ServiceName,
		CORSOrigins:    cfg.CORSOrigins,
		MaxUploadBytes: cfg.MaxUploadBytes,

		AuthMiddleware: httpMW.NewAuthMiddleware(log, svcs.Users),

		HealthHandler:        httpH.NewHealthHandler(),
		UserHandler:          httpH.NewUserHandler(log, svcs.Users, svcs.Quota),
		AudioHandler:         httpH.NewAudioHandler(log, svcs.Intake),
		TranscriptionHandler: httpH.NewTranscriptionHandler(log, svcs.Transcription),
		SummarizerHandler:    httpH.NewSummarizerHandler(log, svcs.Summarizer),
		MeetingHandler:       httpH.NewMeetingHandler(log, svcs.Meetings),
	})
}
