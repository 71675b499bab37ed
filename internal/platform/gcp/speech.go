package gcp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	longrunningpb "cloud.google.com/go/longrunning/autogen/longrunningpb"
	speech "cloud.google.com/go/speech/apiv1"
	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/yungbote/meetingscribe-backend/internal/platform/ctxutil"
	"github.com/yungbote/meetingscribe-backend/internal/platform/logger"
)

// Inline audio content is capped by the API; anything larger is staged in the bucket.
const speechInlineLimitBytes = 10 << 20

const speechScratchPrefix = "meetingscribe/scratch/"

// Recognizer turns a local audio file into text.
type Recognizer interface {
	Recognize(ctx context.Context, audioPath string, opts RecognizeOptions) (string, error)
	Close() error
}

type RecognizeOptions struct {
	LanguageCode    string
	SampleRateHertz int
	Channels        int
	Model           string
}

type speechRecognizer struct {
	log     *logger.Logger
	client  *speech.Client
	staging BucketService
}

// NewRecognizer builds a Cloud Speech recognizer. staging is used for audio above the inline limit.
func NewRecognizer(log *logger.Logger, staging BucketService) (Recognizer, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	c, err := speech.NewClient(context.Background(), ClientOptionsFromEnv()...)
	if err != nil {
		return nil, fmt.Errorf("speech client: %w", err)
	}
	return &speechRecognizer{
		log:     log.With("service", "gcp.Recognizer"),
		client:  c,
		staging: staging,
	}, nil
}

func (s *speechRecognizer) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

func (s *speechRecognizer) Recognize(ctx context.Context, audioPath string, opts RecognizeOptions) (string, error) {
	ctx = ctxutil.Default(ctx)

	info, err := os.Stat(audioPath)
	if err != nil {
		return "", fmt.Errorf("stat audio: %w", err)
	}

	audio, cleanup, err := s.recognitionAudio(ctx, audioPath, info.Size())
	if err != nil {
		return "", err
	}
	defer cleanup()

	req := &speechpb.LongRunningRecognizeRequest{
		Config: buildRecognitionConfig(audioPath, opts),
		Audio:  audio,
	}

	op, err := s.client.LongRunningRecognize(ctx, req)
	if err != nil {
		return "", classifySpeechErr("start recognition", err)
	}
	resp, err := op.Wait(ctx)
	if err != nil {
		if ctx.Err() != nil || status.Code(err) == codes.DeadlineExceeded {
			s.cancelOperation(op.Name())
		}
		return "", classifySpeechErr("wait recognition", err)
	}
	return joinTranscripts(resp), nil
}

func (s *speechRecognizer) recognitionAudio(ctx context.Context, audioPath string, size int64) (*speechpb.RecognitionAudio, func(), error) {
	noop := func() {}
	if size <= speechInlineLimitBytes || s.staging == nil {
		data, err := os.ReadFile(audioPath)
		if err != nil {
			return nil, noop, fmt.Errorf("read audio: %w", err)
		}
		return &speechpb.RecognitionAudio{AudioSource: &speechpb.RecognitionAudio_Content{Content: data}}, noop, nil
	}

	f, err := os.Open(audioPath)
	if err != nil {
		return nil, noop, fmt.Errorf("open audio: %w", err)
	}
	defer f.Close()

	key := speechScratchPrefix + uuid.New().String() + strings.ToLower(filepath.Ext(audioPath))
	if _, err := s.staging.Put(ctx, key, f, ContentTypeForKey(key)); err != nil {
		return nil, noop, fmt.Errorf("stage audio: %w", err)
	}
	cleanup := func() {
		dctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.staging.Delete(dctx, key); err != nil {
			s.log.Warn("scratch audio delete failed; orphan sweep will retry", "key", key, "error", err)
		}
	}
	return &speechpb.RecognitionAudio{AudioSource: &speechpb.RecognitionAudio_Uri{Uri: s.staging.URI(key)}}, cleanup, nil
}

// cancelOperation stops a server-side recognition we are no longer waiting for.
func (s *speechRecognizer) cancelOperation(name string) {
	if name == "" || s.client.LROClient == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.client.LROClient.CancelOperation(ctx, &longrunningpb.CancelOperationRequest{Name: name}); err != nil {
		s.log.Warn("cancel recognition operation failed", "operation", name, "error", err)
		return
	}
	s.log.Info("recognition operation cancelled", "operation", name)
}

func classifySpeechErr(stage string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || status.Code(err) == codes.DeadlineExceeded {
		return fmt.Errorf("speech %s: %w", stage, context.DeadlineExceeded)
	}
	return fmt.Errorf("speech %s: %w", stage, err)
}

func buildRecognitionConfig(audioPath string, opts RecognizeOptions) *speechpb.RecognitionConfig {
	lang := strings.TrimSpace(opts.LanguageCode)
	if lang == "" {
		lang = "en-US"
	}
	rc := &speechpb.RecognitionConfig{
		LanguageCode:               lang,
		Model:                      opts.Model,
		EnableAutomaticPunctuation: true,
		Encoding:                   inferSpeechEncoding(audioPath),
	}
	if opts.SampleRateHertz > 0 {
		rc.SampleRateHertz = int32(opts.SampleRateHertz)
	}
	if opts.Channels > 0 {
		rc.AudioChannelCount = int32(opts.Channels)
	}
	return rc
}

func inferSpeechEncoding(audioPath string) speechpb.RecognitionConfig_AudioEncoding {
	switch strings.ToLower(filepath.Ext(audioPath)) {
	case ".wav":
		return speechpb.RecognitionConfig_LINEAR16
	case ".flac":
		return speechpb.RecognitionConfig_FLAC
	case ".mp3":
		return speechpb.RecognitionConfig_MP3
	case ".ogg", ".opus":
		return speechpb.RecognitionConfig_OGG_OPUS
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED
	}
}

// joinTranscripts concatenates the top alternative of each result with single spaces.
func joinTranscripts(resp *speechpb.LongRunningRecognizeResponse) string {
	if resp == nil {
		return ""
	}
	parts := make([]string, 0, len(resp.Results))
	for _, r := range resp.Results {
		if r == nil || len(r.Alternatives) == 0 || r.Alternatives[0] == nil {
			continue
		}
		if txt := strings.TrimSpace(r.Alternatives[0].Transcript); txt != "" {
			parts = append(parts, txt)
		}
	}
	return strings.Join(parts, " ")
}
