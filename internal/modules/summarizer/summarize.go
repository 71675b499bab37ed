package summarizer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/meetingscribe-backend/internal/observability"
	"github.com/yungbote/meetingscribe-backend/internal/platform/apierr"
	"github.com/yungbote/meetingscribe-backend/internal/platform/dbctx"
)

// Summarize runs the configured summarization path for the asset's transcript.
func (u Usecases) Summarize(ctx context.Context, userID, assetID uuid.UUID) (*SummaryResult, error) {
	if u.deps.Mode == ModeSplit {
		return u.SummarizeSplit(ctx, userID, assetID)
	}
	return u.run(ctx, "summarizer.Summarize", userID, assetID, u.generateSingle)
}

// SummarizeSplit asks for subject, action items and key points in three separate calls.
func (u Usecases) SummarizeSplit(ctx context.Context, userID, assetID uuid.UUID) (*SummaryResult, error) {
	return u.run(ctx, "summarizer.SummarizeSplit", userID, assetID, u.generateSplit)
}

// Get returns the stored summary, or nil when the asset has none.
func (u Usecases) Get(ctx context.Context, userID, assetID uuid.UUID) (*SummaryResult, error) {
	t, err := u.deps.Transcripts.Get(ctx, userID, assetID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, nil
	}
	s, err := u.deps.Summaries.GetByTranscriptID(dbctx.Of(ctx), t.ID)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "load_summary_failed", err)
	}
	if s == nil {
		return nil, nil
	}
	return resultFromModel(s), nil
}

type generateFunc func(ctx context.Context, transcript string) (*SummaryResult, []byte, error)

func (u Usecases) run(ctx context.Context, spanName string, userID, assetID uuid.UUID, gen generateFunc) (out *SummaryResult, err error) {
	ctx, span := observability.StartSpan(ctx, spanName, attribute.String("asset_id", assetID.String()))
	defer func() { observability.EndSpan(span, err) }()

	t, err := u.deps.Transcripts.Get(ctx, userID, assetID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, apierr.NotFound(fmt.Errorf("no transcript for audio asset %s", assetID))
	}

	result, raw, err := gen(ctx, t.Text)
	if err != nil {
		return nil, err
	}

	row := result.toModel()
	row.TranscriptID = t.ID
	row.RawOutput = datatypes.JSON(raw)
	if err := u.deps.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return u.deps.Summaries.Replace(dbctx.Context{Ctx: ctx, Tx: tx}, row)
	}); err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "save_summary_failed", err)
	}
	if u.deps.Log != nil {
		u.deps.Log.Info("summary stored",
			"asset_id", assetID,
			"summary_id", row.ID,
			"action_items", len(result.ActionItems),
			"key_points", len(result.KeyPoints),
		)
	}
	return result, nil
}

func (u Usecases) complete(ctx context.Context, system, transcript string) (string, error) {
	out, err := u.deps.LLM.Complete(ctx, system, transcriptPrompt(transcript))
	if err != nil {
		return "", apierr.NetworkError(fmt.Errorf("language model: %w", err))
	}
	return out, nil
}

func (u Usecases) generateSingle(ctx context.Context, transcript string) (*SummaryResult, []byte, error) {
	raw, err := u.complete(ctx, summarySystemPrompt, transcript)
	if err != nil {
		return nil, nil, err
	}
	result, body, err := parseSummary(raw)
	if err != nil {
		u.logMalformed(raw, err)
		return nil, nil, apierr.MalformedModelOutput(err)
	}
	return result, body, nil
}

func (u Usecases) generateSplit(ctx context.Context, transcript string) (*SummaryResult, []byte, error) {
	var subject struct {
		Subject string `json:"subject"`
	}
	var items struct {
		ActionItems []ActionItemResult `json:"action_items"`
	}
	var points struct {
		KeyPoints []KeyPointResult `json:"key_points"`
	}
	parts := []struct {
		system string
		dst    any
	}{
		{subjectSystemPrompt, &subject},
		{actionItemsSystemPrompt, &items},
		{keyPointsSystemPrompt, &points},
	}
	for _, p := range parts {
		raw, err := u.complete(ctx, p.system, transcript)
		if err != nil {
			return nil, nil, err
		}
		if _, err := decodeObject(raw, p.dst); err != nil {
			u.logMalformed(raw, err)
			return nil, nil, apierr.MalformedModelOutput(err)
		}
	}

	result := &SummaryResult{
		Subject:     subject.Subject,
		ActionItems: items.ActionItems,
		KeyPoints:   points.KeyPoints,
	}
	if err := normalize(result); err != nil {
		return nil, nil, apierr.MalformedModelOutput(err)
	}
	body, err := json.Marshal(result)
	if err != nil {
		return nil, nil, apierr.New(http.StatusInternalServerError, "encode_summary_failed", err)
	}
	return result, body, nil
}

func (u Usecases) logMalformed(raw string, err error) {
	if u.deps.Log == nil {
		return
	}
	u.deps.Log.Warn("malformed model output", "error", err, "preview", previewOf(raw, 200))
}

// previewOf returns at most limit bytes of s without splitting a rune.
func previewOf(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
