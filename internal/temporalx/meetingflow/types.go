package meetingflow

import (
	"github.com/google/uuid"
)

const (
	WorkflowName       = "process_meeting"
	ActivityTranscribe = "process_meeting_transcribe"
	ActivitySummarize  = "process_meeting_summarize"
)

type Input struct {
	UserID  uuid.UUID `json:"user_id"`
	AssetID uuid.UUID `json:"asset_id"`
}

type TranscribeResult struct {
	TranscriptID uuid.UUID `json:"transcript_id"`
	Chars        int       `json:"chars"`
}

type SummarizeResult struct {
	Subject     string `json:"subject"`
	ActionItems int    `json:"action_items"`
	KeyPoints   int    `json:"key_points"`
}

type Result struct {
	TranscriptID uuid.UUID `json:"transcript_id"`
	Subject      string    `json:"subject"`
	ActionItems  int       `json:"action_items"`
	KeyPoints    int       `json:"key_points"`
}

// WorkflowID is stable per asset so a second request joins the running execution.
func WorkflowID(assetID uuid.UUID) string {
	return "process-meeting-" + assetID.String()
}
