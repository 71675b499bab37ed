package meetingflow

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"
	"go.temporal.io/sdk/workflow"

	types "github.com/yungbote/meetingscribe-backend/internal/domain"
	"github.com/yungbote/meetingscribe-backend/internal/modules/summarizer"
	"github.com/yungbote/meetingscribe-backend/internal/platform/apierr"
)

type fakeTranscriber struct {
	err   error
	calls int
}

func (f *fakeTranscriber) Create(_ context.Context, _, assetID uuid.UUID) (*types.Transcript, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &types.Transcript{ID: uuid.New(), AudioAssetID: assetID, Text: "hello team"}, nil
}

type fakeSummarizer struct {
	calls int
}

func (f *fakeSummarizer) Summarize(context.Context, uuid.UUID, uuid.UUID) (*summarizer.SummaryResult, error) {
	f.calls++
	return &summarizer.SummaryResult{
		Subject:     "Sync",
		ActionItems: []summarizer.ActionItemResult{{Description: "ship", Status: "pending"}},
		KeyPoints:   []summarizer.KeyPointResult{{Content: "a"}, {Content: "b"}},
	}, nil
}

func newEnv(t *testing.T, acts *Activities) *testsuite.TestWorkflowEnvironment {
	t.Helper()
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()
	env.RegisterWorkflowWithOptions(Workflow, workflow.RegisterOptions{Name: WorkflowName})
	env.RegisterActivityWithOptions(acts.Transcribe, activity.RegisterOptions{Name: ActivityTranscribe})
	env.RegisterActivityWithOptions(acts.Summarize, activity.RegisterOptions{Name: ActivitySummarize})
	return env
}

func TestWorkflow_TranscribesThenSummarizes(t *testing.T) {
	tr := &fakeTranscriber{}
	sm := &fakeSummarizer{}
	env := newEnv(t, &Activities{Transcriber: tr, Summarizer: sm})

	env.ExecuteWorkflow(Workflow, Input{UserID: uuid.New(), AssetID: uuid.New()})
	if !env.IsWorkflowCompleted() {
		t.Fatalf("workflow did not complete")
	}
	if err := env.GetWorkflowError(); err != nil {
		t.Fatalf("workflow error: %v", err)
	}
	var res Result
	if err := env.GetWorkflowResult(&res); err != nil {
		t.Fatalf("result: %v", err)
	}
	if res.TranscriptID == uuid.Nil || res.Subject != "Sync" || res.ActionItems != 1 || res.KeyPoints != 2 {
		t.Fatalf("unexpected result %+v", res)
	}
	if tr.calls != 1 || sm.calls != 1 {
		t.Fatalf("expected one call each, got transcribe=%d summarize=%d", tr.calls, sm.calls)
	}
}

func TestWorkflow_TranscriptionFailureStopsBeforeSummary(t *testing.T) {
	tr := &fakeTranscriber{err: apierr.TranscriptionFailed(fmt.Errorf("no speech recognized"))}
	sm := &fakeSummarizer{}
	env := newEnv(t, &Activities{Transcriber: tr, Summarizer: sm})

	env.ExecuteWorkflow(Workflow, Input{UserID: uuid.New(), AssetID: uuid.New()})
	err := env.GetWorkflowError()
	if err == nil {
		t.Fatalf("expected workflow error")
	}
	var appErr *temporal.ApplicationError
	if !errors.As(err, &appErr) || appErr.Type() != apierr.CodeTranscriptionFailed {
		t.Fatalf("expected application error %s, got %v", apierr.CodeTranscriptionFailed, err)
	}
	if tr.calls != 1 {
		t.Fatalf("transcription must not retry, got %d calls", tr.calls)
	}
	if sm.calls != 0 {
		t.Fatalf("summarizer should not run after a failed transcription")
	}
}

func TestWorkflow_RejectsMissingIDs(t *testing.T) {
	env := newEnv(t, &Activities{Transcriber: &fakeTranscriber{}, Summarizer: &fakeSummarizer{}})
	env.ExecuteWorkflow(Workflow, Input{})
	if env.GetWorkflowError() == nil {
		t.Fatalf("expected validation error")
	}
}

func TestStarter_Disabled(t *testing.T) {
	var s *Starter
	_, _, err := s.Process(context.Background(), uuid.New(), uuid.New())
	if !apierr.Is(err, CodeAsyncDisabled) {
		t.Fatalf("expected %s, got %v", CodeAsyncDisabled, err)
	}
}
