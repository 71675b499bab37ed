package gcp

import (
	"context"
	"errors"
	"testing"

	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestJoinTranscripts_UsesTopAlternativeAndSkipsBlanks(t *testing.T) {
	resp := &speechpb.LongRunningRecognizeResponse{
		Results: []*speechpb.SpeechRecognitionResult{
			{Alternatives: []*speechpb.SpeechRecognitionAlternative{{Transcript: " hello there "}, {Transcript: "ignored"}}},
			{Alternatives: []*speechpb.SpeechRecognitionAlternative{{Transcript: "   "}}},
			{},
			{Alternatives: []*speechpb.SpeechRecognitionAlternative{{Transcript: "general kenobi"}}},
		},
	}
	if got := joinTranscripts(resp); got != "hello there general kenobi" {
		t.Fatalf("unexpected transcript %q", got)
	}
	if got := joinTranscripts(nil); got != "" {
		t.Fatalf("nil response must give empty text, got %q", got)
	}
}

func TestBuildRecognitionConfig_Defaults(t *testing.T) {
	rc := buildRecognitionConfig("/tmp/a.flac", RecognizeOptions{SampleRateHertz: 16000, Channels: 1})
	if rc.LanguageCode != "en-US" {
		t.Fatalf("language: %q", rc.LanguageCode)
	}
	if rc.Encoding != speechpb.RecognitionConfig_FLAC {
		t.Fatalf("encoding: %v", rc.Encoding)
	}
	if rc.SampleRateHertz != 16000 || rc.AudioChannelCount != 1 {
		t.Fatalf("rate/channels: %d/%d", rc.SampleRateHertz, rc.AudioChannelCount)
	}
}

func TestInferSpeechEncoding(t *testing.T) {
	cases := map[string]speechpb.RecognitionConfig_AudioEncoding{
		"a.wav":  speechpb.RecognitionConfig_LINEAR16,
		"a.FLAC": speechpb.RecognitionConfig_FLAC,
		"a.mp3":  speechpb.RecognitionConfig_MP3,
		"a.ogg":  speechpb.RecognitionConfig_OGG_OPUS,
		"a.m4a":  speechpb.RecognitionConfig_ENCODING_UNSPECIFIED,
	}
	for path, want := range cases {
		if got := inferSpeechEncoding(path); got != want {
			t.Fatalf("%s: want %v got %v", path, want, got)
		}
	}
}

func TestClassifySpeechErr_MapsDeadlines(t *testing.T) {
	if err := classifySpeechErr("wait", status.Error(codes.DeadlineExceeded, "slow")); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("grpc deadline should map to context.DeadlineExceeded: %v", err)
	}
	if err := classifySpeechErr("wait", context.DeadlineExceeded); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("context deadline should be preserved: %v", err)
	}
	if err := classifySpeechErr("start", status.Error(codes.Unavailable, "down")); errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("unavailable must not look like a deadline: %v", err)
	}
}
