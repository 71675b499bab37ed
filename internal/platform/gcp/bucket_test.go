package gcp

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/yungbote/meetingscribe-backend/internal/platform/logger"
)

func emulatorBucket(publicBase string) *bucketService {
	return newBucketService(logger.Nop(), nil, ObjectStorageConfig{
		Mode:          ObjectStorageModeGCSEmulator,
		EmulatorHost:  "http://fake-gcs:4443",
		Bucket:        "audio",
		PublicBaseURL: publicBase,
	})
}

func TestSignedURL_EmulatorReturnsMediaURL(t *testing.T) {
	bs := emulatorBucket("")
	got, err := bs.SignedURL(context.Background(), "/meetingscribe/abc.mp3", 15*time.Minute, `attachment; filename="a.mp3"`)
	if err != nil {
		t.Fatalf("SignedURL: %v", err)
	}
	want := "http://fake-gcs:4443/storage/v1/b/audio/o/meetingscribe%2Fabc.mp3?alt=media"
	if !strings.HasPrefix(got, want) {
		t.Fatalf("url: want prefix %q got %q", want, got)
	}
	if !strings.Contains(got, "response-content-disposition=attachment") {
		t.Fatalf("content disposition missing: %q", got)
	}
}

func TestSignedURL_EmulatorPrefersPublicBase(t *testing.T) {
	bs := emulatorBucket("http://localhost:4443")
	got, err := bs.SignedURL(context.Background(), "meetingscribe/abc.wav", 0, "")
	if err != nil {
		t.Fatalf("SignedURL: %v", err)
	}
	if !strings.HasPrefix(got, "http://localhost:4443/") {
		t.Fatalf("expected public base, got %q", got)
	}
}

func TestSignedURL_RequiresKey(t *testing.T) {
	if _, err := emulatorBucket("").SignedURL(context.Background(), "  ", time.Minute, ""); err == nil {
		t.Fatalf("expected error for empty key")
	}
}

func TestURI(t *testing.T) {
	if got := emulatorBucket("").URI("/meetingscribe/x.flac"); got != "gs://audio/meetingscribe/x.flac" {
		t.Fatalf("unexpected uri %q", got)
	}
}

func TestContentTypeForKey(t *testing.T) {
	cases := map[string]string{
		"a.MP3":      "audio/mpeg",
		"a.wav":      "audio/wav",
		"a.ogg":      "audio/ogg",
		"a.flac?x=1": "audio/flac",
		"a.m4a":      "audio/mp4",
		"a.bin":      "application/octet-stream",
	}
	for key, want := range cases {
		if got := ContentTypeForKey(key); got != want {
			t.Fatalf("%s: want %q got %q", key, want, got)
		}
	}
}
