package app

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/yungbote/meetingscribe-backend/internal/platform/gcp"
	"github.com/yungbote/meetingscribe-backend/internal/platform/logger"
)

func TestClassifyStorageProviderBootstrapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want StorageProviderBootstrapErrorCode
	}{
		{"invalid mode", &gcp.ObjectStorageConfigError{Code: gcp.ObjectStorageConfigErrorInvalidMode, Value: "bad"}, StorageProviderBootstrapErrorInvalidMode},
		{"missing bucket", &gcp.ObjectStorageConfigError{Code: gcp.ObjectStorageConfigErrorMissingBucket}, StorageProviderBootstrapErrorMissingBucket},
		{"missing emulator host", &gcp.ObjectStorageConfigError{Code: gcp.ObjectStorageConfigErrorMissingEmulatorHost}, StorageProviderBootstrapErrorMissingEmulatorHost},
		{"invalid url", &gcp.ObjectStorageConfigError{Code: gcp.ObjectStorageConfigErrorInvalidURL, Field: "STORAGE_EMULATOR_HOST", Value: "fake-gcs:4443"}, StorageProviderBootstrapErrorInvalidURL},
		{"connect failed", errors.New("dial tcp: connection refused"), StorageProviderBootstrapErrorConnectFailed},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := classifyStorageProviderBootstrapError(gcp.ObjectStorageConfig{Mode: gcp.ObjectStorageModeGCS}, tc.err)
			var got *StorageProviderBootstrapError
			if !errors.As(err, &got) {
				t.Fatalf("expected StorageProviderBootstrapError, got=%T", err)
			}
			if got.Code != tc.want {
				t.Fatalf("code: want=%q got=%q", tc.want, got.Code)
			}
			if !errors.Is(err, tc.err) {
				t.Fatalf("cause not preserved")
			}
		})
	}
}

func setStorageEnv(t *testing.T, mode, emulatorHost, bucket string) {
	t.Helper()
	t.Setenv("OBJECT_STORAGE_MODE", mode)
	t.Setenv("STORAGE_EMULATOR_HOST", emulatorHost)
	t.Setenv("AUDIO_GCS_BUCKET_NAME", bucket)
	t.Setenv("OBJECT_STORAGE_PUBLIC_BASE_URL", "")
}

func stubBucketFactory(t *testing.T) (*gcp.ObjectStorageConfig, gcp.BucketService) {
	t.Helper()
	orig := newBucketServiceWithConfig
	t.Cleanup(func() { newBucketServiceWithConfig = orig })

	captured := &gcp.ObjectStorageConfig{}
	expected := &testBucketService{}
	newBucketServiceWithConfig = func(_ *logger.Logger, cfg gcp.ObjectStorageConfig) (gcp.BucketService, error) {
		*captured = cfg
		return expected, nil
	}
	return captured, expected
}

func TestResolveBucketServiceInvalidMode(t *testing.T) {
	setStorageEnv(t, "s3", "", "audio")

	_, err := resolveBucketService(logger.Nop())
	if got := storageProviderBootstrapErrorCode(err); err == nil || got != StorageProviderBootstrapErrorInvalidMode {
		t.Fatalf("want invalid_mode, got err=%v code=%q", err, got)
	}
}

func TestResolveBucketServiceMissingBucket(t *testing.T) {
	setStorageEnv(t, "gcs", "", "")

	_, err := resolveBucketService(logger.Nop())
	if got := storageProviderBootstrapErrorCode(err); err == nil || got != StorageProviderBootstrapErrorMissingBucket {
		t.Fatalf("want missing_bucket, got err=%v code=%q", err, got)
	}
}

func TestResolveBucketServiceGCSMode(t *testing.T) {
	setStorageEnv(t, "gcs", "", "audio")
	captured, expected := stubBucketFactory(t)

	got, err := resolveBucketService(logger.Nop())
	if err != nil {
		t.Fatalf("resolveBucketService: %v", err)
	}
	if got != expected {
		t.Fatalf("bucket: expected stub bucket instance")
	}
	if captured.Mode != gcp.ObjectStorageModeGCS || captured.Bucket != "audio" {
		t.Fatalf("unexpected config %+v", *captured)
	}
}

func TestResolveBucketServiceEmulatorFallback(t *testing.T) {
	setStorageEnv(t, "", "http://fake-gcs:4443/", "audio")
	captured, _ := stubBucketFactory(t)

	if _, err := resolveBucketService(logger.Nop()); err != nil {
		t.Fatalf("resolveBucketService: %v", err)
	}
	if captured.Mode != gcp.ObjectStorageModeGCSEmulator || !captured.CompatibilityFallback {
		t.Fatalf("expected emulator fallback, got %+v", *captured)
	}
	if captured.EmulatorHost != "http://fake-gcs:4443" {
		t.Fatalf("emulator host: got=%q", captured.EmulatorHost)
	}
}

func TestResolveBucketServiceMissingEmulatorHost(t *testing.T) {
	setStorageEnv(t, "gcs_emulator", "", "audio")

	_, err := resolveBucketService(logger.Nop())
	if got := storageProviderBootstrapErrorCode(err); err == nil || got != StorageProviderBootstrapErrorMissingEmulatorHost {
		t.Fatalf("want missing_emulator_host, got err=%v code=%q", err, got)
	}
}

func TestResolveBucketServiceConnectFailed(t *testing.T) {
	setStorageEnv(t, "gcs", "", "audio")
	orig := newBucketServiceWithConfig
	t.Cleanup(func() { newBucketServiceWithConfig = orig })
	newBucketServiceWithConfig = func(*logger.Logger, gcp.ObjectStorageConfig) (gcp.BucketService, error) {
		return nil, errors.New("credentials: could not find default credentials")
	}

	_, err := resolveBucketService(logger.Nop())
	if got := storageProviderBootstrapErrorCode(err); err == nil || got != StorageProviderBootstrapErrorConnectFailed {
		t.Fatalf("want connect_failed, got err=%v code=%q", err, got)
	}
}

type testBucketService struct{}

func (testBucketService) Put(context.Context, string, io.Reader, string) (string, error) {
	return "", nil
}
func (testBucketService) Delete(context.Context, string) error { return nil }
func (testBucketService) SignedURL(context.Context, string, time.Duration, string) (string, error) {
	return "", nil
}
func (testBucketService) Download(context.Context, string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("")), nil
}
func (testBucketService) ListObjects(context.Context, string) ([]gcp.ObjectInfo, error) {
	return nil, nil
}
func (testBucketService) URI(key string) string { return "gs://test/" + key }
func (testBucketService) Close() error          { return nil }
