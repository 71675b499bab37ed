package transcription

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"

	types "github.com/yungbote/meetingscribe-backend/internal/domain"
	"github.com/yungbote/meetingscribe-backend/internal/platform/apierr"
	"github.com/yungbote/meetingscribe-backend/internal/platform/gcp"
)

type fakeAssets struct {
	asset *types.AudioAsset
	url   string
}

func (f *fakeAssets) GetByID(_ context.Context, userID, assetID uuid.UUID) (*types.AudioAsset, error) {
	if f.asset == nil || f.asset.ID != assetID || f.asset.UserID != userID {
		return nil, apierr.NotFound(fmt.Errorf("audio asset not found"))
	}
	return f.asset, nil
}

func (f *fakeAssets) GetURL(ctx context.Context, userID, assetID uuid.UUID) (string, error) {
	if _, err := f.GetByID(ctx, userID, assetID); err != nil {
		return "", err
	}
	return f.url, nil
}

// fakeMedia hands out real temp dirs and records them so tests can check cleanup.
type fakeMedia struct {
	root       string
	convertErr error

	mu   sync.Mutex
	dirs []string
}

func (f *fakeMedia) WorkDir(_ context.Context, prefix string) (string, func(), error) {
	dir, err := os.MkdirTemp(f.root, prefix+"-")
	if err != nil {
		return "", func() {}, err
	}
	f.mu.Lock()
	f.dirs = append(f.dirs, dir)
	f.mu.Unlock()
	return dir, func() { _ = os.RemoveAll(dir) }, nil
}

func (f *fakeMedia) ConvertForRecognition(_ context.Context, in, out string) (string, error) {
	if f.convertErr != nil {
		return "", f.convertErr
	}
	b, err := os.ReadFile(in)
	if err != nil {
		return "", err
	}
	return out, os.WriteFile(out, b, 0o600)
}

func (f *fakeMedia) leftovers(t *testing.T) []string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, d := range f.dirs {
		if _, err := os.Stat(d); err == nil {
			out = append(out, filepath.Base(d))
		}
	}
	return out
}

type fakeRecognizer struct {
	text string
	err  error
	// block waits for release or ctx before answering.
	block   chan struct{}
	calls   atomic.Int32
	lastOpt gcp.RecognizeOptions
}

func (f *fakeRecognizer) Recognize(ctx context.Context, audioPath string, opts gcp.RecognizeOptions) (string, error) {
	f.calls.Add(1)
	f.lastOpt = opts
	if _, err := os.Stat(audioPath); err != nil {
		return "", err
	}
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return "", fmt.Errorf("speech wait: %w", ctx.Err())
		}
	}
	return f.text, f.err
}

func (f *fakeRecognizer) Close() error { return nil }

func audioServer(t *testing.T, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte("ID3-fake-audio"))
	}))
	t.Cleanup(srv.Close)
	return srv
}
