package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestDownloadToFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			_, _ = w.Write([]byte("audio-bytes"))
		case "/gone":
			http.Error(w, "expired", http.StatusForbidden)
		}
	}))
	defer srv.Close()

	dir := t.TempDir()
	client := NewClient(0)
	ctx := context.Background()

	dst := filepath.Join(dir, "a.bin")
	n, err := DownloadToFile(ctx, client, srv.URL+"/ok", dst, 0)
	if err != nil || n != int64(len("audio-bytes")) {
		t.Fatalf("download ok: n=%d err=%v", n, err)
	}
	if b, _ := os.ReadFile(dst); string(b) != "audio-bytes" {
		t.Fatalf("unexpected content %q", b)
	}

	_, err = DownloadToFile(ctx, client, srv.URL+"/gone", filepath.Join(dir, "b.bin"), 0)
	var sc HTTPStatusCoder
	if !errors.As(err, &sc) || sc.HTTPStatusCode() != http.StatusForbidden {
		t.Fatalf("expected 403 status error, got %v", err)
	}

	_, err = DownloadToFile(ctx, client, srv.URL+"/ok", filepath.Join(dir, "c.bin"), 4)
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}
