package gcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/yungbote/meetingscribe-backend/internal/platform/logger"
)

// BucketService is the object store gateway for audio blobs.
type BucketService interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	SignedURL(ctx context.Context, key string, ttl time.Duration, contentDisposition string) (string, error)
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
	// URI returns the gs:// form understood by other GCP services.
	URI(key string) string
	Close() error
}

type ObjectInfo struct {
	Key     string
	Size    int64
	Updated time.Time
}

type bucketService struct {
	log           *logger.Logger
	client        *storage.Client
	cfg           ObjectStorageConfig
	httpClient    *http.Client
	signAccessID  string
	putTimeout    time.Duration
	deleteTimeout time.Duration
	readTimeout   time.Duration
}

func NewBucketService(log *logger.Logger) (BucketService, error) {
	cfg, err := ResolveObjectStorageConfigFromEnv()
	if err != nil {
		return nil, fmt.Errorf("resolve object storage config: %w", err)
	}
	return NewBucketServiceWithConfig(log, cfg)
}

func NewBucketServiceWithConfig(log *logger.Logger, cfg ObjectStorageConfig) (BucketService, error) {
	if err := ValidateObjectStorageConfig(cfg); err != nil {
		return nil, fmt.Errorf("validate object storage config: %w", err)
	}
	serviceLog := log.With("service", "BucketService")

	client, err := newStorageClient(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	serviceLog.Info(
		"Object storage initialized",
		"mode", cfg.Mode,
		"compatibility_fallback", cfg.CompatibilityFallback,
		"emulator_host", cfg.EmulatorHost,
		"bucket", cfg.Bucket,
	)

	return newBucketService(serviceLog, client, cfg), nil
}

func newBucketService(log *logger.Logger, client *storage.Client, cfg ObjectStorageConfig) *bucketService {
	return &bucketService{
		log:           log,
		client:        client,
		cfg:           cfg,
		httpClient:    &http.Client{},
		signAccessID:  strings.TrimSpace(os.Getenv("GCS_SIGNING_SERVICE_ACCOUNT")),
		putTimeout:    2 * time.Minute,
		deleteTimeout: 30 * time.Second,
		readTimeout:   2 * time.Minute,
	}
}

func newStorageClient(ctx context.Context, cfg ObjectStorageConfig) (*storage.Client, error) {
	if cfg.IsEmulatorMode() {
		// The storage client reads the emulator endpoint from the environment.
		_ = os.Setenv("STORAGE_EMULATOR_HOST", cfg.EmulatorHost)
		return storage.NewClient(ctx, option.WithoutAuthentication())
	}
	opts := append(ClientOptionsFromEnv(), option.WithScopes(storage.ScopeReadWrite))
	return storage.NewClient(ctx, opts...)
}

func (bs *bucketService) Close() error {
	if bs == nil || bs.client == nil {
		return nil
	}
	return bs.client.Close()
}

func (bs *bucketService) Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	key = normalizeKey(key)
	if key == "" {
		return "", fmt.Errorf("object key required")
	}
	ctx, cancel := context.WithTimeout(ctx, bs.putTimeout)
	defer cancel()

	w := bs.client.Bucket(bs.cfg.Bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if w.ContentType == "" {
		w.ContentType = ContentTypeForKey(key)
	}
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to write %q to GCS: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to close GCS writer for %q: %w", key, err)
	}
	return bs.URI(key), nil
}

// Delete is idempotent: a missing object is not an error.
func (bs *bucketService) Delete(ctx context.Context, key string) error {
	key = normalizeKey(key)
	ctx, cancel := context.WithTimeout(ctx, bs.deleteTimeout)
	defer cancel()
	err := bs.client.Bucket(bs.cfg.Bucket).Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("failed to delete GCS object %q in bucket %q: %w", key, bs.cfg.Bucket, err)
	}
	return nil
}

func (bs *bucketService) SignedURL(ctx context.Context, key string, ttl time.Duration, contentDisposition string) (string, error) {
	key = normalizeKey(key)
	if key == "" {
		return "", fmt.Errorf("object key required")
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	if bs.cfg.IsEmulatorMode() {
		// fake-gcs does not verify signatures; hand out the media URL directly.
		u := bs.emulatorMediaURL(bs.publicEmulatorBase(), key)
		if contentDisposition != "" {
			u += "&response-content-disposition=" + url.QueryEscape(contentDisposition)
		}
		return u, nil
	}

	opts := &storage.SignedURLOptions{
		Method:  http.MethodGet,
		Expires: time.Now().Add(ttl),
		Scheme:  storage.SigningSchemeV4,
	}
	if bs.signAccessID != "" {
		opts.GoogleAccessID = bs.signAccessID
	}
	if contentDisposition != "" {
		opts.QueryParameters = url.Values{"response-content-disposition": {contentDisposition}}
	}
	signed, err := bs.client.Bucket(bs.cfg.Bucket).SignedURL(key, opts)
	if err != nil {
		return "", fmt.Errorf("sign url for %q: %w", key, err)
	}
	return signed, nil
}

func (bs *bucketService) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	key = normalizeKey(key)
	ctx2, cancel := context.WithTimeout(ctx, bs.readTimeout)

	if bs.cfg.IsEmulatorMode() {
		req, err := http.NewRequestWithContext(ctx2, http.MethodGet, bs.emulatorMediaURL(bs.cfg.EmulatorHost, key), nil)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("failed creating emulator download request: %w", err)
		}
		resp, err := bs.httpClient.Do(req)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("failed emulator download request: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
			_ = resp.Body.Close()
			cancel()
			return nil, fmt.Errorf("emulator download failed: status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(body)))
		}
		return &readCloserWithCancel{ReadCloser: resp.Body, cancel: cancel}, nil
	}

	r, err := bs.client.Bucket(bs.cfg.Bucket).Object(key).NewReader(ctx2)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to open GCS reader: %w", err)
	}
	return &readCloserWithCancel{ReadCloser: r, cancel: cancel}, nil
}

func (bs *bucketService) ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, bs.readTimeout)
	defer cancel()
	it := bs.client.Bucket(bs.cfg.Bucket).Objects(ctx, &storage.Query{Prefix: prefix})
	out := []ObjectInfo{}
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list objects under %q: %w", prefix, err)
		}
		out = append(out, ObjectInfo{Key: attrs.Name, Size: attrs.Size, Updated: attrs.Updated})
	}
	return out, nil
}

func (bs *bucketService) URI(key string) string {
	return fmt.Sprintf("gs://%s/%s", bs.cfg.Bucket, normalizeKey(key))
}

func (bs *bucketService) publicEmulatorBase() string {
	if bs.cfg.PublicBaseURL != "" {
		return bs.cfg.PublicBaseURL
	}
	return bs.cfg.EmulatorHost
}

func (bs *bucketService) emulatorMediaURL(base, key string) string {
	return fmt.Sprintf(
		"%s/storage/v1/b/%s/o/%s?alt=media",
		strings.TrimRight(base, "/"),
		url.PathEscape(bs.cfg.Bucket),
		url.PathEscape(key),
	)
}

// The reader's context must outlive the call, so cancel runs on Close.
type readCloserWithCancel struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (r *readCloserWithCancel) Close() error {
	err := r.ReadCloser.Close()
	if r.cancel != nil {
		r.cancel()
	}
	return err
}

func normalizeKey(key string) string {
	return strings.TrimLeft(strings.TrimSpace(key), "/")
}

// ContentTypeForKey maps the audio extensions we accept to their MIME types.
func ContentTypeForKey(key string) string {
	s := strings.ToLower(strings.TrimSpace(key))
	if i := strings.Index(s, "?"); i >= 0 {
		s = s[:i]
	}
	switch {
	case strings.HasSuffix(s, ".mp3"):
		return "audio/mpeg"
	case strings.HasSuffix(s, ".wav"):
		return "audio/wav"
	case strings.HasSuffix(s, ".ogg"):
		return "audio/ogg"
	case strings.HasSuffix(s, ".flac"):
		return "audio/flac"
	case strings.HasSuffix(s, ".m4a"):
		return "audio/mp4"
	case strings.HasSuffix(s, ".json"):
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
