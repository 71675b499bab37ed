package intake

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/meetingscribe-backend/internal/domain"
	"github.com/yungbote/meetingscribe-backend/internal/platform/apierr"
	"github.com/yungbote/meetingscribe-backend/internal/platform/dbctx"
	"github.com/yungbote/meetingscribe-backend/internal/platform/gcp"
)

type fakeObject struct {
	data    []byte
	updated time.Time
}

type fakeStore struct {
	mu      sync.Mutex
	objects map[string]fakeObject
	putErr  error
	deletes []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string]fakeObject{}}
}

func (s *fakeStore) Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	if s.putErr != nil {
		return "", s.putErr
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = fakeObject{data: b, updated: time.Now()}
	return s.URI(key), nil
}

func (s *fakeStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes = append(s.deletes, key)
	delete(s.objects, key)
	return nil
}

func (s *fakeStore) SignedURL(ctx context.Context, key string, ttl time.Duration, cd string) (string, error) {
	return "https://signed.example/" + key + "?X-Goog-Signature=x&cd=" + cd, nil
}

func (s *fakeStore) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.objects[key]
	if !ok {
		return nil, errors.New("not found")
	}
	return io.NopCloser(bytes.NewReader(o.data)), nil
}

func (s *fakeStore) ListObjects(ctx context.Context, prefix string) ([]gcp.ObjectInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []gcp.ObjectInfo{}
	for k, o := range s.objects {
		if strings.HasPrefix(k, prefix) {
			out = append(out, gcp.ObjectInfo{Key: k, Size: int64(len(o.data)), Updated: o.updated})
		}
	}
	return out, nil
}

func (s *fakeStore) URI(key string) string { return "gs://test-bucket/" + key }
func (s *fakeStore) Close() error          { return nil }

func (s *fakeStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

func (s *fakeStore) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[key]
	return ok
}

type fakeProber struct {
	seconds float64
	err     error
	paths   []string
}

func (p *fakeProber) ProbeDuration(ctx context.Context, path string) (float64, error) {
	p.paths = append(p.paths, path)
	return p.seconds, p.err
}

// racingLedger reads like the real ledger but loses every write, as if another upload got there first.
type racingLedger struct {
	QuotaLedger
}

func (r racingLedger) Update(dbc dbctx.Context, userID uuid.UUID, delta float64) (*types.Quota, error) {
	return nil, apierr.QuotaExceeded(errors.New("lost the race"))
}
