package transcription

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/meetingscribe-backend/internal/data/repos"
	"github.com/yungbote/meetingscribe-backend/internal/data/repos/testutil"
	types "github.com/yungbote/meetingscribe-backend/internal/domain"
	"github.com/yungbote/meetingscribe-backend/internal/platform/apierr"
	"github.com/yungbote/meetingscribe-backend/internal/platform/lock"
)

type harness struct {
	uc     Usecases
	asset  *types.AudioAsset
	media  *fakeMedia
	rec    *fakeRecognizer
	locker lock.Locker
}

func newHarness(t *testing.T, status int, rec *fakeRecognizer, timeout time.Duration) *harness {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	ctx := context.Background()

	u := testutil.SeedUser(t, ctx, db, "")
	asset := testutil.SeedAudioAsset(t, ctx, db, u.ID, 90)
	srv := audioServer(t, status)
	media := &fakeMedia{root: t.TempDir()}
	locker := lock.NewLocal()

	uc := New(UsecasesDeps{
		DB:          db,
		Log:         log,
		Assets:      &fakeAssets{asset: asset, url: srv.URL + "/blob"},
		Transcripts: repos.NewTranscriptRepo(db, log),
		Media:       media,
		Recognizer:  rec,
		Locker:      locker,
		HTTP:        srv.Client(),
		Timeout:     timeout,
	})
	return &harness{uc: uc, asset: asset, media: media, rec: rec, locker: locker}
}

func (h *harness) create() (*types.Transcript, error) {
	return h.uc.Create(context.Background(), h.asset.UserID, h.asset.ID)
}

func TestCreate_StoresTranscriptAndReusesIt(t *testing.T) {
	rec := &fakeRecognizer{text: "  hello team, let's ship it  "}
	h := newHarness(t, http.StatusOK, rec, time.Minute)

	first, err := h.create()
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if first.Text != "hello team, let's ship it" {
		t.Fatalf("unexpected text %q", first.Text)
	}
	if rec.lastOpt.SampleRateHertz != 16000 || rec.lastOpt.Channels != 1 || rec.lastOpt.LanguageCode != "en-US" {
		t.Fatalf("unexpected recognition options %+v", rec.lastOpt)
	}

	second, err := h.create()
	if err != nil {
		t.Fatalf("second Create: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected stored transcript %s, got %s", first.ID, second.ID)
	}
	if n := rec.calls.Load(); n != 1 {
		t.Fatalf("expected one recognition, got %d", n)
	}
	if left := h.media.leftovers(t); len(left) != 0 {
		t.Fatalf("work dirs not cleaned: %v", left)
	}

	got, err := h.uc.Get(context.Background(), h.asset.UserID, h.asset.ID)
	if err != nil || got == nil || got.ID != first.ID {
		t.Fatalf("Get: got=%+v err=%v", got, err)
	}
}

func TestGet_NoTranscriptYet(t *testing.T) {
	h := newHarness(t, http.StatusOK, &fakeRecognizer{text: "x"}, time.Minute)
	got, err := h.uc.Get(context.Background(), h.asset.UserID, h.asset.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Fatalf("expected no transcript, got %+v", got)
	}
}

func TestCreate_ConcurrentCallersShareOneRecognition(t *testing.T) {
	rec := &fakeRecognizer{text: "shared", block: make(chan struct{})}
	h := newHarness(t, http.StatusOK, rec, time.Minute)

	const callers = 6
	var wg sync.WaitGroup
	ids := make([]uuid.UUID, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tr, err := h.create()
			errs[i] = err
			if tr != nil {
				ids[i] = tr.ID
			}
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(rec.block)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("caller %d: %v", i, err)
		}
		if ids[i] != ids[0] {
			t.Fatalf("caller %d got transcript %s, want %s", i, ids[i], ids[0])
		}
	}
	if n := rec.calls.Load(); n != 1 {
		t.Fatalf("expected one recognition, got %d", n)
	}
}

func TestCreate_LockHeldElsewhere(t *testing.T) {
	rec := &fakeRecognizer{text: "never"}
	h := newHarness(t, http.StatusOK, rec, time.Minute)

	release, err := h.locker.TryAcquire(context.Background(), lockKey(h.asset.ID), time.Minute)
	if err != nil {
		t.Fatalf("pre-acquire: %v", err)
	}
	defer release()

	_, err = h.create()
	var ae *apierr.Error
	if !errors.As(err, &ae) || ae.Status != http.StatusConflict || ae.Code != CodeTranscriptionInProgress {
		t.Fatalf("expected 409 %s, got %v", CodeTranscriptionInProgress, err)
	}
	if rec.calls.Load() != 0 {
		t.Fatalf("recognizer must not run while locked elsewhere")
	}
}

func TestCreate_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		rec     *fakeRecognizer
		timeout time.Duration
		convert error
		code    string
	}{
		{name: "download forbidden", status: http.StatusForbidden, rec: &fakeRecognizer{text: "x"}, code: apierr.CodeNetworkError},
		{name: "conversion fails", status: http.StatusOK, rec: &fakeRecognizer{text: "x"}, convert: errors.New("ffmpeg exit 1"), code: apierr.CodeTranscriptionFailed},
		{name: "recognizer error", status: http.StatusOK, rec: &fakeRecognizer{err: errors.New("unavailable")}, code: apierr.CodeNetworkError},
		{name: "no speech", status: http.StatusOK, rec: &fakeRecognizer{text: "   "}, code: apierr.CodeTranscriptionFailed},
		{name: "deadline", status: http.StatusOK, rec: &fakeRecognizer{block: make(chan struct{})}, timeout: 30 * time.Millisecond, code: apierr.CodeTranscriptionTimeout},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			timeout := tc.timeout
			if timeout == 0 {
				timeout = time.Minute
			}
			h := newHarness(t, tc.status, tc.rec, timeout)
			h.media.convertErr = tc.convert

			_, err := h.create()
			if !apierr.Is(err, tc.code) {
				t.Fatalf("expected %s, got %v", tc.code, err)
			}
			got, err := h.uc.Get(context.Background(), h.asset.UserID, h.asset.ID)
			if err != nil || got != nil {
				t.Fatalf("no transcript should be stored: got=%+v err=%v", got, err)
			}
			if left := h.media.leftovers(t); len(left) != 0 {
				t.Fatalf("work dirs not cleaned: %v", left)
			}
		})
	}
}

func TestCreate_OtherUsersAsset(t *testing.T) {
	h := newHarness(t, http.StatusOK, &fakeRecognizer{text: "x"}, time.Minute)
	_, err := h.uc.Create(context.Background(), uuid.New(), h.asset.ID)
	if !apierr.Is(err, apierr.CodeNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
}
