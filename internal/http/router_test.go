package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/yungbote/meetingscribe-backend/internal/domain"
	httpH "github.com/yungbote/meetingscribe-backend/internal/http/handlers"
	httpMW "github.com/yungbote/meetingscribe-backend/internal/http/middleware"
	"github.com/yungbote/meetingscribe-backend/internal/http/response"
	"github.com/yungbote/meetingscribe-backend/internal/modules/intake"
	"github.com/yungbote/meetingscribe-backend/internal/modules/summarizer"
	"github.com/yungbote/meetingscribe-backend/internal/modules/users"
	"github.com/yungbote/meetingscribe-backend/internal/platform/apierr"
	"github.com/yungbote/meetingscribe-backend/internal/platform/dbctx"
	"github.com/yungbote/meetingscribe-backend/internal/platform/logger"
	"github.com/yungbote/meetingscribe-backend/internal/temporalx/meetingflow"
)

var testUser = uuid.MustParse("0b5d1f8e-0000-4000-8000-000000000001")

type fakeTokens struct{}

func (fakeTokens) ParseAccessToken(token string) (uuid.UUID, error) {
	if token == "good" {
		return testUser, nil
	}
	return uuid.Nil, errors.New("bad token")
}

type fakeUsers struct{}

func (fakeUsers) Signup(_ context.Context, in users.SignupInput) (*types.User, error) {
	if in.Email == "taken@example.com" {
		return nil, apierr.AlreadyExists(errors.New("email is already in use"))
	}
	return &types.User{ID: uuid.New(), Email: in.Email, Password: "hash"}, nil
}

func (fakeUsers) Login(_ context.Context, email, password string, _ bool) (*users.Tokens, error) {
	if password != "pw" {
		return nil, apierr.New(http.StatusUnauthorized, users.CodeInvalidCredentials, errors.New("invalid email or password"))
	}
	return &users.Tokens{Access: "a", Refresh: "r", ExpiresIn: 28800}, nil
}

func (fakeUsers) Refresh(context.Context, string) (*users.Tokens, error) {
	return &users.Tokens{Access: "a2", Refresh: "r2", ExpiresIn: 28800}, nil
}

type fakeQuota struct{}

func (fakeQuota) Get(_ dbctx.Context, userID uuid.UUID) (*types.Quota, error) {
	return &types.Quota{UserID: userID, MaxMinutes: 60, UsedMinutes: 12.5}, nil
}

type fakeAudio struct {
	uploadErr error
	uploaded  []string
}

func (f *fakeAudio) Upload(_ context.Context, in intake.UploadInput) (*types.AudioAsset, error) {
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	b, _ := io.ReadAll(in.File)
	f.uploaded = append(f.uploaded, in.FileName)
	return &types.AudioAsset{ID: uuid.New(), UserID: in.UserID, Name: in.FileName, SizeBytes: int64(len(b))}, nil
}

func (f *fakeAudio) GetURL(_ context.Context, _, assetID uuid.UUID) (string, error) {
	return "", apierr.NotFound(fmt.Errorf("audio asset %s not found", assetID))
}

func (f *fakeAudio) List(context.Context, uuid.UUID) ([]*types.AudioAsset, error) {
	return nil, errors.New("db down")
}

func (f *fakeAudio) Delete(context.Context, uuid.UUID, uuid.UUID) error { return nil }

type fakeTranscripts struct{}

func (fakeTranscripts) Create(_ context.Context, _, assetID uuid.UUID) (*types.Transcript, error) {
	return nil, apierr.TranscriptionTimeout(errors.New("speech recognition exceeded 5m0s"))
}

func (fakeTranscripts) Get(context.Context, uuid.UUID, uuid.UUID) (*types.Transcript, error) {
	return nil, nil
}

type fakeSummaries struct{}

func (fakeSummaries) Summarize(context.Context, uuid.UUID, uuid.UUID) (*summarizer.SummaryResult, error) {
	return nil, apierr.MalformedModelOutput(errors.New("model output is not a single JSON object"))
}

func (fakeSummaries) Get(context.Context, uuid.UUID, uuid.UUID) (*summarizer.SummaryResult, error) {
	return nil, nil
}

type testServer struct {
	engine *gin.Engine
	audio  *fakeAudio
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.Nop()
	audio := &fakeAudio{}
	var starter *meetingflow.Starter
	engine := NewRouter(RouterConfig{
		Log:                  log,
		AuthMiddleware:       httpMW.NewAuthMiddleware(log, fakeTokens{}),
		HealthHandler:        httpH.NewHealthHandler(),
		UserHandler:          httpH.NewUserHandler(log, fakeUsers{}, fakeQuota{}),
		AudioHandler:         httpH.NewAudioHandler(log, audio),
		TranscriptionHandler: httpH.NewTranscriptionHandler(log, fakeTranscripts{}),
		SummarizerHandler:    httpH.NewSummarizerHandler(log, fakeSummaries{}),
		MeetingHandler:       httpH.NewMeetingHandler(log, starter),
	})
	return &testServer{engine: engine, audio: audio}
}

func (s *testServer) do(t *testing.T, method, path string, body io.Reader, contentType string, auth bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if auth {
		req.Header.Set("Authorization", "Bearer good")
	}
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env response.ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode error envelope: %v body=%s", err, rec.Body.String())
	}
	return env.Error.Code
}

func multipartBody(t *testing.T, field, name string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, name)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	_, _ = part.Write(content)
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func TestHealthcheck(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/healthcheck", nil, "", false)
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("unexpected healthcheck %d %q", rec.Code, rec.Body.String())
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/api/audio-files/", "/api/users/me/quota/", "/api/transcriptions/" + uuid.NewString() + "/"} {
		rec := s.do(t, http.MethodGet, path, nil, "", false)
		if rec.Code != http.StatusUnauthorized || errorCode(t, rec) != "unauthorized" {
			t.Fatalf("%s: expected 401 unauthorized, got %d %s", path, rec.Code, rec.Body.String())
		}
	}
}

func TestUserRoutes(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/users/signup/", bytes.NewBufferString(`{"email":"a@example.com","password":"pw","first_name":"A","last_name":"B"}`), "application/json", false)
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup: %d %s", rec.Code, rec.Body.String())
	}
	if bytes.Contains(rec.Body.Bytes(), []byte("hash")) {
		t.Fatalf("password hash leaked: %s", rec.Body.String())
	}

	rec = s.do(t, http.MethodPost, "/api/users/signup/", bytes.NewBufferString(`{"email":"taken@example.com"}`), "application/json", false)
	if rec.Code != http.StatusConflict || errorCode(t, rec) != apierr.CodeAlreadyExists {
		t.Fatalf("duplicate signup: %d %s", rec.Code, rec.Body.String())
	}

	rec = s.do(t, http.MethodPost, "/api/users/login/", bytes.NewBufferString(`{"email":"a@example.com","password":"nope"}`), "application/json", false)
	if rec.Code != http.StatusUnauthorized || errorCode(t, rec) != users.CodeInvalidCredentials {
		t.Fatalf("bad login: %d %s", rec.Code, rec.Body.String())
	}

	rec = s.do(t, http.MethodPost, "/api/users/login/", bytes.NewBufferString(`{"email":"a@example.com","password":"pw"}`), "application/json", false)
	var tok users.Tokens
	if rec.Code != http.StatusOK || json.Unmarshal(rec.Body.Bytes(), &tok) != nil || tok.Access != "a" || tok.ExpiresIn != 28800 {
		t.Fatalf("login: %d %s", rec.Code, rec.Body.String())
	}

	rec = s.do(t, http.MethodGet, "/api/users/me/quota/", nil, "", true)
	if rec.Code != http.StatusOK || !bytes.Contains(rec.Body.Bytes(), []byte(`"used_minutes":12.5`)) {
		t.Fatalf("quota: %d %s", rec.Code, rec.Body.String())
	}
}

func TestAudioRoutes(t *testing.T) {
	s := newTestServer(t)

	body, ct := multipartBody(t, "audio_file", "standup.mp3", []byte("ID3-audio"))
	rec := s.do(t, http.MethodPost, "/api/audio-files/", body, ct, true)
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload: %d %s", rec.Code, rec.Body.String())
	}
	if len(s.audio.uploaded) != 1 || s.audio.uploaded[0] != "standup.mp3" {
		t.Fatalf("unexpected uploads %v", s.audio.uploaded)
	}

	body, ct = multipartBody(t, "file", "retro.wav", []byte("RIFF"))
	rec = s.do(t, http.MethodPost, "/api/audio-files/", body, ct, true)
	if rec.Code != http.StatusCreated || len(s.audio.uploaded) != 2 || s.audio.uploaded[1] != "retro.wav" {
		t.Fatalf("fallback field: %d %s", rec.Code, rec.Body.String())
	}

	body, ct = multipartBody(t, "other", "standup.mp3", []byte("x"))
	rec = s.do(t, http.MethodPost, "/api/audio-files/", body, ct, true)
	if rec.Code != http.StatusBadRequest || errorCode(t, rec) != apierr.CodeInvalidInput {
		t.Fatalf("missing file field: %d %s", rec.Code, rec.Body.String())
	}

	s.audio.uploadErr = apierr.QuotaExceeded(errors.New("needs 10.02 minutes, 10.00 remaining"))
	body, ct = multipartBody(t, "file", "long.wav", []byte("RIFF"))
	rec = s.do(t, http.MethodPost, "/api/audio-files/", body, ct, true)
	if rec.Code != http.StatusBadRequest || errorCode(t, rec) != apierr.CodeQuotaExceeded {
		t.Fatalf("over quota: %d %s", rec.Code, rec.Body.String())
	}

	rec = s.do(t, http.MethodGet, "/api/audio-files/"+uuid.NewString()+"/", nil, "", true)
	if rec.Code != http.StatusNotFound || errorCode(t, rec) != apierr.CodeNotFound {
		t.Fatalf("missing asset url: %d %s", rec.Code, rec.Body.String())
	}

	rec = s.do(t, http.MethodGet, "/api/audio-files/not-a-uuid/", nil, "", true)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id: %d %s", rec.Code, rec.Body.String())
	}

	rec = s.do(t, http.MethodGet, "/api/audio-files/", nil, "", true)
	if rec.Code != http.StatusInternalServerError || errorCode(t, rec) != "list_failed" {
		t.Fatalf("list failure: %d %s", rec.Code, rec.Body.String())
	}

	rec = s.do(t, http.MethodDelete, "/api/audio-files/"+uuid.NewString()+"/", nil, "", true)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: %d %s", rec.Code, rec.Body.String())
	}
}

func TestTranscriptionAndSummaryRoutes(t *testing.T) {
	s := newTestServer(t)
	asset := uuid.NewString()

	rec := s.do(t, http.MethodPost, "/api/transcriptions/"+asset+"/", nil, "", true)
	if rec.Code != http.StatusGatewayTimeout || errorCode(t, rec) != apierr.CodeTranscriptionTimeout {
		t.Fatalf("transcribe timeout: %d %s", rec.Code, rec.Body.String())
	}

	rec = s.do(t, http.MethodGet, "/api/transcriptions/"+asset+"/", nil, "", true)
	if rec.Code != http.StatusOK || !bytes.Contains(rec.Body.Bytes(), []byte("Transcription not found")) {
		t.Fatalf("missing transcript: %d %s", rec.Code, rec.Body.String())
	}

	rec = s.do(t, http.MethodPost, "/api/summarizer/summarize/"+asset+"/", nil, "", true)
	if rec.Code != http.StatusBadRequest || errorCode(t, rec) != apierr.CodeMalformedModelOutput {
		t.Fatalf("malformed summary: %d %s", rec.Code, rec.Body.String())
	}

	rec = s.do(t, http.MethodGet, "/api/summarizer/summarize/"+asset+"/", nil, "", true)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing summary: %d %s", rec.Code, rec.Body.String())
	}
}

func TestProcessMeeting_DisabledWithoutTemporal(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodPost, "/api/meetings/"+uuid.NewString()+"/process/", nil, "", true)
	if rec.Code != http.StatusServiceUnavailable || errorCode(t, rec) != meetingflow.CodeAsyncDisabled {
		t.Fatalf("process without temporal: %d %s", rec.Code, rec.Body.String())
	}
}
