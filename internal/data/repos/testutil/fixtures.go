package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/meetingscribe-backend/internal/domain"
)

// SeedUser creates a user. An empty email gets a unique one so postgres runs do not collide.
func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	if email == "" {
		email = uuid.New().String() + "@example.com"
	}
	u := &types.User{
		ID:        uuid.New(),
		Email:     email,
		Password:  "pw",
		FirstName: "A",
		LastName:  "B",
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedQuota(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, maxMinutes int, usedMinutes float64) *types.Quota {
	tb.Helper()
	q := &types.Quota{
		ID:          uuid.New(),
		UserID:      userID,
		MaxMinutes:  maxMinutes,
		UsedMinutes: usedMinutes,
		ResetDate:   time.Now().UTC().Truncate(24 * time.Hour),
	}
	if err := tx.WithContext(ctx).Create(q).Error; err != nil {
		tb.Fatalf("seed quota: %v", err)
	}
	return q
}

func SeedAudioAsset(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, durationSeconds float64) *types.AudioAsset {
	tb.Helper()
	id := uuid.New()
	a := &types.AudioAsset{
		ID:              id,
		UserID:          userID,
		Name:            "meeting.mp3",
		SizeBytes:       1024,
		Extension:       "mp3",
		DurationSeconds: durationSeconds,
		StorageKey:      "meetingscribe/" + id.String() + ".mp3",
		ContentType:     "audio/mpeg",
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed audio asset: %v", err)
	}
	return a
}

func SeedTranscript(tb testing.TB, ctx context.Context, tx *gorm.DB, assetID uuid.UUID, text string) *types.Transcript {
	tb.Helper()
	tr := &types.Transcript{
		ID:           uuid.New(),
		AudioAssetID: assetID,
		Text:         text,
		Language:     "en-US",
	}
	if err := tx.WithContext(ctx).Create(tr).Error; err != nil {
		tb.Fatalf("seed transcript: %v", err)
	}
	return tr
}
