package domain

import (
	"github.com/yungbote/meetingscribe-backend/internal/domain/audio"
	"github.com/yungbote/meetingscribe-backend/internal/domain/meeting"
	"github.com/yungbote/meetingscribe-backend/internal/domain/user"
)

const (
	DefaultMaxMinutes       = user.DefaultMaxMinutes
	ActionItemStatusPending = meeting.ActionItemStatusPending
	UsageToleranceMinutes   = user.UsageToleranceMinutes
)

type (
	User  = user.User
	Quota = user.Quota

	AudioAsset = audio.AudioAsset

	Transcript = meeting.Transcript
	Summary    = meeting.Summary
	ActionItem = meeting.ActionItem
	KeyPoint   = meeting.KeyPoint
)

// AllModels lists every table in dependency order for AutoMigrate.
func AllModels() []any {
	return []any{
		&User{},
		&Quota{},
		&AudioAsset{},
		&Transcript{},
		&Summary{},
		&ActionItem{},
		&KeyPoint{},
	}
}
