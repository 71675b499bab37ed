package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const DefaultMaxMinutes = 60

// Quota is the per-user monthly usage ledger. UsedMinutes stays within [0, MaxMinutes].
type Quota struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex;column:user_id" json:"user_id"`
	User        *User     `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
	MaxMinutes  int       `gorm:"not null;default:60;column:max_minutes" json:"max_minutes"`
	UsedMinutes float64   `gorm:"not null;default:0;column:used_minutes" json:"used_minutes"`
	ResetDate   time.Time `gorm:"type:date;not null;column:reset_date;index" json:"reset_date"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (Quota) TableName() string { return "user_quota" }

func (q *Quota) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

// UsageToleranceMinutes absorbs float rounding when a charge lands exactly on a ledger bound.
// The pre-check and the conditional UPDATE both use it.
const UsageToleranceMinutes = 1e-6

// Allows reports whether adding deltaMinutes keeps usage within [0, max_minutes].
func (q *Quota) Allows(deltaMinutes float64) bool {
	if q == nil {
		return false
	}
	next := q.UsedMinutes + deltaMinutes
	return next <= float64(q.MaxMinutes)+UsageToleranceMinutes && next >= -UsageToleranceMinutes
}

// Remaining is the unused allowance in minutes, never negative.
func (q *Quota) Remaining() float64 {
	if q == nil {
		return 0
	}
	r := float64(q.MaxMinutes) - q.UsedMinutes
	if r < 0 {
		return 0
	}
	return r
}
