package meeting

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const ActionItemStatusPending = "pending"

type Summary struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	TranscriptID uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex;column:transcript_id" json:"transcript_id"`
	Transcript   *Transcript    `gorm:"foreignKey:TranscriptID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
	Subject      string         `gorm:"type:text;not null;column:subject" json:"subject"`
	RawOutput    datatypes.JSON `gorm:"column:raw_output" json:"-"`
	ActionItems  []ActionItem   `gorm:"foreignKey:SummaryID;constraint:OnDelete:CASCADE" json:"action_items"`
	KeyPoints    []KeyPoint     `gorm:"foreignKey:SummaryID;constraint:OnDelete:CASCADE" json:"key_points"`
	CreatedAt    time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (Summary) TableName() string { return "summary" }

func (s *Summary) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

type ActionItem struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SummaryID   uuid.UUID `gorm:"type:uuid;not null;index;column:summary_id" json:"-"`
	Position    int       `gorm:"not null;column:position" json:"-"`
	Description string    `gorm:"type:text;not null;column:description" json:"description"`
	// AssignedTo and DueDate are kept as the model emitted them.
	AssignedTo *string `gorm:"column:assigned_to" json:"assigned_to"`
	DueDate    *string `gorm:"column:due_date" json:"due_date"`
	Status     string  `gorm:"not null;default:pending;column:status" json:"status"`
}

func (ActionItem) TableName() string { return "action_item" }

func (a *ActionItem) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

type KeyPoint struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SummaryID uuid.UUID `gorm:"type:uuid;not null;index;column:summary_id" json:"-"`
	Position  int       `gorm:"not null;column:position" json:"-"`
	Content   string    `gorm:"type:text;not null;column:content" json:"content"`
}

func (KeyPoint) TableName() string { return "key_point" }

func (k *KeyPoint) BeforeCreate(tx *gorm.DB) error {
	if k.ID == uuid.Nil {
		k.ID = uuid.New()
	}
	return nil
}
