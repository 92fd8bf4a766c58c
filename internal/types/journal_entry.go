package types

import (
  "time"
  "github.com/google/uuid"
  "gorm.io/datatypes"
)

// JournalStatus is the entry lifecycle. Transitions go through CanTransition
// so no handler compares raw strings.
type JournalStatus string

const (
  JournalStatusDraft      JournalStatus = "draft"
  JournalStatusReflecting JournalStatus = "reflecting"
  JournalStatusComplete   JournalStatus = "complete"
)

func (s JournalStatus) Valid() bool {
  switch s {
  case JournalStatusDraft, JournalStatusReflecting, JournalStatusComplete:
    return true
  }
  return false
}

// CanTransition is the full transition table:
//   draft -> reflecting        start reflection
//   reflecting -> reflecting   conversation turns
//   reflecting -> complete     finish
//   complete -> draft          edit reopens the entry
func CanTransition(from, to JournalStatus) bool {
  switch from {
  case JournalStatusDraft:
    return to == JournalStatusReflecting
  case JournalStatusReflecting:
    return to == JournalStatusReflecting || to == JournalStatusComplete
  case JournalStatusComplete:
    return to == JournalStatusDraft
  }
  return false
}

// ConversationTurn is one element of the append-only reflection transcript.
type ConversationTurn struct {
  Role      string    `json:"role"`
  Content   string    `json:"content"`
  Timestamp time.Time `json:"timestamp"`
}

const (
  ConversationRoleUser      = "user"
  ConversationRoleAssistant = "assistant"
)

type JournalEntry struct {
  ID           uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  UserID       uuid.UUID      `gorm:"type:uuid;not null;index:idx_journal_user_date,unique" json:"user_id"`
  User         *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
  Date         time.Time      `gorm:"type:date;not null;index:idx_journal_user_date,unique" json:"date"`
  Status       JournalStatus  `gorm:"column:status;not null;default:'draft'" json:"status"`
  Content      string         `gorm:"column:content" json:"content"`
  Conversation datatypes.JSON `gorm:"type:jsonb;column:conversation" json:"conversation"`
  Synopsis     string         `gorm:"column:synopsis" json:"synopsis"`
  Summary      string         `gorm:"column:summary" json:"summary"`
  DayRating    *int           `gorm:"column:day_rating" json:"day_rating,omitempty"`
  ToneTags     datatypes.JSON `gorm:"type:jsonb;column:tone_tags" json:"tone_tags"`
  CreatedAt    time.Time      `gorm:"not null;default:now()" json:"created_at"`
  UpdatedAt    time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (JournalEntry) TableName() string { return "journal_entry" }
