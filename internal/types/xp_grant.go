package types

import (
  "time"
  "github.com/google/uuid"
)

// XpSourceType names the activity a grant is attributable to.
type XpSourceType string

const (
  XpSourceJournal    XpSourceType = "journal"
  XpSourceTask       XpSourceType = "task"
  XpSourceQuest      XpSourceType = "quest"
  XpSourceExperiment XpSourceType = "experiment"
  XpSourceFamily     XpSourceType = "family"
)

func (s XpSourceType) Valid() bool {
  switch s {
  case XpSourceJournal, XpSourceTask, XpSourceQuest, XpSourceExperiment, XpSourceFamily:
    return true
  }
  return false
}

// XpGrant is an immutable ledger row. Corrections delete and re-create grants;
// nothing updates a grant in place. StatID is nullable and set to NULL when a
// stat is removed so historical totals stay auditable.
type XpGrant struct {
  ID         uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  UserID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
  User       *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
  StatID     *uuid.UUID     `gorm:"type:uuid;index" json:"stat_id,omitempty"`
  Stat       *CharacterStat `gorm:"constraint:OnDelete:SET NULL;foreignKey:StatID;references:ID" json:"stat,omitempty"`
  Amount     int            `gorm:"column:amount;not null" json:"amount"`
  SourceType XpSourceType   `gorm:"column:source_type;not null;index:idx_grant_source" json:"source_type"`
  SourceID   uuid.UUID      `gorm:"type:uuid;not null;index:idx_grant_source" json:"source_id"`
  Reason     string         `gorm:"column:reason" json:"reason"`
  CreatedAt  time.Time      `gorm:"not null;default:now()" json:"created_at"`
}

func (XpGrant) TableName() string { return "xp_grant" }
