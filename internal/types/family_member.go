package types

import (
  "time"
  "github.com/google/uuid"
  "gorm.io/datatypes"
)

// FamilyMember is a tracked relationship with its own XP/level pair analogous
// to a CharacterStat, fed by logged interaction feedback.
type FamilyMember struct {
  ID                uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  UserID            uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
  User              *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
  Name              string         `gorm:"not null;column:name" json:"name"`
  Relationship      string         `gorm:"column:relationship" json:"relationship"`
  Likes             datatypes.JSON `gorm:"type:jsonb;column:likes" json:"likes"`
  Dislikes          datatypes.JSON `gorm:"type:jsonb;column:dislikes" json:"dislikes"`
  EnergyLevel       string         `gorm:"column:energy_level" json:"energy_level"`
  ConnectionXp      int            `gorm:"column:connection_xp;not null;default:0" json:"connection_xp"`
  LastInteractionAt *time.Time     `gorm:"column:last_interaction_at" json:"last_interaction_at,omitempty"`
  CreatedAt         time.Time      `gorm:"not null;default:now()" json:"created_at"`
  UpdatedAt         time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (FamilyMember) TableName() string { return "family_member" }

// NeedsAttention reports whether the member has gone without a logged
// interaction for the given window.
func (m *FamilyMember) NeedsAttention(now time.Time, window time.Duration) bool {
  if m.LastInteractionAt == nil {
    return true
  }
  return now.Sub(*m.LastInteractionAt) > window
}
