package types

import (
  "time"
  "github.com/google/uuid"
  "gorm.io/datatypes"
)

// CharacterStat is a named trackable attribute. CurrentXp only ever moves
// through the XP grant ledger; the level is derived on read and never stored.
type CharacterStat struct {
  ID                uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  UserID            uuid.UUID      `gorm:"type:uuid;not null;index:idx_stat_user_name,unique" json:"user_id"`
  User              *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
  Name              string         `gorm:"not null;column:name;index:idx_stat_user_name,unique" json:"name"`
  Description       string         `gorm:"column:description" json:"description"`
  ExampleActivities datatypes.JSON `gorm:"type:jsonb;column:example_activities" json:"example_activities"`
  CurrentXp         int            `gorm:"column:current_xp;not null;default:0" json:"current_xp"`
  Enabled           bool           `gorm:"column:enabled;not null;default:true" json:"enabled"`
  CreatedAt         time.Time      `gorm:"not null;default:now()" json:"created_at"`
  UpdatedAt         time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (CharacterStat) TableName() string { return "character_stat" }
