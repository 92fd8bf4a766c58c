package types

import (
  "time"
  "github.com/google/uuid"
  "gorm.io/datatypes"
)

// Goal is a durable objective. Active and archived are orthogonal flags, but
// archived goals never feed AI generation regardless of the other two.
type Goal struct {
  ID                     uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  UserID                 uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
  User                   *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
  Title                  string         `gorm:"not null;column:title" json:"title"`
  Description            string         `gorm:"column:description" json:"description"`
  Tags                   datatypes.JSON `gorm:"type:jsonb;column:tags" json:"tags"`
  IsActive               bool           `gorm:"column:is_active;not null;default:true" json:"is_active"`
  IsArchived             bool           `gorm:"column:is_archived;not null;default:false" json:"is_archived"`
  IncludeInAiGeneration  bool           `gorm:"column:include_in_ai_generation;not null;default:true" json:"include_in_ai_generation"`
  CreatedAt              time.Time      `gorm:"not null;default:now()" json:"created_at"`
  UpdatedAt              time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (Goal) TableName() string { return "goal" }

// EligibleForGeneration reports whether this goal may be fed into AI task
// generation context.
func (g *Goal) EligibleForGeneration() bool {
  return g.IsActive && !g.IsArchived && g.IncludeInAiGeneration
}
