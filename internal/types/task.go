package types

import (
  "time"
  "github.com/google/uuid"
)

type TaskSource string

const (
  TaskSourceUser       TaskSource = "user"
  TaskSourceAI         TaskSource = "ai"
  TaskSourceExperiment TaskSource = "experiment"
  TaskSourceQuest      TaskSource = "quest"
)

func (s TaskSource) Valid() bool {
  switch s {
  case TaskSourceUser, TaskSourceAI, TaskSourceExperiment, TaskSourceQuest:
    return true
  }
  return false
}

// Task is a unit of work. CompletedAt drives XP grant creation; a task only
// ever completes once.
type Task struct {
  ID             uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  UserID         uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
  User           *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
  Title          string         `gorm:"not null;column:title" json:"title"`
  Description    string         `gorm:"column:description" json:"description"`
  XpReward       int            `gorm:"column:xp_reward;not null;default:0" json:"xp_reward"`
  StatID         *uuid.UUID     `gorm:"type:uuid;index" json:"stat_id,omitempty"`
  Stat           *CharacterStat `gorm:"constraint:OnDelete:SET NULL;foreignKey:StatID;references:ID" json:"stat,omitempty"`
  FamilyMemberID *uuid.UUID     `gorm:"type:uuid;index" json:"family_member_id,omitempty"`
  Source         TaskSource     `gorm:"column:source;not null;default:'user'" json:"source"`
  SourceID       *uuid.UUID     `gorm:"type:uuid;index" json:"source_id,omitempty"`
  DueDate        *time.Time     `gorm:"type:date;column:due_date" json:"due_date,omitempty"`
  CompletedAt    *time.Time     `gorm:"column:completed_at" json:"completed_at,omitempty"`
  CreatedAt      time.Time      `gorm:"not null;default:now()" json:"created_at"`
  UpdatedAt      time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (Task) TableName() string { return "task" }
