package types

import (
  "time"
  "github.com/google/uuid"
)

// Project is a non-XP-bearing work item; no gamification anywhere in this
// module.
type Project struct {
  ID          uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  UserID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
  User        *User      `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
  Title       string     `gorm:"not null;column:title" json:"title"`
  Description string     `gorm:"column:description" json:"description"`
  CompletedAt *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
  CreatedAt   time.Time  `gorm:"not null;default:now()" json:"created_at"`
  UpdatedAt   time.Time  `gorm:"not null;default:now()" json:"updated_at"`

  Subtasks []*ProjectSubtask `gorm:"foreignKey:ProjectID;references:ID" json:"subtasks,omitempty"`
}

func (Project) TableName() string { return "project" }

type ProjectSubtask struct {
  ID          uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  ProjectID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"project_id"`
  Project     *Project   `gorm:"constraint:OnDelete:CASCADE;foreignKey:ProjectID;references:ID" json:"project,omitempty"`
  Title       string     `gorm:"not null;column:title" json:"title"`
  SortOrder   int        `gorm:"column:sort_order;not null;default:0" json:"sort_order"`
  CompletedAt *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
  CreatedAt   time.Time  `gorm:"not null;default:now()" json:"created_at"`
  UpdatedAt   time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (ProjectSubtask) TableName() string { return "project_subtask" }
