package types

import (
  "time"
  "github.com/google/uuid"
)

// WouldRepeat is the tri-state post-hoc verdict on an experiment. Nil means
// the user has not answered yet.
type WouldRepeat string

const (
  WouldRepeatYes WouldRepeat = "yes"
  WouldRepeatNo  WouldRepeat = "no"
)

// Experiment is a fixed-window commitment with an optional daily task
// template. Active status is derived from the window, never stored.
type Experiment struct {
  ID              uuid.UUID    `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  UserID          uuid.UUID    `gorm:"type:uuid;not null;index" json:"user_id"`
  User            *User        `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
  Title           string       `gorm:"not null;column:title" json:"title"`
  Summary         string       `gorm:"column:summary" json:"summary"`
  StartDate       time.Time    `gorm:"type:date;not null;column:start_date" json:"start_date"`
  EndDate         time.Time    `gorm:"type:date;not null;column:end_date" json:"end_date"`
  GoalID          *uuid.UUID   `gorm:"type:uuid;index" json:"goal_id,omitempty"`
  Goal            *Goal        `gorm:"constraint:OnDelete:SET NULL;foreignKey:GoalID;references:ID" json:"goal,omitempty"`
  DailyTaskTitle  string       `gorm:"column:daily_task_title" json:"daily_task_title"`
  DailyTaskXp     int          `gorm:"column:daily_task_xp;not null;default:0" json:"daily_task_xp"`
  Reflection      string       `gorm:"column:reflection" json:"reflection"`
  WouldRepeat     *WouldRepeat `gorm:"column:would_repeat" json:"would_repeat,omitempty"`
  CreatedAt       time.Time    `gorm:"not null;default:now()" json:"created_at"`
  UpdatedAt       time.Time    `gorm:"not null;default:now()" json:"updated_at"`
}

func (Experiment) TableName() string { return "experiment" }

func (e *Experiment) ActiveOn(day time.Time) bool {
  d := day.Truncate(24 * time.Hour)
  if d.Before(e.StartDate.Truncate(24 * time.Hour)) {
    return false
  }
  if d.After(e.EndDate.Truncate(24 * time.Hour)) {
    return false
  }
  return true
}
