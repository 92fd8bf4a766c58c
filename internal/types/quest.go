package types

import (
  "time"
  "github.com/google/uuid"
)

// Quest is an open-ended commitment. Whether it is active is derived from
// today's date against [StartDate, EndDate], never stored.
type Quest struct {
  ID        uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  UserID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
  User      *User      `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
  Title     string     `gorm:"not null;column:title" json:"title"`
  Summary   string     `gorm:"column:summary" json:"summary"`
  StartDate time.Time  `gorm:"type:date;not null;column:start_date" json:"start_date"`
  EndDate   *time.Time `gorm:"type:date;column:end_date" json:"end_date,omitempty"`
  GoalID    *uuid.UUID `gorm:"type:uuid;index" json:"goal_id,omitempty"`
  Goal      *Goal      `gorm:"constraint:OnDelete:SET NULL;foreignKey:GoalID;references:ID" json:"goal,omitempty"`
  CreatedAt time.Time  `gorm:"not null;default:now()" json:"created_at"`
  UpdatedAt time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (Quest) TableName() string { return "quest" }

// ActiveOn reports whether the quest covers the given day.
func (q *Quest) ActiveOn(day time.Time) bool {
  d := day.Truncate(24 * time.Hour)
  if d.Before(q.StartDate.Truncate(24 * time.Hour)) {
    return false
  }
  if q.EndDate != nil && d.After(q.EndDate.Truncate(24*time.Hour)) {
    return false
  }
  return true
}
