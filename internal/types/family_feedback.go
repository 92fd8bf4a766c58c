package types

import (
  "time"
  "github.com/google/uuid"
)

// FamilyTaskFeedback is one logged interaction with a family member. Creating
// one grants connection XP and refreshes the member's last interaction time.
type FamilyTaskFeedback struct {
  ID             uuid.UUID     `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  UserID         uuid.UUID     `gorm:"type:uuid;not null;index" json:"user_id"`
  User           *User         `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
  FamilyMemberID uuid.UUID     `gorm:"type:uuid;not null;index" json:"family_member_id"`
  FamilyMember   *FamilyMember `gorm:"constraint:OnDelete:CASCADE;foreignKey:FamilyMemberID;references:ID" json:"family_member,omitempty"`
  Notes          string        `gorm:"column:notes" json:"notes"`
  Enjoyed        bool          `gorm:"column:enjoyed;not null;default:true" json:"enjoyed"`
  CreatedAt      time.Time     `gorm:"not null;default:now()" json:"created_at"`
}

func (FamilyTaskFeedback) TableName() string { return "family_task_feedback" }
