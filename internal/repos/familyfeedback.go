package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/robert-crandall/journal-app-sub007/internal/logger"
  "github.com/robert-crandall/journal-app-sub007/internal/types"
)

type FamilyFeedbackRepo interface {
  Create(ctx context.Context, tx *gorm.DB, rows []*types.FamilyTaskFeedback) ([]*types.FamilyTaskFeedback, error)
  GetByMemberID(ctx context.Context, tx *gorm.DB, memberID uuid.UUID) ([]*types.FamilyTaskFeedback, error)
}

type familyFeedbackRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewFamilyFeedbackRepo(db *gorm.DB, baseLog *logger.Logger) FamilyFeedbackRepo {
  repoLog := baseLog.With("repo", "FamilyFeedbackRepo")
  return &familyFeedbackRepo{db: db, log: repoLog}
}

func (r *familyFeedbackRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.FamilyTaskFeedback) ([]*types.FamilyTaskFeedback, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(rows) == 0 {
    return []*types.FamilyTaskFeedback{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
    return nil, err
  }
  return rows, nil
}

func (r *familyFeedbackRepo) GetByMemberID(ctx context.Context, tx *gorm.DB, memberID uuid.UUID) ([]*types.FamilyTaskFeedback, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.FamilyTaskFeedback
  if memberID == uuid.Nil {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("family_member_id = ?", memberID).
    Order("created_at DESC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}
