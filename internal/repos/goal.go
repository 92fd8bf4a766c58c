package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/robert-crandall/journal-app-sub007/internal/logger"
  "github.com/robert-crandall/journal-app-sub007/internal/types"
)

type GoalRepo interface {
  Create(ctx context.Context, tx *gorm.DB, goals []*types.Goal) ([]*types.Goal, error)
  GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Goal, error)
  GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Goal, error)
  Save(ctx context.Context, tx *gorm.DB, goal *types.Goal) error
  FullDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
}

type goalRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewGoalRepo(db *gorm.DB, baseLog *logger.Logger) GoalRepo {
  repoLog := baseLog.With("repo", "GoalRepo")
  return &goalRepo{db: db, log: repoLog}
}

func (r *goalRepo) Create(ctx context.Context, tx *gorm.DB, goals []*types.Goal) ([]*types.Goal, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(goals) == 0 {
    return []*types.Goal{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&goals).Error; err != nil {
    return nil, err
  }
  return goals, nil
}

func (r *goalRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Goal, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.Goal
  if len(ids) == 0 {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("id IN ?", ids).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *goalRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Goal, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.Goal
  if userID == uuid.Nil {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("user_id = ?", userID).
    Order("created_at DESC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *goalRepo) Save(ctx context.Context, tx *gorm.DB, goal *types.Goal) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if goal == nil {
    return nil
  }

  return transaction.WithContext(ctx).Save(goal).Error
}

func (r *goalRepo) FullDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(ids) == 0 {
    return nil
  }

  if err := transaction.WithContext(ctx).
    Where("id IN ?", ids).
    Delete(&types.Goal{}).Error; err != nil {
    return err
  }
  return nil
}
