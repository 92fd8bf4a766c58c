package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/robert-crandall/journal-app-sub007/internal/logger"
  "github.com/robert-crandall/journal-app-sub007/internal/types"
)

type QuestRepo interface {
  Create(ctx context.Context, tx *gorm.DB, quests []*types.Quest) ([]*types.Quest, error)
  GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Quest, error)
  GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Quest, error)
  Save(ctx context.Context, tx *gorm.DB, quest *types.Quest) error
  FullDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
}

type questRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewQuestRepo(db *gorm.DB, baseLog *logger.Logger) QuestRepo {
  repoLog := baseLog.With("repo", "QuestRepo")
  return &questRepo{db: db, log: repoLog}
}

func (r *questRepo) Create(ctx context.Context, tx *gorm.DB, quests []*types.Quest) ([]*types.Quest, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(quests) == 0 {
    return []*types.Quest{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&quests).Error; err != nil {
    return nil, err
  }
  return quests, nil
}

func (r *questRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Quest, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.Quest
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

func (r *questRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Quest, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.Quest
  if userID == uuid.Nil {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("user_id = ?", userID).
    Order("start_date DESC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *questRepo) Save(ctx context.Context, tx *gorm.DB, quest *types.Quest) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if quest == nil {
    return nil
  }

  return transaction.WithContext(ctx).Save(quest).Error
}

func (r *questRepo) FullDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(ids) == 0 {
    return nil
  }

  if err := transaction.WithContext(ctx).
    Where("id IN ?", ids).
    Delete(&types.Quest{}).Error; err != nil {
    return err
  }
  return nil
}
