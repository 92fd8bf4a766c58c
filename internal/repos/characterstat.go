package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/robert-crandall/journal-app-sub007/internal/logger"
  "github.com/robert-crandall/journal-app-sub007/internal/types"
)

type CharacterStatRepo interface {
  Create(ctx context.Context, tx *gorm.DB, stats []*types.CharacterStat) ([]*types.CharacterStat, error)
  GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.CharacterStat, error)
  GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.CharacterStat, error)
  NameExists(ctx context.Context, tx *gorm.DB, userID uuid.UUID, name string) (bool, error)
  UpdateMetadata(ctx context.Context, tx *gorm.DB, statID uuid.UUID, fields map[string]any) error
  SetEnabled(ctx context.Context, tx *gorm.DB, statID uuid.UUID, enabled bool) error
  AddXp(ctx context.Context, tx *gorm.DB, statID uuid.UUID, delta int) error
  FullDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
}

type characterStatRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewCharacterStatRepo(db *gorm.DB, baseLog *logger.Logger) CharacterStatRepo {
  repoLog := baseLog.With("repo", "CharacterStatRepo")
  return &characterStatRepo{db: db, log: repoLog}
}

func (r *characterStatRepo) Create(ctx context.Context, tx *gorm.DB, stats []*types.CharacterStat) ([]*types.CharacterStat, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(stats) == 0 {
    return []*types.CharacterStat{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&stats).Error; err != nil {
    return nil, err
  }
  return stats, nil
}

func (r *characterStatRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.CharacterStat, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.CharacterStat
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

func (r *characterStatRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.CharacterStat, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.CharacterStat
  if userID == uuid.Nil {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("user_id = ?", userID).
    Order("name ASC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *characterStatRepo) NameExists(ctx context.Context, tx *gorm.DB, userID uuid.UUID, name string) (bool, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var count int64
  if err := transaction.WithContext(ctx).
    Model(&types.CharacterStat{}).
    Where("user_id = ? AND name = ?", userID, name).
    Count(&count).Error; err != nil {
    return false, err
  }
  return count > 0, nil
}

func (r *characterStatRepo) UpdateMetadata(ctx context.Context, tx *gorm.DB, statID uuid.UUID, fields map[string]any) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(fields) == 0 {
    return nil
  }

  // CurrentXp is ledger-owned; metadata updates must never touch it.
  delete(fields, "current_xp")

  return transaction.WithContext(ctx).
    Model(&types.CharacterStat{}).
    Where("id = ?", statID).
    Updates(fields).Error
}

func (r *characterStatRepo) SetEnabled(ctx context.Context, tx *gorm.DB, statID uuid.UUID, enabled bool) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  return transaction.WithContext(ctx).
    Model(&types.CharacterStat{}).
    Where("id = ?", statID).
    Update("enabled", enabled).Error
}

func (r *characterStatRepo) AddXp(ctx context.Context, tx *gorm.DB, statID uuid.UUID, delta int) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  // Clamped at zero: grant deletion can never push a total negative.
  return transaction.WithContext(ctx).
    Model(&types.CharacterStat{}).
    Where("id = ?", statID).
    Update("current_xp", gorm.Expr("GREATEST(current_xp + ?, 0)", delta)).Error
}

func (r *characterStatRepo) FullDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(ids) == 0 {
    return nil
  }

  if err := transaction.WithContext(ctx).
    Where("id IN ?", ids).
    Delete(&types.CharacterStat{}).Error; err != nil {
    return err
  }
  return nil
}
