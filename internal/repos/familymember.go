package repos

import (
  "context"
  "time"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/robert-crandall/journal-app-sub007/internal/logger"
  "github.com/robert-crandall/journal-app-sub007/internal/types"
)

type FamilyMemberRepo interface {
  Create(ctx context.Context, tx *gorm.DB, members []*types.FamilyMember) ([]*types.FamilyMember, error)
  GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.FamilyMember, error)
  GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.FamilyMember, error)
  Save(ctx context.Context, tx *gorm.DB, member *types.FamilyMember) error
  AddConnectionXp(ctx context.Context, tx *gorm.DB, memberID uuid.UUID, delta int) error
  SetLastInteraction(ctx context.Context, tx *gorm.DB, memberID uuid.UUID, at time.Time) error
  FullDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
}

type familyMemberRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewFamilyMemberRepo(db *gorm.DB, baseLog *logger.Logger) FamilyMemberRepo {
  repoLog := baseLog.With("repo", "FamilyMemberRepo")
  return &familyMemberRepo{db: db, log: repoLog}
}

func (r *familyMemberRepo) Create(ctx context.Context, tx *gorm.DB, members []*types.FamilyMember) ([]*types.FamilyMember, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(members) == 0 {
    return []*types.FamilyMember{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&members).Error; err != nil {
    return nil, err
  }
  return members, nil
}

func (r *familyMemberRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.FamilyMember, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.FamilyMember
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

func (r *familyMemberRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.FamilyMember, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.FamilyMember
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

func (r *familyMemberRepo) Save(ctx context.Context, tx *gorm.DB, member *types.FamilyMember) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if member == nil {
    return nil
  }

  return transaction.WithContext(ctx).Save(member).Error
}

func (r *familyMemberRepo) AddConnectionXp(ctx context.Context, tx *gorm.DB, memberID uuid.UUID, delta int) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  return transaction.WithContext(ctx).
    Model(&types.FamilyMember{}).
    Where("id = ?", memberID).
    Update("connection_xp", gorm.Expr("GREATEST(connection_xp + ?, 0)", delta)).Error
}

func (r *familyMemberRepo) SetLastInteraction(ctx context.Context, tx *gorm.DB, memberID uuid.UUID, at time.Time) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  return transaction.WithContext(ctx).
    Model(&types.FamilyMember{}).
    Where("id = ?", memberID).
    Update("last_interaction_at", at).Error
}

func (r *familyMemberRepo) FullDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(ids) == 0 {
    return nil
  }

  if err := transaction.WithContext(ctx).
    Where("id IN ?", ids).
    Delete(&types.FamilyMember{}).Error; err != nil {
    return err
  }
  return nil
}
