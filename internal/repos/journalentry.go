package repos

import (
  "context"
  "time"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/robert-crandall/journal-app-sub007/internal/logger"
  "github.com/robert-crandall/journal-app-sub007/internal/types"
)

type JournalEntryRepo interface {
  Create(ctx context.Context, tx *gorm.DB, entries []*types.JournalEntry) ([]*types.JournalEntry, error)
  GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.JournalEntry, error)
  GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.JournalEntry, error)
  GetByUserAndDate(ctx context.Context, tx *gorm.DB, userID uuid.UUID, date time.Time) (*types.JournalEntry, error)
  ExistsForUserAndDate(ctx context.Context, tx *gorm.DB, userID uuid.UUID, date time.Time) (bool, error)
  Save(ctx context.Context, tx *gorm.DB, entry *types.JournalEntry) error
  FullDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
}

type journalEntryRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewJournalEntryRepo(db *gorm.DB, baseLog *logger.Logger) JournalEntryRepo {
  repoLog := baseLog.With("repo", "JournalEntryRepo")
  return &journalEntryRepo{db: db, log: repoLog}
}

func (r *journalEntryRepo) Create(ctx context.Context, tx *gorm.DB, entries []*types.JournalEntry) ([]*types.JournalEntry, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(entries) == 0 {
    return []*types.JournalEntry{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&entries).Error; err != nil {
    return nil, err
  }
  return entries, nil
}

func (r *journalEntryRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.JournalEntry, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.JournalEntry
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

func (r *journalEntryRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.JournalEntry, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.JournalEntry
  if userID == uuid.Nil {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("user_id = ?", userID).
    Order("date DESC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *journalEntryRepo) GetByUserAndDate(ctx context.Context, tx *gorm.DB, userID uuid.UUID, date time.Time) (*types.JournalEntry, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.JournalEntry
  if err := transaction.WithContext(ctx).
    Where("user_id = ? AND date = ?", userID, date).
    Limit(1).
    Find(&results).Error; err != nil {
    return nil, err
  }
  if len(results) == 0 {
    return nil, nil
  }
  return results[0], nil
}

func (r *journalEntryRepo) ExistsForUserAndDate(ctx context.Context, tx *gorm.DB, userID uuid.UUID, date time.Time) (bool, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var count int64
  if err := transaction.WithContext(ctx).
    Model(&types.JournalEntry{}).
    Where("user_id = ? AND date = ?", userID, date).
    Count(&count).Error; err != nil {
    return false, err
  }
  return count > 0, nil
}

func (r *journalEntryRepo) Save(ctx context.Context, tx *gorm.DB, entry *types.JournalEntry) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if entry == nil {
    return nil
  }

  return transaction.WithContext(ctx).Save(entry).Error
}

func (r *journalEntryRepo) FullDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(ids) == 0 {
    return nil
  }

  if err := transaction.WithContext(ctx).
    Where("id IN ?", ids).
    Delete(&types.JournalEntry{}).Error; err != nil {
    return err
  }
  return nil
}
