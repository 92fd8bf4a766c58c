package services

import (
  "context"

  "gorm.io/gorm"
)

// withTx runs fn inside one transaction. A nil db runs fn directly with a
// nil tx, the same fallback the repos use.
func withTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
  if db == nil {
    return fn(nil)
  }
  return db.WithContext(ctx).Transaction(fn)
}
