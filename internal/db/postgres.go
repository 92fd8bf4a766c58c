package db

import (
  "fmt"
  "gorm.io/driver/postgres"
  "gorm.io/gorm"
  "github.com/robert-crandall/journal-app-sub007/internal/logger"
  "github.com/robert-crandall/journal-app-sub007/internal/types"
  "github.com/robert-crandall/journal-app-sub007/internal/utils"
)

type PostgresService struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
  serviceLog := log.With("service", "PostgresService")

  log.Info("Loading environment variables...")
  postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
  postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
  postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
  postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
  postgresName := utils.GetEnv("POSTGRES_NAME", "journalapp", log)
  log.Debug("Environment variables loaded")

  dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

  log.Info("Connecting to Postgres...")
  gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
    DisableForeignKeyConstraintWhenMigrating: true,
    TranslateError:                           true,
  })
  if err != nil {
    log.Error("Failed to connect to Postgres", "error", err)
    return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
  }

  if err := gdb.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
    log.Error("Failed to enable uuid-ossp extension", "error", err)
    return nil, fmt.Errorf("failed to enable uuid-ossp extension: %w", err)
  }
  log.Info("uuid-ossp extension enabled")

  return &PostgresService{db: gdb, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
  s.log.Info("Auto migrating postgres tables...")
  err := s.db.AutoMigrate(
    &types.User{},
    &types.UserToken{},
    &types.CharacterStat{},
    &types.JournalEntry{},
    &types.XpGrant{},
    &types.Task{},
    &types.Quest{},
    &types.Experiment{},
    &types.Project{},
    &types.ProjectSubtask{},
    &types.Goal{},
    &types.FamilyMember{},
    &types.FamilyTaskFeedback{},
  )
  if err != nil {
    s.log.Error("Auto migration failed for postgres tables", "error", err)
    return err
  }

  s.log.Info("Configuring foreign key relationships for postgres tables...")
  cascades := []struct {
    table  string
    name   string
    column string
    ref    string
    action string
  }{
    {"user_token", "fk_user_token_user_id", "user_id", `"user"("id")`, "CASCADE"},
    {"character_stat", "fk_character_stat_user_id", "user_id", `"user"("id")`, "CASCADE"},
    {"journal_entry", "fk_journal_entry_user_id", "user_id", `"user"("id")`, "CASCADE"},
    {"xp_grant", "fk_xp_grant_user_id", "user_id", `"user"("id")`, "CASCADE"},
    // Grants outlive their stat so historical XP totals stay auditable.
    {"xp_grant", "fk_xp_grant_stat_id", "stat_id", `"character_stat"("id")`, "SET NULL"},
    {"task", "fk_task_user_id", "user_id", `"user"("id")`, "CASCADE"},
    {"task", "fk_task_stat_id", "stat_id", `"character_stat"("id")`, "SET NULL"},
    {"quest", "fk_quest_user_id", "user_id", `"user"("id")`, "CASCADE"},
    {"experiment", "fk_experiment_user_id", "user_id", `"user"("id")`, "CASCADE"},
    {"project", "fk_project_user_id", "user_id", `"user"("id")`, "CASCADE"},
    {"project_subtask", "fk_project_subtask_project_id", "project_id", `"project"("id")`, "CASCADE"},
    {"goal", "fk_goal_user_id", "user_id", `"user"("id")`, "CASCADE"},
    {"family_member", "fk_family_member_user_id", "user_id", `"user"("id")`, "CASCADE"},
    {"family_task_feedback", "fk_family_task_feedback_user_id", "user_id", `"user"("id")`, "CASCADE"},
    {"family_task_feedback", "fk_family_task_feedback_member_id", "family_member_id", `"family_member"("id")`, "CASCADE"},
  }
  for _, fk := range cascades {
    stmt := fmt.Sprintf(`
      ALTER TABLE "%s" DROP CONSTRAINT IF EXISTS "%s";
      ALTER TABLE "%s"
      ADD CONSTRAINT "%s"
      FOREIGN KEY ("%s")
      REFERENCES %s
      ON DELETE %s
    `, fk.table, fk.name, fk.table, fk.name, fk.column, fk.ref, fk.action)
    if err := s.db.Exec(stmt).Error; err != nil {
      return fmt.Errorf("failed to add %s: %w", fk.name, err)
    }
  }
  return nil
}

func (s *PostgresService) DB() *gorm.DB {
  return s.db
}
