package services

import (
  "context"
  "encoding/json"
  "fmt"

  "github.com/google/uuid"
  "gorm.io/datatypes"
  "gorm.io/gorm"

  "github.com/robert-crandall/journal-app-sub007/internal/apierr"
  "github.com/robert-crandall/journal-app-sub007/internal/logger"
  "github.com/robert-crandall/journal-app-sub007/internal/normalization"
  "github.com/robert-crandall/journal-app-sub007/internal/repos"
  "github.com/robert-crandall/journal-app-sub007/internal/requestdata"
  "github.com/robert-crandall/journal-app-sub007/internal/types"
)

type CreateGoalInput struct {
  Title                 string
  Description           string
  Tags                  []string
  IncludeInAiGeneration *bool
}

type UpdateGoalInput struct {
  Title                 *string
  Description           *string
  Tags                  []string
  IsActive              *bool
  IsArchived            *bool
  IncludeInAiGeneration *bool
}

type GoalService interface {
  CreateGoal(ctx context.Context, input CreateGoalInput) (*types.Goal, error)
  GetGoal(ctx context.Context, goalID uuid.UUID) (*types.Goal, error)
  ListGoals(ctx context.Context) ([]*types.Goal, error)
  UpdateGoal(ctx context.Context, goalID uuid.UUID, input UpdateGoalInput) (*types.Goal, error)
  DeleteGoal(ctx context.Context, goalID uuid.UUID) error
}

type goalService struct {
  db       *gorm.DB
  log      *logger.Logger
  goalRepo repos.GoalRepo
}

func NewGoalService(db *gorm.DB, log *logger.Logger, goalRepo repos.GoalRepo) GoalService {
  return &goalService{
    db:       db,
    log:      log.With("service", "GoalService"),
    goalRepo: goalRepo,
  }
}

func (gs *goalService) currentUserID(ctx context.Context) (uuid.UUID, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return uuid.Nil, apierr.Unauthorized("no authenticated user in context")
  }
  return rd.UserID, nil
}

func (gs *goalService) ownedGoal(ctx context.Context, goalID uuid.UUID) (*types.Goal, error) {
  userID, err := gs.currentUserID(ctx)
  if err != nil {
    return nil, err
  }
  goals, gErr := gs.goalRepo.GetByIDs(ctx, nil, []uuid.UUID{goalID})
  if gErr != nil {
    return nil, apierr.Internal(fmt.Errorf("failed to load goal: %w", gErr))
  }
  if len(goals) == 0 || goals[0].UserID != userID {
    return nil, apierr.NotFound("goal not found")
  }
  return goals[0], nil
}

func marshalTags(tags []string) (datatypes.JSON, error) {
  raw, err := json.Marshal(tags)
  if err != nil {
    return nil, err
  }
  return datatypes.JSON(raw), nil
}

func (gs *goalService) CreateGoal(ctx context.Context, input CreateGoalInput) (*types.Goal, error) {
  userID, err := gs.currentUserID(ctx)
  if err != nil {
    return nil, err
  }
  title := normalization.ParseInputString(input.Title)
  if title == "" {
    return nil, apierr.Validation("goal title cannot be empty")
  }
  goal := &types.Goal{
    ID:                    uuid.New(),
    UserID:                userID,
    Title:                 title,
    Description:           normalization.ParseInputString(input.Description),
    IsActive:              true,
    IncludeInAiGeneration: true,
  }
  if input.IncludeInAiGeneration != nil {
    goal.IncludeInAiGeneration = *input.IncludeInAiGeneration
  }
  if len(input.Tags) > 0 {
    tags, mErr := marshalTags(input.Tags)
    if mErr != nil {
      return nil, apierr.Internal(mErr)
    }
    goal.Tags = tags
  }
  if _, cErr := gs.goalRepo.Create(ctx, nil, []*types.Goal{goal}); cErr != nil {
    return nil, apierr.Internal(fmt.Errorf("failed to create goal: %w", cErr))
  }
  return goal, nil
}

func (gs *goalService) GetGoal(ctx context.Context, goalID uuid.UUID) (*types.Goal, error) {
  return gs.ownedGoal(ctx, goalID)
}

func (gs *goalService) ListGoals(ctx context.Context) ([]*types.Goal, error) {
  userID, err := gs.currentUserID(ctx)
  if err != nil {
    return nil, err
  }
  goals, gErr := gs.goalRepo.GetByUserID(ctx, nil, userID)
  if gErr != nil {
    return nil, apierr.Internal(fmt.Errorf("failed to list goals: %w", gErr))
  }
  return goals, nil
}

func (gs *goalService) UpdateGoal(ctx context.Context, goalID uuid.UUID, input UpdateGoalInput) (*types.Goal, error) {
  goal, err := gs.ownedGoal(ctx, goalID)
  if err != nil {
    return nil, err
  }
  if input.Title != nil {
    title := normalization.ParseInputString(*input.Title)
    if title == "" {
      return nil, apierr.Validation("goal title cannot be empty")
    }
    goal.Title = title
  }
  if input.Description != nil {
    goal.Description = normalization.ParseInputString(*input.Description)
  }
  if input.Tags != nil {
    tags, mErr := marshalTags(input.Tags)
    if mErr != nil {
      return nil, apierr.Internal(mErr)
    }
    goal.Tags = tags
  }
  if input.IsActive != nil {
    goal.IsActive = *input.IsActive
  }
  if input.IsArchived != nil {
    goal.IsArchived = *input.IsArchived
  }
  if input.IncludeInAiGeneration != nil {
    goal.IncludeInAiGeneration = *input.IncludeInAiGeneration
  }
  if sErr := gs.goalRepo.Save(ctx, nil, goal); sErr != nil {
    return nil, apierr.Internal(fmt.Errorf("failed to update goal: %w", sErr))
  }
  return goal, nil
}

func (gs *goalService) DeleteGoal(ctx context.Context, goalID uuid.UUID) error {
  goal, err := gs.ownedGoal(ctx, goalID)
  if err != nil {
    return err
  }
  if dErr := gs.goalRepo.FullDeleteByIDs(ctx, nil, []uuid.UUID{goal.ID}); dErr != nil {
    return apierr.Internal(fmt.Errorf("failed to delete goal: %w", dErr))
  }
  return nil
}
