package services

import (
  "context"
  "fmt"
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/robert-crandall/journal-app-sub007/internal/apierr"
  "github.com/robert-crandall/journal-app-sub007/internal/logger"
  "github.com/robert-crandall/journal-app-sub007/internal/normalization"
  "github.com/robert-crandall/journal-app-sub007/internal/repos"
  "github.com/robert-crandall/journal-app-sub007/internal/requestdata"
  "github.com/robert-crandall/journal-app-sub007/internal/types"
)

// QuestView decorates a quest with its derived active flag.
type QuestView struct {
  *types.Quest
  IsActive bool `json:"is_active"`
}

type CreateQuestInput struct {
  Title     string
  Summary   string
  StartDate time.Time
  EndDate   *time.Time
  GoalID    *uuid.UUID
}

type UpdateQuestInput struct {
  Title    *string
  Summary  *string
  EndDate  *time.Time
  ClearEnd bool
}

type QuestService interface {
  CreateQuest(ctx context.Context, input CreateQuestInput) (*QuestView, error)
  GetQuest(ctx context.Context, questID uuid.UUID) (*QuestView, error)
  ListQuests(ctx context.Context) ([]*QuestView, error)
  UpdateQuest(ctx context.Context, questID uuid.UUID, input UpdateQuestInput) (*QuestView, error)
  DeleteQuest(ctx context.Context, questID uuid.UUID) error
}

type questService struct {
  db        *gorm.DB
  log       *logger.Logger
  questRepo repos.QuestRepo
}

func NewQuestService(db *gorm.DB, log *logger.Logger, questRepo repos.QuestRepo) QuestService {
  return &questService{
    db:        db,
    log:       log.With("service", "QuestService"),
    questRepo: questRepo,
  }
}

func questViewOf(q *types.Quest) *QuestView {
  return &QuestView{Quest: q, IsActive: q.ActiveOn(time.Now())}
}

func (qs *questService) currentUserID(ctx context.Context) (uuid.UUID, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return uuid.Nil, apierr.Unauthorized("no authenticated user in context")
  }
  return rd.UserID, nil
}

func (qs *questService) ownedQuest(ctx context.Context, questID uuid.UUID) (*types.Quest, error) {
  userID, err := qs.currentUserID(ctx)
  if err != nil {
    return nil, err
  }
  quests, qErr := qs.questRepo.GetByIDs(ctx, nil, []uuid.UUID{questID})
  if qErr != nil {
    return nil, apierr.Internal(fmt.Errorf("failed to load quest: %w", qErr))
  }
  if len(quests) == 0 || quests[0].UserID != userID {
    return nil, apierr.NotFound("quest not found")
  }
  return quests[0], nil
}

func (qs *questService) CreateQuest(ctx context.Context, input CreateQuestInput) (*QuestView, error) {
  userID, err := qs.currentUserID(ctx)
  if err != nil {
    return nil, err
  }
  title := normalization.ParseInputString(input.Title)
  if title == "" {
    return nil, apierr.Validation("quest title cannot be empty")
  }
  if input.EndDate != nil && input.EndDate.Before(input.StartDate) {
    return nil, apierr.Validation("quest end date cannot precede its start date")
  }
  quest := &types.Quest{
    ID:        uuid.New(),
    UserID:    userID,
    Title:     title,
    Summary:   normalization.ParseInputString(input.Summary),
    StartDate: dateOnly(input.StartDate),
    GoalID:    input.GoalID,
  }
  if input.EndDate != nil {
    end := dateOnly(*input.EndDate)
    quest.EndDate = &end
  }
  if _, cErr := qs.questRepo.Create(ctx, nil, []*types.Quest{quest}); cErr != nil {
    return nil, apierr.Internal(fmt.Errorf("failed to create quest: %w", cErr))
  }
  return questViewOf(quest), nil
}

func (qs *questService) GetQuest(ctx context.Context, questID uuid.UUID) (*QuestView, error) {
  quest, err := qs.ownedQuest(ctx, questID)
  if err != nil {
    return nil, err
  }
  return questViewOf(quest), nil
}

func (qs *questService) ListQuests(ctx context.Context) ([]*QuestView, error) {
  userID, err := qs.currentUserID(ctx)
  if err != nil {
    return nil, err
  }
  quests, qErr := qs.questRepo.GetByUserID(ctx, nil, userID)
  if qErr != nil {
    return nil, apierr.Internal(fmt.Errorf("failed to list quests: %w", qErr))
  }
  views := make([]*QuestView, 0, len(quests))
  for _, q := range quests {
    views = append(views, questViewOf(q))
  }
  return views, nil
}

func (qs *questService) UpdateQuest(ctx context.Context, questID uuid.UUID, input UpdateQuestInput) (*QuestView, error) {
  quest, err := qs.ownedQuest(ctx, questID)
  if err != nil {
    return nil, err
  }
  if input.Title != nil {
    title := normalization.ParseInputString(*input.Title)
    if title == "" {
      return nil, apierr.Validation("quest title cannot be empty")
    }
    quest.Title = title
  }
  if input.Summary != nil {
    quest.Summary = normalization.ParseInputString(*input.Summary)
  }
  if input.ClearEnd {
    quest.EndDate = nil
  } else if input.EndDate != nil {
    end := dateOnly(*input.EndDate)
    if end.Before(quest.StartDate) {
      return nil, apierr.Validation("quest end date cannot precede its start date")
    }
    quest.EndDate = &end
  }
  if sErr := qs.questRepo.Save(ctx, nil, quest); sErr != nil {
    return nil, apierr.Internal(fmt.Errorf("failed to update quest: %w", sErr))
  }
  return questViewOf(quest), nil
}

func (qs *questService) DeleteQuest(ctx context.Context, questID uuid.UUID) error {
  quest, err := qs.ownedQuest(ctx, questID)
  if err != nil {
    return err
  }
  if dErr := qs.questRepo.FullDeleteByIDs(ctx, nil, []uuid.UUID{quest.ID}); dErr != nil {
    return apierr.Internal(fmt.Errorf("failed to delete quest: %w", dErr))
  }
  return nil
}
