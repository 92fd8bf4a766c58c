package services

import (
  "context"
  "encoding/json"
  "fmt"
  "time"

  "github.com/google/uuid"
  "gorm.io/datatypes"
  "gorm.io/gorm"

  "github.com/robert-crandall/journal-app-sub007/internal/apierr"
  "github.com/robert-crandall/journal-app-sub007/internal/leveling"
  "github.com/robert-crandall/journal-app-sub007/internal/logger"
  "github.com/robert-crandall/journal-app-sub007/internal/normalization"
  "github.com/robert-crandall/journal-app-sub007/internal/repos"
  "github.com/robert-crandall/journal-app-sub007/internal/requestdata"
  "github.com/robert-crandall/journal-app-sub007/internal/sse"
  "github.com/robert-crandall/journal-app-sub007/internal/types"
)

// FamilyMemberView decorates a member with the derived connection level and
// the attention flag used by task generation.
type FamilyMemberView struct {
  *types.FamilyMember
  ConnectionLevel int  `json:"connection_level"`
  XpIntoLevel     int  `json:"xp_into_level"`
  XpForNextLevel  int  `json:"xp_for_next_level"`
  NeedsAttention  bool `json:"needs_attention"`
}

type CreateFamilyMemberInput struct {
  Name         string
  Relationship string
  Likes        []string
  Dislikes     []string
  EnergyLevel  string
}

type UpdateFamilyMemberInput struct {
  Name         *string
  Relationship *string
  Likes        []string
  Dislikes     []string
  EnergyLevel  *string
}

type LogInteractionInput struct {
  Notes   string
  Enjoyed bool
  Xp      int
}

type FamilyService interface {
  CreateMember(ctx context.Context, input CreateFamilyMemberInput) (*FamilyMemberView, error)
  GetMember(ctx context.Context, memberID uuid.UUID) (*FamilyMemberView, error)
  ListMembers(ctx context.Context) ([]*FamilyMemberView, error)
  UpdateMember(ctx context.Context, memberID uuid.UUID, input UpdateFamilyMemberInput) (*FamilyMemberView, error)
  DeleteMember(ctx context.Context, memberID uuid.UUID) error
  LogInteraction(ctx context.Context, memberID uuid.UUID, input LogInteractionInput) (*FamilyMemberView, error)
  GetInteractions(ctx context.Context, memberID uuid.UUID) ([]*types.FamilyTaskFeedback, error)
}

type familyService struct {
  db           *gorm.DB
  log          *logger.Logger
  familyRepo   repos.FamilyMemberRepo
  feedbackRepo repos.FamilyFeedbackRepo
  grantRepo    repos.XpGrantRepo
  hub          *sse.SSEHub
}

func NewFamilyService(
  db *gorm.DB,
  log *logger.Logger,
  familyRepo repos.FamilyMemberRepo,
  feedbackRepo repos.FamilyFeedbackRepo,
  grantRepo repos.XpGrantRepo,
  hub *sse.SSEHub,
) FamilyService {
  return &familyService{
    db:           db,
    log:          log.With("service", "FamilyService"),
    familyRepo:   familyRepo,
    feedbackRepo: feedbackRepo,
    grantRepo:    grantRepo,
    hub:          hub,
  }
}

func familyViewOf(m *types.FamilyMember) *FamilyMemberView {
  p := leveling.Compute(m.ConnectionXp)
  return &FamilyMemberView{
    FamilyMember:    m,
    ConnectionLevel: p.Level,
    XpIntoLevel:     p.XpIntoLevel,
    XpForNextLevel:  p.XpForNextLevel,
    NeedsAttention:  m.NeedsAttention(time.Now(), attentionWindow),
  }
}

func (fs *familyService) currentUserID(ctx context.Context) (uuid.UUID, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return uuid.Nil, apierr.Unauthorized("no authenticated user in context")
  }
  return rd.UserID, nil
}

func (fs *familyService) ownedMember(ctx context.Context, tx *gorm.DB, memberID uuid.UUID) (*types.FamilyMember, error) {
  userID, err := fs.currentUserID(ctx)
  if err != nil {
    return nil, err
  }
  members, mErr := fs.familyRepo.GetByIDs(ctx, tx, []uuid.UUID{memberID})
  if mErr != nil {
    return nil, apierr.Internal(fmt.Errorf("failed to load family member: %w", mErr))
  }
  if len(members) == 0 || members[0].UserID != userID {
    return nil, apierr.NotFound("family member not found")
  }
  return members[0], nil
}

func marshalList(items []string) (datatypes.JSON, error) {
  raw, err := json.Marshal(items)
  if err != nil {
    return nil, err
  }
  return datatypes.JSON(raw), nil
}

func (fs *familyService) CreateMember(ctx context.Context, input CreateFamilyMemberInput) (*FamilyMemberView, error) {
  userID, err := fs.currentUserID(ctx)
  if err != nil {
    return nil, err
  }
  name := normalization.ParseInputString(input.Name)
  if name == "" {
    return nil, apierr.Validation("family member name cannot be empty")
  }
  member := &types.FamilyMember{
    ID:           uuid.New(),
    UserID:       userID,
    Name:         name,
    Relationship: normalization.ParseInputString(input.Relationship),
    EnergyLevel:  normalization.ParseInputString(input.EnergyLevel),
  }
  if len(input.Likes) > 0 {
    likes, mErr := marshalList(input.Likes)
    if mErr != nil {
      return nil, apierr.Internal(mErr)
    }
    member.Likes = likes
  }
  if len(input.Dislikes) > 0 {
    dislikes, mErr := marshalList(input.Dislikes)
    if mErr != nil {
      return nil, apierr.Internal(mErr)
    }
    member.Dislikes = dislikes
  }
  if _, cErr := fs.familyRepo.Create(ctx, nil, []*types.FamilyMember{member}); cErr != nil {
    return nil, apierr.Internal(fmt.Errorf("failed to create family member: %w", cErr))
  }
  return familyViewOf(member), nil
}

func (fs *familyService) GetMember(ctx context.Context, memberID uuid.UUID) (*FamilyMemberView, error) {
  member, err := fs.ownedMember(ctx, nil, memberID)
  if err != nil {
    return nil, err
  }
  return familyViewOf(member), nil
}

func (fs *familyService) ListMembers(ctx context.Context) ([]*FamilyMemberView, error) {
  userID, err := fs.currentUserID(ctx)
  if err != nil {
    return nil, err
  }
  members, mErr := fs.familyRepo.GetByUserID(ctx, nil, userID)
  if mErr != nil {
    return nil, apierr.Internal(fmt.Errorf("failed to list family members: %w", mErr))
  }
  views := make([]*FamilyMemberView, 0, len(members))
  for _, m := range members {
    views = append(views, familyViewOf(m))
  }
  return views, nil
}

func (fs *familyService) UpdateMember(ctx context.Context, memberID uuid.UUID, input UpdateFamilyMemberInput) (*FamilyMemberView, error) {
  member, err := fs.ownedMember(ctx, nil, memberID)
  if err != nil {
    return nil, err
  }
  if input.Name != nil {
    name := normalization.ParseInputString(*input.Name)
    if name == "" {
      return nil, apierr.Validation("family member name cannot be empty")
    }
    member.Name = name
  }
  if input.Relationship != nil {
    member.Relationship = normalization.ParseInputString(*input.Relationship)
  }
  if input.EnergyLevel != nil {
    member.EnergyLevel = normalization.ParseInputString(*input.EnergyLevel)
  }
  if input.Likes != nil {
    likes, mErr := marshalList(input.Likes)
    if mErr != nil {
      return nil, apierr.Internal(mErr)
    }
    member.Likes = likes
  }
  if input.Dislikes != nil {
    dislikes, mErr := marshalList(input.Dislikes)
    if mErr != nil {
      return nil, apierr.Internal(mErr)
    }
    member.Dislikes = dislikes
  }
  if sErr := fs.familyRepo.Save(ctx, nil, member); sErr != nil {
    return nil, apierr.Internal(fmt.Errorf("failed to update family member: %w", sErr))
  }
  return familyViewOf(member), nil
}

func (fs *familyService) DeleteMember(ctx context.Context, memberID uuid.UUID) error {
  member, err := fs.ownedMember(ctx, nil, memberID)
  if err != nil {
    return err
  }
  return withTx(ctx, fs.db, func(tx *gorm.DB) error {
    if dErr := fs.grantRepo.FullDeleteBySource(ctx, tx, types.XpSourceFamily, member.ID); dErr != nil {
      return apierr.Internal(fmt.Errorf("failed to delete connection grants: %w", dErr))
    }
    if dErr := fs.familyRepo.FullDeleteByIDs(ctx, tx, []uuid.UUID{member.ID}); dErr != nil {
      return apierr.Internal(fmt.Errorf("failed to delete family member: %w", dErr))
    }
    return nil
  })
}

// LogInteraction records feedback, grants connection XP against the member's
// own ledger, and refreshes last-interaction, all in one transaction.
func (fs *familyService) LogInteraction(ctx context.Context, memberID uuid.UUID, input LogInteractionInput) (*FamilyMemberView, error) {
  member, err := fs.ownedMember(ctx, nil, memberID)
  if err != nil {
    return nil, err
  }
  xp := input.Xp
  if xp < 0 {
    return nil, apierr.Validation("interaction xp cannot be negative")
  }
  if xp == 0 {
    xp = 10
  }

  now := time.Now().UTC()
  txErr := withTx(ctx, fs.db, func(tx *gorm.DB) error {
    feedback := &types.FamilyTaskFeedback{
      ID:             uuid.New(),
      UserID:         member.UserID,
      FamilyMemberID: member.ID,
      Notes:          normalization.ParseInputString(input.Notes),
      Enjoyed:        input.Enjoyed,
    }
    if _, cErr := fs.feedbackRepo.Create(ctx, tx, []*types.FamilyTaskFeedback{feedback}); cErr != nil {
      return apierr.Internal(fmt.Errorf("failed to record interaction: %w", cErr))
    }
    // Connection grants carry no stat id; the member row keeps its own
    // running total.
    grant := &types.XpGrant{
      ID:         uuid.New(),
      UserID:     member.UserID,
      Amount:     xp,
      SourceType: types.XpSourceFamily,
      SourceID:   member.ID,
      Reason:     fmt.Sprintf("Interaction with %s", member.Name),
    }
    if _, gErr := fs.grantRepo.Create(ctx, tx, []*types.XpGrant{grant}); gErr != nil {
      return apierr.Internal(fmt.Errorf("failed to create connection grant: %w", gErr))
    }
    if aErr := fs.familyRepo.AddConnectionXp(ctx, tx, member.ID, xp); aErr != nil {
      return apierr.Internal(fmt.Errorf("failed to apply connection xp: %w", aErr))
    }
    if lErr := fs.familyRepo.SetLastInteraction(ctx, tx, member.ID, now); lErr != nil {
      return apierr.Internal(fmt.Errorf("failed to update last interaction: %w", lErr))
    }
    return nil
  })
  if txErr != nil {
    return nil, txErr
  }

  fs.hub.BroadcastToUser(member.UserID, sse.SSEEventXpGranted, map[string]any{
    "family_member_id": member.ID,
    "amount":           xp,
  })
  return fs.GetMember(ctx, memberID)
}

func (fs *familyService) GetInteractions(ctx context.Context, memberID uuid.UUID) ([]*types.FamilyTaskFeedback, error) {
  member, err := fs.ownedMember(ctx, nil, memberID)
  if err != nil {
    return nil, err
  }
  rows, fErr := fs.feedbackRepo.GetByMemberID(ctx, nil, member.ID)
  if fErr != nil {
    return nil, apierr.Internal(fmt.Errorf("failed to list interactions: %w", fErr))
  }
  return rows, nil
}
