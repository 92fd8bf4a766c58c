package services

import (
  "context"
  "encoding/json"
  "fmt"

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

// StatView is a CharacterStat plus the derived progression fields. Level is
// always computed on read from the grant-maintained total.
type StatView struct {
  *types.CharacterStat
  Level          int `json:"level"`
  XpIntoLevel    int `json:"xp_into_level"`
  XpForNextLevel int `json:"xp_for_next_level"`
}

type CreateStatInput struct {
  Name              string
  Description       string
  ExampleActivities []string
}

type UpdateStatInput struct {
  Name              *string
  Description       *string
  ExampleActivities []string
}

// GrantInput describes one XP grant against a stat from a source activity.
type GrantInput struct {
  StatID     uuid.UUID
  Amount     int
  SourceType types.XpSourceType
  SourceID   uuid.UUID
  Reason     string
}

type StatService interface {
  CreateStat(ctx context.Context, input CreateStatInput) (*StatView, error)
  GetStats(ctx context.Context) ([]*StatView, error)
  GetStat(ctx context.Context, statID uuid.UUID) (*StatView, error)
  UpdateStat(ctx context.Context, statID uuid.UUID, input UpdateStatInput) (*StatView, error)
  SetStatEnabled(ctx context.Context, statID uuid.UUID, enabled bool) (*StatView, error)
  GetGrants(ctx context.Context, statID uuid.UUID) ([]*types.XpGrant, error)

  // GrantXP and DeleteGrantsBySource are the only paths that move stat
  // totals. Both run against the caller's transaction when one is given.
  GrantXP(ctx context.Context, tx *gorm.DB, userID uuid.UUID, input GrantInput) (*types.XpGrant, error)
  DeleteGrantsBySource(ctx context.Context, tx *gorm.DB, sourceType types.XpSourceType, sourceID uuid.UUID) error
}

type statService struct {
  db        *gorm.DB
  log       *logger.Logger
  statRepo  repos.CharacterStatRepo
  grantRepo repos.XpGrantRepo
  hub       *sse.SSEHub
}

func NewStatService(
  db *gorm.DB,
  log *logger.Logger,
  statRepo repos.CharacterStatRepo,
  grantRepo repos.XpGrantRepo,
  hub *sse.SSEHub,
) StatService {
  return &statService{
    db:        db,
    log:       log.With("service", "StatService"),
    statRepo:  statRepo,
    grantRepo: grantRepo,
    hub:       hub,
  }
}

func viewOf(stat *types.CharacterStat) *StatView {
  p := leveling.Compute(stat.CurrentXp)
  return &StatView{
    CharacterStat:  stat,
    Level:          p.Level,
    XpIntoLevel:    p.XpIntoLevel,
    XpForNextLevel: p.XpForNextLevel,
  }
}

func (ss *statService) currentUserID(ctx context.Context) (uuid.UUID, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return uuid.Nil, apierr.Unauthorized("no authenticated user in context")
  }
  return rd.UserID, nil
}

func (ss *statService) ownedStat(ctx context.Context, tx *gorm.DB, statID uuid.UUID) (*types.CharacterStat, error) {
  userID, err := ss.currentUserID(ctx)
  if err != nil {
    return nil, err
  }
  stats, sErr := ss.statRepo.GetByIDs(ctx, tx, []uuid.UUID{statID})
  if sErr != nil {
    return nil, apierr.Internal(fmt.Errorf("failed to load stat: %w", sErr))
  }
  if len(stats) == 0 || stats[0].UserID != userID {
    return nil, apierr.NotFound("stat not found")
  }
  return stats[0], nil
}

func (ss *statService) CreateStat(ctx context.Context, input CreateStatInput) (*StatView, error) {
  userID, err := ss.currentUserID(ctx)
  if err != nil {
    return nil, err
  }
  name := normalization.ParseInputString(input.Name)
  if name == "" {
    return nil, apierr.Validation("stat name cannot be empty")
  }
  exists, eErr := ss.statRepo.NameExists(ctx, nil, userID, name)
  if eErr != nil {
    return nil, apierr.Internal(fmt.Errorf("failed to check stat name: %w", eErr))
  }
  if exists {
    return nil, apierr.Conflict("a stat named %q already exists", name)
  }

  stat := &types.CharacterStat{
    ID:          uuid.New(),
    UserID:      userID,
    Name:        name,
    Description: normalization.ParseInputString(input.Description),
    Enabled:     true,
  }
  if len(input.ExampleActivities) > 0 {
    raw, mErr := json.Marshal(input.ExampleActivities)
    if mErr != nil {
      return nil, apierr.Internal(mErr)
    }
    stat.ExampleActivities = datatypes.JSON(raw)
  }
  if _, cErr := ss.statRepo.Create(ctx, nil, []*types.CharacterStat{stat}); cErr != nil {
    return nil, apierr.Internal(fmt.Errorf("failed to create stat: %w", cErr))
  }
  return viewOf(stat), nil
}

func (ss *statService) GetStats(ctx context.Context) ([]*StatView, error) {
  userID, err := ss.currentUserID(ctx)
  if err != nil {
    return nil, err
  }
  stats, sErr := ss.statRepo.GetByUserID(ctx, nil, userID)
  if sErr != nil {
    return nil, apierr.Internal(fmt.Errorf("failed to list stats: %w", sErr))
  }
  views := make([]*StatView, 0, len(stats))
  for _, stat := range stats {
    views = append(views, viewOf(stat))
  }
  return views, nil
}

func (ss *statService) GetStat(ctx context.Context, statID uuid.UUID) (*StatView, error) {
  stat, err := ss.ownedStat(ctx, nil, statID)
  if err != nil {
    return nil, err
  }
  return viewOf(stat), nil
}

func (ss *statService) UpdateStat(ctx context.Context, statID uuid.UUID, input UpdateStatInput) (*StatView, error) {
  stat, err := ss.ownedStat(ctx, nil, statID)
  if err != nil {
    return nil, err
  }
  fields := map[string]any{}
  if input.Name != nil {
    name := normalization.ParseInputString(*input.Name)
    if name == "" {
      return nil, apierr.Validation("stat name cannot be empty")
    }
    if name != stat.Name {
      exists, eErr := ss.statRepo.NameExists(ctx, nil, stat.UserID, name)
      if eErr != nil {
        return nil, apierr.Internal(fmt.Errorf("failed to check stat name: %w", eErr))
      }
      if exists {
        return nil, apierr.Conflict("a stat named %q already exists", name)
      }
    }
    fields["name"] = name
  }
  if input.Description != nil {
    fields["description"] = normalization.ParseInputString(*input.Description)
  }
  if input.ExampleActivities != nil {
    raw, mErr := json.Marshal(input.ExampleActivities)
    if mErr != nil {
      return nil, apierr.Internal(mErr)
    }
    fields["example_activities"] = datatypes.JSON(raw)
  }
  if len(fields) > 0 {
    if uErr := ss.statRepo.UpdateMetadata(ctx, nil, statID, fields); uErr != nil {
      return nil, apierr.Internal(fmt.Errorf("failed to update stat: %w", uErr))
    }
  }
  return ss.GetStat(ctx, statID)
}

func (ss *statService) SetStatEnabled(ctx context.Context, statID uuid.UUID, enabled bool) (*StatView, error) {
  if _, err := ss.ownedStat(ctx, nil, statID); err != nil {
    return nil, err
  }
  if uErr := ss.statRepo.SetEnabled(ctx, nil, statID, enabled); uErr != nil {
    return nil, apierr.Internal(fmt.Errorf("failed to toggle stat: %w", uErr))
  }
  return ss.GetStat(ctx, statID)
}

func (ss *statService) GetGrants(ctx context.Context, statID uuid.UUID) ([]*types.XpGrant, error) {
  if _, err := ss.ownedStat(ctx, nil, statID); err != nil {
    return nil, err
  }
  grants, gErr := ss.grantRepo.GetByStatID(ctx, nil, statID)
  if gErr != nil {
    return nil, apierr.Internal(fmt.Errorf("failed to list grants: %w", gErr))
  }
  return grants, nil
}

func (ss *statService) GrantXP(ctx context.Context, tx *gorm.DB, userID uuid.UUID, input GrantInput) (*types.XpGrant, error) {
  if input.Amount <= 0 {
    return nil, apierr.Validation("grant amount must be a positive integer")
  }
  if !input.SourceType.Valid() {
    return nil, apierr.Validation("unknown grant source type %q", input.SourceType)
  }

  run := func(tx *gorm.DB) (*types.XpGrant, error) {
    statID := input.StatID
    grant := &types.XpGrant{
      ID:         uuid.New(),
      UserID:     userID,
      StatID:     &statID,
      Amount:     input.Amount,
      SourceType: input.SourceType,
      SourceID:   input.SourceID,
      Reason:     input.Reason,
    }
    if _, cErr := ss.grantRepo.Create(ctx, tx, []*types.XpGrant{grant}); cErr != nil {
      return nil, apierr.Internal(fmt.Errorf("failed to create grant: %w", cErr))
    }
    if aErr := ss.statRepo.AddXp(ctx, tx, input.StatID, input.Amount); aErr != nil {
      return nil, apierr.Internal(fmt.Errorf("failed to apply grant to stat total: %w", aErr))
    }
    return grant, nil
  }

  if tx != nil {
    grant, err := run(tx)
    if err == nil {
      ss.hub.BroadcastToUser(userID, sse.SSEEventXpGranted, grant)
    }
    return grant, err
  }

  var grant *types.XpGrant
  err := withTx(ctx, ss.db, func(tx *gorm.DB) error {
    var runErr error
    grant, runErr = run(tx)
    return runErr
  })
  if err != nil {
    return nil, err
  }
  ss.hub.BroadcastToUser(userID, sse.SSEEventXpGranted, grant)
  return grant, nil
}

func (ss *statService) DeleteGrantsBySource(ctx context.Context, tx *gorm.DB, sourceType types.XpSourceType, sourceID uuid.UUID) error {
  run := func(tx *gorm.DB) error {
    grants, gErr := ss.grantRepo.GetBySource(ctx, tx, sourceType, sourceID)
    if gErr != nil {
      return apierr.Internal(fmt.Errorf("failed to load grants for source: %w", gErr))
    }
    for _, grant := range grants {
      if grant.StatID == nil {
        continue
      }
      if aErr := ss.statRepo.AddXp(ctx, tx, *grant.StatID, -grant.Amount); aErr != nil {
        return apierr.Internal(fmt.Errorf("failed to reverse grant on stat total: %w", aErr))
      }
    }
    if dErr := ss.grantRepo.FullDeleteBySource(ctx, tx, sourceType, sourceID); dErr != nil {
      return apierr.Internal(fmt.Errorf("failed to delete grants for source: %w", dErr))
    }
    return nil
  }
  if tx != nil {
    return run(tx)
  }
  return withTx(ctx, ss.db, run)
}
