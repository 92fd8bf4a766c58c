package services

import (
  "context"
  "fmt"
  "strings"
  "time"

  "github.com/google/uuid"
  "golang.org/x/sync/errgroup"
  "gorm.io/gorm"

  "github.com/robert-crandall/journal-app-sub007/internal/apierr"
  "github.com/robert-crandall/journal-app-sub007/internal/logger"
  "github.com/robert-crandall/journal-app-sub007/internal/normalization"
  "github.com/robert-crandall/journal-app-sub007/internal/repos"
  "github.com/robert-crandall/journal-app-sub007/internal/requestdata"
  "github.com/robert-crandall/journal-app-sub007/internal/sse"
  "github.com/robert-crandall/journal-app-sub007/internal/types"
)

const (
  // MaxIntentLength bounds the free-text intent. Checked before any
  // external call is made.
  MaxIntentLength = 500

  // attentionWindow is how long a family member can go without a logged
  // interaction before generation starts suggesting tasks for them.
  attentionWindow = 7 * 24 * time.Hour
)

type TaskGenService interface {
  GenerateTasks(ctx context.Context, intent string) ([]*types.Task, error)
}

type taskGenService struct {
  db         *gorm.DB
  log        *logger.Logger
  taskRepo   repos.TaskRepo
  goalRepo   repos.GoalRepo
  familyRepo repos.FamilyMemberRepo
  userRepo   repos.UserRepo
  statRepo   repos.CharacterStatRepo
  weather    WeatherService
  ai         AIClient
  hub        *sse.SSEHub
}

func NewTaskGenService(
  db *gorm.DB,
  log *logger.Logger,
  taskRepo repos.TaskRepo,
  goalRepo repos.GoalRepo,
  familyRepo repos.FamilyMemberRepo,
  userRepo repos.UserRepo,
  statRepo repos.CharacterStatRepo,
  weather WeatherService,
  ai AIClient,
  hub *sse.SSEHub,
) TaskGenService {
  return &taskGenService{
    db:         db,
    log:        log.With("service", "TaskGenService"),
    taskRepo:   taskRepo,
    goalRepo:   goalRepo,
    familyRepo: familyRepo,
    userRepo:   userRepo,
    statRepo:   statRepo,
    weather:    weather,
    ai:         ai,
    hub:        hub,
  }
}

// ValidateIntent bounds the free-text intent before anything external runs.
func ValidateIntent(intent string) (string, error) {
  intent = normalization.ParseInputString(intent)
  if len(intent) > MaxIntentLength {
    return "", apierr.Validation("intent must be at most %d characters", MaxIntentLength)
  }
  return intent, nil
}

type generationContext struct {
  goals   []*types.Goal
  weather *WeatherReport
  family  []*types.FamilyMember
  stats   []*types.CharacterStat
}

// gatherContext collects generation inputs concurrently. Weather is best
// effort: a user without a zip, or a provider outage, degrades to indoor
// suggestions instead of failing the whole request.
func (ts *taskGenService) gatherContext(ctx context.Context, userID uuid.UUID) (*generationContext, error) {
  gc := &generationContext{}
  g, gctx := errgroup.WithContext(ctx)

  g.Go(func() error {
    goals, err := ts.goalRepo.GetByUserID(gctx, nil, userID)
    if err != nil {
      return apierr.Internal(fmt.Errorf("failed to load goals: %w", err))
    }
    for _, gl := range goals {
      if gl.EligibleForGeneration() {
        gc.goals = append(gc.goals, gl)
      }
    }
    return nil
  })

  g.Go(func() error {
    members, err := ts.familyRepo.GetByUserID(gctx, nil, userID)
    if err != nil {
      return apierr.Internal(fmt.Errorf("failed to load family members: %w", err))
    }
    now := time.Now()
    for _, m := range members {
      if m.NeedsAttention(now, attentionWindow) {
        gc.family = append(gc.family, m)
      }
    }
    return nil
  })

  g.Go(func() error {
    stats, err := ts.statRepo.GetByUserID(gctx, nil, userID)
    if err != nil {
      return apierr.Internal(fmt.Errorf("failed to load stats: %w", err))
    }
    gc.stats = stats
    return nil
  })

  g.Go(func() error {
    users, err := ts.userRepo.GetByIDs(gctx, nil, []uuid.UUID{userID})
    if err != nil {
      return apierr.Internal(fmt.Errorf("failed to load user: %w", err))
    }
    if len(users) == 0 {
      return apierr.NotFound("user not found")
    }
    if users[0].ZipCode == "" {
      return nil
    }
    report, wErr := ts.weather.GetForZip(gctx, users[0].ZipCode)
    if wErr != nil {
      ts.log.Warn("Weather lookup failed during generation", "error", wErr)
      return nil
    }
    gc.weather = report
    return nil
  })

  if err := g.Wait(); err != nil {
    return nil, err
  }
  return gc, nil
}

const generationSystemPrompt = `You generate a short daily task list for a ` +
  `personal development app. Given the user's intent, goals, weather, and ` +
  `family members who could use attention, suggest 2-4 personal tasks and ` +
  `at most one task per listed family member. Tasks are small, concrete, ` +
  `and doable today. Assign each task an XP reward between 5 and 25 and, ` +
  `where one fits, a stat name taken only from the provided list.`

func generationSchema() map[string]any {
  taskItem := map[string]any{
    "type": "object",
    "properties": map[string]any{
      "title":       map[string]any{"type": "string"},
      "description": map[string]any{"type": "string"},
      "xp":          map[string]any{"type": "integer", "minimum": 1},
      "stat_name":   map[string]any{"type": "string"},
    },
    "required":             []string{"title", "description", "xp", "stat_name"},
    "additionalProperties": false,
  }
  familyItem := map[string]any{
    "type": "object",
    "properties": map[string]any{
      "member_name": map[string]any{"type": "string"},
      "title":       map[string]any{"type": "string"},
      "description": map[string]any{"type": "string"},
      "xp":          map[string]any{"type": "integer", "minimum": 1},
    },
    "required":             []string{"member_name", "title", "description", "xp"},
    "additionalProperties": false,
  }
  return map[string]any{
    "type": "object",
    "properties": map[string]any{
      "personal_tasks": map[string]any{"type": "array", "items": taskItem},
      "family_tasks":   map[string]any{"type": "array", "items": familyItem},
    },
    "required":             []string{"personal_tasks", "family_tasks"},
    "additionalProperties": false,
  }
}

func (ts *taskGenService) buildPrompt(intent string, gc *generationContext) string {
  var b strings.Builder
  if intent != "" {
    b.WriteString("Today's intent: ")
    b.WriteString(intent)
    b.WriteString("\n")
  }
  if gc.weather != nil {
    fmt.Fprintf(&b, "Weather: %s, %.0f°F, outdoor friendly: %t\n",
      gc.weather.Condition, gc.weather.TemperatureF, gc.weather.IsOutdoorFriendly)
  } else {
    b.WriteString("Weather: unknown, prefer indoor suggestions\n")
  }
  if len(gc.goals) > 0 {
    b.WriteString("Active goals:\n")
    for _, goal := range gc.goals {
      fmt.Fprintf(&b, "- %s: %s\n", goal.Title, goal.Description)
    }
  }
  var statNames []string
  for _, s := range gc.stats {
    if s.Enabled {
      statNames = append(statNames, s.Name)
    }
  }
  fmt.Fprintf(&b, "Character stats: %s\n", strings.Join(statNames, ", "))
  if len(gc.family) > 0 {
    b.WriteString("Family members needing attention:\n")
    for _, m := range gc.family {
      fmt.Fprintf(&b, "- %s (%s), likes: %s\n", m.Name, m.Relationship, string(m.Likes))
    }
  }
  return b.String()
}

// parseSuggestions converts the model output into unsaved Task rows. Stat and
// member names resolve case-insensitively; suggestions that reference nothing
// known keep the task but drop the link.
func parseSuggestions(obj map[string]any, userID uuid.UUID, gc *generationContext) []*types.Task {
  statByName := map[string]*types.CharacterStat{}
  for _, s := range gc.stats {
    if s.Enabled {
      statByName[strings.ToLower(s.Name)] = s
    }
  }
  memberByName := map[string]*types.FamilyMember{}
  for _, m := range gc.family {
    memberByName[strings.ToLower(m.Name)] = m
  }

  var tasks []*types.Task
  if personal, ok := obj["personal_tasks"].([]any); ok {
    for _, item := range personal {
      m, ok := item.(map[string]any)
      if !ok {
        continue
      }
      title, _ := m["title"].(string)
      if strings.TrimSpace(title) == "" {
        continue
      }
      desc, _ := m["description"].(string)
      xp, _ := m["xp"].(float64)
      if xp < 1 {
        xp = 5
      }
      task := &types.Task{
        ID:          uuid.New(),
        UserID:      userID,
        Title:       title,
        Description: desc,
        XpReward:    int(xp),
        Source:      types.TaskSourceAI,
      }
      if name, _ := m["stat_name"].(string); name != "" {
        if stat, found := statByName[strings.ToLower(strings.TrimSpace(name))]; found {
          id := stat.ID
          task.StatID = &id
        }
      }
      tasks = append(tasks, task)
    }
  }
  if family, ok := obj["family_tasks"].([]any); ok {
    for _, item := range family {
      m, ok := item.(map[string]any)
      if !ok {
        continue
      }
      title, _ := m["title"].(string)
      memberName, _ := m["member_name"].(string)
      member, found := memberByName[strings.ToLower(strings.TrimSpace(memberName))]
      if strings.TrimSpace(title) == "" || !found {
        continue
      }
      desc, _ := m["description"].(string)
      xp, _ := m["xp"].(float64)
      if xp < 1 {
        xp = 5
      }
      id := member.ID
      tasks = append(tasks, &types.Task{
        ID:             uuid.New(),
        UserID:         userID,
        Title:          title,
        Description:    desc,
        XpReward:       int(xp),
        Source:         types.TaskSourceAI,
        FamilyMemberID: &id,
      })
    }
  }
  return tasks
}

// GenerateTasks runs one AI call over the gathered context and persists the
// suggested batch atomically. Nothing is written when the AI call fails.
func (ts *taskGenService) GenerateTasks(ctx context.Context, intent string) ([]*types.Task, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return nil, apierr.Unauthorized("no authenticated user in context")
  }
  userID := rd.UserID

  intent, vErr := ValidateIntent(intent)
  if vErr != nil {
    return nil, vErr
  }

  gc, gErr := ts.gatherContext(ctx, userID)
  if gErr != nil {
    return nil, gErr
  }

  obj, aiErr := ts.ai.GenerateJSON(ctx, generationSystemPrompt, ts.buildPrompt(intent, gc), "task_suggestions", generationSchema())
  if aiErr != nil {
    ts.log.Warn("Task generation failed", "user_id", userID, "error", aiErr)
    return nil, apierr.ServiceUnavailable(fmt.Errorf("task generation failed, try again: %w", aiErr))
  }

  tasks := parseSuggestions(obj, userID, gc)
  if len(tasks) == 0 {
    return nil, apierr.ServiceUnavailable(fmt.Errorf("task generation produced no usable suggestions"))
  }

  if err := withTx(ctx, ts.db, func(tx *gorm.DB) error {
    if _, cErr := ts.taskRepo.Create(ctx, tx, tasks); cErr != nil {
      return apierr.Internal(fmt.Errorf("failed to persist generated tasks: %w", cErr))
    }
    return nil
  }); err != nil {
    return nil, err
  }

  ts.hub.BroadcastToUser(userID, sse.SSEEventTasksGenerated, map[string]any{
    "count": len(tasks),
  })
  ts.log.Info("Generated tasks", "user_id", userID, "count", len(tasks))
  return tasks, nil
}
