package services

import (
  "context"
  "encoding/json"
  "errors"
  "fmt"
  "strings"
  "time"

  "github.com/google/uuid"
  "gorm.io/datatypes"
  "gorm.io/gorm"

  "github.com/robert-crandall/journal-app-sub007/internal/apierr"
  "github.com/robert-crandall/journal-app-sub007/internal/logger"
  "github.com/robert-crandall/journal-app-sub007/internal/normalization"
  "github.com/robert-crandall/journal-app-sub007/internal/repos"
  "github.com/robert-crandall/journal-app-sub007/internal/requestdata"
  "github.com/robert-crandall/journal-app-sub007/internal/sse"
  "github.com/robert-crandall/journal-app-sub007/internal/types"
)

type JournalService interface {
  CreateEntry(ctx context.Context, date time.Time, content string) (*types.JournalEntry, error)
  GetEntry(ctx context.Context, entryID uuid.UUID) (*types.JournalEntry, error)
  GetEntryByDate(ctx context.Context, date time.Time) (*types.JournalEntry, error)
  ListEntries(ctx context.Context) ([]*types.JournalEntry, error)
  SaveEntry(ctx context.Context, entryID uuid.UUID, content string) (*types.JournalEntry, error)
  ReopenEntry(ctx context.Context, entryID uuid.UUID) (*types.JournalEntry, error)
  StartReflection(ctx context.Context, entryID uuid.UUID) (*types.JournalEntry, error)
  AddMessage(ctx context.Context, entryID uuid.UUID, message string) (*types.JournalEntry, error)
  FinishEntry(ctx context.Context, entryID uuid.UUID) (*types.JournalEntry, error)
  DeleteEntry(ctx context.Context, entryID uuid.UUID) error
}

type journalService struct {
  db          *gorm.DB
  log         *logger.Logger
  entryRepo   repos.JournalEntryRepo
  statRepo    repos.CharacterStatRepo
  statService StatService
  ai          AIClient
  hub         *sse.SSEHub
}

func NewJournalService(
  db *gorm.DB,
  log *logger.Logger,
  entryRepo repos.JournalEntryRepo,
  statRepo repos.CharacterStatRepo,
  statService StatService,
  ai AIClient,
  hub *sse.SSEHub,
) JournalService {
  return &journalService{
    db:          db,
    log:         log.With("service", "JournalService"),
    entryRepo:   entryRepo,
    statRepo:    statRepo,
    statService: statService,
    ai:          ai,
    hub:         hub,
  }
}

// DecodeConversation unpacks the jsonb transcript. A missing column decodes
// to an empty transcript.
func DecodeConversation(raw datatypes.JSON) ([]types.ConversationTurn, error) {
  if len(raw) == 0 {
    return []types.ConversationTurn{}, nil
  }
  var turns []types.ConversationTurn
  if err := json.Unmarshal(raw, &turns); err != nil {
    return nil, fmt.Errorf("conversation column unreadable: %w", err)
  }
  return turns, nil
}

// AppendTurn adds one turn at the end of the transcript. Existing turns are
// never reordered or edited.
func AppendTurn(turns []types.ConversationTurn, role, content string, at time.Time) []types.ConversationTurn {
  return append(turns, types.ConversationTurn{Role: role, Content: content, Timestamp: at})
}

func encodeConversation(turns []types.ConversationTurn) (datatypes.JSON, error) {
  raw, err := json.Marshal(turns)
  if err != nil {
    return nil, err
  }
  return datatypes.JSON(raw), nil
}

func dateOnly(t time.Time) time.Time {
  return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (js *journalService) currentUserID(ctx context.Context) (uuid.UUID, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return uuid.Nil, apierr.Unauthorized("no authenticated user in context")
  }
  return rd.UserID, nil
}

func (js *journalService) ownedEntry(ctx context.Context, tx *gorm.DB, entryID uuid.UUID) (*types.JournalEntry, error) {
  userID, err := js.currentUserID(ctx)
  if err != nil {
    return nil, err
  }
  entries, eErr := js.entryRepo.GetByIDs(ctx, tx, []uuid.UUID{entryID})
  if eErr != nil {
    return nil, apierr.Internal(fmt.Errorf("failed to load journal entry: %w", eErr))
  }
  if len(entries) == 0 || entries[0].UserID != userID {
    return nil, apierr.NotFound("journal entry not found")
  }
  return entries[0], nil
}

func (js *journalService) CreateEntry(ctx context.Context, date time.Time, content string) (*types.JournalEntry, error) {
  userID, err := js.currentUserID(ctx)
  if err != nil {
    return nil, err
  }
  date = dateOnly(date)
  exists, exErr := js.entryRepo.ExistsForUserAndDate(ctx, nil, userID, date)
  if exErr != nil {
    return nil, apierr.Internal(fmt.Errorf("failed to check for existing entry: %w", exErr))
  }
  if exists {
    return nil, apierr.Conflict("a journal entry for %s already exists", date.Format("2006-01-02"))
  }

  conv, _ := encodeConversation([]types.ConversationTurn{})
  entry := &types.JournalEntry{
    ID:           uuid.New(),
    UserID:       userID,
    Date:         date,
    Status:       types.JournalStatusDraft,
    Content:      content,
    Conversation: conv,
  }
  if _, cErr := js.entryRepo.Create(ctx, nil, []*types.JournalEntry{entry}); cErr != nil {
    // The existence check races with concurrent creates; the unique index on
    // (user_id, date) is the real arbiter.
    if errors.Is(cErr, gorm.ErrDuplicatedKey) {
      return nil, apierr.Conflict("a journal entry for %s already exists", date.Format("2006-01-02"))
    }
    return nil, apierr.Internal(fmt.Errorf("failed to create journal entry: %w", cErr))
  }
  return entry, nil
}

func (js *journalService) GetEntry(ctx context.Context, entryID uuid.UUID) (*types.JournalEntry, error) {
  return js.ownedEntry(ctx, nil, entryID)
}

func (js *journalService) GetEntryByDate(ctx context.Context, date time.Time) (*types.JournalEntry, error) {
  userID, err := js.currentUserID(ctx)
  if err != nil {
    return nil, err
  }
  entry, eErr := js.entryRepo.GetByUserAndDate(ctx, nil, userID, dateOnly(date))
  if eErr != nil {
    return nil, apierr.Internal(fmt.Errorf("failed to load entry by date: %w", eErr))
  }
  if entry == nil {
    return nil, apierr.NotFound("no journal entry for that date")
  }
  return entry, nil
}

func (js *journalService) ListEntries(ctx context.Context) ([]*types.JournalEntry, error) {
  userID, err := js.currentUserID(ctx)
  if err != nil {
    return nil, err
  }
  entries, eErr := js.entryRepo.GetByUserID(ctx, nil, userID)
  if eErr != nil {
    return nil, apierr.Internal(fmt.Errorf("failed to list entries: %w", eErr))
  }
  return entries, nil
}

// ReopenEntry moves a complete entry back to draft so it can be edited. The
// prior completion's grants are left in place: abandoning the edit leaves
// everything exactly as it was.
func (js *journalService) ReopenEntry(ctx context.Context, entryID uuid.UUID) (*types.JournalEntry, error) {
  entry, err := js.ownedEntry(ctx, nil, entryID)
  if err != nil {
    return nil, err
  }
  if !types.CanTransition(entry.Status, types.JournalStatusDraft) {
    return nil, apierr.Validation("cannot reopen an entry in status %q", entry.Status)
  }
  entry.Status = types.JournalStatusDraft
  if sErr := js.entryRepo.Save(ctx, nil, entry); sErr != nil {
    return nil, apierr.Internal(fmt.Errorf("failed to reopen entry: %w", sErr))
  }
  return entry, nil
}

// SaveEntry persists edited content. This is the commit point of an edit:
// once a previously-completed entry is saved, the grants from the old
// completion are stale and get deleted in the same transaction.
func (js *journalService) SaveEntry(ctx context.Context, entryID uuid.UUID, content string) (*types.JournalEntry, error) {
  entry, err := js.ownedEntry(ctx, nil, entryID)
  if err != nil {
    return nil, err
  }
  if entry.Status == types.JournalStatusReflecting {
    return nil, apierr.Validation("cannot edit content while a reflection is in progress")
  }

  wasComplete := entry.Status == types.JournalStatusComplete
  txErr := withTx(ctx, js.db, func(tx *gorm.DB) error {
    if wasComplete {
      if dErr := js.statService.DeleteGrantsBySource(ctx, tx, types.XpSourceJournal, entry.ID); dErr != nil {
        return dErr
      }
      entry.Status = types.JournalStatusDraft
      entry.Synopsis = ""
      entry.Summary = ""
      entry.DayRating = nil
      entry.ToneTags = nil
    }
    entry.Content = content
    if sErr := js.entryRepo.Save(ctx, tx, entry); sErr != nil {
      return apierr.Internal(fmt.Errorf("failed to save entry: %w", sErr))
    }
    return nil
  })
  if txErr != nil {
    return nil, txErr
  }
  return entry, nil
}

const reflectionSystemPrompt = `You are a warm, curious journaling companion. ` +
  `The user shares what happened in their day; you respond with one short, ` +
  `thoughtful reply that helps them reflect. Ask at most one question. ` +
  `Never give medical or clinical advice.`

func (js *journalService) StartReflection(ctx context.Context, entryID uuid.UUID) (*types.JournalEntry, error) {
  entry, err := js.ownedEntry(ctx, nil, entryID)
  if err != nil {
    return nil, err
  }
  if !types.CanTransition(entry.Status, types.JournalStatusReflecting) {
    return nil, apierr.Validation("cannot start reflection from status %q", entry.Status)
  }
  if normalization.ParseInputString(entry.Content) == "" {
    return nil, apierr.Validation("write something before starting a reflection")
  }

  reply, aiErr := js.ai.GenerateText(ctx, reflectionSystemPrompt, entry.Content)
  if aiErr != nil {
    js.log.Warn("Reflection opener failed", "entry_id", entry.ID, "error", aiErr)
    return nil, apierr.ServiceUnavailable(fmt.Errorf("reflection assistant unavailable: %w", aiErr))
  }

  turns, dErr := DecodeConversation(entry.Conversation)
  if dErr != nil {
    return nil, apierr.Internal(dErr)
  }
  turns = AppendTurn(turns, types.ConversationRoleAssistant, reply, time.Now().UTC())
  conv, eErr := encodeConversation(turns)
  if eErr != nil {
    return nil, apierr.Internal(eErr)
  }

  entry.Status = types.JournalStatusReflecting
  entry.Conversation = conv
  if sErr := js.entryRepo.Save(ctx, nil, entry); sErr != nil {
    return nil, apierr.Internal(fmt.Errorf("failed to save entry: %w", sErr))
  }
  return entry, nil
}

func (js *journalService) AddMessage(ctx context.Context, entryID uuid.UUID, message string) (*types.JournalEntry, error) {
  entry, err := js.ownedEntry(ctx, nil, entryID)
  if err != nil {
    return nil, err
  }
  if entry.Status != types.JournalStatusReflecting {
    return nil, apierr.Validation("cannot add a message to an entry in status %q", entry.Status)
  }
  message = normalization.ParseInputString(message)
  if message == "" {
    return nil, apierr.Validation("message cannot be empty")
  }

  turns, dErr := DecodeConversation(entry.Conversation)
  if dErr != nil {
    return nil, apierr.Internal(dErr)
  }

  prompt := js.transcriptPrompt(entry.Content, turns, message)
  reply, aiErr := js.ai.GenerateText(ctx, reflectionSystemPrompt, prompt)
  if aiErr != nil {
    js.log.Warn("Reflection reply failed", "entry_id", entry.ID, "error", aiErr)
    return nil, apierr.ServiceUnavailable(fmt.Errorf("reflection assistant unavailable: %w", aiErr))
  }

  now := time.Now().UTC()
  turns = AppendTurn(turns, types.ConversationRoleUser, message, now)
  turns = AppendTurn(turns, types.ConversationRoleAssistant, reply, now)
  conv, eErr := encodeConversation(turns)
  if eErr != nil {
    return nil, apierr.Internal(eErr)
  }

  entry.Conversation = conv
  if sErr := js.entryRepo.Save(ctx, nil, entry); sErr != nil {
    return nil, apierr.Internal(fmt.Errorf("failed to save entry: %w", sErr))
  }
  return entry, nil
}

func (js *journalService) transcriptPrompt(content string, turns []types.ConversationTurn, latest string) string {
  var b strings.Builder
  b.WriteString("Journal entry:\n")
  b.WriteString(content)
  b.WriteString("\n\nConversation so far:\n")
  for _, t := range turns {
    b.WriteString(t.Role)
    b.WriteString(": ")
    b.WriteString(t.Content)
    b.WriteString("\n")
  }
  b.WriteString("user: ")
  b.WriteString(latest)
  return b.String()
}

const completionSystemPrompt = `You analyze a finished journal reflection. ` +
  `Produce a one-line synopsis, a short summary paragraph, a day rating from ` +
  `1 to 5, a few lowercase tone tags, and XP attributions against the ` +
  `provided character stats for activities the entry shows real effort in. ` +
  `Attribute between 5 and 25 XP per stat and only use stat names from the list.`

func completionSchema() map[string]any {
  return map[string]any{
    "type": "object",
    "properties": map[string]any{
      "synopsis":   map[string]any{"type": "string"},
      "summary":    map[string]any{"type": "string"},
      "day_rating": map[string]any{"type": "integer", "minimum": 1, "maximum": 5},
      "tone_tags": map[string]any{
        "type":  "array",
        "items": map[string]any{"type": "string"},
      },
      "stat_attributions": map[string]any{
        "type": "array",
        "items": map[string]any{
          "type": "object",
          "properties": map[string]any{
            "stat_name": map[string]any{"type": "string"},
            "xp":        map[string]any{"type": "integer", "minimum": 1},
            "reason":    map[string]any{"type": "string"},
          },
          "required":             []string{"stat_name", "xp", "reason"},
          "additionalProperties": false,
        },
      },
    },
    "required":             []string{"synopsis", "summary", "day_rating", "tone_tags", "stat_attributions"},
    "additionalProperties": false,
  }
}

type completionResult struct {
  Synopsis  string
  Summary   string
  DayRating int
  ToneTags  []string
  Grants    []GrantInput
}

// parseCompletion validates the model output and resolves stat names against
// the user's enabled stats. Unknown or disabled stat names are dropped, not
// errors: the model is allowed to over-suggest.
func parseCompletion(obj map[string]any, entryID uuid.UUID, stats []*types.CharacterStat) (*completionResult, error) {
  byName := map[string]*types.CharacterStat{}
  for _, s := range stats {
    if s.Enabled {
      byName[strings.ToLower(s.Name)] = s
    }
  }

  res := &completionResult{}
  var ok bool
  if res.Synopsis, ok = obj["synopsis"].(string); !ok {
    return nil, fmt.Errorf("completion missing synopsis")
  }
  if res.Summary, ok = obj["summary"].(string); !ok {
    return nil, fmt.Errorf("completion missing summary")
  }
  rating, ok := obj["day_rating"].(float64)
  if !ok {
    return nil, fmt.Errorf("completion missing day_rating")
  }
  res.DayRating = int(rating)
  if res.DayRating < 1 {
    res.DayRating = 1
  }
  if res.DayRating > 5 {
    res.DayRating = 5
  }

  if tags, ok := obj["tone_tags"].([]any); ok {
    for _, t := range tags {
      if s, ok := t.(string); ok && s != "" {
        res.ToneTags = append(res.ToneTags, strings.ToLower(s))
      }
    }
  }

  attributions, _ := obj["stat_attributions"].([]any)
  for _, a := range attributions {
    m, ok := a.(map[string]any)
    if !ok {
      continue
    }
    name, _ := m["stat_name"].(string)
    xp, _ := m["xp"].(float64)
    reason, _ := m["reason"].(string)
    stat, found := byName[strings.ToLower(strings.TrimSpace(name))]
    if !found || xp < 1 {
      continue
    }
    res.Grants = append(res.Grants, GrantInput{
      StatID:     stat.ID,
      Amount:     int(xp),
      SourceType: types.XpSourceJournal,
      SourceID:   entryID,
      Reason:     reason,
    })
  }
  return res, nil
}

// FinishEntry closes out a reflection. The AI analysis happens before any
// write; if it fails the entry stays in reflecting with its transcript
// intact and finish can simply be retried. The grant reconciliation
// (delete stale, insert new) and the status flip share one transaction.
func (js *journalService) FinishEntry(ctx context.Context, entryID uuid.UUID) (*types.JournalEntry, error) {
  entry, err := js.ownedEntry(ctx, nil, entryID)
  if err != nil {
    return nil, err
  }
  if !types.CanTransition(entry.Status, types.JournalStatusComplete) {
    return nil, apierr.Validation("cannot finish an entry in status %q", entry.Status)
  }

  stats, sErr := js.statRepo.GetByUserID(ctx, nil, entry.UserID)
  if sErr != nil {
    return nil, apierr.Internal(fmt.Errorf("failed to load stats: %w", sErr))
  }

  turns, dErr := DecodeConversation(entry.Conversation)
  if dErr != nil {
    return nil, apierr.Internal(dErr)
  }

  var statNames []string
  for _, s := range stats {
    if s.Enabled {
      statNames = append(statNames, s.Name)
    }
  }
  prompt := fmt.Sprintf("Character stats: %s\n\n%s",
    strings.Join(statNames, ", "),
    js.transcriptPrompt(entry.Content, turns, "(finished)"))

  obj, aiErr := js.ai.GenerateJSON(ctx, completionSystemPrompt, prompt, "journal_completion", completionSchema())
  if aiErr != nil {
    js.log.Warn("Journal completion analysis failed", "entry_id", entry.ID, "error", aiErr)
    return nil, apierr.ServiceUnavailable(fmt.Errorf("journal analysis unavailable: %w", aiErr))
  }
  result, pErr := parseCompletion(obj, entry.ID, stats)
  if pErr != nil {
    js.log.Warn("Journal completion payload invalid", "entry_id", entry.ID, "error", pErr)
    return nil, apierr.ServiceUnavailable(fmt.Errorf("journal analysis unusable: %w", pErr))
  }

  tags, mErr := json.Marshal(result.ToneTags)
  if mErr != nil {
    return nil, apierr.Internal(mErr)
  }

  txErr := withTx(ctx, js.db, func(tx *gorm.DB) error {
    // Re-finishing after an edit: clear the old completion's grants first
    // so totals are never double counted.
    if dErr := js.statService.DeleteGrantsBySource(ctx, tx, types.XpSourceJournal, entry.ID); dErr != nil {
      return dErr
    }
    for _, g := range result.Grants {
      if _, gErr := js.statService.GrantXP(ctx, tx, entry.UserID, g); gErr != nil {
        return gErr
      }
    }
    rating := result.DayRating
    entry.Status = types.JournalStatusComplete
    entry.Synopsis = result.Synopsis
    entry.Summary = result.Summary
    entry.DayRating = &rating
    entry.ToneTags = datatypes.JSON(tags)
    if sErr := js.entryRepo.Save(ctx, tx, entry); sErr != nil {
      return apierr.Internal(fmt.Errorf("failed to save completed entry: %w", sErr))
    }
    return nil
  })
  if txErr != nil {
    return nil, txErr
  }

  js.hub.BroadcastToUser(entry.UserID, sse.SSEEventJournalCompleted, map[string]any{
    "entry_id": entry.ID,
    "date":     entry.Date.Format("2006-01-02"),
    "synopsis": entry.Synopsis,
  })
  return entry, nil
}

func (js *journalService) DeleteEntry(ctx context.Context, entryID uuid.UUID) error {
  entry, err := js.ownedEntry(ctx, nil, entryID)
  if err != nil {
    return err
  }
  return withTx(ctx, js.db, func(tx *gorm.DB) error {
    if dErr := js.statService.DeleteGrantsBySource(ctx, tx, types.XpSourceJournal, entry.ID); dErr != nil {
      return dErr
    }
    if dErr := js.entryRepo.FullDeleteByIDs(ctx, tx, []uuid.UUID{entry.ID}); dErr != nil {
      return apierr.Internal(fmt.Errorf("failed to delete entry: %w", dErr))
    }
    return nil
  })
}
