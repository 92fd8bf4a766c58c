package services

import (
  "context"
  "errors"
  "fmt"
  "net/http"
  "sort"
  "testing"
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/robert-crandall/journal-app-sub007/internal/apierr"
  "github.com/robert-crandall/journal-app-sub007/internal/requestdata"
  "github.com/robert-crandall/journal-app-sub007/internal/sse"
  "github.com/robert-crandall/journal-app-sub007/internal/types"
)

// In-memory repos backing the journal/stat services. The services run every
// write path with a nil *gorm.DB, which falls through to a nil tx, so the
// full finish/reopen/save cycle is exercised without a database.

type memEntryRepo struct {
  entries map[uuid.UUID]*types.JournalEntry
}

func newMemEntryRepo() *memEntryRepo {
  return &memEntryRepo{entries: map[uuid.UUID]*types.JournalEntry{}}
}

func copyEntry(e *types.JournalEntry) *types.JournalEntry {
  c := *e
  return &c
}

func (r *memEntryRepo) Create(ctx context.Context, tx *gorm.DB, entries []*types.JournalEntry) ([]*types.JournalEntry, error) {
  for _, e := range entries {
    if e.ID == uuid.Nil {
      e.ID = uuid.New()
    }
    r.entries[e.ID] = copyEntry(e)
  }
  return entries, nil
}

func (r *memEntryRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.JournalEntry, error) {
  var out []*types.JournalEntry
  for _, id := range ids {
    if e, ok := r.entries[id]; ok {
      out = append(out, copyEntry(e))
    }
  }
  return out, nil
}

func (r *memEntryRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.JournalEntry, error) {
  var out []*types.JournalEntry
  for _, e := range r.entries {
    if e.UserID == userID {
      out = append(out, copyEntry(e))
    }
  }
  return out, nil
}

func (r *memEntryRepo) GetByUserAndDate(ctx context.Context, tx *gorm.DB, userID uuid.UUID, date time.Time) (*types.JournalEntry, error) {
  for _, e := range r.entries {
    if e.UserID == userID && e.Date.Equal(date) {
      return copyEntry(e), nil
    }
  }
  return nil, gorm.ErrRecordNotFound
}

func (r *memEntryRepo) ExistsForUserAndDate(ctx context.Context, tx *gorm.DB, userID uuid.UUID, date time.Time) (bool, error) {
  for _, e := range r.entries {
    if e.UserID == userID && e.Date.Equal(date) {
      return true, nil
    }
  }
  return false, nil
}

func (r *memEntryRepo) Save(ctx context.Context, tx *gorm.DB, entry *types.JournalEntry) error {
  r.entries[entry.ID] = copyEntry(entry)
  return nil
}

func (r *memEntryRepo) FullDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
  for _, id := range ids {
    delete(r.entries, id)
  }
  return nil
}

type memGrantRepo struct {
  grants []*types.XpGrant
}

func (r *memGrantRepo) Create(ctx context.Context, tx *gorm.DB, grants []*types.XpGrant) ([]*types.XpGrant, error) {
  for _, g := range grants {
    if g.ID == uuid.Nil {
      g.ID = uuid.New()
    }
    c := *g
    r.grants = append(r.grants, &c)
  }
  return grants, nil
}

func (r *memGrantRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.XpGrant, error) {
  var out []*types.XpGrant
  for _, g := range r.grants {
    if g.UserID == userID {
      c := *g
      out = append(out, &c)
    }
  }
  return out, nil
}

func (r *memGrantRepo) GetByStatID(ctx context.Context, tx *gorm.DB, statID uuid.UUID) ([]*types.XpGrant, error) {
  var out []*types.XpGrant
  for _, g := range r.grants {
    if g.StatID != nil && *g.StatID == statID {
      c := *g
      out = append(out, &c)
    }
  }
  return out, nil
}

func (r *memGrantRepo) GetBySource(ctx context.Context, tx *gorm.DB, sourceType types.XpSourceType, sourceID uuid.UUID) ([]*types.XpGrant, error) {
  var out []*types.XpGrant
  for _, g := range r.grants {
    if g.SourceType == sourceType && g.SourceID == sourceID {
      c := *g
      out = append(out, &c)
    }
  }
  return out, nil
}

func (r *memGrantRepo) FullDeleteBySource(ctx context.Context, tx *gorm.DB, sourceType types.XpSourceType, sourceID uuid.UUID) error {
  var kept []*types.XpGrant
  for _, g := range r.grants {
    if g.SourceType == sourceType && g.SourceID == sourceID {
      continue
    }
    kept = append(kept, g)
  }
  r.grants = kept
  return nil
}

type memStatRepo struct {
  stats map[uuid.UUID]*types.CharacterStat
}

func newMemStatRepo() *memStatRepo {
  return &memStatRepo{stats: map[uuid.UUID]*types.CharacterStat{}}
}

func (r *memStatRepo) Create(ctx context.Context, tx *gorm.DB, stats []*types.CharacterStat) ([]*types.CharacterStat, error) {
  for _, s := range stats {
    if s.ID == uuid.Nil {
      s.ID = uuid.New()
    }
    c := *s
    r.stats[s.ID] = &c
  }
  return stats, nil
}

func (r *memStatRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.CharacterStat, error) {
  var out []*types.CharacterStat
  for _, id := range ids {
    if s, ok := r.stats[id]; ok {
      c := *s
      out = append(out, &c)
    }
  }
  return out, nil
}

func (r *memStatRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.CharacterStat, error) {
  var out []*types.CharacterStat
  for _, s := range r.stats {
    if s.UserID == userID {
      c := *s
      out = append(out, &c)
    }
  }
  return out, nil
}

func (r *memStatRepo) NameExists(ctx context.Context, tx *gorm.DB, userID uuid.UUID, name string) (bool, error) {
  for _, s := range r.stats {
    if s.UserID == userID && s.Name == name {
      return true, nil
    }
  }
  return false, nil
}

func (r *memStatRepo) UpdateMetadata(ctx context.Context, tx *gorm.DB, statID uuid.UUID, fields map[string]any) error {
  return nil
}

func (r *memStatRepo) SetEnabled(ctx context.Context, tx *gorm.DB, statID uuid.UUID, enabled bool) error {
  if s, ok := r.stats[statID]; ok {
    s.Enabled = enabled
  }
  return nil
}

func (r *memStatRepo) AddXp(ctx context.Context, tx *gorm.DB, statID uuid.UUID, delta int) error {
  s, ok := r.stats[statID]
  if !ok {
    return fmt.Errorf("stat %s not found", statID)
  }
  s.CurrentXp += delta
  return nil
}

func (r *memStatRepo) FullDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
  for _, id := range ids {
    delete(r.stats, id)
  }
  return nil
}

// scriptedAI serves the reflection opener with a fixed line and the completion
// analysis with whatever payload the test has staged.
type scriptedAI struct {
  completion map[string]any
}

func (a *scriptedAI) GenerateText(ctx context.Context, system string, user string) (string, error) {
  return "What stood out most about that?", nil
}

func (a *scriptedAI) GenerateJSON(ctx context.Context, system string, user string, schemaName string, schema map[string]any) (map[string]any, error) {
  return a.completion, nil
}

func completionPayload(attributions ...map[string]any) map[string]any {
  attrs := make([]any, 0, len(attributions))
  for _, a := range attributions {
    attrs = append(attrs, a)
  }
  return map[string]any{
    "synopsis":          "A long run before work",
    "summary":           "Ran ten kilometers and felt strong afterwards.",
    "day_rating":        float64(4),
    "tone_tags":         []any{"energized"},
    "stat_attributions": attrs,
  }
}

type journalFixture struct {
  ctx        context.Context
  userID     uuid.UUID
  strengthID uuid.UUID
  wisdomID   uuid.UUID
  entryID    uuid.UUID
  entryRepo  *memEntryRepo
  grantRepo  *memGrantRepo
  statRepo   *memStatRepo
  ai         *scriptedAI
  journal    JournalService
}

func newJournalFixture(t *testing.T) *journalFixture {
  t.Helper()
  log := testLogger()
  hub := sse.NewSSEHub(log)

  f := &journalFixture{
    userID:    uuid.New(),
    entryRepo: newMemEntryRepo(),
    grantRepo: &memGrantRepo{},
    statRepo:  newMemStatRepo(),
    ai: &scriptedAI{completion: completionPayload(
      map[string]any{"stat_name": "Strength", "xp": float64(15), "reason": "morning run"},
      map[string]any{"stat_name": "Wisdom", "xp": float64(10), "reason": "evening reading"},
    )},
  }
  f.ctx = requestdata.WithRequestData(context.Background(), &requestdata.RequestData{UserID: f.userID})

  strength := &types.CharacterStat{ID: uuid.New(), UserID: f.userID, Name: "Strength", Enabled: true}
  wisdom := &types.CharacterStat{ID: uuid.New(), UserID: f.userID, Name: "Wisdom", Enabled: true}
  if _, err := f.statRepo.Create(f.ctx, nil, []*types.CharacterStat{strength, wisdom}); err != nil {
    t.Fatalf("seeding stats: %v", err)
  }
  f.strengthID = strength.ID
  f.wisdomID = wisdom.ID

  entry := &types.JournalEntry{
    ID:      uuid.New(),
    UserID:  f.userID,
    Date:    time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
    Status:  types.JournalStatusDraft,
    Content: "Went for a run and read a chapter before bed.",
  }
  if _, err := f.entryRepo.Create(f.ctx, nil, []*types.JournalEntry{entry}); err != nil {
    t.Fatalf("seeding entry: %v", err)
  }
  f.entryID = entry.ID

  statService := NewStatService(nil, log, f.statRepo, f.grantRepo, hub)
  f.journal = NewJournalService(nil, log, f.entryRepo, f.statRepo, statService, f.ai, hub)
  return f
}

func (f *journalFixture) finish(t *testing.T) *types.JournalEntry {
  t.Helper()
  if _, err := f.journal.StartReflection(f.ctx, f.entryID); err != nil {
    t.Fatalf("StartReflection: %v", err)
  }
  entry, err := f.journal.FinishEntry(f.ctx, f.entryID)
  if err != nil {
    t.Fatalf("FinishEntry: %v", err)
  }
  return entry
}

func (f *journalFixture) statXp(t *testing.T, statID uuid.UUID) int {
  t.Helper()
  stats, err := f.statRepo.GetByIDs(f.ctx, nil, []uuid.UUID{statID})
  if err != nil || len(stats) != 1 {
    t.Fatalf("loading stat %s: %v", statID, err)
  }
  return stats[0].CurrentXp
}

// grantSnapshot renders every grant row for the entry, id included, so two
// snapshots compare equal only when the stored rows are the same rows.
func (f *journalFixture) grantSnapshot(t *testing.T) []string {
  t.Helper()
  grants, err := f.grantRepo.GetBySource(f.ctx, nil, types.XpSourceJournal, f.entryID)
  if err != nil {
    t.Fatalf("loading grants: %v", err)
  }
  var out []string
  for _, g := range grants {
    statID := "none"
    if g.StatID != nil {
      statID = g.StatID.String()
    }
    out = append(out, fmt.Sprintf("%s|%s|%d|%s", g.ID, statID, g.Amount, g.Reason))
  }
  sort.Strings(out)
  return out
}

func sameSnapshot(a, b []string) bool {
  if len(a) != len(b) {
    return false
  }
  for i := range a {
    if a[i] != b[i] {
      return false
    }
  }
  return true
}

// racingEntryRepo simulates a concurrent create slipping in between the
// existence check and the insert: the check sees nothing, the insert hits the
// unique index.
type racingEntryRepo struct {
  *memEntryRepo
}

func (r *racingEntryRepo) ExistsForUserAndDate(ctx context.Context, tx *gorm.DB, userID uuid.UUID, date time.Time) (bool, error) {
  return false, nil
}

func (r *racingEntryRepo) Create(ctx context.Context, tx *gorm.DB, entries []*types.JournalEntry) ([]*types.JournalEntry, error) {
  return nil, gorm.ErrDuplicatedKey
}

func TestCreateEntryDuplicateDateRaceIsConflict(t *testing.T) {
  f := newJournalFixture(t)
  log := testLogger()
  hub := sse.NewSSEHub(log)
  statService := NewStatService(nil, log, f.statRepo, f.grantRepo, hub)
  journal := NewJournalService(nil, log, &racingEntryRepo{f.entryRepo}, f.statRepo, statService, f.ai, hub)

  _, err := journal.CreateEntry(f.ctx, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), "lost the race")
  if err == nil {
    t.Fatal("expected an error when the unique index rejects the insert")
  }
  var apiErr *apierr.Error
  if !errors.As(err, &apiErr) {
    t.Fatalf("expected an apierr.Error, got %T: %v", err, err)
  }
  if apiErr.Status != http.StatusConflict {
    t.Fatalf("status = %d, want %d", apiErr.Status, http.StatusConflict)
  }
}

func TestReopenLeavesGrantsUntouched(t *testing.T) {
  f := newJournalFixture(t)
  f.finish(t)

  before := f.grantSnapshot(t)
  if len(before) != 2 {
    t.Fatalf("expected 2 grants after finishing, got %d", len(before))
  }
  if got := f.statXp(t, f.strengthID); got != 15 {
    t.Fatalf("strength xp after finish = %d, want 15", got)
  }
  if got := f.statXp(t, f.wisdomID); got != 10 {
    t.Fatalf("wisdom xp after finish = %d, want 10", got)
  }

  entry, err := f.journal.ReopenEntry(f.ctx, f.entryID)
  if err != nil {
    t.Fatalf("ReopenEntry: %v", err)
  }
  if entry.Status != types.JournalStatusDraft {
    t.Fatalf("status after reopen = %q, want draft", entry.Status)
  }

  after := f.grantSnapshot(t)
  if !sameSnapshot(before, after) {
    t.Fatalf("grants changed across a reopen without save:\nbefore=%v\nafter=%v", before, after)
  }
  if got := f.statXp(t, f.strengthID); got != 15 {
    t.Fatalf("strength xp after reopen = %d, want 15", got)
  }
  if got := f.statXp(t, f.wisdomID); got != 10 {
    t.Fatalf("wisdom xp after reopen = %d, want 10", got)
  }
}

func TestSaveOnCompleteEntryClearsGrantsAndAnalysis(t *testing.T) {
  f := newJournalFixture(t)
  f.finish(t)

  entry, err := f.journal.SaveEntry(f.ctx, f.entryID, "Actually the run was cut short.")
  if err != nil {
    t.Fatalf("SaveEntry: %v", err)
  }
  if entry.Status != types.JournalStatusDraft {
    t.Fatalf("status after editing a completed entry = %q, want draft", entry.Status)
  }
  if entry.Synopsis != "" || entry.Summary != "" || entry.DayRating != nil || entry.ToneTags != nil {
    t.Fatalf("analysis fields not cleared: synopsis=%q summary=%q rating=%v tags=%s",
      entry.Synopsis, entry.Summary, entry.DayRating, entry.ToneTags)
  }
  if got := f.grantSnapshot(t); len(got) != 0 {
    t.Fatalf("expected no grants after editing a completed entry, got %v", got)
  }
  if got := f.statXp(t, f.strengthID); got != 0 {
    t.Fatalf("strength xp not reversed, got %d", got)
  }
  if got := f.statXp(t, f.wisdomID); got != 0 {
    t.Fatalf("wisdom xp not reversed, got %d", got)
  }
}

func TestReFinishReplacesGrantsWithoutDoubleCounting(t *testing.T) {
  f := newJournalFixture(t)
  f.finish(t)
  firstRun := f.grantSnapshot(t)

  if _, err := f.journal.ReopenEntry(f.ctx, f.entryID); err != nil {
    t.Fatalf("ReopenEntry: %v", err)
  }
  if _, err := f.journal.SaveEntry(f.ctx, f.entryID, "Ran twice as far as planned."); err != nil {
    t.Fatalf("SaveEntry: %v", err)
  }

  // Drafting after a reopen keeps the old completion's grants in place until
  // the next finish reconciles them.
  if got := f.grantSnapshot(t); !sameSnapshot(firstRun, got) {
    t.Fatalf("grants changed during draft edits:\nbefore=%v\nafter=%v", firstRun, got)
  }

  f.ai.completion = completionPayload(
    map[string]any{"stat_name": "Strength", "xp": float64(25), "reason": "long run"},
  )
  f.finish(t)

  after := f.grantSnapshot(t)
  if len(after) != 1 {
    t.Fatalf("expected exactly 1 grant after re-finishing, got %v", after)
  }
  for _, row := range firstRun {
    if row == after[0] {
      t.Fatalf("stale grant row survived the re-finish: %s", row)
    }
  }
  if got := f.statXp(t, f.strengthID); got != 25 {
    t.Fatalf("strength xp after re-finish = %d, want 25 (no double counting)", got)
  }
  if got := f.statXp(t, f.wisdomID); got != 0 {
    t.Fatalf("wisdom xp after re-finish = %d, want 0", got)
  }
}
