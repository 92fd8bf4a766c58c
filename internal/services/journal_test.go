package services

import (
  "testing"
  "time"

  "github.com/google/uuid"
  "gorm.io/datatypes"

  "github.com/robert-crandall/journal-app-sub007/internal/types"
)

func TestDecodeConversationEmpty(t *testing.T) {
  turns, err := DecodeConversation(nil)
  if err != nil {
    t.Fatalf("DecodeConversation(nil): %v", err)
  }
  if len(turns) != 0 {
    t.Fatalf("expected empty transcript, got %d turns", len(turns))
  }
}

func TestDecodeConversationBadPayload(t *testing.T) {
  if _, err := DecodeConversation(datatypes.JSON(`{"not":"an array"}`)); err == nil {
    t.Fatalf("expected error for non-array transcript")
  }
}

func TestAppendTurnPreservesOrder(t *testing.T) {
  now := time.Now().UTC()
  turns := AppendTurn(nil, types.ConversationRoleUser, "first", now)
  turns = AppendTurn(turns, types.ConversationRoleAssistant, "second", now.Add(time.Second))
  turns = AppendTurn(turns, types.ConversationRoleUser, "third", now.Add(2*time.Second))

  raw, err := encodeConversation(turns)
  if err != nil {
    t.Fatalf("encodeConversation: %v", err)
  }
  decoded, err := DecodeConversation(raw)
  if err != nil {
    t.Fatalf("DecodeConversation: %v", err)
  }
  if len(decoded) != 3 {
    t.Fatalf("expected 3 turns, got %d", len(decoded))
  }
  want := []string{"first", "second", "third"}
  for i, content := range want {
    if decoded[i].Content != content {
      t.Fatalf("turn %d content = %q, want %q", i, decoded[i].Content, content)
    }
  }
  if decoded[0].Role != types.ConversationRoleUser || decoded[1].Role != types.ConversationRoleAssistant {
    t.Fatalf("roles not preserved: %q, %q", decoded[0].Role, decoded[1].Role)
  }
}

func testStats(userID uuid.UUID) []*types.CharacterStat {
  return []*types.CharacterStat{
    {ID: uuid.New(), UserID: userID, Name: "Physical Health", Enabled: true},
    {ID: uuid.New(), UserID: userID, Name: "Mental Clarity", Enabled: true},
    {ID: uuid.New(), UserID: userID, Name: "Connection", Enabled: false},
  }
}

func TestParseCompletionResolvesStatNames(t *testing.T) {
  entryID := uuid.New()
  stats := testStats(uuid.New())

  obj := map[string]any{
    "synopsis":   "A packed day.",
    "summary":    "Trained in the morning and caught up with family.",
    "day_rating": float64(4),
    "tone_tags":  []any{"Energized", "grateful"},
    "stat_attributions": []any{
      map[string]any{"stat_name": "physical health", "xp": float64(15), "reason": "morning run"},
      map[string]any{"stat_name": " MENTAL CLARITY ", "xp": float64(10), "reason": "journaling"},
      map[string]any{"stat_name": "Connection", "xp": float64(10), "reason": "disabled stat"},
      map[string]any{"stat_name": "No Such Stat", "xp": float64(10), "reason": "unknown"},
      map[string]any{"stat_name": "Physical Health", "xp": float64(0), "reason": "no xp"},
    },
  }

  res, err := parseCompletion(obj, entryID, stats)
  if err != nil {
    t.Fatalf("parseCompletion: %v", err)
  }
  if res.Synopsis != "A packed day." {
    t.Fatalf("synopsis = %q", res.Synopsis)
  }
  if res.DayRating != 4 {
    t.Fatalf("day rating = %d, want 4", res.DayRating)
  }
  if len(res.ToneTags) != 2 || res.ToneTags[0] != "energized" {
    t.Fatalf("tone tags = %v, want lowercased pair", res.ToneTags)
  }
  if len(res.Grants) != 2 {
    t.Fatalf("expected 2 grants (disabled, unknown and zero-xp dropped), got %d", len(res.Grants))
  }
  for _, g := range res.Grants {
    if g.SourceType != types.XpSourceJournal || g.SourceID != entryID {
      t.Fatalf("grant source = %v/%v, want journal/%v", g.SourceType, g.SourceID, entryID)
    }
    if g.StatID != stats[0].ID && g.StatID != stats[1].ID {
      t.Fatalf("grant stat %v did not resolve to an enabled stat", g.StatID)
    }
  }
}

func TestParseCompletionClampsRating(t *testing.T) {
  base := map[string]any{
    "synopsis":          "s",
    "summary":           "s",
    "tone_tags":         []any{},
    "stat_attributions": []any{},
  }
  for rating, want := range map[float64]int{0: 1, -3: 1, 6: 5, 100: 5, 3: 3} {
    obj := map[string]any{}
    for k, v := range base {
      obj[k] = v
    }
    obj["day_rating"] = rating
    res, err := parseCompletion(obj, uuid.New(), nil)
    if err != nil {
      t.Fatalf("parseCompletion(rating=%v): %v", rating, err)
    }
    if res.DayRating != want {
      t.Fatalf("rating %v clamped to %d, want %d", rating, res.DayRating, want)
    }
  }
}

func TestParseCompletionRequiresCoreFields(t *testing.T) {
  cases := []map[string]any{
    {"summary": "s", "day_rating": float64(3)},
    {"synopsis": "s", "day_rating": float64(3)},
    {"synopsis": "s", "summary": "s"},
  }
  for i, obj := range cases {
    if _, err := parseCompletion(obj, uuid.New(), nil); err == nil {
      t.Fatalf("case %d: expected error for missing field", i)
    }
  }
}

func TestDateOnly(t *testing.T) {
  in := time.Date(2025, 3, 14, 18, 42, 7, 999, time.FixedZone("x", -7*3600))
  got := dateOnly(in)
  if got.Hour() != 0 || got.Minute() != 0 || got.Second() != 0 || got.Nanosecond() != 0 {
    t.Fatalf("dateOnly kept time-of-day: %v", got)
  }
  if got.Location() != time.UTC {
    t.Fatalf("dateOnly location = %v, want UTC", got.Location())
  }
  if got.Year() != in.Year() || got.Month() != in.Month() || got.Day() != in.Day() {
    t.Fatalf("dateOnly changed the date: %v", got)
  }
}
