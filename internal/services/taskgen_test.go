package services

import (
  "strings"
  "testing"

  "github.com/google/uuid"

  "github.com/robert-crandall/journal-app-sub007/internal/apierr"
  "github.com/robert-crandall/journal-app-sub007/internal/types"
)

func TestValidateIntent(t *testing.T) {
  got, err := ValidateIntent("  feeling adventurous today  ")
  if err != nil {
    t.Fatalf("ValidateIntent: %v", err)
  }
  if got != "feeling adventurous today" {
    t.Fatalf("intent = %q, not trimmed", got)
  }

  if _, err := ValidateIntent(strings.Repeat("a", MaxIntentLength)); err != nil {
    t.Fatalf("intent at limit rejected: %v", err)
  }
  _, err = ValidateIntent(strings.Repeat("a", MaxIntentLength+1))
  if code := apierr.From(err).Code; code != apierr.CodeValidation {
    t.Fatalf("over-limit intent code = %q, want %q", code, apierr.CodeValidation)
  }

  // Trimming runs before the length check.
  if _, err := ValidateIntent("  " + strings.Repeat("a", MaxIntentLength) + "  "); err != nil {
    t.Fatalf("padded at-limit intent rejected: %v", err)
  }
}

func TestParseSuggestionsPersonalTasks(t *testing.T) {
  userID := uuid.New()
  stat := &types.CharacterStat{ID: uuid.New(), UserID: userID, Name: "Physical Health", Enabled: true}
  disabled := &types.CharacterStat{ID: uuid.New(), UserID: userID, Name: "Connection", Enabled: false}
  gc := &generationContext{stats: []*types.CharacterStat{stat, disabled}}

  obj := map[string]any{
    "personal_tasks": []any{
      map[string]any{"title": "Go for a run", "description": "30 minutes", "xp": float64(10), "stat_name": "physical health"},
      map[string]any{"title": "Stretch", "xp": float64(0)},
      map[string]any{"title": "Call someone", "xp": float64(5), "stat_name": "Connection"},
      map[string]any{"title": "   ", "xp": float64(5)},
      map[string]any{"title": "Mystery stat", "xp": float64(5), "stat_name": "No Such Stat"},
    },
  }

  tasks := parseSuggestions(obj, userID, gc)
  if len(tasks) != 4 {
    t.Fatalf("expected 4 tasks (blank title dropped), got %d", len(tasks))
  }
  run := tasks[0]
  if run.StatID == nil || *run.StatID != stat.ID {
    t.Fatalf("stat name did not resolve case-insensitively")
  }
  if run.Source != types.TaskSourceAI || run.UserID != userID {
    t.Fatalf("task source/user = %v/%v", run.Source, run.UserID)
  }
  if tasks[1].XpReward != 5 {
    t.Fatalf("zero xp defaulted to %d, want 5", tasks[1].XpReward)
  }
  // Disabled and unknown stats keep the task but drop the link.
  if tasks[2].StatID != nil || tasks[3].StatID != nil {
    t.Fatalf("unresolvable stat names should leave StatID nil")
  }
}

func TestParseSuggestionsFamilyTasks(t *testing.T) {
  userID := uuid.New()
  member := &types.FamilyMember{ID: uuid.New(), UserID: userID, Name: "Maya", Relationship: "daughter"}
  gc := &generationContext{family: []*types.FamilyMember{member}}

  obj := map[string]any{
    "family_tasks": []any{
      map[string]any{"title": "Board game night", "member_name": "maya", "xp": float64(15)},
      map[string]any{"title": "Unknown member", "member_name": "Nobody", "xp": float64(15)},
      map[string]any{"member_name": "Maya", "xp": float64(15)},
    },
  }

  tasks := parseSuggestions(obj, userID, gc)
  if len(tasks) != 1 {
    t.Fatalf("expected 1 task (unknown member and blank title dropped), got %d", len(tasks))
  }
  if tasks[0].FamilyMemberID == nil || *tasks[0].FamilyMemberID != member.ID {
    t.Fatalf("member name did not resolve")
  }
  if tasks[0].XpReward != 15 {
    t.Fatalf("xp = %d, want 15", tasks[0].XpReward)
  }
}

func TestParseSuggestionsEmptyOutput(t *testing.T) {
  if tasks := parseSuggestions(map[string]any{}, uuid.New(), &generationContext{}); len(tasks) != 0 {
    t.Fatalf("expected no tasks from empty output, got %d", len(tasks))
  }
  obj := map[string]any{"personal_tasks": "not an array", "family_tasks": float64(3)}
  if tasks := parseSuggestions(obj, uuid.New(), &generationContext{}); len(tasks) != 0 {
    t.Fatalf("expected no tasks from malformed output, got %d", len(tasks))
  }
}
