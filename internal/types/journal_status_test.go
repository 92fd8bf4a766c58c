package types

import "testing"

func TestJournalStatusTransitions(t *testing.T) {
  cases := []struct {
    name string
    from JournalStatus
    to   JournalStatus
    want bool
  }{
    {name: "start_reflection", from: JournalStatusDraft, to: JournalStatusReflecting, want: true},
    {name: "conversation_turn", from: JournalStatusReflecting, to: JournalStatusReflecting, want: true},
    {name: "finish", from: JournalStatusReflecting, to: JournalStatusComplete, want: true},
    {name: "edit_reopens", from: JournalStatusComplete, to: JournalStatusDraft, want: true},
    {name: "draft_cannot_complete_directly", from: JournalStatusDraft, to: JournalStatusComplete, want: false},
    {name: "draft_cannot_stay_draft", from: JournalStatusDraft, to: JournalStatusDraft, want: false},
    {name: "reflecting_cannot_revert", from: JournalStatusReflecting, to: JournalStatusDraft, want: false},
    {name: "complete_cannot_reflect", from: JournalStatusComplete, to: JournalStatusReflecting, want: false},
    {name: "complete_is_not_idempotent", from: JournalStatusComplete, to: JournalStatusComplete, want: false},
    {name: "unknown_from", from: JournalStatus("archived"), to: JournalStatusDraft, want: false},
  }

  for _, tc := range cases {
    t.Run(tc.name, func(t *testing.T) {
      if got := CanTransition(tc.from, tc.to); got != tc.want {
        t.Fatalf("CanTransition(%q, %q) = %v, want %v", tc.from, tc.to, got, tc.want)
      }
    })
  }
}

func TestJournalStatusValid(t *testing.T) {
  for _, s := range []JournalStatus{JournalStatusDraft, JournalStatusReflecting, JournalStatusComplete} {
    if !s.Valid() {
      t.Fatalf("%q should be valid", s)
    }
  }
  if JournalStatus("done").Valid() {
    t.Fatal("unknown status should not be valid")
  }
}

func TestXpSourceTypeValid(t *testing.T) {
  for _, s := range []XpSourceType{XpSourceJournal, XpSourceTask, XpSourceQuest, XpSourceExperiment, XpSourceFamily} {
    if !s.Valid() {
      t.Fatalf("%q should be valid", s)
    }
  }
  if XpSourceType("chore").Valid() {
    t.Fatal("unknown source type should not be valid")
  }
}
