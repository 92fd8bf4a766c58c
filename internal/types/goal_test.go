package types

import "testing"

func TestGoalEligibleForGeneration(t *testing.T) {
  cases := []struct {
    name     string
    active   bool
    archived bool
    include  bool
    want     bool
  }{
    {"active included", true, false, true, true},
    {"inactive", false, false, true, false},
    {"archived", true, true, true, false},
    {"opted out", true, false, false, false},
    {"archived and inactive", false, true, false, false},
  }
  for _, tc := range cases {
    g := &Goal{IsActive: tc.active, IsArchived: tc.archived, IncludeInAiGeneration: tc.include}
    if got := g.EligibleForGeneration(); got != tc.want {
      t.Fatalf("%s: EligibleForGeneration() = %v, want %v", tc.name, got, tc.want)
    }
  }
}
