package leveling

import "testing"

func TestComputeAtZero(t *testing.T) {
  r := Compute(0)
  if r.Level != 1 {
    t.Fatalf("Compute(0).Level = %d, want 1", r.Level)
  }
  if r.XpIntoLevel != 0 {
    t.Fatalf("Compute(0).XpIntoLevel = %d, want 0", r.XpIntoLevel)
  }
  if r.XpForNextLevel <= 0 {
    t.Fatalf("Compute(0).XpForNextLevel = %d, want > 0", r.XpForNextLevel)
  }
}

func TestLevelMonotonic(t *testing.T) {
  prev := 0
  for xp := 0; xp <= 50_000; xp += 7 {
    lvl := LevelForTotalXp(xp)
    if lvl < prev {
      t.Fatalf("level decreased: LevelForTotalXp(%d) = %d, previous %d", xp, lvl, prev)
    }
    prev = lvl
  }
}

func TestThresholdBoundaries(t *testing.T) {
  for level := 2; level <= 30; level++ {
    threshold := XpToReachLevel(level)
    if got := LevelForTotalXp(threshold); got != level {
      t.Fatalf("LevelForTotalXp(%d) = %d, want %d (exact threshold)", threshold, got, level)
    }
    if got := LevelForTotalXp(threshold - 1); got != level-1 {
      t.Fatalf("LevelForTotalXp(%d) = %d, want %d (one below threshold)", threshold-1, got, level-1)
    }
  }
}

func TestThresholdsStrictlyIncrease(t *testing.T) {
  prev := XpToReachLevel(1)
  for level := 2; level <= 50; level++ {
    cur := XpToReachLevel(level)
    if cur <= prev {
      t.Fatalf("XpToReachLevel(%d) = %d, not above XpToReachLevel(%d) = %d", level, cur, level-1, prev)
    }
    prev = cur
  }
}

func TestComputeIdempotent(t *testing.T) {
  for _, xp := range []int{0, 1, 99, 100, 2500, 123456} {
    a := Compute(xp)
    b := Compute(xp)
    if a != b {
      t.Fatalf("Compute(%d) not stable: %+v vs %+v", xp, a, b)
    }
  }
}

func TestComputeProgressConsistent(t *testing.T) {
  for xp := 0; xp <= 20_000; xp += 13 {
    r := Compute(xp)
    if r.XpIntoLevel < 0 {
      t.Fatalf("Compute(%d).XpIntoLevel = %d, negative", xp, r.XpIntoLevel)
    }
    if r.XpIntoLevel >= r.XpForNextLevel {
      t.Fatalf("Compute(%d): xp_into_level %d >= xp_for_next_level %d", xp, r.XpIntoLevel, r.XpForNextLevel)
    }
    if XpToReachLevel(r.Level)+r.XpIntoLevel != xp {
      t.Fatalf("Compute(%d): floor %d + into %d != total", xp, XpToReachLevel(r.Level), r.XpIntoLevel)
    }
  }
}

func TestNegativeClamps(t *testing.T) {
  r := Compute(-50)
  if r.Level != 1 || r.XpIntoLevel != 0 {
    t.Fatalf("Compute(-50) = %+v, want level 1 with 0 into level", r)
  }
}
