package leveling

import "math"

const (
  // xpRequiredCoef drives the threshold curve: reaching level N costs a
  // cumulative ceil(100 * (N-1)^1.5) XP, so each level step grows
  // superlinearly.
  xpRequiredCoef = 100.0
)

// Result is the derived progression for a cumulative XP total. Level is never
// persisted; callers recompute it on every read.
type Result struct {
  Level          int `json:"level"`
  XpIntoLevel    int `json:"xp_into_level"`
  XpForNextLevel int `json:"xp_for_next_level"`
}

// XpToReachLevel returns the cumulative XP threshold for the given level.
// A fresh stat is level 1 at 0 XP.
func XpToReachLevel(level int) int {
  if level <= 1 {
    return 0
  }
  req := xpRequiredCoef * math.Pow(float64(level-1), 1.5)
  // Ceil so float rounding never makes a threshold cheaper.
  return int(math.Ceil(req))
}

// LevelForTotalXp returns the highest level L with XpToReachLevel(L) <= totalXp.
func LevelForTotalXp(totalXp int) int {
  if totalXp <= 0 {
    return 1
  }

  // Exponential search for an upper bound, then binary search.
  low := 1
  high := 2
  for XpToReachLevel(high) <= totalXp {
    low = high
    high *= 2
    if high > 1_000_000 {
      break
    }
  }

  for low+1 < high {
    mid := low + (high-low)/2
    if XpToReachLevel(mid) <= totalXp {
      low = mid
    } else {
      high = mid
    }
  }
  return low
}

// Compute derives level and progress-within-level from a cumulative total.
// Stateless: the same total always yields the same result.
func Compute(totalXp int) Result {
  if totalXp < 0 {
    totalXp = 0
  }
  level := LevelForTotalXp(totalXp)
  floor := XpToReachLevel(level)
  next := XpToReachLevel(level + 1)
  return Result{
    Level:          level,
    XpIntoLevel:    totalXp - floor,
    XpForNextLevel: next - floor,
  }
}
