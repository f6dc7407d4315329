package services

// Tier thresholds in loyalty points
const (
	SilverThreshold   = 2500
	GoldThreshold     = 5000
	PlatinumThreshold = 10000
)

// Tier is a loyalty classification derived from a points balance. It is
// recomputed on every read and never stored.
type Tier struct {
	Name             string `json:"name"`
	Badge            string `json:"badge"`
	CurrentThreshold int    `json:"current_threshold"`
	NextThreshold    int    `json:"next_threshold"`
	NextName         string `json:"next_name"`
}

// TierOf maps a points balance to its tier. Negative balances count as zero.
func TierOf(points int) Tier {
	switch {
	case points >= GoldThreshold:
		return Tier{Name: "Gold", Badge: "🏆", CurrentThreshold: GoldThreshold, NextThreshold: PlatinumThreshold, NextName: "Platinum"}
	case points >= SilverThreshold:
		return Tier{Name: "Silver", Badge: "🥈", CurrentThreshold: SilverThreshold, NextThreshold: GoldThreshold, NextName: "Gold"}
	default:
		return Tier{Name: "Bronze", Badge: "🥉", CurrentThreshold: 0, NextThreshold: SilverThreshold, NextName: "Silver"}
	}
}

// Progress returns how far points have come toward the next tier, capped at 1
func (t Tier) Progress(points int) float64 {
	if points <= 0 || t.NextThreshold <= 0 {
		return 0
	}
	return min(1, float64(points)/float64(t.NextThreshold))
}

// PointsToNext returns the points still missing for the next tier
func (t Tier) PointsToNext(points int) int {
	return max(0, t.NextThreshold-max(0, points))
}

// TierNames lists the tiers a customer can reach, lowest first
var TierNames = []string{"Bronze", "Silver", "Gold"}
