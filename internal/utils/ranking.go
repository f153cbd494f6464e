package utils

import (
	"math"
	"time"
)

type RankConfig struct {
	Gravity      float64 // time decay exponent
	WeightSave   float64
	WeightRecent float64 // bonus for fresh recipes with no saves yet
	ScaleFactor  float64
}

var DefaultRankConfig = RankConfig{
	Gravity:      1.2,
	WeightSave:   3.0,
	WeightRecent: 0.5,
	ScaleFactor:  100.0,
}

// PopularityScore ranks a recipe by how often it was saved, decayed by age.
func PopularityScore(createdAt time.Time, saves int64, now time.Time) float64 {
	hours := now.Sub(createdAt).Hours()
	if hours < 0 {
		hours = 0
	}

	weighted := float64(saves)*DefaultRankConfig.WeightSave + DefaultRankConfig.WeightRecent
	// log10(x+1) keeps a flood of saves from dominating forever
	numerator := math.Log10(weighted+1) * DefaultRankConfig.ScaleFactor
	decay := math.Pow(hours/24+2, DefaultRankConfig.Gravity)

	return numerator / decay
}
