package scoring

import (
	"maps"

	"github.com/samber/lo"

	"github.com/ecostep/ecostep/internal/model"
)

// Mood is the avatar state shown next to the latest score.
type Mood string

// Avatar moods.
const (
	MoodHappy   Mood = "happy"
	MoodNeutral Mood = "neutral"
	MoodSad     Mood = "sad"
)

const (
	trendSize  = 12
	recentSize = 8

	// Impact shown before any result exists.
	defaultImpactScore = 10
)

// MoodFor maps a score to the avatar mood: happy at or below 5, sad at or
// above 11 (reference thresholds at MaxScore, scaled to outOf).
func MoodFor(score, outOf int) Mood {
	switch {
	case score <= scaled(5, outOf):
		return MoodHappy
	case score >= scaled(11, outOf):
		return MoodSad
	default:
		return MoodNeutral
	}
}

// Dashboard is the derived statistics view of a profile.
type Dashboard struct {
	Latest     *model.Result  `json:"latest,omitempty"`
	Best       *int           `json:"best,omitempty"` // lowest score recorded
	StreakDays int            `json:"streakDays"`
	Badges     []string       `json:"badges"`
	Trend      []model.Result `json:"trend"`  // last results, oldest first
	Recent     []model.Result `json:"recent"` // last results, newest first
	Breakdown  map[string]int `json:"breakdown"`
	Mood       Mood           `json:"mood"`
	Impact     Impact         `json:"impact"`
}

// BadgeCount returns the number of awarded badges.
func (d Dashboard) BadgeCount() int { return len(d.Badges) }

// Summarize derives the dashboard from a profile without mutating it.
func Summarize(p model.Profile) Dashboard {
	d := Dashboard{
		StreakDays: p.Streak.Days,
		Badges:     lo.Uniq(p.Badges),
		Trend:      []model.Result{},
		Recent:     []model.Result{},
		Mood:       MoodNeutral,
		Impact:     ProjectImpact(defaultImpactScore, MaxScore),
	}
	d.Breakdown = make(map[string]int, len(Categories))
	for _, c := range Categories {
		d.Breakdown[string(c)] = 0
	}

	h := p.History
	if len(h) == 0 {
		return d
	}

	latest := h[len(h)-1]
	latest.Categories = maps.Clone(latest.Categories)
	d.Latest = &latest

	best := lo.Min(lo.Map(h, func(r model.Result, _ int) int { return r.Score }))
	d.Best = &best

	d.Trend = model.CloneHistory(lo.Subset(h, -trendSize, trendSize))
	recent := lo.Subset(h, -recentSize, recentSize)
	for i := len(recent) - 1; i >= 0; i-- {
		d.Recent = append(d.Recent, recent[i])
	}
	d.Recent = model.CloneHistory(d.Recent)

	if len(latest.Categories) > 0 {
		d.Breakdown = maps.Clone(latest.Categories)
	}
	d.Mood = MoodFor(latest.Score, latest.Max)
	d.Impact = ProjectImpact(latest.Score, latest.Max)
	return d
}
