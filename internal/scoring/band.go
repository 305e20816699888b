package scoring

import "math/rand/v2"

// Band is the ordered result rating; lower is better.
type Band int

// Result bands from best to worst.
const (
	BandChampion Band = iota + 1
	BandWarrior
	BandStarter
	BandChange
)

type bandInfo struct {
	key      string
	upper    int // inclusive reference threshold at MaxScore; -1 for the last band
	label    string
	message  string
	color    string
	minTrees int
	maxTrees int
}

var bands = map[Band]bandInfo{
	BandChampion: {
		key:      "champion",
		upper:    3,
		label:    "Eco Champion!",
		message:  "Excellent! Your carbon footprint is very low. You're already making great choices for our planet. Keep up the amazing work!",
		color:    "#38a169",
		minTrees: 8,
		maxTrees: 10,
	},
	BandWarrior: {
		key:      "warrior",
		upper:    7,
		label:    "Green Warrior!",
		message:  "Good job! You're on the right track with eco-friendly habits. A few small changes could make you an Eco Champion!",
		color:    "#68d391",
		minTrees: 5,
		maxTrees: 7,
	},
	BandStarter: {
		key:      "starter",
		upper:    11,
		label:    "Getting Started",
		message:  "You're beginning your eco journey! There's room for improvement, but every small step counts. Check out our tips below!",
		color:    "#f6ad55",
		minTrees: 2,
		maxTrees: 4,
	},
	BandChange: {
		key:      "change",
		upper:    -1,
		label:    "Time for Change!",
		message:  "Your carbon footprint is quite high, but don't worry! Small changes can make a big difference. Start with one tip and build from there.",
		color:    "#fc8181",
		minTrees: 1,
		maxTrees: 1,
	},
}

// String returns the band label.
func (b Band) String() string { return bands[b].label }

// Key returns a stable lowercase identifier for the band.
func (b Band) Key() string { return bands[b].key }

// Assessment is the display rating of a score. Trees is cosmetic and drawn at
// random from the band's interval; it is never persisted.
type Assessment struct {
	Band     Band   `json:"band"`
	Label    string `json:"label"`
	Message  string `json:"message"`
	Color    string `json:"color"`
	MinTrees int    `json:"minTrees"`
	MaxTrees int    `json:"maxTrees"`
	Trees    int    `json:"trees"`
}

// BandFor returns the band of score against thresholds 3/7/11 scaled to outOf.
func BandFor(score, outOf int) Band {
	for _, b := range []Band{BandChampion, BandWarrior, BandStarter} {
		if score <= scaled(bands[b].upper, outOf) {
			return b
		}
	}
	return BandChange
}

// CategorizeScore rates score using the package-level random source.
func CategorizeScore(score, outOf int) Assessment {
	return categorize(score, outOf, rand.IntN)
}

// CategorizeScoreRand rates score drawing trees from r.
func CategorizeScoreRand(score, outOf int, r *rand.Rand) Assessment {
	return categorize(score, outOf, r.IntN)
}

func categorize(score, outOf int, intn func(int) int) Assessment {
	b := BandFor(score, outOf)
	info := bands[b]
	return Assessment{
		Band:     b,
		Label:    info.label,
		Message:  info.message,
		Color:    info.color,
		MinTrees: info.minTrees,
		MaxTrees: info.maxTrees,
		Trees:    info.minTrees + intn(info.maxTrees-info.minTrees+1),
	}
}
