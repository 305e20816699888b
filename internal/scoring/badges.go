package scoring

import "github.com/samber/lo"

// Badge names awarded by RecordResult.
const (
	BadgeFirstCompletion = "first-completion"
	BadgeLowFootprint    = "low-footprint"
)

// AwardBadges returns badges extended with anything newly earned by a result
// of score out of outOf, given the history length after appending it. The
// second return lists only the new names. Existing names are never repeated.
func AwardBadges(badges []string, historyLen, score, outOf int) ([]string, []string) {
	var earned []string
	if historyLen == 1 {
		earned = append(earned, BadgeFirstCompletion)
	}
	if score <= floorDiv(outOf, 3) {
		earned = append(earned, BadgeLowFootprint)
	}

	var added []string
	for _, b := range earned {
		if !lo.Contains(badges, b) {
			badges = append(badges, b)
			added = append(added, b)
		}
	}
	return badges, added
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
