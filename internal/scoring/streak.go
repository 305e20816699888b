package scoring

import (
	"time"

	"github.com/ecostep/ecostep/internal/model"
)

// CalendarDaysBetween counts calendar-date boundaries from a to b in b's
// location. Elapsed hours do not matter: 23:59 to 00:01 the next day is 1.
func CalendarDaysBetween(a, b time.Time) int {
	a = a.In(b.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	// Compare as UTC midnights so DST transitions cannot skew the division.
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

// AdvanceStreak applies a new result at now to s, where last is the timestamp
// of the previous result (zero when there is none).
//
// Same calendar day as last: unchanged. Exactly one calendar day later:
// Days+1. Anything else, including the first result: Days=1. LastTS moves to
// now whenever the day changes.
func AdvanceStreak(s model.Streak, last model.Timestamp, now time.Time) model.Streak {
	if last.IsZero() {
		return model.Streak{Days: 1, LastTS: model.At(now)}
	}
	gap := CalendarDaysBetween(last.Time(), now)
	if gap == 0 {
		return s
	}
	if gap == 1 {
		s.Days++
	} else {
		s.Days = 1
	}
	s.LastTS = model.At(now)
	return s
}
