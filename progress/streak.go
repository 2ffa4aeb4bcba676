package progress

import (
	"time"

	"github.com/adhirath/backend/models"
)

// AdvanceStreak applies one qualifying activity (a transition to
// completed) to the streak state machine: same day is a no-op, the next
// day extends the streak, a gap of two or more days resets it to 1. A
// stored activity date in the future (clock skew) leaves the state
// untouched entirely.
func AdvanceStreak(s *models.StreakData, today time.Time) {
	today = Day(today)

	if s.LastActivityDate == nil {
		s.CurrentStreak = 1
	} else {
		diff := int(today.Sub(Day(*s.LastActivityDate)).Hours() / 24)
		switch {
		case diff < 0:
			return
		case diff == 0:
			// Already active today.
		case diff == 1:
			s.CurrentStreak++
		default:
			s.CurrentStreak = 1
		}
	}

	if s.CurrentStreak > s.LongestStreak {
		s.LongestStreak = s.CurrentStreak
	}
	d := today
	s.LastActivityDate = &d
}
