// Package gamification translates completion events into XP and level
// changes on a user record, decoupled from the progress aggregate.
package gamification

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/adhirath/backend/models"
)

const (
	// VideoCompletionXP is awarded the first time a video is completed.
	VideoCompletionXP = 10
	// AchievementXP is awarded when an achievement is earned.
	AchievementXP = 100
	// LevelGrowth is the compounding factor applied to the XP threshold
	// on each level-up.
	LevelGrowth = 1.5
)

// IntegrityError signals corrupt stored gamification state. It is a
// server-side fault and must never be masked with a default.
type IntegrityError struct {
	Reason string
}

func (e *IntegrityError) Error() string {
	return "corrupt user record: " + e.Reason
}

// Ledger awards XP and advances levels on a user record.
type Ledger struct {
	now func() time.Time
}

func NewLedger(now func() time.Time) *Ledger {
	if now == nil {
		now = time.Now
	}
	return &Ledger{now: now}
}

// QuizXP converts a quiz result into an XP award, proportional to the
// score out of 100.
func QuizXP(score, maxScore float64) int {
	return int(math.Round(score / maxScore * 100))
}

// Award adds xp to the user and advances the level while the threshold
// is crossed. A single large award may cross several thresholds; the
// loop applies them all so the user never sits above their own
// threshold.
func (l *Ledger) Award(u *models.User, xp int) error {
	u.XP += xp
	for float64(u.XP) >= u.TotalXP {
		if u.TotalXP <= 0 {
			return &IntegrityError{Reason: fmt.Sprintf("non-positive XP threshold %v", u.TotalXP)}
		}
		n, err := ParseLevel(u.Level)
		if err != nil {
			return err
		}
		u.Level = fmt.Sprintf("Level %d", n+1)
		u.TotalXP *= LevelGrowth
	}
	u.LastActive = l.now()
	return nil
}

// AwardVideoCompletion hands out the fixed award for a first-time video
// completion.
func (l *Ledger) AwardVideoCompletion(u *models.User) error {
	return l.Award(u, VideoCompletionXP)
}

// ParseLevel extracts the ordinal from a "Level N" string.
func ParseLevel(level string) (int, error) {
	fields := strings.Fields(level)
	if len(fields) != 2 || fields[0] != "Level" {
		return 0, &IntegrityError{Reason: fmt.Sprintf("unparseable level %q", level)}
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, &IntegrityError{Reason: fmt.Sprintf("unparseable level %q", level)}
	}
	return n, nil
}
