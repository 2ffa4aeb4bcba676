// Package progress implements the aggregation rules that roll raw
// video and pathway completion events up into category totals, daily
// activity buckets, streaks and an overall percentage. Everything here
// is pure: functions mutate an in-memory record and leave persistence
// to the caller.
package progress

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/adhirath/backend/models"
)

// ValidationError rejects malformed input before any state is touched.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// Engine applies completion events to a ProgressRecord. The clock is
// injected so day-boundary behaviour is testable.
type Engine struct {
	now func() time.Time
}

func NewEngine(now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{now: now}
}

// Day truncates t to UTC midnight. All day-granularity comparisons
// (daily buckets, streak diffs) go through this.
func Day(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

type VideoEvent struct {
	VideoID         string
	Completed       bool
	WatchedDuration float64
	Category        models.Category
}

type PathwayEvent struct {
	PathwayID       string
	Completed       bool
	Progress        int
	Category        models.Category
	TotalActivities int
}

// VideoOutcome reports what an applied video event actually changed, so
// the caller knows whether to hand out XP.
type VideoOutcome struct {
	// FirstCompletion is true when this event flipped the video from
	// not-completed to completed.
	FirstCompletion bool
}

// ApplyVideoEvent upserts the video entry and recomputes every derived
// field. The daily bucket and streak move only when the completion
// state transitions to completed; repeated "mark done" clicks within
// the same day are no-ops for both. Un-marking a video never decrements
// the daily bucket.
func (e *Engine) ApplyVideoEvent(rec *models.ProgressRecord, ev VideoEvent) (VideoOutcome, error) {
	ev.VideoID = strings.TrimSpace(ev.VideoID)
	if ev.VideoID == "" {
		return VideoOutcome{}, &ValidationError{"videoId", "is required"}
	}
	if !ev.Category.Valid() {
		return VideoOutcome{}, &ValidationError{"category", "must be one of brainPower, moveAndPlay, socialSkills"}
	}
	if ev.WatchedDuration < 0 {
		return VideoOutcome{}, &ValidationError{"watchedDuration", "must not be negative"}
	}

	now := e.now()
	today := Day(now)

	var existing *models.VideoEntry
	for i := range rec.VideoProgress {
		if rec.VideoProgress[i].VideoID == ev.VideoID {
			existing = &rec.VideoProgress[i]
			break
		}
	}

	wasCompleted := existing != nil && existing.Completed
	// Whether the existing entry was already touched today; used to keep
	// the daily bucket from counting the same video twice in one day.
	loggedToday := existing != nil && Day(existing.LastWatched).Equal(today)

	if existing != nil {
		// Watch time is monotonic, it never regresses.
		if ev.WatchedDuration > existing.WatchedDuration {
			existing.WatchedDuration = ev.WatchedDuration
		}
		existing.Completed = ev.Completed
		existing.Category = ev.Category
		existing.LastWatched = now
	} else {
		rec.VideoProgress = append(rec.VideoProgress, models.VideoEntry{
			VideoID:         ev.VideoID,
			Completed:       ev.Completed,
			WatchedDuration: ev.WatchedDuration,
			LastWatched:     now,
			Category:        ev.Category,
		})
	}

	outcome := VideoOutcome{FirstCompletion: ev.Completed && !wasCompleted}
	if outcome.FirstCompletion {
		if !loggedToday {
			bumpDaily(rec, ev.Category, today)
		}
		AdvanceStreak(&rec.StreakData, today)
	}

	Recompute(rec)
	return outcome, nil
}

// ApplyPathwayEvent upserts the pathway entry for the incoming key. The
// key matches the canonical PathwayID first, then the stored legacy id
// and title aliases, so an event keyed by an old alias updates the
// existing entry in place instead of appending a duplicate. Pathway
// totals are tracked on the entry itself; category totals stay derived
// from the video ledger (see Recompute).
func (e *Engine) ApplyPathwayEvent(rec *models.ProgressRecord, ev PathwayEvent) error {
	ev.PathwayID = strings.TrimSpace(ev.PathwayID)
	if ev.PathwayID == "" {
		return &ValidationError{"pathwayId", "is required"}
	}
	if !ev.Category.Valid() {
		return &ValidationError{"category", "must be one of brainPower, moveAndPlay, socialSkills"}
	}
	if ev.TotalActivities < 0 {
		return &ValidationError{"totalActivities", "must not be negative"}
	}
	if ev.Progress < 0 {
		ev.Progress = 0
	} else if ev.Progress > 100 {
		ev.Progress = 100
	}

	now := e.now()

	var existing *models.PathwayEntry
	for i := range rec.PathwayProgress {
		p := &rec.PathwayProgress[i]
		if p.PathwayID == ev.PathwayID {
			existing = p
			break
		}
		// Events from older clients may still carry a legacy alias.
		if existing == nil && (p.LegacyID == ev.PathwayID || p.Title == ev.PathwayID) {
			existing = p
		}
	}

	if existing != nil {
		existing.Completed = ev.Completed
		existing.Progress = ev.Progress
		existing.Category = ev.Category
		existing.TotalActivities = ev.TotalActivities
		existing.LastUpdated = now
	} else {
		rec.PathwayProgress = append(rec.PathwayProgress, models.PathwayEntry{
			PathwayID:       ev.PathwayID,
			Completed:       ev.Completed,
			Progress:        ev.Progress,
			Category:        ev.Category,
			TotalActivities: ev.TotalActivities,
			StartedAt:       now,
			LastUpdated:     now,
		})
	}

	Recompute(rec)
	return nil
}

// Recompute rebuilds every derived field from the video ledger. It
// replaces the source system's before-save hook: every mutating
// operation calls it before the record is persisted, so category totals
// and the overall percentage can never go stale.
func Recompute(rec *models.ProgressRecord) {
	var cp models.CategoryProgress
	for _, v := range rec.VideoProgress {
		st := cp.Stat(v.Category)
		if st == nil {
			continue
		}
		st.Total++
		if v.Completed {
			st.Completed++
		}
	}
	rec.CategoryProgress = cp

	total := cp.BrainPower.Total + cp.MoveAndPlay.Total + cp.SocialSkills.Total
	completed := cp.BrainPower.Completed + cp.MoveAndPlay.Completed + cp.SocialSkills.Completed
	if total > 0 {
		rec.OverallProgress = int(math.Round(float64(completed) / float64(total) * 100))
	} else {
		rec.OverallProgress = 0
	}
}

// TodayEntry returns the daily bucket for the given day, or a zero
// bucket when none exists yet.
func TodayEntry(rec *models.ProgressRecord, today time.Time) models.DailyEntry {
	today = Day(today)
	for _, d := range rec.DailyProgress {
		if Day(d.Date).Equal(today) {
			return d
		}
	}
	return models.DailyEntry{Date: today}
}

func bumpDaily(rec *models.ProgressRecord, cat models.Category, today time.Time) {
	for i := range rec.DailyProgress {
		if Day(rec.DailyProgress[i].Date).Equal(today) {
			rec.DailyProgress[i].ActivitiesCompleted++
			rec.DailyProgress[i].Categories.Inc(cat)
			return
		}
	}
	entry := models.DailyEntry{Date: today, ActivitiesCompleted: 1}
	entry.Categories.Inc(cat)
	rec.DailyProgress = append(rec.DailyProgress, entry)
}
