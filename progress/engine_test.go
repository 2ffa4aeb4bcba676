package progress

import (
	"testing"
	"time"

	"github.com/adhirath/backend/models"

	"github.com/stretchr/testify/assert"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

var day1 = time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)

func newRecord() models.ProgressRecord {
	return models.NewProgressRecord()
}

func TestApplyVideoEventFirstCompletion(t *testing.T) {
	e := NewEngine(fixedClock(day1))
	rec := newRecord()

	outcome, err := e.ApplyVideoEvent(&rec, VideoEvent{
		VideoID:         "v1",
		Completed:       true,
		WatchedDuration: 30,
		Category:        models.CategoryBrainPower,
	})
	assert.NoError(t, err)
	assert.True(t, outcome.FirstCompletion)

	assert.Equal(t, models.CategoryStat{Completed: 1, Total: 1}, rec.CategoryProgress.BrainPower)
	assert.Equal(t, 100, rec.OverallProgress)
	assert.Equal(t, 1, rec.StreakData.CurrentStreak)

	today := TodayEntry(&rec, day1)
	assert.Equal(t, 1, today.ActivitiesCompleted)
	assert.Equal(t, 1, today.Categories.BrainPower)
}

func TestApplyVideoEventRepeatSameDayIsIdempotent(t *testing.T) {
	e := NewEngine(fixedClock(day1))
	rec := newRecord()

	ev := VideoEvent{VideoID: "v1", Completed: true, WatchedDuration: 30, Category: models.CategoryBrainPower}
	_, err := e.ApplyVideoEvent(&rec, ev)
	assert.NoError(t, err)

	outcome, err := e.ApplyVideoEvent(&rec, ev)
	assert.NoError(t, err)
	assert.False(t, outcome.FirstCompletion)

	assert.Equal(t, 1, TodayEntry(&rec, day1).ActivitiesCompleted)
	assert.Equal(t, 1, rec.StreakData.CurrentStreak)
	assert.Len(t, rec.VideoProgress, 1)
	assert.Equal(t, float64(30), rec.VideoProgress[0].WatchedDuration)
}

func TestApplyVideoEventWatchTimeNeverRegresses(t *testing.T) {
	e := NewEngine(fixedClock(day1))
	rec := newRecord()

	_, err := e.ApplyVideoEvent(&rec, VideoEvent{VideoID: "v1", WatchedDuration: 120, Category: models.CategoryMoveAndPlay})
	assert.NoError(t, err)
	_, err = e.ApplyVideoEvent(&rec, VideoEvent{VideoID: "v1", WatchedDuration: 45, Category: models.CategoryMoveAndPlay})
	assert.NoError(t, err)

	assert.Equal(t, float64(120), rec.VideoProgress[0].WatchedDuration)
}

func TestApplyVideoEventUnmarkKeepsDailyCount(t *testing.T) {
	e := NewEngine(fixedClock(day1))
	rec := newRecord()

	ev := VideoEvent{VideoID: "v1", Completed: true, WatchedDuration: 30, Category: models.CategoryBrainPower}
	_, err := e.ApplyVideoEvent(&rec, ev)
	assert.NoError(t, err)

	ev.Completed = false
	outcome, err := e.ApplyVideoEvent(&rec, ev)
	assert.NoError(t, err)
	assert.False(t, outcome.FirstCompletion)

	assert.Equal(t, 0, rec.CategoryProgress.BrainPower.Completed)
	// The daily log is never decremented when a video is un-marked.
	assert.Equal(t, 1, TodayEntry(&rec, day1).ActivitiesCompleted)
}

func TestApplyVideoEventRecompletionNextDay(t *testing.T) {
	rec := newRecord()

	e := NewEngine(fixedClock(day1))
	ev := VideoEvent{VideoID: "v1", Completed: true, WatchedDuration: 30, Category: models.CategoryBrainPower}
	_, err := e.ApplyVideoEvent(&rec, ev)
	assert.NoError(t, err)

	ev.Completed = false
	_, err = e.ApplyVideoEvent(&rec, ev)
	assert.NoError(t, err)

	day2 := day1.AddDate(0, 0, 1)
	e = NewEngine(fixedClock(day2))
	ev.Completed = true
	outcome, err := e.ApplyVideoEvent(&rec, ev)
	assert.NoError(t, err)
	assert.True(t, outcome.FirstCompletion)

	assert.Equal(t, 1, TodayEntry(&rec, day2).ActivitiesCompleted)
	assert.Equal(t, 2, rec.StreakData.CurrentStreak)
}

func TestApplyVideoEventValidation(t *testing.T) {
	e := NewEngine(fixedClock(day1))
	rec := newRecord()

	cases := []struct {
		name string
		ev   VideoEvent
	}{
		{"empty id", VideoEvent{VideoID: "  ", Category: models.CategoryBrainPower}},
		{"bad category", VideoEvent{VideoID: "v1", Category: "speedRun"}},
		{"negative duration", VideoEvent{VideoID: "v1", Category: models.CategoryBrainPower, WatchedDuration: -5}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.ApplyVideoEvent(&rec, tc.ev)
			var verr *ValidationError
			assert.ErrorAs(t, err, &verr)
			assert.Empty(t, rec.VideoProgress, "no partial mutation on invalid input")
		})
	}
}

func TestVideoIDTrimmedBeforeUpsert(t *testing.T) {
	e := NewEngine(fixedClock(day1))
	rec := newRecord()

	_, err := e.ApplyVideoEvent(&rec, VideoEvent{VideoID: " v1 ", Completed: true, Category: models.CategoryBrainPower})
	assert.NoError(t, err)
	_, err = e.ApplyVideoEvent(&rec, VideoEvent{VideoID: "v1", Completed: true, Category: models.CategoryBrainPower})
	assert.NoError(t, err)

	assert.Len(t, rec.VideoProgress, 1)
	assert.Equal(t, "v1", rec.VideoProgress[0].VideoID)
}

func TestCategoryRecountInvariant(t *testing.T) {
	e := NewEngine(fixedClock(day1))
	rec := newRecord()

	events := []VideoEvent{
		{VideoID: "a", Completed: true, Category: models.CategoryBrainPower},
		{VideoID: "b", Completed: false, Category: models.CategoryBrainPower},
		{VideoID: "c", Completed: true, Category: models.CategoryMoveAndPlay},
		{VideoID: "d", Completed: true, Category: models.CategorySocialSkills},
		{VideoID: "a", Completed: false, Category: models.CategoryBrainPower},
		{VideoID: "c", Completed: true, Category: models.CategorySocialSkills},
	}
	for _, ev := range events {
		_, err := e.ApplyVideoEvent(&rec, ev)
		assert.NoError(t, err)

		for _, cat := range []models.Category{models.CategoryBrainPower, models.CategoryMoveAndPlay, models.CategorySocialSkills} {
			total, completed := 0, 0
			for _, v := range rec.VideoProgress {
				if v.Category == cat {
					total++
					if v.Completed {
						completed++
					}
				}
			}
			st := rec.CategoryProgress.Stat(cat)
			assert.Equal(t, total, st.Total, "total for %s after %s", cat, ev.VideoID)
			assert.Equal(t, completed, st.Completed, "completed for %s after %s", cat, ev.VideoID)
		}
		assert.GreaterOrEqual(t, rec.OverallProgress, 0)
		assert.LessOrEqual(t, rec.OverallProgress, 100)
	}
}

func TestOverallProgressZeroWhenEmpty(t *testing.T) {
	rec := newRecord()
	Recompute(&rec)
	assert.Equal(t, 0, rec.OverallProgress)
}

func TestApplyPathwayEventUpsert(t *testing.T) {
	e := NewEngine(fixedClock(day1))
	rec := newRecord()

	err := e.ApplyPathwayEvent(&rec, PathwayEvent{
		PathwayID:       "speech-therapy",
		Progress:        40,
		Category:        models.CategoryMoveAndPlay,
		TotalActivities: 5,
	})
	assert.NoError(t, err)
	assert.Len(t, rec.PathwayProgress, 1)
	started := rec.PathwayProgress[0].StartedAt

	err = e.ApplyPathwayEvent(&rec, PathwayEvent{
		PathwayID:       "speech-therapy",
		Completed:       true,
		Progress:        100,
		Category:        models.CategoryMoveAndPlay,
		TotalActivities: 5,
	})
	assert.NoError(t, err)
	assert.Len(t, rec.PathwayProgress, 1, "second event must update in place")
	assert.True(t, rec.PathwayProgress[0].Completed)
	assert.Equal(t, 100, rec.PathwayProgress[0].Progress)
	assert.Equal(t, started, rec.PathwayProgress[0].StartedAt)
}

func TestApplyPathwayEventMatchesLegacyAliases(t *testing.T) {
	e := NewEngine(fixedClock(day1))
	rec := newRecord()
	rec.PathwayProgress = []models.PathwayEntry{
		{LegacyID: "p1", Title: "Speech Therapy", Progress: 20, Category: models.CategoryBrainPower, TotalActivities: 3},
	}
	Migrate(&rec)
	assert.Equal(t, "p1", rec.PathwayProgress[0].PathwayID)

	// An event still keyed by the old title updates the migrated entry
	// instead of appending a second copy.
	err := e.ApplyPathwayEvent(&rec, PathwayEvent{
		PathwayID:       "Speech Therapy",
		Progress:        60,
		Category:        models.CategoryBrainPower,
		TotalActivities: 3,
	})
	assert.NoError(t, err)
	assert.Len(t, rec.PathwayProgress, 1)
	assert.Equal(t, "p1", rec.PathwayProgress[0].PathwayID, "canonical key is preserved")
	assert.Equal(t, 60, rec.PathwayProgress[0].Progress)

	// The legacy id alias resolves to the same entry too.
	err = e.ApplyPathwayEvent(&rec, PathwayEvent{
		PathwayID:       "p1",
		Completed:       true,
		Progress:        100,
		Category:        models.CategoryBrainPower,
		TotalActivities: 3,
	})
	assert.NoError(t, err)
	assert.Len(t, rec.PathwayProgress, 1)
	assert.True(t, rec.PathwayProgress[0].Completed)
}

func TestApplyPathwayEventClampsProgress(t *testing.T) {
	e := NewEngine(fixedClock(day1))
	rec := newRecord()

	err := e.ApplyPathwayEvent(&rec, PathwayEvent{
		PathwayID: "p1", Progress: 150, Category: models.CategoryBrainPower, TotalActivities: 3,
	})
	assert.NoError(t, err)
	assert.Equal(t, 100, rec.PathwayProgress[0].Progress)

	err = e.ApplyPathwayEvent(&rec, PathwayEvent{
		PathwayID: "p1", Progress: -20, Category: models.CategoryBrainPower, TotalActivities: 3,
	})
	assert.NoError(t, err)
	assert.Equal(t, 0, rec.PathwayProgress[0].Progress)
}

func TestPathwayEventDoesNotPerturbCategoryCounts(t *testing.T) {
	e := NewEngine(fixedClock(day1))
	rec := newRecord()

	_, err := e.ApplyVideoEvent(&rec, VideoEvent{VideoID: "v1", Completed: true, Category: models.CategoryMoveAndPlay})
	assert.NoError(t, err)

	err = e.ApplyPathwayEvent(&rec, PathwayEvent{
		PathwayID: "p1", Category: models.CategoryMoveAndPlay, TotalActivities: 5,
	})
	assert.NoError(t, err)

	// Category totals stay derived from the video ledger alone; the
	// pathway's activity count lives on its own entry.
	assert.Equal(t, models.CategoryStat{Completed: 1, Total: 1}, rec.CategoryProgress.MoveAndPlay)
	assert.Equal(t, 5, rec.PathwayProgress[0].TotalActivities)
	assert.Equal(t, 100, rec.OverallProgress)
}

func TestApplyPathwayEventValidation(t *testing.T) {
	e := NewEngine(fixedClock(day1))
	rec := newRecord()

	var verr *ValidationError
	err := e.ApplyPathwayEvent(&rec, PathwayEvent{PathwayID: "", Category: models.CategoryBrainPower})
	assert.ErrorAs(t, err, &verr)

	err = e.ApplyPathwayEvent(&rec, PathwayEvent{PathwayID: "p1", Category: "nope"})
	assert.ErrorAs(t, err, &verr)

	err = e.ApplyPathwayEvent(&rec, PathwayEvent{PathwayID: "p1", Category: models.CategoryBrainPower, TotalActivities: -1})
	assert.ErrorAs(t, err, &verr)

	assert.Empty(t, rec.PathwayProgress)
}
