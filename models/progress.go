package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Category is one of the three fixed skill domains used to bucket videos
// and pathways.
type Category string

const (
	CategoryBrainPower   Category = "brainPower"
	CategoryMoveAndPlay  Category = "moveAndPlay"
	CategorySocialSkills Category = "socialSkills"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryBrainPower, CategoryMoveAndPlay, CategorySocialSkills:
		return true
	}
	return false
}

type VideoEntry struct {
	VideoID         string    `json:"videoId"`
	Completed       bool      `json:"completed"`
	WatchedDuration float64   `json:"watchedDuration"`
	LastWatched     time.Time `json:"lastWatched"`
	Category        Category  `json:"category"`
}

type PathwayEntry struct {
	PathwayID string `json:"pathwayId"`
	// LegacyID and Title are older identity fields still present in stored
	// records; migration folds them into PathwayID.
	LegacyID            string    `json:"id,omitempty"`
	Title               string    `json:"title,omitempty"`
	Completed           bool      `json:"completed"`
	Progress            int       `json:"progress"`
	ActivitiesCompleted int       `json:"activitiesCompleted"`
	TotalActivities     int       `json:"totalActivities"`
	Category            Category  `json:"category"`
	StartedAt           time.Time `json:"startedAt"`
	LastUpdated         time.Time `json:"lastUpdated"`
}

type CategoryCounts struct {
	BrainPower   int `json:"brainPower"`
	MoveAndPlay  int `json:"moveAndPlay"`
	SocialSkills int `json:"socialSkills"`
}

// Inc bumps the counter for cat. Unknown categories are ignored.
func (c *CategoryCounts) Inc(cat Category) {
	switch cat {
	case CategoryBrainPower:
		c.BrainPower++
	case CategoryMoveAndPlay:
		c.MoveAndPlay++
	case CategorySocialSkills:
		c.SocialSkills++
	}
}

type DailyEntry struct {
	Date                time.Time      `json:"date"`
	ActivitiesCompleted int            `json:"activitiesCompleted"`
	Categories          CategoryCounts `json:"categories"`
}

type StreakData struct {
	CurrentStreak    int        `json:"currentStreak"`
	LongestStreak    int        `json:"longestStreak"`
	LastActivityDate *time.Time `json:"lastActivityDate"`
}

type CategoryStat struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// Percent returns the completion percentage for the stat, 0 when empty.
func (s CategoryStat) Percent() int {
	if s.Total == 0 {
		return 0
	}
	return int(float64(s.Completed)/float64(s.Total)*100 + 0.5)
}

type CategoryProgress struct {
	BrainPower   CategoryStat `json:"brainPower"`
	MoveAndPlay  CategoryStat `json:"moveAndPlay"`
	SocialSkills CategoryStat `json:"socialSkills"`
}

// Stat returns the bucket for cat, or nil for an unknown category.
func (p *CategoryProgress) Stat(cat Category) *CategoryStat {
	switch cat {
	case CategoryBrainPower:
		return &p.BrainPower
	case CategoryMoveAndPlay:
		return &p.MoveAndPlay
	case CategorySocialSkills:
		return &p.SocialSkills
	}
	return nil
}

type AchievementProgress struct {
	Current  int `json:"current"`
	Required int `json:"required"`
}

type Achievement struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description,omitempty"`
	Category    string              `json:"category,omitempty"`
	Rarity      string              `json:"rarity,omitempty"`
	Points      int                 `json:"points"`
	Progress    AchievementProgress `json:"progress"`
	EarnedAt    *time.Time          `json:"earnedAt,omitempty"`
	Icon        string              `json:"icon,omitempty"`
}

type QuizResult struct {
	QuizID      string    `json:"quizId"`
	Score       float64   `json:"score"`
	MaxScore    float64   `json:"maxScore"`
	CompletedAt time.Time `json:"completedAt"`
}

// ProgressRecord is the per-user progress aggregate. It is stored as a
// single JSON document and only ever mutated through the progress engine.
type ProgressRecord struct {
	VideoProgress    []VideoEntry     `json:"videoProgress"`
	PathwayProgress  []PathwayEntry   `json:"pathwayProgress"`
	DailyProgress    []DailyEntry     `json:"dailyProgress"`
	QuizResults      []QuizResult     `json:"quizResults"`
	StreakData       StreakData       `json:"streakData"`
	Achievements     []Achievement    `json:"achievements"`
	CategoryProgress CategoryProgress `json:"categoryProgress"`
	OverallProgress  int              `json:"overallProgress"`
	TotalPoints      int              `json:"totalPoints"`
}

type Progress struct {
	gorm.Model
	UserID uint `gorm:"uniqueIndex;not null"`
	Record datatypes.JSONType[ProgressRecord]
}

// NewProgressRecord returns the zero-state aggregate a user starts with.
func NewProgressRecord() ProgressRecord {
	return ProgressRecord{
		VideoProgress:   []VideoEntry{},
		PathwayProgress: []PathwayEntry{},
		DailyProgress:   []DailyEntry{},
		QuizResults:     []QuizResult{},
		Achievements:    DefaultAchievements(),
	}
}

// DefaultAchievements is the catalogue every new record is seeded with.
func DefaultAchievements() []Achievement {
	return []Achievement{
		{
			ID:       "first-steps",
			Name:     "First Steps",
			Category: "learning",
			Rarity:   "common",
			Points:   50,
			Progress: AchievementProgress{Required: 1},
			Icon:     "footprints",
		},
		{
			ID:       "brain-boost",
			Name:     "Brain Boost",
			Category: "learning",
			Rarity:   "common",
			Points:   100,
			Progress: AchievementProgress{Required: 5},
			Icon:     "brain",
		},
		{
			ID:       "week-streak",
			Name:     "On a Roll",
			Category: "special",
			Rarity:   "rare",
			Points:   200,
			Progress: AchievementProgress{Required: 7},
			Icon:     "flame",
		},
		{
			ID:       "pathway-pioneer",
			Name:     "Pathway Pioneer",
			Category: "learning",
			Rarity:   "epic",
			Points:   300,
			Progress: AchievementProgress{Required: 1},
			Icon:     "map",
		},
	}
}
