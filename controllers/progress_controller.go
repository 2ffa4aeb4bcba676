package controllers

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/adhirath/backend/config"
	"github.com/adhirath/backend/gamification"
	"github.com/adhirath/backend/models"
	"github.com/adhirath/backend/progress"
	"github.com/adhirath/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ProgressController struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Engine *progress.Engine
	Ledger *gamification.Ledger
	Logger *log.Logger

	// Events for the same user are serialized with a per-user mutex so
	// the read-modify-write on the record cannot lose updates. Events
	// for different users proceed in parallel. Mutexes are never
	// evicted: the map grows with the number of distinct users seen by
	// the process.
	locks sync.Map
}

func NewProgressController(db *gorm.DB, cfg *config.Config) *ProgressController {
	return &ProgressController{
		DB:     db,
		Cfg:    cfg,
		Engine: progress.NewEngine(time.Now),
		Ledger: gamification.NewLedger(time.Now),
		Logger: utils.InitLogger(),
	}
}

func (pc *ProgressController) lockUser(userID uint) func() {
	v, _ := pc.locks.LoadOrStore(userID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// loadRecord fetches the user's progress row. When none exists it
// returns a zero-state record that has not been persisted yet; the
// caller decides whether to save it.
func (pc *ProgressController) loadRecord(userID uint) (models.Progress, models.ProgressRecord, error) {
	var row models.Progress
	err := pc.DB.Where("user_id = ?", userID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			row = models.Progress{UserID: userID}
			return row, models.NewProgressRecord(), nil
		}
		return row, models.ProgressRecord{}, err
	}
	rec := row.Record.Data()
	progress.Migrate(&rec)
	return row, rec, nil
}

func (pc *ProgressController) saveRecord(row *models.Progress, rec models.ProgressRecord) error {
	row.Record = datatypes.NewJSONType(rec)
	return pc.DB.Save(row).Error
}

// GetProgress godoc
// @Summary Get user progress
// @Description Returns the full progress aggregate with derived stats
// @Tags progress
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /progress [get]
func (pc *ProgressController) GetProgress(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	unlock := pc.lockUser(userID)
	defer unlock()

	row, rec, err := pc.loadRecord(userID)
	if err != nil {
		return utils.ServerError(c, "Error fetching progress", err)
	}

	// Never trust stored derived fields; recount before returning.
	progress.Recompute(&rec)
	if err := pc.saveRecord(&row, rec); err != nil {
		return utils.ServerError(c, "Error fetching progress", err)
	}

	today := progress.TodayEntry(&rec, time.Now())

	totalVideos := len(rec.VideoProgress)
	completedVideos := 0
	for _, v := range rec.VideoProgress {
		if v.Completed {
			completedVideos++
		}
	}
	completionRate := 0
	if totalVideos > 0 {
		completionRate = int(float64(completedVideos)/float64(totalVideos)*100 + 0.5)
	}

	earned := 0
	totalPoints := 0
	for _, a := range rec.Achievements {
		if a.EarnedAt != nil {
			earned++
			totalPoints += a.Points
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"progress": fiber.Map{
			"videoProgress":    rec.VideoProgress,
			"pathwayProgress":  rec.PathwayProgress,
			"dailyProgress":    rec.DailyProgress,
			"streakData":       rec.StreakData,
			"achievements":     rec.Achievements,
			"categoryProgress": rec.CategoryProgress,
			"overallProgress":  rec.OverallProgress,
			"totalPoints":      rec.TotalPoints,
			"stats": fiber.Map{
				"todayProgress": fiber.Map{
					"activitiesCompleted": today.ActivitiesCompleted,
					"categories":          today.Categories,
				},
				"categoryPercentages": fiber.Map{
					"brainPower":   rec.CategoryProgress.BrainPower.Percent(),
					"moveAndPlay":  rec.CategoryProgress.MoveAndPlay.Percent(),
					"socialSkills": rec.CategoryProgress.SocialSkills.Percent(),
				},
				"videoStats": fiber.Map{
					"total":          totalVideos,
					"completed":      completedVideos,
					"completionRate": completionRate,
				},
				"achievements": fiber.Map{
					"earned":      earned,
					"totalPoints": totalPoints,
				},
			},
		},
	})
}

// UpdateVideoProgress godoc
// @Summary Record a video completion event
// @Tags progress
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /progress/video [post]
func (pc *ProgressController) UpdateVideoProgress(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	type VideoInput struct {
		VideoID         string          `json:"videoId"`
		Completed       bool            `json:"completed"`
		WatchedDuration float64         `json:"watchedDuration"`
		Category        models.Category `json:"category"`
	}

	var input VideoInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.VideoID == "" || input.Category == "" {
		return utils.BadRequest(c, "Video ID and category are required")
	}

	unlock := pc.lockUser(userID)
	defer unlock()

	row, rec, err := pc.loadRecord(userID)
	if err != nil {
		return utils.ServerError(c, "Error updating video progress", err)
	}

	outcome, err := pc.Engine.ApplyVideoEvent(&rec, progress.VideoEvent{
		VideoID:         input.VideoID,
		Completed:       input.Completed,
		WatchedDuration: input.WatchedDuration,
		Category:        input.Category,
	})
	if err != nil {
		var verr *progress.ValidationError
		if errors.As(err, &verr) {
			return utils.BadRequest(c, verr.Error())
		}
		return utils.ServerError(c, "Error updating video progress", err)
	}

	if err := pc.saveRecord(&row, rec); err != nil {
		return utils.ServerError(c, "Error updating video progress", err)
	}

	if outcome.FirstCompletion {
		if err := pc.awardXP(userID, gamification.VideoCompletionXP); err != nil {
			return pc.xpError(c, err)
		}
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"progress": rec,
	})
}

// UpdatePathwayProgress godoc
// @Summary Record a pathway progress event
// @Tags progress
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /progress/pathway [post]
func (pc *ProgressController) UpdatePathwayProgress(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	type PathwayInput struct {
		PathwayID       string          `json:"pathwayId"`
		Completed       bool            `json:"completed"`
		Progress        int             `json:"progress"`
		Category        models.Category `json:"category"`
		TotalActivities *int            `json:"totalActivities"`
	}

	var input PathwayInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.PathwayID == "" || input.Category == "" || input.TotalActivities == nil {
		return utils.BadRequest(c, "Pathway ID, category, and total activities are required")
	}

	unlock := pc.lockUser(userID)
	defer unlock()

	row, rec, err := pc.loadRecord(userID)
	if err != nil {
		return utils.ServerError(c, "Error updating pathway progress", err)
	}

	if err := pc.Engine.ApplyPathwayEvent(&rec, progress.PathwayEvent{
		PathwayID:       input.PathwayID,
		Completed:       input.Completed,
		Progress:        input.Progress,
		Category:        input.Category,
		TotalActivities: *input.TotalActivities,
	}); err != nil {
		var verr *progress.ValidationError
		if errors.As(err, &verr) {
			return utils.BadRequest(c, verr.Error())
		}
		return utils.ServerError(c, "Error updating pathway progress", err)
	}

	if err := pc.saveRecord(&row, rec); err != nil {
		return utils.ServerError(c, "Error updating pathway progress", err)
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"progress": rec,
	})
}

// SaveQuizResult godoc
// @Summary Record a quiz result and award XP
// @Tags progress
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /progress/quiz [post]
func (pc *ProgressController) SaveQuizResult(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	type QuizInput struct {
		QuizID   string   `json:"quizId"`
		Score    *float64 `json:"score"`
		MaxScore *float64 `json:"maxScore"`
	}

	var input QuizInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.QuizID == "" || input.Score == nil || input.MaxScore == nil {
		return utils.BadRequest(c, "Quiz ID, score, and max score are required")
	}
	if *input.Score < 0 || *input.MaxScore <= 0 || *input.Score > *input.MaxScore {
		return utils.BadRequest(c, "Score must be between 0 and max score")
	}

	unlock := pc.lockUser(userID)
	defer unlock()

	row, rec, err := pc.loadRecord(userID)
	if err != nil {
		return utils.ServerError(c, "Error saving quiz result", err)
	}

	rec.QuizResults = append(rec.QuizResults, models.QuizResult{
		QuizID:      input.QuizID,
		Score:       *input.Score,
		MaxScore:    *input.MaxScore,
		CompletedAt: time.Now(),
	})
	progress.Recompute(&rec)

	if err := pc.saveRecord(&row, rec); err != nil {
		return utils.ServerError(c, "Error saving quiz result", err)
	}

	if err := pc.awardXP(userID, gamification.QuizXP(*input.Score, *input.MaxScore)); err != nil {
		return pc.xpError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"quizResults": rec.QuizResults,
	})
}

// UpdateAchievementProgress godoc
// @Summary Update achievement progress
// @Tags progress
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /progress/achievement [post]
func (pc *ProgressController) UpdateAchievementProgress(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	type AchievementInput struct {
		AchievementID string `json:"achievementId"`
		Progress      *int   `json:"progress"`
	}

	var input AchievementInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.AchievementID == "" || input.Progress == nil {
		return utils.BadRequest(c, "Achievement ID and progress are required")
	}

	unlock := pc.lockUser(userID)
	defer unlock()

	row, rec, err := pc.loadRecord(userID)
	if err != nil {
		return utils.ServerError(c, "Error updating achievement progress", err)
	}

	var achievement *models.Achievement
	for i := range rec.Achievements {
		if rec.Achievements[i].ID == input.AchievementID {
			achievement = &rec.Achievements[i]
			break
		}
	}
	if achievement == nil {
		// Nothing has been saved at this point: a not-found lookup on a
		// lazily created record leaves no trace.
		return utils.NotFound(c, "Achievement not found")
	}

	achievement.Progress.Current = *input.Progress

	earnedNow := achievement.EarnedAt == nil &&
		achievement.Progress.Current >= achievement.Progress.Required
	if earnedNow {
		now := time.Now()
		achievement.EarnedAt = &now
		rec.TotalPoints += achievement.Points
	}

	if err := pc.saveRecord(&row, rec); err != nil {
		return utils.ServerError(c, "Error updating achievement progress", err)
	}

	if earnedNow {
		if err := pc.awardXP(userID, gamification.AchievementXP); err != nil {
			return pc.xpError(c, err)
		}
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"achievements": rec.Achievements,
	})
}

// UpdatePreferences godoc
// @Summary Shallow-merge user preferences
// @Tags progress
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /progress/preferences [post]
func (pc *ProgressController) UpdatePreferences(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	type PreferencesInput struct {
		Preferences map[string]interface{} `json:"preferences"`
	}

	var input PreferencesInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Preferences == nil {
		return utils.BadRequest(c, "Preferences are required")
	}

	var user models.User
	if err := pc.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "User not found")
		}
		return utils.ServerError(c, "Error updating preferences", err)
	}

	if user.Preferences == nil {
		user.Preferences = models.DefaultPreferences()
	}
	for k, v := range input.Preferences {
		user.Preferences[k] = v
	}

	if err := pc.DB.Save(&user).Error; err != nil {
		return utils.ServerError(c, "Error updating preferences", err)
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"preferences": user.Preferences,
	})
}

// awardXP loads the user, applies the award through the ledger and
// persists the result.
func (pc *ProgressController) awardXP(userID uint, xp int) error {
	var user models.User
	if err := pc.DB.First(&user, userID).Error; err != nil {
		return err
	}
	if err := pc.Ledger.Award(&user, xp); err != nil {
		return err
	}
	return pc.DB.Save(&user).Error
}

// xpError maps ledger failures onto HTTP responses. Integrity errors
// mean the stored user record is corrupt; they are logged server-side
// and surfaced as server faults, never papered over.
func (pc *ProgressController) xpError(c *fiber.Ctx, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.NotFound(c, "User not found")
	}
	var ierr *gamification.IntegrityError
	if errors.As(err, &ierr) {
		pc.Logger.Printf("corrupt user record: %v", ierr)
		return utils.ServerError(c, "User record is corrupt", ierr)
	}
	return utils.ServerError(c, "Error awarding XP", err)
}
