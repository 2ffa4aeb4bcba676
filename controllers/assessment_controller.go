package controllers

import (
	"errors"
	"strconv"
	"time"

	"github.com/adhirath/backend/ai"
	"github.com/adhirath/backend/config"
	"github.com/adhirath/backend/models"
	"github.com/adhirath/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AssessmentController struct {
	DB  *gorm.DB
	Cfg *config.Config
	AI  *ai.Client
}

func NewAssessmentController(db *gorm.DB, cfg *config.Config, client *ai.Client) *AssessmentController {
	return &AssessmentController{DB: db, Cfg: cfg, AI: client}
}

// Submit stores the questionnaire answers and updates the user's
// pathway recommendations. When the client does not supply
// recommendations they are fetched from the AI service.
func (sc *AssessmentController) Submit(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, sc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	type SubmitInput struct {
		Questions              []models.AssessmentAnswer `json:"questions"`
		PathwayRecommendations []string                  `json:"pathwayRecommendations"`
	}

	var input SubmitInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if len(input.Questions) == 0 {
		return utils.BadRequest(c, "Questions array is required")
	}

	var user models.User
	if err := sc.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "User not found")
		}
		return utils.ServerError(c, "Error submitting assessment", err)
	}

	recommendations := input.PathwayRecommendations
	if len(recommendations) == 0 {
		recommendations, err = sc.AI.Recommend(c.UserContext(), input.Questions)
		if err != nil {
			return utils.Fail(c, fiber.StatusBadGateway, "Recommendation service unavailable", err)
		}
	}

	assessment := models.Assessment{
		UserID:      userID,
		Questions:   datatypes.NewJSONSlice(input.Questions),
		TotalScore:  len(input.Questions),
		CompletedAt: time.Now(),
	}
	if err := sc.DB.Create(&assessment).Error; err != nil {
		return utils.ServerError(c, "Error submitting assessment", err)
	}

	user.PathwayRecommendations = datatypes.NewJSONSlice(recommendations)
	if err := sc.DB.Save(&user).Error; err != nil {
		return utils.ServerError(c, "Error submitting assessment", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Assessment submitted successfully",
		"assessment": fiber.Map{
			"id":                     assessment.ID,
			"totalScore":             assessment.TotalScore,
			"completedAt":            assessment.CompletedAt,
			"pathwayRecommendations": recommendations,
		},
	})
}

func (sc *AssessmentController) History(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, sc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var assessments []models.Assessment
	if err := sc.DB.Where("user_id = ?", userID).
		Order("completed_at DESC").
		Find(&assessments).Error; err != nil {
		return utils.ServerError(c, "Error fetching assessment history", err)
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"assessments": assessments,
	})
}

func (sc *AssessmentController) Get(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, sc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	assessmentID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid assessment ID")
	}

	var assessment models.Assessment
	if err := sc.DB.Where("id = ? AND user_id = ?", assessmentID, userID).
		First(&assessment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Assessment not found")
		}
		return utils.ServerError(c, "Error fetching assessment", err)
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"assessment": assessment,
	})
}
