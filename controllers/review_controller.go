package controllers

import (
	"github.com/adhirath/backend/config"
	"github.com/adhirath/backend/models"
	"github.com/adhirath/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ReviewController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewReviewController(db *gorm.DB, cfg *config.Config) *ReviewController {
	return &ReviewController{DB: db, Cfg: cfg}
}

func (rc *ReviewController) Submit(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, rc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	type ReviewInput struct {
		Name     string `json:"name"`
		Rating   int    `json:"rating"`
		Feedback string `json:"feedback"`
	}

	var input ReviewInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Name == "" || input.Feedback == "" || input.Rating == 0 {
		return utils.BadRequest(c, "Name, rating, and feedback are required")
	}
	if input.Rating < 1 || input.Rating > 5 {
		return utils.BadRequest(c, "Rating must be between 1 and 5")
	}

	review := models.Review{
		UserID:   userID,
		Name:     input.Name,
		Rating:   input.Rating,
		Feedback: input.Feedback,
	}
	if err := rc.DB.Create(&review).Error; err != nil {
		return utils.ServerError(c, "Error submitting review", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Review submitted successfully",
		"review":  review,
	})
}

// List returns the latest 10 reviews. No auth required.
func (rc *ReviewController) List(c *fiber.Ctx) error {
	var reviews []models.Review
	if err := rc.DB.Order("created_at DESC").Limit(10).Find(&reviews).Error; err != nil {
		return utils.ServerError(c, "Error fetching reviews", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"reviews": reviews,
	})
}
