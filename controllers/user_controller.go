package controllers

import (
	"errors"

	"github.com/adhirath/backend/config"
	"github.com/adhirath/backend/models"
	"github.com/adhirath/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type UserController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewUserController(db *gorm.DB, cfg *config.Config) *UserController {
	return &UserController{DB: db, Cfg: cfg}
}

func (uc *UserController) userPayload(user *models.User) fiber.Map {
	return fiber.Map{
		"id":                     user.ID,
		"name":                   user.Name,
		"email":                  user.Email,
		"profilePicture":         user.ProfilePicture,
		"pathwayRecommendations": user.PathwayRecommendations,
		"level":                  user.Level,
		"xp":                     user.XP,
		"totalXp":                user.TotalXP,
		"preferences":            user.Preferences,
		"lastActive":             user.LastActive,
	}
}

func (uc *UserController) GetMe(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, uc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var user models.User
	if err := uc.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "User not found")
		}
		return utils.ServerError(c, "Error fetching user data", err)
	}

	return c.JSON(uc.userPayload(&user))
}

func (uc *UserController) UpdateProfile(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, uc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	// Only a fixed set of fields may be updated through this endpoint.
	type ProfileInput struct {
		Name           *string                `json:"name"`
		ProfilePicture *string                `json:"profilePicture"`
		Preferences    map[string]interface{} `json:"preferences"`
	}

	var input ProfileInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	var user models.User
	if err := uc.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "User not found")
		}
		return utils.ServerError(c, "Error updating profile", err)
	}

	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.ProfilePicture != nil {
		user.ProfilePicture = *input.ProfilePicture
	}
	if input.Preferences != nil {
		if user.Preferences == nil {
			user.Preferences = models.DefaultPreferences()
		}
		for k, v := range input.Preferences {
			user.Preferences[k] = v
		}
	}

	if err := uc.DB.Save(&user).Error; err != nil {
		return utils.ServerError(c, "Error updating profile", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Profile updated successfully",
		"user":    uc.userPayload(&user),
	})
}
