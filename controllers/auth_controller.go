package controller

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"reachround/config"
	"reachround/models"
	"reachround/utils"
)

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"omitempty,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         *models.User `json:"user"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

func Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return utils.RespondError(c, err)
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if err := utils.ValidateStruct(req); err != nil {
		return utils.RespondError(c, utils.Validation(err.Error()))
	}

	db := config.DB.WithContext(c.UserContext())

	// Check if user already exists
	var existing models.User
	if err := db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return utils.RespondError(c, utils.Validation("Email already registered"))
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.RespondError(c, err)
	}

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to hash password", nil)
	}

	user := models.User{
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
		Name:         utils.NilIfEmpty(strings.TrimSpace(req.Name)),
		IsActive:     true,
		TokenVersion: 1,
	}
	// Create user
	if err := db.Create(&user).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create user", nil)
	}

	// Generate tokens
	accessToken, refreshToken, err := utils.GenerateJWTToken(&user)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to generate tokens", nil)
	}

	utils.LogEvent("user_registered", map[string]interface{}{"user_id": user.ID})

	user.Sanitize()
	return c.Status(fiber.StatusCreated).JSON(AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         &user,
	})
}

func Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := parseBody(c, &req); err != nil {
		return utils.RespondError(c, err)
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if err := utils.ValidateStruct(req); err != nil {
		return utils.RespondError(c, utils.Validation(err.Error()))
	}

	// Find user by email
	var user models.User
	if err := config.DB.WithContext(c.UserContext()).Where("email = ?", req.Email).First(&user).Error; err != nil {
		return utils.RespondError(c, utils.Unauthorized("Invalid email or password"))
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return utils.RespondError(c, utils.Unauthorized("Invalid email or password"))
	}

	// Check if account is active
	if !user.IsActive {
		return utils.RespondError(c, utils.Forbidden("Account is not active"))
	}

	accessToken, refreshToken, err := utils.GenerateJWTToken(&user)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to generate tokens", nil)
	}

	user.Sanitize()
	return c.JSON(AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         &user,
	})
}

// RefreshToken trades a valid refresh token for a new pair.
func RefreshToken(c *fiber.Ctx) error {
	var req RefreshTokenRequest
	if err := parseBody(c, &req); err != nil {
		return utils.RespondError(c, err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.RespondError(c, utils.Validation(err.Error()))
	}

	claims, err := utils.ParseRefreshToken(req.RefreshToken)
	if err != nil {
		return utils.RespondError(c, utils.Unauthorized("Invalid or expired refresh token"))
	}

	var user models.User
	if err := config.DB.WithContext(c.UserContext()).First(&user, claims.UserID).Error; err != nil {
		return utils.RespondError(c, utils.Unauthorized("User not found"))
	}
	// Tokens issued before a version bump are no longer valid
	if !user.IsActive || claims.TokenVersion != user.TokenVersion {
		return utils.RespondError(c, utils.Unauthorized("Invalid token version"))
	}

	accessToken, refreshToken, err := utils.GenerateJWTToken(&user)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to generate tokens", nil)
	}

	return c.JSON(fiber.Map{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}

func GetCurrentUser(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	user.Sanitize()
	return c.JSON(user)
}
