package server

import (
	"shelftalk/internal/models"
	"shelftalk/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/users/me
// @Summary Get own profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Router /users/me [get]
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.userService.GetUserByID(c.Context(), currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}

// UpdateMyProfile handles PUT /api/users/me
// @Summary Update own profile
// @Description Update username, bio or avatar. Username changes are limited by a cooldown window.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{username=string,bio=string,avatar=string} true "Profile changes"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Router /users/me [put]
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Bio      string `json:"bio"`
		Avatar   string `json:"avatar"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateProfile(c.Context(), service.UpdateProfileInput{
		UserID:   currentUserID(c),
		Username: req.Username,
		Bio:      req.Bio,
		Avatar:   req.Avatar,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}

// DeleteMyAccount handles DELETE /api/users/me
// @Summary Delete own account
// @Description Requires a recent login; stale sessions get REAUTH_REQUIRED. Sent messages are kept.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 204
// @Failure 401 {object} models.ErrorResponse
// @Router /users/me [delete]
func (s *Server) DeleteMyAccount(c *fiber.Ctx) error {
	err := s.userService.DeleteAccount(c.Context(), currentUserID(c), tokenIssuedAt(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetUserProfile handles GET /api/users/:id
// @Summary Get a user's public profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} models.User
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [get]
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	user, err := s.userService.GetUserByID(c.Context(), c.Params("id"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}
