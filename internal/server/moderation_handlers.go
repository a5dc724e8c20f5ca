package server

import (
	"shelftalk/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ReportUser handles POST /api/users/:id/report
// @Summary Report a user
// @Description File a moderation report. Each successful report increments the reported user's count.
// @Tags moderation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reported user ID"
// @Param request body object{reason=string} true "Report reason"
// @Success 201 {object} models.Report
// @Failure 400 {object} models.ErrorResponse
// @Router /users/{id}/report [post]
func (s *Server) ReportUser(c *fiber.Ctx) error {
	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	report, err := s.moderationService.ReportUser(c.Context(), currentUserID(c), c.Params("id"), req.Reason)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(report)
}

// ListReports handles GET /api/admin/reports
// @Summary List moderation reports
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} models.Report
// @Failure 403 {object} models.ErrorResponse
// @Router /admin/reports [get]
func (s *Server) ListReports(c *fiber.Ctx) error {
	p := parsePagination(c, 50)
	reports, err := s.moderationService.ListReports(c.Context(), currentUserID(c), p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(reports)
}

// ListReportsForUser handles GET /api/admin/reports/user/:id
// @Summary List reports filed against one user
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reported user ID"
// @Success 200 {array} models.Report
// @Failure 403 {object} models.ErrorResponse
// @Router /admin/reports/user/{id} [get]
func (s *Server) ListReportsForUser(c *fiber.Ctx) error {
	p := parsePagination(c, 50)
	reports, err := s.moderationService.ListReportsForUser(c.Context(), currentUserID(c), c.Params("id"), p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(reports)
}

// BanUser handles POST /api/admin/users/:id/ban
// @Summary Ban a user
// @Description Banned users cannot send messages; their existing messages remain.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Target user ID"
// @Param request body object{reason=string} true "Ban reason"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Router /admin/users/{id}/ban [post]
func (s *Server) BanUser(c *fiber.Ctx) error {
	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if err := s.moderationService.SetBanned(c.Context(), currentUserID(c), c.Params("id"), true, req.Reason); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UnbanUser handles POST /api/admin/users/:id/unban
// @Summary Unban a user
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Target user ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Router /admin/users/{id}/unban [post]
func (s *Server) UnbanUser(c *fiber.Ctx) error {
	if err := s.moderationService.SetBanned(c.Context(), currentUserID(c), c.Params("id"), false, ""); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
