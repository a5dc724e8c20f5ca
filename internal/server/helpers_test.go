package server

import (
	"errors"
	"testing"

	"shelftalk/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", models.NewValidationError("bad input"), fiber.StatusBadRequest},
		{"unauthorized", models.NewUnauthorizedError("who are you"), fiber.StatusUnauthorized},
		{"reauth required", models.NewReauthRequiredError("log in again"), fiber.StatusUnauthorized},
		{"permission", models.NewPermissionError("no"), fiber.StatusForbidden},
		{"not found", models.NewNotFoundError("User", "abc"), fiber.StatusNotFound},
		{"payload too large", models.NewPayloadTooLargeError("too big"), fiber.StatusRequestEntityTooLarge},
		{"backend", models.NewBackendError(errors.New("db down")), fiber.StatusServiceUnavailable},
		{"plain error", errors.New("surprise"), fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusForError(tt.err))
		})
	}
}

func TestParsePagination(t *testing.T) {
	app := fiber.New()
	var got Pagination
	app.Get("/items", func(c *fiber.Ctx) error {
		got = parsePagination(c, 50)
		return c.SendStatus(fiber.StatusOK)
	})

	tests := []struct {
		name       string
		query      string
		wantLimit  int
		wantOffset int
	}{
		{"defaults", "", 50, 0},
		{"explicit", "?limit=10&offset=20", 10, 20},
		{"clamped to max", "?limit=100000", 100, 0},
		{"negative values fall back", "?limit=-1&offset=-9", 50, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := jsonRequest(t, fiber.MethodGet, "/items"+tt.query, nil, "")
			_, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tt.wantLimit, got.Limit)
			assert.Equal(t, tt.wantOffset, got.Offset)
		})
	}
}
