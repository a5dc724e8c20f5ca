package server

import (
	"testing"
	"time"

	"shelftalk/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mintToken signs a token directly so tests can control the issued-at claim.
func mintToken(t *testing.T, s *Server, userID string, issuedAt time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": userID,
		"iss": "shelftalk-api",
		"aud": "shelftalk-client",
		"exp": issuedAt.Add(7 * 24 * time.Hour).Unix(),
		"iat": issuedAt.Unix(),
		"nbf": issuedAt.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(s.config.JWTSecret))
	require.NoError(t, err)
	return signed
}

func TestGetProfiles(t *testing.T) {
	_, app := newTestServer(t)
	token, userID := signupUser(t, app, "profile_user")
	_, otherID := signupUser(t, app, "profile_other")

	t.Run("own profile", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(t, fiber.MethodGet, "/api/users/me", nil, token), -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var user models.User
		decodeBody(t, resp, &user)
		assert.Equal(t, userID, user.ID)
		assert.Equal(t, "profile_user", user.Username)
	})

	t.Run("another user's profile", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(t, fiber.MethodGet, "/api/users/"+otherID, nil, token), -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var user models.User
		decodeBody(t, resp, &user)
		assert.Equal(t, "profile_other", user.Username)
	})

	t.Run("unknown user", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(t, fiber.MethodGet,
			"/api/users/00000000-0000-0000-0000-000000000000", nil, token), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})
}

func TestUpdateMyProfile(t *testing.T) {
	_, app := newTestServer(t)
	token, _ := signupUser(t, app, "update_user")
	_, _ = signupUser(t, app, "taken_name")

	t.Run("updates bio and avatar", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(t, fiber.MethodPut, "/api/users/me",
			fiber.Map{"bio": "mostly sci-fi", "avatar": "https://cdn.example.com/a.png"}, token), -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var user models.User
		decodeBody(t, resp, &user)
		assert.Equal(t, "mostly sci-fi", user.Bio)
		assert.Nil(t, user.UsernameChangedAt)
	})

	t.Run("rejects taken username", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(t, fiber.MethodPut, "/api/users/me",
			fiber.Map{"username": "taken_name"}, token), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("username change starts the cooldown", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(t, fiber.MethodPut, "/api/users/me",
			fiber.Map{"username": "renamed_user"}, token), -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var user models.User
		decodeBody(t, resp, &user)
		assert.Equal(t, "renamed_user", user.Username)
		require.NotNil(t, user.UsernameChangedAt)

		// A second change inside the window is rejected.
		resp, err = app.Test(jsonRequest(t, fiber.MethodPut, "/api/users/me",
			fiber.Map{"username": "renamed_again"}, token), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("rejects oversized bio", func(t *testing.T) {
		long := make([]byte, 501)
		for i := range long {
			long[i] = 'b'
		}
		resp, err := app.Test(jsonRequest(t, fiber.MethodPut, "/api/users/me",
			fiber.Map{"bio": string(long)}, token), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

func TestDeleteMyAccount(t *testing.T) {
	s, app := newTestServer(t)

	t.Run("stale session requires reauth", func(t *testing.T) {
		_, userID := signupUser(t, app, "stale_user")
		stale := mintToken(t, s, userID, time.Now().Add(-time.Hour))

		resp, err := app.Test(jsonRequest(t, fiber.MethodDelete, "/api/users/me", nil, stale), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

		var body models.ErrorResponse
		decodeBody(t, resp, &body)
		assert.Equal(t, models.CodeReauthRequired, body.Code)
	})

	t.Run("fresh session deletes the account and keeps messages", func(t *testing.T) {
		token, userID := signupUser(t, app, "doomed_user")
		_, friendID := signupUser(t, app, "friend_user")

		resp, err := app.Test(jsonRequest(t, fiber.MethodPost,
			"/api/conversations/with/"+friendID+"/messages",
			fiber.Map{"text": "parting words"}, token), -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)

		resp, err = app.Test(jsonRequest(t, fiber.MethodDelete, "/api/users/me", nil, token), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

		// The account is gone but the conversation log is intact.
		var user models.User
		err = s.db.First(&user, "id = ?", userID).Error
		assert.Error(t, err)

		var count int64
		require.NoError(t, s.db.Model(&models.Message{}).
			Where("sender_id = ?", userID).Count(&count).Error)
		assert.EqualValues(t, 1, count)
	})
}
