package utils

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reachround/config"
	"reachround/models"
)

func withKeys(t *testing.T) {
	t.Helper()
	prev := config.AppConfig
	config.AppConfig.EncryptionKey = "0123456789abcdef0123456789abcdef"
	config.AppConfig.JWTSecret = "test-jwt-secret"
	t.Cleanup(func() { config.AppConfig = prev })
}

func TestEncryptDecrypt(t *testing.T) {
	withKeys(t)

	t.Run("Success - Round trip", func(t *testing.T) {
		sealed, err := Encrypt("ya29.access-token")
		require.NoError(t, err)
		assert.NotEqual(t, "ya29.access-token", sealed)

		plain, err := Decrypt(sealed)
		require.NoError(t, err)
		assert.Equal(t, "ya29.access-token", plain)
	})

	t.Run("Success - Empty stays empty", func(t *testing.T) {
		sealed, err := Encrypt("")
		require.NoError(t, err)
		assert.Empty(t, sealed)
	})

	t.Run("Error - Tampered ciphertext", func(t *testing.T) {
		sealed, err := Encrypt("secret")
		require.NoError(t, err)

		raw := []byte(sealed)
		raw[10] ^= 0x01
		_, err = Decrypt(string(raw))
		assert.Error(t, err)
	})

	t.Run("Error - Too short", func(t *testing.T) {
		_, err := Decrypt("AAAA")
		assert.ErrorIs(t, err, ErrCiphertextTooShort)
	})
}

func TestJWT(t *testing.T) {
	withKeys(t)
	user := &models.User{TokenVersion: 3}
	user.ID = 42

	access, refresh, err := GenerateJWTToken(user)
	require.NoError(t, err)

	claims, err := ParseAccessToken(access)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, 3, claims.TokenVersion)

	_, err = ParseAccessToken(refresh)
	assert.Error(t, err, "refresh token must not authenticate requests")

	claims, err = ParseRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)

	_, err = ParseJWTToken(access + "x")
	assert.Error(t, err)
}

func TestValidateStruct(t *testing.T) {
	type request struct {
		Name  string `json:"name" validate:"required"`
		Email string `json:"email" validate:"omitempty,email"`
		Count int    `json:"count" validate:"omitempty,min=1,max=20"`
	}

	assert.NoError(t, ValidateStruct(request{Name: "Acme"}))

	err := ValidateStruct(request{Email: "nope", Count: 50})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name is required")
	assert.Contains(t, err.Error(), "email must be a valid email")
	assert.Contains(t, err.Error(), "count must be at most 20")
}

func TestStatusForError(t *testing.T) {
	assert.Equal(t, fiber.StatusUnauthorized, StatusForError(Unauthorized("x")))
	assert.Equal(t, fiber.StatusForbidden, StatusForError(Forbidden("x")))
	assert.Equal(t, fiber.StatusNotFound, StatusForError(NotFound("x")))
	assert.Equal(t, fiber.StatusBadRequest, StatusForError(Validation("x")))
	assert.Equal(t, fiber.StatusInternalServerError, StatusForError(Upstream("x", errors.New("boom"))))
	assert.Equal(t, fiber.StatusInternalServerError, StatusForError(errors.New("plain")))

	wrapped := errors.Join(errors.New("ctx"), NotFound("Email not found"))
	assert.Equal(t, KindNotFound, KindOf(wrapped))
}

func TestRespondError(t *testing.T) {
	app := fiber.New()
	app.Get("/upstream", func(c *fiber.Ctx) error {
		return RespondError(c, Upstream("Failed to find investors", errors.New("bad json")))
	})
	app.Get("/plain", func(c *fiber.Ctx) error {
		return RespondError(c, errors.New("db exploded"))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/upstream", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/plain", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestParseUint(t *testing.T) {
	id, ok := ParseUint("17")
	assert.True(t, ok)
	assert.Equal(t, uint(17), id)

	_, ok = ParseUint("0")
	assert.False(t, ok)
	_, ok = ParseUint("abc")
	assert.False(t, ok)

	ptr, ok := ParseUintPtr("")
	assert.True(t, ok)
	assert.Nil(t, ptr)
}
