package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arrive/internal/clock"
)

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	t.Setenv("JWT_SECRET", "test-secret")

	store := newFakeStore()
	svc := NewAuthService(store, clock.NewFixed(now))

	user, err := svc.Register(ctx, RegisterInput{
		Email:     "sam@example.com",
		Password:  "hunter22",
		FirstName: "Sam",
		LastName:  "Ortiz",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, user.UserID)
	assert.NotEqual(t, "hunter22", user.PasswordHash)

	t.Run("valid credentials yield a signed token", func(t *testing.T) {
		tokenString, err := svc.Login(ctx, "sam@example.com", "hunter22")
		require.NoError(t, err)

		token, err := jwt.Parse(tokenString, func(tok *jwt.Token) (interface{}, error) {
			return []byte("test-secret"), nil
		}, jwt.WithTimeFunc(func() time.Time { return now }))
		require.NoError(t, err)
		claims, ok := token.Claims.(jwt.MapClaims)
		require.True(t, ok)
		assert.Equal(t, user.UserID, claims["user_id"])
		assert.Equal(t, "sam@example.com", claims["email"])
		assert.Equal(t, float64(now.Add(24*time.Hour).Unix()), claims["exp"])
	})

	t.Run("wrong password is rejected", func(t *testing.T) {
		_, err := svc.Login(ctx, "sam@example.com", "wrong")
		assert.EqualError(t, err, "invalid credentials")
	})

	t.Run("unknown email is rejected", func(t *testing.T) {
		_, err := svc.Login(ctx, "nobody@example.com", "hunter22")
		assert.EqualError(t, err, "invalid credentials")
	})

	t.Run("empty password is rejected at registration", func(t *testing.T) {
		_, err := svc.Register(ctx, RegisterInput{Email: "x@example.com"})
		assert.Error(t, err)
	})
}
