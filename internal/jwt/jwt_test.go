package jwt

import (
	"context"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestJWT_GenerateAndGetClaims(t *testing.T) {
	j := New(WithSecretKey("test-secret"), WithExpiration(time.Minute))

	sessionID := uuid.New()
	ctx := context.Background()

	token, err := j.Generate(ctx, sessionID)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := j.GetClaims(ctx, token)
	assert.NoError(t, err)
	assert.Equal(t, sessionID, claims.SessionID)
	assert.True(t, claims.ExpiresAt.After(time.Now()))
}

func TestJWT_ExpiredToken(t *testing.T) {
	j := New(WithSecretKey("test-secret"), WithExpiration(-time.Minute)) // already expired
	ctx := context.Background()

	token, err := j.Generate(ctx, uuid.New())
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := j.GetClaims(ctx, token)
	assert.Error(t, err)
	assert.Nil(t, claims)
}

func TestJWT_InvalidToken(t *testing.T) {
	j := New(WithSecretKey("secret"))
	ctx := context.Background()

	claims, err := j.GetClaims(ctx, "invalid.token.string")
	assert.Error(t, err)
	assert.Nil(t, claims)
}

func TestJWT_WrongSecret(t *testing.T) {
	j1 := New(WithSecretKey("secret1"))
	j2 := New(WithSecretKey("secret2"))
	ctx := context.Background()

	token, err := j1.Generate(ctx, uuid.New())
	assert.NoError(t, err)

	claims, err := j2.GetClaims(ctx, token)
	assert.Error(t, err)
	assert.Nil(t, claims)
}

func TestJWT_MissingSessionID(t *testing.T) {
	j := New(WithSecretKey("secret"))

	token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, gojwt.MapClaims{
		"exp": time.Now().Add(time.Minute).Unix(),
	}).SignedString([]byte("secret"))
	assert.NoError(t, err)

	claims, err := j.GetClaims(context.Background(), token)
	assert.Error(t, err)
	assert.Nil(t, claims)
}

func TestJWT_RejectsNoneAlgorithm(t *testing.T) {
	j := New(WithSecretKey("secret"))

	token, err := gojwt.NewWithClaims(gojwt.SigningMethodNone, Claims{SessionID: uuid.New()}).
		SignedString(gojwt.UnsafeAllowNoneSignatureType)
	assert.NoError(t, err)

	claims, err := j.GetClaims(context.Background(), token)
	assert.Error(t, err)
	assert.Nil(t, claims)
}
