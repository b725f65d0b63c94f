package token_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/multidom/domainsync/pkg/errors"
	"github.com/multidom/domainsync/pkg/token"
)

func TestParse_NotYetValid(t *testing.T) {
	secret := []byte("0123456789abcdef0123456789abcdef")

	// Craft a correctly signed token whose nbf lies in the future.
	now := time.Now().UTC()
	claims := token.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now.Add(time.Minute)),
			ExpiresAt: jwt.NewNumericDate(now.Add(2 * time.Minute)),
		},
		Mode: token.ModeLogin,
		Host: "b.com",
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)

	_, err = token.NewCodec(secret).Parse(raw)
	assert.ErrorIs(t, err, apperrors.ErrTokenNotYetValid)
}

func TestParse_RejectsUnexpectedAlgorithm(t *testing.T) {
	secret := []byte("0123456789abcdef0123456789abcdef")

	now := time.Now().UTC()
	claims := token.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
		},
		Mode: token.ModeLogin,
		Host: "b.com",
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(secret)
	require.NoError(t, err)

	_, err = token.NewCodec(secret).Parse(raw)
	assert.Error(t, err)
}
