package token

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/multidom/domainsync/pkg/errors"
)

// Propagation modes carried in the "mode" claim.
const (
	ModeLogin  = "login"
	ModeLogout = "logout"
)

// clockSkew is subtracted from nbf at mint time to absorb clock drift
// between domains. Callers must not assume sub-5-second propagation safety.
const clockSkew = 5 * time.Second

// Claims is the payload of a sync token. A token authorizes exactly one
// receiver action on one target host.
type Claims struct {
	jwt.RegisteredClaims
	Mode      string `json:"mode"`
	SessionID string `json:"sid,omitempty"`
	Host      string `json:"host"`
}

// Codec creates and validates HS256 sync tokens.
type Codec struct {
	secret []byte
}

// NewCodec creates a codec signing with the given secret.
func NewCodec(secret []byte) *Codec {
	return &Codec{secret: secret}
}

// Make creates a signed token for one receiver action.
// sessionID is empty for logout tokens.
func (c *Codec) Make(mode, sessionID, host string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now.Add(-clockSkew)),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Mode:      mode,
		SessionID: sessionID,
		Host:      host,
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(c.secret)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to sign sync token")
	}

	return signed, nil
}

// Parse validates a token and returns its claims. Signature comparison is
// constant-time inside the HMAC signing method. All failures map to token
// sentinel errors; nothing is raised past the caller.
func (c *Codec) Parse(raw string) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		switch {
		case apperrors.Is(err, jwt.ErrTokenMalformed):
			return nil, apperrors.ErrTokenMalformed
		case apperrors.Is(err, jwt.ErrTokenExpired):
			return nil, apperrors.ErrTokenExpired
		case apperrors.Is(err, jwt.ErrTokenNotValidYet):
			return nil, apperrors.ErrTokenNotYetValid
		default:
			return nil, apperrors.ErrTokenInvalid
		}
	}

	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, apperrors.ErrTokenInvalid
	}

	return claims, nil
}

// Signature returns the signature segment of a compact token. Used as the
// storage key when marking a token consumed.
func Signature(raw string) (string, error) {
	parts := strings.Split(raw, ".")
	if len(parts) != 3 || parts[2] == "" {
		return "", apperrors.ErrTokenMalformed
	}
	return parts[2], nil
}
