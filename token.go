package locker

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenClaims is the payload of an identity token.
type tokenClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenCodec issues and verifies stateless identity tokens signed with a
// single process-wide secret. There is no expiry and no key rotation: a token
// stays valid for as long as the secret is unchanged.
type TokenCodec struct {
	secret []byte
	now    func() time.Time
}

// NewTokenCodec creates a codec for secret. The secret must not be empty.
func NewTokenCodec(secret []byte) (*TokenCodec, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("new token codec: %w: secret cannot be empty", ErrInvalidInput)
	}
	s := make([]byte, len(secret))
	copy(s, secret)
	return &TokenCodec{secret: s, now: time.Now}, nil
}

// Issue returns an HS256 token binding username and the issue time.
func (c *TokenCodec) Issue(username string) (string, error) {
	if username == "" {
		return "", fmt.Errorf("issue token: %w: username cannot be empty", ErrInvalidInput)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(c.now()),
		},
	})

	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature of token and returns the embedded username.
// Any failure yields ("", false); callers respond uniformly regardless of cause.
func (c *TokenCodec) Verify(token string) (string, bool) {
	if token == "" {
		return "", false
	}

	claims := &tokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithStrictDecoding(),
	)
	if err != nil {
		return "", false
	}

	if !parsed.Valid || claims.Username == "" {
		return "", false
	}

	return claims.Username, true
}
