package locker_test

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/locker"
)

func newCodec(t *testing.T, secret string) *locker.TokenCodec {
	t.Helper()
	codec, err := locker.NewTokenCodec([]byte(secret))
	require.NoError(t, err)
	return codec
}

func TestNewTokenCodec_EmptySecret(t *testing.T) {
	_, err := locker.NewTokenCodec(nil)
	assert.ErrorIs(t, err, locker.ErrInvalidInput)
}

func TestTokenCodec_IssueAndVerify(t *testing.T) {
	codec := newCodec(t, "super-secret")

	token, err := codec.Issue("alice")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(token, "."))

	username, ok := codec.Verify(token)
	assert.True(t, ok)
	assert.Equal(t, "alice", username)
}

func TestTokenCodec_IssueEmptyUsername(t *testing.T) {
	codec := newCodec(t, "super-secret")

	_, err := codec.Issue("")
	assert.ErrorIs(t, err, locker.ErrInvalidInput)
}

func TestTokenCodec_Verify_WrongSecret(t *testing.T) {
	token, err := newCodec(t, "right-secret").Issue("alice")
	require.NoError(t, err)

	username, ok := newCodec(t, "wrong-secret").Verify(token)
	assert.False(t, ok)
	assert.Empty(t, username)
}

func TestTokenCodec_Verify_Malformed(t *testing.T) {
	codec := newCodec(t, "k")

	for _, token := range []string{"", "not.a.jwt", "abc", "a.b", "....", "Bearer x.y.z"} {
		t.Run(token, func(t *testing.T) {
			username, ok := codec.Verify(token)
			assert.False(t, ok)
			assert.Empty(t, username)
		})
	}
}

func TestTokenCodec_Verify_SingleByteTamper(t *testing.T) {
	codec := newCodec(t, "super-secret")

	token, err := codec.Issue("alice")
	require.NoError(t, err)

	for i := 0; i < len(token); i++ {
		tampered := []byte(token)
		tampered[i] ^= 0x01

		_, ok := codec.Verify(string(tampered))
		assert.False(t, ok, "tampered byte %d (%q) must not verify", i, token[i])
	}
}

func TestTokenCodec_Verify_RejectsOtherAlgorithms(t *testing.T) {
	codec := newCodec(t, "super-secret")

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"username": "alice",
		"iat":      time.Now().Unix(),
	})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, ok := codec.Verify(token)
	assert.False(t, ok)

	hs512 := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{"username": "alice"})
	token, err = hs512.SignedString([]byte("super-secret"))
	require.NoError(t, err)

	_, ok = codec.Verify(token)
	assert.False(t, ok)
}

func TestTokenCodec_Verify_MissingUsername(t *testing.T) {
	codec := newCodec(t, "super-secret")

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iat": time.Now().Unix(),
	}).SignedString([]byte("super-secret"))
	require.NoError(t, err)

	_, ok := codec.Verify(token)
	assert.False(t, ok)
}
