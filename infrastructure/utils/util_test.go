package utils_test

import (
	"testing"
	"time"

	"social-connect/infrastructure/utils"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseToken(t *testing.T) {
	token, err := utils.GenerateToken(map[string]interface{}{"user_id": "42"}, "secret")
	require.NoError(t, err)

	uid, err := utils.ParseUserID(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "42", uid)
}

func TestParseUserID_NumericSubject(t *testing.T) {
	token, err := utils.GenerateToken(map[string]interface{}{"sub": 1234567}, "secret")
	require.NoError(t, err)

	uid, err := utils.ParseUserID(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "1234567", uid)
}

func TestParseUserID_Rejects(t *testing.T) {
	wrongKey, _ := utils.GenerateToken(map[string]interface{}{"user_id": "42"}, "other")
	expired, _ := utils.GenerateToken(map[string]interface{}{"user_id": "42", "exp": time.Now().Add(-time.Hour).Unix()}, "secret")
	noUser, _ := utils.GenerateToken(map[string]interface{}{"role": "seller"}, "secret")
	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"user_id": "42"}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	for name, tok := range map[string]string{
		"wrong key": wrongKey,
		"expired":   expired,
		"no user":   noUser,
		"alg none":  none,
		"garbage":   "not-a-token",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := utils.ParseUserID(tok, "secret")
			assert.Error(t, err)
		})
	}
}

func TestGetCurrentTime(t *testing.T) {
	assert.Equal(t, time.UTC, utils.GetCurrentTime().Location())
}
