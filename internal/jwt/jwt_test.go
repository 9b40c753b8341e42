package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := New("test-secret", time.Minute)

	token, err := svc.NewToken("bot-1")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	uid, err := svc.DecodeToken(token)
	require.NoError(t, err)
	assert.Equal(t, "bot-1", uid)
}

func TestDecodeRejectsWrongKey(t *testing.T) {
	token, err := New("secret-a", time.Minute).NewToken("bot-1")
	require.NoError(t, err)

	_, err = New("secret-b", time.Minute).DecodeToken(token)
	assert.Error(t, err)
}

func TestDecodeRejectsExpiredToken(t *testing.T) {
	token, err := New("test-secret", -time.Minute).NewToken("bot-1")
	require.NoError(t, err)

	_, err = New("test-secret", -time.Minute).DecodeToken(token)
	assert.Error(t, err)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := New("test-secret", time.Minute).DecodeToken("not.a.token")
	assert.Error(t, err)
}
