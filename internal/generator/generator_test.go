package generator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeviceID(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id := DeviceID()
		require.Len(t, id, 32)
		for _, r := range id {
			assert.Contains(t, hexDigits, string(r))
		}
		seen[id] = struct{}{}
	}
	// 100 draws from a 16^32 space should never collide
	assert.Len(t, seen, 100)
}

func TestUsername(t *testing.T) {
	for i := 0; i < 1000; i++ {
		u := Username(UsernameLen)
		require.Len(t, u, UsernameLen)
		assert.Contains(t, lowercase, string(u[0]), "first char must be a letter")
		for _, r := range u[1:] {
			assert.Contains(t, lowercase+digits, string(r))
		}
	}
}

func TestUsernameDefaultsLength(t *testing.T) {
	assert.Len(t, Username(0), UsernameLen)
	assert.Len(t, Username(-3), UsernameLen)
	assert.Len(t, Username(15), 15)
}

func TestUsernameRetrySuffix(t *testing.T) {
	for i := 0; i < 100; i++ {
		u := UsernameRetry(UsernameLen)
		require.Greater(t, len(u), UsernameLen)
		suffix := u[UsernameLen:]
		assert.LessOrEqual(t, len(suffix), 3)
		for _, r := range suffix {
			assert.Contains(t, digits, string(r))
		}
	}
}

func TestPasswordProperties(t *testing.T) {
	for i := 0; i < 10_000; i++ {
		p := Password()
		require.Len(t, p, 12)
		assert.True(t, strings.ContainsAny(p, lowercase), "missing lowercase: %s", p)
		assert.True(t, strings.ContainsAny(p, uppercase), "missing uppercase: %s", p)
		assert.True(t, strings.ContainsAny(p, digits), "missing digit: %s", p)
		assert.True(t, strings.ContainsAny(p, symbols), "missing symbol: %s", p)
	}
}

func TestPasswordIsShuffled(t *testing.T) {
	// the mandatory classes must not always occupy the first four slots;
	// check that at least one of many draws starts with a non-lowercase rune
	var shuffled bool
	for i := 0; i < 200; i++ {
		if !strings.Contains(lowercase, string(Password()[0])) {
			shuffled = true
			break
		}
	}
	assert.True(t, shuffled, "password class positions appear fixed")
}
