// Package generator produces the random identities a registration attempt
// needs: device ids, usernames, passwords and email variants. Everything is
// drawn from crypto/rand; password randomness is independent of username and
// email.
package generator

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	lowercase = "abcdefghijklmnopqrstuvwxyz"
	uppercase = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits    = "0123456789"
	symbols   = "!@#$%^&*"
	hexDigits = "0123456789abcdef"

	passwordLen = 12
	deviceIDLen = 32
)

// UsernameLen is the default account-name length.
const UsernameLen = 10

func randInt(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic(fmt.Sprintf("failed to read random source: %v", err))
	}
	return int(v.Int64())
}

func randString(length int, charset string) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[randInt(len(charset))]
	}
	return string(b)
}

// DeviceID returns a fresh 32-character lowercase hex device identifier.
// Uniqueness is not enforced; a collision is tolerated by the upstream
// service as a no-op risk.
func DeviceID() string {
	return randString(deviceIDLen, hexDigits)
}

// Username returns a random account name of the given length, starting with
// a letter. Zero or negative lengths fall back to the default.
func Username(length int) string {
	if length <= 0 {
		length = UsernameLen
	}
	return randString(1, lowercase) + randString(length-1, lowercase+digits)
}

// UsernameRetry returns a fresh username with a random 0-999 numeral
// suffix, used for the single retry after an availability rejection.
func UsernameRetry(length int) string {
	return fmt.Sprintf("%s%d", Username(length), randInt(1000))
}

// Password returns a 12-character password guaranteed to contain at least
// one lowercase letter, one uppercase letter, one digit and one symbol. The
// remaining characters are uniform over the full alphabet and the final
// sequence is randomly permuted.
func Password() string {
	all := lowercase + uppercase + digits + symbols

	chars := []byte{
		lowercase[randInt(len(lowercase))],
		uppercase[randInt(len(uppercase))],
		digits[randInt(len(digits))],
		symbols[randInt(len(symbols))],
	}
	for i := len(chars); i < passwordLen; i++ {
		chars = append(chars, all[randInt(len(all))])
	}

	// Fisher-Yates
	for i := len(chars) - 1; i > 0; i-- {
		j := randInt(i + 1)
		chars[i], chars[j] = chars[j], chars[i]
	}
	return string(chars)
}
