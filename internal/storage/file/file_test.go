package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/accmint-dev/accmint/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "accounts.txt"))
	require.NoError(t, err)
	return s
}

func TestAppendAllRoundTrip(t *testing.T) {
	s := newTestStore(t)

	want := []domain.Credential{
		{Email: "a@gmail.com", Username: "userone1", Password: "Pass1!word#1"},
		{Email: "b.c@gmail.com", Username: "usertwo2", Password: "Pass2!word#2"},
		{Email: "d+tag@gmail.com", Username: "userthree3", Password: "Pass3!word#3"},
	}
	for _, c := range want {
		require.NoError(t, s.Append(c))
	}

	got, err := s.All()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestAllMissingFileIsEmpty(t *testing.T) {
	s := newTestStore(t)

	got, err := s.All()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAllTolerantParsing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "accounts.txt")
	raw := "Email: good@gmail.com, Username: gooduser, Password: secret1!\n" +
		"\n" +
		"   \n" +
		"Email: nopassword@gmail.com, Username: someuser\n" +
		"garbage line without any fields\n" +
		"Email: also.good@gmail.com, Username: otheruser, Password: secret2!\n"
	require.NoError(t, os.WriteFile(path, []byte(raw), 0600))

	s, err := New(path)
	require.NoError(t, err)

	got, err := s.All()
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "good@gmail.com", got[0].Email)
	assert.Equal(t, "also.good@gmail.com", got[1].Email)
}

func TestConcurrentAppends(t *testing.T) {
	s := newTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			err := s.Append(domain.Credential{
				Email:    "user@gmail.com",
				Username: "username",
				Password: "password!",
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, err := s.All()
	require.NoError(t, err)
	assert.Len(t, got, 20)
}
