// Package file persists finalized credentials to a flat append-only text
// file, one "Email: <e>, Username: <u>, Password: <p>" record per line.
package file

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/accmint-dev/accmint/internal/domain"
	"github.com/accmint-dev/accmint/internal/service"
)

// Ensure Store implements the interface at compile time.
var _ service.CredentialStore = (*Store)(nil)

var (
	emailField    = regexp.MustCompile(`Email: ([^,]+)`)
	usernameField = regexp.MustCompile(`Username: ([^,]+)`)
	passwordField = regexp.MustCompile(`Password: (.+)`)
)

type Store struct {
	path string
	mu   sync.Mutex // appends from concurrently finalizing sessions serialize here
}

func New(path string) (*Store, error) {
	p := filepath.Clean(path)
	if dir := filepath.Dir(p); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create credential store directory %s: %w", dir, err)
		}
	}
	return &Store{path: p}, nil
}

// Append writes one credential record. Each call is a single write so
// records from different sessions never interleave.
func (s *Store) Append(cred domain.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open credential store: %w", err)
	}
	defer f.Close()

	line := fmt.Sprintf("Email: %s, Username: %s, Password: %s\n", cred.Email, cred.Username, cred.Password)
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("failed to append credential: %w", err)
	}
	return nil
}

// All parses every stored record in write order. Blank lines are tolerated
// and lines missing any of the three fields are skipped.
func (s *Store) All() ([]domain.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open credential store: %w", err)
	}
	defer f.Close()

	var creds []domain.Credential
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		email := emailField.FindStringSubmatch(line)
		username := usernameField.FindStringSubmatch(line)
		password := passwordField.FindStringSubmatch(line)
		if email == nil || username == nil || password == nil {
			continue
		}
		creds = append(creds, domain.Credential{
			Email:    strings.TrimSpace(email[1]),
			Username: strings.TrimSpace(username[1]),
			Password: strings.TrimSpace(password[1]),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read credential store: %w", err)
	}
	return creds, nil
}
