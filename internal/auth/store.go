package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/desertthunder/spotimine/internal/shared"
)

// Store is the alias -> [Account] credential document.
type Store struct {
	path     string
	Accounts map[string]*Account `json:"accounts"`
}

// LoadStore reads the credential file at path, creating an empty one when it does not exist.
func LoadStore(path string) (*Store, error) {
	s := &Store{path: path, Accounts: map[string]*Account{}}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("%w: create %s: %v", shared.ErrConfigIO, filepath.Dir(path), err)
		}
		return s, s.Save()
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", shared.ErrConfigIO, path, err)
	}

	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("%w: %s is corrupt: %v", shared.ErrConfigIO, path, err)
	}
	if s.Accounts == nil {
		s.Accounts = map[string]*Account{}
	}
	return s, nil
}

// Path is the credential file location.
func (s *Store) Path() string {
	return s.path
}

// Save writes the whole document atomically with owner-only permissions.
func (s *Store) Save() error {
	data, err := shared.MarshalJSON(s, true)
	if err != nil {
		return fmt.Errorf("%w: encode credentials: %v", shared.ErrConfigIO, err)
	}
	return shared.WriteFileAtomic(s.path, data, 0o600)
}

// Get returns the account stored under alias.
func (s *Store) Get(alias string) (*Account, error) {
	acc, ok := s.Accounts[alias]
	if !ok {
		return nil, fmt.Errorf("%w: %q", shared.ErrUnknownAlias, alias)
	}
	return acc, nil
}

// Add stores acc under a new alias and saves.
func (s *Store) Add(alias string, acc *Account) error {
	if alias == "" {
		return fmt.Errorf("%w: alias must not be empty", shared.ErrInvalidInput)
	}
	if _, ok := s.Accounts[alias]; ok {
		return fmt.Errorf("%w: %q", shared.ErrAliasExists, alias)
	}
	s.Accounts[alias] = acc
	return s.Save()
}

// Remove deletes alias and saves.
func (s *Store) Remove(alias string) error {
	if _, ok := s.Accounts[alias]; !ok {
		return fmt.Errorf("%w: %q", shared.ErrUnknownAlias, alias)
	}
	delete(s.Accounts, alias)
	return s.Save()
}

// Clear removes every account and saves.
func (s *Store) Clear() error {
	s.Accounts = map[string]*Account{}
	return s.Save()
}

// Aliases returns the stored aliases in sorted order.
func (s *Store) Aliases() []string {
	aliases := make([]string, 0, len(s.Accounts))
	for alias := range s.Accounts {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)
	return aliases
}

// Len is the number of stored accounts.
func (s *Store) Len() int {
	return len(s.Accounts)
}
