package identity

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Account is one entry of a credential file.
type Account struct {
	Identity     `yaml:",inline"`
	PasswordHash string `yaml:"password_hash"`
	Disabled     bool   `yaml:"disabled"`
}

type credentialFile struct {
	Accounts []Account `yaml:"accounts"`
}

// StaticProvider verifies credentials against an in-memory account list,
// usually loaded from a YAML credential file:
//
//	accounts:
//	  - email: ops@example.com
//	    name: Ops
//	    admin: true
//	    password_hash: $argon2id$v=19$m=65536,t=3,p=2$...$...
type StaticProvider struct {
	mu       sync.RWMutex
	accounts map[string]Account
}

// NewStaticProvider indexes accounts by lower-cased email.
func NewStaticProvider(accounts []Account) (*StaticProvider, error) {
	p := &StaticProvider{}
	if err := p.Replace(accounts); err != nil {
		return nil, err
	}
	return p, nil
}

// ParseStaticProvider builds a provider from YAML credential data.
func ParseStaticProvider(data []byte) (*StaticProvider, error) {
	var file credentialFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse credential file: %w", err)
	}
	return NewStaticProvider(file.Accounts)
}

// LoadStaticProvider reads a YAML credential file from path.
func LoadStaticProvider(path string) (*StaticProvider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return ParseStaticProvider(data)
}

// Replace swaps the account set atomically, e.g. after the credential file changed.
func (p *StaticProvider) Replace(accounts []Account) error {
	index := make(map[string]Account, len(accounts))
	for i, acc := range accounts {
		email := normalizeEmail(acc.Email)
		if email == "" {
			return fmt.Errorf("account %d: email is required", i)
		}
		if _, dup := index[email]; dup {
			return fmt.Errorf("account %d: duplicate email %q", i, email)
		}
		if _, err := parsePHC(acc.PasswordHash); err != nil {
			return fmt.Errorf("account %q: %w", email, err)
		}
		acc.Email = email
		index[email] = acc
	}

	p.mu.Lock()
	p.accounts = index
	p.mu.Unlock()
	return nil
}

// Len returns the number of accounts.
func (p *StaticProvider) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.accounts)
}

// Verify checks creds against the account list.
func (p *StaticProvider) Verify(ctx context.Context, creds Credentials) (Identity, error) {
	if err := ctx.Err(); err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	p.mu.RLock()
	acc, ok := p.accounts[normalizeEmail(creds.Email)]
	p.mu.RUnlock()
	if !ok || creds.Password == "" {
		return Identity{}, ErrInvalidCredentials
	}

	match, err := VerifyPassword(creds.Password, acc.PasswordHash)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if !match {
		return Identity{}, ErrInvalidCredentials
	}
	if acc.Disabled {
		return Identity{}, ErrInactive
	}

	id := acc.Identity
	id.Groups = append([]string(nil), acc.Groups...)
	return id, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsRejection reports whether err means the user presented bad or disabled
// credentials, as opposed to the provider failing.
func IsRejection(err error) bool {
	return errors.Is(err, ErrInvalidCredentials) || errors.Is(err, ErrInactive)
}
