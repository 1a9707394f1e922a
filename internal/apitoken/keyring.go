// Package apitoken keeps the loopback API token in the OS keychain, with a
// JSON file fallback for machines without a keyring service.
package apitoken

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/zalando/go-keyring"
)

const (
	DefaultService = "scoremaster-desktop"
	account        = "loopback-api"
)

// ErrNotFound is returned when no token has been stored.
var ErrNotFound = keyring.ErrNotFound

// Vault stores a single secret per service name.
type Vault struct {
	service      string
	fallbackPath string
	mu           sync.Mutex
}

// NewVault creates a vault. fallbackPath may be empty to disable the file
// fallback.
func NewVault(service, fallbackPath string) *Vault {
	if strings.TrimSpace(service) == "" {
		service = DefaultService
	}
	return &Vault{service: service, fallbackPath: fallbackPath}
}

// Get returns the stored token.
func (v *Vault) Get() (string, error) {
	val, err := keyring.Get(v.service, account)
	if err == nil {
		return val, nil
	}
	if !isKeyringUnavailable(err) && !errors.Is(err, keyring.ErrNotFound) {
		return "", fmt.Errorf("apitoken: keyring get: %w", err)
	}

	fallback, ferr := v.getFallback()
	if ferr == nil {
		return fallback, nil
	}
	if errors.Is(err, keyring.ErrNotFound) || errors.Is(ferr, ErrNotFound) {
		return "", ErrNotFound
	}
	return "", ferr
}

// Set stores token, replacing any previous one.
func (v *Vault) Set(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("apitoken: token is empty")
	}
	err := keyring.Set(v.service, account, token)
	if err == nil {
		return nil
	}
	if !isKeyringUnavailable(err) {
		return fmt.Errorf("apitoken: keyring set: %w", err)
	}
	return v.setFallback(token)
}

// Ensure returns the stored token, generating and storing a new one when
// none exists.
func (v *Vault) Ensure() (string, error) {
	tok, err := v.Get()
	if err == nil && tok != "" {
		return tok, nil
	}
	if err != nil && !errors.Is(err, ErrNotFound) {
		return "", err
	}
	tok = uuid.NewString()
	if err := v.Set(tok); err != nil {
		return "", err
	}
	return tok, nil
}

// Rotate replaces the stored token with a freshly generated one.
func (v *Vault) Rotate() (string, error) {
	tok := uuid.NewString()
	if err := v.Set(tok); err != nil {
		return "", err
	}
	return tok, nil
}

// Delete removes the token from the keychain and the fallback file.
func (v *Vault) Delete() error {
	err := keyring.Delete(v.service, account)
	ferr := v.deleteFallback()
	if err != nil && !errors.Is(err, keyring.ErrNotFound) && !isKeyringUnavailable(err) {
		return fmt.Errorf("apitoken: keyring delete: %w", err)
	}
	return ferr
}

func isKeyringUnavailable(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "secret service") ||
		strings.Contains(msg, "dbus") ||
		strings.Contains(msg, "no keychain") ||
		strings.Contains(msg, "keyring backend not available")
}

// fallbackFile maps service names to tokens.
type fallbackFile map[string]string

func (v *Vault) getFallback() (string, error) {
	if strings.TrimSpace(v.fallbackPath) == "" {
		return "", fmt.Errorf("apitoken: fallback path not configured")
	}
	v.mu.Lock()
	defer v.mu.Unlock()

	data, err := v.readFallbackUnlocked()
	if err != nil {
		return "", err
	}
	tok, ok := data[v.service]
	if !ok {
		return "", ErrNotFound
	}
	return tok, nil
}

func (v *Vault) setFallback(token string) error {
	if strings.TrimSpace(v.fallbackPath) == "" {
		return fmt.Errorf("apitoken: keyring unavailable and no fallback path configured")
	}
	v.mu.Lock()
	defer v.mu.Unlock()

	data, err := v.readFallbackUnlocked()
	if err != nil {
		return err
	}
	data[v.service] = token
	return v.writeFallbackUnlocked(data)
}

func (v *Vault) deleteFallback() error {
	if strings.TrimSpace(v.fallbackPath) == "" {
		return nil
	}
	v.mu.Lock()
	defer v.mu.Unlock()

	data, err := v.readFallbackUnlocked()
	if err != nil {
		return err
	}
	if _, ok := data[v.service]; !ok {
		return nil
	}
	delete(data, v.service)
	return v.writeFallbackUnlocked(data)
}

func (v *Vault) readFallbackUnlocked() (fallbackFile, error) {
	out := fallbackFile{}
	raw, err := os.ReadFile(v.fallbackPath)
	if err != nil {
		if os.IsNotExist(err) {
			return out, nil
		}
		return nil, fmt.Errorf("apitoken: read fallback: %w", err)
	}
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("apitoken: decode fallback: %w", err)
	}
	return out, nil
}

func (v *Vault) writeFallbackUnlocked(data fallbackFile) error {
	if err := os.MkdirAll(filepath.Dir(v.fallbackPath), 0o700); err != nil {
		return fmt.Errorf("apitoken: mkdir fallback dir: %w", err)
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("apitoken: encode fallback: %w", err)
	}
	if err := os.WriteFile(v.fallbackPath, raw, 0o600); err != nil {
		return fmt.Errorf("apitoken: write fallback: %w", err)
	}
	return nil
}
