package livehttp

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/scoremaster/scoremaster-desktop/internal/scorepad"
)

// TokenStore persists the API token between runs.
type TokenStore interface {
	Ensure() (string, error)
	Rotate() (string, error)
}

// ModuleOptions configures the local API.
type ModuleOptions struct {
	Enabled      bool
	Port         int
	Token        string
	RequireToken bool
}

// APIModule is a Wails-bound service owning the loopback HTTP API.
// Call Startup(ctx) from the OnStartup hook.
type APIModule struct {
	ctx    context.Context
	pad    *scorepad.Pad
	tokens TokenStore
	opts   ModuleOptions
	server *Server
	logger *log.Logger

	mu      sync.RWMutex
	token   string
	running bool
}

// NewAPIModule constructs the module without starting the server. tokens may
// be nil, in which case only an explicit token is used.
func NewAPIModule(pad *scorepad.Pad, tokens TokenStore, opts ModuleOptions) *APIModule {
	if opts.Port <= 0 {
		opts.Port = DefaultPort
	}
	return &APIModule{
		pad:    pad,
		tokens: tokens,
		opts:   opts,
		server: New(pad, opts.Port, ""),
		logger: log.New(os.Stdout, "[API] ", log.LstdFlags),
	}
}

// Startup resolves the token and starts the HTTP server when enabled.
func (m *APIModule) Startup(ctx context.Context) error {
	m.ctx = ctx
	if !m.opts.Enabled {
		m.logger.Printf("local API disabled")
		return nil
	}

	token, err := m.resolveToken()
	if err != nil {
		return err
	}
	m.server.SetToken(token)

	if err := m.server.Start(); err != nil {
		return fmt.Errorf("start local API on %s: %w", m.server.Addr(), err)
	}

	m.mu.Lock()
	m.token = token
	m.running = true
	m.mu.Unlock()
	return nil
}

func (m *APIModule) resolveToken() (string, error) {
	if m.opts.Token != "" {
		return m.opts.Token, nil
	}
	if !m.opts.RequireToken {
		return "", nil
	}
	if m.tokens == nil {
		return "", errors.New("local API requires a token but no token store is configured")
	}
	tok, err := m.tokens.Ensure()
	if err != nil {
		return "", fmt.Errorf("load API token: %w", err)
	}
	return tok, nil
}

// Shutdown stops the HTTP server.
func (m *APIModule) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	m.running = false
	m.mu.Unlock()
	return m.server.Shutdown(ctx)
}

// ------------- Wails binding methods (UI calls) -------------

// APIInfo describes how local tools reach the API.
type APIInfo struct {
	Enabled      bool   `json:"enabled"`
	Running      bool   `json:"running"`
	URL          string `json:"url"`
	TokenHeader  string `json:"tokenHeader"`
	TokenEnabled bool   `json:"tokenEnabled"`
	Token        string `json:"token,omitempty"`
}

// Info returns the base URL and token settings.
func (m *APIModule) Info() APIInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return APIInfo{
		Enabled:      m.opts.Enabled,
		Running:      m.running,
		URL:          fmt.Sprintf("http://%s/api/v1", m.server.Addr()),
		TokenHeader:  TokenHeader,
		TokenEnabled: m.token != "",
		Token:        m.token,
	}
}

// RotateToken issues a new token and applies it immediately. An explicit
// token from the environment cannot be rotated.
func (m *APIModule) RotateToken() (APIInfo, error) {
	if m.opts.Token != "" {
		return APIInfo{}, errors.New("API token is set by SCOREMASTER_API_TOKEN")
	}
	if m.tokens == nil {
		return APIInfo{}, errors.New("no token store configured")
	}
	tok, err := m.tokens.Rotate()
	if err != nil {
		return APIInfo{}, fmt.Errorf("rotate API token: %w", err)
	}
	m.server.SetToken(tok)
	m.mu.Lock()
	m.token = tok
	m.mu.Unlock()
	m.logger.Printf("API token rotated")
	return m.Info(), nil
}
