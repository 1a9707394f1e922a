// Package persistence saves and restores the whole game state as a single
// JSON snapshot in the key-value store.
package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/scoremaster/scoremaster-desktop/internal/model"
	"github.com/scoremaster/scoremaster-desktop/internal/store"
)

// StateKey is the storage key of the snapshot.
const StateKey = "scoremaster_pro_state_v2"

// Gateway reads and writes snapshots under a fixed key.
type Gateway struct {
	kv     store.KV
	key    string
	logger *log.Logger
}

// NewGateway returns a gateway over kv. An empty key selects StateKey and a
// nil logger writes to stdout.
func NewGateway(kv store.KV, key string, logger *log.Logger) *Gateway {
	if key == "" {
		key = StateKey
	}
	if logger == nil {
		logger = log.New(os.Stdout, "[STORE] ", log.LstdFlags)
	}
	return &Gateway{kv: kv, key: key, logger: logger}
}

// Key returns the storage key in use.
func (g *Gateway) Key() string { return g.key }

// Load returns the stored snapshot. It reports false when nothing is stored
// or the stored value cannot be decoded; the caller then starts from the
// empty state.
func (g *Gateway) Load(ctx context.Context) (model.GameState, bool) {
	raw, err := g.kv.Get(ctx, g.key)
	if errors.Is(err, store.ErrNotFound) {
		return model.GameState{}, false
	}
	if err != nil {
		g.logger.Printf("failed to read snapshot: %v", err)
		return model.GameState{}, false
	}
	var s model.GameState
	if err := json.Unmarshal(raw, &s); err != nil {
		g.logger.Printf("discarding malformed snapshot (%d bytes): %v", len(raw), err)
		return model.GameState{}, false
	}
	return s.Normalize(), true
}

// Save serialises s and writes it under the gateway key.
func (g *Gateway) Save(ctx context.Context, s model.GameState) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return g.kv.Put(ctx, g.key, raw)
}

// Reset deletes the stored snapshot.
func (g *Gateway) Reset(ctx context.Context) error {
	return g.kv.Delete(ctx, g.key)
}
