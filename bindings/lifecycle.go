// Package bindings holds the objects bound to the Wails frontend.
package bindings

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/scoremaster/scoremaster-desktop/internal/config"
	"github.com/scoremaster/scoremaster-desktop/internal/model"
	"github.com/scoremaster/scoremaster-desktop/internal/persistence"
	"github.com/scoremaster/scoremaster-desktop/internal/scorepad"
	"github.com/scoremaster/scoremaster-desktop/internal/session"
	"github.com/scoremaster/scoremaster-desktop/internal/store"
)

// StateEvent is emitted to the frontend after every accepted change.
const StateEvent = "scoremaster:state"

type emitFunc func(ctx context.Context, name string, data ...interface{})

type App struct {
	ctx    context.Context
	cfg    config.Config
	pad    *scorepad.Pad
	db     *store.SQLite
	gw     *persistence.Gateway
	saver  *persistence.Saver
	emit   emitFunc
	now    func() time.Time
	logger *log.Logger

	once sync.Once
}

// New creates the app around a fresh engine. Persisted state is loaded in
// Startup.
func New(cfg config.Config) *App {
	return &App{
		cfg:    cfg,
		pad:    scorepad.New(session.NewEngine()),
		emit:   runtime.EventsEmit,
		now:    time.Now,
		logger: log.New(os.Stdout, "[APP] ", log.LstdFlags),
	}
}

// Pad exposes the score pad for the other bound modules.
func (a *App) Pad() *scorepad.Pad { return a.pad }

// Startup opens the database, restores the last snapshot and starts saving
// every accepted change in the background.
func (a *App) Startup(ctx context.Context) error {
	a.ctx = ctx

	if err := os.MkdirAll(a.cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	db, err := store.OpenSQLite(ctx, a.cfg.DBPath())
	if err != nil {
		return err
	}
	a.db = db
	a.gw = persistence.NewGateway(db, a.cfg.StateKey, nil)

	if s, ok := a.gw.Load(ctx); ok {
		a.pad.Load(s)
		a.logger.Printf("restored %d active and %d finished games", len(s.ActiveGames), len(s.FinishedGames))
	}

	a.saver = persistence.NewSaver(a.gw, persistence.DefaultSaverOptions)
	a.once.Do(func() {
		a.pad.Engine().Subscribe(func(s model.GameState, _ session.Intent) {
			a.saver.Enqueue(s)
			if a.emit != nil && a.ctx != nil {
				a.emit(a.ctx, StateEvent, s)
			}
		})
	})
	return nil
}

// Shutdown writes the pending snapshot and closes the database.
func (a *App) Shutdown(ctx context.Context) error {
	if a.saver != nil {
		a.saver.Close()
	}
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// StorageInfo describes where and when the state was last saved.
type StorageInfo struct {
	DBPath        string `json:"dbPath"`
	SchemaVersion int64  `json:"schemaVersion"`
	LastSaved     int64  `json:"lastSaved,omitempty"`
	LastSavedAgo  string `json:"lastSavedAgo,omitempty"`
	SaveFailures  uint64 `json:"saveFailures"`
}

// GetStorageInfo reports the database location and the last save time.
func (a *App) GetStorageInfo() (StorageInfo, error) {
	if a.db == nil {
		return StorageInfo{}, errors.New("storage not open")
	}
	info := StorageInfo{DBPath: a.cfg.DBPath(), SaveFailures: a.saver.Failures()}

	v, err := a.db.Version(a.ctx)
	if err != nil {
		return StorageInfo{}, err
	}
	info.SchemaVersion = v

	at, err := a.db.UpdatedAt(a.ctx, a.gw.Key())
	switch {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		return StorageInfo{}, err
	default:
		info.LastSaved = at.UnixMilli()
		info.LastSavedAgo = humanize.RelTime(at, a.now(), "ago", "from now")
	}
	return info, nil
}

// ResetAll discards every game and removes the stored snapshot.
func (a *App) ResetAll() (model.GameState, error) {
	s := a.pad.Load(model.Empty())
	if a.saver == nil {
		return s, nil
	}
	a.saver.Flush()
	if err := a.gw.Reset(a.ctx); err != nil {
		return s, err
	}
	return s, nil
}
