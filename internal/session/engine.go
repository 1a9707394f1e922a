package session

import (
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/scoremaster/scoremaster-desktop/internal/model"
	"github.com/scoremaster/scoremaster-desktop/internal/scoring"
)

// Observer is notified with the new snapshot after every accepted intent.
// Observers run while the engine is locked and must neither block nor
// dispatch.
type Observer func(state model.GameState, in Intent)

// Engine owns the single GameState of a process and serialises intents.
type Engine struct {
	mu        sync.Mutex
	reducer   Reducer
	state     model.GameState
	observers []Observer
	logger    *log.Logger
}

// Option customises an Engine.
type Option func(*Engine)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.reducer.Now = now }
}

// WithIDs overrides the game id generator.
func WithIDs(next func() string) Option {
	return func(e *Engine) { e.reducer.NewID = next }
}

// WithLogger sets the engine logger. A nil logger discards output.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l == nil {
			l = log.New(io.Discard, "", 0)
		}
		e.logger = l
	}
}

// NewEngine creates an engine holding the empty default state.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		reducer: NewReducer(),
		state:   model.Empty(),
		logger:  log.New(os.Stdout, "[ENGINE] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Subscribe registers an observer.
func (e *Engine) Subscribe(o Observer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observers = append(e.observers, o)
}

// Dispatch applies an intent and returns a copy of the resulting state.
func (e *Engine) Dispatch(in Intent) model.GameState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.apply(in)
}

// Update builds an intent from the current state and applies it without
// releasing the lock in between, so validation and application see the same
// state. build must not modify the state it is given. When build fails
// nothing is applied and its error is returned.
func (e *Engine) Update(build func(model.GameState) (Intent, error)) (model.GameState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	in, err := build(e.state)
	if err != nil {
		return model.GameState{}, err
	}
	return e.apply(in), nil
}

func (e *Engine) apply(in Intent) model.GameState {
	next, accepted := e.reducer.reduce(e.state, in)
	if !accepted {
		e.logger.Printf("intent %s ignored", in.Name())
		return e.state.Clone()
	}
	e.state = next
	for _, o := range e.observers {
		o(next, in)
	}
	return next.Clone()
}

// Snapshot returns a copy of the current state.
func (e *Engine) Snapshot() model.GameState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

// Game returns a copy of an active or finished game.
func (e *Engine) Game(id string) (model.Game, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if g, ok := e.state.ActiveGames[id]; ok {
		return g.Clone(), true
	}
	if idx := e.state.FindFinished(id); idx >= 0 {
		return e.state.FinishedGames[idx].Clone(), true
	}
	return model.Game{}, false
}

// Winner evaluates the win test of an active game against the current state.
func (e *Engine) Winner(gameID string) (model.Player, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	g, ok := e.state.ActiveGames[gameID]
	if !ok {
		return model.Player{}, false
	}
	w, ok := scoring.Winner(g)
	return w.Clone(), ok
}
