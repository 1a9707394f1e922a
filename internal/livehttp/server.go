// Package livehttp exposes the score pad over a loopback-only HTTP API so
// that local tools (stream overlays, scripts) can read and drive games.
package livehttp

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/scoremaster/scoremaster-desktop/internal/history"
	"github.com/scoremaster/scoremaster-desktop/internal/model"
	"github.com/scoremaster/scoremaster-desktop/internal/scorepad"
	"github.com/scoremaster/scoremaster-desktop/internal/scoring"
)

const (
	DefaultPort = 17890
	TokenHeader = "X-Scoremaster-Token"
)

// Server runs the local HTTP API.
type Server struct {
	pad        *scorepad.Pad
	addr       string
	httpServer *http.Server
	logger     *log.Logger
	now        func() time.Time

	mu    sync.RWMutex
	token string

	readTimeout  time.Duration
	writeTimeout time.Duration
}

// New creates a server bound to loopback at port. token may be empty to
// disable token checks.
func New(pad *scorepad.Pad, port int, token string) *Server {
	if port <= 0 {
		port = DefaultPort
	}
	return &Server{
		pad:          pad,
		addr:         fmt.Sprintf("127.0.0.1:%d", port),
		token:        token,
		logger:       log.New(os.Stdout, "[API] ", log.LstdFlags),
		now:          time.Now,
		readTimeout:  10 * time.Second,
		writeTimeout: 10 * time.Second,
	}
}

// Addr is the loopback address the server listens on.
func (s *Server) Addr() string { return s.addr }

// SetToken replaces the expected token. An empty token disables the check.
func (s *Server) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

func (s *Server) currentToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequest)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Group(func(r chi.Router) {
			r.Use(s.requireToken)

			r.Get("/variants", s.handleVariants)
			r.Get("/state", s.handleState)

			r.Get("/games", s.handleListGames)
			r.Post("/games", s.handleCreateGame)
			r.Route("/games/{gameID}", func(r chi.Router) {
				r.Get("/", s.handleGetGame)
				r.Delete("/", s.handleAbandon)
				r.Post("/current", s.handleOpen)
				r.Post("/step", s.handleStep)
				r.Post("/score", s.handleAdjust)
				r.Post("/category", s.handleCategory)
				r.Post("/rounds", s.handleAddRound)
				r.Delete("/rounds/{index}", s.handleUndoRound)
				r.Post("/finish", s.handleFinish)
			})

			r.Get("/history", s.handleHistory)
			r.Delete("/history", s.handleClearHistory)
			r.Get("/history/stats", s.handleStats)
			r.Get("/history/export.csv", s.handleExport)
			r.Delete("/history/{gameID}", s.handleDeleteHistory)
		})
	})
	return r
}

// Start begins listening in a goroutine. It returns once the socket is bound.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         s.addr,
		Handler:      s.Routes(),
		ReadTimeout:  s.readTimeout,
		WriteTimeout: s.writeTimeout,
	}
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Printf("serve: %v", err)
		}
	}()
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// ========== Middleware ==========

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if tok := s.currentToken(); tok != "" {
			got := r.Header.Get(TokenHeader)
			if subtle.ConstantTimeCompare([]byte(got), []byte(tok)) != 1 {
				writeError(w, r, http.StatusUnauthorized, ErrTypeUnauthorized, "missing or invalid "+TokenHeader)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Printf("%s %s %d %dms", r.Method, r.URL.Path, ww.Status(), time.Since(start).Milliseconds())
	})
}

// respondGame writes the view of gameID from state, or the whole state when
// the game is no longer active.
func (s *Server) respondGame(w http.ResponseWriter, st model.GameState, gameID string) {
	if g, ok := st.ActiveGames[gameID]; ok {
		writeJSON(w, http.StatusOK, scorepad.NewView(g))
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// ========== Handlers ==========

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) handleVariants(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"variants": scoring.List()})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.pad.State())
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	games := s.pad.ActiveGames()
	views := make([]scorepad.GameView, 0, len(games))
	for _, g := range games {
		views = append(views, scorepad.NewView(g))
	}
	writeJSON(w, http.StatusOK, map[string]any{"games": views, "count": len(views)})
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Variant     model.Variant `json:"variant"`
		PlayerNames []string      `json:"playerNames"`
		Players     int           `json:"players"`
	}
	if !decode(w, r, &body) {
		return
	}
	names := body.PlayerNames
	if len(names) == 0 && body.Players > 0 {
		names = make([]string, body.Players)
	}
	g, err := s.pad.NewGame(body.Variant, names)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, scorepad.NewView(g))
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	v, err := s.pad.View(chi.URLParam(r, "gameID"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleAbandon(w http.ResponseWriter, r *http.Request) {
	if _, err := s.pad.Abandon(chi.URLParam(r, "gameID")); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleOpen(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "gameID")
	st, err := s.pad.Open(id)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.respondGame(w, st, id)
}

func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	var body scoring.StepInput
	if !decode(w, r, &body) {
		return
	}
	id := chi.URLParam(r, "gameID")
	st, err := s.pad.Step(id, body.PlayerID, body.Up)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.respondGame(w, st, id)
}

func (s *Server) handleAdjust(w http.ResponseWriter, r *http.Request) {
	var body struct {
		PlayerID string `json:"playerId"`
		Amount   int    `json:"amount"`
	}
	if !decode(w, r, &body) {
		return
	}
	id := chi.URLParam(r, "gameID")
	st, err := s.pad.AdjustScore(id, body.PlayerID, body.Amount)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.respondGame(w, st, id)
}

func (s *Server) handleCategory(w http.ResponseWriter, r *http.Request) {
	var body scoring.CategoryInput
	if !decode(w, r, &body) {
		return
	}
	id := chi.URLParam(r, "gameID")
	st, err := s.pad.FillCategory(id, body)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.respondGame(w, st, id)
}

// roundRequest carries the raw input of a round; the member matching the
// game's variant is used.
type roundRequest struct {
	Points    map[string]int                 `json:"points,omitempty"`
	Bonus     map[string]model.BonusHand     `json:"bonus,omitempty"`
	Countdown map[string]model.CountdownHand `json:"countdown,omitempty"`
}

func (s *Server) handleAddRound(w http.ResponseWriter, r *http.Request) {
	var body roundRequest
	if !decode(w, r, &body) {
		return
	}
	id := chi.URLParam(r, "gameID")
	g, ok := s.pad.Engine().Game(id)
	if !ok || !g.Active() {
		s.writeDomainError(w, r, scorepad.ErrGameNotFound)
		return
	}

	var (
		st  model.GameState
		err error
	)
	switch g.Type {
	case model.Canasta:
		st, err = s.pad.AddFreeFormRound(id, body.Points)
	case model.Escoba:
		st, err = s.pad.AddBonusRound(id, body.Bonus)
	case model.Mosca:
		st, err = s.pad.AddCountdownRound(id, body.Countdown)
	default:
		err = scoring.ErrInputMismatch
	}
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.respondGame(w, st, id)
}

func (s *Server) handleUndoRound(w http.ResponseWriter, r *http.Request) {
	idx, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, ErrTypeValidation, "round index must be an integer")
		return
	}
	id := chi.URLParam(r, "gameID")
	st, err := s.pad.UndoRound(id, idx)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.respondGame(w, st, id)
}

func (s *Server) handleFinish(w http.ResponseWriter, r *http.Request) {
	var body struct {
		WinnerID string `json:"winnerId"`
	}
	if r.ContentLength != 0 && !decode(w, r, &body) {
		return
	}
	id := chi.URLParam(r, "gameID")
	st, err := s.pad.Finish(id, body.WinnerID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	idx := st.FindFinished(id)
	if idx < 0 {
		writeJSON(w, http.StatusOK, st)
		return
	}
	writeJSON(w, http.StatusOK, history.Summarize(st.FinishedGames[idx], s.now()))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	v := model.Variant(r.URL.Query().Get("variant"))
	if v != "" && !v.Valid() {
		writeError(w, r, http.StatusUnprocessableEntity, ErrTypeValidation, "unknown variant")
		return
	}
	limit := clampInt(qInt(r, "limit", model.HistoryLimit), 1, model.HistoryLimit)
	items := history.List(s.pad.State().FinishedGames, v, s.now())
	if len(items) > limit {
		items = items[:limit]
	}
	writeJSON(w, http.StatusOK, map[string]any{"games": items, "count": len(items)})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, history.Compute(s.pad.State().FinishedGames))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="scoremaster_history.csv"`)
	if err := history.WriteCSV(w, s.pad.State().FinishedGames); err != nil {
		s.logger.Printf("export failed: %v", err)
	}
}

func (s *Server) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	if _, err := s.pad.DeleteHistoryEntry(chi.URLParam(r, "gameID")); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	s.pad.ClearHistory()
	w.WriteHeader(http.StatusNoContent)
}

// ========== Helpers ==========

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, r, http.StatusBadRequest, ErrTypeInvalidJSON, "invalid JSON body")
		return false
	}
	return true
}

func qInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
