// Package stubserver is an in-memory stand-in for the Pokerio game server. It
// speaks the same GET endpoints so the harness can be exercised offline.
package stubserver

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
)

const (
	defaultSmallBlind    = 10
	defaultStartingFunds = 1000
)

// Request is a recorded inbound request.
type Request struct {
	Path  string
	Query string
}

type game struct {
	id            string
	creator       string
	smallBlind    int
	startingFunds int
	started       bool
	players       []string
	nicknames     map[string]string
}

func (g *game) seated(token string) bool {
	_, ok := g.nicknames[token]
	return ok
}

type playerResponse struct {
	Nickname   string `json:"nickname"`
	PlayerHash string `json:"playerHash"`
	Turn       int    `json:"turn"`
}

type joinResponse struct {
	GameMasterHash string           `json:"gameMasterHash"`
	StartingFunds  int              `json:"startingFunds"`
	SmallBlind     int              `json:"smallBlind"`
	Players        []playerResponse `json:"players"`
}

type createResponse struct {
	GameID        int `json:"gameId"`
	StartingFunds int `json:"startingFunds"`
	SmallBlind    int `json:"smallBlind"`
}

// Server holds games in memory and records every request it serves
type Server struct {
	Router *mux.Router
	logger *log.Logger

	mu       sync.Mutex
	games    map[string]*game
	seats    map[string]string // player token -> game id
	nextID   int
	requests []Request
	statuses map[string]int
}

// New creates a stub server with its routes registered
func New(logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Server{
		Router:   mux.NewRouter(),
		logger:   logger.WithPrefix("stub"),
		games:    make(map[string]*game),
		seats:    make(map[string]string),
		nextID:   100000,
		statuses: make(map[string]int),
	}
	s.Router.Use(s.record)

	s.handle("/createGame", s.CreateGame)
	s.handle("/joinGame", s.JoinGame)
	s.handle("/startGame", s.StartGame)
	s.handle("/leaveGame", s.LeaveGame)
	s.handle("/kickPlayer", s.KickPlayer)
	s.handle("/action{action:Fold|Check|Call|Raise}", s.Action)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

// handle registers path with and without a trailing slash; the harness uses both forms.
func (s *Server) handle(path string, h http.HandlerFunc) {
	s.Router.HandleFunc(path, h).Methods(http.MethodGet)
	s.Router.HandleFunc(path+"/", h).Methods(http.MethodGet)
}

// ForceStatus makes every request to path answer with status. Used to script failures.
func (s *Server) ForceStatus(path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[path] = status
}

// Requests returns a copy of the requests served so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Players returns the tokens seated in gameID, in join order.
func (s *Server) Players(gameID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[gameID]
	if !ok {
		return nil
	}
	return append([]string(nil), g.players...)
}

// Started reports whether gameID has been started.
func (s *Server) Started(gameID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[gameID]
	return ok && g.started
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, Request{Path: r.URL.Path, Query: r.URL.RawQuery})
		status, forced := s.statuses[r.URL.Path]
		s.mu.Unlock()

		s.logger.Info("Request", "path", r.URL.Path, "query", r.URL.RawQuery)
		if forced {
			w.WriteHeader(status)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CreateGame opens a new game owned by creatorToken and answers with its numeric id
func (s *Server) CreateGame(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	creator, nickname := q.Get("creatorToken"), q.Get("nickname")
	if creator == "" || nickname == "" {
		http.Error(w, "creatorToken and nickname are required", http.StatusBadRequest)
		return
	}
	smallBlind, ok := optionalInt(q.Get("smallBlind"), defaultSmallBlind)
	if !ok {
		http.Error(w, "invalid smallBlind", http.StatusBadRequest)
		return
	}
	startingFunds, ok := optionalInt(q.Get("startingFunds"), defaultStartingFunds)
	if !ok {
		http.Error(w, "invalid startingFunds", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	if _, taken := s.seats[creator]; taken {
		s.mu.Unlock()
		http.Error(w, "player already in a game", http.StatusConflict)
		return
	}
	s.nextID++
	id := s.nextID
	g := s.newGame(strconv.Itoa(id), creator, smallBlind, startingFunds)
	s.seat(g, creator, nickname)
	s.mu.Unlock()

	s.logger.Info("Game created", "game", id, "creator", creator)
	writeJSON(w, http.StatusOK, createResponse{
		GameID:        id,
		StartingFunds: startingFunds,
		SmallBlind:    smallBlind,
	})
}

// JoinGame seats playerToken in gameId, creating the game on first use
func (s *Server) JoinGame(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	token, nickname, gameID := q.Get("playerToken"), q.Get("nickname"), q.Get("gameId")
	if token == "" || nickname == "" || gameID == "" {
		http.Error(w, "playerToken, nickname and gameId are required", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if current, ok := s.seats[token]; ok && current != gameID {
		http.Error(w, "player already in another game", http.StatusConflict)
		return
	}

	g, ok := s.games[gameID]
	if !ok {
		g = s.newGame(gameID, token, defaultSmallBlind, defaultStartingFunds)
	}

	status := http.StatusOK
	if !g.seated(token) {
		if g.started {
			http.Error(w, "game already started", http.StatusForbidden)
			return
		}
		s.seat(g, token, nickname)
		status = http.StatusCreated
	}

	// The joining player is not part of the list it gets back.
	resp := joinResponse{
		GameMasterHash: hash(g.creator),
		StartingFunds:  g.startingFunds,
		SmallBlind:     g.smallBlind,
		Players:        []playerResponse{},
	}
	for i, p := range g.players {
		if p == token {
			continue
		}
		resp.Players = append(resp.Players, playerResponse{
			Nickname:   g.nicknames[p],
			PlayerHash: hash(p),
			Turn:       i,
		})
	}
	writeJSON(w, status, resp)
}

// StartGame marks the creator's game as started
func (s *Server) StartGame(w http.ResponseWriter, r *http.Request) {
	creator := r.URL.Query().Get("creatorToken")
	if creator == "" {
		http.Error(w, "creatorToken is required", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.ownedBy(creator)
	if g == nil {
		http.Error(w, "not a game creator", http.StatusForbidden)
		return
	}
	g.started = true
	w.WriteHeader(http.StatusOK)
}

// LeaveGame unseats playerToken
func (s *Server) LeaveGame(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("playerToken")
	if token == "" {
		http.Error(w, "playerToken is required", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	gameID, ok := s.seats[token]
	if !ok {
		http.Error(w, "player not in a game", http.StatusNotFound)
		return
	}
	s.unseat(s.games[gameID], token)
	w.WriteHeader(http.StatusOK)
}

// KickPlayer lets the creator unseat another player
func (s *Server) KickPlayer(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	creator, token := q.Get("creatorToken"), q.Get("playerToken")
	if creator == "" || token == "" {
		http.Error(w, "creatorToken and playerToken are required", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.ownedBy(creator)
	if g == nil {
		http.Error(w, "not a game creator", http.StatusForbidden)
		return
	}
	if !g.seated(token) || token == creator {
		http.Error(w, "player not kickable", http.StatusNotFound)
		return
	}
	s.unseat(g, token)
	w.WriteHeader(http.StatusOK)
}

// Action accepts a move from a seated player
func (s *Server) Action(w http.ResponseWriter, r *http.Request) {
	action := mux.Vars(r)["action"]
	q := r.URL.Query()
	token, gameID := q.Get("playerToken"), q.Get("gameId")
	if token == "" || gameID == "" {
		http.Error(w, "playerToken and gameId are required", http.StatusBadRequest)
		return
	}

	if action == "Raise" {
		amount, err := strconv.Atoi(q.Get("amount"))
		if err != nil || amount <= 0 {
			http.Error(w, "raise needs a positive amount", http.StatusBadRequest)
			return
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.games[gameID]
	if !ok {
		http.Error(w, "no such game", http.StatusNotFound)
		return
	}
	if !g.seated(token) {
		http.Error(w, "player not in game", http.StatusForbidden)
		return
	}

	s.logger.Info("Action", "game", gameID, "player", token, "action", action, "amount", q.Get("amount"))
	w.WriteHeader(http.StatusOK)
}

func (s *Server) newGame(id, creator string, smallBlind, startingFunds int) *game {
	g := &game{
		id:            id,
		creator:       creator,
		smallBlind:    smallBlind,
		startingFunds: startingFunds,
		nicknames:     make(map[string]string),
	}
	s.games[id] = g
	return g
}

func (s *Server) seat(g *game, token, nickname string) {
	g.players = append(g.players, token)
	g.nicknames[token] = nickname
	s.seats[token] = g.id
}

func (s *Server) unseat(g *game, token string) {
	delete(g.nicknames, token)
	delete(s.seats, token)
	for i, p := range g.players {
		if p == token {
			g.players = append(g.players[:i], g.players[i+1:]...)
			break
		}
	}
}

func (s *Server) ownedBy(creator string) *game {
	gameID, ok := s.seats[creator]
	if !ok {
		return nil
	}
	g := s.games[gameID]
	if g.creator != creator {
		return nil
	}
	return g
}

func optionalInt(raw string, def int) (int, bool) {
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func hash(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:8])
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
