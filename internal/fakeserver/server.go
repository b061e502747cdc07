// ABOUTME: In-memory fake of the catalog service routed with chi
// ABOUTME: Serves /api item CRUD, /auth login/register, and /admin seeding endpoints

package fakeserver

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"golang.org/x/crypto/bcrypt"
)

// Item is the stored form of a catalog item.
type Item struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Price       float64 `json:"price"`
}

// Config configures the fake service.
type Config struct {
	Secret         []byte
	TokenTTL       time.Duration
	AllowedOrigins []string
	// BcryptCost defaults to bcrypt.DefaultCost; tests use bcrypt.MinCost.
	BcryptCost int
}

type fault struct {
	method string
	path   string
	status int
	detail string
}

// Server holds all fake service state.
type Server struct {
	cfg    Config
	tokens *TokenIssuer
	logger *slog.Logger

	mu     sync.Mutex
	items  []Item
	nextID int
	users  map[string][]byte
	faults []fault
}

// New creates an empty fake service.
func New(cfg Config, logger *slog.Logger) *Server {
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = 30 * time.Minute
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:    cfg,
		tokens: NewTokenIssuer(cfg.Secret, cfg.TokenTTL),
		logger: logger.With("component", "fakeserver"),
		nextID: 1,
		users:  make(map[string][]byte),
	}
}

// Tokens returns the issuer, so tests can mint tokens directly.
func (s *Server) Tokens() *TokenIssuer {
	return s.tokens
}

// Handler returns the HTTP handler for the service.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	if len(s.cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.cfg.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"*"},
			AllowCredentials: true,
		}))
	}
	r.Use(s.logRequests)
	r.Use(s.injectFaults)

	r.Route("/api", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.With(s.requireAuth).Post("/", s.handleCreate)
		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/{id}", s.handleGet)
			r.Put("/{id}", s.handleUpdate)
			r.Delete("/{id}", s.handleDelete)
		})
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Post("/reset", s.handleReset)
		r.Get("/state", s.handleState)
		r.Post("/items", s.handleSeed)
	})

	return r
}

// SetFault makes the next request matching method and path fail with status.
func (s *Server) SetFault(method, path string, status int, detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = append(s.faults, fault{method: method, path: path, status: status, detail: detail})
}

// Seed appends items, assigning ids to those without one.
func (s *Server) Seed(items ...Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range items {
		if it.ID == 0 {
			it.ID = s.nextID
		}
		if it.ID >= s.nextID {
			s.nextID = it.ID + 1
		}
		s.items = append(s.items, it)
	}
}

// Items returns a copy of the stored items in list order.
func (s *Server) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// Reset drops all items, users and pending faults.
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.nextID = 1
	s.users = make(map[string][]byte)
	s.faults = nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", r.Header.Get("X-Request-ID"),
			"duration", time.Since(start),
		)
	})
}

func (s *Server) injectFaults(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		for i, f := range s.faults {
			if f.method == r.Method && f.path == r.URL.Path {
				s.faults = append(s.faults[:i], s.faults[i+1:]...)
				s.mu.Unlock()
				writeDetail(w, f.status, f.detail)
				return
			}
		}
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

// requireAuth rejects requests without a valid bearer token.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if header == "" || token == header || token == "" {
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		if _, err := s.tokens.Verify(token); err != nil {
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]any{"detail": detail})
}

type validationIssue struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

func writeValidation(w http.ResponseWriter, issues ...validationIssue) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": issues})
}

// itemInput is the request body for create and update.
type itemInput struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
}

func (in itemInput) validate() []validationIssue {
	var issues []validationIssue
	if in.Name == nil {
		issues = append(issues, validationIssue{Loc: []string{"body", "name"}, Msg: "Field required", Type: "missing"})
	}
	if in.Price == nil {
		issues = append(issues, validationIssue{Loc: []string{"body", "price"}, Msg: "Input should be a valid number", Type: "float_type"})
	} else if *in.Price < 0 {
		issues = append(issues, validationIssue{Loc: []string{"body", "price"}, Msg: "Input should be greater than or equal to 0", Type: "greater_than_equal"})
	}
	return issues
}

func decodeItemInput(w http.ResponseWriter, r *http.Request) (itemInput, bool) {
	var in itemInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeValidation(w, validationIssue{Loc: []string{"body"}, Msg: "JSON decode error", Type: "json_invalid"})
		return in, false
	}
	if issues := in.validate(); len(issues) > 0 {
		writeValidation(w, issues...)
		return in, false
	}
	return in, true
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Items())
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeItemInput(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	it := Item{ID: s.nextID, Name: *in.Name, Description: in.Description, Price: *in.Price}
	s.nextID++
	s.items = append(s.items, it)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, it)
}

// lookup returns the index of the item named by the {id} URL param.
// Caller must hold s.mu.
func (s *Server) lookup(r *http.Request) int {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		return -1
	}
	for i, it := range s.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	idx := s.lookup(r)
	var it Item
	if idx >= 0 {
		it = s.items[idx]
	}
	s.mu.Unlock()

	if idx < 0 {
		writeDetail(w, http.StatusNotFound, "Item not found")
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeItemInput(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	idx := s.lookup(r)
	var it Item
	if idx >= 0 {
		s.items[idx].Name = *in.Name
		s.items[idx].Description = in.Description
		s.items[idx].Price = *in.Price
		it = s.items[idx]
	}
	s.mu.Unlock()

	if idx < 0 {
		writeDetail(w, http.StatusNotFound, "Item not found")
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	idx := s.lookup(r)
	if idx >= 0 {
		s.items = append(s.items[:idx], s.items[idx+1:]...)
	}
	s.mu.Unlock()

	if idx < 0 {
		writeDetail(w, http.StatusNotFound, "Item not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type userInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func decodeUserInput(w http.ResponseWriter, r *http.Request) (userInput, bool) {
	var in userInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeValidation(w, validationIssue{Loc: []string{"body"}, Msg: "JSON decode error", Type: "json_invalid"})
		return in, false
	}
	if in.Username == "" || in.Password == "" {
		writeValidation(w, validationIssue{Loc: []string{"body"}, Msg: "username and password are required", Type: "missing"})
		return in, false
	}
	return in, true
}

func (s *Server) issue(w http.ResponseWriter, status int, username string) {
	token, err := s.tokens.Generate(username)
	if err != nil {
		s.logger.Error("signing token", "error", err)
		writeDetail(w, http.StatusInternalServerError, "could not issue token")
		return
	}
	writeJSON(w, status, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeUserInput(w, r)
	if !ok {
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cfg.BcryptCost)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid password")
		return
	}

	s.mu.Lock()
	_, exists := s.users[in.Username]
	if !exists {
		s.users[in.Username] = hash
	}
	s.mu.Unlock()

	if exists {
		writeDetail(w, http.StatusBadRequest, "Username already registered")
		return
	}
	s.logger.Info("user registered", "username", in.Username)
	s.issue(w, http.StatusCreated, in.Username)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeUserInput(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	hash, exists := s.users[in.Username]
	s.mu.Unlock()

	if !exists || bcrypt.CompareHashAndPassword(hash, []byte(in.Password)) != nil {
		writeDetail(w, http.StatusUnauthorized, "Invalid Credentials")
		return
	}
	s.issue(w, http.StatusOK, in.Username)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.Reset()
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	users := make([]string, 0, len(s.users))
	for name := range s.users {
		users = append(users, name)
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"items": s.Items(),
		"users": users,
	})
}

func (s *Server) handleSeed(w http.ResponseWriter, r *http.Request) {
	var items []Item
	if err := json.NewDecoder(r.Body).Decode(&items); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid seed body")
		return
	}
	s.Seed(items...)
	writeJSON(w, http.StatusOK, map[string]int{"seeded": len(items)})
}
