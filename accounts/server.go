package accounts

import (
	"encoding/json"
	goerrors "errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"interchat/errors"
)

// Server exposes the accounts HTTP API:
//
//	POST /register                 create an account, returns a credential
//	POST /login                    returns a fresh credential
//	POST /authorize/user/{userRef} the gateway's verifier endpoint
type Server struct {
	log    *slog.Logger
	store  IUserStore
	issuer *TokenIssuer
}

func NewServer(log *slog.Logger, store IUserStore, issuer *TokenIssuer) *Server {
	return &Server{log: log, store: store, issuer: issuer}
}

func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/register", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/authorize/user/{userRef}", s.handleAuthorize).Methods(http.MethodPost)
	return r
}

type tokenResponse struct {
	Token string `json:"token"`
}

// profileResponse is the body the gateway expects from a successful
// authorize call.
type profileResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if err := ValidateRegister(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Hash before touching storage so the store never sees a plain
	// password.
	hash, err := HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "hashing failed")
		return
	}

	user, err := s.store.CreateUser(req.Email, req.Username, req.Avatar, hash)
	if goerrors.Is(err, errors.ErrUserAlreadyExists) {
		writeError(w, http.StatusConflict, errors.ErrUserAlreadyExists.Error())
		return
	}
	if err != nil {
		s.log.Error("user creation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "storage failure")
		return
	}

	token, err := s.issuer.Issue(user.ID, user.Username)
	if err != nil {
		writeError(w, http.StatusInternalServerError, errors.ErrTokenGeneration.Error())
		return
	}
	s.log.Info("user registered", "user_id", user.ID, "username", user.Username)
	writeJSON(w, http.StatusCreated, tokenResponse{Token: token})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if err := ValidateLogin(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Generic rejection in every failure branch to prevent user
	// enumeration.
	user, err := s.store.GetUserByEmail(req.Email)
	if err != nil {
		writeError(w, http.StatusUnauthorized, errors.ErrInvalidCredentials.Error())
		return
	}
	match, err := ComparePassword(req.Password, user.PasswordHash)
	if err != nil || !match {
		writeError(w, http.StatusUnauthorized, errors.ErrInvalidCredentials.Error())
		return
	}

	token, err := s.issuer.Issue(user.ID, user.Username)
	if err != nil {
		writeError(w, http.StatusInternalServerError, errors.ErrTokenGeneration.Error())
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

// handleAuthorize validates the bearer credential and answers with the
// verified profile. The userRef path segment is what the gateway
// extracted from the opaque token; the credential itself is
// authoritative, so the segment is only logged.
func (s *Server) handleAuthorize(w http.ResponseWriter, r *http.Request) {
	userRef := mux.Vars(r)["userRef"]

	tokenString := r.Header.Get("Authorization")
	if tokenString == "" {
		writeError(w, http.StatusUnauthorized, "authorization header missing")
		return
	}

	claims, err := s.issuer.Validate(tokenString)
	if err != nil {
		s.log.Debug("authorize rejected", "user_ref", userRef, "error", err)
		writeError(w, http.StatusUnauthorized, "invalid or expired token")
		return
	}

	user, err := s.store.GetUserByID(claims.UserID)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unknown user")
		return
	}

	writeJSON(w, http.StatusOK, profileResponse{
		ID:       user.ID,
		Username: user.Username,
		Avatar:   user.AvatarURL,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
