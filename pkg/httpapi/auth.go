package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/iotaledger/inx-chronicle-sub002/pkg/chronoerr"
)

// Authenticator issues and verifies the bearer JWTs spec §6.2 describes
// (password login, argon2 hash check, JWT signing/verification). It is
// named here as a seam rather than implemented: JWT issuance is an
// external collaborator concern per the contract, so Server depends only
// on this interface and ships a NoopAuthenticator default.
type Authenticator interface {
	// Login verifies password and returns a signed bearer token.
	Login(password string) (token string, err error)
	// Verify reports whether token is a currently valid bearer JWT.
	Verify(token string) bool
}

// NoopAuthenticator rejects every login and treats no token as valid. A
// deployment that wants /login and authenticated /routes access supplies
// its own Authenticator; without one, /routes lists only the routes that
// match the public-route set.
type NoopAuthenticator struct{}

func (NoopAuthenticator) Login(password string) (string, error) {
	return "", &chronoerr.AuthError{Reason: "login is not configured on this deployment"}
}

func (NoopAuthenticator) Verify(token string) bool { return false }

type loginRequest struct {
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, s.log, &chronoerr.RequestError{Reason: "malformed login body", Cause: err})
		return
	}

	token, err := s.auth.Login(req.Password)
	if err != nil {
		writeError(w, s.log, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: "Bearer " + token})
}

// bearerToken extracts the raw token from an "Authorization: Bearer <jwt>"
// header, or "" if absent/malformed.
func bearerToken(r *http.Request) string {
	const prefix = "Bearer "
	h := r.Header.Get("Authorization")
	if len(h) <= len(prefix) || h[:len(prefix)] != prefix {
		return ""
	}
	return h[len(prefix):]
}
