package handler

import (
	"net/http"
)

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupRequest is the body of POST /auth/signup.
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// PasswordResetRequest is the body of POST /auth/password-reset.
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// postLogin handles POST /auth/login.
func (s *Server) postLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	s.respond(w, r, s.auth.SignIn(r.Context(), req.Email, req.Password))
}

// postSignup handles POST /auth/signup.
func (s *Server) postSignup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	s.respond(w, r, s.auth.SignUp(r.Context(), req.Name, req.Email, req.Password))
}

// postGoogle handles POST /auth/google. The request stays open until the
// user finishes or abandons the consent page.
func (s *Server) postGoogle(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, s.auth.SignInWithProvider(r.Context()))
}

// postLogout handles POST /auth/logout.
func (s *Server) postLogout(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, s.auth.SignOut(r.Context()))
}

// postPasswordReset handles POST /auth/password-reset.
func (s *Server) postPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req PasswordResetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	s.respond(w, r, s.auth.RequestPasswordReset(r.Context(), req.Email))
}
