package handlers

import (
	"net/http"

	"github.com/taskdeck/taskdeck/app"
	"github.com/taskdeck/taskdeck/utils"
)

// SignupRequest is the request body for POST /users/signup
type SignupRequest struct {
	Username string `json:"username" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest is the request body for POST /users/login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the issued session token
type LoginResponse struct {
	Token string `json:"token"`
}

// SignupHandler registers a new account
func SignupHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SignupRequest
		if !decodeBody(w, r, &req) {
			return
		}

		account, err := deps.AccountService.Register(r.Context(), req.Username, req.Email, req.Password)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		_ = utils.WriteCreated(w, account)
	}
}

// LoginHandler authenticates credentials and returns a session token
func LoginHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if !decodeBody(w, r, &req) {
			return
		}

		signed, err := deps.LoginService.Authenticate(r.Context(), req.Email, req.Password)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		_ = utils.WriteOK(w, LoginResponse{Token: signed})
	}
}
