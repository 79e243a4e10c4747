package handlers

import (
	"net/http"

	"github.com/taskdeck/taskdeck/app"
	"github.com/taskdeck/taskdeck/middleware"
	"github.com/taskdeck/taskdeck/utils"
)

// UpdateProfileRequest is the request body for PUT /users/me.
// An empty password leaves the stored credential unchanged.
type UpdateProfileRequest struct {
	Username string `json:"username" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"omitempty,min=8,max=72"`
}

// GetCurrentUserHandler returns the authenticated account's profile
func GetCurrentUserHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal := middleware.GetPrincipalFromContext(r.Context())
		if principal == nil {
			_ = utils.WriteUnauthorized(w, "MISSING_TOKEN", "authentication token required")
			return
		}

		account, err := deps.AccountService.Get(r.Context(), principal.ID)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		_ = utils.WriteOK(w, account)
	}
}

// UpdateCurrentUserHandler updates the authenticated account's profile
func UpdateCurrentUserHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal := middleware.GetPrincipalFromContext(r.Context())
		if principal == nil {
			_ = utils.WriteUnauthorized(w, "MISSING_TOKEN", "authentication token required")
			return
		}

		var req UpdateProfileRequest
		if !decodeBody(w, r, &req) {
			return
		}

		account, err := deps.AccountService.UpdateProfile(r.Context(), principal.ID, req.Username, req.Email, req.Password)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		_ = utils.WriteOK(w, account)
	}
}

// DeleteCurrentUserHandler deletes the authenticated account and everything
// it owns
func DeleteCurrentUserHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal := middleware.GetPrincipalFromContext(r.Context())
		if principal == nil {
			_ = utils.WriteUnauthorized(w, "MISSING_TOKEN", "authentication token required")
			return
		}

		if err := deps.AccountService.Delete(r.Context(), principal.ID); err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		utils.WriteNoContent(w)
	}
}
