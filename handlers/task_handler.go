package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/taskdeck/taskdeck/app"
	"github.com/taskdeck/taskdeck/middleware"
	"github.com/taskdeck/taskdeck/utils"
)

// TaskRequest is the request body for creating and updating tasks
type TaskRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"max=2000"`
	Completed   bool   `json:"completed"`
}

// CreateTaskHandler creates a task owned by the caller
func CreateTaskHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal := middleware.GetPrincipalFromContext(r.Context())
		if principal == nil {
			_ = utils.WriteUnauthorized(w, "MISSING_TOKEN", "authentication token required")
			return
		}

		var req TaskRequest
		if !decodeBody(w, r, &req) {
			return
		}

		task, err := deps.TaskService.Create(r.Context(), principal.ID, req.Title, req.Description, req.Completed)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		_ = utils.WriteCreated(w, task)
	}
}

// ListTasksHandler lists the caller's tasks
func ListTasksHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal := middleware.GetPrincipalFromContext(r.Context())
		if principal == nil {
			_ = utils.WriteUnauthorized(w, "MISSING_TOKEN", "authentication token required")
			return
		}

		tasks, err := deps.TaskService.List(r.Context(), principal.ID)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		_ = utils.WriteOK(w, tasks)
	}
}

// SearchTasksHandler searches the caller's tasks by title keyword
func SearchTasksHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal := middleware.GetPrincipalFromContext(r.Context())
		if principal == nil {
			_ = utils.WriteUnauthorized(w, "MISSING_TOKEN", "authentication token required")
			return
		}

		keyword := r.URL.Query().Get("keyword")
		tasks, err := deps.TaskService.Search(r.Context(), principal.ID, keyword)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		_ = utils.WriteOK(w, tasks)
	}
}

// GetTaskHandler retrieves a single task
func GetTaskHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, taskID, ok := taskRequestContext(w, r)
		if !ok {
			return
		}

		task, err := deps.TaskService.Get(r.Context(), principal.ID, taskID)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		_ = utils.WriteOK(w, task)
	}
}

// UpdateTaskHandler replaces a task's mutable fields
func UpdateTaskHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, taskID, ok := taskRequestContext(w, r)
		if !ok {
			return
		}

		var req TaskRequest
		if !decodeBody(w, r, &req) {
			return
		}

		task, err := deps.TaskService.Update(r.Context(), principal.ID, taskID, req.Title, req.Description, req.Completed)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		_ = utils.WriteOK(w, task)
	}
}

// DeleteTaskHandler removes a task
func DeleteTaskHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, taskID, ok := taskRequestContext(w, r)
		if !ok {
			return
		}

		if err := deps.TaskService.Delete(r.Context(), principal.ID, taskID); err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		utils.WriteNoContent(w)
	}
}

// taskRequestContext extracts the principal and the {id} path parameter,
// writing the failure response itself when either is missing
func taskRequestContext(w http.ResponseWriter, r *http.Request) (*middleware.Principal, uuid.UUID, bool) {
	principal := middleware.GetPrincipalFromContext(r.Context())
	if principal == nil {
		_ = utils.WriteUnauthorized(w, "MISSING_TOKEN", "authentication token required")
		return nil, uuid.Nil, false
	}

	taskID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "VALIDATION_FAILED", "invalid task id", nil)
		return nil, uuid.Nil, false
	}

	return principal, taskID, true
}
