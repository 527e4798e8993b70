package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/omarsldn/taskhub/internal/api/shared"
	"github.com/omarsldn/taskhub/internal/domain"
	"github.com/omarsldn/taskhub/internal/platform/logger"
	"github.com/omarsldn/taskhub/internal/service/auth"
	"github.com/omarsldn/taskhub/internal/store"
)

// TaskHandler handles the task CRUD endpoints. Every operation is scoped to
// the authenticated user; tasks owned by others are indistinguishable from
// tasks that do not exist.
type TaskHandler struct {
	taskStore store.TaskStore
	logger    *slog.Logger
}

// NewTaskHandler creates a TaskHandler with the given task store.
func NewTaskHandler(taskStore store.TaskStore, log *slog.Logger) *TaskHandler {
	return &TaskHandler{
		taskStore: taskStore,
		logger:    log.With(slog.String("component", "task_handler")),
	}
}

// Create handles POST /tasks.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	user, ok := userFromRequest(r)
	if !ok {
		respondWithMappedError(w, auth.ErrMissingToken)
		return
	}

	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	task, err := domain.NewTask(req.Description, user.ID)
	if err != nil {
		respondWithMappedError(w, err)
		return
	}
	task.Completed = req.Completed

	if err := h.taskStore.Create(r.Context(), task); err != nil {
		log.Error("failed to create task", slog.String("error", err.Error()))
		respondWithError(w, http.StatusInternalServerError, "Failed to create task")
		return
	}

	respondWithJSON(w, http.StatusCreated, NewTaskResponse(task))
}

// GetOne handles GET /tasks/{id}.
func (h *TaskHandler) GetOne(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromRequest(r)
	if !ok {
		respondWithMappedError(w, auth.ErrMissingToken)
		return
	}

	id, err := pathUUID(r, "id")
	if err != nil {
		respondWithMappedError(w, err)
		return
	}

	task, err := h.taskStore.GetByID(r.Context(), id, user.ID)
	if err != nil {
		respondWithMappedError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, NewTaskResponse(task))
}

// List handles GET /tasks with optional completed, sortBy, limit and skip
// query parameters. Malformed parameter values fail the request rather than
// being silently ignored.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	user, ok := userFromRequest(r)
	if !ok {
		respondWithMappedError(w, auth.ErrMissingToken)
		return
	}

	opts, err := parseTaskListOptions(r)
	if err != nil {
		respondWithMappedError(w, err)
		return
	}

	tasks, err := h.taskStore.List(r.Context(), user.ID, opts)
	if err != nil {
		log.Error("failed to list tasks", slog.String("error", err.Error()))
		respondWithError(w, http.StatusInternalServerError, "Failed to list tasks")
		return
	}

	respondWithJSON(w, http.StatusOK, NewTaskListResponse(tasks))
}

// Update handles PATCH /tasks/{id}. Only description and completed are
// updatable; unknown fields fail the request before any write.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromRequest(r)
	if !ok {
		respondWithMappedError(w, auth.ErrMissingToken)
		return
	}

	id, err := pathUUID(r, "id")
	if err != nil {
		respondWithMappedError(w, err)
		return
	}

	var req UpdateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid updates")
		return
	}
	if req.IsEmpty() {
		respondWithError(w, http.StatusBadRequest, "Invalid updates")
		return
	}

	task, err := h.taskStore.GetByID(r.Context(), id, user.ID)
	if err != nil {
		respondWithMappedError(w, err)
		return
	}

	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Completed != nil {
		task.Completed = *req.Completed
	}
	task.Normalize()
	task.UpdatedAt = time.Now().UTC()

	if err := task.Validate(); err != nil {
		respondWithMappedError(w, err)
		return
	}

	if err := h.taskStore.Update(r.Context(), task); err != nil {
		respondWithMappedError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, NewTaskResponse(task))
}

// DeleteOne handles DELETE /tasks/{id}, echoing the deleted task back.
func (h *TaskHandler) DeleteOne(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromRequest(r)
	if !ok {
		respondWithMappedError(w, auth.ErrMissingToken)
		return
	}

	id, err := pathUUID(r, "id")
	if err != nil {
		respondWithMappedError(w, err)
		return
	}

	task, err := h.taskStore.Delete(r.Context(), id, user.ID)
	if err != nil {
		respondWithMappedError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, NewTaskResponse(task))
}

// DeleteAll handles DELETE /tasks, removing every task the user owns.
// Owning no tasks is not an error; the count is simply zero.
func (h *TaskHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	user, ok := userFromRequest(r)
	if !ok {
		respondWithMappedError(w, auth.ErrMissingToken)
		return
	}

	count, err := h.taskStore.DeleteByOwner(r.Context(), user.ID)
	if err != nil {
		log.Error("failed to delete tasks", slog.String("error", err.Error()))
		respondWithError(w, http.StatusInternalServerError, "Failed to delete tasks")
		return
	}

	respondWithJSON(w, http.StatusOK, DeleteTasksResponse{
		Status:       "deleted",
		DeletedCount: count,
	})
}

// parseTaskListOptions parses the listing query parameters. sortBy takes the
// form field_asc or field_desc, split on the last underscore so field names
// containing underscores (created_at) parse correctly.
func parseTaskListOptions(r *http.Request) (store.TaskListOptions, error) {
	var opts store.TaskListOptions
	q := r.URL.Query()

	if raw := q.Get("completed"); raw != "" {
		completed, err := strconv.ParseBool(raw)
		if err != nil {
			return opts, domain.NewValidationError("completed", "must be true or false")
		}
		opts.Completed = &completed
	}

	if raw := q.Get("sortBy"); raw != "" {
		sep := strings.LastIndex(raw, "_")
		if sep <= 0 || sep == len(raw)-1 {
			return opts, domain.NewValidationError("sortBy", "must be of the form field_asc or field_desc")
		}
		field, direction := raw[:sep], raw[sep+1:]
		if !store.ValidTaskSortField(field) {
			return opts, domain.NewValidationError("sortBy", "references an unknown field")
		}
		switch direction {
		case "asc":
			opts.SortDesc = false
		case "desc":
			opts.SortDesc = true
		default:
			return opts, domain.NewValidationError("sortBy", "direction must be asc or desc")
		}
		opts.SortField = field
	}

	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return opts, domain.NewValidationError("limit", "must be a non-negative integer")
		}
		opts.Limit = limit
	}

	if raw := q.Get("skip"); raw != "" {
		skip, err := strconv.Atoi(raw)
		if err != nil || skip < 0 {
			return opts, domain.NewValidationError("skip", "must be a non-negative integer")
		}
		opts.Skip = skip
	}

	return opts, nil
}
