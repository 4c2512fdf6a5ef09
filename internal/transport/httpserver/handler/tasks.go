package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	tasksdomain "tribeboard/internal/domain/tasks"
)

type createTaskListRequest struct {
	Title string `json:"title"`
}

type updateTaskListRequest struct {
	Title string `json:"title"`
}

type createTaskRequest struct {
	Title      string  `json:"title"`
	AssigneeID *string `json:"assignee_id"`
}

type updateTaskRequest struct {
	Title      *string `json:"title"`
	AssigneeID *string `json:"assignee_id"`
	Done       *bool   `json:"done"`
}

func (h *Handlers) ListTaskLists(w http.ResponseWriter, r *http.Request) {
	_, member, ok := h.requireMembership(w, r)
	if !ok {
		return
	}

	lists, err := h.Tasks.ListTaskLists(r.Context(), member.FamilyID)
	if err != nil {
		h.log.InternalError("tasks.list_lists failed", err, "family_id", member.FamilyID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	response := make([]taskListResponse, 0, len(lists))
	for _, list := range lists {
		response = append(response, toTaskListResponse(list))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) CreateTaskList(w http.ResponseWriter, r *http.Request) {
	var req createTaskListRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	_, member, ok := h.requireMembership(w, r)
	if !ok {
		return
	}

	list, err := h.Tasks.CreateTaskList(r.Context(), member.FamilyID, req.Title)
	if err != nil {
		h.log.BusinessError("tasks.create_list failed", err, "family_id", member.FamilyID)
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, toTaskListResponse(tasksdomain.ListWithCounts{List: *list}))
}

func (h *Handlers) UpdateTaskList(w http.ResponseWriter, r *http.Request) {
	var req updateTaskListRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	_, member, ok := h.requireMembership(w, r)
	if !ok {
		return
	}

	listID := chi.URLParam(r, "list_id")
	list, err := h.Tasks.UpdateTaskList(r.Context(), member.FamilyID, listID, req.Title)
	if err != nil {
		if errors.Is(err, tasksdomain.ErrListNotFound) {
			writeError(w, http.StatusNotFound, "task_list_not_found", "task list not found")
			return
		}
		h.log.BusinessError("tasks.update_list failed", err, "family_id", member.FamilyID, "list_id", listID)
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, toTaskListResponse(tasksdomain.ListWithCounts{List: *list}))
}

func (h *Handlers) DeleteTaskList(w http.ResponseWriter, r *http.Request) {
	_, member, ok := h.requireMembership(w, r)
	if !ok {
		return
	}

	listID := chi.URLParam(r, "list_id")
	if err := h.Tasks.DeleteTaskList(r.Context(), member.FamilyID, listID); err != nil {
		if errors.Is(err, tasksdomain.ErrListNotFound) {
			writeError(w, http.StatusNotFound, "task_list_not_found", "task list not found")
			return
		}
		h.log.InternalError("tasks.delete_list failed", err, "family_id", member.FamilyID, "list_id", listID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) ListTasks(w http.ResponseWriter, r *http.Request) {
	_, member, ok := h.requireMembership(w, r)
	if !ok {
		return
	}

	listID := chi.URLParam(r, "list_id")
	tasks, err := h.Tasks.ListTasks(r.Context(), member.FamilyID, listID)
	if err != nil {
		if errors.Is(err, tasksdomain.ErrListNotFound) {
			writeError(w, http.StatusNotFound, "task_list_not_found", "task list not found")
			return
		}
		h.log.InternalError("tasks.list failed", err, "family_id", member.FamilyID, "list_id", listID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	response := make([]taskResponse, 0, len(tasks))
	for _, task := range tasks {
		response = append(response, toTaskResponse(task))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	_, member, ok := h.requireMembership(w, r)
	if !ok {
		return
	}

	task, err := h.Tasks.CreateTask(r.Context(), member.FamilyID, tasksdomain.CreateTaskInput{
		ListID:     chi.URLParam(r, "list_id"),
		Title:      req.Title,
		AssigneeID: req.AssigneeID,
	})
	if err != nil {
		if errors.Is(err, tasksdomain.ErrListNotFound) {
			writeError(w, http.StatusNotFound, "task_list_not_found", "task list not found")
			return
		}
		h.log.BusinessError("tasks.create failed", err, "family_id", member.FamilyID)
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, toTaskResponse(*task))
}

func (h *Handlers) UpdateTask(w http.ResponseWriter, r *http.Request) {
	var req updateTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	user, member, ok := h.requireMembership(w, r)
	if !ok {
		return
	}

	taskID := chi.URLParam(r, "task_id")
	task, err := h.Tasks.UpdateTask(r.Context(), tasksdomain.UpdateTaskInput{
		ID:         taskID,
		FamilyID:   member.FamilyID,
		Title:      req.Title,
		AssigneeID: req.AssigneeID,
		Done:       req.Done,
		DoneBy:     user.ID,
	})
	if err != nil {
		if errors.Is(err, tasksdomain.ErrTaskNotFound) {
			writeError(w, http.StatusNotFound, "task_not_found", "task not found")
			return
		}
		h.log.BusinessError("tasks.update failed", err, "family_id", member.FamilyID, "task_id", taskID)
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, toTaskResponse(*task))
}

func (h *Handlers) DeleteTask(w http.ResponseWriter, r *http.Request) {
	_, member, ok := h.requireMembership(w, r)
	if !ok {
		return
	}

	taskID := chi.URLParam(r, "task_id")
	if err := h.Tasks.DeleteTask(r.Context(), member.FamilyID, taskID); err != nil {
		if errors.Is(err, tasksdomain.ErrTaskNotFound) {
			writeError(w, http.StatusNotFound, "task_not_found", "task not found")
			return
		}
		h.log.InternalError("tasks.delete failed", err, "family_id", member.FamilyID, "task_id", taskID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type taskListResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	Total     int64     `json:"total"`
	Done      int64     `json:"done"`
}

type taskResponse struct {
	ID         string     `json:"id"`
	ListID     string     `json:"list_id"`
	Title      string     `json:"title"`
	AssigneeID *string    `json:"assignee_id"`
	Done       bool       `json:"done"`
	DoneAt     *time.Time `json:"done_at"`
	DoneByID   *string    `json:"done_by_id"`
	CreatedAt  time.Time  `json:"created_at"`
}

func toTaskListResponse(item tasksdomain.ListWithCounts) taskListResponse {
	return taskListResponse{
		ID:        item.List.ID,
		Title:     item.List.Title,
		CreatedAt: item.List.CreatedAt,
		Total:     item.Counts.Total,
		Done:      item.Counts.Done,
	}
}

func toTaskResponse(task tasksdomain.Task) taskResponse {
	return taskResponse{
		ID:         task.ID,
		ListID:     task.ListID,
		Title:      task.Title,
		AssigneeID: task.AssigneeID,
		Done:       task.Done,
		DoneAt:     task.DoneAt,
		DoneByID:   task.DoneByID,
		CreatedAt:  task.CreatedAt,
	}
}
