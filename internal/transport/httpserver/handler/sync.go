package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	syncdomain "tribeboard/internal/domain/sync"
)

const (
	minIdempotencyKeyLength = 8
	maxIdempotencyKeyLength = 128
)

type syncBatchRequest struct {
	Operations []syncOperationRequest `json:"operations"`
}

type syncOperationRequest struct {
	OperationID string          `json:"operation_id"`
	Type        string          `json:"type"`
	LocalID     string          `json:"local_id"`
	Payload     json.RawMessage `json:"payload"`
}

type syncCreateTaskPayloadRequest struct {
	ListID string `json:"list_id"`
	Title  string `json:"title"`
}

type syncSetTaskDonePayloadRequest struct {
	TaskID      *string `json:"task_id"`
	TaskLocalID *string `json:"task_local_id"`
	Done        *bool   `json:"done"`
}

type syncCreateMessagePayloadRequest struct {
	Body string `json:"body"`
}

func (h *Handlers) SyncBatch(w http.ResponseWriter, r *http.Request) {
	startedAt := time.Now()

	var req syncBatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	if len(req.Operations) == 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "operations are required")
		return
	}
	if len(req.Operations) > syncdomain.MaxBatchOperations {
		writeError(w, http.StatusRequestEntityTooLarge, "sync_batch_too_large", "too many operations in one batch")
		return
	}

	idempotencyKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if idempotencyKey != "" && len(idempotencyKey) < minIdempotencyKeyLength {
		writeError(w, http.StatusBadRequest, "invalid_request", "idempotency key is too short")
		return
	}
	if len(idempotencyKey) > maxIdempotencyKeyLength {
		writeError(w, http.StatusBadRequest, "invalid_request", "idempotency key is too long")
		return
	}

	user, member, ok := h.requireMembership(w, r)
	if !ok {
		return
	}

	operations := make([]syncdomain.OperationInput, 0, len(req.Operations))
	for i, operation := range req.Operations {
		parsed, err := parseSyncOperation(operation)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "invalid operation at index "+strconv.Itoa(i))
			return
		}
		operations = append(operations, parsed)
	}

	response, err := h.Sync.ProcessBatch(r.Context(), syncdomain.BatchInput{
		FamilyID:       member.FamilyID,
		UserID:         user.ID,
		IdempotencyKey: idempotencyKey,
		Operations:     operations,
	})
	if err != nil {
		logAttrs := []any{
			"user_id", user.ID,
			"family_id", member.FamilyID,
			"operations", len(operations),
			"has_idempotency_key", idempotencyKey != "",
			"duration_ms", time.Since(startedAt).Milliseconds(),
		}

		switch {
		case errors.Is(err, syncdomain.ErrBatchTooLarge):
			h.log.BusinessError("sync.batch: batch too large", err, logAttrs...)
			writeError(w, http.StatusRequestEntityTooLarge, "sync_batch_too_large", "too many operations in one batch")
		case errors.Is(err, syncdomain.ErrIdempotencyKeyPayloadMismatch):
			h.log.BusinessError("sync.batch: idempotency key payload mismatch", err, logAttrs...)
			writeError(w, http.StatusConflict, "idempotency_key_payload_mismatch", "Idempotency-Key was already used with a different payload")
		case errors.Is(err, syncdomain.ErrBatchInProgress):
			h.log.BusinessError("sync.batch: batch in progress", err, logAttrs...)
			writeError(w, http.StatusConflict, "batch_in_progress", "sync batch is already in progress")
		default:
			h.log.InternalError("sync.batch: process batch failed", err, logAttrs...)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	h.log.Info("sync: completed",
		"sync_id", response.SyncID,
		"user_id", user.ID,
		"family_id", member.FamilyID,
		"status", response.Status,
		"total", response.Summary.Total,
		"applied", response.Summary.Applied,
		"duplicate", response.Summary.Duplicate,
		"failed", response.Summary.Failed,
		"has_idempotency_key", idempotencyKey != "",
		"duration_ms", time.Since(startedAt).Milliseconds(),
	)

	writeJSON(w, http.StatusOK, response)
}

func parseSyncOperation(operation syncOperationRequest) (syncdomain.OperationInput, error) {
	operationID := strings.TrimSpace(operation.OperationID)
	if uuid.Validate(operationID) != nil {
		return syncdomain.OperationInput{}, errors.New("invalid operation_id")
	}

	operationType := syncdomain.OperationType(strings.TrimSpace(operation.Type))
	localID := strings.TrimSpace(operation.LocalID)

	result := syncdomain.OperationInput{
		OperationID: operationID,
		Type:        operationType,
		LocalID:     localID,
	}

	switch operationType {
	case syncdomain.OperationTypeCreateTask:
		if localID == "" {
			return syncdomain.OperationInput{}, errors.New("local_id is required")
		}

		var payload syncCreateTaskPayloadRequest
		if err := decodePayload(operation.Payload, &payload); err != nil {
			return syncdomain.OperationInput{}, err
		}
		if strings.TrimSpace(payload.ListID) == "" {
			return syncdomain.OperationInput{}, errors.New("list_id is required")
		}
		if strings.TrimSpace(payload.Title) == "" {
			return syncdomain.OperationInput{}, errors.New("title is required")
		}

		result.CreateTask = &syncdomain.CreateTaskPayload{
			ListID: payload.ListID,
			Title:  payload.Title,
		}
		return result, nil

	case syncdomain.OperationTypeSetTaskDone:
		var payload syncSetTaskDonePayloadRequest
		if err := decodePayload(operation.Payload, &payload); err != nil {
			return syncdomain.OperationInput{}, err
		}
		if payload.Done == nil {
			return syncdomain.OperationInput{}, errors.New("done is required")
		}

		taskID := normalizeStringPtr(payload.TaskID)
		taskLocalID := normalizeStringPtr(payload.TaskLocalID)
		if taskID == nil && taskLocalID == nil {
			return syncdomain.OperationInput{}, errors.New("task_id or task_local_id is required")
		}

		result.SetTaskDone = &syncdomain.SetTaskDonePayload{
			TaskID:      valueOrEmptyPtr(taskID),
			TaskLocalID: valueOrEmptyPtr(taskLocalID),
			Done:        *payload.Done,
		}
		return result, nil

	case syncdomain.OperationTypeCreateMessage:
		if localID == "" {
			return syncdomain.OperationInput{}, errors.New("local_id is required")
		}

		var payload syncCreateMessagePayloadRequest
		if err := decodePayload(operation.Payload, &payload); err != nil {
			return syncdomain.OperationInput{}, err
		}
		if strings.TrimSpace(payload.Body) == "" {
			return syncdomain.OperationInput{}, errors.New("body is required")
		}

		result.CreateMessage = &syncdomain.CreateMessagePayload{Body: payload.Body}
		return result, nil

	default:
		// Unknown types pass through; the service records a per-operation
		// unsupported_operation_type failure.
		return result, nil
	}
}

func decodePayload(raw json.RawMessage, dst interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("invalid payload")
	}
	return nil
}

func normalizeStringPtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func valueOrEmptyPtr(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
