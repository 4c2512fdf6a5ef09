package sync

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	messagingdomain "tribeboard/internal/domain/messaging"
	tasksdomain "tribeboard/internal/domain/tasks"
)

type TasksService interface {
	CreateTask(ctx context.Context, familyID string, input tasksdomain.CreateTaskInput) (*tasksdomain.Task, error)
	UpdateTask(ctx context.Context, input tasksdomain.UpdateTaskInput) (*tasksdomain.Task, error)
}

type MessagingService interface {
	PostMessage(ctx context.Context, familyID, authorID, body string) (*messagingdomain.Message, error)
}

// Service applies batches of operations recorded on a device while the
// app was offline. Batches and individual operations are idempotent:
// replays return the recorded outcome instead of re-applying.
type Service struct {
	repo      Repository
	tasks     TasksService
	messaging MessagingService
}

func NewService(repo Repository, tasks TasksService, messaging MessagingService) *Service {
	return &Service{repo: repo, tasks: tasks, messaging: messaging}
}

func (s *Service) ProcessBatch(ctx context.Context, input BatchInput) (*BatchResponse, error) {
	if len(input.Operations) == 0 {
		return nil, fmt.Errorf("operations are required")
	}
	if len(input.Operations) > MaxBatchOperations {
		return nil, ErrBatchTooLarge
	}

	syncID := uuid.NewString()

	requestHash, err := hashRequest(input.Operations)
	if err != nil {
		return nil, err
	}

	idempotencyKey := strings.TrimSpace(input.IdempotencyKey)
	batchCreated := false

	if idempotencyKey != "" {
		batch := &BatchRecord{
			ID:             syncID,
			FamilyID:       input.FamilyID,
			UserID:         input.UserID,
			IdempotencyKey: &idempotencyKey,
			RequestHash:    requestHash,
			Status:         BatchStateProcessing,
		}

		created, existing, err := s.repo.BeginBatch(ctx, batch)
		if err != nil {
			return nil, err
		}
		if !created {
			if existing == nil {
				return nil, ErrBatchInProgress
			}
			if existing.RequestHash != requestHash {
				return nil, ErrIdempotencyKeyPayloadMismatch
			}
			if existing.Status == BatchStateCompleted && len(existing.ResponseJSON) > 0 {
				var cached BatchResponse
				if err := json.Unmarshal(existing.ResponseJSON, &cached); err == nil {
					return &cached, nil
				}
			}
			return nil, ErrBatchInProgress
		}

		batchCreated = true
	}

	response := BatchResponse{
		SyncID:   syncID,
		Results:  make([]OperationResult, 0, len(input.Operations)),
		Mappings: make([]EntityMapping, 0),
		Summary: BatchSummary{
			Total: len(input.Operations),
		},
		ServerTime: time.Now().UTC(),
	}

	localTaskIDs := make(map[string]string)

	for _, operation := range input.Operations {
		result, mapping := s.processOperation(ctx, input, operation, localTaskIDs)
		response.Results = append(response.Results, result)
		if mapping != nil {
			response.Mappings = append(response.Mappings, *mapping)
			if mapping.Entity == EntityTask {
				localTaskIDs[mapping.LocalID] = mapping.ServerID
			}
		}

		switch result.Status {
		case ResultStatusApplied:
			response.Summary.Applied++
		case ResultStatusDuplicate:
			response.Summary.Duplicate++
		default:
			response.Summary.Failed++
		}
	}

	response.Status = deriveBatchStatus(response.Summary)

	if batchCreated {
		if encoded, err := json.Marshal(response); err == nil {
			_ = s.repo.CompleteBatch(ctx, syncID, BatchStateCompleted, encoded)
		}
	}

	return &response, nil
}

func (s *Service) processOperation(ctx context.Context, input BatchInput, operation OperationInput, localTaskIDs map[string]string) (OperationResult, *EntityMapping) {
	base := OperationResult{
		OperationID: operation.OperationID,
		Type:        operation.Type,
	}

	payloadHash, err := hashOperation(operation)
	if err != nil {
		return failResult(base, ErrorCodeInternalError, "internal error", true), nil
	}

	reserved := &OperationRecord{
		ID:            uuid.NewString(),
		FamilyID:      input.FamilyID,
		UserID:        input.UserID,
		OperationID:   operation.OperationID,
		OperationType: operation.Type,
		PayloadHash:   payloadHash,
		Status:        OperationStatePending,
	}
	if operation.LocalID != "" {
		localID := operation.LocalID
		reserved.LocalID = &localID
	}

	created, existing, err := s.repo.ReserveOperation(ctx, reserved)
	if err != nil {
		return failResult(base, ErrorCodeInternalError, "internal error", true), nil
	}
	if !created {
		return resultFromExisting(base, existing, payloadHash)
	}

	result, mapping := s.applyOperation(ctx, input, operation, base, localTaskIDs)

	reserved.Status = OperationStateApplied
	if result.Status != ResultStatusApplied {
		reserved.Status = OperationStateFailed
	}
	reserved.Entity = result.Entity
	reserved.ServerID = result.ServerID
	if result.Error != nil {
		code := result.Error.Code
		message := result.Error.Message
		retryable := result.Error.Retryable
		reserved.ErrorCode = &code
		reserved.ErrorMessage = &message
		reserved.Retryable = &retryable
	}
	_ = s.repo.UpdateOperation(ctx, reserved)

	return result, mapping
}

func (s *Service) applyOperation(ctx context.Context, input BatchInput, operation OperationInput, base OperationResult, localTaskIDs map[string]string) (OperationResult, *EntityMapping) {
	switch operation.Type {
	case OperationTypeCreateTask:
		if operation.CreateTask == nil {
			return failResult(base, ErrorCodeInvalidRequest, "payload is required", false), nil
		}

		created, err := s.tasks.CreateTask(ctx, input.FamilyID, tasksdomain.CreateTaskInput{
			ListID: operation.CreateTask.ListID,
			Title:  operation.CreateTask.Title,
		})
		if err != nil {
			if errors.Is(err, tasksdomain.ErrListNotFound) {
				return failResult(base, ErrorCodeTaskListNotFound, "task list not found", false), nil
			}
			return failResult(base, ErrorCodeInternalError, "internal error", true), nil
		}

		return appliedResult(base, EntityTask, operation.LocalID, created.ID)

	case OperationTypeSetTaskDone:
		if operation.SetTaskDone == nil {
			return failResult(base, ErrorCodeInvalidRequest, "payload is required", false), nil
		}

		taskID, err := s.resolveTaskID(ctx, input, *operation.SetTaskDone, localTaskIDs)
		if err != nil {
			return failResult(base, ErrorCodeDependencyNotResolved, "task id dependency is not resolved", false), nil
		}

		done := operation.SetTaskDone.Done
		updated, err := s.tasks.UpdateTask(ctx, tasksdomain.UpdateTaskInput{
			ID:       taskID,
			FamilyID: input.FamilyID,
			Done:     &done,
			DoneBy:   input.UserID,
		})
		if err != nil {
			if errors.Is(err, tasksdomain.ErrTaskNotFound) {
				return failResult(base, ErrorCodeTaskNotFound, "task not found", false), nil
			}
			return failResult(base, ErrorCodeInternalError, "internal error", true), nil
		}

		result := base
		result.Status = ResultStatusApplied
		entity := EntityTask
		result.Entity = &entity
		result.ServerID = nonEmptyStringPtr(updated.ID)
		return result, nil

	case OperationTypeCreateMessage:
		if operation.CreateMessage == nil {
			return failResult(base, ErrorCodeInvalidRequest, "payload is required", false), nil
		}

		created, err := s.messaging.PostMessage(ctx, input.FamilyID, input.UserID, operation.CreateMessage.Body)
		if err != nil {
			return failResult(base, ErrorCodeInvalidRequest, "message rejected", false), nil
		}

		return appliedResult(base, EntityMessage, operation.LocalID, created.ID)

	default:
		return failResult(base, ErrorCodeUnsupportedOperationType, "unsupported operation type", false), nil
	}
}

// resolveTaskID resolves the target of a set_task_done operation: a
// server id wins; otherwise the local id is looked up first in this
// batch's mappings, then in previously applied operations.
func (s *Service) resolveTaskID(ctx context.Context, input BatchInput, payload SetTaskDonePayload, localTaskIDs map[string]string) (string, error) {
	if payload.TaskID != "" {
		return payload.TaskID, nil
	}
	if payload.TaskLocalID == "" {
		return "", fmt.Errorf("task id or local id is required")
	}

	if serverID, ok := localTaskIDs[payload.TaskLocalID]; ok {
		return serverID, nil
	}

	serverID, found, err := s.repo.FindServerIDByLocalID(ctx, input.FamilyID, input.UserID, EntityTask, payload.TaskLocalID)
	if err != nil {
		return "", err
	}
	if !found {
		return "", fmt.Errorf("local id %q not resolved", payload.TaskLocalID)
	}
	return serverID, nil
}

func appliedResult(base OperationResult, entity Entity, localID, serverID string) (OperationResult, *EntityMapping) {
	base.Status = ResultStatusApplied
	base.LocalID = nonEmptyStringPtr(localID)
	base.Entity = &entity
	base.ServerID = nonEmptyStringPtr(serverID)

	var mapping *EntityMapping
	if base.LocalID != nil && base.ServerID != nil {
		mapping = &EntityMapping{
			Entity:   entity,
			LocalID:  *base.LocalID,
			ServerID: *base.ServerID,
		}
	}
	return base, mapping
}

func resultFromExisting(base OperationResult, existing *OperationRecord, payloadHash string) (OperationResult, *EntityMapping) {
	if existing == nil {
		return failResult(base, ErrorCodeInternalError, "operation reservation lost", true), nil
	}
	if existing.PayloadHash != payloadHash {
		return failResult(base, ErrorCodeIdempotencyKeyPayloadMismatch, "operation payload mismatch", false), nil
	}

	switch existing.Status {
	case OperationStateApplied:
		base.Status = ResultStatusDuplicate
		base.LocalID = existing.LocalID
		base.Entity = existing.Entity
		base.ServerID = existing.ServerID

		var mapping *EntityMapping
		if existing.Entity != nil && existing.LocalID != nil && existing.ServerID != nil {
			mapping = &EntityMapping{
				Entity:   *existing.Entity,
				LocalID:  *existing.LocalID,
				ServerID: *existing.ServerID,
			}
		}
		return base, mapping

	case OperationStateFailed:
		code := ErrorCodeInternalError
		message := "operation failed"
		retryable := true
		if existing.ErrorCode != nil {
			code = *existing.ErrorCode
		}
		if existing.ErrorMessage != nil {
			message = *existing.ErrorMessage
		}
		if existing.Retryable != nil {
			retryable = *existing.Retryable
		}
		return failResult(base, code, message, retryable), nil

	default:
		return failResult(base, ErrorCodeBatchInProgress, "operation still in progress", true), nil
	}
}

func failResult(base OperationResult, code ErrorCode, message string, retryable bool) OperationResult {
	base.Status = ResultStatusFailed
	base.Error = &OperationError{
		Code:      code,
		Message:   message,
		Retryable: retryable,
	}
	return base
}

func deriveBatchStatus(summary BatchSummary) BatchStatus {
	if summary.Failed == 0 {
		return BatchStatusSuccess
	}
	if summary.Applied > 0 || summary.Duplicate > 0 {
		return BatchStatusPartialSuccess
	}
	return BatchStatusFailed
}

func hashRequest(operations []OperationInput) (string, error) {
	encoded, err := json.Marshal(operations)
	if err != nil {
		return "", err
	}
	digest := sha256.Sum256(encoded)
	return hex.EncodeToString(digest[:]), nil
}

func hashOperation(operation OperationInput) (string, error) {
	encoded, err := json.Marshal(operation)
	if err != nil {
		return "", err
	}
	digest := sha256.Sum256(encoded)
	return hex.EncodeToString(digest[:]), nil
}

func nonEmptyStringPtr(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
