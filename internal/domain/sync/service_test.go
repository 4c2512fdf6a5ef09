package sync

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	messagingdomain "tribeboard/internal/domain/messaging"
	tasksdomain "tribeboard/internal/domain/tasks"
)

type fakeSyncRepo struct {
	batches    map[string]*BatchRecord
	operations map[string]*OperationRecord
}

func newFakeSyncRepo() *fakeSyncRepo {
	return &fakeSyncRepo{
		batches:    make(map[string]*BatchRecord),
		operations: make(map[string]*OperationRecord),
	}
}

func batchKey(familyID, userID, idempotencyKey string) string {
	return familyID + "|" + userID + "|" + idempotencyKey
}

func operationKey(familyID, userID, operationID string) string {
	return familyID + "|" + userID + "|" + operationID
}

func (r *fakeSyncRepo) BeginBatch(ctx context.Context, batch *BatchRecord) (bool, *BatchRecord, error) {
	key := batchKey(batch.FamilyID, batch.UserID, *batch.IdempotencyKey)
	if existing, ok := r.batches[key]; ok {
		copied := *existing
		return false, &copied, nil
	}
	copied := *batch
	r.batches[key] = &copied
	return true, nil, nil
}

func (r *fakeSyncRepo) CompleteBatch(ctx context.Context, batchID string, status BatchState, responseJSON []byte) error {
	for _, batch := range r.batches {
		if batch.ID == batchID {
			batch.Status = status
			batch.ResponseJSON = responseJSON
			return nil
		}
	}
	return fmt.Errorf("batch %s not found", batchID)
}

func (r *fakeSyncRepo) ReserveOperation(ctx context.Context, operation *OperationRecord) (bool, *OperationRecord, error) {
	key := operationKey(operation.FamilyID, operation.UserID, operation.OperationID)
	if existing, ok := r.operations[key]; ok {
		copied := *existing
		return false, &copied, nil
	}
	copied := *operation
	r.operations[key] = &copied
	return true, nil, nil
}

func (r *fakeSyncRepo) UpdateOperation(ctx context.Context, operation *OperationRecord) error {
	for key, existing := range r.operations {
		if existing.ID == operation.ID {
			copied := *operation
			r.operations[key] = &copied
			return nil
		}
	}
	return fmt.Errorf("operation %s not found", operation.ID)
}

func (r *fakeSyncRepo) FindServerIDByLocalID(ctx context.Context, familyID, userID string, entity Entity, localID string) (string, bool, error) {
	for _, operation := range r.operations {
		if operation.FamilyID != familyID || operation.UserID != userID {
			continue
		}
		if operation.Status != OperationStateApplied || operation.Entity == nil || *operation.Entity != entity {
			continue
		}
		if operation.LocalID != nil && *operation.LocalID == localID && operation.ServerID != nil {
			return *operation.ServerID, true, nil
		}
	}
	return "", false, nil
}

type fakeSyncTasks struct {
	nextID int
	tasks  map[string]*tasksdomain.Task
}

func newFakeSyncTasks() *fakeSyncTasks {
	return &fakeSyncTasks{tasks: make(map[string]*tasksdomain.Task)}
}

func (f *fakeSyncTasks) CreateTask(ctx context.Context, familyID string, input tasksdomain.CreateTaskInput) (*tasksdomain.Task, error) {
	f.nextID++
	task := &tasksdomain.Task{
		ID:     fmt.Sprintf("task-%d", f.nextID),
		ListID: input.ListID,
		Title:  input.Title,
	}
	f.tasks[task.ID] = task
	return task, nil
}

func (f *fakeSyncTasks) UpdateTask(ctx context.Context, input tasksdomain.UpdateTaskInput) (*tasksdomain.Task, error) {
	task, ok := f.tasks[input.ID]
	if !ok {
		return nil, tasksdomain.ErrTaskNotFound
	}
	if input.Done != nil {
		task.Done = *input.Done
	}
	return task, nil
}

type fakeSyncMessaging struct {
	nextID int
}

func (f *fakeSyncMessaging) PostMessage(ctx context.Context, familyID, authorID, body string) (*messagingdomain.Message, error) {
	f.nextID++
	return &messagingdomain.Message{
		ID:       fmt.Sprintf("msg-%d", f.nextID),
		FamilyID: familyID,
		AuthorID: authorID,
		Body:     body,
	}, nil
}

func newSyncInput(key string, operations ...OperationInput) BatchInput {
	return BatchInput{
		FamilyID:       "fam-1",
		UserID:         "user-1",
		IdempotencyKey: key,
		Operations:     operations,
	}
}

func TestProcessBatchAppliesOperationsInOrder(t *testing.T) {
	repo := newFakeSyncRepo()
	tasks := newFakeSyncTasks()
	svc := NewService(repo, tasks, &fakeSyncMessaging{})

	response, err := svc.ProcessBatch(context.Background(), newSyncInput("key-1",
		OperationInput{
			OperationID: "op-1",
			Type:        OperationTypeCreateTask,
			LocalID:     "local-1",
			CreateTask:  &CreateTaskPayload{ListID: "list-1", Title: "Milk"},
		},
		OperationInput{
			OperationID: "op-2",
			Type:        OperationTypeSetTaskDone,
			SetTaskDone: &SetTaskDonePayload{TaskLocalID: "local-1", Done: true},
		},
		OperationInput{
			OperationID:   "op-3",
			Type:          OperationTypeCreateMessage,
			LocalID:       "local-2",
			CreateMessage: &CreateMessagePayload{Body: "done with groceries"},
		},
	))
	require.NoError(t, err)
	require.Equal(t, BatchStatusSuccess, response.Status)
	require.Equal(t, 3, response.Summary.Applied)
	require.Zero(t, response.Summary.Failed)
	require.Len(t, response.Mappings, 2)

	// set_task_done resolved the in-batch local id.
	require.True(t, tasks.tasks["task-1"].Done)
}

func TestProcessBatchRejectsEmptyAndOversized(t *testing.T) {
	svc := NewService(newFakeSyncRepo(), newFakeSyncTasks(), &fakeSyncMessaging{})

	_, err := svc.ProcessBatch(context.Background(), newSyncInput("key-1"))
	require.Error(t, err)

	operations := make([]OperationInput, MaxBatchOperations+1)
	for i := range operations {
		operations[i] = OperationInput{
			OperationID:   fmt.Sprintf("op-%d", i),
			Type:          OperationTypeCreateMessage,
			CreateMessage: &CreateMessagePayload{Body: "x"},
		}
	}
	_, err = svc.ProcessBatch(context.Background(), newSyncInput("key-2", operations...))
	require.ErrorIs(t, err, ErrBatchTooLarge)
}

func TestProcessBatchReplayReturnsCachedResponse(t *testing.T) {
	repo := newFakeSyncRepo()
	tasks := newFakeSyncTasks()
	svc := NewService(repo, tasks, &fakeSyncMessaging{})

	input := newSyncInput("key-1", OperationInput{
		OperationID: "op-1",
		Type:        OperationTypeCreateTask,
		LocalID:     "local-1",
		CreateTask:  &CreateTaskPayload{ListID: "list-1", Title: "Milk"},
	})

	first, err := svc.ProcessBatch(context.Background(), input)
	require.NoError(t, err)

	replay, err := svc.ProcessBatch(context.Background(), input)
	require.NoError(t, err)
	require.Equal(t, first.SyncID, replay.SyncID)
	require.Equal(t, first.Summary, replay.Summary)
	require.Len(t, tasks.tasks, 1, "replay must not re-apply")
}

func TestProcessBatchIdempotencyKeyPayloadMismatch(t *testing.T) {
	repo := newFakeSyncRepo()
	svc := NewService(repo, newFakeSyncTasks(), &fakeSyncMessaging{})

	_, err := svc.ProcessBatch(context.Background(), newSyncInput("key-1", OperationInput{
		OperationID: "op-1",
		Type:        OperationTypeCreateTask,
		CreateTask:  &CreateTaskPayload{ListID: "list-1", Title: "Milk"},
	}))
	require.NoError(t, err)

	_, err = svc.ProcessBatch(context.Background(), newSyncInput("key-1", OperationInput{
		OperationID: "op-9",
		Type:        OperationTypeCreateTask,
		CreateTask:  &CreateTaskPayload{ListID: "list-1", Title: "Bread"},
	}))
	require.ErrorIs(t, err, ErrIdempotencyKeyPayloadMismatch)
}

func TestProcessBatchDuplicateOperation(t *testing.T) {
	repo := newFakeSyncRepo()
	tasks := newFakeSyncTasks()
	svc := NewService(repo, tasks, &fakeSyncMessaging{})

	operation := OperationInput{
		OperationID: "op-1",
		Type:        OperationTypeCreateTask,
		LocalID:     "local-1",
		CreateTask:  &CreateTaskPayload{ListID: "list-1", Title: "Milk"},
	}

	_, err := svc.ProcessBatch(context.Background(), newSyncInput("key-1", operation))
	require.NoError(t, err)

	// Same operation id in a new batch: dedup at operation level.
	response, err := svc.ProcessBatch(context.Background(), newSyncInput("key-2", operation))
	require.NoError(t, err)
	require.Equal(t, 1, response.Summary.Duplicate)
	require.Zero(t, response.Summary.Applied)
	require.Len(t, tasks.tasks, 1)
	require.Len(t, response.Mappings, 1, "duplicate still reports the mapping")
}

func TestProcessBatchPartialFailure(t *testing.T) {
	repo := newFakeSyncRepo()
	tasks := newFakeSyncTasks()
	svc := NewService(repo, tasks, &fakeSyncMessaging{})

	response, err := svc.ProcessBatch(context.Background(), newSyncInput("key-1",
		OperationInput{
			OperationID: "op-1",
			Type:        OperationTypeCreateTask,
			CreateTask:  &CreateTaskPayload{ListID: "list-1", Title: "Milk"},
		},
		OperationInput{
			OperationID: "op-2",
			Type:        OperationTypeSetTaskDone,
			SetTaskDone: &SetTaskDonePayload{TaskLocalID: "never-created", Done: true},
		},
	))
	require.NoError(t, err)
	require.Equal(t, BatchStatusPartialSuccess, response.Status)
	require.Equal(t, 1, response.Summary.Applied)
	require.Equal(t, 1, response.Summary.Failed)
	require.Equal(t, ErrorCodeDependencyNotResolved, response.Results[1].Error.Code)
}

func TestProcessBatchUnsupportedOperation(t *testing.T) {
	svc := NewService(newFakeSyncRepo(), newFakeSyncTasks(), &fakeSyncMessaging{})

	response, err := svc.ProcessBatch(context.Background(), newSyncInput("key-1", OperationInput{
		OperationID: "op-1",
		Type:        OperationType("delete_everything"),
	}))
	require.NoError(t, err)
	require.Equal(t, BatchStatusFailed, response.Status)
	require.Equal(t, ErrorCodeUnsupportedOperationType, response.Results[0].Error.Code)
}
