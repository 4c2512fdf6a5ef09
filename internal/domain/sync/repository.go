package sync

import "context"

// Repository records batch and operation state for offline replay. BeginBatch
// and ReserveOperation report whether the row was created; when it already
// existed the stored record is returned so callers can replay or skip.
type Repository interface {
	BeginBatch(ctx context.Context, batch *BatchRecord) (bool, *BatchRecord, error)
	CompleteBatch(ctx context.Context, batchID string, status BatchState, responseJSON []byte) error
	ReserveOperation(ctx context.Context, operation *OperationRecord) (bool, *OperationRecord, error)
	UpdateOperation(ctx context.Context, operation *OperationRecord) error
	FindServerIDByLocalID(ctx context.Context, familyID, userID string, entity Entity, localID string) (string, bool, error)
}
