package sync

import "errors"

// Batch-level failures. Per-operation failures are reported inline in the
// batch response instead, so a partially failed batch still returns 200.
var (
	ErrBatchTooLarge                 = errors.New("sync: batch exceeds operation limit")
	ErrIdempotencyKeyPayloadMismatch = errors.New("sync: idempotency key reused with different payload")
	ErrBatchInProgress               = errors.New("sync: batch is still being processed")
)
