package familycode

// Outcome classifies one generation attempt. Collisions drive plain
// retries; an unreachable remote drives backoff and, past the failure
// threshold, the downgrade to local-only checking.
type Outcome string

const (
	OutcomeUnique            Outcome = "unique"
	OutcomeLocalCollision    Outcome = "collision_local"
	OutcomeRemoteCollision   Outcome = "collision_remote"
	OutcomeRemoteUnreachable Outcome = "remote_unreachable"
)

// Attempt is the ephemeral record of a single candidate draw. It exists
// only for the duration of one Generate call and is never persisted.
type Attempt struct {
	Candidate string
	Outcome   Outcome
	Index     int
}

// Result is a successfully generated code. Degraded is true when
// uniqueness was confirmed against the local store only because the
// remote store was unreachable past the failure threshold; it is an
// informational signal, not an error.
type Result struct {
	Code     string
	Degraded bool
	Attempts int
}
