package user

import "context"

// Repository persists profile snapshots taken from auth tokens. Upserts are
// keyed by user id so repeated requests converge on the latest claims.
type Repository interface {
	UpsertProfile(ctx context.Context, profile *Profile) error
}
