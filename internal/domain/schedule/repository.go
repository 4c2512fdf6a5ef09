package schedule

import (
	"context"
	"time"
)

type Repository interface {
	ListEvents(ctx context.Context, familyID string, from, to time.Time) ([]Event, error)
	GetEvent(ctx context.Context, familyID, eventID string) (*Event, error)
	CreateEvent(ctx context.Context, event *Event) error
	UpdateEvent(ctx context.Context, event *Event) error
	DeleteEvent(ctx context.Context, eventID string) error
}
