package schedule

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListEvents(ctx context.Context, familyID string, from, to time.Time) ([]Event, error) {
	if !to.After(from) {
		return nil, ErrInvalidWindow
	}
	return s.repo.ListEvents(ctx, familyID, from, to)
}

func (s *Service) CreateEvent(ctx context.Context, input CreateEventInput) (*Event, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}

	kind := input.Kind
	if kind == "" {
		kind = KindGeneral
	}
	if !ValidKind(kind) {
		return nil, ErrInvalidKind
	}
	if kind != KindSchoolRun && input.DriverID != nil {
		return nil, fmt.Errorf("driver applies to school runs only")
	}

	if !input.EndsAt.After(input.StartsAt) {
		return nil, ErrInvalidWindow
	}

	event := Event{
		ID:        uuid.NewString(),
		FamilyID:  input.FamilyID,
		Title:     title,
		Kind:      kind,
		StartsAt:  input.StartsAt,
		EndsAt:    input.EndsAt,
		AllDay:    input.AllDay,
		Location:  input.Location,
		DriverID:  input.DriverID,
		CreatedBy: input.CreatedBy,
	}
	if err := s.repo.CreateEvent(ctx, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

func (s *Service) UpdateEvent(ctx context.Context, input UpdateEventInput) (*Event, error) {
	event, err := s.repo.GetEvent(ctx, input.FamilyID, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, fmt.Errorf("title is required")
		}
		event.Title = title
	}
	if input.StartsAt != nil {
		event.StartsAt = *input.StartsAt
	}
	if input.EndsAt != nil {
		event.EndsAt = *input.EndsAt
	}
	if !event.EndsAt.After(event.StartsAt) {
		return nil, ErrInvalidWindow
	}
	if input.AllDay != nil {
		event.AllDay = *input.AllDay
	}
	if input.Location != nil {
		if *input.Location == "" {
			event.Location = nil
		} else {
			event.Location = input.Location
		}
	}
	if input.DriverID != nil {
		if event.Kind != KindSchoolRun {
			return nil, fmt.Errorf("driver applies to school runs only")
		}
		if *input.DriverID == "" {
			event.DriverID = nil
		} else {
			event.DriverID = input.DriverID
		}
	}

	if err := s.repo.UpdateEvent(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *Service) DeleteEvent(ctx context.Context, familyID, eventID string) error {
	event, err := s.repo.GetEvent(ctx, familyID, eventID)
	if err != nil {
		return err
	}
	return s.repo.DeleteEvent(ctx, event.ID)
}
