package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeScheduleRepo struct {
	events map[string]*Event
}

func newFakeScheduleRepo() *fakeScheduleRepo {
	return &fakeScheduleRepo{events: make(map[string]*Event)}
}

func (r *fakeScheduleRepo) ListEvents(ctx context.Context, familyID string, from, to time.Time) ([]Event, error) {
	result := make([]Event, 0)
	for _, event := range r.events {
		if event.FamilyID != familyID {
			continue
		}
		if event.StartsAt.Before(to) && event.EndsAt.After(from) {
			result = append(result, *event)
		}
	}
	return result, nil
}

func (r *fakeScheduleRepo) GetEvent(ctx context.Context, familyID, eventID string) (*Event, error) {
	event, ok := r.events[eventID]
	if !ok || event.FamilyID != familyID {
		return nil, ErrEventNotFound
	}
	copied := *event
	return &copied, nil
}

func (r *fakeScheduleRepo) CreateEvent(ctx context.Context, event *Event) error {
	copied := *event
	r.events[event.ID] = &copied
	return nil
}

func (r *fakeScheduleRepo) UpdateEvent(ctx context.Context, event *Event) error {
	if _, ok := r.events[event.ID]; !ok {
		return ErrEventNotFound
	}
	copied := *event
	r.events[event.ID] = &copied
	return nil
}

func (r *fakeScheduleRepo) DeleteEvent(ctx context.Context, eventID string) error {
	delete(r.events, eventID)
	return nil
}

func TestCreateEventDefaultsToGeneralKind(t *testing.T) {
	svc := NewService(newFakeScheduleRepo())

	start := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	event, err := svc.CreateEvent(context.Background(), CreateEventInput{
		FamilyID:  "fam-1",
		Title:     "Dentist",
		StartsAt:  start,
		EndsAt:    start.Add(time.Hour),
		CreatedBy: "user-1",
	})
	require.NoError(t, err)
	require.Equal(t, KindGeneral, event.Kind)
}

func TestCreateSchoolRunWithDriver(t *testing.T) {
	svc := NewService(newFakeScheduleRepo())

	driver := "user-2"
	start := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	event, err := svc.CreateEvent(context.Background(), CreateEventInput{
		FamilyID:  "fam-1",
		Title:     "Morning run",
		Kind:      KindSchoolRun,
		StartsAt:  start,
		EndsAt:    start.Add(30 * time.Minute),
		DriverID:  &driver,
		CreatedBy: "user-1",
	})
	require.NoError(t, err)
	require.Equal(t, KindSchoolRun, event.Kind)
	require.Equal(t, "user-2", *event.DriverID)
}

func TestCreateEventRejectsDriverOnGeneralKind(t *testing.T) {
	svc := NewService(newFakeScheduleRepo())

	driver := "user-2"
	start := time.Now()
	_, err := svc.CreateEvent(context.Background(), CreateEventInput{
		FamilyID: "fam-1",
		Title:    "Dentist",
		StartsAt: start,
		EndsAt:   start.Add(time.Hour),
		DriverID: &driver,
	})
	require.Error(t, err)
}

func TestCreateEventRejectsInvertedWindow(t *testing.T) {
	svc := NewService(newFakeScheduleRepo())

	start := time.Now()
	_, err := svc.CreateEvent(context.Background(), CreateEventInput{
		FamilyID: "fam-1",
		Title:    "Dentist",
		StartsAt: start,
		EndsAt:   start.Add(-time.Hour),
	})
	require.ErrorIs(t, err, ErrInvalidWindow)
}

func TestUpdateEventKeepsWindowValid(t *testing.T) {
	repo := newFakeScheduleRepo()
	svc := NewService(repo)

	start := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	event, err := svc.CreateEvent(context.Background(), CreateEventInput{
		FamilyID: "fam-1",
		Title:    "Dentist",
		StartsAt: start,
		EndsAt:   start.Add(time.Hour),
	})
	require.NoError(t, err)

	badEnd := start.Add(-time.Hour)
	_, err = svc.UpdateEvent(context.Background(), UpdateEventInput{
		ID:       event.ID,
		FamilyID: "fam-1",
		EndsAt:   &badEnd,
	})
	require.ErrorIs(t, err, ErrInvalidWindow)
}

func TestListEventsWindowed(t *testing.T) {
	repo := newFakeScheduleRepo()
	svc := NewService(repo)

	day := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	for hour := 8; hour <= 20; hour += 6 {
		start := day.Add(time.Duration(hour) * time.Hour)
		_, err := svc.CreateEvent(context.Background(), CreateEventInput{
			FamilyID: "fam-1",
			Title:    "Slot",
			StartsAt: start,
			EndsAt:   start.Add(time.Hour),
		})
		require.NoError(t, err)
	}

	events, err := svc.ListEvents(context.Background(), "fam-1", day, day.Add(12*time.Hour))
	require.NoError(t, err)
	require.Len(t, events, 1)

	_, err = svc.ListEvents(context.Background(), "fam-1", day, day)
	require.ErrorIs(t, err, ErrInvalidWindow)
}
