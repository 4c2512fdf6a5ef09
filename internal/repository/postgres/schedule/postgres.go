package schedule

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	scheduledomain "tribeboard/internal/domain/schedule"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListEvents(ctx context.Context, familyID string, from, to time.Time) ([]scheduledomain.Event, error) {
	var events []scheduledomain.Event
	if err := r.db.WithContext(ctx).
		Where("family_id = ?", familyID).
		Where("starts_at < ? AND ends_at > ?", to, from).
		Order("starts_at asc").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *PostgresRepository) GetEvent(ctx context.Context, familyID, eventID string) (*scheduledomain.Event, error) {
	var event scheduledomain.Event
	if err := r.db.WithContext(ctx).Where("id = ? AND family_id = ?", eventID, familyID).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, scheduledomain.ErrEventNotFound
		}
		return nil, err
	}
	return &event, nil
}

func (r *PostgresRepository) CreateEvent(ctx context.Context, event *scheduledomain.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *PostgresRepository) UpdateEvent(ctx context.Context, event *scheduledomain.Event) error {
	return r.db.WithContext(ctx).
		Model(&scheduledomain.Event{}).
		Where("id = ?", event.ID).
		Updates(map[string]interface{}{
			"title":     event.Title,
			"starts_at": event.StartsAt,
			"ends_at":   event.EndsAt,
			"all_day":   event.AllDay,
			"location":  event.Location,
			"driver_id": event.DriverID,
		}).Error
}

func (r *PostgresRepository) DeleteEvent(ctx context.Context, eventID string) error {
	return r.db.WithContext(ctx).Delete(&scheduledomain.Event{}, "id = ?", eventID).Error
}
