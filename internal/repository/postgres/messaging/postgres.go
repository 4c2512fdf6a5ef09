package messaging

import (
	"context"
	"errors"

	"gorm.io/gorm"

	messagingdomain "tribeboard/internal/domain/messaging"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListMessages(ctx context.Context, familyID string, filter messagingdomain.ListFilter) ([]messagingdomain.Message, error) {
	query := r.db.WithContext(ctx).
		Where("family_id = ?", familyID).
		Order("created_at desc").
		Limit(filter.Limit)
	if filter.Before != nil {
		query = query.Where("created_at < ?", *filter.Before)
	}

	var messages []messagingdomain.Message
	if err := query.Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *PostgresRepository) GetMessage(ctx context.Context, familyID, messageID string) (*messagingdomain.Message, error) {
	var message messagingdomain.Message
	if err := r.db.WithContext(ctx).Where("id = ? AND family_id = ?", messageID, familyID).First(&message).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, messagingdomain.ErrMessageNotFound
		}
		return nil, err
	}
	return &message, nil
}

func (r *PostgresRepository) CreateMessage(ctx context.Context, message *messagingdomain.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *PostgresRepository) DeleteMessage(ctx context.Context, messageID string) error {
	return r.db.WithContext(ctx).Delete(&messagingdomain.Message{}, "id = ?", messageID).Error
}
