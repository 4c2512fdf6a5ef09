package user

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	userdomain "tribeboard/internal/domain/user"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) UpsertProfile(ctx context.Context, profile *userdomain.Profile) error {
	updates := map[string]interface{}{
		"updated_at": time.Now().UTC(),
	}
	if profile.Email != nil {
		updates["email"] = profile.Email
	}
	if profile.Name != nil {
		updates["name"] = profile.Name
	}
	if profile.AvatarURL != nil {
		updates["avatar_url"] = profile.AvatarURL
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Assignments(updates),
		}).
		Create(profile).Error
}
