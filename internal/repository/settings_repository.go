package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/nurpe/depot-checkins/internal/model"
)

type SettingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// GetOrCreate returns the singleton settings row, creating it with
// defaults on first use.
func (r *SettingsRepository) GetOrCreate(ctx context.Context) (*model.NotificationSettings, error) {
	var settings model.NotificationSettings
	err := r.db.WithContext(ctx).First(&settings).Error
	if err == nil {
		return &settings, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	defaults := model.NewDefaultNotificationSettings()
	if err := r.db.WithContext(ctx).Create(defaults).Error; err != nil {
		return nil, err
	}
	return defaults, nil
}

// Update overwrites the singleton row.
func (r *SettingsRepository) Update(ctx context.Context, settings *model.NotificationSettings) error {
	existing, err := r.GetOrCreate(ctx)
	if err != nil {
		return err
	}
	settings.ID = existing.ID
	return r.db.WithContext(ctx).Save(settings).Error
}
