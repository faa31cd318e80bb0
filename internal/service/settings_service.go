package service

import (
	"context"
	"fmt"

	"github.com/nurpe/depot-checkins/internal/model"
	"github.com/nurpe/depot-checkins/internal/repository"
)

type SettingsService struct {
	settings *repository.SettingsRepository
}

func NewSettingsService(settings *repository.SettingsRepository) *SettingsService {
	return &SettingsService{settings: settings}
}

func (s *SettingsService) Get(ctx context.Context) (*model.NotificationSettings, error) {
	return s.settings.GetOrCreate(ctx)
}

func (s *SettingsService) Update(ctx context.Context, settings *model.NotificationSettings) error {
	if settings.DelayThresholdHours < 1 {
		return fmt.Errorf("%w: delay threshold must be at least 1 hour", ErrInvalidInput)
	}
	return s.settings.Update(ctx, settings)
}
