package service

import (
	"VLINKS-Backend/internal/domain"
	"VLINKS-Backend/internal/repository"
	"context"
)

type SettingsService struct {
	storage repository.Storage
}

func NewSettingsService(storage repository.Storage) *SettingsService {
	return &SettingsService{storage: storage}
}

// All возвращает все настройки; незаданные ключи приходят пустыми строками
func (s *SettingsService) All(ctx context.Context) (map[string]string, error) {
	values, err := s.storage.ListSettings(ctx)
	if err != nil {
		return nil, err
	}
	for _, key := range domain.AllowedSettings {
		if _, ok := values[key]; !ok {
			values[key] = ""
		}
	}
	return values, nil
}

// Update сохраняет только разрешенные ключи, остальные игнорируются
func (s *SettingsService) Update(ctx context.Context, values map[string]string) (map[string]string, error) {
	allowed := make(map[string]string, len(values))
	for key, value := range values {
		if domain.IsAllowedSetting(key) {
			allowed[key] = value
		}
	}

	if len(allowed) > 0 {
		if err := s.storage.SetSettings(ctx, allowed); err != nil {
			return nil, err
		}
	}
	return s.All(ctx)
}
