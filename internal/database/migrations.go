package database

import (
	"VLINKS-Backend/internal/domain"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AutoMigrate выполняет автоматические миграции для всех доменных моделей
func AutoMigrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("starting database auto-migration")

	// Порядок миграций важен из-за внешних ключей
	models := []interface{}{
		&domain.Domain{},       // Сначала домены
		&domain.Video{},        // Видео (ссылаются на домены)
		&domain.Link{},         // Ссылки (зависят от видео)
		&domain.Click{},        // Клики (зависят от ссылок)
		&domain.Booking{},      // Бронирования (слабые ссылки на клики и ссылки)
		&domain.LinkTemplate{}, // Шаблоны
		&domain.Setting{},      // Настройки
		&domain.WebhookLog{},   // Журнал webhook
	}

	log.Info("migrating database models", zap.Int("total_models", len(models)))

	for i, model := range models {
		modelName := fmt.Sprintf("%T", model)
		log.Debug("migrating model",
			zap.String("model", modelName),
			zap.Int("step", i+1),
			zap.Int("total", len(models)))

		if err := db.AutoMigrate(model); err != nil {
			log.Error("failed to migrate model",
				zap.String("model", modelName),
				zap.Error(err))
			return fmt.Errorf("failed to migrate model %s: %w", modelName, err)
		}
	}

	log.Info("database auto-migration completed successfully", zap.Int("migrated_models", len(models)))
	return nil
}

// SeedData создает пустые значения настроек, если их еще нет
func SeedData(db *gorm.DB, log *zap.Logger) error {
	log.Info("starting database seeding")

	settings := make([]domain.Setting, 0, len(domain.AllowedSettings))
	for _, key := range domain.AllowedSettings {
		settings = append(settings, domain.Setting{Key: key, Value: ""})
	}

	result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&settings)
	if result.Error != nil {
		log.Error("failed to seed settings", zap.Error(result.Error))
		return fmt.Errorf("failed to seed settings: %w", result.Error)
	}

	log.Info("database seeding completed", zap.Int64("created_settings", result.RowsAffected))
	return nil
}
