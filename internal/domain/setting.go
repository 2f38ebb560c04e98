package domain

import "time"

// Ключи настроек
const (
	SettingWebhookSecret     = "ghl_webhook_secret"
	SettingCRMAPIKey         = "ghl_api_key"
	SettingNotificationEmail = "notification_email"
)

// AllowedSettings набор ключей, которые можно изменять через API
var AllowedSettings = []string{
	SettingWebhookSecret,
	SettingCRMAPIKey,
	SettingNotificationEmail,
}

// IsAllowedSetting проверяет ключ настройки
func IsAllowedSetting(key string) bool {
	for _, k := range AllowedSettings {
		if k == key {
			return true
		}
	}
	return false
}

// Setting пара ключ-значение
type Setting struct {
	Key       string    `gorm:"primaryKey;column:key;size:64" json:"key"`
	Value     string    `gorm:"column:value;type:text;not null" json:"value"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName возвращает название таблицы для GORM
func (Setting) TableName() string {
	return "settings"
}
