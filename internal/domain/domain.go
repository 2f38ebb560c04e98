package domain

import "time"

// Domain пользовательский домен для коротких ссылок; по умолчанию не более одного
type Domain struct {
	ID        int64     `gorm:"primaryKey;column:id" json:"id"`
	Label     string    `gorm:"column:label;size:255;not null" json:"label"`
	Hostname  string    `gorm:"column:hostname;size:255;not null;uniqueIndex" json:"hostname"`
	IsDefault bool      `gorm:"column:is_default;not null" json:"is_default"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName возвращает название таблицы для GORM
func (Domain) TableName() string {
	return "domains"
}
