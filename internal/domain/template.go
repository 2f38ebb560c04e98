package domain

import "time"

// LinkTemplate шаблон ссылки, из которого создаются ссылки для разных видео
type LinkTemplate struct {
	ID             int64     `gorm:"primaryKey;column:id" json:"id"`
	Label          string    `gorm:"column:label;size:255;not null;uniqueIndex" json:"label"`
	DestinationURL string    `gorm:"column:destination_url;type:text;not null" json:"destination_url"`
	IsBookingLink  bool      `gorm:"column:is_booking_link;not null" json:"is_booking_link"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName возвращает название таблицы для GORM
func (LinkTemplate) TableName() string {
	return "link_templates"
}
