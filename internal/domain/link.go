package domain

import "time"

// Link ссылка в описании видео; пара (video_id, label) уникальна среди активных
type Link struct {
	ID             int64      `gorm:"primaryKey;column:id" json:"id"`
	VideoID        int64      `gorm:"column:video_id;not null;uniqueIndex:idx_links_video_label_active,where:active = true" json:"video_id"`
	Label          string     `gorm:"column:label;size:255;not null;uniqueIndex:idx_links_video_label_active,where:active = true" json:"label"`
	DestinationURL string     `gorm:"column:destination_url;type:text;not null" json:"destination_url"`
	IsBookingLink  bool       `gorm:"column:is_booking_link;not null" json:"is_booking_link"`
	ExpiresAt      *time.Time `gorm:"column:expires_at" json:"expires_at,omitempty"`
	Active         bool       `gorm:"column:active;not null;index" json:"active"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	// Relationships
	Video *Video `gorm:"foreignKey:VideoID;constraint:OnDelete:CASCADE" json:"video,omitempty"`
}

// TableName возвращает название таблицы для GORM
func (Link) TableName() string {
	return "links"
}

// IsExpired сообщает, истек ли срок действия ссылки к моменту now
func (l *Link) IsExpired(now time.Time) bool {
	return l.ExpiresAt != nil && l.ExpiresAt.Before(now)
}

// LinkSummary ссылка с количеством кликов
type LinkSummary struct {
	Link
	TotalClicks int64 `json:"total_clicks"`
}
