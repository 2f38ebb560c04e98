package domain

import "time"

// VideoSource классификация источника трафика видео
type VideoSource string

const (
	SourceYouTube   VideoSource = "youtube"
	SourceCommunity VideoSource = "community"
	SourceLinktree  VideoSource = "linktree"
	SourceOther     VideoSource = "other"
)

// Valid сообщает, входит ли значение в допустимый набор
func (s VideoSource) Valid() bool {
	switch s {
	case SourceYouTube, SourceCommunity, SourceLinktree, SourceOther:
		return true
	}
	return false
}

// Video представляет видео, в описании которого размещены ссылки
type Video struct {
	ID             int64       `gorm:"primaryKey;column:id" json:"id"`
	Slug           string      `gorm:"column:slug;size:255;not null;uniqueIndex" json:"slug"`
	Title          string      `gorm:"column:title;size:255;not null" json:"title"`
	Source         VideoSource `gorm:"column:source;size:20;not null" json:"source"`
	YoutubeURL     *string     `gorm:"column:youtube_url;size:500" json:"youtube_url,omitempty"`
	YoutubeVideoID *string     `gorm:"column:youtube_video_id;size:50" json:"youtube_video_id,omitempty"`
	DomainID       *int64      `gorm:"column:domain_id;index" json:"domain_id,omitempty"`
	Archived       bool        `gorm:"column:archived;not null;index" json:"archived"`
	CreatedAt      time.Time   `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time   `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	// Relationships
	Domain *Domain `gorm:"foreignKey:DomainID;constraint:OnDelete:SET NULL" json:"domain,omitempty"`
}

// TableName возвращает название таблицы для GORM
func (Video) TableName() string {
	return "videos"
}

// VideoSummary видео вместе с агрегатами для списка
type VideoSummary struct {
	Video
	LinkCount   int64 `json:"link_count"`
	TotalClicks int64 `json:"total_clicks"`
}
