package domain

import "time"

// BookingStatus статус бронирования во внешней CRM
type BookingStatus string

const (
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
	BookingNoShow    BookingStatus = "no-show"
)

// Booking бронирование, пришедшее через webhook CRM.
// ClickID и LinkID опциональны: атрибуция может не удаться.
type Booking struct {
	ID                int64         `gorm:"primaryKey;column:id" json:"id"`
	ClickID           *int64        `gorm:"column:click_id;index" json:"click_id"`
	LinkID            *int64        `gorm:"column:link_id;index" json:"link_id"`
	ExternalContactID *string       `gorm:"column:external_contact_id;size:255" json:"external_contact_id,omitempty"`
	ExternalBookingID *string       `gorm:"column:external_booking_id;size:255;uniqueIndex" json:"external_booking_id,omitempty"`
	ContactName       string        `gorm:"column:contact_name;size:255;not null" json:"contact_name"`
	ContactEmail      *string       `gorm:"column:contact_email;size:255" json:"contact_email,omitempty"`
	BookedAt          time.Time     `gorm:"column:booked_at;not null;index" json:"booked_at"`
	AppointmentAt     *time.Time    `gorm:"column:appointment_at" json:"appointment_at,omitempty"`
	Status            BookingStatus `gorm:"column:status;size:20;not null;index" json:"status"`
	UTMSource         *string       `gorm:"column:utm_source;size:255" json:"utm_source,omitempty"`
	UTMCampaign       *string       `gorm:"column:utm_campaign;size:255" json:"utm_campaign,omitempty"`
	UTMContent        *string       `gorm:"column:utm_content;size:255" json:"utm_content,omitempty"`
	UTMTerm           *string       `gorm:"column:utm_term;size:255" json:"utm_term,omitempty"`
	TimeToBookSeconds *int64        `gorm:"column:time_to_book_seconds" json:"time_to_book_seconds"`
	CreatedAt         time.Time     `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time     `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	// Relationships
	Click *Click `gorm:"foreignKey:ClickID;constraint:OnDelete:SET NULL" json:"-"`
	Link  *Link  `gorm:"foreignKey:LinkID;constraint:OnDelete:SET NULL" json:"-"`
}

// TableName возвращает название таблицы для GORM
func (Booking) TableName() string {
	return "bookings"
}

// BookingView бронирование с данными о видео и ссылке для списков
type BookingView struct {
	Booking
	VideoID    *int64  `json:"video_id"`
	VideoTitle *string `json:"video_title"`
	VideoSlug  *string `json:"video_slug"`
	LinkLabel  *string `json:"link_label"`
}

// BookingFilter параметры выборки бронирований
type BookingFilter struct {
	VideoID *int64
	Limit   int
}
