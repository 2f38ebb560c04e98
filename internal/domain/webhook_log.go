package domain

import (
	"time"

	"gorm.io/datatypes"
)

// WebhookLog запись аудита входящего webhook
type WebhookLog struct {
	ID         int64          `gorm:"primaryKey;column:id" json:"id"`
	Payload    datatypes.JSON `gorm:"column:payload;not null" json:"payload"`
	EventType  string         `gorm:"column:event_type;size:255" json:"event_type"`
	EventKind  string         `gorm:"column:event_kind;size:20;not null" json:"event_kind"`
	Outcome    string         `gorm:"column:outcome;size:20;not null" json:"outcome"`
	BookingID  *int64         `gorm:"column:booking_id" json:"booking_id,omitempty"`
	Error      *string        `gorm:"column:error;type:text" json:"error,omitempty"`
	ReceivedAt time.Time      `gorm:"column:received_at;not null;index" json:"received_at"`
}

// TableName возвращает название таблицы для GORM
func (WebhookLog) TableName() string {
	return "webhook_logs"
}
