package domain

import "time"

// PeriodTotals счетчики за 7 дней, 30 дней и за все время
type PeriodTotals struct {
	Last7d  int64 `json:"total_7d"`
	Last30d int64 `json:"total_30d"`
	AllTime int64 `json:"total_all_time"`
}

// ConversionTotals клики по booking-ссылкам и неотмененные бронирования
type ConversionTotals struct {
	Clicks   int64   `json:"clicks"`
	Bookings int64   `json:"bookings"`
	Rate     float64 `json:"rate"`
}

// VideoConversion статистика конверсии по видео
type VideoConversion struct {
	VideoID        int64   `json:"id"`
	Slug           string  `json:"slug"`
	Title          string  `json:"title"`
	BookingClicks  int64   `json:"booking_clicks"`
	TotalBookings  int64   `json:"total_bookings"`
	ConversionRate float64 `json:"conversion_rate"`
}

// DailyCount количество за день (YYYY-MM-DD)
type DailyCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// Breakdown количество по значению признака (устройство, страна)
type Breakdown struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

// RecentClick клик с данными о ссылке и видео
type RecentClick struct {
	Click
	Label          string `json:"label"`
	DestinationURL string `json:"destination_url"`
	VideoID        int64  `json:"video_id"`
	VideoTitle     string `json:"video_title"`
	VideoSlug      string `json:"video_slug"`
}

// Rate процент с одним знаком после запятой
func Rate(part, total int64) float64 {
	if total <= 0 {
		return 0
	}
	r := float64(part) / float64(total) * 100
	return float64(int64(r*10+0.5)) / 10
}

// DayKey ключ дня в UTC
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
