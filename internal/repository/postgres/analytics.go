package postgres

import (
	"VLINKS-Backend/internal/domain"
	"VLINKS-Backend/internal/repository"
	"context"
	"database/sql"
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type periodRow struct {
	AllTime int64 `gorm:"column:all_time"`
	Last7d  int64 `gorm:"column:last_7d"`
	Last30d int64 `gorm:"column:last_30d"`
}

type breakdownRow struct {
	Bucket string `gorm:"column:bucket"`
	Count  int64  `gorm:"column:cnt"`
}

// ClickTotals клики по активным ссылкам неархивных видео за периоды
func (s *PostgresStorage) ClickTotals(ctx context.Context, cutoffs repository.PeriodCutoffs) (*domain.PeriodTotals, error) {
	var row periodRow

	err := s.db.WithContext(ctx).Raw(`
		SELECT COUNT(*) AS all_time,
			COALESCE(SUM(CASE WHEN c.clicked_at >= ? THEN 1 ELSE 0 END), 0) AS last_7d,
			COALESCE(SUM(CASE WHEN c.clicked_at >= ? THEN 1 ELSE 0 END), 0) AS last_30d
		FROM clicks c
		JOIN links l ON l.id = c.link_id
		JOIN videos v ON v.id = l.video_id
		WHERE v.archived = ? AND l.active = ?`,
		cutoffs.Since7d, cutoffs.Since30d, false, true).Scan(&row).Error
	if err != nil {
		s.log.Error("failed to get click totals", zap.Error(err))
		return nil, fmt.Errorf("failed to get click totals: %w", err)
	}

	return &domain.PeriodTotals{Last7d: row.Last7d, Last30d: row.Last30d, AllTime: row.AllTime}, nil
}

// BookingTotals неотмененные бронирования за периоды
func (s *PostgresStorage) BookingTotals(ctx context.Context, cutoffs repository.PeriodCutoffs) (*domain.PeriodTotals, error) {
	var row periodRow

	err := s.db.WithContext(ctx).Raw(`
		SELECT COUNT(*) AS all_time,
			COALESCE(SUM(CASE WHEN booked_at >= ? THEN 1 ELSE 0 END), 0) AS last_7d,
			COALESCE(SUM(CASE WHEN booked_at >= ? THEN 1 ELSE 0 END), 0) AS last_30d
		FROM bookings
		WHERE status <> ?`,
		cutoffs.Since7d, cutoffs.Since30d, domain.BookingCancelled).Scan(&row).Error
	if err != nil {
		s.log.Error("failed to get booking totals", zap.Error(err))
		return nil, fmt.Errorf("failed to get booking totals: %w", err)
	}

	return &domain.PeriodTotals{Last7d: row.Last7d, Last30d: row.Last30d, AllTime: row.AllTime}, nil
}

// ConversionTotals клики по активным booking-ссылкам против неотмененных бронирований
func (s *PostgresStorage) ConversionTotals(ctx context.Context) (*domain.ConversionTotals, error) {
	var totals domain.ConversionTotals

	err := s.db.WithContext(ctx).Table("clicks AS c").
		Joins("JOIN links l ON l.id = c.link_id").
		Where("l.is_booking_link = ? AND l.active = ?", true, true).
		Count(&totals.Clicks).Error
	if err != nil {
		s.log.Error("failed to count booking link clicks", zap.Error(err))
		return nil, fmt.Errorf("failed to count booking clicks: %w", err)
	}

	err = s.db.WithContext(ctx).Model(&domain.Booking{}).
		Where("status <> ?", domain.BookingCancelled).
		Count(&totals.Bookings).Error
	if err != nil {
		s.log.Error("failed to count bookings", zap.Error(err))
		return nil, fmt.Errorf("failed to count bookings: %w", err)
	}

	totals.Rate = domain.Rate(totals.Bookings, totals.Clicks)
	return &totals, nil
}

// AvgTimeToBook среднее время до бронирования в секундах; nil если данных нет
func (s *PostgresStorage) AvgTimeToBook(ctx context.Context) (*int64, error) {
	var avg sql.NullFloat64

	err := s.db.WithContext(ctx).Model(&domain.Booking{}).
		Select("AVG(time_to_book_seconds)").
		Where("time_to_book_seconds IS NOT NULL AND status <> ?", domain.BookingCancelled).
		Row().Scan(&avg)
	if err != nil {
		s.log.Error("failed to get average time to book", zap.Error(err))
		return nil, fmt.Errorf("failed to get average time to book: %w", err)
	}

	if !avg.Valid {
		return nil, nil
	}
	rounded := int64(math.Round(avg.Float64))
	return &rounded, nil
}

// VideoConversions конверсия по неархивным видео, имеющим booking-ссылки
func (s *PostgresStorage) VideoConversions(ctx context.Context) ([]*domain.VideoConversion, error) {
	var stats []*domain.VideoConversion

	err := s.db.WithContext(ctx).Raw(`
		SELECT v.id AS video_id, v.slug, v.title,
			COUNT(DISTINCT c.id) AS booking_clicks,
			COUNT(DISTINCT b.id) AS total_bookings
		FROM videos v
		JOIN links l ON l.video_id = v.id AND l.is_booking_link = ? AND l.active = ?
		LEFT JOIN clicks c ON c.link_id = l.id
		LEFT JOIN bookings b ON b.link_id = l.id AND b.status <> ?
		WHERE v.archived = ?
		GROUP BY v.id, v.slug, v.title`,
		true, true, domain.BookingCancelled, false).Scan(&stats).Error
	if err != nil {
		s.log.Error("failed to get video conversions", zap.Error(err))
		return nil, fmt.Errorf("failed to get video conversions: %w", err)
	}

	for _, stat := range stats {
		stat.ConversionRate = domain.Rate(stat.TotalBookings, stat.BookingClicks)
	}
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].TotalBookings > stats[j].TotalBookings
	})
	return stats, nil
}

// TopVideos неархивные видео по количеству кликов
func (s *PostgresStorage) TopVideos(ctx context.Context, limit int) ([]*domain.VideoSummary, error) {
	var videos []*domain.VideoSummary

	err := s.db.WithContext(ctx).Raw(`
		SELECT v.*, COUNT(DISTINCT l.id) AS link_count, COUNT(c.id) AS total_clicks
		FROM videos v
		LEFT JOIN links l ON l.video_id = v.id AND l.active = ?
		LEFT JOIN clicks c ON c.link_id = l.id
		WHERE v.archived = ?
		GROUP BY v.id
		ORDER BY total_clicks DESC, v.id ASC
		LIMIT ?`, true, false, limit).Scan(&videos).Error
	if err != nil {
		s.log.Error("failed to get top videos", zap.Error(err))
		return nil, fmt.Errorf("failed to get top videos: %w", err)
	}

	return videos, nil
}

// ClickTimes время кликов начиная с since; группировка по дням выполняется в сервисе
func (s *PostgresStorage) ClickTimes(ctx context.Context, videoID *int64, since time.Time) ([]time.Time, error) {
	var times []time.Time

	query := scopedClicks(s.db.WithContext(ctx), videoID).Where("c.clicked_at >= ?", since)
	if err := query.Order("c.clicked_at ASC").Pluck("c.clicked_at", &times).Error; err != nil {
		s.log.Error("failed to get click times", zap.Error(err))
		return nil, fmt.Errorf("failed to get click times: %w", err)
	}

	return times, nil
}

// DeviceBreakdown клики по типу устройства
func (s *PostgresStorage) DeviceBreakdown(ctx context.Context, videoID *int64) ([]*domain.Breakdown, error) {
	var rows []breakdownRow

	err := scopedClicks(s.db.WithContext(ctx), videoID).
		Select("COALESCE(c.device_type, 'unknown') AS bucket, COUNT(*) AS cnt").
		Group("COALESCE(c.device_type, 'unknown')").
		Order("cnt DESC").
		Scan(&rows).Error
	if err != nil {
		s.log.Error("failed to get device breakdown", zap.Error(err))
		return nil, fmt.Errorf("failed to get device breakdown: %w", err)
	}

	return toBreakdown(rows), nil
}

// GeoBreakdown клики по стране, не более limit стран
func (s *PostgresStorage) GeoBreakdown(ctx context.Context, videoID *int64, limit int) ([]*domain.Breakdown, error) {
	var rows []breakdownRow

	err := scopedClicks(s.db.WithContext(ctx), videoID).
		Select("c.country AS bucket, COUNT(*) AS cnt").
		Where("c.country IS NOT NULL").
		Group("c.country").
		Order("cnt DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		s.log.Error("failed to get geo breakdown", zap.Error(err))
		return nil, fmt.Errorf("failed to get geo breakdown: %w", err)
	}

	return toBreakdown(rows), nil
}

// RecentClicks последние клики по неархивным видео
func (s *PostgresStorage) RecentClicks(ctx context.Context, limit int) ([]*domain.RecentClick, error) {
	var clicks []*domain.RecentClick

	err := s.db.WithContext(ctx).Raw(`
		SELECT c.*, l.label, l.destination_url, v.id AS video_id, v.title AS video_title, v.slug AS video_slug
		FROM clicks c
		JOIN links l ON l.id = c.link_id
		JOIN videos v ON v.id = l.video_id
		WHERE v.archived = ?
		ORDER BY c.clicked_at DESC, c.id DESC
		LIMIT ?`, false, limit).Scan(&clicks).Error
	if err != nil {
		s.log.Error("failed to get recent clicks", zap.Error(err))
		return nil, fmt.Errorf("failed to get recent clicks: %w", err)
	}

	return clicks, nil
}

// scopedClicks клики активных ссылок; без videoID только неархивные видео
func scopedClicks(db *gorm.DB, videoID *int64) *gorm.DB {
	query := db.Table("clicks AS c").
		Joins("JOIN links l ON l.id = c.link_id").
		Where("l.active = ?", true)

	if videoID != nil {
		return query.Where("l.video_id = ?", *videoID)
	}
	return query.Joins("JOIN videos v ON v.id = l.video_id").Where("v.archived = ?", false)
}

func toBreakdown(rows []breakdownRow) []*domain.Breakdown {
	result := make([]*domain.Breakdown, 0, len(rows))
	for _, row := range rows {
		result = append(result, &domain.Breakdown{Key: row.Bucket, Count: row.Count})
	}
	return result
}
