package postgres

import (
	"VLINKS-Backend/internal/domain"
	"VLINKS-Backend/internal/repository"
	"context"
	"fmt"

	"go.uber.org/zap"
)

// CreateBooking сохраняет бронирование; дубликат внешнего ID дает ErrBookingExists
func (s *PostgresStorage) CreateBooking(ctx context.Context, booking *domain.Booking) error {
	if err := s.db.WithContext(ctx).Create(booking).Error; err != nil {
		if isDuplicate(err) {
			return repository.ErrBookingExists
		}
		s.log.Error("failed to create booking", zap.Error(err))
		return fmt.Errorf("failed to create booking: %w", err)
	}

	return nil
}

// GetBookingByExternalID получает бронирование по ID во внешней CRM
func (s *PostgresStorage) GetBookingByExternalID(ctx context.Context, externalID string) (*domain.Booking, error) {
	var booking domain.Booking

	err := s.db.WithContext(ctx).Where("external_booking_id = ?", externalID).First(&booking).Error
	if isNotFound(err) {
		return nil, repository.ErrBookingNotFound
	}
	if err != nil {
		s.log.Error("failed to get booking", zap.String("external_booking_id", externalID), zap.Error(err))
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	return &booking, nil
}

// UpdateBookingStatus меняет только статус бронирования
func (s *PostgresStorage) UpdateBookingStatus(ctx context.Context, id int64, status domain.BookingStatus) error {
	result := s.db.WithContext(ctx).Model(&domain.Booking{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		s.log.Error("failed to update booking status", zap.Int64("booking_id", id), zap.Error(result.Error))
		return fmt.Errorf("failed to update booking status: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return repository.ErrBookingNotFound
	}

	return nil
}

// ListBookings возвращает бронирования с данными о ссылке и видео, новые первыми
func (s *PostgresStorage) ListBookings(ctx context.Context, filter domain.BookingFilter) ([]*domain.BookingView, error) {
	var bookings []*domain.BookingView

	query := s.db.WithContext(ctx).
		Table("bookings AS b").
		Select("b.*, v.id AS video_id, v.title AS video_title, v.slug AS video_slug, l.label AS link_label").
		Joins("LEFT JOIN links l ON l.id = b.link_id").
		Joins("LEFT JOIN videos v ON v.id = l.video_id").
		Order("b.booked_at DESC, b.id DESC")

	if filter.VideoID != nil {
		query = query.Where("l.video_id = ?", *filter.VideoID)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	if err := query.Scan(&bookings).Error; err != nil {
		s.log.Error("failed to list bookings", zap.Error(err))
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	return bookings, nil
}
