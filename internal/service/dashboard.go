package service

import (
	"VLINKS-Backend/internal/domain"
	"VLINKS-Backend/internal/repository"
	"context"
	"fmt"
	"sort"
	"time"
)

const (
	topVideosLimit      = 5
	recentClicksLimit   = 10
	recentBookingsLimit = 5
	geoBreakdownLimit   = 20
	bookingsListLimit   = 20
)

// rangeDays окна для графиков; 0 означает "за все время"
var rangeDays = map[string]int{
	"7d":  7,
	"30d": 30,
	"90d": 90,
	"all": 0,
}

// TopVideo видео с кликами, ссылками и конверсией
type TopVideo struct {
	domain.VideoSummary
	TotalBookings  int64   `json:"total_bookings"`
	ConversionRate float64 `json:"conversion_rate"`
}

// Summary сводка для главной страницы
type Summary struct {
	Clicks         *domain.PeriodTotals     `json:"clicks"`
	Bookings       *domain.PeriodTotals     `json:"bookings"`
	Conversion     *domain.ConversionTotals `json:"conversion"`
	AvgTimeToBook  *int64                   `json:"avg_time_to_book"`
	TopVideos      []*TopVideo              `json:"top_videos"`
	RecentActivity []*domain.RecentClick    `json:"recent_activity"`
	RecentBookings []*domain.BookingView    `json:"recent_bookings"`
}

type DashboardService struct {
	storage repository.Storage
	now     func() time.Time
}

func NewDashboardService(storage repository.Storage) *DashboardService {
	return &DashboardService{
		storage: storage,
		now:     time.Now,
	}
}

// WithClock подменяет источник времени
func (s *DashboardService) WithClock(now func() time.Time) *DashboardService {
	s.now = now
	return s
}

func (s *DashboardService) Summary(ctx context.Context) (*Summary, error) {
	now := s.now().UTC()
	cutoffs := repository.PeriodCutoffs{
		Since7d:  now.AddDate(0, 0, -7),
		Since30d: now.AddDate(0, 0, -30),
	}

	clicks, err := s.storage.ClickTotals(ctx, cutoffs)
	if err != nil {
		return nil, fmt.Errorf("failed to get click totals: %w", err)
	}
	bookings, err := s.storage.BookingTotals(ctx, cutoffs)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking totals: %w", err)
	}
	conversion, err := s.storage.ConversionTotals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get conversion: %w", err)
	}
	avg, err := s.storage.AvgTimeToBook(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get average time to book: %w", err)
	}
	top, err := s.storage.TopVideos(ctx, topVideosLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top videos: %w", err)
	}
	conversions, err := s.storage.VideoConversions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get video conversions: %w", err)
	}
	recent, err := s.storage.RecentClicks(ctx, recentClicksLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent clicks: %w", err)
	}
	recentBookings, err := s.storage.ListBookings(ctx, domain.BookingFilter{Limit: recentBookingsLimit})
	if err != nil {
		return nil, fmt.Errorf("failed to get recent bookings: %w", err)
	}

	byVideo := make(map[int64]*domain.VideoConversion, len(conversions))
	for _, vc := range conversions {
		byVideo[vc.VideoID] = vc
	}
	topVideos := make([]*TopVideo, 0, len(top))
	for _, v := range top {
		tv := &TopVideo{VideoSummary: *v}
		if vc, ok := byVideo[v.ID]; ok {
			tv.TotalBookings = vc.TotalBookings
			tv.ConversionRate = vc.ConversionRate
		}
		topVideos = append(topVideos, tv)
	}

	return &Summary{
		Clicks:         clicks,
		Bookings:       bookings,
		Conversion:     conversion,
		AvgTimeToBook:  avg,
		TopVideos:      topVideos,
		RecentActivity: recent,
		RecentBookings: recentBookings,
	}, nil
}

// ClicksOverTime считает клики по дням (UTC). Неизвестный диапазон
// заменяется на defaultRange. videoID == nil означает все видео.
func (s *DashboardService) ClicksOverTime(ctx context.Context, videoID *int64, rangeKey, defaultRange string) ([]*domain.DailyCount, error) {
	days, ok := rangeDays[rangeKey]
	if !ok {
		days = rangeDays[defaultRange]
	}

	var since time.Time
	if days > 0 {
		since = s.now().UTC().AddDate(0, 0, -days)
	}

	if videoID != nil {
		if _, err := s.storage.GetVideo(ctx, *videoID); err != nil {
			return nil, err
		}
	}

	times, err := s.storage.ClickTimes(ctx, videoID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get click times: %w", err)
	}

	return bucketByDay(times), nil
}

func bucketByDay(times []time.Time) []*domain.DailyCount {
	counts := make(map[string]int64)
	for _, t := range times {
		counts[domain.DayKey(t)]++
	}

	result := make([]*domain.DailyCount, 0, len(counts))
	for day, n := range counts {
		result = append(result, &domain.DailyCount{Date: day, Count: n})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Date < result[j].Date
	})
	return result
}

func (s *DashboardService) Devices(ctx context.Context, videoID *int64) ([]*domain.Breakdown, error) {
	return s.storage.DeviceBreakdown(ctx, videoID)
}

func (s *DashboardService) Geo(ctx context.Context, videoID *int64) ([]*domain.Breakdown, error) {
	return s.storage.GeoBreakdown(ctx, videoID, geoBreakdownLimit)
}

// VideoBookings бронирования, атрибутированные ссылкам видео
func (s *DashboardService) VideoBookings(ctx context.Context, videoID int64) ([]*domain.BookingView, error) {
	if _, err := s.storage.GetVideo(ctx, videoID); err != nil {
		return nil, err
	}
	return s.storage.ListBookings(ctx, domain.BookingFilter{VideoID: &videoID})
}

func (s *DashboardService) RecentBookings(ctx context.Context) ([]*domain.BookingView, error) {
	return s.storage.ListBookings(ctx, domain.BookingFilter{Limit: bookingsListLimit})
}
