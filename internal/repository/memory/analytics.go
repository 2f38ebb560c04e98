package memory

import (
	"VLINKS-Backend/internal/domain"
	"VLINKS-Backend/internal/repository"
	"context"
	"math"
	"sort"
	"time"
)

// scopedClicks клики активных ссылок; без videoID только неархивные видео
func (s *MemStorage) scopedClicks(videoID *int64) []*domain.Click {
	result := make([]*domain.Click, 0)
	for _, c := range s.clicks {
		l, ok := s.links[c.LinkID]
		if !ok || !l.Active {
			continue
		}
		if videoID != nil {
			if l.VideoID != *videoID {
				continue
			}
		} else if v, ok := s.videos[l.VideoID]; !ok || v.Archived {
			continue
		}
		result = append(result, c)
	}
	return result
}

func (s *MemStorage) ClickTotals(_ context.Context, cutoffs repository.PeriodCutoffs) (*domain.PeriodTotals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	totals := &domain.PeriodTotals{}
	for _, c := range s.scopedClicks(nil) {
		totals.AllTime++
		if !c.ClickedAt.Before(cutoffs.Since7d) {
			totals.Last7d++
		}
		if !c.ClickedAt.Before(cutoffs.Since30d) {
			totals.Last30d++
		}
	}
	return totals, nil
}

func (s *MemStorage) BookingTotals(_ context.Context, cutoffs repository.PeriodCutoffs) (*domain.PeriodTotals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	totals := &domain.PeriodTotals{}
	for _, b := range s.bookings {
		if b.Status == domain.BookingCancelled {
			continue
		}
		totals.AllTime++
		if !b.BookedAt.Before(cutoffs.Since7d) {
			totals.Last7d++
		}
		if !b.BookedAt.Before(cutoffs.Since30d) {
			totals.Last30d++
		}
	}
	return totals, nil
}

func (s *MemStorage) ConversionTotals(_ context.Context) (*domain.ConversionTotals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	totals := &domain.ConversionTotals{}
	for _, c := range s.clicks {
		if l, ok := s.links[c.LinkID]; ok && l.Active && l.IsBookingLink {
			totals.Clicks++
		}
	}
	for _, b := range s.bookings {
		if b.Status != domain.BookingCancelled {
			totals.Bookings++
		}
	}
	totals.Rate = domain.Rate(totals.Bookings, totals.Clicks)
	return totals, nil
}

func (s *MemStorage) AvgTimeToBook(_ context.Context) (*int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sum, n int64
	for _, b := range s.bookings {
		if b.TimeToBookSeconds == nil || b.Status == domain.BookingCancelled {
			continue
		}
		sum += *b.TimeToBookSeconds
		n++
	}
	if n == 0 {
		return nil, nil
	}
	avg := int64(math.Round(float64(sum) / float64(n)))
	return &avg, nil
}

func (s *MemStorage) VideoConversions(_ context.Context) ([]*domain.VideoConversion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.VideoConversion, 0)
	for _, v := range s.videos {
		if v.Archived {
			continue
		}
		stat := &domain.VideoConversion{VideoID: v.ID, Slug: v.Slug, Title: v.Title}
		hasBookingLinks := false
		for _, l := range s.links {
			if l.VideoID != v.ID || !l.Active || !l.IsBookingLink {
				continue
			}
			hasBookingLinks = true
			stat.BookingClicks += s.countClicks(l.ID)
			for _, b := range s.bookings {
				if b.LinkID != nil && *b.LinkID == l.ID && b.Status != domain.BookingCancelled {
					stat.TotalBookings++
				}
			}
		}
		if !hasBookingLinks {
			continue
		}
		stat.ConversionRate = domain.Rate(stat.TotalBookings, stat.BookingClicks)
		result = append(result, stat)
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].TotalBookings == result[j].TotalBookings {
			return result[i].VideoID < result[j].VideoID
		}
		return result[i].TotalBookings > result[j].TotalBookings
	})
	return result, nil
}

func (s *MemStorage) TopVideos(_ context.Context, limit int) ([]*domain.VideoSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := s.videoSummaries()
	sort.Slice(result, func(i, j int) bool {
		if result[i].TotalClicks == result[j].TotalClicks {
			return result[i].ID < result[j].ID
		}
		return result[i].TotalClicks > result[j].TotalClicks
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *MemStorage) ClickTimes(_ context.Context, videoID *int64, since time.Time) ([]time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]time.Time, 0)
	for _, c := range s.scopedClicks(videoID) {
		if !c.ClickedAt.Before(since) {
			result = append(result, c.ClickedAt)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Before(result[j])
	})
	return result, nil
}

func (s *MemStorage) DeviceBreakdown(_ context.Context, videoID *int64) ([]*domain.Breakdown, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int64)
	for _, c := range s.scopedClicks(videoID) {
		counts[c.GetDeviceType()]++
	}
	return sortedBreakdown(counts, 0), nil
}

func (s *MemStorage) GeoBreakdown(_ context.Context, videoID *int64, limit int) ([]*domain.Breakdown, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int64)
	for _, c := range s.scopedClicks(videoID) {
		if c.Country != nil {
			counts[*c.Country]++
		}
	}
	return sortedBreakdown(counts, limit), nil
}

func (s *MemStorage) RecentClicks(_ context.Context, limit int) ([]*domain.RecentClick, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.RecentClick, 0)
	for _, c := range s.clicks {
		l, ok := s.links[c.LinkID]
		if !ok {
			continue
		}
		v, ok := s.videos[l.VideoID]
		if !ok || v.Archived {
			continue
		}
		result = append(result, &domain.RecentClick{
			Click:          *c,
			Label:          l.Label,
			DestinationURL: l.DestinationURL,
			VideoID:        v.ID,
			VideoTitle:     v.Title,
			VideoSlug:      v.Slug,
		})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].ClickedAt.Equal(result[j].ClickedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].ClickedAt.After(result[j].ClickedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func sortedBreakdown(counts map[string]int64, limit int) []*domain.Breakdown {
	result := make([]*domain.Breakdown, 0, len(counts))
	for k, n := range counts {
		result = append(result, &domain.Breakdown{Key: k, Count: n})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count == result[j].Count {
			return result[i].Key < result[j].Key
		}
		return result[i].Count > result[j].Count
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result
}
