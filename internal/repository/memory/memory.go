package memory

import (
	"VLINKS-Backend/internal/domain"
	"VLINKS-Backend/internal/repository"
	"context"
	"sort"
	"sync"
	"time"
)

// MemStorage хранилище в памяти; используется в тестах и с драйвером memory.
// Наружу всегда отдаются копии записей.
type MemStorage struct {
	mu          sync.RWMutex
	videos      map[int64]*domain.Video
	links       map[int64]*domain.Link
	clicks      map[int64]*domain.Click
	bookings    map[int64]*domain.Booking
	templates   map[int64]*domain.LinkTemplate
	domains     map[int64]*domain.Domain
	settings    map[string]string
	webhookLogs map[int64]*domain.WebhookLog
	seq         int64
}

func New() *MemStorage {
	return &MemStorage{
		videos:      make(map[int64]*domain.Video),
		links:       make(map[int64]*domain.Link),
		clicks:      make(map[int64]*domain.Click),
		bookings:    make(map[int64]*domain.Booking),
		templates:   make(map[int64]*domain.LinkTemplate),
		domains:     make(map[int64]*domain.Domain),
		settings:    make(map[string]string),
		webhookLogs: make(map[int64]*domain.WebhookLog),
	}
}

func (s *MemStorage) nextID() int64 {
	s.seq++
	return s.seq
}

func (s *MemStorage) Ping(_ context.Context) error {
	return nil
}

// --- Video Methods ---

func (s *MemStorage) CreateVideo(_ context.Context, video *domain.Video) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, v := range s.videos {
		if v.Slug == video.Slug {
			return repository.ErrSlugExists
		}
	}

	now := time.Now().UTC()
	video.ID = s.nextID()
	video.CreatedAt, video.UpdatedAt = now, now
	stored := *video
	stored.Domain = nil
	s.videos[video.ID] = &stored
	return nil
}

func (s *MemStorage) GetVideo(_ context.Context, id int64) (*domain.Video, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.videos[id]
	if !ok {
		return nil, repository.ErrVideoNotFound
	}
	video := *v
	if video.DomainID != nil {
		if d, ok := s.domains[*video.DomainID]; ok {
			dc := *d
			video.Domain = &dc
		}
	}
	return &video, nil
}

func (s *MemStorage) ListVideos(_ context.Context) ([]*domain.VideoSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := s.videoSummaries()
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID > result[j].ID
	})
	return result, nil
}

func (s *MemStorage) videoSummaries() []*domain.VideoSummary {
	result := make([]*domain.VideoSummary, 0, len(s.videos))
	for _, v := range s.videos {
		if v.Archived {
			continue
		}
		summary := &domain.VideoSummary{Video: *v}
		for _, l := range s.links {
			if l.VideoID != v.ID || !l.Active {
				continue
			}
			summary.LinkCount++
			summary.TotalClicks += s.countClicks(l.ID)
		}
		result = append(result, summary)
	}
	return result
}

func (s *MemStorage) SlugExists(_ context.Context, slug string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, v := range s.videos {
		if v.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemStorage) UpdateVideo(_ context.Context, video *domain.Video) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.videos[video.ID]
	if !ok {
		return repository.ErrVideoNotFound
	}
	v.Title = video.Title
	v.Source = video.Source
	v.YoutubeURL = video.YoutubeURL
	v.YoutubeVideoID = video.YoutubeVideoID
	v.DomainID = video.DomainID
	v.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemStorage) ArchiveVideo(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.videos[id]
	if !ok {
		return repository.ErrVideoNotFound
	}
	v.Archived = true
	return nil
}

// --- Link Methods ---

func (s *MemStorage) CreateLink(_ context.Context, link *domain.Link) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activeLabelTaken(link.VideoID, link.Label, 0) {
		return repository.ErrLinkLabelExists
	}

	now := time.Now().UTC()
	link.ID = s.nextID()
	link.CreatedAt, link.UpdatedAt = now, now
	stored := *link
	stored.Video = nil
	s.links[link.ID] = &stored
	return nil
}

func (s *MemStorage) activeLabelTaken(videoID int64, label string, exceptID int64) bool {
	for _, l := range s.links {
		if l.ID != exceptID && l.Active && l.VideoID == videoID && l.Label == label {
			return true
		}
	}
	return false
}

func (s *MemStorage) GetLink(_ context.Context, id int64) (*domain.Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.links[id]
	if !ok {
		return nil, repository.ErrLinkNotFound
	}
	link := *l
	return &link, nil
}

func (s *MemStorage) ListVideoLinks(_ context.Context, videoID int64) ([]*domain.LinkSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.LinkSummary, 0)
	for _, l := range s.links {
		if l.VideoID != videoID || !l.Active {
			continue
		}
		result = append(result, &domain.LinkSummary{Link: *l, TotalClicks: s.countClicks(l.ID)})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (s *MemStorage) UpdateLink(_ context.Context, link *domain.Link) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.links[link.ID]
	if !ok {
		return repository.ErrLinkNotFound
	}
	if l.Active && s.activeLabelTaken(l.VideoID, link.Label, l.ID) {
		return repository.ErrLinkLabelExists
	}
	l.Label = link.Label
	l.DestinationURL = link.DestinationURL
	l.IsBookingLink = link.IsBookingLink
	l.ExpiresAt = link.ExpiresAt
	l.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemStorage) DeactivateLink(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.links[id]
	if !ok {
		return repository.ErrLinkNotFound
	}
	l.Active = false
	return nil
}

func (s *MemStorage) ResolveLink(_ context.Context, videoSlug, label string) (*domain.Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, l := range s.links {
		if !l.Active || l.Label != label {
			continue
		}
		v, ok := s.videos[l.VideoID]
		if !ok || v.Archived || v.Slug != videoSlug {
			continue
		}
		link := *l
		video := *v
		link.Video = &video
		return &link, nil
	}
	return nil, repository.ErrLinkNotFound
}

// --- Click Methods ---

func (s *MemStorage) CreateClick(_ context.Context, click *domain.Click) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.links[click.LinkID]; !ok {
		return repository.ErrLinkNotFound
	}
	for _, c := range s.clicks {
		if c.SessionID == click.SessionID {
			return repository.ErrClickExists
		}
	}

	click.ID = s.nextID()
	if click.ClickedAt.IsZero() {
		click.ClickedAt = time.Now().UTC()
	}
	stored := *click
	stored.Link = nil
	s.clicks[click.ID] = &stored
	return nil
}

func (s *MemStorage) GetClickBySessionID(_ context.Context, sessionID string) (*domain.Click, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.clicks {
		if c.SessionID == sessionID {
			click := *c
			return &click, nil
		}
	}
	return nil, repository.ErrClickNotFound
}

func (s *MemStorage) DeleteLinkClicks(_ context.Context, linkID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.links[linkID]; !ok {
		return 0, repository.ErrLinkNotFound
	}
	var n int64
	for id, c := range s.clicks {
		if c.LinkID != linkID {
			continue
		}
		for _, b := range s.bookings {
			if b.ClickID != nil && *b.ClickID == id {
				b.ClickID = nil
			}
		}
		delete(s.clicks, id)
		n++
	}
	return n, nil
}

func (s *MemStorage) countClicks(linkID int64) int64 {
	var n int64
	for _, c := range s.clicks {
		if c.LinkID == linkID {
			n++
		}
	}
	return n
}

// --- Booking Methods ---

func (s *MemStorage) CreateBooking(_ context.Context, booking *domain.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if booking.ExternalBookingID != nil {
		for _, b := range s.bookings {
			if b.ExternalBookingID != nil && *b.ExternalBookingID == *booking.ExternalBookingID {
				return repository.ErrBookingExists
			}
		}
	}

	now := time.Now().UTC()
	booking.ID = s.nextID()
	booking.CreatedAt, booking.UpdatedAt = now, now
	stored := *booking
	stored.Click, stored.Link = nil, nil
	s.bookings[booking.ID] = &stored
	return nil
}

func (s *MemStorage) GetBookingByExternalID(_ context.Context, externalID string) (*domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, b := range s.bookings {
		if b.ExternalBookingID != nil && *b.ExternalBookingID == externalID {
			booking := *b
			return &booking, nil
		}
	}
	return nil, repository.ErrBookingNotFound
}

func (s *MemStorage) UpdateBookingStatus(_ context.Context, id int64, status domain.BookingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return repository.ErrBookingNotFound
	}
	b.Status = status
	b.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemStorage) ListBookings(_ context.Context, filter domain.BookingFilter) ([]*domain.BookingView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.BookingView, 0)
	for _, b := range s.bookings {
		view := &domain.BookingView{Booking: *b}
		if b.LinkID != nil {
			if l, ok := s.links[*b.LinkID]; ok {
				label := l.Label
				view.LinkLabel = &label
				if v, ok := s.videos[l.VideoID]; ok {
					id, title, slug := v.ID, v.Title, v.Slug
					view.VideoID, view.VideoTitle, view.VideoSlug = &id, &title, &slug
				}
			}
		}
		if filter.VideoID != nil && (view.VideoID == nil || *view.VideoID != *filter.VideoID) {
			continue
		}
		result = append(result, view)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].BookedAt.Equal(result[j].BookedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].BookedAt.After(result[j].BookedAt)
	})
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

// --- Template Methods ---

func (s *MemStorage) CreateTemplate(_ context.Context, tpl *domain.LinkTemplate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.templates {
		if t.Label == tpl.Label {
			return repository.ErrTemplateLabelExists
		}
	}

	now := time.Now().UTC()
	tpl.ID = s.nextID()
	tpl.CreatedAt, tpl.UpdatedAt = now, now
	stored := *tpl
	s.templates[tpl.ID] = &stored
	return nil
}

func (s *MemStorage) GetTemplate(_ context.Context, id int64) (*domain.LinkTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.templates[id]
	if !ok {
		return nil, repository.ErrTemplateNotFound
	}
	tpl := *t
	return &tpl, nil
}

func (s *MemStorage) ListTemplates(_ context.Context) ([]*domain.LinkTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.LinkTemplate, 0, len(s.templates))
	for _, t := range s.templates {
		tpl := *t
		result = append(result, &tpl)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Label < result[j].Label
	})
	return result, nil
}

func (s *MemStorage) UpdateTemplate(_ context.Context, tpl *domain.LinkTemplate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.templates[tpl.ID]
	if !ok {
		return repository.ErrTemplateNotFound
	}
	for _, other := range s.templates {
		if other.ID != tpl.ID && other.Label == tpl.Label {
			return repository.ErrTemplateLabelExists
		}
	}
	t.Label = tpl.Label
	t.DestinationURL = tpl.DestinationURL
	t.IsBookingLink = tpl.IsBookingLink
	t.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemStorage) DeleteTemplate(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.templates[id]; !ok {
		return repository.ErrTemplateNotFound
	}
	delete(s.templates, id)
	return nil
}

// --- Domain Methods ---

func (s *MemStorage) CreateDomain(_ context.Context, d *domain.Domain) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.domains {
		if existing.Hostname == d.Hostname {
			return repository.ErrDomainExists
		}
	}
	if len(s.domains) == 0 {
		d.IsDefault = true
	}
	if d.IsDefault {
		s.clearDefault()
	}

	now := time.Now().UTC()
	d.ID = s.nextID()
	d.CreatedAt, d.UpdatedAt = now, now
	stored := *d
	s.domains[d.ID] = &stored
	return nil
}

func (s *MemStorage) clearDefault() {
	for _, d := range s.domains {
		d.IsDefault = false
	}
}

func (s *MemStorage) GetDomain(_ context.Context, id int64) (*domain.Domain, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.domains[id]
	if !ok {
		return nil, repository.ErrDomainNotFound
	}
	dc := *d
	return &dc, nil
}

func (s *MemStorage) ListDomains(_ context.Context) ([]*domain.Domain, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Domain, 0, len(s.domains))
	for _, d := range s.domains {
		dc := *d
		result = append(result, &dc)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].IsDefault != result[j].IsDefault {
			return result[i].IsDefault
		}
		return result[i].Label < result[j].Label
	})
	return result, nil
}

func (s *MemStorage) UpdateDomain(_ context.Context, d *domain.Domain) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.domains[d.ID]
	if !ok {
		return repository.ErrDomainNotFound
	}
	for _, other := range s.domains {
		if other.ID != d.ID && other.Hostname == d.Hostname {
			return repository.ErrDomainExists
		}
	}
	if d.IsDefault {
		s.clearDefault()
	}
	existing.Label = d.Label
	existing.Hostname = d.Hostname
	existing.IsDefault = d.IsDefault
	existing.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemStorage) DeleteDomain(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.domains[id]; !ok {
		return repository.ErrDomainNotFound
	}
	for _, v := range s.videos {
		if v.DomainID != nil && *v.DomainID == id {
			v.DomainID = nil
		}
	}
	delete(s.domains, id)
	return nil
}

// --- Setting Methods ---

func (s *MemStorage) GetSetting(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings[key], nil
}

func (s *MemStorage) ListSettings(_ context.Context) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]string, len(s.settings))
	for k, v := range s.settings {
		result[k] = v
	}
	return result, nil
}

func (s *MemStorage) SetSettings(_ context.Context, values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k, v := range values {
		s.settings[k] = v
	}
	return nil
}

// --- Webhook Log Methods ---

func (s *MemStorage) CreateWebhookLog(_ context.Context, entry *domain.WebhookLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry.ID = s.nextID()
	stored := *entry
	s.webhookLogs[entry.ID] = &stored
	return nil
}

func (s *MemStorage) DeleteWebhookLogsBefore(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for id, entry := range s.webhookLogs {
		if entry.ReceivedAt.Before(before) {
			delete(s.webhookLogs, id)
			deleted++
		}
	}
	return deleted, nil
}

// WebhookLogs возвращает копию журнала webhook, старые первыми
func (s *MemStorage) WebhookLogs() []domain.WebhookLog {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.WebhookLog, 0, len(s.webhookLogs))
	for _, entry := range s.webhookLogs {
		result = append(result, *entry)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result
}
