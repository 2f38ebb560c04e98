package repository

import (
	"VLINKS-Backend/internal/domain"
	"context"
	"errors"
	"time"
)

var (
	ErrVideoNotFound    = errors.New("video not found")
	ErrLinkNotFound     = errors.New("link not found")
	ErrClickNotFound    = errors.New("click not found")
	ErrBookingNotFound  = errors.New("booking not found")
	ErrTemplateNotFound = errors.New("template not found")
	ErrDomainNotFound   = errors.New("domain not found")

	ErrSlugExists          = errors.New("slug already exists")
	ErrLinkLabelExists     = errors.New("a link with this label already exists for this video")
	ErrTemplateLabelExists = errors.New("a template with this label already exists")
	ErrDomainExists        = errors.New("domain already exists")
	ErrBookingExists       = errors.New("booking already exists")
	ErrClickExists         = errors.New("click with this session id already exists")
)

// PeriodCutoffs границы периодов для агрегатов
type PeriodCutoffs struct {
	Since7d  time.Time
	Since30d time.Time
}

type Storage interface {
	// Video methods
	CreateVideo(ctx context.Context, video *domain.Video) error
	GetVideo(ctx context.Context, id int64) (*domain.Video, error)
	ListVideos(ctx context.Context) ([]*domain.VideoSummary, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	UpdateVideo(ctx context.Context, video *domain.Video) error
	ArchiveVideo(ctx context.Context, id int64) error

	// Link methods
	CreateLink(ctx context.Context, link *domain.Link) error
	GetLink(ctx context.Context, id int64) (*domain.Link, error)
	ListVideoLinks(ctx context.Context, videoID int64) ([]*domain.LinkSummary, error)
	UpdateLink(ctx context.Context, link *domain.Link) error
	DeactivateLink(ctx context.Context, id int64) error
	// ResolveLink ищет активную ссылку неархивного видео; Link.Video заполнено
	ResolveLink(ctx context.Context, videoSlug, label string) (*domain.Link, error)

	// Click methods
	CreateClick(ctx context.Context, click *domain.Click) error
	GetClickBySessionID(ctx context.Context, sessionID string) (*domain.Click, error)
	DeleteLinkClicks(ctx context.Context, linkID int64) (int64, error)

	// Booking methods
	CreateBooking(ctx context.Context, booking *domain.Booking) error
	GetBookingByExternalID(ctx context.Context, externalID string) (*domain.Booking, error)
	UpdateBookingStatus(ctx context.Context, id int64, status domain.BookingStatus) error
	ListBookings(ctx context.Context, filter domain.BookingFilter) ([]*domain.BookingView, error)

	// Template methods
	CreateTemplate(ctx context.Context, tpl *domain.LinkTemplate) error
	GetTemplate(ctx context.Context, id int64) (*domain.LinkTemplate, error)
	ListTemplates(ctx context.Context) ([]*domain.LinkTemplate, error)
	UpdateTemplate(ctx context.Context, tpl *domain.LinkTemplate) error
	DeleteTemplate(ctx context.Context, id int64) error

	// Domain methods
	CreateDomain(ctx context.Context, d *domain.Domain) error
	GetDomain(ctx context.Context, id int64) (*domain.Domain, error)
	ListDomains(ctx context.Context) ([]*domain.Domain, error)
	UpdateDomain(ctx context.Context, d *domain.Domain) error
	DeleteDomain(ctx context.Context, id int64) error

	// Setting methods
	GetSetting(ctx context.Context, key string) (string, error)
	ListSettings(ctx context.Context) (map[string]string, error)
	SetSettings(ctx context.Context, values map[string]string) error

	// Webhook audit methods
	CreateWebhookLog(ctx context.Context, entry *domain.WebhookLog) error
	DeleteWebhookLogsBefore(ctx context.Context, before time.Time) (int64, error)

	// Analytics methods; videoID == nil means all non-archived videos
	ClickTotals(ctx context.Context, cutoffs PeriodCutoffs) (*domain.PeriodTotals, error)
	BookingTotals(ctx context.Context, cutoffs PeriodCutoffs) (*domain.PeriodTotals, error)
	ConversionTotals(ctx context.Context) (*domain.ConversionTotals, error)
	AvgTimeToBook(ctx context.Context) (*int64, error)
	VideoConversions(ctx context.Context) ([]*domain.VideoConversion, error)
	TopVideos(ctx context.Context, limit int) ([]*domain.VideoSummary, error)
	ClickTimes(ctx context.Context, videoID *int64, since time.Time) ([]time.Time, error)
	DeviceBreakdown(ctx context.Context, videoID *int64) ([]*domain.Breakdown, error)
	GeoBreakdown(ctx context.Context, videoID *int64, limit int) ([]*domain.Breakdown, error)
	RecentClicks(ctx context.Context, limit int) ([]*domain.RecentClick, error)

	Ping(ctx context.Context) error
}
