package service

import (
	"VLINKS-Backend/internal/domain"
	"VLINKS-Backend/internal/metrics"
	"VLINKS-Backend/internal/repository"
	"VLINKS-Backend/internal/webhook"
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// Результаты обработки webhook
const (
	OutcomeCreated   = "created"
	OutcomeUpdated   = "updated"
	OutcomeDuplicate = "duplicate"
	OutcomeIgnored   = "ignored"
	OutcomeError     = "error"
)

// Уровни атрибуции
const (
	TierExact    = "exact"
	TierFallback = "fallback"
	TierNone     = "none"
)

// AttributionResult итог обработки одного события CRM
type AttributionResult struct {
	Status     string `json:"status"`
	BookingID  *int64 `json:"booking_id,omitempty"`
	Attributed *bool  `json:"attributed,omitempty"`
	Tier       string `json:"-"`
}

// Matcher сопоставляет события CRM с кликами и ссылками
type Matcher struct {
	storage     repository.Storage
	links       LinkResolver
	log         *zap.Logger
	now         func() time.Time
	skipOrphans bool
}

// NewMatcher создает сопоставитель. links используется для fallback-атрибуции;
// nil означает разрешение через хранилище.
func NewMatcher(storage repository.Storage, links LinkResolver, log *zap.Logger, skipOrphans bool) *Matcher {
	if links == nil {
		links = storage
	}
	return &Matcher{
		storage:     storage,
		links:       links,
		log:         log,
		now:         time.Now,
		skipOrphans: skipOrphans,
	}
}

// WithClock подменяет источник времени
func (m *Matcher) WithClock(now func() time.Time) *Matcher {
	m.now = now
	return m
}

// VerifySecret сверяет переданный секрет с настройкой ghl_webhook_secret.
// Пустая настройка отключает проверку.
func (m *Matcher) VerifySecret(ctx context.Context, provided string) error {
	expected, err := m.storage.GetSetting(ctx, domain.SettingWebhookSecret)
	if err != nil {
		return fmt.Errorf("failed to load webhook secret: %w", err)
	}
	if expected == "" {
		return nil
	}
	if subtle.ConstantTimeCompare([]byte(expected), []byte(provided)) != 1 {
		return ErrUnauthorized
	}
	return nil
}

// Process разбирает тело webhook и сохраняет или обновляет бронирование.
// Тело, не являющееся JSON-объектом, отклоняется до какой-либо обработки.
func (m *Matcher) Process(ctx context.Context, raw []byte) (*AttributionResult, error) {
	payload, err := webhook.Decode(raw)
	if err != nil {
		return nil, &ValidationError{Message: "invalid JSON payload"}
	}

	event := webhook.Extract(payload)
	receivedAt := m.now()

	result, err := m.reconcile(ctx, event, receivedAt)

	m.audit(ctx, raw, event, receivedAt, result, err)

	outcome := OutcomeError
	if err == nil {
		outcome = result.Status
	}
	metrics.WebhookEvents.WithLabelValues(outcome).Inc()

	if err != nil {
		return nil, err
	}
	return result, nil
}

func (m *Matcher) reconcile(ctx context.Context, event *webhook.Event, now time.Time) (*AttributionResult, error) {
	log := m.log.With(
		zap.String("event_type", event.RawType),
		zap.String("kind", string(event.Kind)),
		zap.String("external_booking_id", event.BookingID),
	)

	if event.BookingID != "" {
		existing, err := m.storage.GetBookingByExternalID(ctx, event.BookingID)
		if err != nil && !errors.Is(err, repository.ErrBookingNotFound) {
			return nil, fmt.Errorf("failed to look up booking: %w", err)
		}

		if existing != nil {
			if event.Kind.IsTransition() {
				if err := m.storage.UpdateBookingStatus(ctx, existing.ID, event.Kind.Status()); err != nil {
					return nil, fmt.Errorf("failed to update booking status: %w", err)
				}
				log.Info("booking status updated", zap.Int64("booking_id", existing.ID))
				return &AttributionResult{Status: OutcomeUpdated, BookingID: &existing.ID}, nil
			}

			log.Debug("duplicate booking event", zap.Int64("booking_id", existing.ID))
			return &AttributionResult{Status: OutcomeDuplicate, BookingID: &existing.ID}, nil
		}
	}

	if event.Kind.IsTransition() && m.skipOrphans {
		log.Info("ignoring status transition for unknown booking")
		return &AttributionResult{Status: OutcomeIgnored}, nil
	}

	booking := &domain.Booking{
		ContactName:       event.ContactName,
		ContactEmail:      optional(event.ContactEmail),
		ExternalContactID: optional(event.ContactID),
		ExternalBookingID: optional(event.BookingID),
		BookedAt:          now.UTC(),
		AppointmentAt:     event.AppointmentAt,
		Status:            domain.BookingConfirmed,
		UTMSource:         optional(event.UTMs.Source),
		UTMCampaign:       optional(event.UTMs.Campaign),
		UTMContent:        optional(event.UTMs.Content),
		UTMTerm:           optional(event.UTMs.Term),
	}

	tier, err := m.attribute(ctx, booking, event.UTMs, now)
	if err != nil {
		return nil, err
	}

	if err := m.storage.CreateBooking(ctx, booking); err != nil {
		if errors.Is(err, repository.ErrBookingExists) && event.BookingID != "" {
			// параллельная доставка того же события успела создать запись
			existing, getErr := m.storage.GetBookingByExternalID(ctx, event.BookingID)
			if getErr != nil {
				return nil, fmt.Errorf("failed to load racing booking: %w", getErr)
			}
			return &AttributionResult{Status: OutcomeDuplicate, BookingID: &existing.ID}, nil
		}
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	metrics.AttributionTier.WithLabelValues(tier).Inc()
	attributed := booking.LinkID != nil
	log.Info("booking created",
		zap.Int64("booking_id", booking.ID),
		zap.String("tier", tier),
		zap.Bool("attributed", attributed),
	)

	return &AttributionResult{
		Status:     OutcomeCreated,
		BookingID:  &booking.ID,
		Attributed: &attributed,
		Tier:       tier,
	}, nil
}

// attribute заполняет ClickID/LinkID/TimeToBookSeconds.
// Точное совпадение по session id приоритетнее пары (campaign, content).
func (m *Matcher) attribute(ctx context.Context, booking *domain.Booking, utms webhook.UTMs, now time.Time) (string, error) {
	if utms.Term != "" {
		click, err := m.storage.GetClickBySessionID(ctx, utms.Term)
		switch {
		case err == nil:
			booking.ClickID = &click.ID
			booking.LinkID = &click.LinkID
			seconds := timeToBook(click.ClickedAt, now)
			booking.TimeToBookSeconds = &seconds
			return TierExact, nil
		case !errors.Is(err, repository.ErrClickNotFound):
			return "", fmt.Errorf("failed to look up click: %w", err)
		}
	}

	if utms.Campaign != "" && utms.Content != "" {
		link, err := m.links.ResolveLink(ctx, utms.Campaign, utms.Content)
		switch {
		case err == nil:
			booking.LinkID = &link.ID
			return TierFallback, nil
		case !errors.Is(err, repository.ErrLinkNotFound):
			return "", fmt.Errorf("failed to resolve link: %w", err)
		}
	}

	return TierNone, nil
}

// audit пишет событие в журнал; ошибка записи только логируется
func (m *Matcher) audit(ctx context.Context, raw []byte, event *webhook.Event, receivedAt time.Time, result *AttributionResult, procErr error) {
	entry := &domain.WebhookLog{
		Payload:    datatypes.JSON(raw),
		EventType:  event.RawType,
		EventKind:  string(event.Kind),
		Outcome:    OutcomeError,
		ReceivedAt: receivedAt.UTC(),
	}
	if procErr != nil {
		msg := procErr.Error()
		entry.Error = &msg
	} else {
		entry.Outcome = result.Status
		entry.BookingID = result.BookingID
	}

	// запрос мог быть отменен клиентом, журнал пишем все равно
	auditCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := m.storage.CreateWebhookLog(auditCtx, entry); err != nil {
		m.log.Warn("failed to write webhook audit log", zap.String("outcome", entry.Outcome), zap.Error(err))
	}
}

func timeToBook(clickedAt, now time.Time) int64 {
	seconds := int64(math.Round(now.Sub(clickedAt).Seconds()))
	if seconds < 0 {
		return 0
	}
	return seconds
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
