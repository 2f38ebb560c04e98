package analytics

import (
	"VLINKS-Backend/internal/domain"
	"VLINKS-Backend/pkg/geo"
	"VLINKS-Backend/pkg/iphash"
	"VLINKS-Backend/pkg/useragent"
	"context"
	"time"

	"go.uber.org/zap"
)

// UAParser разбирает User-Agent
type UAParser interface {
	Parse(userAgent string) *useragent.DeviceInfo
}

// Enricher превращает сырые данные запроса в анонимизированный клик.
// Сбой любого источника оставляет соответствующие поля пустыми.
type Enricher struct {
	hasher  *iphash.Hasher
	ua      UAParser
	locator geo.Locator
	log     *zap.Logger
}

func NewEnricher(hasher *iphash.Hasher, ua UAParser, locator geo.Locator, log *zap.Logger) *Enricher {
	if locator == nil {
		locator = geo.NoopLocator{}
	}
	return &Enricher{
		hasher:  hasher,
		ua:      ua,
		locator: locator,
		log:     log,
	}
}

func (e *Enricher) Enrich(ctx context.Context, data *ClickData) *domain.Click {
	click := &domain.Click{
		LinkID:    data.LinkID,
		SessionID: data.SessionID,
		ClickedAt: data.ClickedAt.UTC(),
		Referrer:  nonEmpty(data.Referrer),
	}
	if click.ClickedAt.IsZero() {
		click.ClickedAt = time.Now().UTC()
	}

	if e.hasher != nil {
		click.IPHash = nonEmpty(e.hasher.Hash(data.IP))
	}

	if e.ua != nil {
		info := e.ua.Parse(data.UserAgent)
		click.DeviceType = nonEmpty(info.DeviceType)
		click.Browser = nonEmpty(info.Browser)
		click.OS = nonEmpty(info.OS)
	}

	if data.IP != "" {
		loc, err := e.locator.Lookup(ctx, data.IP)
		if err != nil {
			e.log.Debug("geo lookup failed",
				zap.String("provider", e.locator.Name()),
				zap.Error(err),
			)
		} else if loc != nil {
			click.Country = nonEmpty(loc.Country)
			click.City = nonEmpty(loc.City)
		}
	}

	return click
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
