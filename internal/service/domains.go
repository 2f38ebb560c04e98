package service

import (
	"VLINKS-Backend/internal/domain"
	"VLINKS-Backend/internal/repository"
	"context"
	"strings"
)

// DomainInput поля домена от клиента; nil означает "не менять"
type DomainInput struct {
	Hostname  *string
	Label     *string
	IsDefault *bool
}

type DomainService struct {
	storage repository.Storage
}

func NewDomainService(storage repository.Storage) *DomainService {
	return &DomainService{storage: storage}
}

// List возвращает домены, домен по умолчанию первым
func (s *DomainService) List(ctx context.Context) ([]*domain.Domain, error) {
	return s.storage.ListDomains(ctx)
}

func (s *DomainService) Create(ctx context.Context, in DomainInput) (*domain.Domain, error) {
	if in.Hostname == nil || in.Label == nil || *in.Label == "" {
		return nil, invalid("", "domain and label are required")
	}
	hostname := NormalizeHostname(*in.Hostname)
	if hostname == "" {
		return nil, invalid("", "domain and label are required")
	}

	d := &domain.Domain{
		Hostname: hostname,
		Label:    *in.Label,
	}
	if in.IsDefault != nil {
		d.IsDefault = *in.IsDefault
	}

	if err := s.storage.CreateDomain(ctx, d); err != nil {
		return nil, err
	}
	return s.storage.GetDomain(ctx, d.ID)
}

func (s *DomainService) Update(ctx context.Context, id int64, in DomainInput) (*domain.Domain, error) {
	d, err := s.storage.GetDomain(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Hostname != nil {
		hostname := NormalizeHostname(*in.Hostname)
		if hostname == "" {
			return nil, invalid("domain", "must not be empty")
		}
		d.Hostname = hostname
	}
	if in.Label != nil {
		if *in.Label == "" {
			return nil, invalid("label", "must not be empty")
		}
		d.Label = *in.Label
	}
	if in.IsDefault != nil {
		d.IsDefault = *in.IsDefault
	}

	if err := s.storage.UpdateDomain(ctx, d); err != nil {
		return nil, err
	}
	return s.storage.GetDomain(ctx, id)
}

// Delete удаляет домен; видео этого домена остаются без домена
func (s *DomainService) Delete(ctx context.Context, id int64) error {
	return s.storage.DeleteDomain(ctx, id)
}

// NormalizeHostname убирает схему и завершающие слэши
func NormalizeHostname(raw string) string {
	h := strings.TrimSpace(raw)
	lower := strings.ToLower(h)
	switch {
	case strings.HasPrefix(lower, "https://"):
		h = h[len("https://"):]
	case strings.HasPrefix(lower, "http://"):
		h = h[len("http://"):]
	}
	return strings.TrimRight(h, "/")
}
