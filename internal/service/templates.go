package service

import (
	"VLINKS-Backend/internal/domain"
	"VLINKS-Backend/internal/repository"
	"VLINKS-Backend/pkg/tracking"
	"context"
	"errors"
	"fmt"
)

// TemplateInput поля шаблона от клиента; nil означает "не менять"
type TemplateInput struct {
	Label          *string
	DestinationURL *string
	IsBookingLink  *bool
}

// ApplyResult итог применения шаблонов к видео
type ApplyResult struct {
	Created []*domain.Link `json:"created"`
	Skipped []string       `json:"skipped"`
}

type TemplateService struct {
	storage repository.Storage
}

func NewTemplateService(storage repository.Storage) *TemplateService {
	return &TemplateService{storage: storage}
}

func (s *TemplateService) List(ctx context.Context) ([]*domain.LinkTemplate, error) {
	return s.storage.ListTemplates(ctx)
}

func (s *TemplateService) Create(ctx context.Context, in TemplateInput) (*domain.LinkTemplate, error) {
	if in.Label == nil || in.DestinationURL == nil || *in.Label == "" || *in.DestinationURL == "" {
		return nil, invalid("", "label and destination_url are required")
	}

	label, err := cleanLabel(*in.Label)
	if err != nil {
		return nil, err
	}
	if err := tracking.ValidateDestination(*in.DestinationURL); err != nil {
		return nil, invalid("destination_url", err.Error())
	}

	tpl := &domain.LinkTemplate{
		Label:          label,
		DestinationURL: *in.DestinationURL,
	}
	if in.IsBookingLink != nil {
		tpl.IsBookingLink = *in.IsBookingLink
	}

	if err := s.storage.CreateTemplate(ctx, tpl); err != nil {
		return nil, err
	}
	return tpl, nil
}

func (s *TemplateService) Update(ctx context.Context, id int64, in TemplateInput) (*domain.LinkTemplate, error) {
	tpl, err := s.storage.GetTemplate(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Label != nil {
		label, err := cleanLabel(*in.Label)
		if err != nil {
			return nil, err
		}
		tpl.Label = label
	}
	if in.DestinationURL != nil {
		if err := tracking.ValidateDestination(*in.DestinationURL); err != nil {
			return nil, invalid("destination_url", err.Error())
		}
		tpl.DestinationURL = *in.DestinationURL
	}
	if in.IsBookingLink != nil {
		tpl.IsBookingLink = *in.IsBookingLink
	}

	if err := s.storage.UpdateTemplate(ctx, tpl); err != nil {
		return nil, err
	}
	return s.storage.GetTemplate(ctx, id)
}

func (s *TemplateService) Delete(ctx context.Context, id int64) error {
	return s.storage.DeleteTemplate(ctx, id)
}

// Apply создает по ссылке на каждый шаблон. Отсутствующие шаблоны
// пропускаются молча, занятые метки попадают в Skipped.
func (s *TemplateService) Apply(ctx context.Context, videoID int64, templateIDs []int64) (*ApplyResult, error) {
	if len(templateIDs) == 0 {
		return nil, invalid("template_ids", "at least one template id is required")
	}
	if _, err := s.storage.GetVideo(ctx, videoID); err != nil {
		return nil, err
	}

	result := &ApplyResult{
		Created: make([]*domain.Link, 0, len(templateIDs)),
		Skipped: make([]string, 0),
	}

	for _, id := range templateIDs {
		tpl, err := s.storage.GetTemplate(ctx, id)
		if errors.Is(err, repository.ErrTemplateNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}

		link := &domain.Link{
			VideoID:        videoID,
			Label:          tpl.Label,
			DestinationURL: tpl.DestinationURL,
			IsBookingLink:  tpl.IsBookingLink,
			Active:         true,
		}
		err = s.storage.CreateLink(ctx, link)
		switch {
		case err == nil:
			result.Created = append(result.Created, link)
		case errors.Is(err, repository.ErrLinkLabelExists):
			result.Skipped = append(result.Skipped, tpl.Label)
		default:
			return nil, fmt.Errorf("failed to create link from template %d: %w", tpl.ID, err)
		}
	}

	return result, nil
}
