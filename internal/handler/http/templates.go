package http

import (
	"VLINKS-Backend/internal/service"
	"net/http"

	"go.uber.org/zap"
)

// TemplatesHandler обработчик шаблонов ссылок
type TemplatesHandler struct {
	responder
	templates *service.TemplateService
}

// NewTemplatesHandler создает новый обработчик шаблонов
func NewTemplatesHandler(templates *service.TemplateService, r responder) *TemplatesHandler {
	return &TemplatesHandler{
		responder: r,
		templates: templates,
	}
}

// CreateTemplateRequest структура запроса создания шаблона
type CreateTemplateRequest struct {
	Label          string `json:"label" validate:"required"`
	DestinationURL string `json:"destination_url" validate:"required"`
	IsBookingLink  bool   `json:"is_booking_link"`
}

// UpdateTemplateRequest структура запроса обновления шаблона
type UpdateTemplateRequest struct {
	Label          *string `json:"label,omitempty"`
	DestinationURL *string `json:"destination_url,omitempty"`
	IsBookingLink  *bool   `json:"is_booking_link,omitempty"`
}

// ApplyTemplatesRequest структура запроса применения шаблонов
type ApplyTemplatesRequest struct {
	TemplateIDs []int64 `json:"template_ids" validate:"required,min=1"`
}

// ListTemplates возвращает все шаблоны
//
//	@Summary	List link templates
//	@Tags		Templates
//	@Produce	json
//	@Success	200	{array}	domain.LinkTemplate
//	@Router		/api/templates [get]
func (h *TemplatesHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.templates.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, templates, http.StatusOK)
}

// CreateTemplate создает шаблон
//
//	@Summary	Create a link template
//	@Tags		Templates
//	@Accept		json
//	@Produce	json
//	@Param		request	body		CreateTemplateRequest	true	"Template"
//	@Success	201		{object}	domain.LinkTemplate
//	@Failure	400		{object}	ErrorResponse
//	@Failure	409		{object}	ErrorResponse
//	@Router		/api/templates [post]
func (h *TemplatesHandler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req CreateTemplateRequest
	if !h.decode(w, r, &req) {
		return
	}

	tpl, err := h.templates.Create(r.Context(), service.TemplateInput{
		Label:          &req.Label,
		DestinationURL: &req.DestinationURL,
		IsBookingLink:  &req.IsBookingLink,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.log.Info("created template", zap.Int64("template_id", tpl.ID), zap.String("label", tpl.Label))
	h.writeJSON(w, tpl, http.StatusCreated)
}

// UpdateTemplate обновляет шаблон
//
//	@Summary	Update a link template
//	@Tags		Templates
//	@Accept		json
//	@Produce	json
//	@Param		id		path		int						true	"Template ID"
//	@Param		request	body		UpdateTemplateRequest	true	"Changed fields"
//	@Success	200		{object}	domain.LinkTemplate
//	@Failure	404		{object}	ErrorResponse
//	@Router		/api/templates/{id} [put]
func (h *TemplatesHandler) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var req UpdateTemplateRequest
	if !h.decode(w, r, &req) {
		return
	}

	tpl, err := h.templates.Update(r.Context(), id, service.TemplateInput{
		Label:          req.Label,
		DestinationURL: req.DestinationURL,
		IsBookingLink:  req.IsBookingLink,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, tpl, http.StatusOK)
}

// DeleteTemplate удаляет шаблон
//
//	@Summary	Delete a link template
//	@Tags		Templates
//	@Param		id	path	int	true	"Template ID"
//	@Success	204
//	@Failure	404	{object}	ErrorResponse
//	@Router		/api/templates/{id} [delete]
func (h *TemplatesHandler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.templates.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ApplyTemplates создает ссылки видео из шаблонов; занятые метки пропускаются
//
//	@Summary	Apply templates to a video
//	@Tags		Templates
//	@Accept		json
//	@Produce	json
//	@Param		id		path		int						true	"Video ID"
//	@Param		request	body		ApplyTemplatesRequest	true	"Template IDs"
//	@Success	201		{object}	service.ApplyResult
//	@Failure	400		{object}	ErrorResponse
//	@Failure	404		{object}	ErrorResponse
//	@Router		/api/videos/{id}/apply-templates [post]
func (h *TemplatesHandler) ApplyTemplates(w http.ResponseWriter, r *http.Request) {
	videoID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var req ApplyTemplatesRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.templates.Apply(r.Context(), videoID, req.TemplateIDs)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.log.Info("applied templates",
		zap.Int64("video_id", videoID),
		zap.Int("created", len(result.Created)),
		zap.Int("skipped", len(result.Skipped)))
	h.writeJSON(w, result, http.StatusCreated)
}
