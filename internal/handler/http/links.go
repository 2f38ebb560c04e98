package http

import (
	"VLINKS-Backend/internal/service"
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// LinksHandler обработчик для работы со ссылками
type LinksHandler struct {
	responder
	links *service.LinkService
}

// NewLinksHandler создает новый обработчик ссылок
func NewLinksHandler(links *service.LinkService, r responder) *LinksHandler {
	return &LinksHandler{
		responder: r,
		links:     links,
	}
}

// CreateLinkRequest структура запроса создания ссылки
type CreateLinkRequest struct {
	Label          string     `json:"label" validate:"required"`
	DestinationURL string     `json:"destination_url" validate:"required"`
	IsBookingLink  bool       `json:"is_booking_link"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
}

// UpdateLinkRequest структура запроса обновления ссылки.
// "expires_at": null снимает срок действия.
type UpdateLinkRequest struct {
	Label          *string    `json:"label,omitempty"`
	DestinationURL *string    `json:"destination_url,omitempty"`
	IsBookingLink  *bool      `json:"is_booking_link,omitempty"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
}

// ListLinks возвращает активные ссылки видео
//
//	@Summary	List links of a video
//	@Tags		Links
//	@Produce	json
//	@Param		id	path	int	true	"Video ID"
//	@Success	200	{array}	domain.LinkSummary
//	@Failure	404	{object}	ErrorResponse
//	@Router		/api/videos/{id}/links [get]
func (h *LinksHandler) ListLinks(w http.ResponseWriter, r *http.Request) {
	videoID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	links, err := h.links.List(r.Context(), videoID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, links, http.StatusOK)
}

// CreateLink создает ссылку для видео
//
//	@Summary	Create a link
//	@Tags		Links
//	@Accept		json
//	@Produce	json
//	@Param		id		path		int					true	"Video ID"
//	@Param		request	body		CreateLinkRequest	true	"Link"
//	@Success	201		{object}	domain.Link
//	@Failure	400		{object}	ErrorResponse
//	@Failure	404		{object}	ErrorResponse
//	@Failure	409		{object}	ErrorResponse	"Label already used for this video"
//	@Router		/api/videos/{id}/links [post]
func (h *LinksHandler) CreateLink(w http.ResponseWriter, r *http.Request) {
	videoID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var req CreateLinkRequest
	if !h.decode(w, r, &req) {
		return
	}

	link, err := h.links.Create(r.Context(), videoID, service.LinkInput{
		Label:          &req.Label,
		DestinationURL: &req.DestinationURL,
		IsBookingLink:  &req.IsBookingLink,
		ExpiresAt:      req.ExpiresAt,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.log.Info("created link",
		zap.Int64("link_id", link.ID),
		zap.Int64("video_id", videoID),
		zap.String("label", link.Label))
	h.writeJSON(w, link, http.StatusCreated)
}

// UpdateLink обновляет ссылку
//
//	@Summary	Update a link
//	@Tags		Links
//	@Accept		json
//	@Produce	json
//	@Param		id		path		int					true	"Link ID"
//	@Param		request	body		UpdateLinkRequest	true	"Changed fields"
//	@Success	200		{object}	domain.Link
//	@Failure	404		{object}	ErrorResponse
//	@Failure	409		{object}	ErrorResponse
//	@Router		/api/links/{id} [put]
func (h *LinksHandler) UpdateLink(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.writeError(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	var req UpdateLinkRequest
	if !h.decode(w, r, &req) {
		return
	}

	link, err := h.links.Update(r.Context(), id, service.LinkInput{
		Label:          req.Label,
		DestinationURL: req.DestinationURL,
		IsBookingLink:  req.IsBookingLink,
		ExpiresAt:      req.ExpiresAt,
		ClearExpiry:    isExplicitNull(body, "expires_at"),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, link, http.StatusOK)
}

// DeactivateLink деактивирует ссылку; клики сохраняются
//
//	@Summary	Deactivate a link
//	@Tags		Links
//	@Param		id	path	int	true	"Link ID"
//	@Success	204
//	@Failure	404	{object}	ErrorResponse
//	@Router		/api/links/{id} [delete]
func (h *LinksHandler) DeactivateLink(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.links.Deactivate(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}

	h.log.Info("deactivated link", zap.Int64("link_id", id))
	w.WriteHeader(http.StatusNoContent)
}

// ResetClicks удаляет все клики ссылки
//
//	@Summary	Reset link clicks
//	@Tags		Links
//	@Param		id	path	int	true	"Link ID"
//	@Success	204
//	@Failure	404	{object}	ErrorResponse
//	@Router		/api/links/{id}/clicks [delete]
func (h *LinksHandler) ResetClicks(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	deleted, err := h.links.ResetClicks(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.log.Info("reset link clicks", zap.Int64("link_id", id), zap.Int64("deleted", deleted))
	w.WriteHeader(http.StatusNoContent)
}

// isExplicitNull сообщает, передано ли поле со значением null
func isExplicitNull(body []byte, field string) bool {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return false
	}
	raw, ok := fields[field]
	return ok && string(bytes.TrimSpace(raw)) == "null"
}
