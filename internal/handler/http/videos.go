package http

import (
	"VLINKS-Backend/internal/domain"
	"VLINKS-Backend/internal/service"
	"net/http"

	"go.uber.org/zap"
)

// VideosHandler обработчик для работы с видео
type VideosHandler struct {
	responder
	videos *service.VideoService
}

// NewVideosHandler создает новый обработчик видео
func NewVideosHandler(videos *service.VideoService, r responder) *VideosHandler {
	return &VideosHandler{
		responder: r,
		videos:    videos,
	}
}

// CreateVideoRequest структура запроса создания видео
type CreateVideoRequest struct {
	Title          string  `json:"title" validate:"required"`
	Slug           *string `json:"slug,omitempty"`
	Source         *string `json:"source,omitempty"`
	YoutubeURL     *string `json:"youtube_url,omitempty"`
	YoutubeVideoID *string `json:"youtube_video_id,omitempty"`
	DomainID       *int64  `json:"domain_id,omitempty"`
}

// UpdateVideoRequest структура запроса обновления видео; slug не меняется
type UpdateVideoRequest struct {
	Title          *string `json:"title,omitempty"`
	Source         *string `json:"source,omitempty"`
	YoutubeURL     *string `json:"youtube_url,omitempty"`
	YoutubeVideoID *string `json:"youtube_video_id,omitempty"`
	DomainID       *int64  `json:"domain_id,omitempty"`
}

func sourcePtr(s *string) *domain.VideoSource {
	if s == nil {
		return nil
	}
	src := domain.VideoSource(*s)
	return &src
}

// ListVideos возвращает неархивные видео
//
//	@Summary	List videos
//	@Tags		Videos
//	@Produce	json
//	@Success	200	{array}	domain.VideoSummary
//	@Router		/api/videos [get]
func (h *VideosHandler) ListVideos(w http.ResponseWriter, r *http.Request) {
	videos, err := h.videos.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, videos, http.StatusOK)
}

// GetVideo возвращает видео по ID
//
//	@Summary	Get a video
//	@Tags		Videos
//	@Produce	json
//	@Param		id	path		int	true	"Video ID"
//	@Success	200	{object}	domain.Video
//	@Failure	404	{object}	ErrorResponse
//	@Router		/api/videos/{id} [get]
func (h *VideosHandler) GetVideo(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	video, err := h.videos.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, video, http.StatusOK)
}

// CreateVideo создает видео; slug выводится из slug или title
//
//	@Summary	Create a video
//	@Tags		Videos
//	@Accept		json
//	@Produce	json
//	@Param		request	body		CreateVideoRequest	true	"Video"
//	@Success	201		{object}	domain.Video
//	@Failure	400		{object}	ErrorResponse
//	@Router		/api/videos [post]
func (h *VideosHandler) CreateVideo(w http.ResponseWriter, r *http.Request) {
	var req CreateVideoRequest
	if !h.decode(w, r, &req) {
		return
	}

	video, err := h.videos.Create(r.Context(), service.VideoInput{
		Title:          &req.Title,
		Slug:           req.Slug,
		Source:         sourcePtr(req.Source),
		YoutubeURL:     req.YoutubeURL,
		YoutubeVideoID: req.YoutubeVideoID,
		DomainID:       req.DomainID,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.log.Info("created video", zap.Int64("video_id", video.ID), zap.String("slug", video.Slug))
	h.writeJSON(w, video, http.StatusCreated)
}

// UpdateVideo обновляет видео
//
//	@Summary	Update a video
//	@Tags		Videos
//	@Accept		json
//	@Produce	json
//	@Param		id		path		int					true	"Video ID"
//	@Param		request	body		UpdateVideoRequest	true	"Changed fields"
//	@Success	200		{object}	domain.Video
//	@Failure	404		{object}	ErrorResponse
//	@Router		/api/videos/{id} [put]
func (h *VideosHandler) UpdateVideo(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var req UpdateVideoRequest
	if !h.decode(w, r, &req) {
		return
	}

	video, err := h.videos.Update(r.Context(), id, service.VideoInput{
		Title:          req.Title,
		Source:         sourcePtr(req.Source),
		YoutubeURL:     req.YoutubeURL,
		YoutubeVideoID: req.YoutubeVideoID,
		DomainID:       req.DomainID,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, video, http.StatusOK)
}

// ArchiveVideo архивирует видео; его ссылки перестают работать
//
//	@Summary	Archive a video
//	@Tags		Videos
//	@Param		id	path	int	true	"Video ID"
//	@Success	204
//	@Failure	404	{object}	ErrorResponse
//	@Router		/api/videos/{id} [delete]
func (h *VideosHandler) ArchiveVideo(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.videos.Archive(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}

	h.log.Info("archived video", zap.Int64("video_id", id))
	w.WriteHeader(http.StatusNoContent)
}
