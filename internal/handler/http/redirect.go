package http

import (
	"VLINKS-Backend/internal/analytics"
	"VLINKS-Backend/internal/metrics"
	"VLINKS-Backend/internal/repository"
	"VLINKS-Backend/internal/service"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ClickQueue принимает клики для асинхронной записи
type ClickQueue interface {
	Submit(click *analytics.ClickData) error
	GetStats() map[string]interface{}
}

// RedirectHandler обработчик редиректов
type RedirectHandler struct {
	responder
	redirects *service.RedirectService
	clicks    ClickQueue
}

// NewRedirectHandler создает новый обработчик редиректов
func NewRedirectHandler(redirects *service.RedirectService, clicks ClickQueue, r responder) *RedirectHandler {
	return &RedirectHandler{
		responder: r,
		redirects: redirects,
		clicks:    clicks,
	}
}

// HandleRedirect перенаправляет на размеченный адрес ссылки и ставит клик в очередь
//
//	@Summary		Follow a tracked link
//	@Description	Redirects to the destination URL tagged with UTM parameters and a fresh session id
//	@Tags			Redirect
//	@Param			videoSlug	path	string	true	"Video slug"
//	@Param			linkLabel	path	string	true	"Link label"
//	@Success		302
//	@Failure		404	{object}	ErrorResponse	"Link not found"
//	@Failure		410	{object}	ErrorResponse	"Link has expired"
//	@Router			/go/{videoSlug}/{linkLabel} [get]
func (h *RedirectHandler) HandleRedirect(w http.ResponseWriter, r *http.Request) {
	videoSlug := chi.URLParam(r, "videoSlug")
	label := chi.URLParam(r, "linkLabel")

	target, err := h.redirects.Resolve(r.Context(), videoSlug, label)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrLinkNotFound):
			metrics.RedirectsTotal.WithLabelValues("not_found").Inc()
			h.log.Debug("link not found", zap.String("video_slug", videoSlug), zap.String("label", label))
			h.writeError(w, "Link not found", http.StatusNotFound)
		case errors.Is(err, service.ErrLinkExpired):
			metrics.RedirectsTotal.WithLabelValues("expired").Inc()
			h.writeError(w, "Link has expired", http.StatusGone)
		default:
			metrics.RedirectsTotal.WithLabelValues("error").Inc()
			h.fail(w, r, err)
		}
		return
	}

	// Без тела: http.Redirect дописал бы HTML-ссылку
	w.Header().Set("Location", target.URL)
	w.WriteHeader(http.StatusFound)
	metrics.RedirectsTotal.WithLabelValues("redirected").Inc()

	// Запись клика не должна влиять на уже отправленный ответ
	click := &analytics.ClickData{
		LinkID:    target.Link.ID,
		SessionID: target.SessionID,
		IP:        extractIPAddress(r),
		UserAgent: r.UserAgent(),
		Referrer:  r.Referer(),
		ClickedAt: target.At,
	}
	if err := h.clicks.Submit(click); err != nil {
		h.log.Warn("click not queued",
			zap.Int64("link_id", target.Link.ID),
			zap.String("session_id", target.SessionID),
			zap.Error(err))
	}

	h.log.Debug("redirected",
		zap.String("video_slug", videoSlug),
		zap.String("label", label),
		zap.String("session_id", target.SessionID))
}

// extractIPAddress извлекает IP адрес из запроса с учетом прокси
func extractIPAddress(r *http.Request) string {
	// X-Forwarded-For может содержать список IP через запятую
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		ips := strings.Split(ip, ",")
		if first := strings.TrimSpace(ips[0]); first != "" {
			return first
		}
	}

	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return strings.TrimSpace(ip)
	}

	if ip := r.Header.Get("X-Client-IP"); ip != "" {
		return strings.TrimSpace(ip)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
