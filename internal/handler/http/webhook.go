package http

import (
	"VLINKS-Backend/internal/service"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"
)

const webhookSecretHeader = "x-webhook-secret"

// WebhookHandler принимает события CRM о бронированиях
type WebhookHandler struct {
	responder
	matcher      *service.Matcher
	maxBodyBytes int64
}

// NewWebhookHandler создает обработчик webhook
func NewWebhookHandler(matcher *service.Matcher, maxBodyBytes int64, r responder) *WebhookHandler {
	return &WebhookHandler{
		responder:    r,
		matcher:      matcher,
		maxBodyBytes: maxBodyBytes,
	}
}

// HandleGHL обрабатывает событие CRM
//
//	@Summary		CRM booking webhook
//	@Description	Creates or updates a booking and attributes it to a click or link
//	@Tags			Webhooks
//	@Accept			json
//	@Produce		json
//	@Param			secret				query		string							false	"Shared secret"
//	@Param			x-webhook-secret	header		string							false	"Shared secret"
//	@Success		201					{object}	service.AttributionResult		"Booking created"
//	@Success		200					{object}	service.AttributionResult		"Updated, duplicate or ignored"
//	@Failure		400					{object}	ErrorResponse					"Invalid JSON payload"
//	@Failure		401					{object}	ErrorResponse					"Invalid webhook secret"
//	@Failure		429					{object}	ErrorResponse					"Too many requests"
//	@Router			/api/webhooks/ghl [post]
func (h *WebhookHandler) HandleGHL(w http.ResponseWriter, r *http.Request) {
	secret := r.Header.Get(webhookSecretHeader)
	if secret == "" {
		secret = r.URL.Query().Get("secret")
	}

	// Секрет проверяется до чтения тела: при ошибке ничего не пишется
	if err := h.matcher.VerifySecret(r.Context(), secret); err != nil {
		if !errors.Is(err, service.ErrUnauthorized) {
			h.fail(w, r, err)
			return
		}
		h.log.Warn("webhook rejected: invalid secret", zap.String("remote_addr", r.RemoteAddr))
		h.writeError(w, "Invalid webhook secret", http.StatusUnauthorized)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, "Payload too large", http.StatusRequestEntityTooLarge)
			return
		}
		h.writeError(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	result, err := h.matcher.Process(r.Context(), body)
	if err != nil {
		if service.IsValidation(err) {
			h.writeError(w, "Invalid JSON payload", http.StatusBadRequest)
			return
		}
		h.fail(w, r, err)
		return
	}

	status := http.StatusOK
	if result.Status == service.OutcomeCreated {
		status = http.StatusCreated
	}
	h.writeJSON(w, result, status)
}
