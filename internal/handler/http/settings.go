package http

import (
	"VLINKS-Backend/internal/service"
	"net/http"
)

// SettingsHandler обработчик настроек
type SettingsHandler struct {
	responder
	settings *service.SettingsService
}

// NewSettingsHandler создает новый обработчик настроек
func NewSettingsHandler(settings *service.SettingsService, r responder) *SettingsHandler {
	return &SettingsHandler{
		responder: r,
		settings:  settings,
	}
}

// GetSettings возвращает все известные настройки
//
//	@Summary	Get settings
//	@Tags		Settings
//	@Produce	json
//	@Success	200	{object}	map[string]string
//	@Router		/api/settings [get]
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.All(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, settings, http.StatusOK)
}

// UpdateSettings сохраняет переданные настройки; неизвестные ключи игнорируются
//
//	@Summary	Update settings
//	@Tags		Settings
//	@Accept		json
//	@Produce	json
//	@Param		request	body		map[string]string	true	"Settings"
//	@Success	200		{object}	map[string]string
//	@Failure	400		{object}	ErrorResponse
//	@Router		/api/settings [put]
func (h *SettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var values map[string]string
	if !h.decode(w, r, &values) {
		return
	}

	settings, err := h.settings.Update(r.Context(), values)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, settings, http.StatusOK)
}
