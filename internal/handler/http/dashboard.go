package http

import (
	"VLINKS-Backend/internal/service"
	"net/http"
)

const (
	dashboardDefaultRange = "7d"
	videoDefaultRange     = "30d"
)

// DashboardHandler отчеты по кликам и бронированиям
type DashboardHandler struct {
	responder
	dashboard *service.DashboardService
}

// NewDashboardHandler создает обработчик отчетов
func NewDashboardHandler(dashboard *service.DashboardService, r responder) *DashboardHandler {
	return &DashboardHandler{
		responder: r,
		dashboard: dashboard,
	}
}

// Summary сводка для главной страницы
//
//	@Summary	Dashboard summary
//	@Tags		Dashboard
//	@Produce	json
//	@Success	200	{object}	service.Summary
//	@Router		/api/dashboard/summary [get]
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.dashboard.Summary(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, summary, http.StatusOK)
}

// ClicksOverTime клики по дням по всем видео
//
//	@Summary	Clicks per day
//	@Tags		Dashboard
//	@Produce	json
//	@Param		range	query	string	false	"7d, 30d, 90d or all"	default(7d)
//	@Success	200		{array}	domain.DailyCount
//	@Router		/api/dashboard/clicks-over-time [get]
func (h *DashboardHandler) ClicksOverTime(w http.ResponseWriter, r *http.Request) {
	data, err := h.dashboard.ClicksOverTime(r.Context(), nil, r.URL.Query().Get("range"), dashboardDefaultRange)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, data, http.StatusOK)
}

// VideoClicks клики по дням для одного видео
//
//	@Summary	Clicks per day for a video
//	@Tags		Analytics
//	@Produce	json
//	@Param		id		path	int		true	"Video ID"
//	@Param		range	query	string	false	"7d, 30d, 90d or all"	default(30d)
//	@Success	200		{array}	domain.DailyCount
//	@Failure	404		{object}	ErrorResponse
//	@Router		/api/videos/{id}/clicks [get]
func (h *DashboardHandler) VideoClicks(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	data, err := h.dashboard.ClicksOverTime(r.Context(), &id, r.URL.Query().Get("range"), videoDefaultRange)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, data, http.StatusOK)
}

// Devices распределение кликов по типам устройств
//
//	@Summary	Device breakdown
//	@Tags		Analytics
//	@Produce	json
//	@Param		videoId	query	int	false	"Limit to one video"
//	@Success	200		{array}	domain.Breakdown
//	@Router		/api/analytics/devices [get]
func (h *DashboardHandler) Devices(w http.ResponseWriter, r *http.Request) {
	videoID, ok := h.queryVideoID(w, r)
	if !ok {
		return
	}

	data, err := h.dashboard.Devices(r.Context(), videoID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, data, http.StatusOK)
}

// Geo распределение кликов по странам
//
//	@Summary	Country breakdown
//	@Tags		Analytics
//	@Produce	json
//	@Param		videoId	query	int	false	"Limit to one video"
//	@Success	200		{array}	domain.Breakdown
//	@Router		/api/analytics/geo [get]
func (h *DashboardHandler) Geo(w http.ResponseWriter, r *http.Request) {
	videoID, ok := h.queryVideoID(w, r)
	if !ok {
		return
	}

	data, err := h.dashboard.Geo(r.Context(), videoID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, data, http.StatusOK)
}

// VideoBookings бронирования, атрибутированные видео
//
//	@Summary	Bookings of a video
//	@Tags		Bookings
//	@Produce	json
//	@Param		id	path	int	true	"Video ID"
//	@Success	200	{array}	domain.BookingView
//	@Failure	404	{object}	ErrorResponse
//	@Router		/api/videos/{id}/bookings [get]
func (h *DashboardHandler) VideoBookings(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	bookings, err := h.dashboard.VideoBookings(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, bookings, http.StatusOK)
}

// RecentBookings последние бронирования
//
//	@Summary	Recent bookings
//	@Tags		Bookings
//	@Produce	json
//	@Success	200	{array}	domain.BookingView
//	@Router		/api/bookings/recent [get]
func (h *DashboardHandler) RecentBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.dashboard.RecentBookings(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, bookings, http.StatusOK)
}
