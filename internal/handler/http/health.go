package http

import (
	"VLINKS-Backend/internal/repository"
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const healthCheckTimeout = 5 * time.Second

var startTime = time.Now()

// HealthHandler обработчик health checks
type HealthHandler struct {
	responder
	storage repository.Storage
	clicks  ClickQueue
	version string
}

// NewHealthHandler создает новый health handler
func NewHealthHandler(storage repository.Storage, clicks ClickQueue, version string, r responder) *HealthHandler {
	return &HealthHandler{
		responder: r,
		storage:   storage,
		clicks:    clicks,
		version:   version,
	}
}

// HealthResponse структура ответа health check
type HealthResponse struct {
	Status         string    `json:"status"`
	Timestamp      time.Time `json:"timestamp"`
	Version        string    `json:"version"`
	DatabaseStatus string    `json:"database_status"`
	Uptime         string    `json:"uptime,omitempty"`
}

// ReadyResponse структура ответа readiness probe
type ReadyResponse struct {
	Status      string                 `json:"status"`
	Timestamp   time.Time              `json:"timestamp"`
	ClickLogger map[string]interface{} `json:"click_logger"`
}

// Health проверяет доступность хранилища
//
//	@Summary	Liveness check
//	@Tags		Health
//	@Produce	json
//	@Success	200	{object}	HealthResponse
//	@Failure	503	{object}	HealthResponse
//	@Router		/health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	dbStatus := "healthy"
	if err := h.storage.Ping(ctx); err != nil {
		dbStatus = "unhealthy"
		h.log.Error("database health check failed", zap.Error(err))
	}

	status := "healthy"
	statusCode := http.StatusOK
	if dbStatus == "unhealthy" {
		status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	}

	h.writeJSON(w, HealthResponse{
		Status:         status,
		Timestamp:      time.Now(),
		Version:        h.version,
		DatabaseStatus: dbStatus,
		Uptime:         time.Since(startTime).String(),
	}, statusCode)
}

// Ready сообщает о готовности; без запущенного журнала кликов сервис не готов
//
//	@Summary	Readiness check
//	@Tags		Health
//	@Produce	json
//	@Success	200	{object}	ReadyResponse
//	@Failure	503	{object}	ReadyResponse
//	@Router		/ready [get]
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	stats := h.clicks.GetStats()

	status := "ready"
	statusCode := http.StatusOK
	if started, _ := stats["started"].(bool); !started {
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	}

	h.writeJSON(w, ReadyResponse{
		Status:      status,
		Timestamp:   time.Now(),
		ClickLogger: stats,
	}, statusCode)
}
