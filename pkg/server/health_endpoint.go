package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	statusUp      = "up"
	statusDown    = "down"
	statusUnknown = "unknown"
)

// DatabaseChecker проверяет доступность хранилища
type DatabaseChecker interface {
	IsDatabaseHealthy(ctx context.Context) bool
}

// HealthCheck представляет сервис проверки здоровья
type HealthCheck struct {
	checker       DatabaseChecker
	logger        *zap.Logger
	version       string
	interval      time.Duration
	server        *http.Server
	stop          chan struct{}
	stopOnce      sync.Once
	statusMutex   sync.RWMutex
	serviceStatus map[string]string
}

// HealthResponse представляет ответ эндпоинта проверки здоровья
type HealthResponse struct {
	Status    string            `json:"status"`
	Services  map[string]string `json:"services"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
}

// NewHealthCheck создает новый сервис проверки здоровья
func NewHealthCheck(checker DatabaseChecker, logger *zap.Logger, version string) *HealthCheck {
	return &HealthCheck{
		checker:  checker,
		logger:   logger,
		version:  version,
		interval: 10 * time.Second,
		stop:     make(chan struct{}),
		serviceStatus: map[string]string{
			"service":  statusUp,
			"database": statusUnknown,
		},
	}
}

// Handler возвращает маршруты эндпоинтов проверки здоровья
func (h *HealthCheck) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", h.livenessHandler)
	mux.HandleFunc("/health/ready", h.readinessHandler)
	mux.HandleFunc("/health", h.healthHandler)
	return mux
}

// StartServer запускает HTTP сервер для проверки здоровья и фоновый мониторинг
func (h *HealthCheck) StartServer(port int) {
	h.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: h.Handler(),
	}

	go func() {
		h.logger.Info("Starting health check server", zap.Int("port", port))
		if err := h.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			h.logger.Error("Health check server failed", zap.Error(err))
		}
	}()

	// Первая проверка сразу, чтобы readiness не ждал первого тика
	h.checkServicesHealth()
	go h.monitorHealth()
}

// Stop останавливает мониторинг и HTTP сервер
func (h *HealthCheck) Stop(ctx context.Context) error {
	h.stopOnce.Do(func() { close(h.stop) })
	if h.server == nil {
		return nil
	}
	return h.server.Shutdown(ctx)
}

// livenessHandler проверяет только, работает ли сам процесс
func (h *HealthCheck) livenessHandler(w http.ResponseWriter, r *http.Request) {
	writeHealthJSON(w, http.StatusOK, map[string]string{"status": statusUp})
}

// readinessHandler сообщает о готовности принимать запросы: без базы данных сервис не готов
func (h *HealthCheck) readinessHandler(w http.ResponseWriter, r *http.Request) {
	h.statusMutex.RLock()
	dbStatus := h.serviceStatus["database"]
	h.statusMutex.RUnlock()

	if dbStatus != statusUp {
		writeHealthJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":  statusDown,
			"message": "database is not available",
		})
		return
	}

	writeHealthJSON(w, http.StatusOK, map[string]string{"status": statusUp})
}

// healthHandler возвращает полную информацию о здоровье
func (h *HealthCheck) healthHandler(w http.ResponseWriter, r *http.Request) {
	h.statusMutex.RLock()
	services := make(map[string]string, len(h.serviceStatus))
	for k, v := range h.serviceStatus {
		services[k] = v
	}
	h.statusMutex.RUnlock()

	status := statusUp
	code := http.StatusOK
	if services["database"] != statusUp {
		status = statusDown
		code = http.StatusServiceUnavailable
	}

	writeHealthJSON(w, code, HealthResponse{
		Status:    status,
		Services:  services,
		Timestamp: time.Now(),
		Version:   h.version,
	})
}

// monitorHealth регулярно проверяет состояние зависимостей до вызова Stop
func (h *HealthCheck) monitorHealth() {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			h.checkServicesHealth()
		case <-h.stop:
			return
		}
	}
}

// checkServicesHealth обновляет статус базы данных
func (h *HealthCheck) checkServicesHealth() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	dbStatus := statusUp
	if !h.checker.IsDatabaseHealthy(ctx) {
		dbStatus = statusDown
		h.logger.Warn("Database health check failed")
	}

	h.statusMutex.Lock()
	h.serviceStatus["database"] = dbStatus
	h.statusMutex.Unlock()
}

func writeHealthJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
