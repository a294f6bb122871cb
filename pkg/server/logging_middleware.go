package server

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type contextKey string

// RequestIDKey ключ для request ID в контексте
const RequestIDKey contextKey = "request_id"

// RequestIDHeader заголовок, через который передается request ID
const RequestIDHeader = "X-Request-ID"

// LoggingMiddleware создает middleware, которое присваивает запросу request ID
// и логирует его начало и завершение
func LoggingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.New().String()
			}

			ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
			r = r.WithContext(ctx)
			w.Header().Set(RequestIDHeader, requestID)

			startTime := time.Now()
			logger.Debug("Start processing HTTP request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("request_id", requestID))

			ww := &responseWriterWrapper{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(ww, r)

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("request_id", requestID),
				zap.Int("status", ww.statusCode),
				zap.Duration("duration", time.Since(startTime)),
			}
			if ww.statusCode >= http.StatusInternalServerError {
				logger.Error("HTTP request failed", fields...)
				return
			}
			logger.Info("HTTP request completed", fields...)
		})
	}
}

// responseWriterWrapper обертка для http.ResponseWriter для отслеживания кода состояния
type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader перехватывает WriteHeader для сохранения кода состояния
func (w *responseWriterWrapper) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

// GetRequestID извлекает request ID из контекста
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// WithRequestID добавляет request ID в логгер
func WithRequestID(ctx context.Context, logger *zap.Logger) *zap.Logger {
	if requestID := GetRequestID(ctx); requestID != "" {
		return logger.With(zap.String("request_id", requestID))
	}
	return logger
}
