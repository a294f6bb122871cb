package rest

import (
	"net/http"

	"UserDirectoryService/pkg/server"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// UsersPrefix корневой путь ресурса пользователей
const UsersPrefix = "/api/v1/users"

// NewRouter создает маршрутизатор HTTP API с логированием и метриками
func NewRouter(handler *UserHandler, logger *zap.Logger) *mux.Router {
	r := mux.NewRouter()
	r.Use(server.LoggingMiddleware(logger))
	r.Use(server.MetricsMiddleware)

	users := r.PathPrefix(UsersPrefix).Subrouter()

	// Коллекция доступна со слешем и без
	for _, path := range []string{"", "/"} {
		users.HandleFunc(path, handler.GetAll).Methods(http.MethodGet)
		users.HandleFunc(path, handler.Create).Methods(http.MethodPost)
	}

	users.HandleFunc("/name/{name}", handler.GetAllByName).Methods(http.MethodGet)
	users.HandleFunc("/age/{age}", handler.GetAllByAge).Methods(http.MethodGet)
	users.HandleFunc("/{id}", handler.GetByID).Methods(http.MethodGet)
	users.HandleFunc("/{id}", handler.Update).Methods(http.MethodPut)
	users.HandleFunc("/{id}", handler.Delete).Methods(http.MethodDelete)

	return r
}
