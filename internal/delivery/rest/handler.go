package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"UserDirectoryService/internal/models"
	"UserDirectoryService/internal/service"
	"UserDirectoryService/pkg/apperrors"
	"UserDirectoryService/pkg/server"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// errorResponse тело ответа с ошибкой
type errorResponse struct {
	Error string `json:"error"`
}

// UserHandler представляет обработчик HTTP запросов к пользователям
type UserHandler struct {
	service service.UserServiceInterface
	logger  *zap.Logger
}

// NewUserHandler создает новый экземпляр UserHandler
func NewUserHandler(service service.UserServiceInterface, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		logger:  logger,
	}
}

// GetAll возвращает всех пользователей
func (h *UserHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.GetAll(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, users)
}

// GetByID возвращает пользователя по ID.
// Отсутствующий пользователь дает 404 с пустым телом.
func (h *UserHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	user, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if user == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	h.writeJSON(w, http.StatusOK, user)
}

// GetAllByName возвращает пользователей, имя которых содержит подстроку
func (h *UserHandler) GetAllByName(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	users, err := h.service.GetAllByName(r.Context(), name)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, users)
}

// GetAllByAge возвращает пользователей указанного возраста
func (h *UserHandler) GetAllByAge(w http.ResponseWriter, r *http.Request) {
	age, err := strconv.Atoi(mux.Vars(r)["age"])
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "некорректный возраст"})
		return
	}

	users, err := h.service.GetAllByAge(r.Context(), age)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, users)
}

// Create создает пользователя из тела запроса
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := h.decodeUser(w, r)
	if !ok {
		return
	}

	created, err := h.service.Create(r.Context(), user)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, created)
}

// Update перезаписывает пользователя с ID из пути
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	user, ok := h.decodeUser(w, r)
	if !ok {
		return
	}

	updated, err := h.service.Update(r.Context(), id, user)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, updated)
}

// Delete удаляет пользователя, ответ без тела
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// pathID разбирает {id} из пути, при ошибке отвечает 400
func (h *UserHandler) pathID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 0)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "некорректный идентификатор"})
		return 0, false
	}
	return uint(id), true
}

// decodeUser читает пользователя из тела запроса, при ошибке отвечает 400
func (h *UserHandler) decodeUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	var user models.User
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		h.logger.Debug("Некорректное тело запроса", zap.Error(err))
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "некорректное тело запроса"})
		return nil, false
	}
	return &user, true
}

// writeError преобразует ошибку сервиса в HTTP статус
func (h *UserHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		h.writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	default:
		server.WithRequestID(r.Context(), h.logger).Error("Ошибка обработки запроса",
			zap.Error(err),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
		)
		h.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "внутренняя ошибка сервера"})
	}
}

func (h *UserHandler) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("Не удалось записать ответ", zap.Error(err))
	}
}
