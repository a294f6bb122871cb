//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"

	"UserDirectoryService/config"
	"UserDirectoryService/internal/delivery/rest"
	"UserDirectoryService/internal/models"
	"UserDirectoryService/internal/repository/postgres"
	"UserDirectoryService/internal/service"
	"UserDirectoryService/pkg/database"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	db         *gorm.DB
	apiServer  *httptest.Server
	pgResource *dockertest.Resource
	pool       *dockertest.Pool
)

// Настройка тестового окружения
func TestMain(m *testing.M) {
	// Создаем Docker-pool
	var err error
	pool, err = dockertest.NewPool("")
	if err != nil {
		log.Fatalf("Could not connect to Docker: %s", err)
	}

	// Устанавливаем тайм-аут для контейнеров
	pool.MaxWait = time.Minute * 2

	// Запускаем PostgreSQL
	pgResource, err = pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "15",
		Env: []string{
			"POSTGRES_PASSWORD=postgres",
			"POSTGRES_USER=postgres",
			"POSTGRES_DB=test_db",
		},
	}, func(hostConfig *docker.HostConfig) {
		// Устанавливаем автоудаление контейнера
		hostConfig.AutoRemove = true
		hostConfig.RestartPolicy = docker.RestartPolicy{
			Name: "no",
		}
	})
	if err != nil {
		log.Fatalf("Could not start PostgreSQL: %s", err)
	}

	// Получаем хост и порт PostgreSQL
	pgHost := pgResource.GetBoundIP("5432/tcp")
	pgPort, err := strconv.Atoi(pgResource.GetPort("5432/tcp"))
	if err != nil {
		log.Fatalf("Invalid PostgreSQL port: %s", err)
	}

	// Ожидаем готовности PostgreSQL
	if err := pool.Retry(func() error {
		var err error
		db, err = database.NewDB(config.DatabaseConfig{
			Driver:   "postgres",
			Host:     pgHost,
			Port:     pgPort,
			Username: "postgres",
			Password: "postgres",
			DBName:   "test_db",
			SSLMode:  "disable",
		})
		return err
	}); err != nil {
		log.Fatalf("Could not connect to PostgreSQL: %s", err)
	}

	// Поднимаем HTTP API поверх настоящей базы
	logger := zap.NewNop()
	repo := postgres.NewUserRepository(db, logger)
	handler := rest.NewUserHandler(service.NewUserService(repo, logger), logger)
	apiServer = httptest.NewServer(rest.NewRouter(handler, logger))

	// Запускаем тесты
	code := m.Run()

	// Очистка ресурсов
	apiServer.Close()
	pool.Purge(pgResource)

	os.Exit(code)
}

func doJSON(t *testing.T, method, path string, body interface{}) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, apiServer.URL+rest.UsersPrefix+path, &buf)
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request %s %s failed: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
}

// TestUserServiceIntegration тестирует полный цикл работы с пользователем
func TestUserServiceIntegration(t *testing.T) {
	// 1. Создание пользователя с адресом
	input := models.User{
		Name: "integration user",
		Age:  models.IntPtr(33),
		Address: &models.Address{
			Country: "country",
			City:    "city",
			Street:  "integration street",
			Code:    101,
		},
	}

	resp := doJSON(t, http.MethodPost, "", input)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200 on create, got %d", resp.StatusCode)
	}
	var created models.User
	decode(t, resp, &created)
	if created.ID == 0 || created.Address == nil || created.Address.ID == 0 {
		t.Fatalf("Expected generated ids, got %+v", created)
	}

	userPath := "/" + strconv.FormatUint(uint64(created.ID), 10)

	// 2. Получение пользователя по ID
	resp = doJSON(t, http.MethodGet, userPath, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200 on get, got %d", resp.StatusCode)
	}
	var fetched models.User
	decode(t, resp, &fetched)
	if !models.UserEqual(&created, &fetched) {
		t.Errorf("Expected %+v, got %+v", created, fetched)
	}

	// 3. Поиск по подстроке имени и по возрасту
	resp = doJSON(t, http.MethodGet, "/name/integration", nil)
	var byName []models.User
	decode(t, resp, &byName)
	if len(byName) != 1 {
		t.Errorf("Expected 1 user by name, got %d", len(byName))
	}

	resp = doJSON(t, http.MethodGet, "/age/33", nil)
	var byAge []models.User
	decode(t, resp, &byAge)
	if len(byAge) != 1 {
		t.Errorf("Expected 1 user by age, got %d", len(byAge))
	}

	// 4. Обновление пользователя
	update := fetched
	update.Name = "updated integration user"
	update.Age = nil
	resp = doJSON(t, http.MethodPut, userPath, update)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200 on update, got %d", resp.StatusCode)
	}
	var updated models.User
	decode(t, resp, &updated)
	if updated.ID != created.ID || updated.Name != update.Name || updated.Age != nil {
		t.Errorf("Unexpected updated user %+v", updated)
	}

	// 5. Повторный адрес нарушает уникальность
	duplicate := input
	duplicate.Name = "duplicate"
	duplicate.Address = &models.Address{
		Country: input.Address.Country,
		City:    input.Address.City,
		Street:  input.Address.Street,
		Code:    input.Address.Code,
	}
	resp = doJSON(t, http.MethodPost, "", duplicate)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("Expected status 500 for duplicate address, got %d", resp.StatusCode)
	}

	// 6. Удаление пользователя, повторное удаление тоже успешно
	for i := 0; i < 2; i++ {
		resp = doJSON(t, http.MethodDelete, userPath, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Expected status 200 on delete, got %d", resp.StatusCode)
		}
	}

	resp = doJSON(t, http.MethodGet, userPath, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected status 404 after delete, got %d", resp.StatusCode)
	}
}

// TestUpdateMissingUser проверяет, что обновление несуществующего пользователя дает 404
func TestUpdateMissingUser(t *testing.T) {
	resp := doJSON(t, http.MethodPut, "/987654", models.User{Name: "ghost"})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", resp.StatusCode)
	}

	var count int64
	if err := db.Model(&models.User{}).Where("name = ?", "ghost").Count(&count).Error; err != nil {
		t.Fatalf("Failed to count users: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected no rows written, got %d", count)
	}
}
