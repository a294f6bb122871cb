package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"UserDirectoryService/config"
	"UserDirectoryService/internal/database/seed"
	"UserDirectoryService/internal/delivery/rest"
	"UserDirectoryService/internal/repository/postgres"
	"UserDirectoryService/internal/service"
	"UserDirectoryService/pkg/database"
	"UserDirectoryService/pkg/logger"
	"UserDirectoryService/pkg/server"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Версия сервиса
const (
	ServiceVersion = "1.0.0"
)

func main() {
	// Переменные из .env, если файл есть
	envErr := godotenv.Load()

	// Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		zap.NewExample().Fatal("Не удалось загрузить конфигурацию", zap.Error(err))
	}

	// Инициализация логгера
	log := logger.NewLogger(cfg.Log.Level)
	defer log.Sync() //nolint:errcheck
	log.Info("Запуск сервиса пользователей", zap.String("version", ServiceVersion))
	if envErr != nil {
		log.Debug("Файл .env не загружен", zap.Error(envErr))
	}

	// Определение номеров портов
	httpPort := cfg.HTTP.Port
	healthPort := httpPort + 100
	metricsPort := httpPort + 200

	// Создаем механизм graceful shutdown
	gracefulShutdown := server.NewGracefulShutdown(log, 30*time.Second)

	// Подключение к хранилищу
	db, err := database.ConnectWithRetry(context.Background(), cfg.Database, log, database.DefaultConnectOptions())
	if err != nil {
		log.Fatal("Не удалось подключиться к базе данных", zap.String("driver", cfg.Database.Driver), zap.Error(err))
	}
	log.Info("Подключение к базе данных установлено", zap.String("driver", cfg.Database.Driver))

	// Получаем базовое подключение для закрытия
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("Не удалось получить экземпляр SQL DB", zap.Error(err))
	}

	// Добавляем закрытие соединения с базой при завершении
	gracefulShutdown.AddShutdownFunc(func(ctx context.Context) error {
		log.Info("Закрытие соединения с базой данных")
		return sqlDB.Close()
	})

	// Создаем проверку здоровья базы данных
	healthChecker := database.NewDatabaseHealthChecker(db, log)

	// Запускаем сервер для метрик Prometheus
	metricsServer := server.MetricsServer(metricsPort, log)

	// Добавляем остановку сервера метрик при завершении
	gracefulShutdown.AddShutdownFunc(func(ctx context.Context) error {
		log.Info("Остановка сервера метрик")
		return metricsServer.Shutdown(ctx)
	})

	// Инициализация репозитория и сервиса
	userRepo := postgres.NewUserRepository(db, log)
	userService := service.NewUserService(userRepo, log)

	// Тестовые данные для среды разработки
	seeder := seed.NewDevEnvironmentSeeder(userRepo, log, cfg.App.IsDevelopment())
	if err := seeder.SeedTestUsers(context.Background()); err != nil {
		log.Error("Не удалось заполнить базу тестовыми данными", zap.Error(err))
	}

	// Создаем и запускаем HTTP сервер для проверки здоровья
	healthCheck := server.NewHealthCheck(healthChecker, log, ServiceVersion)
	healthCheck.StartServer(healthPort)

	// Добавляем остановку HTTP сервера для проверки здоровья при завершении
	gracefulShutdown.AddShutdownFunc(func(ctx context.Context) error {
		log.Info("Остановка сервера проверки здоровья")
		return healthCheck.Stop(ctx)
	})

	// Инициализация HTTP API
	userHandler := rest.NewUserHandler(userService, log)
	apiServer := &http.Server{
		Addr:              ":" + strconv.Itoa(httpPort),
		Handler:           rest.NewRouter(userHandler, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Добавляем остановку HTTP API при завершении
	gracefulShutdown.AddShutdownFunc(func(ctx context.Context) error {
		log.Info("Остановка HTTP сервера")
		return apiServer.Shutdown(ctx)
	})

	// Запуск HTTP сервера в отдельной горутине
	go func() {
		log.Info("Запуск HTTP сервера", zap.Int("port", httpPort))
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP сервер остановлен с ошибкой", zap.Error(err))
			gracefulShutdown.Shutdown()
		}
	}()

	// Логируем информацию о версии и PID
	hostname, _ := os.Hostname()
	log.Info("Сервис успешно запущен",
		zap.Int("http_port", httpPort),
		zap.Int("health_port", healthPort),
		zap.Int("metrics_port", metricsPort),
		zap.String("version", ServiceVersion),
		zap.Int("pid", os.Getpid()),
		zap.String("hostname", hostname))

	// Ожидаем сигнала остановки
	gracefulShutdown.Wait()
	log.Info("Завершение работы сервиса выполнено")
}
