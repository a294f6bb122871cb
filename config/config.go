package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/viper"
)

// Config содержит все настройки приложения
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Database DatabaseConfig `mapstructure:"database"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Log      LogConfig      `mapstructure:"log"`
}

// AppConfig содержит общие настройки сервиса
type AppConfig struct {
	Env string `mapstructure:"env"`
}

// DatabaseConfig содержит настройки хранилища.
// Driver: postgres или sqlite; для sqlite используется DSN как путь к файлу.
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	DSN      string `mapstructure:"dsn"`
}

// HTTPConfig содержит настройки HTTP сервера
type HTTPConfig struct {
	Port int `mapstructure:"port"`
}

// LogConfig содержит настройки логирования
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// IsDevelopment сообщает, запущен ли сервис в режиме разработки
func (c AppConfig) IsDevelopment() bool {
	return c.Env == "development"
}

// LoadConfig загружает настройки из файла или переменных окружения
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	// Значения по умолчанию
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Если файл конфигурации не найден, используем переменные окружения
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	// Переменные окружения имеют приоритет над файлом
	loadFromEnv(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if config.Database.Driver != "postgres" && config.Database.Driver != "sqlite" {
		return nil, fmt.Errorf("unsupported database driver %q", config.Database.Driver)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "production")

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.username", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "users")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.dsn", "users.db")

	v.SetDefault("http.port", 8080)

	v.SetDefault("log.level", "info")
}

func loadFromEnv(v *viper.Viper) {
	setString := func(env, key string) {
		if value := os.Getenv(env); value != "" {
			v.Set(key, value)
		}
	}
	setInt := func(env, key string) {
		if value := os.Getenv(env); value != "" {
			if n, err := strconv.Atoi(value); err == nil {
				v.Set(key, n)
			}
		}
	}

	setString("APP_ENV", "app.env")

	setString("DB_DRIVER", "database.driver")
	setString("DB_HOST", "database.host")
	setInt("DB_PORT", "database.port")
	setString("DB_USER", "database.username")
	setString("DB_PASSWORD", "database.password")
	setString("DB_NAME", "database.dbname")
	setString("DB_SSLMODE", "database.sslmode")
	setString("DB_DSN", "database.dsn")

	setInt("HTTP_PORT", "http.port")

	setString("LOG_LEVEL", "log.level")
}
