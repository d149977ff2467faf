// pkg/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config - главная структура конфигурации
type Config struct {
	App     AppConfig     `koanf:"app"`
	HTTP    HTTPConfig    `koanf:"http"`
	Log     LogConfig     `koanf:"log"`
	Metrics MetricsConfig `koanf:"metrics"`
	Tracing TracingConfig `koanf:"tracing"`
	Cache   CacheConfig   `koanf:"cache"`
	Router  RouterConfig  `koanf:"router"`
	Report  ReportConfig  `koanf:"report"`
}

// AppConfig - общие настройки приложения
type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"` // development, staging, production
	Debug       bool   `koanf:"debug"`
}

// HTTPConfig - настройки HTTP сервера (job-control API)
type HTTPConfig struct {
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	CORS            CORSConfig    `koanf:"cors"`
}

// CORSConfig - настройки CORS
type CORSConfig struct {
	Enabled          bool     `koanf:"enabled"`
	AllowedOrigins   []string `koanf:"allowed_origins"`
	AllowedMethods   []string `koanf:"allowed_methods"`
	AllowedHeaders   []string `koanf:"allowed_headers"`
	AllowCredentials bool     `koanf:"allow_credentials"`
	MaxAge           int      `koanf:"max_age"`
}

// LogConfig - настройки логирования
type LogConfig struct {
	Level      string `koanf:"level"`       // debug, info, warn, error
	Format     string `koanf:"format"`      // json, text
	Output     string `koanf:"output"`      // stdout, stderr, file
	FilePath   string `koanf:"file_path"`   // путь к файлу логов
	MaxSize    int    `koanf:"max_size"`    // MB
	MaxBackups int    `koanf:"max_backups"` // количество бэкапов
	MaxAge     int    `koanf:"max_age"`     // дней
	Compress   bool   `koanf:"compress"`
}

// MetricsConfig - настройки Prometheus метрик
type MetricsConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Port      int    `koanf:"port"`
	Path      string `koanf:"path"`
	Namespace string `koanf:"namespace"`
	Subsystem string `koanf:"subsystem"`
}

// TracingConfig - настройки OpenTelemetry
type TracingConfig struct {
	Enabled     bool    `koanf:"enabled"`
	Endpoint    string  `koanf:"endpoint"`
	ServiceName string  `koanf:"service_name"`
	SampleRate  float64 `koanf:"sample_rate"`
}

// CacheConfig - настройки кэширования результатов роутинга
type CacheConfig struct {
	Enabled    bool          `koanf:"enabled"`
	Driver     string        `koanf:"driver"` // redis, memory
	Host       string        `koanf:"host"`
	Port       int           `koanf:"port"`
	Password   string        `koanf:"password"`
	DB         int           `koanf:"db"`
	DefaultTTL time.Duration `koanf:"default_ttl"`
	MaxEntries int           `koanf:"max_entries"` // для in-memory
}

// Address возвращает адрес кэша
func (c CacheConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RouterConfig - настройки роутера и пайплайна согласования
type RouterConfig struct {
	PipsPath      string  `koanf:"pips_path"`      // файл pips.txt
	Solver        string  `koanf:"solver"`         // simple, steiner, simple-steiner
	HistFactor    float64 `koanf:"hist_factor"`    // исторический фактор
	MaxIterations int     `koanf:"max_iterations"` // лимит итераций
	Runners       int     `koanf:"runners"`        // одновременные тесты в backend
}

// ReportConfig - настройки генерации отчётов
type ReportConfig struct {
	Format     string `koanf:"format"` // typst, csv, xlsx, pdf
	OutputDir  string `koanf:"output_dir"`
	Author     string `koanf:"author"`
	CompileSVG bool   `koanf:"compile_svg"` // вызывать ли typst compile
}

// Validate проверяет корректность конфигурации
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid http port: %d", c.HTTP.Port)
	}
	switch strings.ToLower(c.Router.Solver) {
	case "simple", "steiner", "simple-steiner":
	default:
		return fmt.Errorf("invalid solver: %q", c.Router.Solver)
	}
	if c.Router.HistFactor < 0 {
		return fmt.Errorf("hist_factor must be non-negative, got %f", c.Router.HistFactor)
	}
	if c.Router.MaxIterations <= 0 {
		return fmt.Errorf("max_iterations must be positive, got %d", c.Router.MaxIterations)
	}
	if c.Router.Runners <= 0 {
		return fmt.Errorf("runners must be positive, got %d", c.Router.Runners)
	}
	if c.Cache.Enabled {
		switch strings.ToLower(c.Cache.Driver) {
		case "memory", "redis":
		default:
			return fmt.Errorf("invalid cache driver: %q", c.Cache.Driver)
		}
	}
	return nil
}

// IsProduction возвращает true для production окружения
func (c *Config) IsProduction() bool {
	return strings.ToLower(c.App.Environment) == "production"
}
