package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del scanner.
type Config struct {
	Scanner  ScannerConfig  `yaml:"scanner"`
	API      APIConfig      `yaml:"api"`
	HTTP     HTTPConfig     `yaml:"http"`
	Storage  StorageConfig  `yaml:"storage"`
	Telegram TelegramConfig `yaml:"telegram"`
	Log      LogConfig      `yaml:"log"`
}

// ScannerConfig controla el comportamiento del scanner.
type ScannerConfig struct {
	IntervalSeconds     int     `yaml:"interval_seconds"`
	CycleTimeoutSeconds int     `yaml:"cycle_timeout_seconds"`
	MinEV               float64 `yaml:"min_ev"`             // EV mínimo (%) para alertar
	MinLiquidity        float64 `yaml:"min_liquidity"`      // USDC mínimos de profundidad
	MaxExpiryMinutes    int     `yaml:"max_expiry_minutes"` // ventana de expiración
}

// APIConfig contiene los base URLs de las APIs externas.
type APIConfig struct {
	GammaBase string `yaml:"gamma_base"`
}

// HTTPConfig controla el read path HTTP que expone el scanner.
type HTTPConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// StorageConfig controla dónde se persisten las alertas.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// TelegramConfig habilita el notificador de Telegram si ambos campos están presentes.
type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	ChatID   string `yaml:"chat_id"`
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Un archivo YAML ausente no es error: los defaults cubren todos los campos.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// seguimos con defaults
	case err != nil:
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// ScanInterval devuelve el intervalo de escaneo como time.Duration.
func (c *Config) ScanInterval() time.Duration {
	return time.Duration(c.Scanner.IntervalSeconds) * time.Second
}

// CycleTimeout devuelve la cota de duración de un ciclo como time.Duration.
func (c *Config) CycleTimeout() time.Duration {
	return time.Duration(c.Scanner.CycleTimeoutSeconds) * time.Second
}

// MaxExpiryWindow devuelve la ventana de expiración como time.Duration.
func (c *Config) MaxExpiryWindow() time.Duration {
	return time.Duration(c.Scanner.MaxExpiryMinutes) * time.Minute
}

// TelegramEnabled devuelve true si hay token y chat configurados.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Scanner.IntervalSeconds <= 0 {
		cfg.Scanner.IntervalSeconds = 60
	}
	if cfg.Scanner.CycleTimeoutSeconds <= 0 {
		cfg.Scanner.CycleTimeoutSeconds = 30
	}
	if cfg.Scanner.MinEV <= 0 {
		cfg.Scanner.MinEV = 3.0
	}
	if cfg.Scanner.MinLiquidity <= 0 {
		cfg.Scanner.MinLiquidity = 5_000
	}
	if cfg.Scanner.MaxExpiryMinutes <= 0 {
		cfg.Scanner.MaxExpiryMinutes = 60
	}
	if cfg.API.GammaBase == "" {
		cfg.API.GammaBase = "https://gamma-api.polymarket.com"
	}
	if cfg.HTTP.ListenAddr == "" {
		cfg.HTTP.ListenAddr = ":8080"
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "edgescan.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
