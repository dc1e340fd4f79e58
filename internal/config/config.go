package config

import (
	"flag"
	"fmt"
	"github.com/ilyakaznacheev/cleanenv"
	"os"
	"time"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverBolt     = "bolt"

	InventoryDriverStore = "store"
	InventoryDriverRedis = "redis"

	NotifyDriverLog   = "log"
	NotifyDriverRedis = "redis"
)

type Config struct {
	Env        string     `yaml:"env" env:"ENV" env-default:"local"`
	Storage    Storage    `yaml:"storage"`
	Inventory  Inventory  `yaml:"inventory"`
	Database   Database   `yaml:"database"`
	Bolt       Bolt       `yaml:"bolt"`
	Redis      Redis      `yaml:"redis"`
	Credential Credential `yaml:"credential"`
	Notify     Notify     `yaml:"notify"`
	Audit      Audit      `yaml:"audit"`
	HTTPServer HTTPServer `yaml:"http_server"`
}

type Storage struct {
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"postgres"`
}

// Inventory selects where ticket counters live. "store" keeps them next to
// the ledger; "redis" moves them to Redis.
type Inventory struct {
	Driver string `yaml:"driver" env:"INVENTORY_DRIVER" env-default:"store"`
}

type Database struct {
	Host         string        `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port         int           `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User         string        `yaml:"user" env:"DB_USER" env-default:"postgres"`
	Password     string        `yaml:"password" env:"DB_PASSWORD"`
	DBName       string        `yaml:"dbname" env:"DB_NAME" env-default:"event_pass"`
	SSLMode      string        `yaml:"sslmode" env:"DB_SSLMODE" env-default:"disable"`
	MaxOpenConns int           `yaml:"max_open_conns" env-default:"25"`
	MaxIdleConns int           `yaml:"max_idle_conns" env-default:"25"`
	ConnLifetime time.Duration `yaml:"conn_lifetime" env-default:"5m"`
}

type Bolt struct {
	Path string `yaml:"path" env:"BOLT_PATH" env-default:"./storage/event_pass.db"`
}

type Redis struct {
	Address  string `yaml:"address" env:"REDIS_ADDRESS" env-default:"localhost:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

// Credential configures ticket credential signing. SigningSeed is a hex
// encoded 32-byte Ed25519 seed; when empty the keypair is loaded from (or
// generated into) KeyDir. Every instance behind one backend must share the key.
type Credential struct {
	SigningSeed string        `yaml:"signing_seed" env:"CREDENTIAL_SIGNING_SEED"`
	KeyDir      string        `yaml:"key_dir" env:"CREDENTIAL_KEY_DIR" env-default:"./storage"`
	TTL         time.Duration `yaml:"ttl" env:"CREDENTIAL_TTL" env-default:"0s"`
}

type Notify struct {
	Driver  string        `yaml:"driver" env:"NOTIFY_DRIVER" env-default:"log"`
	Stream  string        `yaml:"stream" env-default:"event-pass:notifications"`
	Timeout time.Duration `yaml:"timeout" env-default:"5s"`
}

type Audit struct {
	Interval time.Duration `yaml:"interval" env-default:"1m"`
}

type HTTPServer struct {
	Address         string        `yaml:"address" env-default:"localhost:8080"`
	Timeout         time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"10s"`
}

func MustLoad() *Config {
	configPath := fetchConfigPath()
	if configPath == "" {
		panic("config path is empty")
	}

	return MustLoadPath(configPath)
}

func MustLoadPath(configPath string) *Config {
	cfg, err := LoadPath(configPath)
	if err != nil {
		panic(err.Error())
	}

	return cfg
}

func LoadPath(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case StorageDriverPostgres, StorageDriverBolt:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	switch c.Inventory.Driver {
	case InventoryDriverStore, InventoryDriverRedis:
	default:
		return fmt.Errorf("unknown inventory driver %q", c.Inventory.Driver)
	}

	switch c.Notify.Driver {
	case NotifyDriverLog, NotifyDriverRedis:
	default:
		return fmt.Errorf("unknown notify driver %q", c.Notify.Driver)
	}

	if c.Credential.TTL < 0 {
		return fmt.Errorf("credential ttl must not be negative")
	}

	if c.Audit.Interval <= 0 {
		return fmt.Errorf("audit interval must be positive")
	}

	if c.Notify.Timeout <= 0 {
		return fmt.Errorf("notify timeout must be positive")
	}

	return nil
}

// fetchConfigPath fetches config path from command line flag or environment variable.
// Priority: flag > env > default.
// Default value is empty string.
func fetchConfigPath() string {
	var res string

	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	return res
}
