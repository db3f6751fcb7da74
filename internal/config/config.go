package config

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

type Config struct {
	Env       string          `yaml:"env"`       // Env is the current environment: local, development, production.
	Storage   StorageConfig   `yaml:"storage"`   // Storage selects the employee gateway implementation.
	Postgres  PostgresConfig  `yaml:"postgres"`  // Postgres holds the database configuration
	HTTP      HTTPConfig      `yaml:"http"`      // HTTP holds the API and monitoring listeners
	Paging    PagingConfig    `yaml:"paging"`    // Paging holds defaults for bulk reads
	Policy    PolicyConfig    `yaml:"policy"`    // Policy holds behaviour switches of the registry
	Directory DirectoryConfig `yaml:"directory"` // Directory holds the staff directory import source
}

// StorageConfig struct selects where employee records live.
type StorageConfig struct {
	Driver string `yaml:"driver"` // Driver is either `postgres` or `memory`.
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string `yaml:"host"`     // Host is the database server address.
	Port     string `yaml:"port"`     // Port is the database server port.
	User     string `yaml:"user"`     // User is the database user.
	Password string `yaml:"password"` // Password is the database user's password.
	Dbname   string `yaml:"db_name"`  // Dbname is the name of the database.
}

// HTTPConfig struct holds the listener settings of the API and the monitoring server.
type HTTPConfig struct {
	Port            int           `yaml:"port"`
	MonitoringPort  int           `yaml:"monitoring_port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// PagingConfig struct holds the page size used when a client does not ask for one, and the upper bound.
type PagingConfig struct {
	DefaultSize int `yaml:"default_size"`
	MaxSize     int `yaml:"max_size"`
}

// PolicyConfig struct holds switches that change observable behaviour without touching call sites.
type PolicyConfig struct {
	RevalidateEmailOnUpdate bool `yaml:"revalidate_email_on_update"`
	NotFoundStatus          int  `yaml:"not_found_status"`
	ConflictStatus          int  `yaml:"conflict_status"`
	HideFaultMessages       bool `yaml:"hide_fault_messages"`
}

// DirectoryConfig struct holds the configuration details for the staff directory website.
type DirectoryConfig struct {
	BaseURL      string        `yaml:"url"`           // BaseURL is the staff page in format `https://example.com/`
	LoginURL     string        `yaml:"login_url"`     // LoginURL is the url used to log in
	Username     string        `yaml:"username"`      // Username is the directory account
	Password     string        `yaml:"password"`      // Password is the directory account password
	Retries      int           `yaml:"login_retries"` // Retries is how many login attempts are made
	RetryBackoff time.Duration `yaml:"retry_backoff"` // RetryBackoff is the pause between login attempts
}

var envBindings = map[string]string{
	"env":                               "THEMIS_ENV",
	"storage.driver":                    "STORAGE_DRIVER",
	"postgres.host":                     "DB_HOST",
	"postgres.port":                     "DB_PORT",
	"postgres.user":                     "DB_USERNAME",
	"postgres.password":                 "DB_PASSWORD",
	"postgres.db_name":                  "DB_NAME",
	"http.port":                         "HTTP_PORT",
	"http.monitoring_port":              "MONITORING_PORT",
	"http.read_timeout":                 "HTTP_READ_TIMEOUT",
	"http.write_timeout":                "HTTP_WRITE_TIMEOUT",
	"http.idle_timeout":                 "HTTP_IDLE_TIMEOUT",
	"http.shutdown_timeout":             "HTTP_SHUTDOWN_TIMEOUT",
	"paging.default_size":               "PAGE_DEFAULT_SIZE",
	"paging.max_size":                   "PAGE_MAX_SIZE",
	"policy.revalidate_email_on_update": "REVALIDATE_EMAIL_ON_UPDATE",
	"policy.not_found_status":           "NOT_FOUND_STATUS",
	"policy.conflict_status":            "CONFLICT_STATUS",
	"policy.hide_fault_messages":        "HIDE_FAULT_MESSAGES",
	"directory.url":                     "DIRECTORY_URL",
	"directory.login_url":               "DIRECTORY_LOGIN_URL",
	"directory.username":                "DIRECTORY_USERNAME",
	"directory.password":                "DIRECTORY_PASSWORD",
	"directory.login_retries":           "DIRECTORY_LOGIN_RETRIES",
	"directory.retry_backoff":           "DIRECTORY_RETRY_BACKOFF",
}

var defaults = map[string]string{
	"env":                               "local",
	"storage.driver":                    StoragePostgres,
	"postgres.port":                     "5432",
	"http.port":                         "8080",
	"http.monitoring_port":              "8081",
	"http.read_timeout":                 "15s",
	"http.write_timeout":                "15s",
	"http.idle_timeout":                 "60s",
	"http.shutdown_timeout":             "10s",
	"paging.default_size":               "20",
	"paging.max_size":                   "100",
	"policy.revalidate_email_on_update": "false",
	"policy.not_found_status":           "400",
	"policy.conflict_status":            "400",
	"policy.hide_fault_messages":        "false",
	"directory.login_retries":           "3",
	"directory.retry_backoff":           "5s",
}

// MustLoad loads the configuration from the environment, an optional .env file (DOTENV_PATH)
// and an optional YAML file (CONFIG_PATH), and returns a Config struct. It panics on invalid values.
func MustLoad() *Config {
	dotenvPath := os.Getenv("DOTENV_PATH")
	if dotenvPath == "" {
		dotenvPath = ".env"
	}
	if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic("failed to load dotenv file: " + err.Error())
	}

	vpr := viper.New()
	for key, value := range defaults {
		vpr.SetDefault(key, value)
	}
	for key, env := range envBindings {
		if err := vpr.BindEnv(key, env); err != nil {
			panic("failed to bind env " + env + ": " + err.Error())
		}
	}

	if configPath := os.Getenv("CONFIG_PATH"); configPath != "" {
		// check if file exists
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			panic("config file does not exist: " + configPath)
		}

		vpr.SetConfigFile(configPath)
		if err := vpr.ReadInConfig(); err != nil {
			panic("config error: " + err.Error())
		}
	}

	cfg := &Config{
		Env: vpr.GetString("env"),
		Storage: StorageConfig{
			Driver: vpr.GetString("storage.driver"),
		},
		Postgres: PostgresConfig{
			Host:     vpr.GetString("postgres.host"),
			Port:     vpr.GetString("postgres.port"),
			User:     vpr.GetString("postgres.user"),
			Password: vpr.GetString("postgres.password"),
			Dbname:   vpr.GetString("postgres.db_name"),
		},
		HTTP: HTTPConfig{
			Port:            mustInt(vpr, "http.port"),
			MonitoringPort:  mustInt(vpr, "http.monitoring_port"),
			ReadTimeout:     mustDuration(vpr, "http.read_timeout"),
			WriteTimeout:    mustDuration(vpr, "http.write_timeout"),
			IdleTimeout:     mustDuration(vpr, "http.idle_timeout"),
			ShutdownTimeout: mustDuration(vpr, "http.shutdown_timeout"),
		},
		Paging: PagingConfig{
			DefaultSize: mustInt(vpr, "paging.default_size"),
			MaxSize:     mustInt(vpr, "paging.max_size"),
		},
		Policy: PolicyConfig{
			RevalidateEmailOnUpdate: mustBool(vpr, "policy.revalidate_email_on_update"),
			NotFoundStatus:          mustInt(vpr, "policy.not_found_status"),
			ConflictStatus:          mustInt(vpr, "policy.conflict_status"),
			HideFaultMessages:       mustBool(vpr, "policy.hide_fault_messages"),
		},
		Directory: DirectoryConfig{
			BaseURL:      vpr.GetString("directory.url"),
			LoginURL:     vpr.GetString("directory.login_url"),
			Username:     vpr.GetString("directory.username"),
			Password:     vpr.GetString("directory.password"),
			Retries:      mustInt(vpr, "directory.login_retries"),
			RetryBackoff: mustDuration(vpr, "directory.retry_backoff"),
		},
	}

	cfg.mustValidate()

	return cfg
}

func (c *Config) mustValidate() {
	switch c.Storage.Driver {
	case StoragePostgres, StorageMemory:
	default:
		panic("unsupported storage driver: " + c.Storage.Driver)
	}

	if c.Paging.DefaultSize < 1 || c.Paging.MaxSize < c.Paging.DefaultSize {
		panic("paging sizes must satisfy 1 <= default_size <= max_size")
	}

	for _, status := range []int{c.Policy.NotFoundStatus, c.Policy.ConflictStatus} {
		if status < http.StatusBadRequest || status > 599 {
			panic("policy statuses must be HTTP error codes, got " + strconv.Itoa(status))
		}
	}
}

func mustInt(vpr *viper.Viper, key string) int {
	value, err := strconv.Atoi(vpr.GetString(key))
	if err != nil {
		panic("failed to parse " + key + " from configuration")
	}
	return value
}

func mustBool(vpr *viper.Viper, key string) bool {
	value, err := strconv.ParseBool(vpr.GetString(key))
	if err != nil {
		panic("failed to parse " + key + " from configuration")
	}
	return value
}

func mustDuration(vpr *viper.Viper, key string) time.Duration {
	value, err := time.ParseDuration(vpr.GetString(key))
	if err != nil {
		panic("failed to parse " + key + " from configuration")
	}
	return value
}
