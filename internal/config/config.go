package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"jobboard/internal/database"
)

type Config struct {
	HTTPPort       string
	LogLevel       string
	RequestTimeout time.Duration

	DBDriver       string
	DatabaseURL    string
	DBMaxOpenConns int
	DBMaxIdleConns int
	DBConnMaxIdle  time.Duration
	DBConnMaxLife  time.Duration
	DBPingTimeout  time.Duration
	DBAutoMigrate  bool

	JWTSecret      string
	AccessTokenTTL time.Duration
	BcryptCost     int

	RedisURL       string
	AuthRateLimit  int
	AuthRateWindow time.Duration

	CoverLetterMin  int
	CoverLetterMax  int
	PageSizeDefault int
	PageSizeMax     int
}

var defaults = map[string]any{
	"HTTP_PORT":         "8080",
	"LOG_LEVEL":         "info",
	"REQUEST_TIMEOUT":   10 * time.Second,
	"DB_DRIVER":         database.DriverPgx,
	"DATABASE_URL":      "",
	"DB_MAX_OPEN_CONNS": 25,
	"DB_MAX_IDLE_CONNS": 10,
	"DB_CONN_MAX_IDLE":  5 * time.Minute,
	"DB_CONN_MAX_LIFE":  30 * time.Minute,
	"DB_PING_TIMEOUT":   30 * time.Second,
	"DB_AUTO_MIGRATE":   false,
	"JWT_SECRET":        "",
	"ACCESS_TOKEN_TTL":  24 * time.Hour,
	"BCRYPT_COST":       12,
	"REDIS_URL":         "",
	"AUTH_RATE_LIMIT":   20,
	"AUTH_RATE_WINDOW":  time.Minute,
	"COVER_LETTER_MIN":  10,
	"COVER_LETTER_MAX":  2000,
	"PAGE_SIZE_DEFAULT": 10,
	"PAGE_SIZE_MAX":     50,
}

// Load reads configuration from the environment, falling back to the file
// named by CONFIG_FILE for keys the environment leaves unset.
func Load() (*Config, error) {
	v, err := newViper()
	if err != nil {
		return nil, err
	}
	cfg := &Config{
		HTTPPort:        v.GetString("HTTP_PORT"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		RequestTimeout:  v.GetDuration("REQUEST_TIMEOUT"),
		DBDriver:        strings.ToLower(strings.TrimSpace(v.GetString("DB_DRIVER"))),
		DatabaseURL:     v.GetString("DATABASE_URL"),
		DBMaxOpenConns:  v.GetInt("DB_MAX_OPEN_CONNS"),
		DBMaxIdleConns:  v.GetInt("DB_MAX_IDLE_CONNS"),
		DBConnMaxIdle:   v.GetDuration("DB_CONN_MAX_IDLE"),
		DBConnMaxLife:   v.GetDuration("DB_CONN_MAX_LIFE"),
		DBPingTimeout:   v.GetDuration("DB_PING_TIMEOUT"),
		DBAutoMigrate:   v.GetBool("DB_AUTO_MIGRATE"),
		JWTSecret:       v.GetString("JWT_SECRET"),
		AccessTokenTTL:  v.GetDuration("ACCESS_TOKEN_TTL"),
		BcryptCost:      v.GetInt("BCRYPT_COST"),
		RedisURL:        v.GetString("REDIS_URL"),
		AuthRateLimit:   v.GetInt("AUTH_RATE_LIMIT"),
		AuthRateWindow:  v.GetDuration("AUTH_RATE_WINDOW"),
		CoverLetterMin:  v.GetInt("COVER_LETTER_MIN"),
		CoverLetterMax:  v.GetInt("COVER_LETTER_MAX"),
		PageSizeDefault: v.GetInt("PAGE_SIZE_DEFAULT"),
		PageSizeMax:     v.GetInt("PAGE_SIZE_MAX"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDatabase reads only the keys needed to reach the database. The
// migration tool uses it so it can run without JWT settings.
func LoadDatabase() (database.Config, error) {
	v, err := newViper()
	if err != nil {
		return database.Config{}, err
	}
	cfg := Config{
		DBDriver:       strings.ToLower(strings.TrimSpace(v.GetString("DB_DRIVER"))),
		DatabaseURL:    v.GetString("DATABASE_URL"),
		DBMaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		DBMaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		DBConnMaxIdle:  v.GetDuration("DB_CONN_MAX_IDLE"),
		DBConnMaxLife:  v.GetDuration("DB_CONN_MAX_LIFE"),
		DBPingTimeout:  v.GetDuration("DB_PING_TIMEOUT"),
	}
	if err := cfg.validateDatabase(); err != nil {
		return database.Config{}, err
	}
	return cfg.Database(), nil
}

func newViper() (*viper.Viper, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()
	if file := strings.TrimSpace(v.GetString("CONFIG_FILE")); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", file, err)
		}
	}
	return v, nil
}

func (c *Config) Validate() error {
	var errs []error
	if err := c.validateDatabase(); err != nil {
		errs = append(errs, err)
	}
	if strings.TrimSpace(c.JWTSecret) == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.AccessTokenTTL <= 0 {
		errs = append(errs, errors.New("ACCESS_TOKEN_TTL must be positive"))
	}
	if c.CoverLetterMin < 1 || c.CoverLetterMax < c.CoverLetterMin {
		errs = append(errs, fmt.Errorf("cover letter bounds %d..%d are invalid", c.CoverLetterMin, c.CoverLetterMax))
	}
	if c.PageSizeDefault < 1 || c.PageSizeMax < c.PageSizeDefault {
		errs = append(errs, fmt.Errorf("page size bounds default=%d max=%d are invalid", c.PageSizeDefault, c.PageSizeMax))
	}
	if c.AuthRateLimit < 0 {
		errs = append(errs, errors.New("AUTH_RATE_LIMIT must not be negative"))
	}
	if c.AuthRateLimit > 0 && c.AuthRateWindow <= 0 {
		errs = append(errs, errors.New("AUTH_RATE_WINDOW must be positive"))
	}
	return errors.Join(errs...)
}

func (c *Config) validateDatabase() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return errors.New("DATABASE_URL is required")
	}
	if _, err := database.DialectFor(c.DBDriver); err != nil {
		return fmt.Errorf("DB_DRIVER: %w", err)
	}
	return nil
}

func (c *Config) Database() database.Config {
	return database.Config{
		Driver:          c.DBDriver,
		DSN:             c.DatabaseURL,
		MaxOpenConns:    c.DBMaxOpenConns,
		MaxIdleConns:    c.DBMaxIdleConns,
		ConnMaxIdle:     c.DBConnMaxIdle,
		ConnMaxLifetime: c.DBConnMaxLife,
		PingTimeout:     c.DBPingTimeout,
	}
}
