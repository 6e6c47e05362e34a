package redisession

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the session backend configuration.
// All fields can be populated from environment variables; zero values are
// replaced with the documented defaults when the handler is constructed.
type Config struct {
	// Addr is the Redis server address without the port.
	Addr string `env:"SESSION_REDIS_ADDR" envDefault:"127.0.0.1"`

	// Port is the Redis server port.
	Port int `env:"SESSION_REDIS_PORT" envDefault:"6379"`

	// Password is the optional AUTH credential. Empty means no authentication.
	Password string `env:"SESSION_REDIS_PASSWORD" envDefault:""`

	// DB is the logical Redis database index.
	DB int `env:"SESSION_REDIS_DB" envDefault:"0"`

	// KeyPrefix namespaces session keys in the store.
	KeyPrefix string `env:"SESSION_KEY_PREFIX" envDefault:"PHPSESSID:"`

	// TTL is the session lifetime. It is stamped on every write and refreshed
	// on every successful read, so it behaves as an idle timeout.
	TTL time.Duration `env:"SESSION_TTL" envDefault:"30m"`

	// CookieName is the name of the client session cookie cleared on Destroy.
	CookieName string `env:"SESSION_COOKIE_NAME" envDefault:"sid"`

	// RetryAttempts is the number of connection attempts made by Open.
	RetryAttempts int `env:"SESSION_REDIS_RETRY_ATTEMPTS" envDefault:"3"`

	// RetryInterval is the delay between connection attempts.
	RetryInterval time.Duration `env:"SESSION_REDIS_RETRY_INTERVAL" envDefault:"5s"`

	// ConnectTimeout bounds the whole connection phase including retries.
	ConnectTimeout time.Duration `env:"SESSION_REDIS_CONNECT_TIMEOUT" envDefault:"30s"`
}

// DefaultConfig returns the configuration used when nothing is set:
// a local unauthenticated Redis on database 0, "PHPSESSID:" key prefix
// and a 30 minute session TTL.
func DefaultConfig() Config {
	return Config{
		Addr:           "127.0.0.1",
		Port:           6379,
		Password:       "",
		DB:             0,
		KeyPrefix:      "PHPSESSID:",
		TTL:            30 * time.Minute,
		CookieName:     "sid",
		RetryAttempts:  3,
		RetryInterval:  5 * time.Second,
		ConnectTimeout: 30 * time.Second,
	}
}

// applyDefaults fills zero-valued fields so a partially populated Config is
// usable. The prefix is left alone: an explicitly empty prefix is legal, it
// just stores sessions under their bare identifiers.
func (c Config) applyDefaults() Config {
	def := DefaultConfig()
	if c.Addr == "" {
		c.Addr = def.Addr
	}
	if c.Port == 0 {
		c.Port = def.Port
	}
	if c.TTL <= 0 {
		c.TTL = def.TTL
	}
	if c.CookieName == "" {
		c.CookieName = def.CookieName
	}
	if c.RetryAttempts <= 0 {
		c.RetryAttempts = def.RetryAttempts
	}
	if c.RetryInterval <= 0 {
		c.RetryInterval = def.RetryInterval
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = def.ConnectTimeout
	}
	return c
}

// LoadConfig resolves configuration from the environment. A .env file is
// loaded first when present; missing variables fall back to the struct tag
// defaults. The result is an explicit value, there is no ambient config
// state mutated behind the scenes.
func LoadConfig() (Config, error) {
	// The .env file is optional.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Join(ErrParsingConfig, err)
	}
	return cfg, nil
}
