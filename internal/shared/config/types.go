// Package config defines the configuration types shared across the
// application. Loading lives in internal/infrastructure/config.
package config

import (
	"fmt"
	"time"
)

type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// GetAddr returns the listen address in host:port format.
func (c ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Enabled  bool   `mapstructure:"enabled"`
}

type AuthConfig struct {
	JWTSecret        string `mapstructure:"jwt_secret"`
	AccessExpMinutes int    `mapstructure:"access_exp_minutes"`
}

// SessionConfig configures the session lifecycle engine.
type SessionConfig struct {
	// LifetimeMinutes is the rolling idle window used by the session store.
	LifetimeMinutes int `mapstructure:"lifetime_minutes"`
	// MaxConcurrent caps active sessions per user.
	MaxConcurrent int `mapstructure:"max_concurrent"`
	// SuspiciousWindowMinutes is the lookback window for the activity detector.
	SuspiciousWindowMinutes int `mapstructure:"suspicious_window_minutes"`
	// LongIdleHours marks sessions without expires_at inactive after this idle time.
	LongIdleHours int `mapstructure:"long_idle_hours"`
	// ShortIdleHours is the activity window a session must fall in to count a user as active.
	ShortIdleHours int `mapstructure:"short_idle_hours"`
}

func (c SessionConfig) Lifetime() time.Duration {
	return time.Duration(c.LifetimeMinutes) * time.Minute
}

func (c SessionConfig) SuspiciousWindow() time.Duration {
	return time.Duration(c.SuspiciousWindowMinutes) * time.Minute
}

func (c SessionConfig) LongIdle() time.Duration {
	return time.Duration(c.LongIdleHours) * time.Hour
}

func (c SessionConfig) ShortIdle() time.Duration {
	return time.Duration(c.ShortIdleHours) * time.Hour
}

// WidgetConfig configures the domain authorization verifier.
type WidgetConfig struct {
	// Mode selects how domain authorization is resolved: "direct" or "remote".
	Mode string `mapstructure:"mode"`
	// RemoteURL is the base URL of the remote verification endpoint.
	RemoteURL string `mapstructure:"remote_url"`
	// TimeoutSeconds bounds the connectivity probe and the verification call.
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
	// CacheTTLSeconds is the redis verdict cache TTL; 0 disables caching.
	CacheTTLSeconds int `mapstructure:"cache_ttl_seconds"`
	// VerifyRatePerMinute throttles the public verify endpoint per client
	// IP; 0 disables throttling.
	VerifyRatePerMinute int `mapstructure:"verify_rate_per_minute"`
}

func (c WidgetConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c WidgetConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}
