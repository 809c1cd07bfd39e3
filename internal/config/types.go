package config

import (
	"fmt"
	"time"
)

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	ClientURL       string        `mapstructure:"client_url"`
	BodyLimit       string        `mapstructure:"body_limit"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	LogLevel        string        `mapstructure:"log_level"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
	// MigrationsDir overrides where goose looks for SQL files. Empty means
	// next to the binary, then the module root.
	MigrationsDir string `mapstructure:"migrations_dir"`
}

// DSN renders the libpq connection string shared by gorm and goose.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode,
	)
}

type AuthConfig struct {
	JWTSecret            string        `mapstructure:"jwt_secret"`
	RefreshSecret        string        `mapstructure:"refresh_secret"`
	AccessTokenDuration  time.Duration `mapstructure:"access_token_duration"`
	RefreshTokenDuration time.Duration `mapstructure:"refresh_token_duration"`
	VerificationDuration time.Duration `mapstructure:"verification_duration"`
	ResetDuration        time.Duration `mapstructure:"reset_duration"`
	BcryptCost           int           `mapstructure:"bcrypt_cost"`
	MaxLoginAttempts     int           `mapstructure:"max_login_attempts"`
	LockDuration         time.Duration `mapstructure:"lock_duration"`
}

// AdminConfig describes the account created on first start.
type AdminConfig struct {
	Email     string `mapstructure:"email"`
	Password  string `mapstructure:"password"`
	FirstName string `mapstructure:"first_name"`
	Surname   string `mapstructure:"surname"`
	LastName  string `mapstructure:"last_name"`
	OrgName   string `mapstructure:"org_name"`
	Position  string `mapstructure:"position"`
}

type NotifyConfig struct {
	Driver     string `mapstructure:"driver"` // log or amqp
	From       string `mapstructure:"from"`
	AdminEmail string `mapstructure:"admin_email"`
	AMQPURL    string `mapstructure:"amqp_url"`
	Queue      string `mapstructure:"queue"`
}

type StorageConfig struct {
	Driver         string   `mapstructure:"driver"` // local or s3
	LocalDir       string   `mapstructure:"local_dir"`
	PublicPrefix   string   `mapstructure:"public_prefix"`
	MaxSize        int64    `mapstructure:"max_size"`
	AllowedTypes   []string `mapstructure:"allowed_types"`
	S3Bucket       string   `mapstructure:"s3_bucket"`
	S3Region       string   `mapstructure:"s3_region"`
	S3BaseEndpoint string   `mapstructure:"s3_base_endpoint"`
	S3AccessKey    string   `mapstructure:"s3_access_key"`
	S3SecretKey    string   `mapstructure:"s3_secret_key"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	TLS      bool   `mapstructure:"tls"`
}

type RateLimitConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	Capacity       int           `mapstructure:"capacity"`
	RefillTokens   int           `mapstructure:"refill_tokens"`
	RefillInterval time.Duration `mapstructure:"refill_interval"`
	TTL            time.Duration `mapstructure:"ttl"`
	Prefix         string        `mapstructure:"prefix"`
}

type AppConfig struct {
	Env       string          `mapstructure:"env"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Admin     AdminConfig     `mapstructure:"admin"`
	Notify    NotifyConfig    `mapstructure:"notify"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Redis     RedisConfig     `mapstructure:"redis"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// IsProduction reports whether detailed errors must be hidden from callers.
func (c *AppConfig) IsProduction() bool {
	return c.Env == "production"
}
