// Package config loads service configuration from the environment.
package config

import (
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Config holds every setting of the org service
type Config struct {
	Port        string `env:"MS_PORT" envDefault:"3000"`
	AppName     string `env:"APP_NAME" envDefault:"orgs-backend API v1.0"`
	BodyLimit   int    `env:"BODY_LIMIT" envDefault:"4194304"`
	ReadTimeout int    `env:"READ_TIMEOUT" envDefault:"60"`
	CorsOrigins string `env:"CORS_ORIGINS" envDefault:"http://localhost:3000,http://127.0.0.1:3000"`
	JwtSecret   string `env:"JWT_SECRET"`
	RosterPath  string `env:"ROSTER_PATH" envDefault:"/etc/orgs/roster.yaml"`

	Arango ArangoConfig `envPrefix:"ARANGO_"`
	Email  EmailConfig  `envPrefix:"SMTP_"`
	Kafka  KafkaConfig  `envPrefix:"KAFKA_"`
	Redis  RedisConfig  `envPrefix:"REDIS_"`
}

// ArangoConfig holds the document store connection settings
type ArangoConfig struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     string `env:"PORT" envDefault:"8529"`
	User     string `env:"USER" envDefault:"root"`
	Pass     string `env:"PASS" envDefault:"mypassword"`
	URL      string `env:"URL"`
	Database string `env:"DATABASE" envDefault:"orgs"`
}

// Endpoint returns the configured URL or one built from host and port
func (a ArangoConfig) Endpoint() string {
	if a.URL != "" {
		return a.URL
	}
	return "http://" + a.Host + ":" + a.Port
}

// EmailConfig holds email service configuration
type EmailConfig struct {
	Host         string `env:"HOST" envDefault:"smtp.gmail.com"`
	Port         int    `env:"PORT" envDefault:"587"`
	Username     string `env:"USERNAME"`
	Password     string `env:"PASSWORD"`
	SkipInsecure bool   `env:"SKIP_INSECURE" envDefault:"false"`
	FromEmail    string `env:"FROM_EMAIL" envDefault:"noreply@devexchange.local"`
	FromName     string `env:"FROM_NAME" envDefault:"Developer's Exchange"`
	BaseURL      string `env:"BASE_URL" envDefault:"http://localhost:3000"`
}

// Configured reports whether SMTP credentials were supplied
func (e EmailConfig) Configured() bool {
	return e.Username != "" && e.Password != ""
}

// KafkaConfig holds the membership event topic settings
type KafkaConfig struct {
	Brokers   string `env:"BROKERS"`
	Topic     string `env:"TOPIC" envDefault:"org-membership-events"`
	GroupID   string `env:"GROUP_ID" envDefault:"orgs-backend-notifier"`
	APIKey    string `env:"API_KEY"`
	APISecret string `env:"API_SECRET"`
}

// BrokerList splits the comma separated broker setting
func (k KafkaConfig) BrokerList() []string {
	if strings.TrimSpace(k.Brokers) == "" {
		return nil
	}
	var brokers []string
	for _, b := range strings.Split(k.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// RedisConfig holds the public org list cache settings
type RedisConfig struct {
	Addr     string `env:"ADDR"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
	TTL      int    `env:"TTL_SECONDS" envDefault:"300"`
}

// Parse reads an optional .env file and then the process environment
func Parse() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
