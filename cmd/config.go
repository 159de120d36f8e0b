package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	DBDriver   string

	GatewayBaseURL string
	GatewayProject string
	GatewayAPIKey  string
	GatewayTimeout time.Duration

	AMQPURL      string
	AMQPExchange string

	JWTSecret string

	MinPingInterval     time.Duration
	SweepSchedule       string
	SweepBatchSize      int
	ReminderDelay       time.Duration
	PaymentExpiryWindow time.Duration
	RelaySchedule       string

	LogLevel slog.Level
}

// LoadConfig reads the environment, after loading envFile into it when the
// file exists. Variables already set in the environment win over the file.
func LoadConfig(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	var errs []error
	cfg := Config{
		HTTPPort:   getEnv("HTTP_PORT", "8080"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBSslMode:  getEnv("DB_SSLMODE", "disable"),
		DBDriver:   getEnv("DB_DRIVER", "postgres"),

		GatewayBaseURL: os.Getenv("GATEWAY_BASE_URL"),
		GatewayProject: os.Getenv("GATEWAY_PROJECT"),
		GatewayAPIKey:  os.Getenv("GATEWAY_API_KEY"),
		GatewayTimeout: getDuration("GATEWAY_TIMEOUT", 12*time.Second, &errs),

		AMQPURL:      os.Getenv("AMQP_URL"),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "fulfillment.notifications"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		MinPingInterval:     getDuration("GPS_MIN_PING_INTERVAL", 10*time.Second, &errs),
		SweepSchedule:       getEnv("PAYMENT_SWEEP_SCHEDULE", "0 */5 * * * *"),
		SweepBatchSize:      getInt("PAYMENT_SWEEP_BATCH_SIZE", 50, &errs),
		ReminderDelay:       getDuration("PAYMENT_REMINDER_DELAY", 6*time.Hour, &errs),
		PaymentExpiryWindow: getDuration("PAYMENT_EXPIRY_WINDOW", 24*time.Hour, &errs),
		RelaySchedule:       getEnv("NOTIFICATION_RELAY_SCHEDULE", "*/10 * * * * *"),
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}

	for key, value := range map[string]string{
		"DB_USER":          cfg.DBUser,
		"DB_NAME":          cfg.DBName,
		"GATEWAY_BASE_URL": cfg.GatewayBaseURL,
		"GATEWAY_PROJECT":  cfg.GatewayProject,
		"AMQP_URL":         cfg.AMQPURL,
		"JWT_SECRET":       cfg.JWTSecret,
	} {
		if value == "" {
			errs = append(errs, fmt.Errorf("%s is required", key))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration, errs *[]error) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return d
}

func getInt(key string, fallback int, errs *[]error) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return n
}
