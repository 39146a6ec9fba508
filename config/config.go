package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App     AppConfig
	DB      DBConfig
	Redis   RedisConfig
	JWT     JWTConfig
	Booking BookingConfig
	Payment PaymentConfig
}

type AppConfig struct {
	Port string
	Env  string
}

type DBConfig struct {
	Host          string
	Port          string
	User          string
	Password      string
	Name          string
	MigrationsDir string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// BookingConfig carries the booking business-rule constants. They are
// configuration, not code: deployments disagree on slot sizes and notice
// windows.
type BookingConfig struct {
	MinSlotDuration      time.Duration
	RescheduleNotice     time.Duration
	AdvanceBookingWindow time.Duration
	FullRefundWindow     time.Duration
	PartialRefundPercent int
	SlotLockTTL          time.Duration
	NoShowSweepInterval  time.Duration
	RateLimitPerMinute   int
}

type PaymentConfig struct {
	BaseURL       string
	KeyID         string
	KeySecret     string
	WebhookSecret string
	Timeout       time.Duration
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	config := &Config{
		App: AppConfig{
			Port: viper.GetString("APP_PORT"),
			Env:  viper.GetString("APP_ENV"),
		},
		DB: DBConfig{
			Host:          viper.GetString("DB_HOST"),
			Port:          viper.GetString("DB_PORT"),
			User:          viper.GetString("DB_USER"),
			Password:      viper.GetString("DB_PASSWORD"),
			Name:          viper.GetString("DB_NAME"),
			MigrationsDir: viper.GetString("DB_MIGRATIONS_DIR"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:        viper.GetString("JWT_SECRET"),
			AccessExpiry:  durationOr("JWT_ACCESS_EXPIRY", 15*time.Minute),
			RefreshExpiry: durationOr("JWT_REFRESH_EXPIRY", 7*24*time.Hour),
		},
		Booking: BookingConfig{
			MinSlotDuration:      durationOr("BOOKING_MIN_SLOT_DURATION", 15*time.Minute),
			RescheduleNotice:     durationOr("BOOKING_RESCHEDULE_NOTICE", 2*time.Hour),
			AdvanceBookingWindow: durationOr("BOOKING_ADVANCE_WINDOW", 30*24*time.Hour),
			FullRefundWindow:     durationOr("BOOKING_FULL_REFUND_WINDOW", 24*time.Hour),
			PartialRefundPercent: intOr("BOOKING_PARTIAL_REFUND_PERCENT", 50),
			SlotLockTTL:          durationOr("BOOKING_SLOT_LOCK_TTL", 10*time.Second),
			NoShowSweepInterval:  durationOr("BOOKING_NOSHOW_SWEEP_INTERVAL", 5*time.Minute),
			RateLimitPerMinute:   intOr("RATE_LIMIT_PER_MINUTE", 60),
		},
		Payment: PaymentConfig{
			BaseURL:       viper.GetString("PAYMENT_BASE_URL"),
			KeyID:         viper.GetString("PAYMENT_KEY_ID"),
			KeySecret:     viper.GetString("PAYMENT_KEY_SECRET"),
			WebhookSecret: viper.GetString("PAYMENT_WEBHOOK_SECRET"),
			Timeout:       durationOr("PAYMENT_TIMEOUT", 15*time.Second),
		},
	}

	if config.DB.MigrationsDir == "" {
		config.DB.MigrationsDir = "db/migrations"
	}

	return config, nil
}

func durationOr(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(viper.GetString(key))
	if err != nil {
		return fallback
	}
	return d
}

func intOr(key string, fallback int) int {
	if !viper.IsSet(key) {
		return fallback
	}
	return viper.GetInt(key)
}
