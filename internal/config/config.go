package config

import (
	"fmt"

	"github.com/bookwise/service-booking/internal/domain/booking"
	"github.com/bookwise/service-booking/pkg/config"
	"github.com/spf13/viper"
)

// ServiceConfig holds all configuration for the booking service.
type ServiceConfig struct {
	Port        string
	AppEnv      string
	DBConfig    config.DatabaseConfig
	JWTConfig   config.JWTConfig
	KafkaConfig config.KafkaConfig

	BookingWindow booking.Window
	BookingQuota  int
}

// Load reads configuration from environment variables.
func Load() (*ServiceConfig, error) {
	v, err := config.Load("BOOKING")
	if err != nil {
		return nil, err
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*ServiceConfig, error) {
	v.SetDefault("SERVICE_PORT", ":8004")
	v.SetDefault("DB_NAME", "booking_db")
	v.SetDefault("BOOKING_WINDOW_START", "2022-05-10")
	v.SetDefault("BOOKING_WINDOW_END", "2022-05-13")
	v.SetDefault("BOOKING_QUOTA", 3)

	window, err := booking.NewWindow(v.GetString("BOOKING_WINDOW_START"), v.GetString("BOOKING_WINDOW_END"))
	if err != nil {
		return nil, err
	}

	quota := v.GetInt("BOOKING_QUOTA")
	if quota < 0 {
		return nil, fmt.Errorf("BOOKING_QUOTA must not be negative, got %d", quota)
	}

	return &ServiceConfig{
		Port:          config.GetServicePort(v, "SERVICE_PORT"),
		AppEnv:        config.GetAppEnv(v),
		DBConfig:      config.LoadDatabaseConfig(v, "DB_NAME"),
		JWTConfig:     config.LoadJWTConfig(v),
		KafkaConfig:   config.LoadKafkaConfig(v),
		BookingWindow: window,
		BookingQuota:  quota,
	}, nil
}
