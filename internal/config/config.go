package config

import (
	"fmt"
	"time"

	coreconfig "github.com/go-core-fx/config"
)

// Config holds the process-wide settings. Everything the pagination driver
// and the upstream client need is resolved once at startup; nothing reads the
// environment at call sites.
type Config struct {
	ToastHostname       string        `koanf:"toast_hostname"`
	ToastClientID       string        `koanf:"toast_client_id"`
	ToastClientSecret   string        `koanf:"toast_client_secret"`
	ToastRestaurantGUID string        `koanf:"toast_restaurant_guid"`
	ListenAddr          string        `koanf:"listen_addr"`
	DashboardOrigin     string        `koanf:"dashboard_origin"`
	Timeout             time.Duration `koanf:"timeout"`
	LogFile             string        `koanf:"log_file"`
	Debug               bool          `koanf:"debug"`
}

func New() (Config, error) {
	cfg := Config{
		ListenAddr:      ":8080",
		DashboardOrigin: "http://localhost:5173",
		Timeout:         30 * time.Second,
		LogFile:         "./toast-dashboard.log",
		Debug:           false,
	}

	if err := coreconfig.Load(&cfg); err != nil {
		return Config{}, fmt.Errorf("loading config: %w", err)
	}

	return cfg, nil
}
