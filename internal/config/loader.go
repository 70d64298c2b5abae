package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Load reads the optional config file at path and applies defaults for every
// knob. Defaults mirror the deployment the agent was written for: a gunicorn
// service behind nginx with a SQLite database. Environment variables override
// file values (WATCHDOG_BACKUP_DIR, WATCHDOG_CHECKS_HEALTH_URL, ...).
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		_ = v.ReadInConfig()
	}

	v.SetDefault("services.app", "churchmap")
	v.SetDefault("services.proxy", "nginx")

	v.SetDefault("checks.health_url", "http://localhost:8000/")
	v.SetDefault("checks.health_timeout", "5s")
	v.SetDefault("checks.disk_path", "/")
	v.SetDefault("checks.disk_threshold", 80)
	v.SetDefault("checks.mem_threshold", 80)

	v.SetDefault("backup.source", "/srv/churchmap/db.sqlite3")
	v.SetDefault("backup.dir", "/srv/churchmap/backups")
	v.SetDefault("backup.retention", "168h")
	v.SetDefault("backup.hour", 2)

	v.SetDefault("restart.settle_delay", "5s")
	v.SetDefault("restart.poll_attempts", 3)

	v.SetDefault("monitor.interval", "5m")
	v.SetDefault("monitor.lock_file", "/run/churchmap-watchdog.lock")
	v.SetDefault("monitor.metrics_addr", ":9108")

	v.SetDefault("history.path", "/var/lib/churchmap-watchdog/history.db")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("log.ops_file", "/var/log/churchmap/monitor.log")

	v.SetDefault("otel.enable", false)
	v.SetDefault("otel.endpoint", "localhost:4317")
	v.SetDefault("otel.sample_ratio", 1.0)

	v.SetEnvPrefix("watchdog")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
