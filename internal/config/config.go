package config

import (
	"time"
)

type ServicesCfg struct {
	App   string `mapstructure:"app"`
	Proxy string `mapstructure:"proxy"`
}

type ChecksCfg struct {
	HealthURL     string        `mapstructure:"health_url"`
	HealthTimeout time.Duration `mapstructure:"health_timeout"`
	DiskPath      string        `mapstructure:"disk_path"`
	DiskThreshold int           `mapstructure:"disk_threshold"`
	MemThreshold  int           `mapstructure:"mem_threshold"`
}

type BackupCfg struct {
	Source    string        `mapstructure:"source"`
	Dir       string        `mapstructure:"dir"`
	Retention time.Duration `mapstructure:"retention"`
	Hour      int           `mapstructure:"hour"`
}

type RestartCfg struct {
	SettleDelay  time.Duration `mapstructure:"settle_delay"`
	PollAttempts int           `mapstructure:"poll_attempts"`
}

type MonitorCfg struct {
	Interval    time.Duration `mapstructure:"interval"`
	LockFile    string        `mapstructure:"lock_file"`
	MetricsAddr string        `mapstructure:"metrics_addr"`
}

type HistoryCfg struct {
	Path string `mapstructure:"path"`
}

type LogCfg struct {
	Level   string `mapstructure:"level"`
	Pretty  bool   `mapstructure:"pretty"`
	OpsFile string `mapstructure:"ops_file"`
}

type OTELCfg struct {
	Enable      bool    `mapstructure:"enable"`
	Endpoint    string  `mapstructure:"endpoint"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

type Config struct {
	Services ServicesCfg `mapstructure:"services"`
	Checks   ChecksCfg   `mapstructure:"checks"`
	Backup   BackupCfg   `mapstructure:"backup"`
	Restart  RestartCfg  `mapstructure:"restart"`
	Monitor  MonitorCfg  `mapstructure:"monitor"`
	History  HistoryCfg  `mapstructure:"history"`
	Log      LogCfg      `mapstructure:"log"`
	OTEL     OTELCfg     `mapstructure:"otel"`
}
