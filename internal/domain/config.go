package domain

import "time"

// Config is the on-disk configuration loaded from ~/.e2eagent/config.yaml.
type Config struct {
	ConfigFormatVersion string         `yaml:"config_format_version"`
	Backend             BackendConfig  `yaml:"backend"`
	Polling             PollingConfig  `yaml:"polling"`
	Cluster             ClusterConfig  `yaml:"cluster"`
	Server              ServerSettings `yaml:"server"`
}

// BackendConfig points the client at the orchestration service.
type BackendConfig struct {
	Endpoint string        `yaml:"endpoint"`
	Timeout  time.Duration `yaml:"timeout"`
}

// PollingConfig tunes the status polling loop.
type PollingConfig struct {
	Interval time.Duration `yaml:"interval"`
	Ceiling  time.Duration `yaml:"ceiling"`
}

// ServerSettings configures the e2eagentd service.
type ServerSettings struct {
	ListenAddr              string        `yaml:"listen_addr"`
	TemplatesDir            string        `yaml:"templates_dir"`
	SessionTTL              time.Duration `yaml:"session_ttl"`
	MaxConcurrentExecutions int           `yaml:"max_concurrent_executions"`
	// Fabrics seeds the cluster inventory used for clarification detection.
	// Empty means no existing fabrics are reported, so fabric-dependent
	// workflows proceed straight to fabric creation.
	Fabrics []Fabric `yaml:"fabrics,omitempty"`
}
