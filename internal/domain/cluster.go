package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Validation errors surfaced before any network request is made.
var (
	ErrEmptyInstruction = errors.New("instruction must not be empty")
	ErrMissingClusterIP = errors.New("cluster ip is required")
	ErrMissingUsername  = errors.New("cluster username is required")
)

// ClusterConfig holds connection parameters for the cluster under test.
// Held in memory for the duration of a run only; never persisted.
type ClusterConfig struct {
	IP       string `yaml:"ip" json:"ip"`
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
	URL      string `yaml:"url,omitempty" json:"url,omitempty"`
}

// Validate checks the fields required before submission.
func (c ClusterConfig) Validate() error {
	if strings.TrimSpace(c.IP) == "" {
		return ErrMissingClusterIP
	}
	if strings.TrimSpace(c.Username) == "" {
		return ErrMissingUsername
	}
	return nil
}

// EffectiveURL returns the configured URL, or one derived from the IP.
func (c ClusterConfig) EffectiveURL() string {
	if c.URL != "" {
		return c.URL
	}
	if c.IP == "" {
		return ""
	}
	return fmt.Sprintf("https://%s", c.IP)
}
