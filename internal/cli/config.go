package cli

import (
	"os"
	"path/filepath"
)

// Config holds CLI configuration
type Config struct {
	ServerURL string
	DataDir   string
	Output    string
	Verbose   bool
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL: getEnvOrDefault("TAPWIN_SERVER", "http://localhost:8080"),
		DataDir:   getEnvOrDefault("TAPWIN_DATA_DIR", defaultDataDir()),
		Output:    "text",
		Verbose:   false,
	}
}

// SnapshotDir returns the directory for local player snapshots
func (c *Config) SnapshotDir() string {
	return filepath.Join(c.DataDir, "snapshots")
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".taptowin"
	}
	return filepath.Join(home, ".taptowin")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
