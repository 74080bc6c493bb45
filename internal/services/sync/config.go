package sync

import "time"

// Config holds timing behavior for the background remote writer
type Config struct {
	// DebounceInterval is how long after a dirty mutation the writer waits
	// before saving, so bursts of rapid clicks coalesce into one write
	DebounceInterval time.Duration

	// MaxSaveInterval bounds how long continuous mutation can defer a save
	MaxSaveInterval time.Duration

	// Retry backoff bounds for failed remote writes
	RetryBackoffMin time.Duration
	RetryBackoffMax time.Duration

	// SaveTimeout bounds a single remote write attempt
	SaveTimeout time.Duration
}

// DefaultConfig returns sensible defaults for synchronizer timing
func DefaultConfig() Config {
	return Config{
		DebounceInterval: 2 * time.Second,
		MaxSaveInterval:  30 * time.Second,
		RetryBackoffMin:  time.Second,
		RetryBackoffMax:  30 * time.Second,
		SaveTimeout:      10 * time.Second,
	}
}
