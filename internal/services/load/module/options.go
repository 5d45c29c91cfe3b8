package module

import (
	"spindle/internal/platform/config"
)

// Options holds configuration options for the load service
type Options struct {
	BatchSize int
	Mirror    bool
}

// FromConfig reads the load options from config with CORE_LOAD_ prefix
func FromConfig(cfg config.Conf) Options {
	ld := cfg.Prefix("CORE_LOAD_")
	return Options{
		BatchSize: ld.MayInt("BATCH", 1),
		Mirror:    ld.MayBool("MIRROR", false),
	}
}
