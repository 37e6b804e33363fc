package canopy

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// HostConfig configures a Host's render loop.
type HostConfig struct {
	// TargetFPS is the desired ticks per second (default: 60).
	TargetFPS int `toml:"target_fps"`

	// MinFrameIntervalMS is a floor on the time between ticks in
	// milliseconds. It only matters when it exceeds 1/TargetFPS.
	MinFrameIntervalMS float64 `toml:"min_frame_interval_ms"`

	// MaxSurfaceSize further limits frame surface dimensions. Zero uses the
	// renderer's maximum texture size.
	MaxSurfaceSize int `toml:"max_surface_size"`

	// Debug enables per-tick stats logging and tree sanity warnings.
	Debug bool `toml:"debug"`
}

// DefaultHostConfig returns sensible defaults.
func DefaultHostConfig() HostConfig {
	return HostConfig{
		TargetFPS:          60,
		MinFrameIntervalMS: 1,
	}
}

// ParseHostConfig decodes a TOML document over the defaults.
func ParseHostConfig(data []byte) (HostConfig, error) {
	cfg := DefaultHostConfig()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse host config: %w", err)
	}
	return cfg.normalized(), nil
}

// LoadHostConfig reads a TOML file. A missing file yields the defaults.
func LoadHostConfig(path string) (HostConfig, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultHostConfig(), nil
	}
	if err != nil {
		return DefaultHostConfig(), fmt.Errorf("read %s: %w", path, err)
	}
	return ParseHostConfig(data)
}

// normalized fills in defaults for out-of-range values.
func (c HostConfig) normalized() HostConfig {
	if c.TargetFPS < 1 {
		c.TargetFPS = 60
	}
	if c.MinFrameIntervalMS < 0 {
		c.MinFrameIntervalMS = 0
	}
	if c.MaxSurfaceSize < 0 {
		c.MaxSurfaceSize = 0
	}
	return c
}

// frameInterval is the target duration of one tick.
func (c HostConfig) frameInterval() time.Duration {
	return time.Second / time.Duration(c.TargetFPS)
}

// minFrameInterval is the configured floor between ticks.
func (c HostConfig) minFrameInterval() time.Duration {
	return time.Duration(c.MinFrameIntervalMS * float64(time.Millisecond))
}

// tickInterval is the time the loop waits between ticks: the target frame
// interval, raised to the minimum interval when that is longer.
func (c HostConfig) tickInterval() time.Duration {
	return max(c.frameInterval(), c.minFrameInterval())
}
