package slowserve

import (
	"errors"
	"fmt"
	"math"
	"net"
	"strconv"
	"time"
)

// Default values used when a setting is not provided.
const (
	DefaultSpeed    = 8
	DefaultInterval = 100
	DefaultPort     = 8080
	DefaultRootDir  = "./"
)

// Config is the process-wide server configuration.
// It is built once at startup and never modified afterwards.
type Config struct {
	// Speed is the per-request transfer rate in KB per second.
	Speed float64 `mapstructure:"speed" yaml:"speed"`
	// IntervalMs is the delay between two chunks in milliseconds.
	IntervalMs int `mapstructure:"interval" yaml:"interval"`

	Host    string `mapstructure:"host" yaml:"host"`
	Port    int    `mapstructure:"port" yaml:"port"`
	RootDir string `mapstructure:"root-dir" yaml:"root-dir"`
	CORS    bool   `mapstructure:"cors" yaml:"cors"`

	// TotalSpeed caps the rate of all connections together, in KB per second.
	// Zero disables the cap.
	TotalSpeed float64 `mapstructure:"total-speed" yaml:"total-speed"`
}

// DefaultConfig returns a Config with the default settings.
func DefaultConfig() Config {
	return Config{
		Speed:      DefaultSpeed,
		IntervalMs: DefaultInterval,
		Port:       DefaultPort,
		RootDir:    DefaultRootDir,
	}
}

// ChunkSize returns the number of bytes written after every interval.
// It is never less than 1, so a transfer always makes progress.
func (c Config) ChunkSize() int {
	n := math.Floor(c.Speed * 1024 * float64(c.IntervalMs) / 1000)
	if n < 1 || math.IsNaN(n) {
		return 1
	}
	if n > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(n)
}

// Interval returns the delay between chunks.
func (c Config) Interval() time.Duration {
	return time.Duration(c.IntervalMs) * time.Millisecond
}

// TotalLimit returns the aggregate cap in bytes per second, 0 if unlimited.
func (c Config) TotalLimit() int {
	if c.TotalSpeed <= 0 {
		return 0
	}
	n := int(c.TotalSpeed * 1024)
	if n < 1 {
		n = 1
	}
	return n
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Validate checks the settings that can not be served.
func (c Config) Validate() error {
	var errs []error
	if c.Speed < 0 || math.IsNaN(c.Speed) {
		errs = append(errs, fmt.Errorf("speed must not be negative: %v", c.Speed))
	}
	if c.IntervalMs < 0 {
		errs = append(errs, fmt.Errorf("interval must not be negative: %d", c.IntervalMs))
	}
	if c.TotalSpeed < 0 || math.IsNaN(c.TotalSpeed) {
		errs = append(errs, fmt.Errorf("total speed must not be negative: %v", c.TotalSpeed))
	}
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port out of range: %d", c.Port))
	}
	if c.RootDir == "" {
		errs = append(errs, errors.New("root directory must not be empty"))
	}
	return errors.Join(errs...)
}
