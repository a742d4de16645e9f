// Package config loads flowerbox defaults from a .flowerbox.yaml file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the working directory when
// no explicit path is given.
const FileName = ".flowerbox.yaml"

// Config holds the defaults for the box and run commands.
type Config struct {
	// DateTimeFormat is the time.Format layout of the start and end
	// timestamps.
	DateTimeFormat string `yaml:"dt_format"`

	// End terminates every row of a box.
	End string `yaml:"end"`

	// Output is "stdout" or "stderr".
	Output string `yaml:"output"`

	// Flush flushes the output after every row.
	Flush bool `yaml:"flush"`

	// Enabled turns the run announcements on or off.
	Enabled bool `yaml:"enabled"`

	// EnableEnv names an environment variable consulted before every
	// timed call. When set, it overrides Enabled.
	EnableEnv string `yaml:"enable_env"`

	// Color styles the box borders when writing to a terminal.
	Color bool `yaml:"color"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		DateTimeFormat: "Mon Jan 02 2006 15:04:05",
		End:            "\n",
		Output:         "stdout",
		Enabled:        true,
	}
}

// Load reads path over the defaults. An empty path loads FileName from
// the working directory if it exists, and the defaults otherwise.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = FileName
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the values that cannot be defaulted.
func (c *Config) Validate() error {
	if c.Output != "stdout" && c.Output != "stderr" {
		return fmt.Errorf("invalid output %q: must be 'stdout' or 'stderr'", c.Output)
	}
	if c.DateTimeFormat == "" {
		return errors.New("dt_format must not be empty")
	}
	return nil
}
