package lam

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ProjectConfigFile is the name of the project configuration file.
const ProjectConfigFile = "lam.toml"

// TimeUnit selects what the time builtin counts in.
type TimeUnit string

const (
	TimeUnitMillis  TimeUnit = "ms"
	TimeUnitSeconds TimeUnit = "s"
)

// ProjectConfig represents a lam.toml project configuration file.
type ProjectConfig struct {
	Runtime RuntimeConfig `toml:"runtime"`
	Format  FormatOptions `toml:"format"`
}

// RuntimeConfig controls how the builtins talk to the outside world.
type RuntimeConfig struct {
	// TimeUnit is the unit of the value returned by time.
	TimeUnit TimeUnit `toml:"time_unit"`

	// RawInput reads "input 0" as a single keypress when stdin is a
	// terminal.
	RawInput bool `toml:"raw_input"`
}

func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		TimeUnit: TimeUnitMillis,
		RawInput: true,
	}
}

// DefaultProjectConfig is what applies when no lam.toml is found.
func DefaultProjectConfig() *ProjectConfig {
	return &ProjectConfig{
		Runtime: DefaultRuntimeConfig(),
		Format:  DefaultFormatOptions,
	}
}

// Validate rejects values the interpreter does not understand.
func (c *ProjectConfig) Validate() error {
	switch c.Runtime.TimeUnit {
	case TimeUnitMillis, TimeUnitSeconds:
	default:
		return fmt.Errorf("runtime.time_unit: must be %q or %q, got %q",
			TimeUnitMillis, TimeUnitSeconds, c.Runtime.TimeUnit)
	}
	switch c.Format.Lambda {
	case "λ", `\`:
	default:
		return fmt.Errorf(`format.lambda: must be "λ" or "\\", got %q`, c.Format.Lambda)
	}
	return nil
}

// LoadProjectConfig loads a lam.toml file from the given path. Keys missing
// from the file keep their defaults.
func LoadProjectConfig(path string) (*ProjectConfig, error) {
	config := DefaultProjectConfig()
	md, err := toml.DecodeFile(path, config)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("parsing %s: unknown key %s", path, undecoded[0])
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return config, nil
}

// FindProjectConfig searches for a lam.toml file starting from dir and
// walking up to parent directories. Returns the path to lam.toml and the
// parsed config, or ("", nil, nil) if not found.
func FindProjectConfig(dir string) (string, *ProjectConfig, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", nil, err
	}
	for {
		path := filepath.Join(dir, ProjectConfigFile)
		if _, err := os.Stat(path); err == nil {
			config, err := LoadProjectConfig(path)
			if err != nil {
				return "", nil, err
			}
			return path, config, nil
		}

		// Stop at .git boundary
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return "", nil, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil, nil
		}
		dir = parent
	}
}

// ConfigFor finds the configuration that applies to a program in dir,
// falling back to the defaults.
func ConfigFor(dir string) (*ProjectConfig, error) {
	_, config, err := FindProjectConfig(dir)
	if err != nil {
		return nil, err
	}
	if config == nil {
		return DefaultProjectConfig(), nil
	}
	return config, nil
}
