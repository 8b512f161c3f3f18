// Package instrument decides which packages are in scope for checking and
// carries the config surface the loader reads. The loader itself lives
// outside this module; it only asks ShouldInstrument and hands checkpoints to
// the call package.
package instrument

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type (
	// Finder matches fully qualified module names against the configured
	// package set.
	Finder struct {
		packages []string
	}
	// Config is the file config for instrumentation scope.
	Config struct {
		// Packages are the package name prefixes that are in scope.
		Packages []string `yaml:"packages"`
		// Warn logs skipped callables instead of silently ignoring them.
		Warn bool `yaml:"warn"`
		// Trace is a strftime pattern enabling check event tracing.
		Trace string `yaml:"trace"`
	}
)

// NewFinder creates a finder over the configured package names.
func NewFinder(packages []string) *Finder {
	return &Finder{packages: packages}
}

// ShouldInstrument reports whether the named module is in scope: either an
// exact match of a configured name or a dotted sub-name of one. Matching is
// on dot boundaries only, so "spam_eggs" never matches "spam" and "spam"
// never matches a configured "spam.eggs".
func (f *Finder) ShouldInstrument(name string) bool {
	for _, pkg := range f.packages {
		if name == pkg || strings.HasPrefix(name, pkg+".") {
			return true
		}
	}
	return false
}

// LoadConfig reads a yaml config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("malformed config %v: %w", path, err)
	}
	return cfg, nil
}

// Finder creates the finder for the configured packages.
func (c *Config) Finder() *Finder { return NewFinder(c.Packages) }

// Warnf writes a warning line to out when warnings are enabled, so skipped
// callables can be surfaced instead of silently ignored.
func (c *Config) Warnf(out io.Writer, format string, args ...any) {
	if c == nil || !c.Warn {
		return
	}
	fmt.Fprintf(out, "warning: %s\n", fmt.Sprintf(format, args...))
}
