package config

import (
	"fmt"
	"slices"
	"strings"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.OutputFormat != "" && !slices.Contains(OutputFormats, c.OutputFormat) {
		return fmt.Errorf("invalid output format %q\nHint: use one of %s", c.OutputFormat, strings.Join(OutputFormats, ", "))
	}
	if c.LogFormat != "" && !slices.Contains(LogFormats, c.LogFormat) {
		return fmt.Errorf("invalid log format %q\nHint: use one of %s", c.LogFormat, strings.Join(LogFormats, ", "))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return c.Project().Validate()
}
