package config

// Default configuration values.
const (
	DefaultFormats              = ""
	DefaultGuardVersions        = true
	DefaultAssumeCurrentVersion = true
	DefaultRequireExplicit      = false
)

// Defaults returns the default values keyed like the config file.
func Defaults() map[string]any {
	return map[string]any{
		"default_formats":        DefaultFormats,
		"guard_versions":         DefaultGuardVersions,
		"assume_current_version": DefaultAssumeCurrentVersion,
		"require_explicit":       DefaultRequireExplicit,
	}
}

// DefaultProjectConfig returns a ProjectConfig with default values.
func DefaultProjectConfig() *ProjectConfig {
	return &ProjectConfig{
		DefaultFormats:       DefaultFormats,
		GuardVersions:        DefaultGuardVersions,
		AssumeCurrentVersion: DefaultAssumeCurrentVersion,
		RequireExplicit:      DefaultRequireExplicit,
	}
}
