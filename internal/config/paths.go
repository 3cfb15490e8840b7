// Package config provides the profile store for outlinectl.
package config

import (
	"os"
	"path/filepath"
)

const (
	// AppDirName is the per-user directory holding all outlinectl state.
	AppDirName = ".outline"
	// ConfigFileName is the profile store file name.
	ConfigFileName = "config.ini"
	// LegacyEnvFileName is the single-profile credential file used by
	// older releases, read once for migration.
	LegacyEnvFileName = ".env"
)

// Paths holds the application paths.
type Paths struct {
	ConfigDir  string
	ConfigFile string
}

// GetPaths returns the application paths. The config directory is
// ~/.outline, overridable with OUTLINE_CONFIG_DIR (used by tests).
func GetPaths() Paths {
	dir := configDir()
	return Paths{
		ConfigDir:  dir,
		ConfigFile: filepath.Join(dir, ConfigFileName),
	}
}

func configDir() string {
	if dir := os.Getenv("OUTLINE_CONFIG_DIR"); dir != "" {
		return dir
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, AppDirName)
	}
	// Last resort fallback
	return AppDirName
}

// LegacyEnvCandidates returns the locations checked for a legacy
// credential file, in order of preference.
func (p Paths) LegacyEnvCandidates() []string {
	return []string{
		filepath.Join(p.ConfigDir, LegacyEnvFileName),
		LegacyEnvFileName,
	}
}
