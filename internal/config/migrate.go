package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Environment variable names used by the legacy single-profile .env file.
const (
	legacyEnvAPIURL     = "OUTLINE_API_URL"
	legacyEnvCertSHA256 = "OUTLINE_CERT_SHA256"
)

// MigrateLegacy copies credentials from a legacy .env file into a profile
// named "default" when no structured store exists yet. The legacy file is
// left in place. It returns true when a migration was performed, and the
// path of the migrated file.
func MigrateLegacy() (bool, string, error) {
	paths := GetPaths()
	for _, candidate := range paths.LegacyEnvCandidates() {
		migrated, err := migrateFrom(candidate, paths.ConfigFile)
		if err != nil {
			return false, candidate, err
		}
		if migrated {
			return true, candidate, nil
		}
	}
	return false, "", nil
}

// migrateFrom performs the migration from a specific legacy file into a
// specific config file. Both must be checked here so re-running after a
// migration is a no-op.
func migrateFrom(envPath, configPath string) (bool, error) {
	if _, err := os.Stat(configPath); err == nil {
		// Structured store already exists; never overwrite it.
		return false, nil
	}
	if _, err := os.Stat(envPath); err != nil {
		return false, nil
	}

	env, err := godotenv.Read(envPath)
	if err != nil {
		return false, fmt.Errorf("failed to parse legacy credential file %s: %w", envPath, err)
	}

	apiURL := env[legacyEnvAPIURL]
	certSHA256 := env[legacyEnvCertSHA256]
	if apiURL == "" || certSHA256 == "" {
		return false, nil
	}

	store := &Store{filePath: configPath}
	store.Set("default", apiURL, certSHA256)
	if err := store.Save(); err != nil {
		return false, err
	}

	return true, nil
}
