package app

import (
	"fmt"

	"parley/pkg/config"
)

// validateConfig performs quick, fail-fast validation of the effective
// configuration before starting long-running services. Keep checks light
// and focused so callers can surface user-friendly errors.
func validateConfig(eff config.Effective) error {
	if eff.DBPath == "" {
		return fmt.Errorf("database path is empty: set --db flag, PARLEY_DB_PATH env, or storage.db_path in config")
	}
	if eff.Config == nil {
		return fmt.Errorf("effective config missing")
	}
	if eff.Config.Snapshot.RPS < 0 {
		return fmt.Errorf("snapshot.rps must not be negative")
	}
	if eff.Config.Snapshot.Burst < 0 {
		return fmt.Errorf("snapshot.burst must not be negative")
	}
	if v := eff.Config.Validation.MaxContentLen; v < 0 {
		return fmt.Errorf("validation.max_content_len must not be negative")
	}
	if v := eff.Config.Validation.MaxImageLen; v < 0 {
		return fmt.Errorf("validation.max_image_len must not be negative")
	}
	return nil
}
