package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. SAFT_DATABASE_URL.
const EnvPrefix = "SAFT"

// ApplyEnv overrides config values from the environment:
//
//	SAFT_DATABASE_URL   storage.database_url (also selects the postgres driver)
//	SAFT_DATA_DIR       storage.data_dir
//	SAFT_EXPORTS_DIR    storage.exports_dir
//	SAFT_FETCH_TIMEOUT  fetch.timeout, a Go duration such as "30s"
func ApplyEnv(cfg *Config) error {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	for _, key := range []string{"database_url", "data_dir", "exports_dir", "fetch_timeout"} {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("binding %s: %w", key, err)
		}
	}

	if v.IsSet("database_url") {
		cfg.Storage.DatabaseURL = v.GetString("database_url")
		cfg.Storage.Driver = StoragePostgres
	}
	if v.IsSet("data_dir") {
		cfg.Storage.DataDir = v.GetString("data_dir")
	}
	if v.IsSet("exports_dir") {
		cfg.Storage.ExportsDir = v.GetString("exports_dir")
	}
	if v.IsSet("fetch_timeout") {
		d := v.GetDuration("fetch_timeout")
		if d <= 0 {
			return fmt.Errorf("%s_FETCH_TIMEOUT: invalid duration %q", EnvPrefix, v.GetString("fetch_timeout"))
		}
		cfg.Fetch.Timeout = d
	}
	return nil
}
