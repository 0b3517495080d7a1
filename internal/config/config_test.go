package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Storage.Driver = StoragePostgres
	cfg.Storage.DatabaseURL = "postgres://localhost/saft"
	cfg.Fetch.Timeout = 30 * time.Second

	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, []string{"4111", "707", "4427"}, cfg.Accounts.Required())
	assert.Equal(t, "1.01_01", cfg.AuditFile.Version)
	assert.Equal(t, "RON", cfg.AuditFile.Currency)
	assert.Equal(t, "VZ", cfg.Journal.ID)
	assert.Equal(t, StorageFile, cfg.Storage.Driver)
	assert.Equal(t, 10*time.Second, cfg.Fetch.Timeout)
	assert.NoError(t, cfg.Validate())
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("accounts:\n  revenue: \"704\"\nfetch:\n  timeout: 5s\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "704", cfg.Accounts.Revenue)
	assert.Equal(t, "4111", cfg.Accounts.Receivables)
	assert.Equal(t, 5*time.Second, cfg.Fetch.Timeout)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"missing vat account", func(c *Config) { c.Accounts.VATPayable = "" }, "vat_payable"},
		{"bad version", func(c *Config) { c.AuditFile.Version = "2.0" }, "audit_file.version"},
		{"bad driver", func(c *Config) { c.Storage.Driver = "mysql" }, "storage.driver"},
		{"zero timeout", func(c *Config) { c.Fetch.Timeout = 0 }, "fetch.timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestYAMLFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, Default()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "receivables: \"4111\"")
	assert.Contains(t, contents, "country: RO")
	assert.Contains(t, contents, "timeout: 10s")
	assert.NotContains(t, contents, "database_url")
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("SAFT_DATABASE_URL", "postgres://db/saft")
	t.Setenv("SAFT_FETCH_TIMEOUT", "45s")
	t.Setenv("SAFT_EXPORTS_DIR", "/tmp/out")

	cfg := Default()
	require.NoError(t, ApplyEnv(cfg))

	assert.Equal(t, StoragePostgres, cfg.Storage.Driver)
	assert.Equal(t, "postgres://db/saft", cfg.Storage.DatabaseURL)
	assert.Equal(t, 45*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, "/tmp/out", cfg.Storage.ExportsDir)
	assert.Equal(t, "data", cfg.Storage.DataDir)
}

func TestApplyEnv_Unset(t *testing.T) {
	cfg := Default()
	require.NoError(t, ApplyEnv(cfg))
	assert.Equal(t, Default(), cfg)
}

func TestApplyEnv_BadTimeout(t *testing.T) {
	t.Setenv("SAFT_FETCH_TIMEOUT", "soon")

	err := ApplyEnv(Default())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SAFT_FETCH_TIMEOUT")
}
